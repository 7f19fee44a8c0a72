// cga.go - Color Graphics Adapter / 6845 CRTC register bank
//
// Grounded on original_source/CGA.cpp and CGA.hpp for the mode/color byte
// bit layouts (setMode/setColor), the retrace status bit toggling
// (verticalRetraceStart/End, horizontalRetraceStart/End), and the 6845
// index/value register-select pattern (set6845RegisterIndex/Value). The
// SDL/TTF rendering pipeline in the original is explicitly out of scope per
// spec.md section 1; only the state the frame consumer reads is modeled
// here. See terminal.go and gui.go for the external consumers.
package main

// crtc6845RegisterCount is the number of addressable 6845 registers; 0x0E
// and 0x0F hold the cursor's linear address (high/low byte).
const crtc6845RegisterCount = 18

// CGA holds the adapter's mode/color/status state and the 6845 CRTC
// register file. The text buffer itself lives in Memory at 0xB8000.
type CGA struct {
	mem *Memory

	numColumns int // 40 or 80
	graphics   bool
	greyscale  bool
	highRes    bool

	backgroundColor  byte
	intensePalette   bool
	alternatePalette bool

	status byte

	registers6845 [crtc6845RegisterCount]byte
	registerIndex byte
}

// NewCGA returns a CGA reset to 80-column text mode with the cursor at the
// top-left.
func NewCGA(mem *Memory) *CGA {
	c := &CGA{mem: mem, numColumns: 80}
	return c
}

// SetMode handles port 0x3D8: column count, graphics/text, greyscale, and
// high-resolution bits.
func (c *CGA) SetMode(value byte) {
	if value&0x01 != 0 {
		c.numColumns = 80
	} else {
		c.numColumns = 40
	}
	c.graphics = value&0x02 != 0
	c.greyscale = value&0x04 != 0
	c.highRes = value&0x10 != 0
}

// SetColor handles port 0x3D9: background color and palette selection.
func (c *CGA) SetColor(value byte) {
	c.backgroundColor = value & 0x0F
	c.intensePalette = value&0x10 != 0
	c.alternatePalette = value&0x20 != 0
}

// Status handles a read from port 0x3DA: bit 0 horizontal retrace, bit 3
// vertical retrace.
func (c *CGA) Status() byte {
	return c.status
}

// VerticalRetraceStart and the three sibling methods are called by the
// frame loop to toggle the retrace status bits BIOS polling loops wait on.
func (c *CGA) VerticalRetraceStart()   { c.status |= 0x08 }
func (c *CGA) VerticalRetraceEnd()     { c.status &^= 0x08 }
func (c *CGA) HorizontalRetraceStart() { c.status |= 0x01 }
func (c *CGA) HorizontalRetraceEnd()   { c.status &^= 0x01 }

// SetRegisterIndex handles port 0x3D4: selects which of the 18 6845
// registers the next write to 0x3D5 addresses.
func (c *CGA) SetRegisterIndex(index byte) {
	c.registerIndex = index % crtc6845RegisterCount
}

// SetRegisterValue handles port 0x3D5: writes the currently-selected 6845
// register.
func (c *CGA) SetRegisterValue(value byte) {
	c.registers6845[c.registerIndex] = value
}

// CursorAddress returns the linear text-cell offset of the cursor, packed
// from 6845 registers 0x0E (high) and 0x0F (low).
func (c *CGA) CursorAddress() int {
	return int(c.registers6845[0x0E])<<8 | int(c.registers6845[0x0F])
}

// Snapshot is the immutable view a frame consumer reads once per frame.
type Snapshot struct {
	TextBuffer       [cgaTextBufferSize]byte
	Columns          int
	Rows             int
	Graphics         bool
	BackgroundColor  byte
	CursorRow        int
	CursorColumn     int
	HorizontalRetrace bool
	VerticalRetrace  bool
}

// TakeSnapshot copies the state a frame consumer needs under one short
// critical section, per spec.md section 5's "lock-free communication of a
// frame snapshot" option.
func (c *CGA) TakeSnapshot() Snapshot {
	cursor := c.CursorAddress()
	row, col := 0, 0
	if c.numColumns > 0 {
		row = cursor / c.numColumns
		col = cursor - row*c.numColumns
	}
	return Snapshot{
		TextBuffer:        c.mem.TextBuffer(),
		Columns:           c.numColumns,
		Rows:              25,
		Graphics:          c.graphics,
		BackgroundColor:   c.backgroundColor,
		CursorRow:         row,
		CursorColumn:      col,
		HorizontalRetrace: c.status&0x01 != 0,
		VerticalRetrace:   c.status&0x08 != 0,
	}
}
