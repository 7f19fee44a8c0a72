// ppi.go - Intel 8255 Programmable Peripheral Interface + keyboard injection
//
// Grounded on original_source/PPI.cpp: the 256-entry usbToPCScancode table
// is carried over byte-for-byte (HID usage ID -> IBM XT set-1 scancode,
// 0xFF sentinel for unmapped keys), and the keyboardDown/keyboardUp ->
// port-A latch -> PIC IRQ1 pattern is preserved under KeyDown/KeyUp.
package main

// usbToPCScancode maps a USB-HID keyboard usage ID to an IBM XT set-1
// scancode. 0xFF marks a HID usage with no IBM PC/XT equivalent.
var usbToPCScancode = [256]byte{
	0xFF, 0xFF, 0xFF, 0xFF, 0x1e, 0x30, 0x2e, 0x20, 0x12, 0x21, // 0-9
	0x22, 0x23, 0x17, 0x24, 0x25, 0x26, 0x32, 0x31, 0x18, 0x19, // 10-19
	0x10, 0x13, 0x1f, 0x14, 0x16, 0x2f, 0x11, 0x2d, 0x15, 0x2c, // 20-29
	0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, // 30-39
	0x1c, 0x01, 0x0e, 0x0f, 0x39, 0x0c, 0x0d, 0x1a, 0x1b, 0x2b, // 40-49
	0x00, 0x27, 0x28, 0x29, 0x33, 0x34, 0x35, 0x3a, 0x3b, 0x3c, // 50-59
	0x3d, 0x3e, 0x3f, 0x40, 0x41, 0x42, 0x43, 0x44, 0x57, 0x58, // 60-69
	0xFF, 0x46, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, // 70-79
	0xFF, 0xFF, 0xFF, 0x45, 0xFF, 0x37, 0x4a, 0x4e, 0xFF, 0x4f, // 80-89
	0x50, 0x51, 0x4b, 0x4c, 0x4d, 0x47, 0x48, 0x49, 0x52, 0x53, // 90-99
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, // 110-119
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, // 130-139
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, // 150-159
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, // 170-179
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, // 190-199
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, // 210-219
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x2A, 0xFF, 0xFF, 0xFF, 0x36, // 220-229
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, // 230-239
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, // 250-255
}

// PPI is the 8255 peripheral interface wired for keyboard input.
type PPI struct {
	a, b, c byte
	control byte
	pic     *PIC
}

// NewPPI returns a PPI wired to raise IRQ1 through pic on key events.
func NewPPI(pic *PIC) *PPI {
	return &PPI{pic: pic}
}

// ReadA returns port A: the latched scancode.
func (p *PPI) ReadA() byte { return p.a }

// ReadB returns port B: the BIOS-controlled output register.
func (p *PPI) ReadB() byte { return p.b }

// ReadC returns port C: status/configuration bits.
func (p *PPI) ReadC() byte { return p.c }

// SetB writes port B.
func (p *PPI) SetB(value byte) { p.b = value }

// SetControl writes the 8255 control byte (port direction configuration).
func (p *PPI) SetControl(value byte) { p.control = value }

// KeyDown injects a host key-down event identified by a USB-HID usage ID.
// Unmapped keys are dropped. Accepted keys latch the XT scancode into port
// A and raise IRQ1.
func (p *PPI) KeyDown(hidUsageID byte) {
	scancode := usbToPCScancode[hidUsageID]
	if scancode == 0xFF {
		return
	}
	p.a = scancode
	p.pic.RequestInterrupt(1)
}

// KeyUp injects a host key-up event; the break code is the make code with
// bit 7 set.
func (p *PPI) KeyUp(hidUsageID byte) {
	scancode := usbToPCScancode[hidUsageID]
	if scancode == 0xFF {
		return
	}
	p.a = scancode | 0x80
	p.pic.RequestInterrupt(1)
}
