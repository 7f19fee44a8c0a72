// pit.go - Intel 8253 Programmable Interval Timer
//
// Grounded on original_source/PIT.cpp and PIT.hpp for field/method naming
// (counters/latches/latchStatus/modes/bcd arrays, writeControl/
// readCounter/writeCounter/update) and the control-byte bit layout. The
// per-mode countdown logic in the original's update() double-decrements a
// counters[] array inconsistently with its own reload semantics (see
// DESIGN.md); this implementation instead follows spec.md section 4.5's
// cleaner per-mode description directly: mode 0 fires once at terminal
// count, mode 2 reloads at the rate-generator threshold, mode 3 fires and
// reloads every time the (simplified) square wave would flip.
package main

const pitChannelCount = 3

// pitChannel holds one 8253 counter's full state.
type pitChannel struct {
	initial uint16 // latched initial count, reloaded into counter
	counter uint16 // live countdown value
	mode    byte   // 0-5
	access  byte   // 0=latch, 1=low only, 2=high only, 3=low-then-high
	toggle  bool   // which half a 16-bit access is currently on, for access==3
	bcd     bool

	latchedValue uint16
	latchPending bool
	firedOnce    bool // mode 0: output already raised since last reprogram
}

// PIT is the 8253 timer: three independent channels, channel 0 wired to
// IRQ0 through the PIC.
type PIT struct {
	channel [pitChannelCount]pitChannel
	pic     *PIC
}

// NewPIT returns a PIT with all channels stopped, wired to raise interrupts
// on pic.
func NewPIT(pic *PIC) *PIT {
	p := &PIT{pic: pic}
	for i := range p.channel {
		p.channel[i].access = 3
		p.channel[i].toggle = false
	}
	return p
}

// WriteControl handles the control port (0x43): selects channel, access
// mode, counter mode, and BCD flag for subsequent channel-port accesses.
func (p *PIT) WriteControl(value byte) {
	sel := (value & 0xC0) >> 6
	if sel == 3 {
		return // read-back command (8254 only); not modeled on an 8253
	}
	ch := &p.channel[sel]
	access := (value & 0x30) >> 4
	if access != 0 {
		ch.access = access
		ch.toggle = false
	} else {
		// Counter latch command: snapshot the live counter for the next
		// read(s), without disturbing counting.
		ch.latchedValue = ch.counter
		ch.latchPending = true
	}
	ch.mode = (value & 0x0E) >> 1
	ch.bcd = value&1 != 0
	ch.firedOnce = false
}

// WriteCounter writes one byte of a channel's initial count, honoring the
// channel's access mode (low only / high only / low-then-high toggle).
func (p *PIT) WriteCounter(channel int, value byte) {
	ch := &p.channel[channel]
	switch ch.access {
	case 1:
		ch.initial = (ch.initial &^ 0x00FF) | uint16(value)
		ch.counter = ch.initial
	case 2:
		ch.initial = (ch.initial & 0x00FF) | uint16(value)<<8
		ch.counter = ch.initial
	default: // low-then-high toggle
		if !ch.toggle {
			ch.initial = (ch.initial &^ 0x00FF) | uint16(value)
		} else {
			ch.initial = (ch.initial & 0x00FF) | uint16(value)<<8
			ch.counter = ch.initial
		}
		ch.toggle = !ch.toggle
	}
}

// ReadCounter reads one byte of a channel's current counter, honoring the
// access mode and any pending latch.
func (p *PIT) ReadCounter(channel int) byte {
	ch := &p.channel[channel]
	value := ch.counter
	if ch.latchPending {
		value = ch.latchedValue
	}
	switch ch.access {
	case 1:
		ch.latchPending = false
		return byte(value)
	case 2:
		ch.latchPending = false
		return byte(value >> 8)
	default:
		var b byte
		if !ch.toggle {
			b = byte(value)
		} else {
			b = byte(value >> 8)
			ch.latchPending = false
		}
		ch.toggle = !ch.toggle
		return b
	}
}

// Update advances every channel by one tick, called once per CPU
// instruction from the bus.
func (p *PIT) Update() {
	for i := range p.channel {
		p.channel[i].tick(p, i == 0)
	}
}

func (c *pitChannel) tick(p *PIT, firesIRQ0 bool) {
	if c.counter == 0 {
		c.counter = c.initial
	}

	switch c.mode {
	case 0: // interrupt on terminal count: fire once when it reaches zero
		if c.counter > 0 {
			c.counter--
		}
		if c.counter == 0 && !c.firedOnce {
			c.firedOnce = true
			if firesIRQ0 {
				p.pic.RequestInterrupt(0)
			}
		}
	case 2: // rate generator: reload at 1, firing every period
		if c.counter > 1 {
			c.counter--
		} else {
			c.counter = c.initial
			if firesIRQ0 {
				p.pic.RequestInterrupt(0)
			}
		}
	case 3: // square wave (simplified: periodic IRQ at the programmed rate)
		if c.counter > 1 {
			c.counter -= 2
			if c.counter == 0 {
				c.counter = c.initial
				if firesIRQ0 {
					p.pic.RequestInterrupt(0)
				}
			}
		} else {
			c.counter = c.initial
			if firesIRQ0 {
				p.pic.RequestInterrupt(0)
			}
		}
	case 1, 4, 5:
		// Accept programming; no IRQ modeled for these modes.
		if c.counter > 0 {
			c.counter--
		}
	default:
		debugLogf("pit: unimplemented timer mode %d", c.mode)
	}
}
