// terminal.go - ANSI terminal frame consumer and raw-stdin keyboard host.
//
// Grounded on terminal_host.go's raw-mode stdin goroutine: the same
// term.MakeRaw/SetNonblock/syscall.Read polling loop with the same CR->LF
// and DEL->BS translation, but routed into Machine.InjectKeyDown/InjectKeyUp
// instead of a TerminalMMIO ring buffer, since the 5150 has no MMIO terminal
// registers - input reaches the guest through the PPI/IRQ1 keyboard path
// modeled in ppi.go. TerminalMMIO and TerminalOutput themselves are not
// adapted: both are built around register addresses (TERM_OUT, TERM_IN,
// TERM_KEY_IN, ...) that have no counterpart on a port-mapped/CGA-text-buffer
// machine, so nothing about their shape survives the retarget.
package main

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"
)

// asciiToHIDUsage maps the printable ASCII subset and the handful of control
// keys a line-oriented terminal can send into the USB-HID usage IDs that
// ppi.go's usbToPCScancode table expects, so terminal input can drive
// Machine.InjectKeyDown/InjectKeyUp the same way a GUI keyboard handler does.
func asciiToHIDUsage(b byte) (byte, bool) {
	switch {
	case b >= 'a' && b <= 'z':
		return 4 + (b - 'a'), true
	case b >= 'A' && b <= 'Z':
		return 4 + (b - 'A'), true
	case b >= '1' && b <= '9':
		return 30 + (b - '1'), true
	case b == '0':
		return 39, true
	}
	switch b {
	case '\n', '\r':
		return 40, true // Enter
	case 0x1B:
		return 41, true // Escape
	case 0x08:
		return 42, true // Backspace
	case '\t':
		return 43, true // Tab
	case ' ':
		return 44, true // Space
	case '-':
		return 45, true
	case '=':
		return 46, true
	case '[':
		return 47, true
	case ']':
		return 48, true
	case '\\':
		return 49, true
	case ';':
		return 51, true
	case '\'':
		return 52, true
	case '`':
		return 53, true
	case ',':
		return 54, true
	case '.':
		return 55, true
	case '/':
		return 56, true
	default:
		return 0, false
	}
}

// cgaAnsiColor maps a CGA 4-bit color index to the matching ANSI SGR
// parameter, per the standard IBM CGA palette ordering.
var cgaAnsiColor = [16]int{
	30, 34, 32, 36, 31, 35, 33, 37, // normal intensity
	90, 94, 92, 96, 91, 95, 93, 97, // intense (bit 3 set)
}

// TerminalFrontend renders CGA text-mode snapshots as ANSI escape sequences
// on the controlling terminal and feeds raw keystrokes back into a Machine.
// Grounded on terminal_host.go's lifecycle (Start sets raw mode and spawns a
// reader goroutine, Stop restores the terminal), adapted to target a Machine
// instead of a TerminalMMIO.
type TerminalFrontend struct {
	machine *Machine

	fd           int
	oldTermState *term.State
	nonblockSet  bool
	stopCh       chan struct{}
	done         chan struct{}
	stopped      sync.Once

	lastRendered string
	color        bool
}

// NewTerminalFrontend returns a frontend that reads host keystrokes into
// machine and renders its CGA snapshots to stdout. Set color to use ANSI
// SGR sequences for the CGA foreground/background attribute; plain monochrome
// text is used otherwise.
func NewTerminalFrontend(machine *Machine, color bool) *TerminalFrontend {
	return &TerminalFrontend{
		machine: machine,
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
		color:   color,
	}
}

// Start puts stdin into raw non-blocking mode and begins routing keystrokes
// into the machine's keyboard model. Mirrors terminal_host.go's Start.
func (t *TerminalFrontend) Start() {
	t.fd = int(os.Stdin.Fd())

	oldState, err := term.MakeRaw(t.fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "terminal: failed to set raw mode: %v\n", err)
		close(t.done)
		return
	}
	t.oldTermState = oldState

	if err := syscall.SetNonblock(t.fd, true); err != nil {
		fmt.Fprintf(os.Stderr, "terminal: failed to set nonblocking stdin: %v\n", err)
		_ = term.Restore(t.fd, t.oldTermState)
		t.oldTermState = nil
		close(t.done)
		return
	}
	t.nonblockSet = true

	go t.readLoop()
}

func (t *TerminalFrontend) readLoop() {
	defer close(t.done)
	buf := make([]byte, 1)

	for {
		select {
		case <-t.stopCh:
			return
		default:
		}

		n, err := syscall.Read(t.fd, buf)
		if n > 0 {
			b := buf[0]
			if b == '\r' {
				b = '\n'
			}
			if b == 0x7F {
				b = 0x08
			}
			t.injectKey(b)
		}
		if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
			time.Sleep(5 * time.Millisecond)
			continue
		}
		if err != nil {
			return
		}
		if n == 0 {
			time.Sleep(5 * time.Millisecond)
		}
	}
}

// injectKey translates one raw input byte into a make/break scancode pair.
// A real keyboard gives the host separate down/up edges; a terminal gives
// only a single byte per keystroke, so down is immediately followed by up.
func (t *TerminalFrontend) injectKey(b byte) {
	hid, ok := asciiToHIDUsage(b)
	if !ok {
		return
	}
	t.machine.InjectKeyDown(hid)
	t.machine.InjectKeyUp(hid)
}

// Stop terminates the reader goroutine and restores the terminal.
func (t *TerminalFrontend) Stop() {
	t.stopped.Do(func() {
		close(t.stopCh)
	})
	<-t.done
	if t.nonblockSet {
		_ = syscall.SetNonblock(t.fd, false)
		t.nonblockSet = false
	}
	if t.oldTermState != nil {
		_ = term.Restore(t.fd, t.oldTermState)
		t.oldTermState = nil
	}
}

// RenderFrame implements FrameConsumer: it draws the CGA text buffer to
// stdout using ANSI cursor-home-and-overwrite, skipping the write entirely
// when nothing changed since the previous frame.
func (t *TerminalFrontend) RenderFrame(snap Snapshot) error {
	var b strings.Builder
	b.WriteString("\x1b[H")

	cols := snap.Columns
	if cols <= 0 {
		cols = 80
	}
	for row := 0; row < snap.Rows; row++ {
		for col := 0; col < cols; col++ {
			offset := (row*cols + col) * 2
			if offset+1 >= len(snap.TextBuffer) {
				continue
			}
			ch := snap.TextBuffer[offset]
			attr := snap.TextBuffer[offset+1]
			if ch == 0 {
				ch = ' '
			}
			if t.color {
				b.WriteString(ansiSGR(attr))
			}
			b.WriteByte(ch)
		}
		if t.color {
			b.WriteString("\x1b[0m")
		}
		b.WriteString("\x1b[K\r\n")
	}
	b.WriteString(fmt.Sprintf("\x1b[%d;%dH", snap.CursorRow+1, snap.CursorColumn+1))

	rendered := b.String()
	if rendered == t.lastRendered {
		return nil
	}
	t.lastRendered = rendered
	_, err := os.Stdout.WriteString(rendered)
	return err
}

// ansiSGR converts a CGA text attribute byte (low nibble foreground, next
// three bits background, bit 7 blink) into the matching ANSI SGR sequence.
func ansiSGR(attr byte) string {
	fg := cgaAnsiColor[attr&0x0F]
	bg := cgaAnsiColor[(attr>>4)&0x07] + 10
	return fmt.Sprintf("\x1b[0;%d;%dm", fg, bg)
}
