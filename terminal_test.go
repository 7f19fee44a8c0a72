package main

import (
	"strings"
	"testing"
)

func TestAsciiToHIDUsage_Letters(t *testing.T) {
	hid, ok := asciiToHIDUsage('a')
	if !ok || hid != 4 {
		t.Fatalf("expected ('a')->4, got (%d,%v)", hid, ok)
	}
	hid, ok = asciiToHIDUsage('A')
	if !ok || hid != 4 {
		t.Fatalf("expected ('A')->4, got (%d,%v)", hid, ok)
	}
	hid, ok = asciiToHIDUsage('z')
	if !ok || hid != 29 {
		t.Fatalf("expected ('z')->29, got (%d,%v)", hid, ok)
	}
}

func TestAsciiToHIDUsage_Digits(t *testing.T) {
	hid, ok := asciiToHIDUsage('1')
	if !ok || hid != 30 {
		t.Fatalf("expected ('1')->30, got (%d,%v)", hid, ok)
	}
	hid, ok = asciiToHIDUsage('0')
	if !ok || hid != 39 {
		t.Fatalf("expected ('0')->39, got (%d,%v)", hid, ok)
	}
}

func TestAsciiToHIDUsage_Controls(t *testing.T) {
	cases := map[byte]byte{'\n': 40, '\r': 40, 0x1B: 41, 0x08: 42, '\t': 43, ' ': 44}
	for in, want := range cases {
		got, ok := asciiToHIDUsage(in)
		if !ok || got != want {
			t.Fatalf("asciiToHIDUsage(%#x): expected %d, got (%d,%v)", in, want, got, ok)
		}
	}
}

func TestAsciiToHIDUsage_Unmapped(t *testing.T) {
	if _, ok := asciiToHIDUsage(0x01); ok {
		t.Fatal("expected unmapped control byte to report false")
	}
}

func TestTerminalFrontend_InjectKeyRoundTrip(t *testing.T) {
	m := NewMachine()
	tf := NewTerminalFrontend(m, false)
	tf.injectKey('a')
	if m.PPI.ReadA() != usbToPCScancode[4]|0x80 {
		t.Fatalf("expected break code latched after down+up, got %#02x", m.PPI.ReadA())
	}
}

func TestTerminalFrontend_RenderFrame_SkipsUnchanged(t *testing.T) {
	m := NewMachine()
	tf := NewTerminalFrontend(m, false)
	snap := m.FrameSnapshot()
	snap.Rows = 25
	snap.Columns = 80

	if err := tf.RenderFrame(snap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := tf.lastRendered
	if first == "" {
		t.Fatal("expected non-empty rendered frame")
	}
	if err := tf.RenderFrame(snap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tf.lastRendered != first {
		t.Fatal("expected identical snapshot to leave lastRendered unchanged")
	}
}

func TestAnsiSGR_ContainsForegroundAndBackground(t *testing.T) {
	seq := ansiSGR(0x1F) // white-on-blue, intense
	if !strings.HasPrefix(seq, "\x1b[0;") {
		t.Fatalf("expected SGR reset prefix, got %q", seq)
	}
}
