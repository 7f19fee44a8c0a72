package main

import "testing"

func TestBacktrace_WalksPushedReturnAddresses(t *testing.T) {
	m := NewMachine()
	m.Reset()
	m.CPU.SS = 0x1000
	m.CPU.SP = 0xFFFE
	m.CPU.push(0xABCD)
	m.CPU.push(0x1234)

	d := NewDebugCPU8086(m)
	entries := backtrace(d, 2)
	if len(entries) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(entries))
	}
	if entries[0].Address != 0x1234 {
		t.Fatalf("frame 0 = %#x, want 0x1234", entries[0].Address)
	}
	if entries[1].Address != 0xABCD {
		t.Fatalf("frame 1 = %#x, want 0xabcd", entries[1].Address)
	}
}

func TestFormatBacktrace(t *testing.T) {
	entries := []backtraceEntry{{FrameIndex: 0, Address: 0x1234}}
	out := formatBacktrace(entries)
	if out != "#0  1234" {
		t.Fatalf("got %q", out)
	}
}
