package main

import (
	"strings"
	"testing"
)

func TestFormatIOView_ListsKnownPorts(t *testing.T) {
	m := NewMachine()
	view := formatIOView(m.Bus)
	if !strings.Contains(view, "PIC data (IMR)") {
		t.Fatal("expected IO view to list the PIC IMR port")
	}
	if !strings.Contains(view, "PPI port A (keyboard)") {
		t.Fatal("expected IO view to list the PPI port A")
	}
}

func TestFormatIOView_ReflectsLiveState(t *testing.T) {
	m := NewMachine()
	m.Bus.Out(portPICData, 0xAA)
	view := formatIOView(m.Bus)
	if !strings.Contains(view, "0xaa") {
		t.Fatalf("expected IO view to reflect the written IMR value, got:\n%s", view)
	}
}
