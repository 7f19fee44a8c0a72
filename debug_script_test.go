package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRunScript_RegisterAndMemoryAccess(t *testing.T) {
	m := NewMachine()
	d := NewDebugCPU8086(m)

	script := `
machine.setreg("AX", 4660)
machine.writemem(0x500, 42)
`
	path := filepath.Join(t.TempDir(), "script.lua")
	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	if err := RunScript(d, path); err != nil {
		t.Fatalf("RunScript: %v", err)
	}

	if v, ok := d.GetRegister("AX"); !ok || v != 4660 {
		t.Fatalf("AX = (%#x, %v), want (0x1234, true)", v, ok)
	}
	if got := d.ReadMemory(0x500, 1); got[0] != 42 {
		t.Fatalf("mem[0x500] = %d, want 42", got[0])
	}
}

func TestRunScript_BreakpointAndStep(t *testing.T) {
	m := NewMachine()
	m.Reset()
	d := NewDebugCPU8086(m)

	script := `
machine.breakpoint(0x1000)
machine.step(1)
`
	path := filepath.Join(t.TempDir(), "script.lua")
	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	if err := RunScript(d, path); err != nil {
		t.Fatalf("RunScript: %v", err)
	}
	if !d.HasBreakpoint(0x1000) {
		t.Fatal("expected the script's breakpoint call to register a breakpoint")
	}
}

func TestRunScript_SyntaxErrorIsReturned(t *testing.T) {
	d := NewDebugCPU8086(NewMachine())
	path := filepath.Join(t.TempDir(), "bad.lua")
	if err := os.WriteFile(path, []byte("this is not lua("), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	if err := RunScript(d, path); err == nil {
		t.Fatal("expected a syntax error from a malformed script")
	}
}
