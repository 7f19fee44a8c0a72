package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestMachineMonitor_Dispatch_Regs(t *testing.T) {
	m := NewMachine()
	d := NewDebugCPU8086(m)
	d.SetRegister("AX", 0xBEEF)
	mon := NewMachineMonitor(d)

	var out bytes.Buffer
	if mon.dispatch("regs", &out) {
		t.Fatal("regs should not exit the REPL")
	}
	if !strings.Contains(out.String(), "BEEF") {
		t.Fatalf("expected regs output to contain BEEF, got:\n%s", out.String())
	}
}

func TestMachineMonitor_Dispatch_BreakAndList(t *testing.T) {
	m := NewMachine()
	mon := NewMachineMonitor(NewDebugCPU8086(m))

	var out bytes.Buffer
	mon.dispatch("break 100", &out)
	if !mon.cpu.HasBreakpoint(0x100) {
		t.Fatal("expected break command to set a breakpoint at 0x100")
	}

	out.Reset()
	mon.dispatch("listbreaks", &out)
	if !strings.Contains(out.String(), "00100") {
		t.Fatalf("expected listbreaks output to mention the address, got:\n%s", out.String())
	}

	mon.dispatch("clearbreak 100", &out)
	if mon.cpu.HasBreakpoint(0x100) {
		t.Fatal("expected clearbreak to remove the breakpoint")
	}
}

func TestMachineMonitor_Dispatch_MemAndStep(t *testing.T) {
	m := NewMachine()
	m.Reset()
	d := NewDebugCPU8086(m)
	mon := NewMachineMonitor(d)

	d.WriteMemory(0x500, []byte{0xAA, 0xBB})
	var out bytes.Buffer
	mon.dispatch("mem 500 2", &out)
	if !strings.Contains(out.String(), "AA BB") {
		t.Fatalf("expected mem output to show written bytes, got:\n%s", out.String())
	}

	out.Reset()
	if mon.dispatch("step 1", &out) {
		t.Fatal("step should not exit the REPL")
	}
}

func TestMachineMonitor_Dispatch_IOAndBacktrace(t *testing.T) {
	m := NewMachine()
	m.CPU.SS = 0x1000
	m.CPU.SP = 0xFFFE
	m.CPU.push(0x4242)
	d := NewDebugCPU8086(m)
	mon := NewMachineMonitor(d)

	var out bytes.Buffer
	mon.dispatch("io", &out)
	if !strings.Contains(out.String(), "PIC data (IMR)") {
		t.Fatalf("expected io output to list known ports, got:\n%s", out.String())
	}

	out.Reset()
	mon.dispatch("backtrace 1", &out)
	if !strings.Contains(out.String(), "4242") {
		t.Fatalf("expected backtrace output to show the pushed return address, got:\n%s", out.String())
	}
}

func TestMachineMonitor_Dispatch_UnknownCommand(t *testing.T) {
	mon := NewMachineMonitor(NewDebugCPU8086(NewMachine()))
	var out bytes.Buffer
	mon.dispatch("frobnicate", &out)
	if !strings.Contains(out.String(), "unknown command") {
		t.Fatalf("expected an unknown-command message, got:\n%s", out.String())
	}
}

func TestMachineMonitor_Dispatch_Quit(t *testing.T) {
	mon := NewMachineMonitor(NewDebugCPU8086(NewMachine()))
	var out bytes.Buffer
	if !mon.dispatch("quit", &out) {
		t.Fatal("expected quit to signal REPL exit")
	}
}

func TestMachineMonitor_Dispatch_History(t *testing.T) {
	mon := NewMachineMonitor(NewDebugCPU8086(NewMachine()))
	mon.appendOutput("first")
	mon.appendOutput("second")

	var out bytes.Buffer
	mon.dispatch("history 2", &out)
	if !strings.Contains(out.String(), "first") || !strings.Contains(out.String(), "second") {
		t.Fatalf("expected history output to contain both lines, got:\n%s", out.String())
	}
}

func TestMachineMonitor_RunREPL(t *testing.T) {
	m := NewMachine()
	mon := NewMachineMonitor(NewDebugCPU8086(m))

	in := strings.NewReader("regs\nquit\n")
	var out bytes.Buffer
	mon.RunREPL(in, &out)

	if mon.IsActive() {
		t.Fatal("expected RunREPL to deactivate the monitor on quit")
	}
	if !strings.Contains(out.String(), "MACHINE MONITOR") {
		t.Fatalf("expected a banner line, got:\n%s", out.String())
	}
}
