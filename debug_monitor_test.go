package main

import (
	"testing"
	"time"
)

func TestMachineMonitor_ActivateDeactivate(t *testing.T) {
	m := NewMachine()
	mon := NewMachineMonitor(NewDebugCPU8086(m))

	if mon.IsActive() {
		t.Fatal("expected a fresh monitor to be inactive")
	}
	mon.Activate()
	if !mon.IsActive() {
		t.Fatal("expected Activate to mark the monitor active")
	}
	mon.Deactivate()
	if mon.IsActive() {
		t.Fatal("expected Deactivate to mark the monitor inactive")
	}
}

func TestMachineMonitor_ActivateFreezesRunningCPU(t *testing.T) {
	m := NewMachine()
	m.Reset()
	d := NewDebugCPU8086(m)
	mon := NewMachineMonitor(d)

	d.Resume()
	if !d.IsRunning() {
		t.Fatal("expected Resume to start the trap loop")
	}
	mon.Activate()
	if d.IsRunning() {
		t.Fatal("expected Activate to freeze a running CPU")
	}
	mon.Deactivate()
	if !d.IsRunning() {
		t.Fatal("expected Deactivate to resume a CPU that was running before Activate")
	}
	d.Freeze()
}

func TestMachineMonitor_HandleBreakpointHit(t *testing.T) {
	m := NewMachine()
	d := NewDebugCPU8086(m)
	mon := NewMachineMonitor(d)

	mon.handleBreakpointHit(BreakpointEvent{Address: 0x1234})
	if !mon.IsActive() {
		t.Fatal("expected a breakpoint hit to activate the monitor")
	}
	if lines := mon.Scrollback(10); len(lines) == 0 {
		t.Fatal("expected a breakpoint hit to append an output line")
	}
}

func TestMachineMonitor_Scrollback(t *testing.T) {
	m := NewMachine()
	mon := NewMachineMonitor(NewDebugCPU8086(m))

	mon.appendOutput("hello")
	mon.appendOutput("world")
	lines := mon.Scrollback(2)
	if len(lines) != 2 || lines[0] != "hello" || lines[1] != "world" {
		t.Fatalf("got %v, want [hello world]", lines)
	}
}

func TestMachineMonitor_StartBreakpointListener(t *testing.T) {
	m := NewMachine()
	d := NewDebugCPU8086(m)
	mon := NewMachineMonitor(d)
	mon.StartBreakpointListener()

	mon.breakpointChan <- BreakpointEvent{Address: 0x42}
	for i := 0; i < 100; i++ {
		if mon.IsActive() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("expected the breakpoint listener to activate the monitor")
}
