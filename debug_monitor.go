// debug_monitor.go - Machine Monitor core for the 8086/5150 debugger.
//
// Trimmed from the teacher's debug_monitor.go, which drove a multi-CPU
// registry, an Ebiten text overlay, a hex editor, run-until temp
// breakpoints, write-history tracing to file, and backstep through the
// Ebiten render loop's own mutex-yielding discipline -- features built for
// a six-architecture emulator where several CPUs could be live at once and
// the monitor was rendered as a window overlay. This machine has exactly
// one CPU and a console frontend (terminal.go reads raw stdin itself, so
// the monitor gets its own io.Reader/io.Writer rather than owning a
// terminal), so MachineMonitor keeps only what a single-CPU console
// debugger needs: freeze/resume around breakpoint hits, a scrollback
// buffer, and the REPL in debug_repl.go. Breakpoint/watchpoint storage lives
// in the 8086 adapter, debug_cpu8086.go; condition evaluation and save/load
// state live in debug_conditions.go and debug_snapshot.go, which are
// CPU-agnostic.
package main

import (
	"fmt"
	"sync"
)

// MonitorState represents whether the monitor is active.
type MonitorState int

const (
	MonitorInactive MonitorState = iota
	MonitorActive
)

// scrollbackCols and scrollbackLines size the monitor's output history: wide
// enough for a disassembly or register-dump line, deep enough to hold a long
// session without unbounded growth.
const (
	scrollbackCols  = 200
	scrollbackLines = 2000
)

// MachineMonitor is the single-CPU debugger state machine: it freezes and
// resumes the CPU around monitor sessions and breakpoint hits, and keeps a
// scrollback of everything the REPL has printed in a ScreenBuffer
// (video_screen_buffer.go), which the REPL's history command reads back.
type MachineMonitor struct {
	mu    sync.Mutex
	state MonitorState

	cpu            *DebugCPU8086
	breakpointChan chan BreakpointEvent

	scrollback   *ScreenBuffer
	linesWritten int

	wasRunning bool
}

// NewMachineMonitor creates a monitor for the given CPU adapter and wires
// its breakpoint channel so hits auto-activate the monitor.
func NewMachineMonitor(cpu *DebugCPU8086) *MachineMonitor {
	m := &MachineMonitor{
		state:          MonitorInactive,
		cpu:            cpu,
		breakpointChan: make(chan BreakpointEvent, 1),
		scrollback:     NewScreenBuffer(scrollbackCols, 24, scrollbackLines),
	}
	cpu.SetBreakpointChannel(m.breakpointChan, 0)
	return m
}

// IsActive returns whether the monitor is currently in control of the CPU.
func (m *MachineMonitor) IsActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == MonitorActive
}

// Activate freezes the CPU's trap-mode loop if one is running and enters
// the monitor.
func (m *MachineMonitor) Activate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == MonitorActive {
		return
	}
	m.state = MonitorActive
	m.wasRunning = m.cpu.IsRunning()
	if m.wasRunning {
		m.cpu.Freeze()
	}
	m.appendOutput("MACHINE MONITOR - type help for commands")
}

// Deactivate resumes the CPU's trap-mode loop if it was running when
// Activate was called, and leaves the monitor.
func (m *MachineMonitor) Deactivate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == MonitorInactive {
		return
	}
	m.state = MonitorInactive
	if m.wasRunning {
		m.cpu.Resume()
	}
}

// appendOutput writes a line to the scrollback buffer, one character at a
// time through ScreenBuffer.PutChar so the buffer's own line-wrap and
// history-trimming rules apply exactly as they would to a live CGA screen.
func (m *MachineMonitor) appendOutput(text string) {
	m.scrollback.PutChar('\r')
	for i := 0; i < len(text); i++ {
		m.scrollback.PutChar(text[i])
	}
	m.scrollback.PutChar('\n')
	m.linesWritten++
}

// Scrollback returns the last n printed lines, oldest first. appendOutput
// ends every line with '\n', so the newest line sits on the row just above
// the cursor; counting back from the cursor stays correct after the
// buffer's trimToMaxLines evicts old rows, since it shifts cursorY in
// lockstep. A line longer than scrollbackCols wraps onto further rows and
// counts as that many lines here.
func (m *MachineMonitor) Scrollback(n int) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, cur := m.scrollback.CursorPos()
	count := max(min(n, m.linesWritten, cur), 0)
	lines := make([]string, 0, count)
	for row := cur - count; row < cur; row++ {
		lines = append(lines, m.scrollback.ReadLine(row))
	}
	return lines
}

// StartBreakpointListener runs a background goroutine that activates the
// monitor whenever the CPU's trap loop reports a breakpoint or watchpoint
// hit, printing a one-line summary of what fired.
func (m *MachineMonitor) StartBreakpointListener() {
	go func() {
		for ev := range m.breakpointChan {
			m.handleBreakpointHit(ev)
		}
	}()
}

func (m *MachineMonitor) handleBreakpointHit(ev BreakpointEvent) {
	var msg string
	if ev.IsWatch {
		msg = fmt.Sprintf("WATCH $%X: $%02X -> $%02X at PC=$%X", ev.WatchAddr, ev.WatchOldValue, ev.WatchNewValue, ev.Address)
	} else {
		msg = fmt.Sprintf("BREAK at $%X", ev.Address)
	}

	m.mu.Lock()
	already := m.state == MonitorActive
	m.state = MonitorActive
	if !already {
		m.wasRunning = true // the CPU was running until the trap loop stopped itself
	}
	m.appendOutput(msg)
	m.mu.Unlock()
}
