// debug_repl.go - line-oriented command interpreter for the machine monitor.
//
// Replaces the teacher's debug_commands.go, which dispatched roughly 1800
// lines of Ebiten-overlay keystroke handling (cursor movement inside a
// rendered scrollback, hex-editor nibble entry, macro recording) across a
// multi-CPU registry. This console REPL reads one command per line from an
// io.Reader and writes results to an io.Writer, so it works the same way
// whether main.go wires it to os.Stdin/os.Stdout (GUI frontend, which
// leaves stdin free) or to a test's bytes.Buffer.
package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// RunREPL reads commands from in, one per line, until "quit" or EOF, writing
// each command's output to out and recording it in the monitor's scrollback.
func (m *MachineMonitor) RunREPL(in io.Reader, out io.Writer) {
	m.Activate()
	defer m.Deactivate()

	scanner := bufio.NewScanner(in)
	fmt.Fprintln(out, "MACHINE MONITOR - type help for commands")
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var printed strings.Builder
		quit := m.dispatch(line, io.MultiWriter(out, &printed))
		if text := strings.TrimSuffix(printed.String(), "\n"); text != "" {
			m.mu.Lock()
			for _, l := range strings.Split(text, "\n") {
				m.appendOutput(l)
			}
			m.mu.Unlock()
		}
		if quit {
			return
		}
	}
}

// dispatch executes one command line, returning true if the REPL should
// exit.
func (m *MachineMonitor) dispatch(line string, out io.Writer) bool {
	fields := strings.Fields(line)
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "quit", "exit":
		return true

	case "help", "?":
		fmt.Fprintln(out, "regs | mem <addr> [len] | disasm <addr> [count] | break <addr> [cond] |")
		fmt.Fprintln(out, "clearbreak <addr> | listbreaks | watch <addr> | clearwatch <addr> |")
		fmt.Fprintln(out, "step [n] | continue | io | backtrace [depth] | save <file> | load <file> |")
		fmt.Fprintln(out, "script <file> | history [n] | quit")

	case "regs", "r":
		m.printRegisters(out)

	case "mem", "m":
		if len(args) < 1 {
			fmt.Fprintln(out, "usage: mem <addr> [len]")
			return false
		}
		addr := parseHex(args[0])
		length := 64
		if len(args) >= 2 {
			if n, err := strconv.Atoi(args[1]); err == nil {
				length = n
			}
		}
		m.printMemory(out, addr, length)

	case "disasm", "d", "u":
		addr := m.cpu.GetPC()
		if len(args) >= 1 {
			addr = parseHex(args[0])
		}
		count := 8
		if len(args) >= 2 {
			if n, err := strconv.Atoi(args[1]); err == nil {
				count = n
			}
		}
		for _, l := range m.cpu.Disassemble(addr, count) {
			marker := " "
			if l.IsPC {
				marker = "*"
			}
			fmt.Fprintf(out, "%s%05X  %-12s %s\n", marker, l.Address, l.HexBytes, l.Mnemonic)
		}

	case "break", "b":
		if len(args) < 1 {
			fmt.Fprintln(out, "usage: break <addr> [condition]")
			return false
		}
		addr := parseHex(args[0])
		if len(args) >= 2 {
			cond, err := ParseCondition(strings.Join(args[1:], ""))
			if err != nil {
				fmt.Fprintf(out, "bad condition: %v\n", err)
				return false
			}
			m.cpu.SetConditionalBreakpoint(addr, cond)
		} else {
			m.cpu.SetBreakpoint(addr)
		}
		fmt.Fprintf(out, "breakpoint set at %05X\n", addr)

	case "clearbreak", "cb":
		if len(args) < 1 {
			fmt.Fprintln(out, "usage: clearbreak <addr>")
			return false
		}
		m.cpu.ClearBreakpoint(parseHex(args[0]))

	case "listbreaks", "lb":
		for _, bp := range m.cpu.ListConditionalBreakpoints() {
			if bp.Condition != nil {
				fmt.Fprintf(out, "%05X  %s\n", bp.Address, FormatCondition(bp.Condition))
			} else {
				fmt.Fprintf(out, "%05X\n", bp.Address)
			}
		}

	case "watch", "w":
		if len(args) < 1 {
			fmt.Fprintln(out, "usage: watch <addr>")
			return false
		}
		m.cpu.SetWatchpoint(parseHex(args[0]))

	case "clearwatch", "cw":
		if len(args) < 1 {
			fmt.Fprintln(out, "usage: clearwatch <addr>")
			return false
		}
		m.cpu.ClearWatchpoint(parseHex(args[0]))

	case "step", "s":
		n := 1
		if len(args) >= 1 {
			if v, err := strconv.Atoi(args[0]); err == nil {
				n = v
			}
		}
		for range n {
			m.cpu.Step()
		}
		m.printRegisters(out)

	case "continue", "c", "go":
		m.cpu.Resume()
		m.wasRunning = true
		fmt.Fprintln(out, "running; breakpoint/watchpoint hit will re-enter the monitor")

	case "io":
		fmt.Fprintln(out, formatIOView(m.cpu.machine.Bus))

	case "backtrace", "bt":
		depth := 8
		if len(args) >= 1 {
			if v, err := strconv.Atoi(args[0]); err == nil {
				depth = v
			}
		}
		fmt.Fprintln(out, formatBacktrace(backtrace(m.cpu, depth)))

	case "save":
		if len(args) < 1 {
			fmt.Fprintln(out, "usage: save <file>")
			return false
		}
		snap := TakeSnapshot(m.cpu)
		if err := SaveSnapshotToFile(snap, args[0]); err != nil {
			fmt.Fprintf(out, "save failed: %v\n", err)
		}

	case "load":
		if len(args) < 1 {
			fmt.Fprintln(out, "usage: load <file>")
			return false
		}
		snap, err := LoadSnapshotFromFile(args[0])
		if err != nil {
			fmt.Fprintf(out, "load failed: %v\n", err)
			return false
		}
		RestoreSnapshot(m.cpu, snap)

	case "history", "hist":
		n := 20
		if len(args) >= 1 {
			if v, err := strconv.Atoi(args[0]); err == nil {
				n = v
			}
		}
		for _, line := range m.Scrollback(n) {
			fmt.Fprintln(out, line)
		}

	case "script":
		if len(args) < 1 {
			fmt.Fprintln(out, "usage: script <file>")
			return false
		}
		if err := RunScript(m.cpu, args[0]); err != nil {
			fmt.Fprintf(out, "script failed: %v\n", err)
		}

	default:
		fmt.Fprintf(out, "unknown command: %s\n", cmd)
	}
	return false
}

func (m *MachineMonitor) printRegisters(out io.Writer) {
	for _, r := range m.cpu.GetRegisters() {
		fmt.Fprintf(out, "%-5s %04X\n", r.Name, r.Value)
	}
}

func (m *MachineMonitor) printMemory(out io.Writer, addr uint64, length int) {
	data := m.cpu.ReadMemory(addr, length)
	for i := 0; i < len(data); i += 16 {
		end := min(i+16, len(data))
		fmt.Fprintf(out, "%05X  % X\n", addr+uint64(i), data[i:end])
	}
}

// parseHex parses a hex address with an optional "0x" or "$" prefix.
func parseHex(s string) uint64 {
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "$")
	v, _ := strconv.ParseUint(s, 16, 64)
	return v
}
