// debug_backtrace.go - stack backtrace for the machine monitor.
//
// The teacher's debug_backtrace.go dispatched across six architectures'
// calling conventions (IE64/IE32/M68K/Z80/6502/X86), each walking a
// differently-sized stack slot at a different register. This machine has
// exactly one calling convention: near CALL pushes a 16-bit return IP onto
// SS:SP, far CALL additionally pushes CS above it. backtrace walks SS:SP
// upward, reading 16-bit little-endian slots, and always collects exactly
// the requested depth; it does not check whether a slot looks like a code
// address.
package main

import "fmt"

// backtraceEntry names one return address found while walking the stack.
type backtraceEntry struct {
	FrameIndex int
	Address    uint64
}

// backtrace walks SS:SP upward from the current stack pointer, reading
// depth 16-bit return addresses. It does not attempt to distinguish a near
// return address (IP only, paired with the CPU's current CS) from a far one
// (CS:IP both on the stack); it reports the raw 16-bit words found, which a
// caller can re-interpret once it recognizes a CALLF frame in the
// disassembly.
func backtrace(cpu *DebugCPU8086, depth int) []backtraceEntry {
	c := cpu.machine.CPU
	entries := make([]backtraceEntry, 0, depth)
	sp := c.SP
	for i := 0; i < depth; i++ {
		addr := uint32(c.SS)<<4 + uint32(sp)
		lo := cpu.machine.Memory.ReadByte(addr)
		hi := cpu.machine.Memory.ReadByte(addr + 1)
		word := uint16(hi)<<8 | uint16(lo)
		entries = append(entries, backtraceEntry{FrameIndex: i, Address: uint64(word)})
		sp += 2
	}
	return entries
}

func formatBacktrace(entries []backtraceEntry) string {
	out := ""
	for i, e := range entries {
		if i > 0 {
			out += "\n"
		}
		out += fmt.Sprintf("#%-2d %04X", e.FrameIndex, e.Address)
	}
	return out
}
