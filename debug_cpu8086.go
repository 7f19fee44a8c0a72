// debug_cpu8086.go - 8086 debug adapter for the machine monitor.
//
// Grounded on the teacher's debug_cpu_x86.go: the same DebuggableCPU shape
// (register table, breakpoint/watchpoint maps guarded by a RWMutex, a
// trap-mode single-step loop that Resume starts and Freeze stops, checking
// breakpoints and watchpoints after every instruction) carried over to
// CPU/Memory instead of CPU_X86/
// CPUX86Runner. PC and memory addresses are both physical (CS<<4+IP and
// segment:offset already combined), matching the 20-bit address space
// AddressWidth reports.
package main

import (
	"strings"
	"sync"
	"sync/atomic"
)

// DebugCPU8086 adapts a Machine's CPU to the DebuggableCPU interface.
type DebugCPU8086 struct {
	machine *Machine

	bpMu        sync.RWMutex
	breakpoints map[uint64]*ConditionalBreakpoint
	watchpoints map[uint64]*Watchpoint

	bpChan chan<- BreakpointEvent
	cpuID  int

	trapRunning atomic.Bool
	trapStop    chan struct{}
}

// NewDebugCPU8086 returns a debug adapter wrapping machine's CPU.
func NewDebugCPU8086(machine *Machine) *DebugCPU8086 {
	return &DebugCPU8086{
		machine:     machine,
		breakpoints: make(map[uint64]*ConditionalBreakpoint),
		watchpoints: make(map[uint64]*Watchpoint),
	}
}

func (d *DebugCPU8086) CPUName() string   { return "8086" }
func (d *DebugCPU8086) AddressWidth() int { return 20 }

func (d *DebugCPU8086) GetRegisters() []RegisterInfo {
	c := d.machine.CPU
	return []RegisterInfo{
		{Name: "AX", BitWidth: 16, Value: uint64(c.AX), Group: "general"},
		{Name: "BX", BitWidth: 16, Value: uint64(c.BX), Group: "general"},
		{Name: "CX", BitWidth: 16, Value: uint64(c.CX), Group: "general"},
		{Name: "DX", BitWidth: 16, Value: uint64(c.DX), Group: "general"},
		{Name: "SI", BitWidth: 16, Value: uint64(c.SI), Group: "index"},
		{Name: "DI", BitWidth: 16, Value: uint64(c.DI), Group: "index"},
		{Name: "BP", BitWidth: 16, Value: uint64(c.BP), Group: "index"},
		{Name: "SP", BitWidth: 16, Value: uint64(c.SP), Group: "index"},
		{Name: "IP", BitWidth: 16, Value: uint64(c.IP), Group: "general"},
		{Name: "CS", BitWidth: 16, Value: uint64(c.CS), Group: "segment"},
		{Name: "DS", BitWidth: 16, Value: uint64(c.DS), Group: "segment"},
		{Name: "ES", BitWidth: 16, Value: uint64(c.ES), Group: "segment"},
		{Name: "SS", BitWidth: 16, Value: uint64(c.SS), Group: "segment"},
		{Name: "FLAGS", BitWidth: 16, Value: uint64(c.flagsWord()), Group: "flags"},
	}
}

func (d *DebugCPU8086) GetRegister(name string) (uint64, bool) {
	c := d.machine.CPU
	switch strings.ToUpper(name) {
	case "AX":
		return uint64(c.AX), true
	case "BX":
		return uint64(c.BX), true
	case "CX":
		return uint64(c.CX), true
	case "DX":
		return uint64(c.DX), true
	case "SI":
		return uint64(c.SI), true
	case "DI":
		return uint64(c.DI), true
	case "BP":
		return uint64(c.BP), true
	case "SP":
		return uint64(c.SP), true
	case "IP":
		return uint64(c.IP), true
	case "CS":
		return uint64(c.CS), true
	case "DS":
		return uint64(c.DS), true
	case "ES":
		return uint64(c.ES), true
	case "SS":
		return uint64(c.SS), true
	case "FLAGS":
		return uint64(c.flagsWord()), true
	}
	return 0, false
}

func (d *DebugCPU8086) SetRegister(name string, value uint64) bool {
	c := d.machine.CPU
	switch strings.ToUpper(name) {
	case "AX":
		c.AX = uint16(value)
	case "BX":
		c.BX = uint16(value)
	case "CX":
		c.CX = uint16(value)
	case "DX":
		c.DX = uint16(value)
	case "SI":
		c.SI = uint16(value)
	case "DI":
		c.DI = uint16(value)
	case "BP":
		c.BP = uint16(value)
	case "SP":
		c.SP = uint16(value)
	case "IP":
		c.IP = uint16(value)
	case "CS":
		c.CS = uint16(value)
	case "DS":
		c.DS = uint16(value)
	case "ES":
		c.ES = uint16(value)
	case "SS":
		c.SS = uint16(value)
	case "FLAGS":
		c.setFlagsWord(uint16(value))
	default:
		return false
	}
	return true
}

// GetPC and SetPC address the physical CS:IP byte, not the raw IP offset,
// so breakpoints and disassembly work across segment boundaries.
func (d *DebugCPU8086) GetPC() uint64 {
	c := d.machine.CPU
	return uint64(c.physical(c.CS, c.IP))
}

func (d *DebugCPU8086) SetPC(addr uint64) {
	c := d.machine.CPU
	c.CS = uint16(addr >> 4)
	c.IP = uint16(addr & 0xF)
}

func (d *DebugCPU8086) IsRunning() bool {
	return d.trapRunning.Load()
}

// Freeze stops the trap-mode single-step loop if one is running.
func (d *DebugCPU8086) Freeze() {
	if d.trapRunning.Load() {
		close(d.trapStop)
		for d.trapRunning.Load() {
		}
	}
}

// Resume starts a trap-mode single-step loop that checks breakpoints and
// watchpoints after every instruction. The compute loop driven by Runtime
// must be stopped before calling Resume, since both would otherwise step
// the same CPU concurrently; Resume itself does not check this.
func (d *DebugCPU8086) Resume() {
	d.trapStop = make(chan struct{})
	d.trapRunning.Store(true)
	go d.trapLoop()
}

func (d *DebugCPU8086) trapLoop() {
	defer d.trapRunning.Store(false)
	for {
		select {
		case <-d.trapStop:
			return
		default:
		}

		pc := d.GetPC()
		d.bpMu.RLock()
		bp := d.breakpoints[pc]
		d.bpMu.RUnlock()
		if bp != nil {
			bp.HitCount++
			if evaluateConditionWithHitCount(bp.Condition, d, bp.HitCount) {
				if d.bpChan != nil {
					select {
					case d.bpChan <- BreakpointEvent{CPUID: d.cpuID, Address: pc}:
					default:
					}
				}
				return
			}
		}

		d.machine.Step()

		d.bpMu.RLock()
		for addr, wp := range d.watchpoints {
			cur := d.machine.Memory.ReadByte(uint32(addr))
			if cur != wp.LastValue {
				old := wp.LastValue
				wp.LastValue = cur
				d.bpMu.RUnlock()
				if d.bpChan != nil {
					select {
					case d.bpChan <- BreakpointEvent{
						CPUID: d.cpuID, Address: d.GetPC(),
						IsWatch: true, WatchAddr: addr,
						WatchOldValue: old, WatchNewValue: cur,
					}:
					default:
					}
				}
				return
			}
		}
		d.bpMu.RUnlock()
	}
}

func (d *DebugCPU8086) Step() int {
	d.machine.Step()
	return 1
}

func (d *DebugCPU8086) Disassemble(addr uint64, count int) []DisassembledLine {
	pc := d.GetPC()
	lines := disassemble8086(d.ReadMemory, addr, count)
	for i := range lines {
		if lines[i].Address == pc {
			lines[i].IsPC = true
		}
	}
	return lines
}

func (d *DebugCPU8086) SetBreakpoint(addr uint64) bool {
	d.bpMu.Lock()
	defer d.bpMu.Unlock()
	d.breakpoints[addr] = &ConditionalBreakpoint{Address: addr}
	return true
}

func (d *DebugCPU8086) SetConditionalBreakpoint(addr uint64, cond *BreakpointCondition) bool {
	d.bpMu.Lock()
	defer d.bpMu.Unlock()
	d.breakpoints[addr] = &ConditionalBreakpoint{Address: addr, Condition: cond}
	return true
}

func (d *DebugCPU8086) ClearBreakpoint(addr uint64) bool {
	d.bpMu.Lock()
	defer d.bpMu.Unlock()
	if _, ok := d.breakpoints[addr]; ok {
		delete(d.breakpoints, addr)
		return true
	}
	return false
}

func (d *DebugCPU8086) ClearAllBreakpoints() {
	d.bpMu.Lock()
	defer d.bpMu.Unlock()
	d.breakpoints = make(map[uint64]*ConditionalBreakpoint)
}

func (d *DebugCPU8086) ListBreakpoints() []uint64 {
	d.bpMu.RLock()
	defer d.bpMu.RUnlock()
	result := make([]uint64, 0, len(d.breakpoints))
	for addr := range d.breakpoints {
		result = append(result, addr)
	}
	return result
}

func (d *DebugCPU8086) ListConditionalBreakpoints() []*ConditionalBreakpoint {
	d.bpMu.RLock()
	defer d.bpMu.RUnlock()
	result := make([]*ConditionalBreakpoint, 0, len(d.breakpoints))
	for _, bp := range d.breakpoints {
		result = append(result, bp)
	}
	return result
}

func (d *DebugCPU8086) HasBreakpoint(addr uint64) bool {
	d.bpMu.RLock()
	defer d.bpMu.RUnlock()
	_, ok := d.breakpoints[addr]
	return ok
}

func (d *DebugCPU8086) GetConditionalBreakpoint(addr uint64) *ConditionalBreakpoint {
	d.bpMu.RLock()
	defer d.bpMu.RUnlock()
	return d.breakpoints[addr]
}

func (d *DebugCPU8086) SetWatchpoint(addr uint64) bool {
	d.bpMu.Lock()
	defer d.bpMu.Unlock()
	val := d.machine.Memory.ReadByte(uint32(addr))
	d.watchpoints[addr] = &Watchpoint{Address: addr, LastValue: val}
	return true
}

func (d *DebugCPU8086) ClearWatchpoint(addr uint64) bool {
	d.bpMu.Lock()
	defer d.bpMu.Unlock()
	if _, ok := d.watchpoints[addr]; ok {
		delete(d.watchpoints, addr)
		return true
	}
	return false
}

func (d *DebugCPU8086) ClearAllWatchpoints() {
	d.bpMu.Lock()
	defer d.bpMu.Unlock()
	d.watchpoints = make(map[uint64]*Watchpoint)
}

func (d *DebugCPU8086) ListWatchpoints() []uint64 {
	d.bpMu.RLock()
	defer d.bpMu.RUnlock()
	result := make([]uint64, 0, len(d.watchpoints))
	for addr := range d.watchpoints {
		result = append(result, addr)
	}
	return result
}

func (d *DebugCPU8086) ReadMemory(addr uint64, size int) []byte {
	result := make([]byte, size)
	for i := range size {
		result[i] = d.machine.Memory.ReadByte(uint32(addr) + uint32(i))
	}
	return result
}

func (d *DebugCPU8086) WriteMemory(addr uint64, data []byte) {
	for i, b := range data {
		d.machine.Memory.WriteByte(uint32(addr)+uint32(i), b)
	}
}

func (d *DebugCPU8086) SetBreakpointChannel(ch chan<- BreakpointEvent, cpuID int) {
	d.bpChan = ch
	d.cpuID = cpuID
}
