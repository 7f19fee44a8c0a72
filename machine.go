// machine.go - top-level composition of the 8086/5150 core.
//
// Grounded on original_source/PC.hpp and PC.cpp: Machine plays the same role
// PC did there, owning every component and wiring them together leaves-first
// (PIC before the devices that raise interrupts through it, all devices
// before the bus that routes ports to them, the bus before the CPU that
// issues IN/OUT through it). ROM/disk images are loaded from caller-supplied
// byte slices rather than hardcoded paths read inside the constructor, since
// file I/O belongs at the main.go boundary per spec.md section 1.
package main

// Machine owns every component of one emulated 5150 and the wiring between
// them.
type Machine struct {
	Memory *Memory
	Bus    *Bus
	CPU    *CPU

	DMA *DMA
	PIC *PIC
	PIT *PIT
	PPI *PPI
	CGA *CGA
	FDC *FDC
}

// NewMachine constructs a fully-wired, freshly-reset machine with no ROM or
// disk image loaded.
func NewMachine() *Machine {
	mem := NewMemory()
	pic := NewPIC()

	dma := NewDMA()
	pit := NewPIT(pic)
	ppi := NewPPI(pic)
	cga := NewCGA(mem)
	fdc := NewFDC(pic)

	bus := NewBus(dma, pic, pit, ppi, cga, fdc)
	cpu := NewCPU(mem, bus, pic)

	return &Machine{
		Memory: mem,
		Bus:    bus,
		CPU:    cpu,
		DMA:    dma,
		PIC:    pic,
		PIT:    pit,
		PPI:    ppi,
		CGA:    cga,
		FDC:    fdc,
	}
}

// LoadBIOS places a ROM image at the top of the address space (conventionally
// 0xF0000-0xFFFFF on a 5150's 64K BIOS ROM, mapped at romRegionStart).
func (m *Machine) LoadBIOS(image []byte) {
	m.Memory.LoadRegion(image, romRegionStart)
}

// LoadBASIC places the cassette BASIC ROM image at the given physical base,
// typically immediately below the BIOS ROM.
func (m *Machine) LoadBASIC(image []byte, base uint32) {
	m.Memory.LoadRegion(image, base)
}

// LoadFloppyA loads a raw sector-ordered floppy image into drive A.
func (m *Machine) LoadFloppyA(image []byte) {
	m.FDC.LoadImage(image)
}

// Reset restores the CPU to its power-on state; the reset vector (0xFFFF0)
// is expected to already hold BIOS entry code via LoadBIOS.
func (m *Machine) Reset() {
	m.CPU.Reset()
}

// Step executes exactly one CPU instruction and advances the PIT by one
// tick, matching the compute loop's one-opcode-per-tick cycle model from
// spec.md section 5.
func (m *Machine) Step() {
	m.CPU.Step()
	m.Bus.Tick()
}

// InjectKeyDown and InjectKeyUp forward a host keyboard event from a frame
// consumer into the PPI/keyboard model.
func (m *Machine) InjectKeyDown(hidUsageID byte) { m.PPI.KeyDown(hidUsageID) }
func (m *Machine) InjectKeyUp(hidUsageID byte)   { m.PPI.KeyUp(hidUsageID) }

// FrameSnapshot returns the current CGA frame for a frame consumer to render.
func (m *Machine) FrameSnapshot() Snapshot {
	return m.CGA.TakeSnapshot()
}
