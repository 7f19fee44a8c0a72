// memory.go - flat 1 MB physical memory for the 8086/5150 core
//
// Grounded on memory_bus.go's region-table + mutex discipline and on
// original_source/Memory.cpp (readByte/readWord/setByte/setWord,
// little-endian word packing, loadData-at-offset for ROM images).

package main

import "sync"

// RAMSize is the 8086's full 1 MB real-mode physical address space.
const RAMSize = 1 << 20

// Memory is the flat byte-addressable backing store every segment:offset
// access resolves into. It never resizes and never traps: addresses are
// masked modulo RAMSize rather than bounds-checked, matching the 8086's own
// address wraparound behavior at the top of the megabyte.
type Memory struct {
	mu   sync.RWMutex
	ram  [RAMSize]byte
	// watch, when non-nil, logs reads/writes at the recorded addresses.
	// A pure observer: it never alters a read or write's outcome.
	watch map[uint32]bool
}

// NewMemory returns a zeroed 1 MB memory array.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) mask(addr uint32) uint32 {
	return addr & (RAMSize - 1)
}

// ReadByte reads one byte at the given physical address.
func (m *Memory) ReadByte(addr uint32) byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a := m.mask(addr)
	v := m.ram[a]
	if m.watch != nil && m.watch[a] {
		debugLogf("memory: read byte %#02x from %#05x", v, a)
	}
	return v
}

// ReadWord reads a little-endian 16-bit word (low byte at addr, high byte at
// addr+1, each independently masked into the 1 MB space).
func (m *Memory) ReadWord(addr uint32) uint16 {
	lo := m.ReadByte(addr)
	hi := m.ReadByte(addr + 1)
	return uint16(lo) | uint16(hi)<<8
}

// WriteByte writes one byte at the given physical address.
func (m *Memory) WriteByte(addr uint32, v byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := m.mask(addr)
	m.ram[a] = v
	if m.watch != nil && m.watch[a] {
		debugLogf("memory: wrote byte %#02x to %#05x", v, a)
	}
}

// WriteWord writes a little-endian 16-bit word.
func (m *Memory) WriteWord(addr uint32, v uint16) {
	m.WriteByte(addr, byte(v))
	m.WriteByte(addr+1, byte(v>>8))
}

// LoadRegion copies data into memory starting at base, used to place the
// BIOS ROM and cassette BASIC ROM images into the address space at
// start-up. Floppy images are not loaded here; the FDC keeps its own copy.
func (m *Memory) LoadRegion(data []byte, base uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, b := range data {
		m.ram[m.mask(base+uint32(i))] = b
	}
}

// SetWatch marks a physical address for debug-level read/write logging.
func (m *Memory) SetWatch(addr uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.watch == nil {
		m.watch = make(map[uint32]bool)
	}
	m.watch[addr] = true
}

// TextBuffer returns a snapshot copy of the CGA text framebuffer (the
// cgaTextBufferSize = 80x25x2 bytes from 0xB8000), read out-of-band by a
// frame consumer. It never mutates
// memory and never blocks the compute loop for longer than the copy itself.
func (m *Memory) TextBuffer() [cgaTextBufferSize]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var buf [cgaTextBufferSize]byte
	copy(buf[:], m.ram[cgaBaseAddress:cgaBaseAddress+cgaTextBufferSize])
	return buf
}
