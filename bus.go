// bus.go - port-mapped I/O bus for the 8086/5150 core
//
// Grounded on machine_bus.go's mutex-guarded dispatch-table idiom, retargeted
// from a 32-bit MMIO address bus to the 5150's 16-bit IN/OUT port space
// described in spec.md section 4.2 and the port map in ports.go. Memory-mapped
// video (0xB8000-0xBBFFF) is ordinary RAM from the CPU's point of view and is
// served directly by Memory; only IN/OUT go through Bus.
package main

import "sync"

// Bus routes the CPU's IN/OUT instructions to the device that owns a given
// port. An unknown port read returns 0; an unknown port write is a no-op;
// both are logged at debug level per spec.md section 4.2.
type Bus struct {
	mu      sync.Mutex
	dma     *DMA
	pic     *PIC
	pit     *PIT
	ppi     *PPI
	cga     *CGA
	fdc     *FDC
	verbose bool
}

// NewBus wires the device set into a single port-routing bus. The devices
// must already exist (the PIC is constructed first, since PIT/PPI/FDC all
// borrow a reference to it).
func NewBus(dma *DMA, pic *PIC, pit *PIT, ppi *PPI, cga *CGA, fdc *FDC) *Bus {
	return &Bus{dma: dma, pic: pic, pit: pit, ppi: ppi, cga: cga, fdc: fdc}
}

// In reads a byte from the given port, routing to the owning device.
func (b *Bus) In(port uint16) byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case isDMAChannelPort(port):
		return b.dma.ReadChannelPort(port)
	case port == portPICCommand:
		return b.pic.ReadStatus()
	case port == portPICData:
		return b.pic.ReadData()
	case port == portPITChan0, port == portPITChan1, port == portPITChan2:
		return b.pit.ReadCounter(int(port - portPITChan0))
	case port == portPPIPortA:
		return b.ppi.ReadA()
	case port == portPPIPortB:
		return b.ppi.ReadB()
	case port == portPPIPortC:
		return b.ppi.ReadC()
	case port == portCGAStatus:
		return b.cga.Status()
	case port == portFDCMainStatus:
		return b.fdc.ReadStatus()
	case port == portFDCFIFO:
		return b.fdc.ReadData()
	case port == portGamePort:
		return 0xFF // no game adapter present
	default:
		b.logUnknown("read", port)
		return 0
	}
}

// Out writes a byte to the given port, routing to the owning device.
func (b *Bus) Out(port uint16, v byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case isDMAChannelPort(port):
		b.dma.WriteChannelPort(port, v)
	case port == portDMACommand:
		b.dma.WriteCommand(v)
	case port == portDMASingleMsk:
		b.dma.SingleChannelMask(v)
	case port == portDMAMode:
		b.dma.SetMode(v)
	case port == portDMAReset:
		b.dma.MasterReset()
	case port == portDMAMultiMsk:
		b.dma.MultiChannelMask(v)
	case isDMAPagePort(port):
		b.dma.SetPage(byte(port-portDMAPageBase), v)
	case port == portPICCommand:
		b.pic.WriteCommand(v)
	case port == portPICData:
		b.pic.WriteData(v)
	case port == portPITChan0, port == portPITChan1, port == portPITChan2:
		b.pit.WriteCounter(int(port-portPITChan0), v)
	case port == portPITControl:
		b.pit.WriteControl(v)
	case port == portPPIPortB:
		b.ppi.SetB(v)
	case port == portPPIControl:
		b.ppi.SetControl(v)
	case port == portCGAIndex:
		b.cga.SetRegisterIndex(v)
	case port == portCGAValue:
		b.cga.SetRegisterValue(v)
	case port == portCGAMode:
		b.cga.SetMode(v)
	case port == portCGAColor:
		b.cga.SetColor(v)
	case port == portFDCDigitalOutput:
		b.fdc.WriteControl(v)
	case port == portFDCFIFO:
		b.fdc.WriteCommand(v)
	default:
		b.logUnknown("write", port)
	}
}

func (b *Bus) logUnknown(op string, port uint16) {
	debugLogf("bus: unknown port %s at %#04x (owner=%s)", op, port, portOwner(port))
}

// Tick advances the PIT by one count and is called once per CPU instruction
// from the compute loop, matching the "one opcode ~= one tick" cycle model.
func (b *Bus) Tick() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pit.Update()
}
