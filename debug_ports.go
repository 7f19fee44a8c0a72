// debug_ports.go - I/O port inspection for the machine monitor.
//
// Replaces the teacher's debug_ioview.go, which described a handful of
// fixed MMIO register blocks (video/audio/PSG/SID/...) in the 0xF0000+
// range for six different architectures. The 5150 has no MMIO register
// windows at all (only the CGA text buffer is memory-mapped, and that is
// ordinary RAM from the debugger's point of view); every device register
// lives in the 16-bit port space ports.go already maps out, so this file
// just walks that map and reads each port back through the live Bus.
package main

import "fmt"

// portDesc names one inspectable port for the "io" monitor command.
type portDesc struct {
	port uint16
	name string
}

// portList is the fixed set of readable 5150 ports, in port-map order.
var portList = []portDesc{
	{portDMACommand, "DMA command"},
	{portDMASingleMsk, "DMA single mask"},
	{portDMAMode, "DMA mode"},
	{portPICCommand, "PIC command/status"},
	{portPICData, "PIC data (IMR)"},
	{portPITChan0, "PIT counter 0"},
	{portPITChan1, "PIT counter 1"},
	{portPITChan2, "PIT counter 2"},
	{portPPIPortA, "PPI port A (keyboard)"},
	{portPPIPortB, "PPI port B"},
	{portPPIPortC, "PPI port C"},
	{portCGAStatus, "CGA status (retrace)"},
	{portFDCMainStatus, "FDC main status"},
	{portFDCFIFO, "FDC FIFO"},
}

// formatIOView renders the current value of every inspectable port.
func formatIOView(bus *Bus) string {
	lines := make([]string, 0, len(portList)+1)
	lines = append(lines, "port   owner  value  description")
	for _, p := range portList {
		v := bus.In(p.port)
		lines = append(lines, fmt.Sprintf("%#04x  %-5s  %#02x   %s", p.port, portOwner(p.port), v, p.name))
	}
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += l
	}
	return out
}
