// cpu_ops_test.go - CPU semantics tests.
//
// Table-driven, testing-stdlib-only, covering spec.md section 8's six
// concrete end-to-end scenarios plus a set of round-trip/algebraic-law
// sweeps over the ALU and register-move paths, grounded on the teacher's
// cpu_x86_test.go subtest conventions (t.Run per scenario, plain struct
// literals for setup).
package main

import "testing"

// scenario 1: a freshly-reset CPU fetches from the reset vector.
func TestCPU_ResetFetchesFromResetVector(t *testing.T) {
	m := NewMachine()
	// JMP far 0xF000:0x0000
	m.Memory.WriteByte(0xFFFF0, 0xEA)
	m.Memory.WriteWord(0xFFFF1, 0x0000)
	m.Memory.WriteWord(0xFFFF3, 0xF000)

	m.Reset()
	if m.CPU.CS != resetVectorCS || m.CPU.IP != resetVectorIP {
		t.Fatalf("reset state = CS:IP %04x:%04x, want %04x:%04x", m.CPU.CS, m.CPU.IP, resetVectorCS, resetVectorIP)
	}

	m.CPU.Step()
	if m.CPU.CS != 0xF000 || m.CPU.IP != 0x0000 {
		t.Fatalf("after JMP far, CS:IP = %04x:%04x, want F000:0000", m.CPU.CS, m.CPU.IP)
	}
}

// scenario 2: a timer IRQ, once unmasked and pending, is delivered on the
// very next Step() call - not one instruction late, and not one instruction
// into the ISR.
func TestCPU_TimerInterruptDeliveredOnNextStep(t *testing.T) {
	m := NewMachine()

	// ICW1-4: base vector 0x08, so IRQ0 -> vector 8.
	m.Bus.Out(portPICCommand, 0x11)
	m.Bus.Out(portPICData, 0x08)
	m.Bus.Out(portPICData, 0x00)
	m.Bus.Out(portPICData, 0x01)

	// IVT[8] -> 0x5678:0x1234.
	m.Memory.WriteWord(8*4, 0x1234)
	m.Memory.WriteWord(8*4+2, 0x5678)

	// PIT channel 0, mode 3, binary, lobyte/hibyte, count = 1: fires IRQ0 on
	// the very first tick.
	m.Bus.Out(portPITControl, 0x36)
	m.Bus.Out(portPITChan0, 0x01)
	m.Bus.Out(portPITChan0, 0x00)

	m.CPU.IFlag = true
	m.CPU.CS, m.CPU.IP = 0x0000, 0x0100
	m.CPU.SP = 0x0100

	m.Bus.Tick()
	if !m.PIC.HasPending() {
		t.Fatal("expected IRQ0 pending after PIT tick")
	}

	spBefore := m.CPU.SP
	m.CPU.Step()

	if m.CPU.IP != 0x1234 || m.CPU.CS != 0x5678 {
		t.Fatalf("after interrupt entry, CS:IP = %04x:%04x, want 5678:1234", m.CPU.CS, m.CPU.IP)
	}
	if m.CPU.IFlag {
		t.Fatal("expected IF cleared on interrupt entry")
	}
	if want := spBefore - 6; m.CPU.SP != want {
		t.Fatalf("SP = %#04x, want %#04x (three words pushed)", m.CPU.SP, want)
	}
}

// scenario 3: REP MOVSB copies CX bytes from DS:SI to ES:DI in one Step().
func TestCPU_RepMovsbCopiesString(t *testing.T) {
	m := NewMachine()
	src := []byte("HELLO")
	for i, b := range src {
		m.Memory.WriteByte(0x1000+uint32(i), b)
	}

	m.CPU.CS, m.CPU.IP = 0x0000, 0x0100
	m.CPU.DS, m.CPU.ES = 0x0000, 0x0000
	m.CPU.SI, m.CPU.DI = 0x1000, 0x2000
	m.CPU.CX = uint16(len(src))
	m.CPU.DF = false

	// F3 A4: REP MOVSB
	m.Memory.WriteByte(0x0100, 0xF3)
	m.Memory.WriteByte(0x0101, 0xA4)

	m.CPU.Step()

	if m.CPU.CX != 0 {
		t.Fatalf("CX after REP MOVSB = %d, want 0", m.CPU.CX)
	}
	if m.CPU.SI != 0x1000+uint16(len(src)) || m.CPU.DI != 0x2000+uint16(len(src)) {
		t.Fatalf("SI,DI = %04x,%04x, want %04x,%04x", m.CPU.SI, m.CPU.DI, 0x1000+len(src), 0x2000+len(src))
	}
	for i := range src {
		got := m.Memory.ReadByte(0x2000 + uint32(i))
		if got != src[i] {
			t.Fatalf("byte %d = %#02x, want %#02x", i, got, src[i])
		}
	}
}

// scenario 4: SHL AL,1 with AL=0x81 sets CF and OF from the bit shifted out
// versus the new sign bit, and leaves AL=0x02.
func TestCPU_ShlSetsCarryAndOverflow(t *testing.T) {
	m := NewMachine()
	m.CPU.CS, m.CPU.IP = 0x0000, 0x0100
	m.CPU.SetAL(0x81)

	// D0 /4 (mod=11, reg=100, rm=000 -> AL): SHL AL, 1
	m.Memory.WriteByte(0x0100, 0xD0)
	m.Memory.WriteByte(0x0101, 0xE0)

	m.CPU.Step()

	if got := m.CPU.AL(); got != 0x02 {
		t.Fatalf("AL after SHL = %#02x, want 0x02", got)
	}
	if !m.CPU.CF {
		t.Fatal("expected CF set (bit 7 of 0x81 shifted out)")
	}
	if !m.CPU.OF {
		t.Fatal("expected OF set (sign bit changed on a 1-bit shift)")
	}
	if m.CPU.ZF {
		t.Fatal("expected ZF clear, result is 0x02")
	}
	if m.CPU.SF {
		t.Fatal("expected SF clear, result's bit 7 is 0")
	}
}

// scenario 5: a keyboard key-down latches its scancode into PPI port A and
// raises IRQ1 on the PIC.
func TestCPU_KeyboardRaisesIRQ1(t *testing.T) {
	m := NewMachine()

	m.Bus.Out(portPICCommand, 0x11)
	m.Bus.Out(portPICData, 0x08)
	m.Bus.Out(portPICData, 0x00)
	m.Bus.Out(portPICData, 0x01)

	m.Memory.WriteWord(9*4, 0xABCD)
	m.Memory.WriteWord(9*4+2, 0x0050)

	m.InjectKeyDown(0x04) // HID 'a' -> scancode 0x1E
	if got := m.PPI.ReadA(); got != 0x1E {
		t.Fatalf("PPI port A = %#02x, want 0x1E", got)
	}
	if m.PIC.ReadStatus()&(1<<1) == 0 {
		t.Fatal("expected IRR bit 1 set after key-down")
	}

	m.CPU.IFlag = true
	m.CPU.CS, m.CPU.IP = 0x0000, 0x0100
	m.CPU.SP = 0x0100
	m.CPU.Step()

	if m.CPU.CS != 0x0050 || m.CPU.IP != 0xABCD {
		t.Fatalf("after keyboard interrupt, CS:IP = %04x:%04x, want 0050:ABCD", m.CPU.CS, m.CPU.IP)
	}
}

// scenario 6: Sense Interrupt Status reports invalid-command with no
// pending FDC interrupt, and valid status (with the current cylinder) right
// after a reset-pulse IRQ6.
func TestFDC_SenseInterruptStatus(t *testing.T) {
	m := NewMachine()

	// No interrupt pending yet: SIS must report invalid command.
	m.Bus.Out(portFDCFIFO, 0x08)
	if got := m.Bus.In(portFDCMainStatus); got&0x40 == 0 {
		t.Fatal("expected DIO set (result phase) after SIS with nothing pending")
	}
	if got := m.Bus.In(portFDCFIFO); got != 0x80 {
		t.Fatalf("SIS result byte = %#02x, want 0x80 (invalid command)", got)
	}

	// Pulse the not-reset bit 0 -> 1: raises IRQ6, sets interruptPending.
	m.Bus.Out(portFDCDigitalOutput, 0x00) // reset asserted (bit 2 clear)
	m.Bus.Out(portFDCDigitalOutput, 0x04) // not-reset bit set: reset pulse completes

	m.Bus.Out(portFDCFIFO, 0x08)
	if got := m.Bus.In(portFDCFIFO); got != 0xC0 {
		t.Fatalf("SIS status byte = %#02x, want 0xC0 (status valid)", got)
	}
	if got := m.Bus.In(portFDCFIFO); got != 0x00 {
		t.Fatalf("SIS cylinder byte = %#02x, want 0x00", got)
	}

	// A second SIS call, with the interrupt already consumed, reports
	// invalid command again.
	m.Bus.Out(portFDCFIFO, 0x08)
	if got := m.Bus.In(portFDCFIFO); got != 0x80 {
		t.Fatalf("second SIS result byte = %#02x, want 0x80 (invalid command)", got)
	}
}

// --- round-trip / algebraic-law sweeps -------------------------------------

func TestCPU_PushPopRoundTrip(t *testing.T) {
	m := NewMachine()
	m.CPU.CS, m.CPU.IP = 0x0000, 0x0100
	m.CPU.SP = 0x0200
	m.CPU.BX = 0x1234

	m.Memory.WriteByte(0x0100, 0x53) // PUSH BX
	m.Memory.WriteByte(0x0101, 0x5B) // POP BX

	m.CPU.BX = 0xCAFE
	m.CPU.Step() // PUSH BX
	m.CPU.BX = 0x0000
	m.CPU.Step() // POP BX

	if m.CPU.BX != 0xCAFE {
		t.Fatalf("BX after PUSH/POP round trip = %#04x, want 0xCAFE", m.CPU.BX)
	}
	if m.CPU.SP != 0x0200 {
		t.Fatalf("SP after PUSH/POP round trip = %#04x, want 0x0200", m.CPU.SP)
	}
}

func TestCPU_PushfPopfRoundTrip(t *testing.T) {
	m := NewMachine()
	m.CPU.CS, m.CPU.IP = 0x0000, 0x0100
	m.CPU.SP = 0x0200
	m.CPU.CF, m.CPU.ZF, m.CPU.SF = true, true, false

	m.Memory.WriteByte(0x0100, 0x9C) // PUSHF
	m.Memory.WriteByte(0x0101, 0x9D) // POPF

	want := m.CPU.flagsWord()
	m.CPU.Step() // PUSHF
	m.CPU.CF, m.CPU.ZF = false, false
	m.CPU.Step() // POPF

	if got := m.CPU.flagsWord(); got != want {
		t.Fatalf("flags after PUSHF/POPF round trip = %#04x, want %#04x", got, want)
	}
}

func TestCPU_XchgRoundTrip(t *testing.T) {
	m := NewMachine()
	m.CPU.CS, m.CPU.IP = 0x0000, 0x0100
	m.CPU.AX, m.CPU.BX = 0x1111, 0x2222

	m.Memory.WriteByte(0x0100, 0x93) // XCHG AX, BX
	m.Memory.WriteByte(0x0101, 0x93) // XCHG AX, BX

	m.CPU.Step()
	if m.CPU.AX != 0x2222 || m.CPU.BX != 0x1111 {
		t.Fatalf("after one XCHG, AX,BX = %04x,%04x, want 2222,1111", m.CPU.AX, m.CPU.BX)
	}
	m.CPU.Step()
	if m.CPU.AX != 0x1111 || m.CPU.BX != 0x2222 {
		t.Fatalf("after second XCHG, AX,BX = %04x,%04x, want 1111,2222 (round trip)", m.CPU.AX, m.CPU.BX)
	}
}

func TestCPU_NotNotRoundTrip(t *testing.T) {
	m := NewMachine()
	m.CPU.CS, m.CPU.IP = 0x0000, 0x0100
	m.CPU.SetAL(0x5A)

	// F6 /2: NOT AL, twice.
	m.Memory.WriteByte(0x0100, 0xF6)
	m.Memory.WriteByte(0x0101, 0xD0)
	m.Memory.WriteByte(0x0102, 0xF6)
	m.Memory.WriteByte(0x0103, 0xD0)

	m.CPU.Step()
	if got := m.CPU.AL(); got != 0xA5 {
		t.Fatalf("AL after one NOT = %#02x, want 0xA5", got)
	}
	m.CPU.Step()
	if got := m.CPU.AL(); got != 0x5A {
		t.Fatalf("AL after NOT/NOT round trip = %#02x, want 0x5A", got)
	}
}

func TestCPU_NegRoundTrip(t *testing.T) {
	m := NewMachine()
	m.CPU.CS, m.CPU.IP = 0x0000, 0x0100
	m.CPU.SetAL(0x7F)

	// F6 /3: NEG AL, twice.
	m.Memory.WriteByte(0x0100, 0xF6)
	m.Memory.WriteByte(0x0101, 0xD8)
	m.Memory.WriteByte(0x0102, 0xF6)
	m.Memory.WriteByte(0x0103, 0xD8)

	m.CPU.Step()
	if got := m.CPU.AL(); got != 0x81 {
		t.Fatalf("AL after one NEG = %#02x, want 0x81", got)
	}
	m.CPU.Step()
	if got := m.CPU.AL(); got != 0x7F {
		t.Fatalf("AL after NEG/NEG round trip = %#02x, want 0x7F", got)
	}
}

func TestCPU_MovRegisterMemoryRoundTrip(t *testing.T) {
	m := NewMachine()
	m.CPU.CS, m.CPU.IP = 0x0000, 0x0100
	m.CPU.DS = 0x0000
	m.CPU.BX = 0x3000
	m.CPU.SetAL(0x99)

	// 88 07: MOV [BX], AL
	// 8A 27: MOV AH, [BX]
	m.Memory.WriteByte(0x0100, 0x88)
	m.Memory.WriteByte(0x0101, 0x07)
	m.Memory.WriteByte(0x0102, 0x8A)
	m.Memory.WriteByte(0x0103, 0x27)

	m.CPU.Step() // MOV [BX], AL
	if got := m.Memory.ReadByte(0x3000); got != 0x99 {
		t.Fatalf("memory at [BX] = %#02x, want 0x99", got)
	}
	m.CPU.Step() // MOV AH, [BX]
	if got := m.CPU.AH(); got != 0x99 {
		t.Fatalf("AH after MOV R,M round trip = %#02x, want 0x99", got)
	}
}

func TestCPU_AddByteFlagSweep(t *testing.T) {
	cases := []struct {
		name       string
		a, b       byte
		wantResult byte
		wantCF     bool
		wantOF     bool
		wantZF     bool
		wantSF     bool
	}{
		{"no carry no overflow", 0x01, 0x01, 0x02, false, false, false, false},
		{"unsigned carry out", 0xFF, 0x01, 0x00, true, false, true, false},
		{"signed overflow positive", 0x7F, 0x01, 0x80, false, true, false, true},
		{"signed overflow negative", 0x80, 0x80, 0x00, true, true, true, false},
		{"negative result no overflow", 0xFE, 0xFE, 0xFC, true, false, false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMachine()
			m.CPU.CS, m.CPU.IP = 0x0000, 0x0100
			m.CPU.SetAL(tc.a)

			// 04 ib: ADD AL, imm8
			m.Memory.WriteByte(0x0100, 0x04)
			m.Memory.WriteByte(0x0101, tc.b)

			m.CPU.Step()

			if got := m.CPU.AL(); got != tc.wantResult {
				t.Errorf("AL = %#02x, want %#02x", got, tc.wantResult)
			}
			if m.CPU.CF != tc.wantCF {
				t.Errorf("CF = %v, want %v", m.CPU.CF, tc.wantCF)
			}
			if m.CPU.OF != tc.wantOF {
				t.Errorf("OF = %v, want %v", m.CPU.OF, tc.wantOF)
			}
			if m.CPU.ZF != tc.wantZF {
				t.Errorf("ZF = %v, want %v", m.CPU.ZF, tc.wantZF)
			}
			if m.CPU.SF != tc.wantSF {
				t.Errorf("SF = %v, want %v", m.CPU.SF, tc.wantSF)
			}
		})
	}
}
