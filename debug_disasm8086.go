// debug_disasm8086.go - real-mode 8086 disassembler for the machine monitor.
//
// Scoped down from the teacher's debug_disasm_x86.go, which decoded the
// full 32-bit IE80 instruction set (SIB bytes, disp32, REX-less but still
// 32-bit ModR/M forms) across roughly a thousand lines. The 8086 has no SIB
// byte and only 8/16-bit operands, so the ModR/M and displacement length
// rules collapse to a single small table; this file names only the
// mnemonics cpu_ops.go/cpu_grp.go actually dispatch, with an opcode's
// operand bytes rendered as padded hex rather than resolved symbols, matching
// the teacher's convention of leaving operand formatting to the hex column
// when a full symbolic read would need the live CPU state.
package main

import "fmt"

// modrmLen returns how many displacement bytes follow a ModR/M byte, given
// the r/m decoding table in cpu_decode.go's effectiveAddressBase.
func modrmLen(modrm byte) int {
	mod := modrm >> 6
	rm := modrm & 7
	switch mod {
	case 0:
		if rm == 6 {
			return 2 // direct disp16, no base register
		}
		return 0
	case 1:
		return 1
	case 2:
		return 2
	default: // mod == 3: register operand, no displacement
		return 0
	}
}

// opcodeInfo names an opcode's mnemonic and how many bytes (beyond the
// opcode itself) its encoding consumes that are not ModR/M-derived.
type opcodeInfo struct {
	mnemonic string
	imm      int  // immediate/displacement bytes following (0 if none)
	hasModRM bool // true if a ModR/M byte follows the opcode
}

var opcodeNames = map[byte]opcodeInfo{
	0x00: {"ADD Eb,Gb", 0, true}, 0x01: {"ADD Ev,Gv", 0, true},
	0x02: {"ADD Gb,Eb", 0, true}, 0x03: {"ADD Gv,Ev", 0, true},
	0x04: {"ADD AL,Ib", 1, false}, 0x05: {"ADD AX,Iw", 2, false},
	0x08: {"OR Eb,Gb", 0, true}, 0x09: {"OR Ev,Gv", 0, true},
	0x0A: {"OR Gb,Eb", 0, true}, 0x0B: {"OR Gv,Ev", 0, true},
	0x0C: {"OR AL,Ib", 1, false}, 0x0D: {"OR AX,Iw", 2, false},
	0x10: {"ADC Eb,Gb", 0, true}, 0x11: {"ADC Ev,Gv", 0, true},
	0x18: {"SBB Eb,Gb", 0, true}, 0x19: {"SBB Ev,Gv", 0, true},
	0x20: {"AND Eb,Gb", 0, true}, 0x21: {"AND Ev,Gv", 0, true},
	0x24: {"AND AL,Ib", 1, false}, 0x25: {"AND AX,Iw", 2, false},
	0x28: {"SUB Eb,Gb", 0, true}, 0x29: {"SUB Ev,Gv", 0, true},
	0x2A: {"SUB Gb,Eb", 0, true}, 0x2B: {"SUB Gv,Ev", 0, true},
	0x2C: {"SUB AL,Ib", 1, false}, 0x2D: {"SUB AX,Iw", 2, false},
	0x30: {"XOR Eb,Gb", 0, true}, 0x31: {"XOR Ev,Gv", 0, true},
	0x38: {"CMP Eb,Gb", 0, true}, 0x39: {"CMP Ev,Gv", 0, true},
	0x3A: {"CMP Gb,Eb", 0, true}, 0x3B: {"CMP Gv,Ev", 0, true},
	0x3C: {"CMP AL,Ib", 1, false}, 0x3D: {"CMP AX,Iw", 2, false},
	0x84: {"TEST Eb,Gb", 0, true}, 0x85: {"TEST Ev,Gv", 0, true},
	0x86: {"XCHG Eb,Gb", 0, true}, 0x87: {"XCHG Ev,Gv", 0, true},
	0x88: {"MOV Eb,Gb", 0, true}, 0x89: {"MOV Ev,Gv", 0, true},
	0x8A: {"MOV Gb,Eb", 0, true}, 0x8B: {"MOV Gv,Ev", 0, true},
	0x8C: {"MOV Ew,Sw", 0, true}, 0x8D: {"LEA Gv,M", 0, true},
	0x8E: {"MOV Sw,Ew", 0, true}, 0x8F: {"POP Ev", 0, true},
	0x90: {"NOP", 0, false},
	0x98: {"CBW", 0, false}, 0x99: {"CWD", 0, false},
	0x9A: {"CALL Ap", 4, false}, 0x9B: {"WAIT", 0, false},
	0x9C: {"PUSHF", 0, false}, 0x9D: {"POPF", 0, false},
	0x9E: {"SAHF", 0, false}, 0x9F: {"LAHF", 0, false},
	0xA0: {"MOV AL,Ob", 2, false}, 0xA1: {"MOV AX,Ov", 2, false},
	0xA2: {"MOV Ob,AL", 2, false}, 0xA3: {"MOV Ov,AX", 2, false},
	0xA8: {"TEST AL,Ib", 1, false}, 0xA9: {"TEST AX,Iw", 2, false},
	0xC2: {"RET Iw", 2, false}, 0xC3: {"RET", 0, false},
	0xC4: {"LES Gv,Mp", 0, true}, 0xC5: {"LDS Gv,Mp", 0, true},
	0xC6: {"MOV Eb,Ib", 1, true}, 0xC7: {"MOV Ev,Iw", 2, true},
	0xCA: {"RETF Iw", 2, false}, 0xCB: {"RETF", 0, false},
	0xCC: {"INT 3", 0, false}, 0xCD: {"INT Ib", 1, false},
	0xCE: {"INTO", 0, false}, 0xCF: {"IRET", 0, false},
	0xD7: {"XLAT", 0, false},
	0xE0: {"LOOPNE Jb", 1, false}, 0xE1: {"LOOPE Jb", 1, false},
	0xE2: {"LOOP Jb", 1, false}, 0xE3: {"JCXZ Jb", 1, false},
	0xE4: {"IN AL,Ib", 1, false}, 0xE5: {"IN AX,Ib", 1, false},
	0xE6: {"OUT Ib,AL", 1, false}, 0xE7: {"OUT Ib,AX", 1, false},
	0xE8: {"CALL Jv", 2, false}, 0xE9: {"JMP Jv", 2, false},
	0xEA: {"JMP Ap", 4, false}, 0xEB: {"JMP Jb", 1, false},
	0xEC: {"IN AL,DX", 0, false}, 0xED: {"IN AX,DX", 0, false},
	0xEE: {"OUT DX,AL", 0, false}, 0xEF: {"OUT DX,AX", 0, false},
	0xF4: {"HLT", 0, false}, 0xF5: {"CMC", 0, false},
	0xF8: {"CLC", 0, false}, 0xF9: {"STC", 0, false},
	0xFA: {"CLI", 0, false}, 0xFB: {"STI", 0, false},
	0xFC: {"CLD", 0, false}, 0xFD: {"STD", 0, false},
	0x27: {"DAA", 0, false}, 0x2F: {"DAS", 0, false},
	0x37: {"AAA", 0, false}, 0x3F: {"AAS", 0, false},
	0xD4: {"AAM Ib", 1, false}, 0xD5: {"AAD Ib", 1, false},
}

var jccNames = map[byte]string{
	0x70: "JO", 0x71: "JNO", 0x72: "JB", 0x73: "JAE",
	0x74: "JE", 0x75: "JNE", 0x76: "JBE", 0x77: "JA",
	0x78: "JS", 0x79: "JNS", 0x7A: "JP", 0x7B: "JNP",
	0x7C: "JL", 0x7D: "JGE", 0x7E: "JLE", 0x7F: "JG",
}

var grp1Names = [8]string{"ADD", "OR", "ADC", "SBB", "AND", "SUB", "XOR", "CMP"}
var grp2Names = [8]string{"ROL", "ROR", "RCL", "RCR", "SHL", "SHR", "SAL", "SAR"}
var grp3bNames = [8]string{"TEST", "TEST", "NOT", "NEG", "MUL", "IMUL", "DIV", "IDIV"}
var grp5Names = [8]string{"INC", "DEC", "CALL", "CALLF", "JMP", "JMPF", "PUSH", "?"}

// decodeOne decodes a single instruction starting at addr, returning its
// mnemonic, total length in bytes, and whether it is a branch/jump/call.
func decodeOne(read func(addr uint64, size int) []byte, addr uint64) (mnemonic string, length int, isBranch bool, target uint64) {
	buf := read(addr, 6)
	if len(buf) == 0 {
		return "??", 1, false, 0
	}
	op := buf[0]

	// Segment override and REP prefixes: render as a one-byte prefix line,
	// the instruction it modifies follows on the next decode.
	switch op {
	case 0x26, 0x2E, 0x36, 0x3E:
		return "SEG", 1, false, 0
	case 0xF2:
		return "REPNE", 1, false, 0
	case 0xF3:
		return "REP", 1, false, 0
	}

	if name, ok := jccNames[op]; ok {
		disp := int8(buf[1])
		tgt := addr + 2 + uint64(int64(disp))
		return fmt.Sprintf("%s %04X", name, tgt), 2, true, tgt
	}

	// General-register forms: opcode low 3 bits select AX..DI/AL..BH.
	if op >= 0x50 && op <= 0x57 {
		return fmt.Sprintf("PUSH %s", reg16Name(op-0x50)), 1, false, 0
	}
	if op >= 0x58 && op <= 0x5F {
		return fmt.Sprintf("POP %s", reg16Name(op-0x58)), 1, false, 0
	}
	if op >= 0xB0 && op <= 0xB7 {
		return fmt.Sprintf("MOV %s,Ib", reg8Name(op-0xB0)), 2, false, 0
	}
	if op >= 0xB8 && op <= 0xBF {
		return fmt.Sprintf("MOV %s,Iw", reg16Name(op-0xB8)), 3, false, 0
	}
	if op >= 0x91 && op <= 0x97 {
		return fmt.Sprintf("XCHG AX,%s", reg16Name(op-0x90)), 1, false, 0
	}

	switch op {
	case 0x80, 0x81, 0x82, 0x83:
		if len(buf) < 2 {
			return "??", 1, false, 0
		}
		modrm := buf[1]
		reg := (modrm >> 3) & 7
		dlen := modrmLen(modrm)
		imm := 1
		if op == 0x81 {
			imm = 2
		}
		total := 2 + dlen + imm
		return fmt.Sprintf("%s Ev,I", grp1Names[reg]), total, false, 0
	case 0xD0, 0xD1, 0xD2, 0xD3:
		if len(buf) < 2 {
			return "??", 1, false, 0
		}
		modrm := buf[1]
		reg := (modrm >> 3) & 7
		total := 2 + modrmLen(modrm)
		return fmt.Sprintf("%s Ev", grp2Names[reg]), total, false, 0
	case 0xF6, 0xF7:
		if len(buf) < 2 {
			return "??", 1, false, 0
		}
		modrm := buf[1]
		reg := (modrm >> 3) & 7
		dlen := modrmLen(modrm)
		imm := 0
		if reg <= 1 {
			imm = 1
			if op == 0xF7 {
				imm = 2
			}
		}
		total := 2 + dlen + imm
		return fmt.Sprintf("%s Ev", grp3bNames[reg]), total, false, 0
	case 0xFE, 0xFF:
		if len(buf) < 2 {
			return "??", 1, false, 0
		}
		modrm := buf[1]
		reg := (modrm >> 3) & 7
		total := 2 + modrmLen(modrm)
		return fmt.Sprintf("%s Ev", grp5Names[reg]), total, reg == 2 || reg == 4, 0
	}

	if info, ok := opcodeNames[op]; ok {
		total := 1 + info.imm
		if info.hasModRM {
			if len(buf) < 2 {
				return info.mnemonic, 1, false, 0
			}
			total += 1 + modrmLen(buf[1])
		}
		isBranch := op == 0xE8 || op == 0xE9 || op == 0xEA || op == 0xEB || op == 0x9A
		return info.mnemonic, total, isBranch, 0
	}

	return fmt.Sprintf("DB %02X", op), 1, false, 0
}

func reg16Name(i byte) string {
	return [8]string{"AX", "CX", "DX", "BX", "SP", "BP", "SI", "DI"}[i&7]
}

func reg8Name(i byte) string {
	return [8]string{"AL", "CL", "DL", "BL", "AH", "CH", "DH", "BH"}[i&7]
}

// disassemble8086 decodes count instructions starting at addr using read to
// fetch bytes, returning one DisassembledLine per instruction.
func disassemble8086(read func(addr uint64, size int) []byte, addr uint64, count int) []DisassembledLine {
	lines := make([]DisassembledLine, 0, count)
	pc := addr
	for range count {
		mnemonic, length, isBranch, target := decodeOne(read, pc)
		raw := read(pc, length)
		lines = append(lines, DisassembledLine{
			Address:      pc,
			HexBytes:     fmt.Sprintf("% X", raw),
			Mnemonic:     mnemonic,
			Size:         length,
			IsBranch:     isBranch,
			BranchTarget: target,
		})
		pc += uint64(length)
	}
	return lines
}
