// cpu_decode.go - ModR/M decode and 16-bit effective address computation.
//
// Grounded on the teacher's cpu_x86.go ModR/M handling for the overall
// decode-into-scratch-fields shape, retargeted to the 8086's 16-bit-only
// addressing modes (no SIB byte, no 32-bit disp32): the classic
// [BX+SI]/[BX+DI]/[BP+SI]/[BP+DI]/[SI]/[DI]/disp16/[BX] table for mod=00,
// plus disp8/disp16 variants for mod=01/10, per spec.md section 4.3.
package main

// effectiveAddressBase computes the unsegmented 16-bit offset for the
// current mod/rm, per the classic 8086 effective-address table. Returns the
// offset and whether BP participates (which selects SS as the default
// segment instead of DS).
func (c *CPU) effectiveAddressBase() (offset uint16, usesBP bool) {
	mod, rm := c.modrmMod, c.modrmRM

	if mod == 3 {
		return 0, false // register operand, no memory access
	}

	var base uint16
	switch rm {
	case 0:
		base, usesBP = c.BX+c.SI, false
	case 1:
		base, usesBP = c.BX+c.DI, false
	case 2:
		base, usesBP = c.BP+c.SI, true
	case 3:
		base, usesBP = c.BP+c.DI, true
	case 4:
		base, usesBP = c.SI, false
	case 5:
		base, usesBP = c.DI, false
	case 6:
		if mod == 0 {
			// mod=00, rm=110: direct address disp16, no base register.
			base, usesBP = c.fetchWord(), false
			return base, usesBP
		}
		base, usesBP = c.BP, true
	default: // rm == 7
		base, usesBP = c.BX, false
	}

	switch mod {
	case 1:
		base += uint16(c.fetchSignedByte())
	case 2:
		base += c.fetchWord()
	}
	return base, usesBP
}

// decodeModRM fetches the ModR/M byte and populates the CPU's scratch
// decode fields: modrmReg always names a register; the r/m operand is
// either a second register (mod==3) or a memory operand whose segment:offset
// is computed according to the effective-address table and any active
// segment-override prefix.
func (c *CPU) decodeModRM() {
	b := c.fetchByte()
	c.modrmByte = b
	c.modrmMod = b >> 6
	c.modrmReg = (b >> 3) & 7
	c.modrmRM = b & 7

	if c.modrmMod == 3 {
		c.eaIsMemory = false
		return
	}

	offset, usesBP := c.effectiveAddressBase()
	c.eaIsMemory = true
	c.eaOffset = offset

	defaultSeg := c.DS
	if usesBP {
		defaultSeg = c.SS
	}
	if c.segmentOverride >= 0 {
		defaultSeg = c.segReg16(byte(c.segmentOverride))
	}
	c.eaSegment = defaultSeg
}

// rmByte reads the current r/m operand as a byte: a register if mod==3,
// else memory at the decoded effective address.
func (c *CPU) rmByte() byte {
	if !c.eaIsMemory {
		return c.reg8(c.modrmRM)
	}
	return c.readByteAt(c.eaSegment, c.eaOffset)
}

func (c *CPU) setRMByte(v byte) {
	if !c.eaIsMemory {
		c.setReg8(c.modrmRM, v)
		return
	}
	c.writeByteAt(c.eaSegment, c.eaOffset, v)
}

// rmWord and setRMWord are the 16-bit equivalents of rmByte/setRMByte.
func (c *CPU) rmWord() uint16 {
	if !c.eaIsMemory {
		return c.reg16(c.modrmRM)
	}
	return c.readWordAt(c.eaSegment, c.eaOffset)
}

func (c *CPU) setRMWord(v uint16) {
	if !c.eaIsMemory {
		c.setReg16(c.modrmRM, v)
		return
	}
	c.writeWordAt(c.eaSegment, c.eaOffset, v)
}
