package cpu

// dispatchUndocumented covers the commonly-emulated illegal opcodes,
// the documented multi-opcode NOP family, and the JAM opcodes that
// halt the interpreter, all reproduced from the "Complex functions",
// "NOP group" and "Jam group" sections of original_source/cpu_opcodes.h.
func (c *CPU) dispatchUndocumented(op byte) {
	switch op {

	// --- SLO (ASL + ORA) ---
	case 0x07:
		a := c.addrZero()
		v := c.bus.ReadZP(byte(a))
		c.tick()
		t := c.doASL(v)
		c.bus.WriteZP(byte(a), t)
		c.tick()
		c.A = c.setNZ(c.A | t)
	case 0x17:
		a := c.addrZeroX()
		v := c.bus.ReadZP(byte(a))
		c.tick()
		t := c.doASL(v)
		c.bus.WriteZP(byte(a), t)
		c.tick()
		c.A = c.setNZ(c.A | t)
	case 0x0F:
		a := c.addrAbs()
		v := c.read(a)
		t := c.doASL(v)
		c.write(a, t)
		c.A = c.setNZ(c.A | t)
	case 0x1F:
		a := c.addrAbsIndexedFixed(c.X)
		v := c.read(a)
		t := c.doASL(v)
		c.write(a, t)
		c.A = c.setNZ(c.A | t)
	case 0x1B:
		a := c.addrAbsIndexedFixed(c.Y)
		v := c.read(a)
		t := c.doASL(v)
		c.write(a, t)
		c.A = c.setNZ(c.A | t)
	case 0x03:
		a := c.addrIndX()
		v := c.read(a)
		t := c.doASL(v)
		c.write(a, t)
		c.A = c.setNZ(c.A | t)
	case 0x13:
		a := c.addrIndYFixed()
		v := c.read(a)
		t := c.doASL(v)
		c.write(a, t)
		c.A = c.setNZ(c.A | t)

	// --- RLA (ROL + AND) ---
	case 0x27:
		a := c.addrZero()
		v := c.bus.ReadZP(byte(a))
		c.tick()
		t := c.doROL(v)
		c.bus.WriteZP(byte(a), t)
		c.tick()
		c.A = c.setNZ(c.A & t)
	case 0x37:
		a := c.addrZeroX()
		v := c.bus.ReadZP(byte(a))
		c.tick()
		t := c.doROL(v)
		c.bus.WriteZP(byte(a), t)
		c.tick()
		c.A = c.setNZ(c.A & t)
	case 0x2F:
		a := c.addrAbs()
		v := c.read(a)
		t := c.doROL(v)
		c.write(a, t)
		c.A = c.setNZ(c.A & t)
	case 0x3F:
		a := c.addrAbsIndexedFixed(c.X)
		v := c.read(a)
		t := c.doROL(v)
		c.write(a, t)
		c.A = c.setNZ(c.A & t)
	case 0x3B:
		a := c.addrAbsIndexedFixed(c.Y)
		v := c.read(a)
		t := c.doROL(v)
		c.write(a, t)
		c.A = c.setNZ(c.A & t)
	case 0x23:
		a := c.addrIndX()
		v := c.read(a)
		t := c.doROL(v)
		c.write(a, t)
		c.A = c.setNZ(c.A & t)
	case 0x33:
		a := c.addrIndYFixed()
		v := c.read(a)
		t := c.doROL(v)
		c.write(a, t)
		c.A = c.setNZ(c.A & t)

	// --- SRE (LSR + EOR) ---
	case 0x47:
		a := c.addrZero()
		v := c.bus.ReadZP(byte(a))
		c.tick()
		t := c.doLSR(v)
		c.bus.WriteZP(byte(a), t)
		c.tick()
		c.A = c.setNZ(c.A ^ t)
	case 0x57:
		a := c.addrZeroX()
		v := c.bus.ReadZP(byte(a))
		c.tick()
		t := c.doLSR(v)
		c.bus.WriteZP(byte(a), t)
		c.tick()
		c.A = c.setNZ(c.A ^ t)
	case 0x4F:
		a := c.addrAbs()
		v := c.read(a)
		t := c.doLSR(v)
		c.write(a, t)
		c.A = c.setNZ(c.A ^ t)
	case 0x5F:
		a := c.addrAbsIndexedFixed(c.X)
		v := c.read(a)
		t := c.doLSR(v)
		c.write(a, t)
		c.A = c.setNZ(c.A ^ t)
	case 0x5B:
		a := c.addrAbsIndexedFixed(c.Y)
		v := c.read(a)
		t := c.doLSR(v)
		c.write(a, t)
		c.A = c.setNZ(c.A ^ t)
	case 0x43:
		a := c.addrIndX()
		v := c.read(a)
		t := c.doLSR(v)
		c.write(a, t)
		c.A = c.setNZ(c.A ^ t)
	case 0x53:
		a := c.addrIndYFixed()
		v := c.read(a)
		t := c.doLSR(v)
		c.write(a, t)
		c.A = c.setNZ(c.A ^ t)

	// --- RRA (ROR + ADC) ---
	case 0x67:
		a := c.addrZero()
		v := c.bus.ReadZP(byte(a))
		c.tick()
		t := c.doROR(v)
		c.bus.WriteZP(byte(a), t)
		c.tick()
		c.doADC(t)
	case 0x77:
		a := c.addrZeroX()
		v := c.bus.ReadZP(byte(a))
		c.tick()
		t := c.doROR(v)
		c.bus.WriteZP(byte(a), t)
		c.tick()
		c.doADC(t)
	case 0x6F:
		a := c.addrAbs()
		v := c.read(a)
		t := c.doROR(v)
		c.write(a, t)
		c.doADC(t)
	case 0x7F:
		a := c.addrAbsIndexedFixed(c.X)
		v := c.read(a)
		t := c.doROR(v)
		c.write(a, t)
		c.doADC(t)
	case 0x7B:
		a := c.addrAbsIndexedFixed(c.Y)
		v := c.read(a)
		t := c.doROR(v)
		c.write(a, t)
		c.doADC(t)
	case 0x63:
		a := c.addrIndX()
		v := c.read(a)
		t := c.doROR(v)
		c.write(a, t)
		c.doADC(t)
	case 0x73:
		a := c.addrIndYFixed()
		v := c.read(a)
		t := c.doROR(v)
		c.write(a, t)
		c.doADC(t)

	// --- DCP (DEC + CMP) ---
	case 0xC7:
		c.doDCP(c.addrZero(), true)
	case 0xD7:
		c.doDCP(c.addrZeroX(), true)
	case 0xCF:
		c.doDCP(c.addrAbs(), false)
	case 0xDF:
		c.doDCP(c.addrAbsIndexedFixed(c.X), false)
	case 0xDB:
		c.doDCP(c.addrAbsIndexedFixed(c.Y), false)
	case 0xC3:
		c.doDCP(c.addrIndX(), false)
	case 0xD3:
		c.doDCP(c.addrIndYFixed(), false)

	// --- ISB (INC + SBC) ---
	case 0xE7:
		c.doISB(c.addrZero(), true)
	case 0xF7:
		c.doISB(c.addrZeroX(), true)
	case 0xEF:
		c.doISB(c.addrAbs(), false)
	case 0xFF:
		c.doISB(c.addrAbsIndexedFixed(c.X), false)
	case 0xFB:
		c.doISB(c.addrAbsIndexedFixed(c.Y), false)
	case 0xE3:
		c.doISB(c.addrIndX(), false)
	case 0xF3:
		c.doISB(c.addrIndYFixed(), false)

	// --- LAX (LDA + LDX combined) ---
	case 0xA7:
		c.A = c.setNZ(c.readZero())
		c.X = c.A
	case 0xB7:
		c.A = c.setNZ(c.readZeroY())
		c.X = c.A
	case 0xAF:
		c.A = c.setNZ(c.readAbs())
		c.X = c.A
	case 0xBF:
		c.A = c.setNZ(c.readAbsY())
		c.X = c.A
	case 0xA3:
		c.A = c.setNZ(c.readIndX())
		c.X = c.A
	case 0xB3:
		c.A = c.setNZ(c.readIndY())
		c.X = c.A

	// --- SAX (store A & X) ---
	case 0x87:
		c.bus.WriteZP(byte(c.addrZero()), c.A&c.X)
		c.tick()
	case 0x97:
		c.bus.WriteZP(byte(c.addrZeroY()), c.A&c.X)
		c.tick()
	case 0x8F:
		c.write(c.addrAbs(), c.A&c.X)
	case 0x83:
		c.write(c.addrIndX(), c.A&c.X)

	// --- Complex/combined-register illegal opcodes ---
	case 0x0B, 0x2B: // ANC #imm
		t := c.readImm()
		c.A = c.setNZ(c.A & t)
		c.setFlag(flagC, c.nFlagSet())
	case 0x4B: // ASR #imm (AND then LSR)
		t := c.readImm()
		c.A &= t
		c.setFlag(flagC, c.A&0x01 != 0)
		c.A = c.setNZ(c.A >> 1)
	case 0x6B: // ARR #imm
		t := c.readImm()
		t &= c.A
		if c.P&flagC != 0 {
			c.A = (t >> 1) | 0x80
		} else {
			c.A = t >> 1
		}
		if c.P&flagD != 0 {
			c.nFlag = (c.P & flagC) << 7
			c.zFlag = c.A
			c.setFlag(flagV, (t^c.A)&0x40 != 0)
			if (t&0x0F)+(t&0x01) > 5 {
				c.A = (c.A & 0xF0) | ((c.A + 6) & 0x0F)
			}
			if (uint(t)+uint(t&0x10))&0x1F0 > 0x50 {
				c.P |= flagC
				c.A += 0x60
			} else {
				c.P &^= flagC
			}
		} else {
			c.setNZ(c.A)
			c.setFlag(flagC, c.A&0x40 != 0)
			c.setFlag(flagV, (c.A&0x40)^((c.A&0x20)<<1) != 0)
		}
	case 0x8B: // ANE #imm
		t := c.readImm()
		c.A = c.setNZ((c.A | 0xEE) & c.X & t)
	case 0x93: // SHA (ind),Y
		addr := c.addrIndYFixed()
		hi := byte((addr-uint16(c.Y))>>8) + 1
		c.write(addr, c.A&c.X&hi)
	case 0x9B: // SHS abs,Y
		addr := c.addrAbsIndexedFixed(c.Y)
		hi := byte((addr-uint16(c.Y))>>8) + 1
		c.SP = c.A & c.X
		c.write(addr, c.SP&hi)
	case 0x9C: // SHY abs,X
		addr := c.addrAbsIndexedFixed(c.X)
		hi := byte((addr-uint16(c.X))>>8) + 1
		c.write(addr, c.Y&hi)
	case 0x9E: // SHX abs,Y
		addr := c.addrAbsIndexedFixed(c.Y)
		hi := byte((addr-uint16(c.Y))>>8) + 1
		c.write(addr, c.X&hi)
	case 0x9F: // SHA abs,Y
		addr := c.addrAbsIndexedFixed(c.Y)
		hi := byte((addr-uint16(c.Y))>>8) + 1
		c.write(addr, c.A&c.X&hi)
	case 0xAB: // LXA #imm
		t := c.readImm()
		c.A = (c.A | 0xEE) & t
		c.X = c.A
		c.setNZ(c.A)
	case 0xBB: // LAS abs,Y
		t := c.readAbsY()
		c.A = t & c.SP
		c.X = c.A
		c.SP = c.A
		c.setNZ(c.A)
	case 0xCB: // SBX #imm
		t := int(c.readImm())
		r := int(c.A&c.X) - t
		c.X = byte(r)
		c.setNZ(c.X)
		c.setFlag(flagC, r >= 0)

	// --- NOP family: consume operand bytes/cycles, no side effects ---
	case 0x1A, 0x3A, 0x5A, 0x7A, 0xDA, 0xFA:
		c.idle()
	case 0x80, 0x82, 0x89, 0xC2, 0xE2:
		c.fetch()
	case 0x04, 0x44, 0x64:
		c.readZero()
	case 0x14, 0x34, 0x54, 0x74, 0xD4, 0xF4:
		c.readZeroX()
	case 0x0C:
		c.readAbs()
	case 0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC:
		c.readAbsX()

	// --- JAM: halts the interpreter, matches "goto illegal_op" ---
	case 0x02, 0x12, 0x22, 0x32, 0x42, 0x52, 0x62, 0x72, 0x92, 0xB2, 0xD2, 0xF2:
		c.quit = true
		c.stopReason = StopReasonIllegalOpcode

	default:
		c.quit = true
		c.stopReason = StopReasonIllegalOpcode
	}
}

func (c *CPU) doDCP(addr uint16, zp bool) {
	var v byte
	if zp {
		v = c.bus.ReadZP(byte(addr))
		c.tick()
	} else {
		v = c.read(addr)
	}
	t := v - 1
	if zp {
		c.bus.WriteZP(byte(addr), t)
		c.tick()
	} else {
		c.write(addr, t)
	}
	cmp := int(c.A) - int(t)
	c.setNZ(byte(cmp))
	c.setFlag(flagC, cmp >= 0)
}

func (c *CPU) doISB(addr uint16, zp bool) {
	var v byte
	if zp {
		v = c.bus.ReadZP(byte(addr))
		c.tick()
	} else {
		v = c.read(addr)
	}
	t := v + 1
	if zp {
		c.bus.WriteZP(byte(addr), t)
		c.tick()
	} else {
		c.write(addr, t)
	}
	c.doSBC(t)
}
