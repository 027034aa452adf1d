package cpu

// dispatch executes one fetched opcode. The grouping and case order
// follows original_source/cpu_opcodes.h; addressing-mode cycle costs
// are reproduced via the helpers in cpu.go rather than C macros.
func (c *CPU) dispatch(op byte) {
	switch op {

	// --- Load group ---
	case 0xA9:
		c.A = c.setNZ(c.readImm())
	case 0xA5:
		c.A = c.setNZ(c.readZero())
	case 0xB5:
		c.A = c.setNZ(c.readZeroX())
	case 0xAD:
		c.A = c.setNZ(c.readAbs())
	case 0xBD:
		c.A = c.setNZ(c.readAbsX())
	case 0xB9:
		c.A = c.setNZ(c.readAbsY())
	case 0xA1:
		c.A = c.setNZ(c.readIndX())
	case 0xB1:
		c.A = c.setNZ(c.readIndY())

	case 0xA2:
		c.X = c.setNZ(c.readImm())
	case 0xA6:
		c.X = c.setNZ(c.readZero())
	case 0xB6:
		c.X = c.setNZ(c.readZeroY())
	case 0xAE:
		c.X = c.setNZ(c.readAbs())
	case 0xBE:
		c.X = c.setNZ(c.readAbsY())

	case 0xA0:
		c.Y = c.setNZ(c.readImm())
	case 0xA4:
		c.Y = c.setNZ(c.readZero())
	case 0xB4:
		c.Y = c.setNZ(c.readZeroX())
	case 0xAC:
		c.Y = c.setNZ(c.readAbs())
	case 0xBC:
		c.Y = c.setNZ(c.readAbsX())

	// --- Store group ---
	case 0x85:
		c.bus.WriteZP(byte(c.addrZero()), c.A)
		c.tick()
	case 0x95:
		c.bus.WriteZP(byte(c.addrZeroX()), c.A)
		c.tick()
	case 0x8D:
		c.write(c.addrAbs(), c.A)
	case 0x9D:
		c.write(c.addrAbsIndexedFixed(c.X), c.A)
	case 0x99:
		c.write(c.addrAbsIndexedFixed(c.Y), c.A)
	case 0x81:
		c.write(c.addrIndX(), c.A)
	case 0x91:
		c.write(c.addrIndYFixed(), c.A)

	case 0x86:
		c.bus.WriteZP(byte(c.addrZero()), c.X)
		c.tick()
	case 0x96:
		c.bus.WriteZP(byte(c.addrZeroY()), c.X)
		c.tick()
	case 0x8E:
		c.write(c.addrAbs(), c.X)

	case 0x84:
		c.bus.WriteZP(byte(c.addrZero()), c.Y)
		c.tick()
	case 0x94:
		c.bus.WriteZP(byte(c.addrZeroX()), c.Y)
		c.tick()
	case 0x8C:
		c.write(c.addrAbs(), c.Y)

	// --- Transfer group ---
	case 0xAA:
		c.X = c.setNZ(c.A)
		c.idle()
	case 0x8A:
		c.A = c.setNZ(c.X)
		c.idle()
	case 0xA8:
		c.Y = c.setNZ(c.A)
		c.idle()
	case 0x98:
		c.A = c.setNZ(c.Y)
		c.idle()
	case 0xBA:
		c.X = c.setNZ(c.SP)
		c.idle()
	case 0x9A:
		c.SP = c.A
		c.idle()

	// --- Stack group ---
	case 0x48:
		c.idle()
		c.push(c.A)
	case 0x68:
		c.idle()
		c.idle()
		c.A = c.setNZ(c.pop())
	case 0x08:
		c.idle()
		c.pushFlags(flagB)
	case 0x28:
		c.idle()
		c.idle()
		c.popFlags()

	// --- ALU: ADC ---
	case 0x69:
		c.doADC(c.readImm())
	case 0x65:
		c.doADC(c.readZero())
	case 0x75:
		c.doADC(c.readZeroX())
	case 0x6D:
		c.doADC(c.readAbs())
	case 0x7D:
		c.doADC(c.readAbsX())
	case 0x79:
		c.doADC(c.readAbsY())
	case 0x61:
		c.doADC(c.readIndX())
	case 0x71:
		c.doADC(c.readIndY())

	// --- ALU: SBC ---
	case 0xE9:
		c.doSBC(c.readImm())
	case 0xE5:
		c.doSBC(c.readZero())
	case 0xF5:
		c.doSBC(c.readZeroX())
	case 0xED:
		c.doSBC(c.readAbs())
	case 0xFD:
		c.doSBC(c.readAbsX())
	case 0xF9:
		c.doSBC(c.readAbsY())
	case 0xE1:
		c.doSBC(c.readIndX())
	case 0xF1:
		c.doSBC(c.readIndY())

	// --- ALU: AND ---
	case 0x29:
		c.A = c.setNZ(c.A & c.readImm())
	case 0x25:
		c.A = c.setNZ(c.A & c.readZero())
	case 0x35:
		c.A = c.setNZ(c.A & c.readZeroX())
	case 0x2D:
		c.A = c.setNZ(c.A & c.readAbs())
	case 0x3D:
		c.A = c.setNZ(c.A & c.readAbsX())
	case 0x39:
		c.A = c.setNZ(c.A & c.readAbsY())
	case 0x21:
		c.A = c.setNZ(c.A & c.readIndX())
	case 0x31:
		c.A = c.setNZ(c.A & c.readIndY())

	// --- ALU: ORA ---
	case 0x09:
		c.A = c.setNZ(c.A | c.readImm())
	case 0x05:
		c.A = c.setNZ(c.A | c.readZero())
	case 0x15:
		c.A = c.setNZ(c.A | c.readZeroX())
	case 0x0D:
		c.A = c.setNZ(c.A | c.readAbs())
	case 0x1D:
		c.A = c.setNZ(c.A | c.readAbsX())
	case 0x19:
		c.A = c.setNZ(c.A | c.readAbsY())
	case 0x01:
		c.A = c.setNZ(c.A | c.readIndX())
	case 0x11:
		c.A = c.setNZ(c.A | c.readIndY())

	// --- ALU: EOR ---
	case 0x49:
		c.A = c.setNZ(c.A ^ c.readImm())
	case 0x45:
		c.A = c.setNZ(c.A ^ c.readZero())
	case 0x55:
		c.A = c.setNZ(c.A ^ c.readZeroX())
	case 0x4D:
		c.A = c.setNZ(c.A ^ c.readAbs())
	case 0x5D:
		c.A = c.setNZ(c.A ^ c.readAbsX())
	case 0x59:
		c.A = c.setNZ(c.A ^ c.readAbsY())
	case 0x41:
		c.A = c.setNZ(c.A ^ c.readIndX())
	case 0x51:
		c.A = c.setNZ(c.A ^ c.readIndY())

	// --- Compare group ---
	case 0xC9:
		c.doCompare(c.A, c.readImm())
	case 0xC5:
		c.doCompare(c.A, c.readZero())
	case 0xD5:
		c.doCompare(c.A, c.readZeroX())
	case 0xCD:
		c.doCompare(c.A, c.readAbs())
	case 0xDD:
		c.doCompare(c.A, c.readAbsX())
	case 0xD9:
		c.doCompare(c.A, c.readAbsY())
	case 0xC1:
		c.doCompare(c.A, c.readIndX())
	case 0xD1:
		c.doCompare(c.A, c.readIndY())
	case 0xE0:
		c.doCompare(c.X, c.readImm())
	case 0xE4:
		c.doCompare(c.X, c.readZero())
	case 0xEC:
		c.doCompare(c.X, c.readAbs())
	case 0xC0:
		c.doCompare(c.Y, c.readImm())
	case 0xC4:
		c.doCompare(c.Y, c.readZero())
	case 0xCC:
		c.doCompare(c.Y, c.readAbs())

	case 0x24:
		c.doBit(c.readZero())
	case 0x2C:
		c.doBit(c.readAbs())

	// --- Inc/Dec group ---
	case 0xE6:
		a := c.addrZero()
		v := c.bus.ReadZP(byte(a))
		c.tick()
		c.bus.WriteZP(byte(a), c.setNZ(v+1))
		c.tick()
	case 0xF6:
		a := c.addrZeroX()
		v := c.bus.ReadZP(byte(a))
		c.tick()
		c.bus.WriteZP(byte(a), c.setNZ(v+1))
		c.tick()
	case 0xEE:
		a := c.addrAbs()
		v := c.read(a)
		c.write(a, c.setNZ(v+1))
	case 0xFE:
		a := c.addrAbsIndexedFixed(c.X)
		v := c.read(a)
		c.write(a, c.setNZ(v+1))

	case 0xC6:
		a := c.addrZero()
		v := c.bus.ReadZP(byte(a))
		c.tick()
		c.bus.WriteZP(byte(a), c.setNZ(v-1))
		c.tick()
	case 0xD6:
		a := c.addrZeroX()
		v := c.bus.ReadZP(byte(a))
		c.tick()
		c.bus.WriteZP(byte(a), c.setNZ(v-1))
		c.tick()
	case 0xCE:
		a := c.addrAbs()
		v := c.read(a)
		c.write(a, c.setNZ(v-1))
	case 0xDE:
		a := c.addrAbsIndexedFixed(c.X)
		v := c.read(a)
		c.write(a, c.setNZ(v-1))

	case 0xE8:
		c.X = c.setNZ(c.X + 1)
		c.idle()
	case 0xCA:
		c.X = c.setNZ(c.X - 1)
		c.idle()
	case 0xC8:
		c.Y = c.setNZ(c.Y + 1)
		c.idle()
	case 0x88:
		c.Y = c.setNZ(c.Y - 1)
		c.idle()

	// --- Shift/rotate group (accumulator + memory forms) ---
	case 0x0A:
		c.A = c.doASL(c.A)
		c.idle()
	case 0x06:
		a := c.addrZero()
		v := c.bus.ReadZP(byte(a))
		c.tick()
		c.bus.WriteZP(byte(a), c.doASL(v))
		c.tick()
	case 0x16:
		a := c.addrZeroX()
		v := c.bus.ReadZP(byte(a))
		c.tick()
		c.bus.WriteZP(byte(a), c.doASL(v))
		c.tick()
	case 0x0E:
		a := c.addrAbs()
		v := c.read(a)
		c.write(a, c.doASL(v))
	case 0x1E:
		a := c.addrAbsIndexedFixed(c.X)
		v := c.read(a)
		c.write(a, c.doASL(v))

	case 0x4A:
		c.A = c.doLSR(c.A)
		c.idle()
	case 0x46:
		a := c.addrZero()
		v := c.bus.ReadZP(byte(a))
		c.tick()
		c.bus.WriteZP(byte(a), c.doLSR(v))
		c.tick()
	case 0x56:
		a := c.addrZeroX()
		v := c.bus.ReadZP(byte(a))
		c.tick()
		c.bus.WriteZP(byte(a), c.doLSR(v))
		c.tick()
	case 0x4E:
		a := c.addrAbs()
		v := c.read(a)
		c.write(a, c.doLSR(v))
	case 0x5E:
		a := c.addrAbsIndexedFixed(c.X)
		v := c.read(a)
		c.write(a, c.doLSR(v))

	case 0x2A:
		c.A = c.doROL(c.A)
		c.idle()
	case 0x26:
		a := c.addrZero()
		v := c.bus.ReadZP(byte(a))
		c.tick()
		c.bus.WriteZP(byte(a), c.doROL(v))
		c.tick()
	case 0x36:
		a := c.addrZeroX()
		v := c.bus.ReadZP(byte(a))
		c.tick()
		c.bus.WriteZP(byte(a), c.doROL(v))
		c.tick()
	case 0x2E:
		a := c.addrAbs()
		v := c.read(a)
		c.write(a, c.doROL(v))
	case 0x3E:
		a := c.addrAbsIndexedFixed(c.X)
		v := c.read(a)
		c.write(a, c.doROL(v))

	case 0x6A:
		c.A = c.doROR(c.A)
		c.idle()
	case 0x66:
		a := c.addrZero()
		v := c.bus.ReadZP(byte(a))
		c.tick()
		c.bus.WriteZP(byte(a), c.doROR(v))
		c.tick()
	case 0x76:
		a := c.addrZeroX()
		v := c.bus.ReadZP(byte(a))
		c.tick()
		c.bus.WriteZP(byte(a), c.doROR(v))
		c.tick()
	case 0x6E:
		a := c.addrAbs()
		v := c.read(a)
		c.write(a, c.doROR(v))
	case 0x7E:
		a := c.addrAbsIndexedFixed(c.X)
		v := c.read(a)
		c.write(a, c.doROR(v))

	// --- Jump/branch/subroutine group ---
	case 0x4C:
		c.PC = c.addrAbs()
	case 0x6C:
		ptr := c.addrAbs()
		lo := c.read(ptr)
		hiAddr := (ptr & 0xFF00) | ((ptr + 1) & 0xFF)
		hi := c.read(hiAddr)
		c.PC = uint16(lo) | uint16(hi)<<8
	case 0x20:
		lo := c.fetch()
		c.idle()
		retAddr := c.PC
		c.push(byte(retAddr >> 8))
		c.push(byte(retAddr))
		hi := c.fetch()
		c.PC = uint16(lo) | uint16(hi)<<8
	case 0x60:
		c.idle()
		c.idle()
		lo := c.pop()
		hi := c.pop()
		c.PC = (uint16(lo) | uint16(hi)<<8) + 1
		c.idle()
	case 0x40:
		// RTI: in the replay driver this signals "routine finished",
		// matching original_source/cpu_opcodes.h's #ifdef SID_PLAYER
		// branch rather than performing an interrupt return.
		c.quit = true
		c.stopReason = StopReasonReturn
	case 0x00:
		c.idle()
		c.PC++
		c.push(byte(c.PC >> 8))
		c.push(byte(c.PC))
		c.pushFlags(flagB)
		c.P |= flagI
		lo := c.read(0xFFFE)
		hi := c.read(0xFFFF)
		c.PC = uint16(lo) | uint16(hi)<<8

	case 0xB0:
		c.branch(c.P&flagC != 0)
	case 0x90:
		c.branch(c.P&flagC == 0)
	case 0xF0:
		c.branch(c.zFlagSet())
	case 0xD0:
		c.branch(!c.zFlagSet())
	case 0x70:
		c.branch(c.P&flagV != 0)
	case 0x50:
		c.branch(c.P&flagV == 0)
	case 0x10:
		c.branch(!c.nFlagSet())
	case 0x30:
		c.branch(c.nFlagSet())

	// --- Flag group ---
	case 0x18:
		c.setFlag(flagC, false)
		c.idle()
	case 0x38:
		c.setFlag(flagC, true)
		c.idle()
	case 0x58:
		c.setFlag(flagI, false)
		c.idle()
	case 0x78:
		c.setFlag(flagI, true)
		c.idle()
	case 0xB8:
		c.setFlag(flagV, false)
		c.idle()
	case 0xD8:
		c.setFlag(flagD, false)
		c.idle()
	case 0xF8:
		c.setFlag(flagD, true)
		c.idle()

	case 0xEA:
		c.idle()

	default:
		c.dispatchUndocumented(op)
	}
}
