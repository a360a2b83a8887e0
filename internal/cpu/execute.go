package cpu

import "github.com/olympia-emu/olympia/internal/isa"

// execute applies one decoded instruction's side effects. PC has already
// been advanced past the instruction; control transfers overwrite it. The
// return value reports whether a conditional branch was taken, selecting
// between the instruction's base and alt cycle costs.
func (c *CPU) execute(in isa.Instruction) bool {
	switch in.Mnemonic {
	case isa.NOP:

	case isa.LD, isa.LDH:
		c.executeLD(in)

	case isa.LD_HL_SP_R8:
		c.Reg.SetHL(c.addSPSigned(uint8(in.Op(1).Imm)))

	case isa.ADD:
		if in.Op(0).Kind == isa.OperandRegister16 {
			c.addHL(c.read16(in.Op(1).Reg16))
		} else {
			c.Reg.A = c.add8(c.Reg.A, c.read8(in.Op(1)), false)
		}

	case isa.ADD_SP:
		c.Reg.SP = c.addSPSigned(uint8(in.Op(1).Imm))

	case isa.ADC:
		c.Reg.A = c.add8(c.Reg.A, c.read8(in.Op(1)), true)

	case isa.SUB:
		c.Reg.A = c.sub8(c.Reg.A, c.read8(in.Op(1)), false)

	case isa.SBC:
		c.Reg.A = c.sub8(c.Reg.A, c.read8(in.Op(1)), true)

	case isa.AND:
		c.and8(c.read8(in.Op(1)))

	case isa.OR:
		c.or8(c.read8(in.Op(1)))

	case isa.XOR:
		c.xor8(c.read8(in.Op(1)))

	case isa.CP:
		c.sub8(c.Reg.A, c.read8(in.Op(1)), false)

	case isa.INC:
		if op := in.Op(0); op.Kind == isa.OperandRegister16 {
			c.write16(op.Reg16, c.read16(op.Reg16)+1)
		} else {
			c.write8(op, c.inc8(c.read8(op)))
		}

	case isa.DEC:
		if op := in.Op(0); op.Kind == isa.OperandRegister16 {
			c.write16(op.Reg16, c.read16(op.Reg16)-1)
		} else {
			c.write8(op, c.dec8(c.read8(op)))
		}

	case isa.JP:
		if in.Op(0).Kind == isa.OperandMemoryIndirect {
			// JP (HL) jumps to the value of HL, not to memory at HL.
			c.Reg.PC = c.Reg.HL()
			return true
		}
		return c.jumpIf(in, func(target uint16) { c.Reg.PC = target })

	case isa.JR:
		return c.jumpRelative(in)

	case isa.CALL:
		return c.jumpIf(in, func(target uint16) {
			c.push(c.Reg.PC)
			c.Reg.PC = target
		})

	case isa.RET:
		if in.NumOperands == 1 {
			if !c.condMet(in.Op(0).Cond) {
				return false
			}
			c.Reg.PC = c.pop()
			return true
		}
		c.Reg.PC = c.pop()
		return true

	case isa.RETI:
		c.Reg.PC = c.pop()
		c.irq.IME = true
		return true

	case isa.PUSH:
		c.push(c.read16(in.Op(0).Reg16))

	case isa.POP:
		c.write16(in.Op(0).Reg16, c.pop())

	case isa.RST:
		c.push(c.Reg.PC)
		c.Reg.PC = in.Op(0).Imm
		return true

	case isa.BIT:
		v := c.read8(in.Op(1))
		c.setFlag(FlagZ, v>>in.Op(0).Imm&1 == 0)
		c.setFlag(FlagN, false)
		c.setFlag(FlagH, true)

	case isa.RES:
		c.write8(in.Op(1), c.read8(in.Op(1))&^(1<<in.Op(0).Imm))

	case isa.SET:
		c.write8(in.Op(1), c.read8(in.Op(1))|1<<in.Op(0).Imm)

	case isa.RLC:
		c.write8(in.Op(0), c.rlc(c.read8(in.Op(0))))
	case isa.RRC:
		c.write8(in.Op(0), c.rrc(c.read8(in.Op(0))))
	case isa.RL:
		c.write8(in.Op(0), c.rl(c.read8(in.Op(0))))
	case isa.RR:
		c.write8(in.Op(0), c.rr(c.read8(in.Op(0))))
	case isa.SLA:
		c.write8(in.Op(0), c.sla(c.read8(in.Op(0))))
	case isa.SRA:
		c.write8(in.Op(0), c.sra(c.read8(in.Op(0))))
	case isa.SRL:
		c.write8(in.Op(0), c.srl(c.read8(in.Op(0))))
	case isa.SWAP:
		c.write8(in.Op(0), c.swap(c.read8(in.Op(0))))

	// The accumulator rotates always clear Z, unlike their 0xCB forms.
	case isa.RLCA:
		c.Reg.A = c.rlc(c.Reg.A)
		c.setFlag(FlagZ, false)
	case isa.RRCA:
		c.Reg.A = c.rrc(c.Reg.A)
		c.setFlag(FlagZ, false)
	case isa.RLA:
		c.Reg.A = c.rl(c.Reg.A)
		c.setFlag(FlagZ, false)
	case isa.RRA:
		c.Reg.A = c.rr(c.Reg.A)
		c.setFlag(FlagZ, false)

	case isa.DAA:
		c.daa()

	case isa.CPL:
		c.Reg.A = ^c.Reg.A
		c.setFlag(FlagN, true)
		c.setFlag(FlagH, true)

	case isa.CCF:
		c.setFlag(FlagC, !c.flag(FlagC))
		c.setFlag(FlagN, false)
		c.setFlag(FlagH, false)

	case isa.SCF:
		c.setFlag(FlagC, true)
		c.setFlag(FlagN, false)
		c.setFlag(FlagH, false)

	case isa.HALT:
		c.setState(Halted)

	case isa.STOP:
		c.setState(Stopped)

	case isa.DI:
		c.irq.IME = false
		c.eiDelay = 0

	case isa.EI:
		// Takes effect one instruction late: the counter reaches zero at the
		// end of the *next* Step, not this one.
		c.eiDelay = 2
	}
	return false
}

// executeLD covers every LD/LDH form. The three 16-bit shapes are picked
// off first; everything else is a plain 8-bit move between the operands.
func (c *CPU) executeLD(in isa.Instruction) {
	dst, src := in.Op(0), in.Op(1)
	switch {
	case dst.Kind == isa.OperandRegister16 && src.Kind == isa.OperandImmediateU16:
		c.write16(dst.Reg16, src.Imm)
	case dst.Kind == isa.OperandRegister16 && src.Kind == isa.OperandRegister16:
		// LD SP, HL
		c.Reg.SP = c.Reg.HL()
	case dst.Kind == isa.OperandMemoryIndirect && src.Kind == isa.OperandRegister16:
		// LD (a16), SP stores the low byte first.
		c.bus.Write(dst.Imm, uint8(c.Reg.SP))
		c.bus.Write(dst.Imm+1, uint8(c.Reg.SP>>8))
	default:
		c.write8(dst, c.read8(src))
	}
}

// jumpIf handles the conditional and unconditional absolute transfer forms
// shared by JP and CALL.
func (c *CPU) jumpIf(in isa.Instruction, transfer func(uint16)) bool {
	if in.Op(0).Kind == isa.OperandCondition {
		if !c.condMet(in.Op(0).Cond) {
			return false
		}
		transfer(in.Op(1).Imm)
		return true
	}
	transfer(in.Op(0).Imm)
	return true
}

// jumpRelative handles JR: the displacement is signed and relative to the
// already-advanced PC.
func (c *CPU) jumpRelative(in isa.Instruction) bool {
	off := in.Op(0)
	if off.Kind == isa.OperandCondition {
		if !c.condMet(in.Op(0).Cond) {
			return false
		}
		off = in.Op(1)
	}
	c.Reg.PC += uint16(int16(int8(off.Imm)))
	return true
}
