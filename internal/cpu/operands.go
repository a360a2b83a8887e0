package cpu

import (
	"github.com/olympia-emu/olympia/internal/isa"
)

// reg8ptr resolves an 8-bit register operand to its storage. The (HL)
// pseudo-register never reaches here; operand decoding surfaces it as a
// MemoryIndirect operand instead.
func (c *CPU) reg8ptr(r isa.Reg8) *uint8 {
	switch r {
	case isa.RegB:
		return &c.Reg.B
	case isa.RegC:
		return &c.Reg.C
	case isa.RegD:
		return &c.Reg.D
	case isa.RegE:
		return &c.Reg.E
	case isa.RegH:
		return &c.Reg.H
	case isa.RegL:
		return &c.Reg.L
	default:
		return &c.Reg.A
	}
}

// memAddr resolves a MemoryIndirect operand to a guest address, applying
// the HL post-increment/decrement forms as a side effect. Each instruction
// carries at most one such operand, so the adjustment happens exactly once.
func (c *CPU) memAddr(op isa.Operand) uint16 {
	switch op.Mem {
	case isa.MemBC:
		return c.Reg.BC()
	case isa.MemDE:
		return c.Reg.DE()
	case isa.MemHL:
		return c.Reg.HL()
	case isa.MemHLInc:
		addr := c.Reg.HL()
		c.Reg.SetHL(addr + 1)
		return addr
	case isa.MemHLDec:
		addr := c.Reg.HL()
		c.Reg.SetHL(addr - 1)
		return addr
	case isa.MemC:
		return 0xFF00 + uint16(c.Reg.C)
	case isa.MemImm8:
		return 0xFF00 + op.Imm
	default: // MemImm16
		return op.Imm
	}
}

// read8 evaluates an 8-bit source operand.
func (c *CPU) read8(op isa.Operand) uint8 {
	switch op.Kind {
	case isa.OperandRegister8:
		return *c.reg8ptr(op.Reg8)
	case isa.OperandMemoryIndirect:
		return c.bus.Read(c.memAddr(op))
	default: // ImmediateU8 / ImmediateI8
		return uint8(op.Imm)
	}
}

// write8 stores an 8-bit value into a destination operand. Register change
// events are emitted once per instruction by the Step loop's register diff,
// not here.
func (c *CPU) write8(op isa.Operand, v uint8) {
	if op.Kind == isa.OperandRegister8 {
		*c.reg8ptr(op.Reg8) = v
		return
	}
	c.bus.Write(c.memAddr(op), v)
}

// read16 evaluates a 16-bit register-pair operand.
func (c *CPU) read16(r isa.Reg16) uint16 {
	switch r {
	case isa.RegBC:
		return c.Reg.BC()
	case isa.RegDE:
		return c.Reg.DE()
	case isa.RegHL:
		return c.Reg.HL()
	case isa.RegAF:
		return c.Reg.AF()
	default:
		return c.Reg.SP
	}
}

// write16 stores a 16-bit value into a register pair, masking F's low
// nibble on AF.
func (c *CPU) write16(r isa.Reg16, v uint16) {
	switch r {
	case isa.RegBC:
		c.Reg.SetBC(v)
	case isa.RegDE:
		c.Reg.SetDE(v)
	case isa.RegHL:
		c.Reg.SetHL(v)
	case isa.RegAF:
		c.Reg.SetAF(v)
	default:
		c.Reg.SP = v
	}
}
