// Package cpu executes decoded LR35902 instructions against the Bus: the
// register file, flag computation, control flow, the interrupt machinery
// and the cycle counter live here. Decoding itself is package isa's job.
package cpu

import (
	"github.com/olympia-emu/olympia/internal/bus"
	"github.com/olympia-emu/olympia/internal/coreerr"
	"github.com/olympia-emu/olympia/internal/interrupts"
	"github.com/olympia-emu/olympia/internal/isa"
	"github.com/olympia-emu/olympia/internal/xlog"
)

// State is the executor's coarse run state.
type State uint8

const (
	Running State = iota
	Halted
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "Running"
	case Halted:
		return "Halted"
	case Stopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// interruptDispatchCycles is the cost of taking an interrupt: two idle
// machine cycles, the PC push, and the vector jump.
const interruptDispatchCycles = 20

// CPU is the executor. It owns only registers, run state and the cycle
// counter; all memory goes through the Bus, and the interrupt registers
// live in the shared interrupts.Controller.
type CPU struct {
	Reg Registers

	bus *bus.Bus
	irq *interrupts.Controller

	state  State
	cycles uint64

	// eiDelay implements EI's one-instruction delay slot: EI sets it to 2,
	// the end of each Step decrements it, and IME goes high when it hits 0.
	eiDelay uint8
}

// New returns a CPU attached to b, in the power-on state.
func New(b *bus.Bus) *CPU {
	c := &CPU{bus: b, irq: b.Interrupts()}
	c.Reset()
	return c
}

// Reset applies the DMG power-on register values and clears the interrupt
// master enable. The cycle counter is not reset: it is monotonic for the
// lifetime of the CPU.
func (c *CPU) Reset() {
	c.Reg.A, c.Reg.F = 0x01, 0xB0
	c.Reg.SetBC(0x0013)
	c.Reg.SetDE(0x00D8)
	c.Reg.SetHL(0x014D)
	c.Reg.SP = 0xFFFE
	c.Reg.PC = 0x0100
	c.irq.IME = false
	c.state = Running
	c.eiDelay = 0
}

// State reports the current run state.
func (c *CPU) State() State { return c.state }

// Cycles is the number of clock cycles retired since power-on.
func (c *CPU) Cycles() uint64 { return c.cycles }

// Wake pulls a Stopped CPU back to Running, modeling the joypad line going
// low. It has no effect in other states.
func (c *CPU) Wake() {
	if c.state == Stopped {
		c.setState(Running)
	}
}

// Step advances the CPU by one instruction (or one idle Halted cycle) and
// returns the number of clock cycles consumed, including any interrupt
// dispatch that followed the instruction. Decode errors leave PC unchanged
// so the caller can report and skip.
func (c *CPU) Step() (uint8, error) {
	switch c.state {
	case Stopped:
		// STOP power saving is deliberately stubbed, not approximated: the
		// only way forward is an explicit Wake.
		return 0, coreerr.NotImplemented{Feature: "STOP power saving"}
	case Halted:
		if !c.irq.Pending() {
			c.cycles += 4
			return 4, nil
		}
		// IF & IE went non-zero: resume, dispatching only if IME is set.
		c.setState(Running)
		if c.irq.Ready() {
			return c.dispatchInterrupt(), nil
		}
	}

	pc := c.Reg.PC
	in, err := isa.Decode(c.bus.Peek, pc)
	if err != nil {
		return 0, err
	}
	c.Reg.PC = pc + uint16(in.Size)

	observing := c.bus.Events().Active()
	var before Registers
	if observing {
		before = c.Reg
	}

	taken := c.execute(in)

	n := in.BaseCycles
	if taken {
		n = in.AltCycles
	}
	c.cycles += uint64(n)

	if observing {
		c.emitRegisterEvents(before)
		c.bus.Events().Emit(bus.Event{Kind: bus.EventInstructionRetired, PC: pc, Cycles: n})
	}

	if c.eiDelay > 0 {
		c.eiDelay--
		if c.eiDelay == 0 {
			c.irq.IME = true
		}
	}

	if c.irq.Ready() {
		if c.state == Halted {
			c.setState(Running)
		}
		n += c.dispatchInterrupt()
	}
	return n, nil
}

// StepN steps up to count instructions, stopping early on error. It returns
// the number of instructions actually retired.
func (c *CPU) StepN(count int) (int, error) {
	for i := 0; i < count; i++ {
		if _, err := c.Step(); err != nil {
			return i, err
		}
	}
	return count, nil
}

// dispatchInterrupt services the highest-priority pending, enabled
// interrupt: push PC, clear its IF bit, drop IME and jump to the vector.
func (c *CPU) dispatchInterrupt() uint8 {
	vector, bit, ok := c.irq.Highest()
	if !ok {
		return 0
	}
	c.irq.IME = false
	c.irq.Clear(bit)
	c.push(c.Reg.PC)
	c.Reg.PC = vector
	c.cycles += interruptDispatchCycles
	return interruptDispatchCycles
}

func (c *CPU) setState(s State) {
	if s == c.state {
		return
	}
	old := c.state
	c.state = s
	if s == Halted && !c.irq.IME && c.irq.Enable&0x1F == 0 {
		xlog.Warnf("cpu: %v", coreerr.HaltedWithInterruptsDisabled{PC: c.Reg.PC})
	}
	if c.bus.Events().Active() {
		c.bus.Events().Emit(bus.Event{Kind: bus.EventStateChange, OldState: old.String(), NewState: s.String()})
	}
}

// emitRegisterEvents diffs the register file against its pre-execute
// snapshot and emits one RegisterWrite per changed register. PC is
// excluded: every instruction moves it, and the retire event reports it.
func (c *CPU) emitRegisterEvents(before Registers) {
	diff := func(name string, old, new uint16) {
		if old != new {
			c.bus.Events().Emit(bus.Event{Kind: bus.EventRegisterWrite, Register: name, OldValue: old, NewValue: new})
		}
	}
	diff("A", uint16(before.A), uint16(c.Reg.A))
	diff("F", uint16(before.F), uint16(c.Reg.F))
	diff("B", uint16(before.B), uint16(c.Reg.B))
	diff("C", uint16(before.C), uint16(c.Reg.C))
	diff("D", uint16(before.D), uint16(c.Reg.D))
	diff("E", uint16(before.E), uint16(c.Reg.E))
	diff("H", uint16(before.H), uint16(c.Reg.H))
	diff("L", uint16(before.L), uint16(c.Reg.L))
	diff("SP", before.SP, c.Reg.SP)
}

// push writes v onto the stack, high byte first at SP-1, low byte at SP-2.
func (c *CPU) push(v uint16) {
	c.Reg.SP--
	c.bus.Write(c.Reg.SP, uint8(v>>8))
	c.Reg.SP--
	c.bus.Write(c.Reg.SP, uint8(v))
}

// pop reads a 16-bit value off the stack, low byte first.
func (c *CPU) pop() uint16 {
	lo := c.bus.Read(c.Reg.SP)
	c.Reg.SP++
	hi := c.bus.Read(c.Reg.SP)
	c.Reg.SP++
	return uint16(hi)<<8 | uint16(lo)
}

// flag reports whether the given F bit is set.
func (c *CPU) flag(mask uint8) bool { return c.Reg.F&mask != 0 }

// setFlag sets or clears one F bit, keeping the low nibble zero.
func (c *CPU) setFlag(mask uint8, on bool) {
	if on {
		c.Reg.F |= mask
	} else {
		c.Reg.F &^= mask
	}
	c.Reg.F &= 0xF0
}

// setFlags writes all four flags at once.
func (c *CPU) setFlags(z, n, h, carry bool) {
	var f uint8
	if z {
		f |= FlagZ
	}
	if n {
		f |= FlagN
	}
	if h {
		f |= FlagH
	}
	if carry {
		f |= FlagC
	}
	c.Reg.F = f
}

func (c *CPU) condMet(cond isa.Condition) bool {
	switch cond {
	case isa.CondNZ:
		return !c.flag(FlagZ)
	case isa.CondZ:
		return c.flag(FlagZ)
	case isa.CondNC:
		return !c.flag(FlagC)
	case isa.CondC:
		return c.flag(FlagC)
	default:
		return true
	}
}
