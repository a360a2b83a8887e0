// Package debugger is the command surface frontends drive the core with:
// stepping with an instruction budget, breakpoints over addresses, values
// and memory accesses, region reads and disassembly of the current
// instruction. It observes the Bus and CPU and never mutates them except
// through explicit commands.
package debugger

import (
	"fmt"
	"sync/atomic"

	"github.com/olympia-emu/olympia/internal/bus"
	"github.com/olympia-emu/olympia/internal/coreerr"
	"github.com/olympia-emu/olympia/internal/cpu"
	"github.com/olympia-emu/olympia/internal/disasm"
	"github.com/olympia-emu/olympia/internal/isa"
)

// StopReason reports why a StepN/Continue run returned.
type StopReason uint8

const (
	Completed StopReason = iota
	BreakpointHit
	Halted
	Error
)

func (r StopReason) String() string {
	switch r {
	case Completed:
		return "completed"
	case BreakpointHit:
		return "breakpoint hit"
	case Halted:
		return "halted"
	default:
		return "error"
	}
}

// Result describes one StepN/Continue run.
type Result struct {
	Reason StopReason
	// Steps is the number of instructions actually retired.
	Steps int
	// Breakpoint is set when Reason is BreakpointHit.
	Breakpoint *Breakpoint
	// Err is set when Reason is Error, and holds a coreerr.BreakpointHit
	// when Reason is BreakpointHit.
	Err error
}

// Debugger drives a CPU/Bus pair.
type Debugger struct {
	cpu *cpu.CPU
	bus *bus.Bus

	breakpoints []Breakpoint
	nextID      int

	// cancel is the caller-flippable flag checked between steps; it may be
	// set from another goroutine while StepN runs.
	cancel atomic.Bool

	// accesses collects the memory events of the instruction currently
	// executing, for the memory-read/write breakpoint kinds.
	accesses []bus.Event
}

// New attaches a debugger to the given CPU and Bus. It subscribes to the
// Bus's event stream to observe memory accesses.
func New(c *cpu.CPU, b *bus.Bus) *Debugger {
	d := &Debugger{cpu: c, bus: b, nextID: 1}
	b.Events().Subscribe(func(ev bus.Event) {
		if ev.Kind == bus.EventMemoryRead || ev.Kind == bus.EventMemoryWrite {
			d.accesses = append(d.accesses, ev)
		}
	})
	return d
}

// SetBreakpoint arms a breakpoint and returns its id. target is an address
// except for RegisterValue breakpoints, where register names the watched
// register (A, F, B, C, D, E, H, L, SP, PC).
func (d *Debugger) SetBreakpoint(kind Kind, target uint16, register string, op Op, value uint16) int {
	bp := Breakpoint{ID: d.nextID, Kind: kind, Addr: target, Register: register, Op: op, Value: value}
	d.nextID++
	d.breakpoints = append(d.breakpoints, bp)
	return bp.ID
}

// ClearBreakpoint disarms breakpoint id, reporting whether it existed.
func (d *Debugger) ClearBreakpoint(id int) bool {
	for i, bp := range d.breakpoints {
		if bp.ID == id {
			d.breakpoints = append(d.breakpoints[:i], d.breakpoints[i+1:]...)
			return true
		}
	}
	return false
}

// Breakpoints lists the armed breakpoints.
func (d *Debugger) Breakpoints() []Breakpoint {
	out := make([]Breakpoint, len(d.breakpoints))
	copy(out, d.breakpoints)
	return out
}

// Cancel flips the flag StepN checks between steps; the run in progress
// returns Completed at the next boundary.
func (d *Debugger) Cancel() { d.cancel.Store(true) }

// StepN executes up to count instructions, stopping early when a
// breakpoint fires, the CPU leaves the Running state, an error surfaces,
// or Cancel is called. It is the only long-running primitive; Continue is
// a StepN with the caller's budget.
func (d *Debugger) StepN(count int) Result {
	d.cancel.Store(false)
	for i := 0; i < count; i++ {
		d.accesses = d.accesses[:0]
		if _, err := d.cpu.Step(); err != nil {
			return Result{Reason: Error, Steps: i, Err: err}
		}
		if bp := d.firstTriggered(); bp != nil {
			return Result{Reason: BreakpointHit, Steps: i + 1, Breakpoint: bp, Err: coreerr.BreakpointHit{ID: bp.ID}}
		}
		if d.cpu.State() != cpu.Running {
			return Result{Reason: Halted, Steps: i + 1}
		}
		if d.cancel.Load() {
			return Result{Reason: Completed, Steps: i + 1}
		}
	}
	return Result{Reason: Completed, Steps: count}
}

// Continue runs until a breakpoint fires or the instruction budget is
// exhausted; like StepN it also stops when the CPU halts or stops, on an
// error, or on Cancel.
func (d *Debugger) Continue(budget int) Result {
	return d.StepN(budget)
}

// firstTriggered evaluates the armed breakpoints after a retire; the first
// to trigger wins.
func (d *Debugger) firstTriggered() *Breakpoint {
	for i := range d.breakpoints {
		bp := &d.breakpoints[i]
		if d.triggered(bp) {
			return bp
		}
	}
	return nil
}

func (d *Debugger) triggered(bp *Breakpoint) bool {
	switch bp.Kind {
	case KindAddress:
		return d.cpu.Reg.PC == bp.Addr
	case KindMemoryValue:
		return bp.Op.compare(uint16(d.bus.Peek(bp.Addr)), bp.Value)
	case KindRegisterValue:
		have, ok := d.registerValue(bp.Register)
		return ok && bp.Op.compare(have, bp.Value)
	case KindMemoryRead:
		return d.accessMatches(bus.EventMemoryRead, bp.Addr)
	case KindMemoryWrite:
		return d.accessMatches(bus.EventMemoryWrite, bp.Addr)
	default:
		return false
	}
}

func (d *Debugger) accessMatches(kind bus.EventKind, addr uint16) bool {
	for _, ev := range d.accesses {
		if ev.Kind == kind && ev.Addr == addr {
			return true
		}
	}
	return false
}

func (d *Debugger) registerValue(name string) (uint16, bool) {
	r := &d.cpu.Reg
	switch name {
	case "A":
		return uint16(r.A), true
	case "F":
		return uint16(r.F), true
	case "B":
		return uint16(r.B), true
	case "C":
		return uint16(r.C), true
	case "D":
		return uint16(r.D), true
	case "E":
		return uint16(r.E), true
	case "H":
		return uint16(r.H), true
	case "L":
		return uint16(r.L), true
	case "BC":
		return r.BC(), true
	case "DE":
		return r.DE(), true
	case "HL":
		return r.HL(), true
	case "AF":
		return r.AF(), true
	case "SP":
		return r.SP, true
	case "PC":
		return r.PC, true
	default:
		return 0, false
	}
}

// Registers returns a copy of the CPU register file.
func (d *Debugger) Registers() cpu.Registers { return d.cpu.Reg }

// CycleCount is the CPU's monotonic cycle counter.
func (d *Debugger) CycleCount() uint64 { return d.cpu.Cycles() }

// State is the CPU's run state.
func (d *Debugger) State() cpu.State { return d.cpu.State() }

// ReadRange reads [start, end] through the Bus without emitting events or
// tripping access breakpoints. The second slice flags which addresses are
// actually populated; unpopulated ones render as "--".
func (d *Debugger) ReadRange(start, end uint16) ([]uint8, []bool) {
	n := int(end) - int(start) + 1
	if n <= 0 {
		return nil, nil
	}
	values := make([]uint8, n)
	populated := make([]bool, n)
	for i := 0; i < n; i++ {
		addr := start + uint16(i)
		values[i] = d.bus.Peek(addr)
		populated[i] = d.bus.Populated(addr)
	}
	return values, populated
}

// ReadRegion reads a named region; see bus.RegionNames for the vocabulary.
func (d *Debugger) ReadRegion(name string) (bus.Range, []uint8, []bool, error) {
	r, ok := bus.NamedRegion(name)
	if !ok {
		return bus.Range{}, nil, nil, fmt.Errorf("debugger: unknown region %q", name)
	}
	values, populated := d.ReadRange(r.Start, r.End)
	return r, values, populated, nil
}

// DisassembleCurrent renders the instruction at PC, or a DB line when the
// byte there does not decode.
func (d *Debugger) DisassembleCurrent() string {
	pc := d.cpu.Reg.PC
	in, err := isa.Decode(d.bus.Peek, pc)
	if err != nil {
		return fmt.Sprintf("%04X  DB 0x%02X", pc, d.bus.Peek(pc))
	}
	raw := make([]byte, in.Size)
	for i := range raw {
		raw[i] = d.bus.Peek(pc + uint16(i))
	}
	return disasm.Format(pc, in, raw, true)
}
