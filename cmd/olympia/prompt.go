package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/olympia-emu/olympia/internal/bus"
	"github.com/olympia-emu/olympia/internal/debugger"
)

const promptHelp = `commands:
  step|s [n]          execute n instructions (default 1)
  continue            run until a breakpoint fires, the CPU halts, or the budget runs out
  current|ci          disassemble the instruction at PC
  print-registers|pr  dump the register file
  print-bytes|pb A    dump memory; A is <start>:<end> or a region name
  cycle-count|cc      print the cycle counter
  break ...           arm a breakpoint:
                        break <addr>
                        break read <addr> | write <addr>
                        break mem <addr> <op> <value>
                        break reg <name> <op> <value>
  unbreak <id>        disarm a breakpoint (no id: list armed breakpoints)
  help                this text
  exit                quit`

// runPrompt is the interactive debug loop. The prompt is only printed when
// stdin is a terminal, so piped command scripts produce clean output.
func runPrompt(dbg *debugger.Debugger, budget int) error {
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println(dbg.DisassembleCurrent())
	for {
		if interactive {
			fmt.Print("olympia> ")
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "exit", "quit":
			return nil
		case "help":
			fmt.Println(promptHelp)
		case "step", "s":
			n := 1
			if len(args) == 1 {
				v, err := strconv.Atoi(args[0])
				if err != nil || v < 1 {
					fmt.Println("step: expected a positive count")
					continue
				}
				n = v
			}
			report(dbg, dbg.StepN(n))
		case "continue":
			report(dbg, dbg.Continue(budget))
		case "current", "ci":
			fmt.Println(dbg.DisassembleCurrent())
		case "print-registers", "pr":
			printRegisters(dbg)
		case "cycle-count", "cc":
			fmt.Println(dbg.CycleCount())
		case "print-bytes", "pb":
			if len(args) != 1 {
				fmt.Println("print-bytes: expected <start>:<end> or a region name")
				continue
			}
			printBytes(dbg, args[0])
		case "break":
			cmdBreak(dbg, args)
		case "unbreak":
			cmdUnbreak(dbg, args)
		default:
			fmt.Printf("unknown command %q (try help)\n", cmd)
		}
	}
}

func report(dbg *debugger.Debugger, res debugger.Result) {
	switch res.Reason {
	case debugger.BreakpointHit:
		fmt.Printf("%s: %s after %d instruction(s)\n", res.Reason, res.Breakpoint, res.Steps)
	case debugger.Halted:
		fmt.Printf("%s (%s) after %d instruction(s)\n", res.Reason, dbg.State(), res.Steps)
	case debugger.Error:
		fmt.Printf("error after %d instruction(s): %v\n", res.Steps, res.Err)
	}
	fmt.Println(dbg.DisassembleCurrent())
}

func printRegisters(dbg *debugger.Debugger) {
	r := dbg.Registers()
	fmt.Printf("AF=0x%04X BC=0x%04X DE=0x%04X HL=0x%04X\n", r.AF(), r.BC(), r.DE(), r.HL())
	fmt.Printf("SP=0x%04X PC=0x%04X\n", r.SP, r.PC)
	fmt.Printf("Z=%d N=%d H=%d C=%d  state=%s\n",
		flagBit(r.F, 7), flagBit(r.F, 6), flagBit(r.F, 5), flagBit(r.F, 4), dbg.State())
}

func flagBit(f uint8, bit uint8) uint8 { return f >> bit & 1 }

// printBytes dumps a memory window, 16 bytes per row, rendering
// unpopulated addresses as "--".
func printBytes(dbg *debugger.Debugger, spec string) {
	start, end, err := parseRange(spec)
	if err != nil {
		fmt.Println(err)
		return
	}
	values, populated := dbg.ReadRange(start, end)
	for i := 0; i < len(values); i += 16 {
		fmt.Printf("%04X ", start+uint16(i))
		for j := i; j < i+16 && j < len(values); j++ {
			if populated[j] {
				fmt.Printf(" %02X", values[j])
			} else {
				fmt.Print(" --")
			}
		}
		fmt.Println()
	}
}

// parseRange accepts a named region or "<start>:<end>" where either
// endpoint may be omitted (start defaults to 0, end to 0xFFFF, the top of
// the address space).
func parseRange(spec string) (uint16, uint16, error) {
	if r, ok := bus.NamedRegion(spec); ok {
		return r.Start, r.End, nil
	}
	head, tail, found := strings.Cut(spec, ":")
	if !found {
		addr, err := parseAddr(spec)
		if err != nil {
			return 0, 0, err
		}
		return addr, addr, nil
	}
	start, end := uint16(0), uint16(0xFFFF)
	if head != "" {
		v, err := parseAddr(head)
		if err != nil {
			return 0, 0, err
		}
		start = v
	}
	if tail != "" {
		v, err := parseAddr(tail)
		if err != nil {
			return 0, 0, err
		}
		end = v
	}
	if end < start {
		return 0, 0, fmt.Errorf("range end 0x%04X is below start 0x%04X", end, start)
	}
	return start, end, nil
}

// parseAddr accepts decimal or 0x-prefixed hex.
func parseAddr(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("bad address %q: expected decimal or 0x hex", s)
	}
	return uint16(v), nil
}

func cmdBreak(dbg *debugger.Debugger, args []string) {
	switch {
	case len(args) == 1:
		addr, err := parseAddr(args[0])
		if err != nil {
			fmt.Println(err)
			return
		}
		id := dbg.SetBreakpoint(debugger.KindAddress, addr, "", debugger.OpEQ, 0)
		fmt.Printf("breakpoint #%d armed\n", id)

	case len(args) == 2 && (args[0] == "read" || args[0] == "write"):
		addr, err := parseAddr(args[1])
		if err != nil {
			fmt.Println(err)
			return
		}
		kind, op := debugger.KindMemoryRead, debugger.OpRead
		if args[0] == "write" {
			kind, op = debugger.KindMemoryWrite, debugger.OpWrite
		}
		id := dbg.SetBreakpoint(kind, addr, "", op, 0)
		fmt.Printf("breakpoint #%d armed\n", id)

	case len(args) == 4 && args[0] == "mem":
		addr, err := parseAddr(args[1])
		if err != nil {
			fmt.Println(err)
			return
		}
		op, value, err := parseCondition(args[2], args[3])
		if err != nil {
			fmt.Println(err)
			return
		}
		id := dbg.SetBreakpoint(debugger.KindMemoryValue, addr, "", op, value)
		fmt.Printf("breakpoint #%d armed\n", id)

	case len(args) == 4 && args[0] == "reg":
		op, value, err := parseCondition(args[2], args[3])
		if err != nil {
			fmt.Println(err)
			return
		}
		id := dbg.SetBreakpoint(debugger.KindRegisterValue, 0, strings.ToUpper(args[1]), op, value)
		fmt.Printf("breakpoint #%d armed\n", id)

	default:
		fmt.Println("break: bad syntax (try help)")
	}
}

func parseCondition(opText, valueText string) (debugger.Op, uint16, error) {
	op, err := debugger.ParseOp(opText)
	if err != nil {
		return 0, 0, err
	}
	value, err := parseAddr(valueText)
	if err != nil {
		return 0, 0, err
	}
	return op, value, nil
}

func cmdUnbreak(dbg *debugger.Debugger, args []string) {
	if len(args) == 0 {
		bps := dbg.Breakpoints()
		if len(bps) == 0 {
			fmt.Println("no breakpoints armed")
			return
		}
		for _, bp := range bps {
			fmt.Println(bp)
		}
		return
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Println("unbreak: expected a breakpoint id")
		return
	}
	if dbg.ClearBreakpoint(id) {
		fmt.Printf("breakpoint #%d cleared\n", id)
	} else {
		fmt.Printf("no breakpoint #%d\n", id)
	}
}
