// Package disasm formats Decoded Instructions as text and walks a ROM image
// emitting a labeled listing.
package disasm

import (
	"fmt"
	"strings"

	"github.com/olympia-emu/olympia/internal/isa"
)

// Line is one line of disassembly output.
type Line struct {
	Address uint16
	Bytes   []uint8
	Text    string
	// Err is non-nil when the byte at Address could not be decoded; Text is
	// then a "DB 0xXX" filler and Bytes holds the single undecoded byte.
	Err error
}

// Format renders a single decoded instruction. When verbose is true the
// 4-hex address and up to three hex opcode bytes are prepended, matching
// a verbose listing mode.
func Format(addr uint16, in isa.Instruction, raw []byte, verbose bool) string {
	var b strings.Builder
	if verbose {
		fmt.Fprintf(&b, "%04X  ", addr)
		for i := 0; i < 3; i++ {
			if i < len(raw) {
				fmt.Fprintf(&b, "%02X ", raw[i])
			} else {
				b.WriteString("   ")
			}
		}
		b.WriteString(" ")
	}

	b.WriteString(in.Mnemonic.String())
	operandText := formatOperands(addr, in)
	if operandText != "" {
		b.WriteString(" ")
		b.WriteString(operandText)
	}
	return b.String()
}

func formatOperands(addr uint16, in isa.Instruction) string {
	switch in.NumOperands {
	case 0:
		return ""
	case 1:
		return formatOperand(addr, in, in.Op(0))
	default:
		a := formatOperand(addr, in, in.Op(0))
		b := formatOperand(addr, in, in.Op(1))
		if a == "" {
			return b
		}
		if b == "" {
			return a
		}
		return a + "," + b
	}
}

func formatOperand(addr uint16, in isa.Instruction, op isa.Operand) string {
	switch op.Kind {
	case isa.OperandNone:
		return ""
	case isa.OperandRegister8:
		return op.Reg8.String()
	case isa.OperandRegister16:
		return op.Reg16.String()
	case isa.OperandImmediateU8:
		if in.Mnemonic == isa.RST {
			return fmt.Sprintf("0x%02X", op.Imm)
		}
		if in.Mnemonic == isa.BIT || in.Mnemonic == isa.RES || in.Mnemonic == isa.SET {
			return fmt.Sprintf("%d", op.Imm)
		}
		return fmt.Sprintf("0x%02X", op.Imm)
	case isa.OperandImmediateI8:
		if in.Mnemonic == isa.JR {
			target := addr + uint16(in.Size) + uint16(int16(int8(op.Imm)))
			return fmt.Sprintf("0x%04X", target)
		}
		if in.Mnemonic == isa.LD_HL_SP_R8 {
			return fmt.Sprintf("SP%+d", int8(op.Imm))
		}
		return fmt.Sprintf("%d", int8(op.Imm))
	case isa.OperandImmediateU16:
		return fmt.Sprintf("0x%04X", op.Imm)
	case isa.OperandMemoryIndirect:
		switch op.Mem {
		case isa.MemBC:
			return "(BC)"
		case isa.MemDE:
			return "(DE)"
		case isa.MemHL:
			return "(HL)"
		case isa.MemHLInc:
			return "(HL+)"
		case isa.MemHLDec:
			return "(HL-)"
		case isa.MemC:
			return "(C)"
		case isa.MemImm8:
			return fmt.Sprintf("(0x%02X)", op.Imm)
		case isa.MemImm16:
			return fmt.Sprintf("(0x%04X)", op.Imm)
		}
		return "(?)"
	case isa.OperandCondition:
		if op.Cond == isa.CondNone {
			return ""
		}
		return op.Cond.String()
	}
	return ""
}

// Walk disassembles consecutive instructions from start up to (and
// excluding) end, reading bytes via read. It restarts decoding after every
// undecodable byte so bulk disassembly never aborts, emitting a "DB 0xXX"
// line for the offending byte.
func Walk(read isa.ByteReader, start, end uint16, verbose bool) []Line {
	var lines []Line
	addr := start
	for addr < end {
		in, err := isa.Decode(read, addr)
		if err != nil {
			b := read(addr)
			lines = append(lines, Line{
				Address: addr,
				Bytes:   []uint8{b},
				Text:    fmt.Sprintf("DB 0x%02X", b),
				Err:     err,
			})
			addr++
			continue
		}
		raw := rawBytes(read, addr, in)
		lines = append(lines, Line{
			Address: addr,
			Bytes:   raw,
			Text:    Format(addr, in, raw, verbose),
		})
		if uint16(in.Size) == 0 {
			addr++
		} else {
			addr += uint16(in.Size)
		}
	}
	return lines
}

func rawBytes(read isa.ByteReader, addr uint16, in isa.Instruction) []byte {
	raw := make([]byte, in.Size)
	for i := uint8(0); i < in.Size; i++ {
		raw[i] = read(addr + uint16(i))
	}
	return raw
}
