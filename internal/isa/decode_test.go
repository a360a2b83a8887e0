package isa

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sliceReader builds a ByteReader over a byte slice, reading 0x00 past the
// end.
func sliceReader(bytes ...uint8) ByteReader {
	return func(addr uint16) uint8 {
		if int(addr) < len(bytes) {
			return bytes[addr]
		}
		return 0x00
	}
}

func TestDecodeBasics(t *testing.T) {
	tests := []struct {
		name     string
		bytes    []uint8
		mnemonic Mnemonic
		size     uint8
		base     uint8
		alt      uint8
	}{
		{"NOP", []uint8{0x00}, NOP, 1, 4, 4},
		{"LD BC,d16", []uint8{0x01, 0x34, 0x12}, LD, 3, 12, 12},
		{"LD (BC),A", []uint8{0x02}, LD, 1, 8, 8},
		{"INC B", []uint8{0x04}, INC, 1, 4, 4},
		{"INC (HL)", []uint8{0x34}, INC, 1, 12, 12},
		{"LD B,C", []uint8{0x41}, LD, 1, 4, 4},
		{"LD B,(HL)", []uint8{0x46}, LD, 1, 8, 8},
		{"HALT", []uint8{0x76}, HALT, 1, 4, 4},
		{"ADD A,B", []uint8{0x80}, ADD, 1, 4, 4},
		{"ADD A,(HL)", []uint8{0x86}, ADD, 1, 8, 8},
		{"ADD A,d8", []uint8{0xC6, 0x05}, ADD, 2, 8, 8},
		{"JR r8", []uint8{0x18, 0x05}, JR, 2, 12, 12},
		{"JR NZ,r8", []uint8{0x20, 0x05}, JR, 2, 8, 12},
		{"JP a16", []uint8{0xC3, 0x00, 0x80}, JP, 3, 16, 16},
		{"JP Z,a16", []uint8{0xCA, 0x00, 0x80}, JP, 3, 12, 16},
		{"CALL a16", []uint8{0xCD, 0x00, 0x80}, CALL, 3, 24, 24},
		{"CALL NC,a16", []uint8{0xD4, 0x00, 0x80}, CALL, 3, 12, 24},
		{"RET", []uint8{0xC9}, RET, 1, 16, 16},
		{"RET C", []uint8{0xD8}, RET, 1, 8, 20},
		{"RETI", []uint8{0xD9}, RETI, 1, 16, 16},
		{"PUSH AF", []uint8{0xF5}, PUSH, 1, 16, 16},
		{"POP AF", []uint8{0xF1}, POP, 1, 12, 12},
		{"RST 0x18", []uint8{0xDF}, RST, 1, 16, 16},
		{"LDH (a8),A", []uint8{0xE0, 0x80}, LDH, 2, 12, 12},
		{"LD (a16),SP", []uint8{0x08, 0x34, 0x12}, LD, 3, 20, 20},
		{"ADD SP,r8", []uint8{0xE8, 0xFE}, ADD_SP, 2, 16, 16},
		{"LD HL,SP+r8", []uint8{0xF8, 0x02}, LD_HL_SP_R8, 2, 12, 12},
		{"JP (HL)", []uint8{0xE9}, JP, 1, 4, 4},
		{"EI", []uint8{0xFB}, EI, 1, 4, 4},
		{"STOP", []uint8{0x10, 0x00}, STOP, 2, 4, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := Decode(sliceReader(tt.bytes...), 0)
			require.NoError(t, err)
			assert.Equal(t, tt.mnemonic, in.Mnemonic)
			assert.Equal(t, tt.size, in.Size)
			assert.Equal(t, tt.base, in.BaseCycles)
			assert.Equal(t, tt.alt, in.AltCycles)
		})
	}
}

func TestDecodeImmediates(t *testing.T) {
	in, err := Decode(sliceReader(0x01, 0x34, 0x12), 0) // LD BC,0x1234
	require.NoError(t, err)
	assert.Equal(t, OperandRegister16, in.Op(0).Kind)
	assert.Equal(t, RegBC, in.Op(0).Reg16)
	assert.Equal(t, uint16(0x1234), in.Op(1).Imm)

	in, err = Decode(sliceReader(0xEA, 0xCD, 0xAB), 0) // LD (0xABCD),A
	require.NoError(t, err)
	assert.Equal(t, OperandMemoryIndirect, in.Op(0).Kind)
	assert.Equal(t, uint16(0xABCD), in.Op(0).Imm)
	assert.Equal(t, RegA, in.Op(1).Reg8)
}

func TestDecodeIllegalOpcodes(t *testing.T) {
	illegal := []uint8{0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD}
	for _, op := range illegal {
		_, err := Decode(sliceReader(op), 0)
		require.Error(t, err, "opcode 0x%02X", op)
		var unknown *UnknownOpcodeError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, op, unknown.Byte)
	}
}

func TestDecodeExtendedPage(t *testing.T) {
	// BIT 3,D
	in, err := Decode(sliceReader(0xCB, 0x5A), 0)
	require.NoError(t, err)
	assert.True(t, in.Extended)
	assert.Equal(t, BIT, in.Mnemonic)
	assert.Equal(t, uint16(3), in.Op(0).Imm)
	assert.Equal(t, RegD, in.Op(1).Reg8)
	assert.Equal(t, uint8(2), in.Size)
	assert.Equal(t, uint8(8), in.BaseCycles)

	// SWAP (HL)
	in, err = Decode(sliceReader(0xCB, 0x36), 0)
	require.NoError(t, err)
	assert.Equal(t, SWAP, in.Mnemonic)
	assert.Equal(t, OperandMemoryIndirect, in.Op(0).Kind)
	assert.Equal(t, uint8(16), in.BaseCycles)

	// every extended opcode decodes
	for ext := 0; ext < 256; ext++ {
		in, err := Decode(sliceReader(0xCB, uint8(ext)), 0)
		require.NoError(t, err, "CB 0x%02X", ext)
		assert.Equal(t, uint8(2), in.Size, "CB 0x%02X", ext)
	}
}

func TestDecodeIsPure(t *testing.T) {
	reads := 0
	read := func(addr uint16) uint8 {
		reads++
		return 0x00 // NOP
	}
	_, err := Decode(read, 0x1234)
	require.NoError(t, err)
	assert.Equal(t, 1, reads, "a 1-byte opcode needs exactly one fetch")
}

// TestDecodeTotalAndDistinct walks the whole primary and extended tables:
// every non-illegal opcode must decode, and no two opcodes may produce the
// same mnemonic/operand shape. Distinctness is what lets the decoder tables
// run in reverse as an assembler, so it stands in for the
// disassemble/re-assemble round trip.
func TestDecodeTotalAndDistinct(t *testing.T) {
	seen := map[string]uint8{}
	count := 0
	for op := 0; op < 256; op++ {
		if op == 0xCB {
			continue
		}
		in, err := Decode(sliceReader(uint8(op), 0x34, 0x12), 0)
		if illegalOpcodes[uint8(op)] {
			require.Error(t, err, "opcode 0x%02X", op)
			continue
		}
		require.NoError(t, err, "opcode 0x%02X", op)
		require.NotZero(t, in.Size, "opcode 0x%02X", op)
		require.NotZero(t, in.BaseCycles, "opcode 0x%02X", op)

		key := signature(in)
		if prev, dup := seen[key]; dup {
			t.Fatalf("opcodes 0x%02X and 0x%02X decode identically: %s", prev, op, key)
		}
		seen[key] = uint8(op)
		count++
	}
	assert.Equal(t, 244, count, "256 entries minus the 0xCB prefix and the 11 illegal opcodes")

	for ext := 0; ext < 256; ext++ {
		in, err := Decode(sliceReader(0xCB, uint8(ext)), 0)
		require.NoError(t, err)
		key := signature(in)
		if prev, dup := seen[key]; dup {
			t.Fatalf("opcodes 0x%02X and CB 0x%02X decode identically: %s", prev, ext, key)
		}
		seen[key] = uint8(ext)
	}
}

// signature renders an instruction's decoded shape, ignoring immediate
// values so the identity comes from the encoding alone.
func signature(in Instruction) string {
	s := in.Mnemonic.String()
	if in.Extended {
		s = "CB " + s
	}
	for i := 0; i < in.NumOperands; i++ {
		op := in.Op(i)
		switch op.Kind {
		case OperandNone:
		case OperandRegister8:
			s += fmt.Sprintf(" r8:%s", op.Reg8)
		case OperandRegister16:
			s += fmt.Sprintf(" r16:%s", op.Reg16)
		case OperandCondition:
			s += fmt.Sprintf(" cc:%s", op.Cond)
		case OperandMemoryIndirect:
			s += fmt.Sprintf(" mem:%d", op.Mem)
		case OperandImmediateU8:
			// BIT/RES/SET and RST embed the immediate in the opcode itself
			if in.Mnemonic == BIT || in.Mnemonic == RES || in.Mnemonic == SET || in.Mnemonic == RST {
				s += fmt.Sprintf(" n:%d", op.Imm)
			} else {
				s += " d8"
			}
		case OperandImmediateI8:
			s += " r8imm"
		case OperandImmediateU16:
			s += " d16"
		}
	}
	return s
}
