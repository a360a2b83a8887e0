package cartridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olympia-emu/olympia/internal/coreerr"
)

// buildROM assembles a syntactically valid image: banks 16 KiB ROM banks,
// each tagged with its bank number in its first byte, with a header carrying
// the given controller/size bytes and a correct header checksum.
func buildROM(t *testing.T, controller, romSize, ramSize uint8, banks int) []byte {
	t.Helper()
	rom := make([]byte, banks*0x4000)
	for bank := 0; bank < banks; bank++ {
		rom[bank*0x4000] = uint8(bank)
	}
	copy(rom[0x134:], "OLYMPIA")
	rom[0x147] = controller
	rom[0x148] = romSize
	rom[0x149] = ramSize

	var sum uint8
	for addr := 0x0134; addr <= 0x014C; addr++ {
		sum = sum - rom[addr] - 1
	}
	rom[0x14D] = sum
	return rom
}

func TestParseHeader(t *testing.T) {
	rom := buildROM(t, 0x03, 0x02, 0x03, 8) // MBC1+RAM+BATTERY, 128 KiB, 32 KiB RAM

	d, err := ParseHeader(rom)
	require.NoError(t, err)

	assert.Equal(t, "OLYMPIA", d.Title)
	assert.Equal(t, MBC1, d.Kind)
	assert.True(t, d.HasRAM)
	assert.True(t, d.HasBattery)
	assert.False(t, d.HasTimer)
	assert.False(t, d.HasRumble)
	assert.Equal(t, 8, d.ROMBanks)
	assert.Equal(t, 4, d.RAMBanks)
	assert.Equal(t, 32*1024, d.RAMBytes)
	assert.True(t, d.HeaderChecksumOK)
}

func TestParseHeaderControllerMatrix(t *testing.T) {
	tests := []struct {
		controller uint8
		kind       ControllerKind
		ram        bool
		battery    bool
		timer      bool
		rumble     bool
	}{
		{0x00, RomOnly, false, false, false, false},
		{0x01, MBC1, false, false, false, false},
		{0x02, MBC1, true, false, false, false},
		{0x05, MBC2, false, false, false, false},
		{0x0F, MBC3, false, true, true, false},
		{0x10, MBC3, true, true, true, false},
		{0x13, MBC3, true, true, false, false},
		{0x19, MBC5, false, false, false, false},
		{0x1E, MBC5, true, true, false, true},
	}
	for _, tt := range tests {
		rom := buildROM(t, tt.controller, 0x00, 0x02, 2)
		d, err := ParseHeader(rom)
		require.NoError(t, err, "controller 0x%02X", tt.controller)
		assert.Equal(t, tt.kind, d.Kind, "controller 0x%02X", tt.controller)
		assert.Equal(t, tt.ram, d.HasRAM, "controller 0x%02X", tt.controller)
		assert.Equal(t, tt.battery, d.HasBattery, "controller 0x%02X", tt.controller)
		assert.Equal(t, tt.timer, d.HasTimer, "controller 0x%02X", tt.controller)
		assert.Equal(t, tt.rumble, d.HasRumble, "controller 0x%02X", tt.controller)
	}
}

func TestParseHeaderUnknownController(t *testing.T) {
	rom := buildROM(t, 0xFC, 0x00, 0x00, 2) // POCKET CAMERA: unsupported

	_, err := ParseHeader(rom)
	require.Error(t, err)
	assert.ErrorAs(t, err, &coreerr.UnknownControllerKind{})
}

func TestParseHeaderUnsupportedRomSize(t *testing.T) {
	rom := buildROM(t, 0x00, 0x42, 0x00, 2)

	_, err := ParseHeader(rom)
	require.Error(t, err)
	assert.ErrorAs(t, err, &coreerr.UnsupportedRomSize{})
}

func TestParseHeaderTooShort(t *testing.T) {
	_, err := ParseHeader(make([]byte, 0x120))
	require.Error(t, err)
	assert.ErrorAs(t, err, &coreerr.CartridgeTooShort{})
}

func TestParseHeaderChecksumMismatch(t *testing.T) {
	rom := buildROM(t, 0x00, 0x00, 0x00, 2)
	rom[0x14D] ^= 0xFF

	d, err := ParseHeader(rom)
	require.NoError(t, err)
	assert.False(t, d.HeaderChecksumOK)
}

func TestRomBanksFromByte(t *testing.T) {
	tests := []struct {
		b     uint8
		banks int
	}{
		{0x00, 2},
		{0x01, 4},
		{0x07, 256},
		{0x08, 512},
	}
	for _, tt := range tests {
		banks, err := romBanksFromByte(tt.b)
		require.NoError(t, err)
		assert.Equal(t, tt.banks, banks, "size byte 0x%02X", tt.b)
	}

	for _, b := range []uint8{0x09, 0x52, 0x53, 0x54, 0xFF} {
		_, err := romBanksFromByte(b)
		require.Error(t, err, "size byte 0x%02X", b)
	}
}

func TestMBC2BuiltInRAM(t *testing.T) {
	rom := buildROM(t, 0x05, 0x00, 0x00, 2)
	d, err := ParseHeader(rom)
	require.NoError(t, err)
	assert.Equal(t, 512, d.RAMBytes)
	assert.Equal(t, 1, d.RAMBanks)
}
