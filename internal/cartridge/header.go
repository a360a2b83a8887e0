// Package cartridge decodes the cartridge header and implements MBC address
// translation.
package cartridge

import (
	"fmt"

	"github.com/olympia-emu/olympia/internal/coreerr"
)

// ControllerKind is one of the memory bank controller families the core
// understands.
type ControllerKind uint8

const (
	RomOnly ControllerKind = iota
	MBC1
	MBC2
	MBC3
	MBC5
)

func (k ControllerKind) String() string {
	switch k {
	case RomOnly:
		return "ROM ONLY"
	case MBC1:
		return "MBC1"
	case MBC2:
		return "MBC2"
	case MBC3:
		return "MBC3"
	case MBC5:
		return "MBC5"
	default:
		return "UNKNOWN"
	}
}

// GBMode reflects the CGB-support byte at 0x0143.
type GBMode uint8

const (
	ModeDMGOnly GBMode = iota
	ModeSupportsCGB
	ModeOnlyCGB
)

// controllerEntry is one row of the 0x0147 lookup table.
type controllerEntry struct {
	kind                                    ControllerKind
	hasRAM, hasBattery, hasTimer, hasRumble bool
}

// controllerTable is the published 0x0147 matrix. Unlisted bytes (MMM01,
// POCKET CAMERA, Bandai TAMA5, Hudson HuC1/HuC3 and friends) are out of
// scope for this core and decode as UnknownControllerKind.
var controllerTable = map[uint8]controllerEntry{
	0x00: {RomOnly, false, false, false, false},
	0x01: {MBC1, false, false, false, false},
	0x02: {MBC1, true, false, false, false},
	0x03: {MBC1, true, true, false, false},
	0x05: {MBC2, false, false, false, false},
	0x06: {MBC2, false, true, false, false},
	0x08: {RomOnly, true, false, false, false},
	0x09: {RomOnly, true, true, false, false},
	0x0F: {MBC3, false, true, true, false},
	0x10: {MBC3, true, true, true, false},
	0x11: {MBC3, false, false, false, false},
	0x12: {MBC3, true, false, false, false},
	0x13: {MBC3, true, true, false, false},
	0x19: {MBC5, false, false, false, false},
	0x1A: {MBC5, true, false, false, false},
	0x1B: {MBC5, true, true, false, false},
	0x1C: {MBC5, false, false, false, true},
	0x1D: {MBC5, true, false, false, true},
	0x1E: {MBC5, true, true, false, true},
}

// romBanksFromByte decodes byte 0x0148 into a bank count: (32 << n) KiB of
// ROM at 16 KiB per bank, i.e. 2 banks up to 512. Anything else fails as
// UnsupportedRomSize.
func romBanksFromByte(b uint8) (int, error) {
	if b > 8 {
		return 0, coreerr.UnsupportedRomSize{Byte: b}
	}
	return ((32 * 1024) << b) / 0x4000, nil
}

var ramSizeTable = map[uint8]int{
	0: 0,
	1: 2 * 1024,
	2: 8 * 1024,
	3: 32 * 1024,
	4: 128 * 1024,
	5: 64 * 1024,
}

// Descriptor is the immutable Cartridge Descriptor produced by parsing the
// header.
type Descriptor struct {
	Title  string
	Kind   ControllerKind
	GBMode GBMode
	SGB    bool

	HasRAM, HasBattery, HasTimer, HasRumble bool

	ROMBanks int // 2..512, power of two
	RAMBanks int // 0..16
	RAMBytes int

	HeaderChecksumOK bool
	GlobalChecksumOK bool

	HeaderChecksum uint8
	GlobalChecksum uint16
}

// ParseHeader decodes the 0x0100-0x014F header region of rom. rom must be at
// least 0x150 bytes long.
func ParseHeader(rom []byte) (Descriptor, error) {
	if len(rom) < 0x150 {
		return Descriptor{}, coreerr.CartridgeTooShort{Length: len(rom)}
	}
	h := rom[0x100:0x150]

	var d Descriptor
	switch h[0x43] {
	case 0x80:
		d.GBMode = ModeSupportsCGB
	case 0xC0:
		d.GBMode = ModeOnlyCGB
	default:
		d.GBMode = ModeDMGOnly
	}

	titleEnd := 0x44
	if d.GBMode != ModeDMGOnly {
		titleEnd = 0x43
	}
	d.Title = trimTitle(h[0x34:titleEnd])
	d.SGB = h[0x46] == 0x03

	entry, ok := controllerTable[h[0x47]]
	if !ok {
		return Descriptor{}, coreerr.UnknownControllerKind{Byte: h[0x47]}
	}
	d.Kind = entry.kind
	d.HasRAM, d.HasBattery, d.HasTimer, d.HasRumble = entry.hasRAM, entry.hasBattery, entry.hasTimer, entry.hasRumble

	banks, err := romBanksFromByte(h[0x48])
	if err != nil {
		return Descriptor{}, err
	}
	d.ROMBanks = banks

	d.RAMBytes = ramSizeTable[h[0x49]]
	if d.RAMBytes > 0 {
		d.RAMBanks = d.RAMBytes / 0x2000
		if d.RAMBanks == 0 {
			d.RAMBanks = 1
		}
	}
	// MBC2 has 512x4 bits of built-in RAM that never appears in the 0x0149
	// byte; HasRAM keeps the controller table's value (false for 0x05/0x06).
	if d.Kind == MBC2 {
		d.RAMBytes = 512
		d.RAMBanks = 1
	}

	d.HeaderChecksum = h[0x4D]
	d.GlobalChecksum = uint16(h[0x4E])<<8 | uint16(h[0x4F])
	d.HeaderChecksumOK = headerChecksum(rom) == d.HeaderChecksum
	d.GlobalChecksumOK = globalChecksum(rom) == d.GlobalChecksum

	return d, nil
}

// headerChecksum implements the standard algorithm: sum bytes
// 0x0134..0x014C, each subtracted from the running total minus one.
func headerChecksum(rom []byte) uint8 {
	var sum uint8
	for addr := 0x0134; addr <= 0x014C; addr++ {
		sum = sum - rom[addr] - 1
	}
	return sum
}

// globalChecksum sums every byte in rom except the two checksum bytes
// themselves, matching the cartridge-header definition of the global
// checksum (16-bit sum of the whole ROM excluding 0x014E-0x014F).
func globalChecksum(rom []byte) uint16 {
	var sum uint16
	for i, b := range rom {
		if i == 0x014E || i == 0x014F {
			continue
		}
		sum += uint16(b)
	}
	return sum
}

func trimTitle(raw []byte) string {
	end := len(raw)
	for i, b := range raw {
		if b == 0x00 {
			end = i
			break
		}
	}
	out := make([]byte, 0, end)
	for _, b := range raw[:end] {
		if b >= 0x20 && b < 0x7F {
			out = append(out, b)
		}
	}
	return string(out)
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s [%s] ROM=%dKiB RAM=%dKiB", d.Title, d.Kind, d.ROMBanks*16, d.RAMBytes/1024)
}
