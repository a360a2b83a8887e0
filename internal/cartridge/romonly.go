package cartridge

// romOnlyRead/Write implement the RomOnly controller: the whole 0x0000-0x7FFF
// window reads directly from the image, writes are ignored, and an optional
// flat RAM window is indexed by the low 13 bits.
func (m *MBC) romOnlyRead(addr uint16) uint8 {
	switch {
	case addr < 0x8000:
		if int(addr) < len(m.rom) {
			return m.rom[addr]
		}
		return 0xFF
	case addr >= 0xA000 && addr < 0xC000:
		if len(m.ram) == 0 {
			return 0xFF
		}
		return m.ram[int(addr-0xA000)%len(m.ram)]
	default:
		return 0xFF
	}
}

func (m *MBC) romOnlyWrite(addr uint16, value uint8) {
	if addr >= 0xA000 && addr < 0xC000 && len(m.ram) > 0 {
		m.ram[int(addr-0xA000)%len(m.ram)] = value
	}
	// writes to 0x0000-0x7FFF are ignored: there is no bank register.
}
