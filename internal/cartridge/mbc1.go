package cartridge

// logo is the Nintendo logo bitmap at 0x0104-0x0133, used only to detect the
// MBC1 multicart heuristic below; the core never validates it as a boot
// check.
var logo = [48]byte{
	0xCE, 0xED, 0x66, 0x66, 0xCC, 0x0D, 0x00, 0x0B,
	0x03, 0x73, 0x00, 0x83, 0x00, 0x0C, 0x00, 0x0D,
	0x00, 0x08, 0x11, 0x1F, 0x88, 0x89, 0x00, 0x0E,
	0xDC, 0xCC, 0x6E, 0xE6, 0xDD, 0xDD, 0xD9, 0x99,
	0xBB, 0xBB, 0x67, 0x63, 0x6E, 0x0E, 0xEC, 0xCC,
	0xDD, 0xDC, 0x99, 0x9F, 0xBB, 0xB9, 0x33, 0x3E,
}

// checkMultiCart applies the standard multicart heuristic: an MBC1
// multicart is a 1 MiB ROM where the logo bitmap repeats in more than one
// of the four 256-KiB quadrants used as its top-level menu banks.
func (m *MBC) checkMultiCart() {
	if len(m.rom) != 1024*1024 {
		return
	}
	matches := 0
	for bank := 0; bank < 4; bank++ {
		base := bank * 0x40000
		match := true
		for i, want := range logo {
			if m.rom[base+0x104+i] != want {
				match = false
				break
			}
		}
		if match {
			matches++
		}
	}
	if matches > 1 {
		m.st.multiCart = true
	}
}

// mbc1BankShift is the number of bits bank2 is shifted by when combined with
// bank1 to form a full ROM bank number: 4 for multicart (4+2 bits), 5 for a
// regular cartridge (5+2).
func (m *MBC) mbc1BankShift() uint8 {
	if m.st.multiCart {
		return 4
	}
	return 5
}

// mbc1EffectiveROMBank combines bank1 and bank2 into the full ROM bank
// number selected for the 0x4000-0x7FFF window: bank2 forms the upper two
// bits, bank1 the low bits. On a regular cartridge bank1 is never 0: it is
// remapped 0->1 at write time. On a multicart the remap looks at all five
// written bits before the 4-bit mask, so a write of 0x10 leaves bank1 at 0.
func (m *MBC) mbc1EffectiveROMBank() uint16 {
	return uint16(m.st.bank2)<<m.mbc1BankShift() | uint16(m.st.bank1)
}

// mbc1ZeroBankNumber is the bank mapped into 0x0000-0x3FFF: bank 0 unless
// mode 1, in which case bank2 supplies the upper bank bits there too.
func (m *MBC) mbc1ZeroBankNumber() uint16 {
	if m.st.bankingMode == 1 {
		return uint16(m.st.bank2) << m.mbc1BankShift()
	}
	return 0
}

func (m *MBC) mbc1Read(addr uint16) uint8 {
	switch {
	case addr < 0x4000:
		bank := wrapBank(m.mbc1ZeroBankNumber(), m.romBankCount())
		return m.romByte(bank, addr)
	case addr < 0x8000:
		bank := wrapBank(m.mbc1EffectiveROMBank(), m.romBankCount())
		return m.romByte(bank, addr-0x4000)
	case addr >= 0xA000 && addr < 0xC000:
		if !m.st.ramEnable || len(m.ram) == 0 {
			return 0xFF
		}
		return m.ram[m.mbc1RAMOffset(addr)]
	default:
		return 0xFF
	}
}

func (m *MBC) mbc1Write(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		m.st.ramEnable = value&0x0F == 0x0A
	case addr < 0x4000:
		bank1 := value & 0x1F
		if bank1 == 0 {
			bank1 = 1
		}
		if m.st.multiCart {
			bank1 &= 0x0F
		}
		m.st.bank1 = bank1
	case addr < 0x6000:
		m.st.bank2 = value & 0x03
	case addr < 0x8000:
		m.st.bankingMode = value & 0x01
	case addr >= 0xA000 && addr < 0xC000:
		if m.st.ramEnable && len(m.ram) > 0 {
			m.ram[m.mbc1RAMOffset(addr)] = value
		}
	}
}

// mbc1RAMOffset resolves the RAM byte a given guest address maps to: in mode
// 1, bank2 selects among up to 4 8 KiB RAM banks; in mode 0 only bank 0 is
// ever addressable.
func (m *MBC) mbc1RAMOffset(addr uint16) int {
	bank := uint16(0)
	if m.st.bankingMode == 1 {
		bank = uint16(m.st.bank2 & 0x03)
	}
	off := int(bank)*0x2000 + int(addr-0xA000)
	return off % len(m.ram)
}

func (m *MBC) romByte(bank uint16, offsetInBank uint16) uint8 {
	idx := int(bank)*0x4000 + int(offsetInBank)
	if idx < 0 || idx >= len(m.rom) {
		return 0xFF
	}
	return m.rom[idx]
}
