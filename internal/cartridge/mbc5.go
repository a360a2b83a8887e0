package cartridge

// mbc5Read/Write implement the MBC5 controller: a full 9-bit ROM bank
// number (unlike MBC1/2/3, bank 0 is a valid, unremapped selection for the
// switchable window) and a 4-bit RAM bank. On rumble cartridges the top bit
// instead drives the motor line and is masked out of the RAM bank number.
func (m *MBC) mbc5Read(addr uint16) uint8 {
	switch {
	case addr < 0x4000:
		return m.romByte(0, addr)
	case addr < 0x8000:
		bank := wrapBank(m.st.romBank, m.romBankCount())
		return m.romByte(bank, addr-0x4000)
	case addr >= 0xA000 && addr < 0xC000:
		if !m.st.ramEnable || len(m.ram) == 0 {
			return 0xFF
		}
		off := int(m.mbc5RAMBank())*0x2000 + int(addr-0xA000)
		return m.ram[off%len(m.ram)]
	default:
		return 0xFF
	}
}

func (m *MBC) mbc5Write(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		m.st.ramEnable = value&0x0F == 0x0A
	case addr < 0x3000:
		m.st.romBank = m.st.romBank&0x100 | uint16(value)
	case addr < 0x4000:
		m.st.romBank = m.st.romBank&0xFF | uint16(value&0x01)<<8
	case addr < 0x6000:
		m.st.ramBank = value & 0x0F
	case addr >= 0xA000 && addr < 0xC000:
		if m.st.ramEnable && len(m.ram) > 0 {
			off := int(m.mbc5RAMBank())*0x2000 + int(addr-0xA000)
			m.ram[off%len(m.ram)] = value
		}
	}
}

// mbc5RAMBank masks off the rumble-motor bit (bit 3) on cartridges that
// have a rumble motor, since that bit never selects a RAM bank on those
// carts.
func (m *MBC) mbc5RAMBank() uint8 {
	if m.desc.HasRumble {
		return m.st.ramBank & 0x07
	}
	return m.st.ramBank & 0x0F
}
