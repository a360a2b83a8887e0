package cartridge

// state holds every MBC register the translator needs. Only the fields
// relevant to desc.Kind are ever touched: a single struct with
// per-controller fields rather than an interface per variant, since one
// translate function (Read/Write below) already matches on Kind.
type state struct {
	romBank   uint16
	ramBank   uint8
	ramEnable bool

	// MBC1
	bank1       uint8 // 5-bit low ROM bank field, 0x2000-0x3FFF
	bank2       uint8 // 2-bit secondary register, 0x4000-0x5FFF
	bankingMode uint8 // 0 = ROM mode, 1 = RAM/upper-ROM-bits mode
	multiCart   bool

	// MBC3. ramBank above doubles as the register-select written to
	// 0x4000-0x5FFF: values >= 0x08 select an RTC register.
	rtc        [5]uint8 // latched snapshot exposed to reads
	rtcLive    [5]uint8 // live-counting registers (advancement stubbed)
	rtcLatchIn uint8    // last byte written to 0x6000-0x7FFF, for edge detection
}

// MBC translates guest addresses to physical ROM/RAM offsets per the
// controller's bank-register rules. One instance is owned by the Bus.
type MBC struct {
	desc Descriptor
	rom  []byte
	ram  []byte
	st   state
}

// NewMBC builds an MBC for the given cartridge descriptor and ROM image. ram
// is sized from desc.RAMBytes (0 for carts with no RAM).
func NewMBC(desc Descriptor, rom []byte) *MBC {
	m := &MBC{
		desc: desc,
		rom:  rom,
		ram:  make([]byte, desc.RAMBytes),
	}
	m.st.romBank = 1
	m.st.bank1 = 1
	if desc.Kind == MBC1 {
		m.checkMultiCart()
	}
	return m
}

// Kind is the controller family this translator implements.
func (m *MBC) Kind() ControllerKind { return m.desc.Kind }

// ROMBank is the bank currently selected for the 0x4000-0x7FFF window.
func (m *MBC) ROMBank() uint16 {
	if m.desc.Kind == MBC1 {
		return wrapBank(m.mbc1EffectiveROMBank(), m.romBankCount())
	}
	return wrapBank(m.st.romBank, m.romBankCount())
}

// RAMBank is the cartridge-RAM bank currently selected for 0xA000-0xBFFF.
func (m *MBC) RAMBank() uint8 {
	switch m.desc.Kind {
	case MBC1:
		if m.st.bankingMode == 1 {
			return m.st.bank2 & 0x03
		}
		return 0
	case MBC5:
		return m.mbc5RAMBank()
	default:
		return m.st.ramBank
	}
}

// RAMEnabled reports whether cartridge RAM is currently gated open.
func (m *MBC) RAMEnabled() bool { return m.st.ramEnable }

// HasRAM reports whether any cartridge RAM is present at all.
func (m *MBC) HasRAM() bool { return len(m.ram) > 0 }

// Read returns the byte the guest would see at addr, which must lie in
// 0x0000-0x7FFF (ROM windows) or 0xA000-0xBFFF (cartridge RAM window).
func (m *MBC) Read(addr uint16) uint8 {
	switch m.desc.Kind {
	case MBC1:
		return m.mbc1Read(addr)
	case MBC2:
		return m.mbc2Read(addr)
	case MBC3:
		return m.mbc3Read(addr)
	case MBC5:
		return m.mbc5Read(addr)
	default:
		return m.romOnlyRead(addr)
	}
}

// Write applies a control-window write (0x0000-0x7FFF) or a cartridge-RAM
// write (0xA000-0xBFFF).
func (m *MBC) Write(addr uint16, value uint8) {
	switch m.desc.Kind {
	case MBC1:
		m.mbc1Write(addr, value)
	case MBC2:
		m.mbc2Write(addr, value)
	case MBC3:
		m.mbc3Write(addr, value)
	case MBC5:
		m.mbc5Write(addr, value)
	default:
		m.romOnlyWrite(addr, value)
	}
}

// SaveRAM returns the cartridge's external RAM contents, for a frontend
// persisting battery-backed saves.
func (m *MBC) SaveRAM() []byte { return m.ram }

// LoadRAM restores previously saved cartridge RAM.
func (m *MBC) LoadRAM(data []byte) { copy(m.ram, data) }

// romBankCount is the number of 16 KiB ROM banks actually present.
func (m *MBC) romBankCount() uint16 {
	return uint16(len(m.rom) / 0x4000)
}

// ramBankCount is the number of 8 KiB RAM banks actually present.
func (m *MBC) ramBankCount() uint8 {
	if len(m.ram) == 0 {
		return 0
	}
	n := len(m.ram) / 0x2000
	if n == 0 {
		return 1
	}
	return uint8(n)
}

// wrapBank folds a requested bank number into the range actually backed by
// the image.
func wrapBank(bank, count uint16) uint16 {
	if count == 0 {
		return 0
	}
	return bank % count
}
