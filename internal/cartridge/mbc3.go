package cartridge

import "github.com/olympia-emu/olympia/internal/coreerr"

// rtcRegisterBase is the value written to 0x4000-0x5FFF that selects the
// first RTC register (seconds); 0x08-0x0C select seconds/minutes/hours/day
// low/day high+flags respectively.
const rtcRegisterBase = 0x08

func (m *MBC) mbc3Read(addr uint16) uint8 {
	switch {
	case addr < 0x4000:
		return m.romByte(0, addr)
	case addr < 0x8000:
		bank := wrapBank(uint16(m.st.romBank), m.romBankCount())
		return m.romByte(bank, addr-0x4000)
	case addr >= 0xA000 && addr < 0xC000:
		if !m.st.ramEnable {
			return 0xFF
		}
		if m.st.ramBank >= rtcRegisterBase {
			idx := m.st.ramBank - rtcRegisterBase
			if idx < 5 {
				return m.st.rtc[idx]
			}
			return 0xFF
		}
		if len(m.ram) == 0 {
			return 0xFF
		}
		off := int(m.st.ramBank)*0x2000 + int(addr-0xA000)
		return m.ram[off%len(m.ram)]
	default:
		return 0xFF
	}
}

func (m *MBC) mbc3Write(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		m.st.ramEnable = value&0x0F == 0x0A
	case addr < 0x4000:
		bank := value & 0x7F
		if bank == 0 {
			bank = 1
		}
		m.st.romBank = uint16(bank)
	case addr < 0x6000:
		m.st.ramBank = value
	case addr < 0x8000:
		if m.st.rtcLatchIn == 0 && value == 1 {
			m.st.rtc = m.st.rtcLive
		}
		m.st.rtcLatchIn = value
	case addr >= 0xA000 && addr < 0xC000:
		if !m.st.ramEnable {
			return
		}
		if m.st.ramBank >= rtcRegisterBase {
			idx := m.st.ramBank - rtcRegisterBase
			if idx < 5 {
				m.st.rtcLive[idx] = value
			}
			return
		}
		if len(m.ram) == 0 {
			return
		}
		off := int(m.st.ramBank)*0x2000 + int(addr-0xA000)
		m.ram[off%len(m.ram)] = value
	}
}

// AdvanceRTC would tick the MBC3 real-time clock forward by the given
// number of seconds. Faithful advancement (day-counter carry, halt bit
// interaction) is deliberately stubbed rather than approximated; the
// latched register file above still round-trips reads and writes.
func (m *MBC) AdvanceRTC(seconds uint64) error {
	if m.desc.Kind != MBC3 || !m.desc.HasTimer {
		return coreerr.NotImplemented{Feature: "RTC advancement on a non-timer cartridge"}
	}
	return coreerr.NotImplemented{Feature: "MBC3 RTC advancement"}
}
