// Package coreerr defines the core's error taxonomy. Every error type here
// holds only owned primitive fields, never a borrowed slice or a pointer
// into a caller-owned buffer, so a value can escape any frame freely.
package coreerr

import "fmt"

// UnknownControllerKind is returned by the header parser when byte 0x0147
// doesn't match any known cartridge-type entry.
type UnknownControllerKind struct{ Byte uint8 }

func (e UnknownControllerKind) Error() string {
	return fmt.Sprintf("coreerr: unknown cartridge controller kind 0x%02X", e.Byte)
}

// UnsupportedRomSize is returned by the header parser when byte 0x0148
// doesn't match a known ROM size entry.
type UnsupportedRomSize struct{ Byte uint8 }

func (e UnsupportedRomSize) Error() string {
	return fmt.Sprintf("coreerr: unsupported ROM size byte 0x%02X", e.Byte)
}

// InvalidHeaderChecksum describes a header checksum byte at 0x014D that
// doesn't match the computed checksum. ParseHeader does not return it; it
// records the outcome in Descriptor.HeaderChecksumOK.
type InvalidHeaderChecksum struct {
	Computed, Expected uint8
}

func (e InvalidHeaderChecksum) Error() string {
	return fmt.Sprintf("coreerr: invalid header checksum: computed 0x%02X, expected 0x%02X", e.Computed, e.Expected)
}

// CartridgeTooShort is returned when a ROM image is too small to contain a
// header.
type CartridgeTooShort struct{ Length int }

func (e CartridgeTooShort) Error() string {
	return fmt.Sprintf("coreerr: cartridge image too short to contain a header (%d bytes)", e.Length)
}

// AddressOutOfRange marks a bus access outside any mapped region. The Bus
// itself never returns this as a hard failure (reads yield 0xFF, writes are
// dropped); it exists so observers/debuggers can report why an access was
// discarded.
type AddressOutOfRange struct{ Addr uint16 }

func (e AddressOutOfRange) Error() string {
	return fmt.Sprintf("coreerr: address 0x%04X is out of any mapped region", e.Addr)
}

// RamDisabled marks a cartridge-RAM access while ram_enable is false.
type RamDisabled struct{ Addr uint16 }

func (e RamDisabled) Error() string {
	return fmt.Sprintf("coreerr: cartridge RAM disabled, access to 0x%04X ignored", e.Addr)
}

// BreakpointHit is returned by the debugger's step/continue loop when a
// breakpoint suspends execution.
type BreakpointHit struct{ ID int }

func (e BreakpointHit) Error() string {
	return fmt.Sprintf("coreerr: breakpoint %d hit", e.ID)
}

// HaltedWithInterruptsDisabled flags the classic Game Boy HALT deadlock: the
// CPU is halted, IME is false, and IF&IE will never change (IE is static).
// The CPU logs it as a warning; it is never returned as an error.
type HaltedWithInterruptsDisabled struct{ PC uint16 }

func (e HaltedWithInterruptsDisabled) Error() string {
	return fmt.Sprintf("coreerr: HALT at 0x%04X will never wake (interrupts disabled and none enabled)", e.PC)
}

// NotImplemented marks a feature the core deliberately stubs out rather than
// approximate: RTC advancement and STOP power-saving.
type NotImplemented struct{ Feature string }

func (e NotImplemented) Error() string {
	return fmt.Sprintf("coreerr: %s is not implemented", e.Feature)
}
