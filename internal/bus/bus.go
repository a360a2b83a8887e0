// Package bus routes every 16-bit guest address to the region that backs
// it: cartridge ROM/RAM through the MBC translator, VRAM, WRAM (with its
// echo alias), OAM, I/O, HRAM and the interrupt registers. Frontends and
// the CPU access memory exclusively through Read/Write here; nothing hands
// out the underlying buffers.
package bus

import (
	"github.com/olympia-emu/olympia/internal/cartridge"
	"github.com/olympia-emu/olympia/internal/interrupts"
	"github.com/olympia-emu/olympia/internal/ram"
	"github.com/olympia-emu/olympia/internal/xlog"
)

// Bus owns the cartridge (and through it the MBC state), the plain RAM
// regions, and the interrupt controller's register file.
type Bus struct {
	cart *cartridge.Cartridge
	irq  *interrupts.Controller

	vram *ram.Ram // 0x8000-0x9FFF
	wram *ram.Ram // 0xC000-0xDFFF, echoed at 0xE000-0xFDFF
	oam  *ram.Ram // 0xFE00-0xFE9F
	io   *ram.Ram // 0xFF00-0xFF7F, minus the interrupt flag register
	hram *ram.Ram // 0xFF80-0xFFFE

	events Observers
}

// New wires a Bus around the given cartridge and interrupt controller.
func New(cart *cartridge.Cartridge, irq *interrupts.Controller) *Bus {
	return &Bus{
		cart: cart,
		irq:  irq,
		vram: ram.NewRAM(0x2000),
		wram: ram.NewRAM(0x2000),
		oam:  ram.NewRAM(0xA0),
		io:   ram.NewRAM(0x80),
		hram: ram.NewRAM(0x7F),
	}
}

// Cartridge exposes the loaded cartridge for header queries and save-RAM
// persistence. Memory access still goes through Read/Write.
func (b *Bus) Cartridge() *cartridge.Cartridge { return b.cart }

// Interrupts exposes the interrupt controller shared with the CPU.
func (b *Bus) Interrupts() *interrupts.Controller { return b.irq }

// Events is the observer registry fed by Read/Write and by the CPU.
func (b *Bus) Events() *Observers { return &b.events }

// Read returns the byte at addr, emitting a MemoryRead event. Unmapped or
// disabled addresses read as 0xFF.
func (b *Bus) Read(addr uint16) uint8 {
	v := b.Peek(addr)
	if b.events.Active() {
		b.events.Emit(Event{Kind: EventMemoryRead, Addr: addr, NewValue: uint16(v)})
	}
	return v
}

// Peek is Read without the observer event, for debugger and disassembler
// use: inspecting memory must not trip read breakpoints or perturb the
// event stream.
func (b *Bus) Peek(addr uint16) uint8 {
	switch {
	case addr < 0x8000:
		return b.cart.MBC.Read(addr)
	case addr < 0xA000:
		return b.vram.Read(addr - 0x8000)
	case addr < 0xC000:
		return b.cart.MBC.Read(addr)
	case addr < 0xE000:
		return b.wram.Read(addr - 0xC000)
	case addr < 0xFE00:
		// echo RAM mirrors 0xC000-0xDDFF
		return b.wram.Read(addr - 0xE000)
	case addr < 0xFEA0:
		return b.oam.Read(addr - 0xFE00)
	case addr < 0xFF00:
		// unusable range
		return 0xFF
	case addr == interrupts.FlagRegister:
		return b.irq.Read(addr)
	case addr < 0xFF80:
		return b.io.Read(addr - 0xFF00)
	case addr < 0xFFFF:
		return b.hram.Read(addr - 0xFF80)
	default:
		return b.irq.Read(addr)
	}
}

// Write stores value at addr, emitting a MemoryWrite event carrying the old
// and new byte. Writes to ROM ranges are forwarded to the MBC's control
// windows rather than the image; writes to unmapped ranges are discarded.
func (b *Bus) Write(addr uint16, value uint8) {
	var old uint8
	if b.events.Active() {
		old = b.Peek(addr)
	}

	switch {
	case addr < 0x8000:
		b.cart.MBC.Write(addr, value)
	case addr < 0xA000:
		b.vram.Write(addr-0x8000, value)
	case addr < 0xC000:
		if !b.cart.MBC.RAMEnabled() && b.cart.MBC.Kind() != cartridge.RomOnly {
			xlog.Debugf("bus: write 0x%02X to 0x%04X with cartridge RAM disabled", value, addr)
		}
		b.cart.MBC.Write(addr, value)
	case addr < 0xE000:
		b.wram.Write(addr-0xC000, value)
	case addr < 0xFE00:
		b.wram.Write(addr-0xE000, value)
	case addr < 0xFEA0:
		b.oam.Write(addr-0xFE00, value)
	case addr < 0xFF00:
		xlog.Debugf("bus: write 0x%02X to unusable address 0x%04X discarded", value, addr)
		return
	case addr == interrupts.FlagRegister:
		b.irq.Write(addr, value)
	case addr < 0xFF80:
		b.io.Write(addr-0xFF00, value)
	case addr < 0xFFFF:
		b.hram.Write(addr-0xFF80, value)
	default:
		b.irq.Write(addr, value)
	}

	if b.events.Active() {
		b.events.Emit(Event{Kind: EventMemoryWrite, Addr: addr, OldValue: uint16(old), NewValue: uint16(b.Peek(addr))})
	}
}

// Populated reports whether addr is backed by real storage right now.
// Cartridge RAM on a cart with none, the disabled cartram window, and the
// unusable gap all read 0xFF and render as "--" in debug output.
func (b *Bus) Populated(addr uint16) bool {
	switch {
	case addr >= 0xA000 && addr < 0xC000:
		// a ROM-only cart's RAM has no enable gate
		return b.cart.MBC.HasRAM() && (b.cart.MBC.RAMEnabled() || b.cart.MBC.Kind() == cartridge.RomOnly)
	case addr >= 0xFEA0 && addr < 0xFF00:
		return false
	default:
		return true
	}
}
