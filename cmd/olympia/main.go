// Command olympia is the CLI surface over the emulator core: cartridge
// inspection, bulk disassembly, and an interactive debugger.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/olympia-emu/olympia/internal/bus"
	"github.com/olympia-emu/olympia/internal/cartridge"
	"github.com/olympia-emu/olympia/internal/cpu"
	"github.com/olympia-emu/olympia/internal/debugger"
	"github.com/olympia-emu/olympia/internal/debugger/stream"
	"github.com/olympia-emu/olympia/internal/disasm"
	"github.com/olympia-emu/olympia/internal/interrupts"
	"github.com/olympia-emu/olympia/internal/romfile"
	"github.com/olympia-emu/olympia/internal/xlog"
)

const (
	exitBadArgs  = 1
	exitROMError = 2
)

func main() {
	app := cli.NewApp()
	app.Name = "olympia"
	app.Usage = "Game Boy (LR35902) emulator core tools"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "debug-log",
			Usage: "enable debug-level diagnostics",
		},
	}
	app.Before = func(c *cli.Context) error {
		if c.Bool("debug-log") {
			xlog.SetLevel(logrus.DebugLevel)
		}
		return nil
	}
	app.Commands = []cli.Command{
		{
			Name:      "rom-info",
			Usage:     "print the parsed cartridge header",
			ArgsUsage: "<rom>",
			Action:    romInfo,
		},
		{
			Name:      "disassemble",
			Usage:     "disassemble the ROM image",
			ArgsUsage: "[-v] <rom>",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "v",
					Usage: "verbose listing: prepend address and opcode bytes",
				},
			},
			Action: disassemble,
		},
		{
			Name:      "debug",
			Usage:     "interactive debugger prompt",
			ArgsUsage: "<rom>",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "listen",
					Usage: "also serve the event stream over a websocket at this address (e.g. :8089)",
				},
				cli.IntFlag{
					Name:  "budget",
					Usage: "instruction budget for the continue command",
					Value: 10_000_000,
				},
			},
			Action: debug,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitBadArgs)
	}
}

// loadCartridge reads and parses the ROM named by the command's single
// positional argument, mapping failures onto the documented exit codes.
func loadCartridge(c *cli.Context) (*cartridge.Cartridge, []byte, error) {
	if c.NArg() != 1 {
		return nil, nil, cli.NewExitError(fmt.Sprintf("usage: olympia %s %s", c.Command.Name, c.Command.ArgsUsage), exitBadArgs)
	}
	rom, err := romfile.Load(c.Args().First())
	if err != nil {
		return nil, nil, cli.NewExitError(err.Error(), exitROMError)
	}
	cart, err := cartridge.New(rom)
	if err != nil {
		return nil, nil, cli.NewExitError(err.Error(), exitROMError)
	}
	return cart, rom, nil
}

func romInfo(c *cli.Context) error {
	cart, _, err := loadCartridge(c)
	if err != nil {
		return err
	}
	d := cart.Descriptor

	fmt.Printf("Title:            %s\n", d.Title)
	fmt.Printf("Controller:       %s\n", d.Kind)
	fmt.Printf("ROM banks:        %d (%d KiB)\n", d.ROMBanks, d.ROMBanks*16)
	fmt.Printf("RAM banks:        %d (%d KiB)\n", d.RAMBanks, d.RAMBytes/1024)
	fmt.Printf("Features:         %s\n", featureList(d))
	fmt.Printf("CGB support:      %s\n", gbModeName(d.GBMode))
	fmt.Printf("SGB support:      %v\n", d.SGB)
	fmt.Printf("Header checksum:  0x%02X (%s)\n", d.HeaderChecksum, okString(d.HeaderChecksumOK))
	fmt.Printf("Global checksum:  0x%04X (%s)\n", d.GlobalChecksum, okString(d.GlobalChecksumOK))
	fmt.Printf("Digest:           %016x\n", cart.Digest())
	return nil
}

func featureList(d cartridge.Descriptor) string {
	var out string
	add := func(on bool, name string) {
		if !on {
			return
		}
		if out != "" {
			out += ", "
		}
		out += name
	}
	add(d.HasRAM, "RAM")
	add(d.HasBattery, "battery")
	add(d.HasTimer, "timer")
	add(d.HasRumble, "rumble")
	if out == "" {
		return "none"
	}
	return out
}

func gbModeName(m cartridge.GBMode) string {
	switch m {
	case cartridge.ModeSupportsCGB:
		return "DMG+CGB"
	case cartridge.ModeOnlyCGB:
		return "CGB only"
	default:
		return "DMG only"
	}
}

func okString(ok bool) string {
	if ok {
		return "ok"
	}
	return "MISMATCH"
}

func disassemble(c *cli.Context) error {
	_, rom, err := loadCartridge(c)
	if err != nil {
		return err
	}

	// Walk the directly-addressable window: the fixed bank plus bank 1 as
	// mapped at power-on. Larger images need the debugger's banked view.
	end := len(rom)
	if end > 0x8000 {
		end = 0x8000
	}
	read := func(addr uint16) uint8 {
		return rom[addr]
	}
	for _, line := range disasm.Walk(read, 0, uint16(end), c.Bool("v")) {
		if c.Bool("v") {
			fmt.Println(line.Text)
		} else {
			fmt.Printf("%04X  %s\n", line.Address, line.Text)
		}
	}
	return nil
}

func debug(c *cli.Context) error {
	cart, _, err := loadCartridge(c)
	if err != nil {
		return err
	}

	irq := interrupts.NewController()
	b := bus.New(cart, irq)
	core := cpu.New(b)
	dbg := debugger.New(core, b)

	if addr := c.String("listen"); addr != "" {
		srv := stream.New(b.Events())
		go func() {
			if err := srv.ListenAndServe(addr); err != nil {
				xlog.Errorf("stream: %v", err)
			}
		}()
		fmt.Printf("event stream listening on %s\n", addr)
	}

	return runPrompt(dbg, c.Int("budget"))
}
