package cartridge

import (
	"fmt"

	"github.com/cespare/xxhash"
)

// Cartridge pairs a parsed header Descriptor with its live MBC translator.
// It is immutable except through the MBC's Read/Write.
type Cartridge struct {
	Descriptor Descriptor
	MBC        *MBC
	digest     uint64
}

// New parses rom's header and builds the matching MBC translator.
func New(rom []byte) (*Cartridge, error) {
	desc, err := ParseHeader(rom)
	if err != nil {
		return nil, err
	}
	return &Cartridge{
		Descriptor: desc,
		MBC:        NewMBC(desc, rom),
		digest:     xxhash.Sum64(rom),
	}, nil
}

// Digest is the xxhash64 of the whole ROM image, used to key save-RAM files
// and printed by the rom-info command.
func (c *Cartridge) Digest() uint64 { return c.digest }

// SaveFilename derives a stable save-RAM filename from the cartridge digest,
// keeping filenames stable across runs of the same ROM.
func (c *Cartridge) SaveFilename() string {
	return fmt.Sprintf("%016x.sav", c.digest)
}
