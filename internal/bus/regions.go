package bus

import "strings"

// Range is a closed interval of guest addresses.
type Range struct {
	Start, End uint16
}

// Contains reports whether addr lies inside the range.
func (r Range) Contains(addr uint16) bool {
	return addr >= r.Start && addr <= r.End
}

// Len is the number of addresses the range spans.
func (r Range) Len() int { return int(r.End) - int(r.Start) + 1 }

// namedRegions maps the debugger-visible region names onto their address
// ranges. The echo window is deliberately absent: it is an alias of sysram,
// not a region of its own.
var namedRegions = map[string]Range{
	"header":    {0x0100, 0x014F},
	"staticrom": {0x0000, 0x3FFF},
	"switchrom": {0x4000, 0x7FFF},
	"vram":      {0x8000, 0x9FFF},
	"cartram":   {0xA000, 0xBFFF},
	"sysram":    {0xC000, 0xDFFF},
	"oam":       {0xFE00, 0xFE9F},
	"io":        {0xFF00, 0xFF7F},
	"cpuram":    {0xFF80, 0xFFFE},
	"ie":        {0xFFFF, 0xFFFF},
}

// RegionNames lists every name NamedRegion accepts.
func RegionNames() []string {
	names := make([]string, 0, len(namedRegions))
	for name := range namedRegions {
		names = append(names, name)
	}
	return names
}

// NamedRegion looks up a region by its debugger name, case-insensitively.
func NamedRegion(name string) (Range, bool) {
	r, ok := namedRegions[strings.ToLower(name)]
	return r, ok
}
