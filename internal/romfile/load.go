// Package romfile loads a cartridge image from disk, transparently
// unpacking a 7-Zip archive when the file isn't a bare ROM image. This is
// the loader layer sitting outside the core proper; the core package never
// touches the filesystem.
package romfile

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/bodgit/sevenzip"
)

// Load reads path and returns the raw ROM bytes, unpacking a .7z archive if
// the file starts with the 7-Zip signature. A plain ROM image is returned
// unmodified.
func Load(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("romfile: %w", err)
	}
	if !is7z(raw) {
		return raw, nil
	}
	return extractFirstROM(path)
}

var sevenZipSignature = []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}

func is7z(data []byte) bool {
	return bytes.HasPrefix(data, sevenZipSignature)
}

// extractFirstROM opens a 7z archive and returns the contents of its first
// regular file entry, the convention used by most Game Boy ROM archives
// (one ROM per archive).
func extractFirstROM(path string) ([]byte, error) {
	r, err := sevenzip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("romfile: opening 7z archive: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("romfile: reading %s from archive: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("romfile: reading %s from archive: %w", f.Name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("romfile: archive %s contains no files", path)
}
