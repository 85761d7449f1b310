// Package mem persists battery-backed SRAM and RTC data through an
// injectable memory provider, so cores and tests plug in the same way.
package mem

import (
	"errors"
	"io/fs"
	"os"

	"github.com/pocketdeck/pocketdeck/pkg/libretro"
)

// Provider exposes a core's memory regions. Data must return a live
// view: reads copy the file into it, writes copy it to the file.
type Provider struct {
	Size func(t libretro.MemoryType) uint
	Data func(t libretro.MemoryType) []byte
}

// Result classifies the outcome of a persistence operation.
type Result int

const (
	OK Result = iota
	NoSupport
	FileNotFound
	FileError
	NullPointer
	SizeMismatch
)

func (r Result) String() string {
	switch r {
	case OK:
		return "ok"
	case NoSupport:
		return "memory type not supported by core"
	case FileNotFound:
		return "file not found"
	case FileError:
		return "file i/o error"
	case NullPointer:
		return "core returned no memory"
	case SizeMismatch:
		return "file larger than core memory"
	}
	return "unknown result"
}

// Failed reports whether the result should reach the user. A missing
// file is a valid state, not a failure.
func (r Result) Failed() bool {
	return r != OK && r != NoSupport && r != FileNotFound
}

// Read loads path into the provider's memory region. A file shorter
// than the region is a partial read and still OK; cores tolerate
// shorter-than-allocated SRAM. The region is never touched unless the
// file was read successfully.
func Read(p Provider, t libretro.MemoryType, path string) Result {
	size := p.Size(t)
	if size == 0 {
		return NoSupport
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return FileNotFound
	}
	if err != nil {
		return FileError
	}
	if uint(len(data)) > size {
		return SizeMismatch
	}

	region := p.Data(t)
	if region == nil {
		return NullPointer
	}
	copy(region, data)
	return OK
}

// Write stores the provider's memory region at path, creating the
// file if necessary.
func Write(p Provider, t libretro.MemoryType, path string) Result {
	size := p.Size(t)
	if size == 0 {
		return NoSupport
	}
	region := p.Data(t)
	if region == nil {
		return NullPointer
	}
	if err := os.WriteFile(path, region[:size], 0644); err != nil {
		return FileError
	}
	return OK
}
