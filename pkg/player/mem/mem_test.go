package mem

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/pocketdeck/pocketdeck/pkg/libretro"
)

func provider(sram []byte) Provider {
	return Provider{
		Size: func(t libretro.MemoryType) uint {
			if t == libretro.MemorySaveRAM {
				return uint(len(sram))
			}
			return 0
		},
		Data: func(t libretro.MemoryType) []byte {
			if t == libretro.MemorySaveRAM {
				return sram
			}
			return nil
		},
	}
}

func TestReadMissingFile(t *testing.T) {
	sram := []byte{1, 2, 3, 4}
	orig := bytes.Clone(sram)
	path := filepath.Join(t.TempDir(), "game.srm")

	if got := Read(provider(sram), libretro.MemorySaveRAM, path); got != FileNotFound {
		t.Errorf("result = %v, want FileNotFound", got)
	}
	if !bytes.Equal(sram, orig) {
		t.Errorf("core memory mutated on missing file: %v", sram)
	}
}

func TestReadNoSupport(t *testing.T) {
	if got := Read(provider(nil), libretro.MemoryRTC, "whatever"); got != NoSupport {
		t.Errorf("result = %v, want NoSupport", got)
	}
}

func TestReadNullPointer(t *testing.T) {
	p := Provider{
		Size: func(libretro.MemoryType) uint { return 8 },
		Data: func(libretro.MemoryType) []byte { return nil },
	}
	path := filepath.Join(t.TempDir(), "game.srm")
	if err := os.WriteFile(path, []byte{9, 9}, 0644); err != nil {
		t.Fatal(err)
	}
	if got := Read(p, libretro.MemorySaveRAM, path); got != NullPointer {
		t.Errorf("result = %v, want NullPointer", got)
	}
}

func TestReadPartialIsOK(t *testing.T) {
	sram := []byte{0, 0, 0, 0}
	path := filepath.Join(t.TempDir(), "game.srm")
	if err := os.WriteFile(path, []byte{7, 8}, 0644); err != nil {
		t.Fatal(err)
	}
	if got := Read(provider(sram), libretro.MemorySaveRAM, path); got != OK {
		t.Fatalf("result = %v, want OK", got)
	}
	want := []byte{7, 8, 0, 0}
	if !bytes.Equal(sram, want) {
		t.Errorf("sram = %v, want %v", sram, want)
	}
}

func TestReadOversizedFile(t *testing.T) {
	sram := []byte{0, 0}
	orig := bytes.Clone(sram)
	path := filepath.Join(t.TempDir(), "game.srm")
	if err := os.WriteFile(path, []byte{1, 2, 3, 4}, 0644); err != nil {
		t.Fatal(err)
	}
	if got := Read(provider(sram), libretro.MemorySaveRAM, path); got != SizeMismatch {
		t.Errorf("result = %v, want SizeMismatch", got)
	}
	if !bytes.Equal(sram, orig) {
		t.Errorf("core memory mutated: %v", sram)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	sram := []byte{5, 6, 7, 8}
	path := filepath.Join(t.TempDir(), "game.srm")

	if got := Write(provider(sram), libretro.MemorySaveRAM, path); got != OK {
		t.Fatalf("write = %v, want OK", got)
	}

	restored := make([]byte, 4)
	if got := Read(provider(restored), libretro.MemorySaveRAM, path); got != OK {
		t.Fatalf("read = %v, want OK", got)
	}
	if !bytes.Equal(restored, sram) {
		t.Errorf("restored = %v, want %v", restored, sram)
	}
}

func TestWriteNoSupportAndNull(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.rtc")
	if got := Write(provider(nil), libretro.MemoryRTC, path); got != NoSupport {
		t.Errorf("write = %v, want NoSupport", got)
	}
	p := Provider{
		Size: func(libretro.MemoryType) uint { return 8 },
		Data: func(libretro.MemoryType) []byte { return nil },
	}
	if got := Write(p, libretro.MemorySaveRAM, path); got != NullPointer {
		t.Errorf("write = %v, want NullPointer", got)
	}
}

func TestResultStrings(t *testing.T) {
	for _, r := range []Result{OK, NoSupport, FileNotFound, FileError, NullPointer, SizeMismatch} {
		if r.String() == "unknown result" {
			t.Errorf("result %d has no phrase", r)
		}
	}
	if OK.Failed() || NoSupport.Failed() || FileNotFound.Failed() {
		t.Error("benign results marked failed")
	}
	if !FileError.Failed() || !NullPointer.Failed() || !SizeMismatch.Failed() {
		t.Error("failures not marked failed")
	}
}
