package launcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pocketdeck/pocketdeck/pkg/config"
	"github.com/pocketdeck/pocketdeck/pkg/logger"
)

func testLibrary(t *testing.T, paths config.Paths) *Library {
	t.Helper()
	return NewLibrary(config.Library{Supported: []string{"gb", "nes", "smc", "bin", "m3u"}}, paths, logger.Default())
}

// Collection with aliases: entries resolve display names from their
// directory's map.txt, missing files drop out.
func TestCollectionAliases(t *testing.T) {
	paths := testPaths(t)
	gb := mkdirAll(t, filepath.Join(paths.Roms, "Game Boy (GB)"))
	nes := mkdirAll(t, filepath.Join(paths.Roms, "Nintendo (NES)"))
	snes := mkdirAll(t, filepath.Join(paths.Roms, "Super Nintendo (SNES)"))

	writeFile(t, filepath.Join(gb, "mario.gb"), "r")
	writeFile(t, filepath.Join(nes, "zelda.nes"), "r")
	writeFile(t, filepath.Join(snes, "metroid.smc"), "r")
	writeFile(t, filepath.Join(gb, "map.txt"), "mario.gb\tSuper Mario Land\n")
	writeFile(t, filepath.Join(nes, "map.txt"), "zelda.nes\tThe Legend of Zelda\n")

	writeFile(t, filepath.Join(paths.Collections, "Favorites.txt"),
		"/Roms/Game Boy (GB)/mario.gb\n"+
			"/Roms/Nintendo (NES)/zelda.nes\n"+
			"/Roms/Super Nintendo (SNES)/metroid.smc\n"+
			"/Roms/Game Boy (GB)/gone.gb\n")

	cols := LoadCollections(paths)
	if len(cols) != 1 || cols[0].Name != "Favorites" {
		t.Fatalf("collections = %+v", cols)
	}
	entries := cols[0].Entries
	if len(entries) != 3 {
		t.Fatalf("missing file not dropped: %+v", entries)
	}
	want := []string{"Super Mario Land", "The Legend of Zelda", "metroid"}
	for i, w := range want {
		if entries[i].Display() != w {
			t.Errorf("entry %d display = %q, want %q", i, entries[i].Display(), w)
		}
	}
	if entries[0].Emu != "GB" || entries[1].Emu != "NES" || entries[2].Emu != "SNES" {
		t.Errorf("emu tags: %+v", entries)
	}
}

func TestLibraryListHidesAndCollapses(t *testing.T) {
	paths := testPaths(t)
	ps1 := mkdirAll(t, filepath.Join(paths.Roms, "PlayStation (PS1)"))
	writeFile(t, filepath.Join(ps1, "FF7 (Disc 1).bin"), "r")
	writeFile(t, filepath.Join(ps1, "FF7 (Disc 2).bin"), "r")
	writeFile(t, filepath.Join(ps1, "FF7.m3u"), "FF7 (Disc 1).bin\nFF7 (Disc 2).bin\n")
	writeFile(t, filepath.Join(ps1, "secret.bin"), "r")
	writeFile(t, filepath.Join(ps1, "notes.doc"), "x")
	writeFile(t, filepath.Join(ps1, "map.txt"), "secret.bin\t.hidden\n")

	lib := testLibrary(t, paths)
	defer lib.Close()

	rows := lib.List(ps1)
	if len(rows) != 1 {
		t.Fatalf("rows = %+v", rows)
	}
	if rows[0].Name != "FF7.m3u" {
		t.Errorf("row = %+v", rows[0])
	}
	if rows[0].Emu != "PS1" {
		t.Errorf("emu = %q", rows[0].Emu)
	}
}

func TestLibraryScanRefreshesCachedDirs(t *testing.T) {
	paths := testPaths(t)
	gb := mkdirAll(t, filepath.Join(paths.Roms, "Game Boy (GB)"))
	writeFile(t, filepath.Join(gb, "one.gb"), "r")

	lib := testLibrary(t, paths)
	defer lib.Close()

	if rows := lib.List(gb); len(rows) != 1 {
		t.Fatalf("initial rows = %+v", rows)
	}
	writeFile(t, filepath.Join(gb, "two.gb"), "r")
	lib.Scan()
	if rows := lib.List(gb); len(rows) != 2 {
		t.Errorf("rows after rescan = %+v", rows)
	}
}

func TestEmuTag(t *testing.T) {
	tests := []struct{ dir, want string }{
		{"/mnt/SDCARD/Roms/Game Boy (GB)", "GB"},
		{"/mnt/SDCARD/Roms/PlayStation (PS1)", "PS1"},
		{"/mnt/SDCARD/Roms/NoTag", ""},
		{"/mnt/SDCARD/Roms/Weird (A) (B)", "B"},
	}
	for _, tc := range tests {
		if got := emuTag(tc.dir); got != tc.want {
			t.Errorf("emuTag(%q) = %q, want %q", tc.dir, got, tc.want)
		}
	}
}

func TestCheckAutoResume(t *testing.T) {
	paths := testPaths(t)
	gb := mkdirAll(t, filepath.Join(paths.Roms, "Game Boy (GB)"))
	rom := writeFile(t, filepath.Join(gb, "mario.gb"), "r")
	mkdirAll(t, filepath.Join(paths.Paks, "GB.pak"))

	writeFile(t, config.AutoResumePath, paths.SDRelative(rom))
	t.Cleanup(func() {
		os.Remove(config.ResumeSlotPath)
		os.Remove(config.NextCommandPath)
	})

	if !CheckAutoResume(paths, logger.Default()) {
		t.Fatal("expected auto-resume")
	}
	slot, err := os.ReadFile(config.ResumeSlotPath)
	if err != nil || string(slot) != "8" {
		t.Errorf("resume slot = %q, %v", slot, err)
	}
	next, err := os.ReadFile(config.NextCommandPath)
	if err != nil {
		t.Fatal(err)
	}
	want := LaunchCommand(paths, "GB", rom)
	if string(next) != want {
		t.Errorf("next = %q, want %q", next, want)
	}
	if _, err := os.Stat(config.AutoResumePath); !os.IsNotExist(err) {
		t.Error("marker not consumed")
	}
}

func TestCheckAutoResumeMissingROM(t *testing.T) {
	paths := testPaths(t)
	writeFile(t, config.AutoResumePath, "/Roms/Game Boy (GB)/gone.gb")
	if CheckAutoResume(paths, logger.Default()) {
		t.Fatal("missing rom should fall through to the browser")
	}
	if _, err := os.Stat(config.AutoResumePath); !os.IsNotExist(err) {
		t.Error("marker should be consumed even on failure")
	}
}
