package launcher

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/pocketdeck/pocketdeck/pkg/config"
)

func testPaths(t *testing.T) config.Paths {
	t.Helper()
	sd := t.TempDir()
	p := config.Paths{
		SDCard:      sd,
		Roms:        filepath.Join(sd, "Roms"),
		Paks:        filepath.Join(sd, "Paks"),
		Collections: filepath.Join(sd, "Collections"),
		Userdata:    filepath.Join(sd, "Userdata"),
	}
	for _, dir := range []string{p.Roms, p.Paks, p.Collections, p.Userdata} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
	}
	return p
}

func mkdirAll(t *testing.T, path string) string {
	t.Helper()
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// Multi-disc workflow: the M3U represents the game in recents, and
// the list round-trips through disk unchanged.
func TestRecentMultiDiscRoundTrip(t *testing.T) {
	paths := testPaths(t)
	ps1 := mkdirAll(t, filepath.Join(paths.Roms, "PlayStation (PS1)"))
	mkdirAll(t, filepath.Join(paths.Paks, "PS1.pak"))

	var m3uBody string
	for i := 1; i <= 3; i++ {
		name := "FF7 (Disc " + strconv.Itoa(i) + ").bin"
		writeFile(t, filepath.Join(ps1, name), "d")
		m3uBody += name + "\n"
	}
	m3u := writeFile(t, filepath.Join(ps1, "FF7.m3u"), m3uBody)
	writeFile(t, filepath.Join(ps1, "map.txt"),
		"FF7 (Disc 1).bin\tFinal Fantasy VII - Disc 1\n")

	discs := parseM3ULines(m3u)
	if len(discs) != 3 {
		t.Fatalf("discs = %v", discs)
	}
	if discs[0] != filepath.Join(ps1, "FF7 (Disc 1).bin") {
		t.Errorf("disc 0 = %q", discs[0])
	}

	rec := AddRecent(paths, nil, discs[0], "Final Fantasy VII - Disc 1")
	if len(rec) != 1 {
		t.Fatalf("recents = %v", rec)
	}
	if rec[0].Path != paths.SDRelative(m3u) {
		t.Errorf("recent dedups to %q, want the m3u", rec[0].Path)
	}

	if err := SaveRecents(paths, rec); err != nil {
		t.Fatal(err)
	}
	got := LoadRecents(paths)
	if len(got) != 1 || got[0].Path != rec[0].Path || got[0].Alias != "Final Fantasy VII - Disc 1" {
		t.Errorf("round-trip = %+v", got)
	}
	if !got[0].Available {
		t.Error("pak installed but entry unavailable")
	}
}

func TestAddRecentMovesToFrontAndCaps(t *testing.T) {
	paths := testPaths(t)
	gb := mkdirAll(t, filepath.Join(paths.Roms, "Game Boy (GB)"))

	var rec []Recent
	for i := 0; i < MaxRecents+4; i++ {
		rom := writeFile(t, filepath.Join(gb, "g"+strconv.Itoa(i)+".gb"), "r")
		rec = AddRecent(paths, rec, rom, "")
	}
	if len(rec) != MaxRecents {
		t.Fatalf("len = %d", len(rec))
	}

	// relaunching an existing entry moves it up without duplicating
	old := paths.SDAbsolute(rec[5].Path)
	rec = AddRecent(paths, rec, old, "")
	if len(rec) != MaxRecents {
		t.Fatalf("len after relaunch = %d", len(rec))
	}
	if rec[0].Path != paths.SDRelative(old) {
		t.Errorf("front = %q", rec[0].Path)
	}
}

func TestRecentUnavailableWithoutPak(t *testing.T) {
	paths := testPaths(t)
	gb := mkdirAll(t, filepath.Join(paths.Roms, "Game Boy (GB)"))
	rom := writeFile(t, filepath.Join(gb, "mario.gb"), "r")

	rec := AddRecent(paths, nil, rom, "")
	if err := SaveRecents(paths, rec); err != nil {
		t.Fatal(err)
	}
	got := LoadRecents(paths)
	if len(got) != 1 || got[0].Available {
		t.Errorf("entry should be unavailable without the pak: %+v", got)
	}
}

func TestM3UForMalformedTreatsSingleDisc(t *testing.T) {
	paths := testPaths(t)
	ps1 := mkdirAll(t, filepath.Join(paths.Roms, "PlayStation (PS1)"))
	rom := writeFile(t, filepath.Join(ps1, "game.bin"), "r")
	// an m3u that lists nothing covers nothing
	writeFile(t, filepath.Join(ps1, "other.m3u"), "\n\n")

	if m3u := M3UFor(rom); m3u != "" {
		t.Errorf("M3UFor = %q, want none", m3u)
	}
}
