package player

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/pocketdeck/pocketdeck/pkg/config"
	"github.com/pocketdeck/pocketdeck/pkg/logger"
	"github.com/pocketdeck/pocketdeck/pkg/player/input"
)

func TestNewGamePlainROM(t *testing.T) {
	dir := t.TempDir()
	rom := filepath.Join(dir, "Super Game (USA).gba")
	if err := os.WriteFile(rom, []byte("rom"), 0644); err != nil {
		t.Fatal(err)
	}
	g, err := NewGame(rom)
	if err != nil {
		t.Fatal(err)
	}
	defer g.Close()
	if g.Name != "Super Game (USA)" {
		t.Errorf("name = %q", g.Name)
	}
	if g.Path != rom || g.M3UPath != "" || g.Size != 3 {
		t.Errorf("game = %+v", g)
	}
	data, err := g.LoadData()
	if err != nil || string(data) != "rom" {
		t.Errorf("data = %q, %v", data, err)
	}
}

func TestNewGameM3UPicksFirstDisc(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"g (Disc 1).bin", "g (Disc 2).bin"} {
		if err := os.WriteFile(filepath.Join(dir, n), []byte{0}, 0644); err != nil {
			t.Fatal(err)
		}
	}
	m3u := filepath.Join(dir, "g.m3u")
	if err := os.WriteFile(m3u, []byte("g (Disc 1).bin\ng (Disc 2).bin\n"), 0644); err != nil {
		t.Fatal(err)
	}
	g, err := NewGame(m3u)
	if err != nil {
		t.Fatal(err)
	}
	defer g.Close()
	if g.Path != filepath.Join(dir, "g (Disc 1).bin") {
		t.Errorf("path = %q", g.Path)
	}
	if g.M3UPath != m3u || g.Name != "g" {
		t.Errorf("game = %+v", g)
	}
}

func TestNewGameEmptyM3U(t *testing.T) {
	m3u := filepath.Join(t.TempDir(), "empty.m3u")
	if err := os.WriteFile(m3u, []byte("\n\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewGame(m3u); err == nil {
		t.Fatal("expected error for empty m3u")
	}
}

func TestNewGameZipExtraction(t *testing.T) {
	dir := t.TempDir()
	zpath := filepath.Join(dir, "game.zip")
	f, err := os.Create(zpath)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("game.gba")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("payload")); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	g, err := NewGame(zpath)
	if err != nil {
		t.Fatal(err)
	}
	if g.TmpPath == "" {
		t.Fatal("no extraction dir")
	}
	data, err := os.ReadFile(g.Path)
	if err != nil || string(data) != "payload" {
		t.Errorf("extracted = %q, %v", data, err)
	}
	g.Close()
	if _, err := os.Stat(g.TmpPath); !os.IsNotExist(err) {
		t.Error("extraction dir not removed")
	}
}

func TestButtonByName(t *testing.T) {
	tests := []struct {
		in   string
		want input.Button
	}{
		{"A", input.BtnA},
		{" select ", input.BtnSelect},
		{"l1", input.BtnL1},
		{"bogus", input.BtnNone},
		{"", input.BtnNone},
	}
	for _, tc := range tests {
		if got := buttonByName(tc.in); got != tc.want {
			t.Errorf("buttonByName(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestBuildMappingsAppliesOverride(t *testing.T) {
	pak := config.NewPakCfg()
	pak.Bindings["A"] = "X"
	pak.Bindings["X"] = "A"
	p := &Player{cfg: &config.Player{}, pak: pak, log: logger.Default()}

	mappings := p.buildMappings()
	for _, m := range mappings {
		switch m.Name {
		case "A":
			if m.LocalID != input.BtnX {
				t.Errorf("A bound to %v", m.LocalID)
			}
		case "X":
			if m.LocalID != input.BtnA {
				t.Errorf("X bound to %v", m.LocalID)
			}
		}
	}
}
