package launcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pocketdeck/pocketdeck/pkg/config"
	"github.com/pocketdeck/pocketdeck/pkg/launcher/thumb"
	"github.com/pocketdeck/pocketdeck/pkg/logger"
	oss "github.com/pocketdeck/pocketdeck/pkg/os"
)

// newTestBrowser builds the navigation half without an SDL window.
func newTestBrowser(t *testing.T, paths config.Paths) *Browser {
	t.Helper()
	cfg := &config.Launcher{Paths: paths}
	cfg.Window.Width, cfg.Window.Height = 640, 480
	l := New(cfg, logger.Default())
	t.Cleanup(l.Close)
	b := &Browser{
		cfg:   cfg,
		l:     l,
		log:   logger.Default(),
		res:   thumb.NewResIndex(),
		cache: thumb.NewCache(),
	}
	b.stack = []view{b.rootView()}
	return b
}

func TestRootViewMixesPseudoRows(t *testing.T) {
	paths := testPaths(t)
	gb := mkdirAll(t, filepath.Join(paths.Roms, "Game Boy (GB)"))
	mkdirAll(t, filepath.Join(paths.Paks, "GB.pak"))
	rom := writeFile(t, filepath.Join(gb, "game.gb"), "d")

	mkdirAll(t, filepath.Dir(paths.RecentFile()))
	writeFile(t, paths.RecentFile(), paths.SDRelative(rom)+"\n")
	writeFile(t, filepath.Join(paths.Collections, "Favorites.txt"),
		paths.SDRelative(rom)+"\n")

	b := newTestBrowser(t, paths)
	rows := b.top().rows
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0].kind != rowRecents {
		t.Errorf("rows[0].kind = %v, want recents", rows[0].kind)
	}
	if rows[1].kind != rowCollection || rows[1].Name != "Favorites" {
		t.Errorf("rows[1] = %+v, want Favorites collection", rows[1])
	}
	if rows[2].kind != rowEntry || !rows[2].Dir {
		t.Errorf("rows[2] = %+v, want the ROM directory", rows[2])
	}
}

func TestRecentsViewMarksMissingPak(t *testing.T) {
	paths := testPaths(t)
	gb := mkdirAll(t, filepath.Join(paths.Roms, "Game Boy (GB)"))
	rom := writeFile(t, filepath.Join(gb, "game.gb"), "d")
	mkdirAll(t, filepath.Dir(paths.RecentFile()))
	writeFile(t, paths.RecentFile(), paths.SDRelative(rom)+"\n")

	b := newTestBrowser(t, paths)
	v := b.recentsView()
	if len(v.rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(v.rows))
	}
	if v.rows[0].Emu != "" {
		t.Errorf("Emu = %q, want empty for a missing pak", v.rows[0].Emu)
	}
}

func TestRestoreFocusWalksIntoDirectory(t *testing.T) {
	paths := testPaths(t)
	gb := mkdirAll(t, filepath.Join(paths.Roms, "Game Boy (GB)"))
	mkdirAll(t, filepath.Join(paths.Paks, "GB.pak"))
	writeFile(t, filepath.Join(gb, "alpha.gb"), "d")
	rom := writeFile(t, filepath.Join(gb, "beta.gb"), "d")
	if err := oss.WriteFile(config.LastPath, []byte(rom), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Remove(config.LastPath) })

	b := newTestBrowser(t, paths)
	b.restoreFocus()
	if len(b.stack) != 2 {
		t.Fatalf("stack depth = %d, want 2", len(b.stack))
	}
	v := b.top()
	if got := v.rows[v.sel].Path; got != rom {
		t.Errorf("focused %q, want %q", got, rom)
	}
}

func TestMoveClampsToRows(t *testing.T) {
	paths := testPaths(t)
	gb := mkdirAll(t, filepath.Join(paths.Roms, "Game Boy (GB)"))
	mkdirAll(t, filepath.Join(paths.Paks, "GB.pak"))
	writeFile(t, filepath.Join(gb, "a.gb"), "d")

	b := newTestBrowser(t, paths)
	b.confirm() // enter the only directory
	b.move(-5)
	if b.top().sel != 0 {
		t.Errorf("sel = %d after underflow, want 0", b.top().sel)
	}
	b.move(100)
	if got, want := b.top().sel, len(b.top().rows)-1; got != want {
		t.Errorf("sel = %d after overflow, want %d", got, want)
	}
}
