// Package launcher is the file browser: library scanning, recents,
// collections, aliases and the sentinel handshake with the player.
package launcher

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/pocketdeck/pocketdeck/pkg/config"
	oss "github.com/pocketdeck/pocketdeck/pkg/os"
)

// MaxRecents bounds recent.txt; older entries fall off the end.
const MaxRecents = 24

// Recent is one line of recent.txt.
type Recent struct {
	Path  string // SD-relative
	Alias string
	// emulator pak still installed
	Available bool
}

// LoadRecents reads recent.txt, newest first. Availability is checked
// against the installed paks.
func LoadRecents(paths config.Paths) []Recent {
	f, err := os.Open(paths.RecentFile())
	if err != nil {
		return nil
	}
	defer f.Close()

	var out []Recent
	sc := bufio.NewScanner(f)
	for sc.Scan() && len(out) < MaxRecents {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		r := Recent{Path: line}
		if p, alias, ok := strings.Cut(line, "\t"); ok {
			r.Path, r.Alias = p, alias
		}
		r.Available = pakInstalled(paths, r.Path)
		out = append(out, r)
	}
	return out
}

// SaveRecents writes the list back, newest first, capped.
func SaveRecents(paths config.Paths, recents []Recent) error {
	if err := oss.CheckCreateDir(filepath.Dir(paths.RecentFile())); err != nil {
		return err
	}
	if len(recents) > MaxRecents {
		recents = recents[:MaxRecents]
	}
	var b strings.Builder
	for _, r := range recents {
		b.WriteString(r.Path)
		if r.Alias != "" {
			b.WriteByte('\t')
			b.WriteString(r.Alias)
		}
		b.WriteByte('\n')
	}
	return oss.WriteFile(paths.RecentFile(), []byte(b.String()), 0644)
}

// AddRecent moves or inserts an entry at the front. Multi-disc games
// dedup on their M3U so each disc doesn't occupy a line.
func AddRecent(paths config.Paths, recents []Recent, absPath, alias string) []Recent {
	if m3u := M3UFor(absPath); m3u != "" {
		absPath = m3u
	}
	rel := paths.SDRelative(absPath)

	out := make([]Recent, 0, len(recents)+1)
	out = append(out, Recent{Path: rel, Alias: alias, Available: true})
	for _, r := range recents {
		if r.Path != rel {
			out = append(out, r)
		}
	}
	if len(out) > MaxRecents {
		out = out[:MaxRecents]
	}
	return out
}

// M3UFor probes the ROM's directory for an M3U listing it. A
// malformed M3U lists no discs and the game stays single-disc.
func M3UFor(romPath string) string {
	dir := filepath.Dir(romPath)
	matches, err := filepath.Glob(filepath.Join(dir, "*.m3u"))
	if err != nil {
		return ""
	}
	for _, m3u := range matches {
		for _, disc := range parseM3ULines(m3u) {
			if disc == romPath {
				return m3u
			}
		}
	}
	return ""
}

// parseM3ULines resolves the disc paths of an M3U without requiring
// the files to exist yet.
func parseM3ULines(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	dir := filepath.Dir(path)
	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(strings.TrimRight(line, "\r"))
		if line == "" {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(dir, line)
		}
		out = append(out, line)
	}
	return out
}

// pakInstalled reports whether the emulator pak for an SD-relative
// ROM path is still present.
func pakInstalled(paths config.Paths, rel string) bool {
	tag := emuTag(filepath.Dir(paths.SDAbsolute(rel)))
	if tag == "" {
		return false
	}
	return oss.Exists(filepath.Join(paths.Paks, tag+".pak"))
}
