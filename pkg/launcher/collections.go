package launcher

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pocketdeck/pocketdeck/pkg/config"
	oss "github.com/pocketdeck/pocketdeck/pkg/os"
)

// Collection is a user-curated list of ROMs across systems.
type Collection struct {
	Name    string
	Entries []Entry
}

// LoadCollections reads every .txt under the collections dir. Entries
// whose files no longer exist are dropped without comment.
func LoadCollections(paths config.Paths) []Collection {
	matches, err := filepath.Glob(filepath.Join(paths.Collections, "*.txt"))
	if err != nil {
		return nil
	}
	var out []Collection
	for _, file := range matches {
		c := Collection{Name: strings.TrimSuffix(filepath.Base(file), ".txt")}
		c.Entries = loadCollection(paths, file)
		out = append(out, c)
	}
	return out
}

func loadCollection(paths config.Paths, file string) []Entry {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil
	}
	var entries []Entry
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(strings.TrimRight(line, "\r"))
		if line == "" {
			continue
		}
		abs := paths.SDAbsolute(line)
		if !oss.Exists(abs) {
			continue
		}
		dir := filepath.Dir(abs)
		aliases := LoadAliases(pakResDir(paths, dir), dir)
		entries = append(entries, Entry{
			Path:  abs,
			Name:  filepath.Base(abs),
			Alias: aliases[filepath.Base(abs)],
			Emu:   emuTag(dir),
		})
	}
	return entries
}
