package launcher

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// aliasFile is the per-directory display-name table.
const aliasFile = "map.txt"

// LoadAliases merges display-name tables: the pak-bundled one loads
// first, the user's overrides it. Either side may be missing.
func LoadAliases(pakDir, userDir string) map[string]string {
	out := map[string]string{}
	for _, dir := range []string{pakDir, userDir} {
		if dir == "" {
			continue
		}
		readAliasFile(filepath.Join(dir, aliasFile), out)
	}
	return out
}

func readAliasFile(path string, into map[string]string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		name, alias, ok := strings.Cut(line, "\t")
		if !ok || name == "" {
			continue
		}
		into[name] = alias
	}
}

// Hidden reports whether an alias hides the entry from the browser.
func Hidden(alias string) bool {
	return strings.HasPrefix(alias, ".")
}

// DisplayName resolves what the browser shows for a file: its alias
// when one exists, the stem otherwise.
func DisplayName(aliases map[string]string, filename string) string {
	if alias, ok := aliases[filename]; ok && alias != "" {
		return alias
	}
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}
