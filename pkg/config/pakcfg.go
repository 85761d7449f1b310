package config

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
)

// PakCfg is the per-pak option file: frontend options, core options,
// button bindings, and shortcut combos. The sectioned key=value grammar
// is fixed; the file is written by hand on some devices.
type PakCfg struct {
	Frontend  map[string]string
	Core      map[string]string
	Bindings  map[string]string
	Shortcuts map[string]string
}

func NewPakCfg() *PakCfg {
	return &PakCfg{
		Frontend:  map[string]string{},
		Core:      map[string]string{},
		Bindings:  map[string]string{},
		Shortcuts: map[string]string{},
	}
}

var pakSections = []string{"frontend", "core", "bindings", "shortcuts"}

func (c *PakCfg) section(name string) (map[string]string, bool) {
	switch name {
	case "frontend":
		return c.Frontend, true
	case "core":
		return c.Core, true
	case "bindings":
		return c.Bindings, true
	case "shortcuts":
		return c.Shortcuts, true
	}
	return nil, false
}

// LoadPakCfg parses a pak.cfg file. Any malformed line rejects the
// whole file so the caller falls back to defaults instead of running
// with a half-applied config.
func LoadPakCfg(path string) (*PakCfg, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := NewPakCfg()
	var cur map[string]string
	n := 0
	s := bufio.NewScanner(f)
	for s.Scan() {
		n++
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			name := strings.TrimSpace(line[1 : len(line)-1])
			sec, ok := cfg.section(name)
			if !ok {
				return nil, fmt.Errorf("pak.cfg:%d: unknown section %q", n, name)
			}
			cur = sec
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok || cur == nil {
			return nil, fmt.Errorf("pak.cfg:%d: stray line %q", n, line)
		}
		cur[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config with stable section and key order so diffs
// stay readable.
func (c *PakCfg) Save(path string) error {
	var b strings.Builder
	for i, name := range pakSections {
		sec, _ := c.section(name)
		if len(sec) == 0 {
			continue
		}
		if i > 0 && b.Len() > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%s]\n", name)
		keys := make([]string, 0, len(sec))
		for k := range sec {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "%s = %s\n", k, sec[k])
		}
	}
	return os.WriteFile(path, []byte(b.String()), 0644)
}
