package launcher

import (
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pocketdeck/pocketdeck/pkg/config"
	"github.com/pocketdeck/pocketdeck/pkg/logger"
)

// Entry is one row of the browser: a ROM or a directory.
type Entry struct {
	Path  string // absolute
	Name  string // file or directory name
	Alias string
	Emu   string // system tag resolved from the directory
	Dir   bool
}

// Display is what the browser renders and sorts on.
func (e Entry) Display() string {
	if e.Alias != "" {
		return e.Alias
	}
	if e.Dir {
		return stripTag(e.Name)
	}
	return strings.TrimSuffix(e.Name, filepath.Ext(e.Name))
}

// Library keeps the scanned ROM tree and rescans it when the
// filesystem changes underneath.
type Library struct {
	conf  config.Library
	paths config.Paths
	log   *logger.Logger

	supported map[string]struct{}

	mu                sync.Mutex
	entries           map[string][]Entry // dir -> rows
	isScanning        bool
	isScanningDelayed bool

	lastScanDuration time.Duration
	done             chan struct{}
}

func NewLibrary(conf config.Library, paths config.Paths, log *logger.Logger) *Library {
	lib := &Library{
		conf:      conf,
		paths:     paths,
		log:       log,
		supported: toSet(conf.Supported),
		entries:   map[string][]Entry{},
		done:      make(chan struct{}),
	}
	if conf.WatchMode {
		go lib.watch()
	}
	return lib
}

// List returns the sorted, alias-resolved rows of one directory,
// scanning it on first access.
func (lib *Library) List(dir string) []Entry {
	lib.mu.Lock()
	if rows, ok := lib.entries[dir]; ok {
		lib.mu.Unlock()
		return rows
	}
	lib.mu.Unlock()

	rows := lib.scanDir(dir)
	lib.mu.Lock()
	lib.entries[dir] = rows
	lib.mu.Unlock()
	return rows
}

// Scan drops every cached directory so the next List rescans. Runs
// are throttled: a scan requested while one is active runs once more
// after it.
func (lib *Library) Scan() {
	lib.mu.Lock()
	if lib.isScanning {
		lib.isScanningDelayed = true
		lib.mu.Unlock()
		lib.log.Debug().Msg("library scan delayed")
		return
	}
	lib.isScanning = true
	lib.mu.Unlock()

	start := time.Now()
	fresh := map[string][]Entry{}
	lib.mu.Lock()
	dirs := make([]string, 0, len(lib.entries))
	for dir := range lib.entries {
		dirs = append(dirs, dir)
	}
	lib.mu.Unlock()
	for _, dir := range dirs {
		fresh[dir] = lib.scanDir(dir)
	}

	lib.mu.Lock()
	lib.entries = fresh
	lib.lastScanDuration = time.Since(start)
	lib.isScanning = false
	rerun := lib.isScanningDelayed
	lib.isScanningDelayed = false
	lib.mu.Unlock()

	if rerun {
		go lib.Scan()
	}
	lib.log.Debug().Dur("took", lib.lastScanDuration).Msg("library scan completed")
}

func (lib *Library) scanDir(dir string) []Entry {
	aliases := LoadAliases(pakResDir(lib.paths, dir), dir)
	tag := emuTag(dir)

	var rows []Entry
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path == dir {
			return nil
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			rows = append(rows, Entry{Path: path, Name: name, Alias: aliases[name], Dir: true})
			return fs.SkipDir // one level at a time
		}
		if !lib.extSupported(name) || lib.ignored(name) {
			return nil
		}
		alias := aliases[name]
		if Hidden(alias) {
			return nil
		}
		rows = append(rows, Entry{Path: path, Name: name, Alias: alias, Emu: tag})
		return nil
	})
	if err != nil {
		lib.log.Error().Err(err).Str("dir", dir).Msg("library scan failed")
	}

	rows = collapseMultiDisc(rows)
	SortEntries(rows)
	return rows
}

// collapseMultiDisc hides individual disc images when an M3U in the
// same directory covers them.
func collapseMultiDisc(rows []Entry) []Entry {
	covered := map[string]struct{}{}
	for _, r := range rows {
		if strings.EqualFold(filepath.Ext(r.Name), ".m3u") {
			for _, disc := range parseM3ULines(r.Path) {
				covered[disc] = struct{}{}
			}
		}
	}
	if len(covered) == 0 {
		return rows
	}
	out := rows[:0]
	for _, r := range rows {
		if _, dup := covered[r.Path]; !dup {
			out = append(out, r)
		}
	}
	return out
}

// watch rescans on filesystem changes under the ROM root.
func (lib *Library) watch() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		lib.log.Error().Err(err).Msg("library watcher failed")
		return
	}
	defer watcher.Close()

	if err := watcher.Add(lib.paths.Roms); err != nil {
		lib.log.Error().Err(err).Msg("library watch error")
		return
	}
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op == fsnotify.Create || event.Op == fsnotify.Remove || event.Op == fsnotify.Rename {
				lib.Scan()
			}
		case _, ok := <-watcher.Errors:
			if !ok {
				return
			}
		case <-lib.done:
			return
		}
	}
}

func (lib *Library) Close() { close(lib.done) }

func (lib *Library) extSupported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return false
	}
	if len(lib.supported) == 0 {
		return true
	}
	_, ok := lib.supported[ext[1:]]
	return ok
}

func (lib *Library) ignored(name string) bool {
	for _, k := range lib.conf.Ignored {
		if name == k {
			return true
		}
	}
	return false
}

// emuTag pulls the system tag out of a directory name like
// "Game Boy (GB)".
func emuTag(dir string) string {
	name := filepath.Base(dir)
	open := strings.LastIndexByte(name, '(')
	end := strings.LastIndexByte(name, ')')
	if open < 0 || end < open {
		return ""
	}
	return name[open+1 : end]
}

// stripTag removes the system tag for display.
func stripTag(name string) string {
	if open := strings.LastIndexByte(name, '('); open > 0 && strings.HasSuffix(name, ")") {
		return strings.TrimSpace(name[:open])
	}
	return name
}

// pakResDir is where the emulator pak bundles its own map.txt.
func pakResDir(paths config.Paths, romDir string) string {
	tag := emuTag(romDir)
	if tag == "" {
		return ""
	}
	return filepath.Join(paths.Paks, tag+".pak")
}

func toSet(list []string) map[string]struct{} {
	out := make(map[string]struct{}, len(list))
	for _, s := range list {
		out[strings.ToLower(strings.TrimPrefix(s, "."))] = struct{}{}
	}
	return out
}
