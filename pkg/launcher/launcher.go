package launcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pocketdeck/pocketdeck/pkg/config"
	"github.com/pocketdeck/pocketdeck/pkg/logger"
	oss "github.com/pocketdeck/pocketdeck/pkg/os"
)

// Launcher drives browsing and the sentinel handshake with the outer
// init script: it never execs the player itself, it writes the next
// command and exits.
type Launcher struct {
	cfg  *config.Launcher
	lib  *Library
	log  *logger.Logger
	rec  []Recent
	cols []Collection
}

func New(cfg *config.Launcher, log *logger.Logger) *Launcher {
	return &Launcher{
		cfg:  cfg,
		lib:  NewLibrary(cfg.Library, cfg.Paths, log),
		log:  log,
		rec:  LoadRecents(cfg.Paths),
		cols: LoadCollections(cfg.Paths),
	}
}

func (l *Launcher) Library() *Library         { return l.lib }
func (l *Launcher) Recents() []Recent         { return l.rec }
func (l *Launcher) Collections() []Collection { return l.cols }

// LaunchCommand is the shell line the init script runs for a ROM.
func LaunchCommand(paths config.Paths, emu, romPath string) string {
	pak := filepath.Join(paths.Paks, emu+".pak", "launch.sh")
	return fmt.Sprintf("%q %q", pak, romPath)
}

// Launch records the pick and hands it to the init script.
func (l *Launcher) Launch(e Entry, alias string) error {
	if e.Emu == "" {
		return fmt.Errorf("no emulator for %q", e.Path)
	}
	l.rec = AddRecent(l.cfg.Paths, l.rec, e.Path, alias)
	if err := SaveRecents(l.cfg.Paths, l.rec); err != nil {
		l.log.Warn().Err(err).Msg("recents save")
	}
	if err := oss.WriteFile(config.LastPath, []byte(e.Path), 0644); err != nil {
		l.log.Warn().Err(err).Msg("last-selection save")
	}
	return oss.WriteFile(config.NextCommandPath,
		[]byte(LaunchCommand(l.cfg.Paths, e.Emu, e.Path)), 0644)
}

// RestoreSelection is the absolute path the browser focuses at
// startup.
func RestoreSelection() string {
	data, err := os.ReadFile(config.LastPath)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// CheckAutoResume consumes the sleep marker: when the ROM and its
// emulator still exist, queue a slot-8 resume and the launch command,
// skipping the browser entirely. Reports whether startup should stop
// here.
func CheckAutoResume(paths config.Paths, log *logger.Logger) bool {
	data, err := os.ReadFile(config.AutoResumePath)
	if err != nil {
		return false
	}
	os.Remove(config.AutoResumePath)

	rom := paths.SDAbsolute(strings.TrimSpace(string(data)))
	if !oss.Exists(rom) {
		log.Warn().Str("rom", rom).Msg("auto-resume rom missing")
		return false
	}
	emu := emuTag(filepath.Dir(rom))
	if emu == "" || !oss.Exists(filepath.Join(paths.Paks, emu+".pak")) {
		log.Warn().Str("rom", rom).Msg("auto-resume emulator missing")
		return false
	}

	if err := oss.WriteFile(config.ResumeSlotPath, []byte("8"), 0644); err != nil {
		log.Warn().Err(err).Msg("resume slot write")
		return false
	}
	if err := oss.WriteFile(config.NextCommandPath,
		[]byte(LaunchCommand(paths, emu, rom)), 0644); err != nil {
		log.Warn().Err(err).Msg("next-command write")
		return false
	}
	log.Info().Str("rom", rom).Msg("auto-resuming")
	return true
}

// ConsumeDiscChange rewrites a recent entry after the player swapped
// discs, so relaunching resumes on the right one.
func (l *Launcher) ConsumeDiscChange() {
	data, err := os.ReadFile(config.ChangeDiscPath)
	if err != nil {
		return
	}
	os.Remove(config.ChangeDiscPath)

	disc := strings.TrimSpace(string(data))
	if disc == "" {
		return
	}
	abs := l.cfg.Paths.SDAbsolute(disc)
	m3u := M3UFor(abs)
	if m3u == "" {
		return
	}
	rel := l.cfg.Paths.SDRelative(m3u)
	for i := range l.rec {
		if l.rec[i].Path != rel {
			continue
		}
		// keep position, refresh the disc alias
		dir := filepath.Dir(abs)
		aliases := LoadAliases(pakResDir(l.cfg.Paths, dir), dir)
		if alias := aliases[filepath.Base(abs)]; alias != "" {
			l.rec[i].Alias = alias
		}
	}
	if err := SaveRecents(l.cfg.Paths, l.rec); err != nil {
		l.log.Warn().Err(err).Msg("recents save")
	}
}

func (l *Launcher) Close() {
	l.lib.Close()
}
