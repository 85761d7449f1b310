// Package menu is the in-game pause menu and its save-state engine:
// slot files with BMP previews, M3U multi-disc selection, and the
// sleep/wake auto-resume contract.
package menu

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pocketdeck/pocketdeck/pkg/config"
	"github.com/pocketdeck/pocketdeck/pkg/logger"
	oss "github.com/pocketdeck/pocketdeck/pkg/os"
)

const (
	MaxDiscs = 9
	// slots 0..UserSlots-1 are user visible
	UserSlots = 8
	// AutoResumeSlot is written on sleep and consumed at next startup
	AutoResumeSlot = 8
)

// Hooks are the frontend actions the menu invokes. The menu never
// touches the core or the presentation path directly.
type Hooks struct {
	FlushSaves func() // SRAM + RTC write
	SaveState  func() ([]byte, error)
	LoadState  func([]byte) error
	ChangeDisc func(path string) error
	// Frame returns the last software frame for slot previews and the
	// menu backdrop. Nil on the hardware render path.
	Frame      func() *image.RGBA
	DropCPU    func()
	RestoreCPU func()
	StopRumble func()
	PowerOff   func()
}

// State is the save-slot and disc state for one loaded game.
type State struct {
	log   *logger.Logger
	paths config.Paths
	hooks Hooks

	emu     string
	romPath string // absolute path of the loaded image
	romFile string // base name, slot files derive from it
	m3uPath string

	DiscPaths  []string // absolute, ≤ MaxDiscs
	Disc       int      // index into DiscPaths, -1 when single-disc
	TotalDiscs int

	Slot          int
	SaveExists    bool
	PreviewExists bool

	deviceW, deviceH int
}

func NewState(paths config.Paths, emu, romPath, m3uPath string, devW, devH int, hooks Hooks, log *logger.Logger) (*State, error) {
	s := &State{
		log:     log,
		paths:   paths,
		hooks:   hooks,
		emu:     emu,
		romPath: romPath,
		romFile: filepath.Base(romPath),
		m3uPath: m3uPath,
		Disc:    -1,
		deviceW: devW,
		deviceH: devH,
	}
	if m3uPath != "" {
		// slot files key on the disc set, not on whichever disc the
		// session happened to start on
		s.romFile = filepath.Base(m3uPath)
		s.DiscPaths = ParseM3U(m3uPath)
		s.TotalDiscs = len(s.DiscPaths)
		for i, p := range s.DiscPaths {
			if p == romPath {
				s.Disc = i
				break
			}
		}
	}
	if err := oss.CheckCreateDir(s.saveDir()); err != nil {
		return nil, fmt.Errorf("save dir: %w", err)
	}
	s.Slot = s.ReadPersistedSlot()
	s.UpdateState()
	return s, nil
}

// ParseM3U reads one disc path per line, relative to the M3U's
// directory. Blank lines and missing disc files are skipped; at most
// MaxDiscs entries are kept.
func ParseM3U(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	dir := filepath.Dir(path)
	var discs []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		abs := line
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(dir, line)
		}
		if !oss.Exists(abs) {
			continue
		}
		discs = append(discs, abs)
		if len(discs) == MaxDiscs {
			break
		}
	}
	return discs
}

func (s *State) saveDir() string { return s.paths.SaveDir(s.emu) }

// SlotTxtPath is the slot metadata file (disc path for M3U games).
func (s *State) SlotTxtPath(slot int) string {
	return filepath.Join(s.saveDir(), fmt.Sprintf("%s.%d.txt", s.romFile, slot))
}

// SlotBmpPath is the preview image next to the slot.
func (s *State) SlotBmpPath(slot int) string {
	return filepath.Join(s.saveDir(), fmt.Sprintf("%s.%d.bmp", s.romFile, slot))
}

// SlotStatePath is the core's serialized state blob.
func (s *State) SlotStatePath(slot int) string {
	return filepath.Join(s.saveDir(), fmt.Sprintf("%s.%d.state", s.romFile, slot))
}

// resumeFile holds one integer, the last used slot.
func (s *State) resumeFile() string {
	return filepath.Join(s.saveDir(), s.romFile+".txt")
}

// ReadPersistedSlot returns the last used slot, collapsing the
// auto-resume slot to 0.
func (s *State) ReadPersistedSlot() int {
	data, err := os.ReadFile(s.resumeFile())
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || n < 0 || n >= UserSlots {
		return 0
	}
	return n
}

func (s *State) persistSlot(slot int) {
	if err := oss.WriteFile(s.resumeFile(), []byte(strconv.Itoa(slot)), 0644); err != nil {
		s.log.Warn().Err(err).Msg("persist slot")
	}
}

// CycleSlot moves the active user slot by dir with wraparound.
func (s *State) CycleSlot(dir int) {
	s.Slot = (s.Slot + dir + UserSlots) % UserSlots
	s.UpdateState()
}

// CycleDisc moves the disc selection; no-op for single-disc games.
func (s *State) CycleDisc(dir int) {
	if s.TotalDiscs < 2 {
		return
	}
	s.Disc = (s.Disc + dir + s.TotalDiscs) % s.TotalDiscs
}

// ApplyDisc switches the core to the currently selected disc.
func (s *State) ApplyDisc() error {
	if s.Disc < 0 || s.Disc >= len(s.DiscPaths) {
		return nil
	}
	path := s.DiscPaths[s.Disc]
	if path == s.romPath {
		return nil
	}
	if err := s.hooks.ChangeDisc(path); err != nil {
		return err
	}
	s.romPath = path
	return nil
}

// UpdateState re-derives the exists flags for the active slot.
func (s *State) UpdateState() {
	s.SaveExists = oss.Exists(s.SlotStatePath(s.Slot))
	s.PreviewExists = s.SaveExists && oss.Exists(s.SlotBmpPath(s.Slot))
}

// Save writes the core state, slot metadata and the half-size BMP
// preview for the given slot. A failed write leaves every on-disk
// file of the slot untouched.
func (s *State) Save(slot int) error {
	data, err := s.hooks.SaveState()
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}
	if err := writeAtomic(s.SlotStatePath(slot), data); err != nil {
		return fmt.Errorf("state write: %w", err)
	}

	var meta []byte
	if s.m3uPath != "" && s.Disc >= 0 {
		rel, err := filepath.Rel(filepath.Dir(s.m3uPath), s.DiscPaths[s.Disc])
		if err != nil {
			rel = s.DiscPaths[s.Disc]
		}
		meta = []byte(rel)
	}
	if err := writeAtomic(s.SlotTxtPath(slot), meta); err != nil {
		s.log.Warn().Err(err).Msg("slot metadata write")
	}

	if frame := s.frame(); frame != nil {
		if err := WritePreview(s.SlotBmpPath(slot), frame, s.deviceW/2, s.deviceH/2); err != nil {
			s.log.Warn().Err(err).Msg("preview write")
		}
	}

	s.persistSlot(slot)
	s.UpdateState()
	return nil
}

// Load restores the core state from a slot, switching discs first
// when the slot metadata names a different one.
func (s *State) Load(slot int) error {
	if meta, err := os.ReadFile(s.SlotTxtPath(slot)); err == nil {
		if disc := strings.TrimSpace(string(meta)); disc != "" && s.m3uPath != "" {
			abs := disc
			if !filepath.IsAbs(abs) {
				abs = filepath.Join(filepath.Dir(s.m3uPath), disc)
			}
			if abs != s.romPath {
				if err := s.hooks.ChangeDisc(abs); err != nil {
					return fmt.Errorf("change disc: %w", err)
				}
				s.romPath = abs
				for i, p := range s.DiscPaths {
					if p == abs {
						s.Disc = i
						break
					}
				}
			}
		}
	}
	data, err := os.ReadFile(s.SlotStatePath(slot))
	if err != nil {
		return fmt.Errorf("state read: %w", err)
	}
	if err := s.hooks.LoadState(data); err != nil {
		return fmt.Errorf("unserialize: %w", err)
	}
	s.persistSlot(slot)
	s.UpdateState()
	return nil
}

// BeforeSleep flushes saves, autosaves to the reserved slot and drops
// a marker the launcher resumes from. Must complete before the system
// suspends.
func (s *State) BeforeSleep() {
	if s.hooks.FlushSaves != nil {
		s.hooks.FlushSaves()
	}
	if err := s.Save(AutoResumeSlot); err != nil {
		s.log.Warn().Err(err).Msg("autosave")
	}
	launch := s.romPath
	if s.m3uPath != "" {
		launch = s.m3uPath
	}
	if err := oss.WriteFile(config.AutoResumePath, []byte(s.paths.SDRelative(launch)), 0644); err != nil {
		s.log.Warn().Err(err).Msg("auto-resume marker")
	}
	if s.hooks.DropCPU != nil {
		s.hooks.DropCPU()
	}
}

// AfterSleep clears the auto-resume marker and restores performance.
func (s *State) AfterSleep() {
	_ = os.Remove(config.AutoResumePath)
	if s.hooks.RestoreCPU != nil {
		s.hooks.RestoreCPU()
	}
}

func (s *State) frame() *image.RGBA {
	if s.hooks.Frame == nil {
		return nil
	}
	return s.hooks.Frame()
}

// writeAtomic goes through a temp file so a failed write never
// clobbers the existing slot.
func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := oss.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
