package player

import (
	"path/filepath"

	"github.com/pocketdeck/pocketdeck/pkg/config"
	"github.com/pocketdeck/pocketdeck/pkg/libretro"
	"github.com/pocketdeck/pocketdeck/pkg/logger"
	"github.com/pocketdeck/pocketdeck/pkg/player/mem"
)

// saves persists the core's battery-backed regions next to the save
// states.
type saves struct {
	log      *logger.Logger
	provider mem.Provider
	sramPath string
	rtcPath  string
}

func newSaves(paths config.Paths, emu string, game *Game, provider mem.Provider, log *logger.Logger) *saves {
	dir := paths.SaveDir(emu)
	base := filepath.Base(game.Path)
	if game.M3UPath != "" {
		// multi-disc games share one battery file keyed on the M3U
		base = filepath.Base(game.M3UPath)
	}
	return &saves{
		log:      log,
		provider: provider,
		sramPath: filepath.Join(dir, base+".sav"),
		rtcPath:  filepath.Join(dir, base+".rtc"),
	}
}

// Restore pulls SRAM and RTC from disk into the core. Missing files
// are a fresh game, not an error.
func (s *saves) Restore() {
	if r := mem.Read(s.provider, libretro.MemorySaveRAM, s.sramPath); r.Failed() {
		s.log.Warn().Str("path", s.sramPath).Msgf("sram restore: %v", r)
	}
	if r := mem.Read(s.provider, libretro.MemoryRTC, s.rtcPath); r.Failed() {
		s.log.Warn().Str("path", s.rtcPath).Msgf("rtc restore: %v", r)
	}
}

// Flush writes both regions out. Reports false when either write
// failed so the caller can raise the status overlay.
func (s *saves) Flush() bool {
	ok := true
	if r := mem.Write(s.provider, libretro.MemorySaveRAM, s.sramPath); r.Failed() {
		s.log.Error().Str("path", s.sramPath).Msgf("sram flush: %v", r)
		ok = false
	}
	if r := mem.Write(s.provider, libretro.MemoryRTC, s.rtcPath); r.Failed() {
		s.log.Error().Str("path", s.rtcPath).Msgf("rtc flush: %v", r)
		ok = false
	}
	return ok
}
