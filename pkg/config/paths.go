package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Sentinel files exchanged between the player, the launcher, and the
// outer init script. All short-lived, all under /tmp.
const (
	NextCommandPath = "/tmp/next"
	AutoResumePath  = "/tmp/resume_game"
	ResumeSlotPath  = "/tmp/resume_slot"
	ChangeDiscPath  = "/tmp/change_disc"
	NoUIPath        = "/tmp/noui"
	LastPath        = "/tmp/last_selection"
)

// Paths holds every filesystem root the frontend touches. All of them
// are discovered once at startup, before any other filesystem access.
type Paths struct {
	SDCard      string `fig:"sdcard"`
	Roms        string `fig:"roms"`
	Paks        string `fig:"paks"`
	Collections string `fig:"collections"`
	Userdata    string `fig:"userdata"`
	System      string `fig:"system"`
}

func NewPaths() (p Paths) {
	p.Resolve()
	return
}

// Resolve fills unset fields from the environment, falling back to the
// conventional SD card layout.
func (p *Paths) Resolve() {
	if p.SDCard == "" {
		p.SDCard = envOr("SDCARD_PATH", "/mnt/SDCARD")
	}
	if p.Roms == "" {
		p.Roms = envOr("ROMS_PATH", filepath.Join(p.SDCard, "Roms"))
	}
	if p.Paks == "" {
		p.Paks = envOr("PAKS_PATH", filepath.Join(p.SDCard, "Emus"))
	}
	if p.Collections == "" {
		p.Collections = envOr("COLLECTIONS_PATH", filepath.Join(p.SDCard, "Collections"))
	}
	if p.Userdata == "" {
		p.Userdata = envOr("USERDATA_PATH", filepath.Join(p.SDCard, ".userdata"))
	}
	if p.System == "" {
		p.System = envOr("SYSTEM_PATH", filepath.Join(p.SDCard, ".system"))
	}
}

// SaveDir is where an emulator keeps slot metadata, previews, and
// state blobs for its ROMs.
func (p Paths) SaveDir(emu string) string {
	return filepath.Join(p.Userdata, ".launcher", emu)
}

// RecentFile is the newest-first list of launched games.
func (p Paths) RecentFile() string {
	return filepath.Join(p.Userdata, ".launcher", "recent.txt")
}

// SDRelative converts an absolute path to an SD-relative one
// (with a leading slash), as stored in recent.txt and the sentinels.
func (p Paths) SDRelative(abs string) string {
	if rel, err := filepath.Rel(p.SDCard, abs); err == nil && !filepath.IsAbs(rel) && rel != ".." && !hasDotDot(rel) {
		return "/" + rel
	}
	return abs
}

// SDAbsolute is the inverse of SDRelative. Paths already under the SD
// root pass through unchanged.
func (p Paths) SDAbsolute(rel string) string {
	if strings.HasPrefix(rel, p.SDCard) {
		return rel
	}
	return filepath.Join(p.SDCard, rel)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func hasDotDot(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, "../")
}
