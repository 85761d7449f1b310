package config

import (
	"github.com/spf13/pflag"
)

// Launcher is the configuration of the launcher binary.
type Launcher struct {
	Debug bool
	Paths Paths
	Library Library
	Thumbs  Thumbs
	Window  Window
}

type Library struct {
	// file extensions the installed emulator paks can run
	Supported []string `fig:"supported"`
	// skip directory entries containing these words
	Ignored []string `fig:"ignored"`
	// rescan the ROM root when it changes on disk
	WatchMode bool `fig:"watch_mode"`
	Verbose   bool `fig:"verbose"`
}

type Window struct {
	Width  int `fig:"width" default:"640"`
	Height int `fig:"height" default:"480"`
}

type Thumbs struct {
	Width  int `fig:"width" default:"320"`
	Height int `fig:"height" default:"240"`
	FadeMs int `fig:"fade_ms" default:"200"`
}

func NewLauncher() (*Launcher, error) {
	var conf Launcher
	if err := LoadConfig(&conf, configPath); err != nil {
		return nil, err
	}
	conf.Paths.Resolve()
	return &conf, nil
}

func (c *Launcher) WithFlags(fs *pflag.FlagSet) *Launcher {
	fs.BoolVar(&c.Debug, "debug", c.Debug, "debug log level")
	fs.StringVarP(&configPath, "conf", "c", "", "custom configuration file path")
	return c
}
