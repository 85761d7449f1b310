package main

import (
	goflag "flag"
	"fmt"
	"os"
	"path/filepath"
	"plugin"

	"github.com/pocketdeck/pocketdeck/pkg/config"
	"github.com/pocketdeck/pocketdeck/pkg/libretro"
	"github.com/pocketdeck/pocketdeck/pkg/logger"
	oss "github.com/pocketdeck/pocketdeck/pkg/os"
	"github.com/pocketdeck/pocketdeck/pkg/player"
	"github.com/pocketdeck/pocketdeck/pkg/thread"
	flag "github.com/spf13/pflag"
)

var Version = "?"

func main() { os.Exit(run()) }

func run() int {
	conf, err := config.NewPlayer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	flag.CommandLine.AddGoFlagSet(goflag.CommandLine)
	conf.WithFlags(flag.CommandLine)
	flag.Parse()
	if flag.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "usage: player [flags] <emu_path> <rom_path>")
		return 1
	}
	emuPath, romPath := flag.Arg(0), flag.Arg(1)

	log := logger.NewConsole(conf.Debug, "play", false)
	log.Info().Msgf("version %s", Version)
	if log.GetLevel() < logger.InfoLevel {
		log.Debug().Msgf("config: %+v", conf)
	}

	lock, err := oss.NewFileLock(filepath.Join(os.TempDir(), "pocketdeck-player.lock"))
	if err != nil {
		log.Error().Err(err).Msg("instance lock init failed")
		return 1
	}
	if err := lock.Lock(); err != nil {
		log.Error().Err(err).Msg("another player instance is running")
		return 1
	}
	defer func() { _ = lock.Unlock() }()

	core, err := loadCore(emuPath)
	if err != nil {
		log.Error().Err(err).Msgf("core %s failed to load", emuPath)
		return 1
	}

	// SDL and GL want the main OS thread, so the whole session runs there
	code := 0
	thread.Wrap(func() {
		thread.Main(func() {
			p, err := player.New(conf, core, romPath, log)
			if err != nil {
				log.Error().Err(err).Msg("player startup failed")
				code = 1
				return
			}
			p.Run()
		})
	})
	return code
}

// loadCore binds an emulator core compiled as a Go plugin. The plugin
// exports New() libretro.Core.
func loadCore(path string) (libretro.Core, error) {
	pl, err := plugin.Open(path)
	if err != nil {
		return nil, err
	}
	sym, err := pl.Lookup("New")
	if err != nil {
		return nil, err
	}
	ctor, ok := sym.(func() libretro.Core)
	if !ok {
		return nil, fmt.Errorf("core %s: New has type %T", path, sym)
	}
	return ctor(), nil
}
