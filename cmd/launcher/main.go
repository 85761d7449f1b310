package main

import (
	goflag "flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pocketdeck/pocketdeck/pkg/config"
	"github.com/pocketdeck/pocketdeck/pkg/launcher"
	"github.com/pocketdeck/pocketdeck/pkg/logger"
	oss "github.com/pocketdeck/pocketdeck/pkg/os"
	"github.com/pocketdeck/pocketdeck/pkg/thread"
	flag "github.com/spf13/pflag"
)

var Version = "?"

func main() { os.Exit(run()) }

func run() int {
	conf, err := config.NewLauncher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	flag.CommandLine.AddGoFlagSet(goflag.CommandLine)
	conf.WithFlags(flag.CommandLine)
	flag.Parse()

	log := logger.NewConsole(conf.Debug, "ln", false)
	log.Info().Msgf("version %s", Version)
	if log.GetLevel() < logger.InfoLevel {
		log.Debug().Msgf("config: %+v", conf)
	}

	lock, err := oss.NewFileLock(filepath.Join(os.TempDir(), "pocketdeck-launcher.lock"))
	if err != nil {
		log.Error().Err(err).Msg("instance lock init failed")
		return 1
	}
	if err := lock.Lock(); err != nil {
		log.Error().Err(err).Msg("another launcher instance is running")
		return 1
	}
	defer func() { _ = lock.Unlock() }()

	// coming back from sleep skips the browser entirely
	if launcher.CheckAutoResume(conf.Paths, log) {
		return 0
	}

	l := launcher.New(conf, log)
	defer l.Close()
	l.ConsumeDiscChange()

	code := 0
	thread.Wrap(func() {
		thread.Main(func() {
			b, err := launcher.NewBrowser(conf, l, log)
			if err != nil {
				log.Error().Err(err).Msg("browser startup failed")
				code = 1
				return
			}
			defer b.Close()
			b.Run()
		})
	})
	return code
}
