package config

import (
	"github.com/spf13/pflag"
)

// Player is the full configuration of the player binary.
type Player struct {
	Debug bool
	Paths Paths
	Video Video
	CPU   CPUScaler
	Menu  Menu
	Audio Audio
}

type Video struct {
	// allow the GLES2 path when the core asks for it
	HardwareRender bool `fig:"hardware_render" default:"true"`
	Width          int  `fig:"width" default:"640"`
	Height         int  `fig:"height" default:"480"`
	// native | aspect | fullscreen | cropped
	Scaling string `fig:"scaling" default:"aspect"`
}

// CPUScaler mirrors the autoscaler tunables.
type CPUScaler struct {
	WindowFrames       int `fig:"window_frames" default:"30"`
	UtilHigh           int `fig:"util_high" default:"85"`
	UtilLow            int `fig:"util_low" default:"55"`
	BoostWindows       int `fig:"boost_windows" default:"2"`
	ReduceWindows      int `fig:"reduce_windows" default:"6"`
	StartupGrace       int `fig:"startup_grace" default:"2"`
	MinFreqKHz         int `fig:"min_freq_khz"`
	TargetUtil         int `fig:"target_util" default:"70"`
	MaxStepDown        int `fig:"max_step_down" default:"1"`
	PanicStepUp        int `fig:"panic_step_up" default:"2"`
	MinBufferForReduce int `fig:"min_buffer_for_reduce" default:"50"`
	Disabled           bool
}

type Menu struct {
	AutosaveOnSleep bool `fig:"autosave_on_sleep" default:"true"`
}

type Audio struct {
	SampleRate int `fig:"sample_rate" default:"48000"`
	BufferMs   int `fig:"buffer_ms" default:"64"`
}

// allows custom config path
var configPath string

func NewPlayer() (*Player, error) {
	var conf Player
	if err := LoadConfig(&conf, configPath); err != nil {
		return nil, err
	}
	conf.Paths.Resolve()
	return &conf, nil
}

func (c *Player) WithFlags(fs *pflag.FlagSet) *Player {
	fs.BoolVar(&c.Debug, "debug", c.Debug, "debug log level")
	fs.StringVarP(&configPath, "conf", "c", "", "custom configuration file path")
	return c
}
