package cpu

// Config holds the autoscaler tunables. Zero values are replaced with
// the defaults below in New.
type Config struct {
	// samples per decision window
	WindowFrames int
	// utilization thresholds, percent of the frame budget
	UtilHigh int
	UtilLow  int
	// consecutive windows over/under threshold before acting
	BoostWindows  int
	ReduceWindows int
	// decision rounds ignored after startup
	StartupGrace int
	// frequencies below this are never offered (kHz)
	MinFreqKHz int
	TargetUtil int
	// ladder step limits
	MaxStepDown int
	PanicStepUp int
	// audio buffer fill percent required before stepping down
	MinBufferForReduce int
	Disabled           bool
}

const (
	// ring capacity for frame time samples
	ringSize = 64

	// PanicGraceFrames is the number of decision rounds after any
	// state change during which underruns are absorbed.
	PanicGraceFrames = 60
	// PanicGraceMaxUnderruns is the catastrophic override: this many
	// underruns during grace force another panic anyway.
	PanicGraceMaxUnderruns = 5
	// PanicThreshold blocks a frequency from reduce once it caused
	// this many panics.
	PanicThreshold = 3
	// StabilityDecayWindows clean rounds earn one panic count back.
	StabilityDecayWindows = 8
	// cooldown rounds after a panic before any reduce
	panicCooldownRounds = 8

	defaultFrameBudgetUS = 16667
	maxUtilPercent       = 200
)

func (c *Config) withDefaults() Config {
	out := *c
	if out.WindowFrames <= 0 {
		out.WindowFrames = 30
	}
	if out.WindowFrames > ringSize {
		out.WindowFrames = ringSize
	}
	if out.UtilHigh == 0 {
		out.UtilHigh = 85
	}
	if out.UtilLow == 0 {
		out.UtilLow = 55
	}
	if out.BoostWindows <= 0 {
		out.BoostWindows = 2
	}
	if out.ReduceWindows <= 0 {
		out.ReduceWindows = 6
	}
	if out.StartupGrace <= 0 {
		out.StartupGrace = 2
	}
	if out.PanicStepUp <= 0 {
		out.PanicStepUp = 2
	}
	if out.MaxStepDown <= 0 {
		out.MaxStepDown = 1
	}
	if out.MinBufferForReduce <= 0 {
		out.MinBufferForReduce = 50
	}
	return out
}
