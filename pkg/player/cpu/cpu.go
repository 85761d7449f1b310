// Package cpu chooses the lowest CPU performance level that sustains
// the game's target FPS, from per-frame execution times and the audio
// underrun counter. Governor writes happen off the emulation thread;
// affinity changes are left pending for the main thread to pick up.
package cpu

import (
	"math"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/pocketdeck/pocketdeck/pkg/logger"
)

// Decision is the outcome of one decision window.
type Decision int

const (
	Skip Decision = iota
	Boost
	Reduce
	Panic
)

func (d Decision) String() string {
	switch d {
	case Boost:
		return "boost"
	case Reduce:
		return "reduce"
	case Panic:
		return "panic"
	}
	return "skip"
}

const pendingValid = uint64(1) << 32

type Scaler struct {
	mu   sync.Mutex
	log  *logger.Logger
	cfg  Config
	step stepper

	disabled bool

	// ladder position: target is chosen, current is applied
	target, current int
	maxLimit        int

	// preset indices for the overclock menu: ~55%, ~80%, max
	presets [3]int

	ring          [ringSize]int64
	frameCount    int
	frameBudgetUS int64

	highWindows, lowWindows int
	panicCooldown           int
	panicGrace              int
	graceUnderruns          int
	panicCount              []int
	stabilityStreak         int
	lastUnderruns           uint64
	startupRounds           int

	pausedTarget int
	paused       bool

	// mask | pendingValid, set by the apply goroutine, consumed by
	// the main thread next frame
	pendingAffinity atomic.Uint64

	applyCh chan int
	done    chan struct{}
}

// New detects the hardware and picks an operating mode. Detection
// failures never propagate: the scaler comes back disabled and every
// Update returns Skip.
func New(cfg Config, fs Sysfs, log *logger.Logger) *Scaler {
	return newScaler(cfg, fs, defaultSysfsBase, log)
}

func newScaler(cfg Config, fs Sysfs, base string, log *logger.Logger) *Scaler {
	s := &Scaler{
		cfg:           cfg.withDefaults(),
		log:           log,
		frameBudgetUS: defaultFrameBudgetUS,
		disabled:      true,
	}
	if cfg.Disabled {
		log.Info().Msg("cpu scaling disabled by config")
		return s
	}

	clusters, err := detectClusters(fs, base, s.cfg.MinFreqKHz)
	if err != nil || len(clusters) == 0 {
		log.Warn().Err(err).Msg("cpu topology detection failed, scaling disabled")
		return s
	}

	if len(clusters) > 1 {
		t := &topologyStepper{fs: fs, base: base, clusters: clusters, ladder: buildLadder(clusters)}
		s.enable(t, len(t.ladder))
		s.presets = [3]int{len(t.ladder) * 55 / 100, len(t.ladder) * 80 / 100, len(t.ladder) - 1}
		// first apply runs synchronously, before the worker exists
		s.Apply()
		s.startApplyWorker()
		log.Info().Int("clusters", len(clusters)).Int("states", len(t.ladder)).Msg("cpu topology mode")
		return s
	}

	c := clusters[0]
	dir := filepath.Join(base, "policy"+strconv.Itoa(c.PolicyID))
	if len(c.Freqs) >= 2 {
		g, err := newGranularStepper(fs, dir, c.Freqs)
		if err != nil {
			log.Warn().Err(err).Msg("userspace governor unavailable, scaling disabled")
			return s
		}
		s.enable(g, len(c.Freqs))
		maxKHz := c.Freqs[len(c.Freqs)-1]
		s.presets = [3]int{
			findNearestIndex(c.Freqs, maxKHz*55/100),
			findNearestIndex(c.Freqs, maxKHz*80/100),
			len(c.Freqs) - 1,
		}
		s.Apply()
		log.Info().Ints("khz", c.Freqs).Msg("cpu granular mode")
		return s
	}

	if freqs := synthFreqs(c.MinKHz, c.MaxKHz, 4); len(freqs) >= 2 {
		f := &fallbackStepper{fs: fs, dir: dir, freqs: freqs}
		s.enable(f, len(freqs))
		s.presets = [3]int{1, 2, 3}
		s.Apply()
		log.Info().Ints("khz", freqs).Msg("cpu fallback mode")
		return s
	}

	log.Info().Msg("single frequency cpu, scaling disabled")
	return s
}

func (s *Scaler) enable(st stepper, rungs int) {
	s.step = st
	s.disabled = false
	s.maxLimit = st.max()
	s.panicCount = make([]int, rungs)
	// start in the middle so the first windows measure something usable
	s.target = st.max() / 2
	s.current = -1
}

// Reset recomputes the frame budget for a new target FPS and clears
// the measurement state.
func (s *Scaler) Reset(fps float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fps > 0 {
		s.frameBudgetUS = int64(math.Round(1e6 / fps))
	} else {
		s.frameBudgetUS = defaultFrameBudgetUS
	}
	s.frameCount = 0
	s.highWindows, s.lowWindows = 0, 0
	s.startupRounds = 0
	s.stabilityStreak = 0
}

// Update records one frame's execution time and, once per window,
// produces a decision. The underrun counter must be read before the
// frame time is recorded.
func (s *Scaler) Update(frameTimeUS int64, underruns uint64, bufferFill int, fastForward, inMenu bool) Decision {
	s.mu.Lock()
	defer s.mu.Unlock()

	if fastForward || inMenu || s.disabled || s.paused {
		return Skip
	}

	s.ring[s.frameCount%ringSize] = frameTimeUS
	s.frameCount++
	if s.frameCount < s.cfg.WindowFrames {
		return Skip
	}
	s.frameCount = 0

	if s.startupRounds < s.cfg.StartupGrace {
		s.startupRounds++
		return Skip
	}

	return s.decide(underruns, bufferFill)
}

func (s *Scaler) decide(underruns uint64, bufferFill int) Decision {
	if s.panicGrace > 0 {
		s.panicGrace--
	}
	if s.panicCooldown > 0 {
		s.panicCooldown--
	}

	atMax := s.target >= s.limit()

	underrunDetected := underruns > s.lastUnderruns
	if underrunDetected && s.panicGrace > 0 {
		s.graceUnderruns++
	}
	if underrunDetected && !atMax &&
		(s.panicGrace == 0 || s.graceUnderruns >= PanicGraceMaxUnderruns) {
		s.panicCount[s.target]++
		s.target += s.cfg.PanicStepUp
		if s.target > s.limit() {
			s.target = s.limit()
		}
		s.highWindows, s.lowWindows = 0, 0
		s.panicCooldown = panicCooldownRounds
		s.panicGrace = PanicGraceFrames
		s.graceUnderruns = 0
		s.stabilityStreak = 0
		s.lastUnderruns = 0
		s.log.Debug().Int("target", s.target).Msg("cpu panic boost")
		return Panic
	}
	s.lastUnderruns = underruns

	samples := s.ring[:s.cfg.WindowFrames]
	util := int(percentile90(samples) * 100 / s.frameBudgetUS)
	if util > maxUtilPercent {
		util = maxUtilPercent
	}

	switch {
	case util > s.cfg.UtilHigh:
		s.highWindows++
		s.lowWindows = 0
		if s.highWindows >= s.cfg.BoostWindows && !atMax {
			s.target++
			s.highWindows = 0
			s.panicGrace = PanicGraceFrames
			s.graceUnderruns = 0
			s.log.Debug().Int("util", util).Int("target", s.target).Msg("cpu boost")
			return Boost
		}
	case util < s.cfg.UtilLow:
		s.lowWindows++
		s.highWindows = 0
		reduceOK := s.lowWindows >= s.cfg.ReduceWindows &&
			s.panicCooldown == 0 && s.target > 0 &&
			bufferFill >= s.cfg.MinBufferForReduce
		if reduceOK {
			// skip rungs that repeatedly caused panics
			idx := s.target - 1
			for idx >= 0 && s.panicCount[idx] >= PanicThreshold {
				idx--
			}
			if idx >= 0 {
				s.target = idx
				s.lowWindows = 0
				s.log.Debug().Int("util", util).Int("target", s.target).Msg("cpu reduce")
				// no grace: a reduce that glitches should boost right back
				return Reduce
			}
		}
	default:
		s.highWindows, s.lowWindows = 0, 0
	}

	s.stabilityStreak++
	if s.stabilityStreak >= StabilityDecayWindows {
		// earn back trust only for rungs at or above the one we
		// are stable on; being fine at 600 MHz says nothing about 400
		for i := s.target; i < len(s.panicCount); i++ {
			if s.panicCount[i] > 0 {
				s.panicCount[i]--
			}
		}
		s.stabilityStreak = 0
	}
	return Skip
}

// Apply pushes the chosen state to the hardware. Topology-mode
// governor writes are handed to the background worker; everything else
// is synchronous. Never called with the scaler's own mutex held by
// the worker.
func (s *Scaler) Apply() {
	s.mu.Lock()
	if s.disabled || s.target == s.current {
		s.mu.Unlock()
		return
	}
	idx := s.target
	s.current = idx
	async := s.applyCh != nil
	s.mu.Unlock()

	if async {
		select {
		case s.applyCh <- idx:
		default:
			// worker busy; drop, a newer state will follow
		}
		return
	}
	s.applyIndex(idx)
}

func (s *Scaler) applyIndex(idx int) {
	mask, err := s.step.apply(idx)
	if err != nil {
		s.log.Warn().Err(err).Int("idx", idx).Msg("cpu state apply failed")
	}
	if mask != 0 {
		s.pendingAffinity.Store(uint64(mask) | pendingValid)
	}
}

func (s *Scaler) startApplyWorker() {
	s.applyCh = make(chan int, 1)
	s.done = make(chan struct{})
	go func() {
		for {
			select {
			case idx := <-s.applyCh:
				s.applyIndex(idx)
			case <-s.done:
				return
			}
		}
	}()
}

// TakePendingAffinity returns the affinity mask left by the last
// applied PerfState, once. The caller owns the sched_setaffinity call.
func (s *Scaler) TakePendingAffinity() (uint32, bool) {
	v := s.pendingAffinity.Swap(0)
	return uint32(v), v&pendingValid != 0
}

// Pause drops to the lowest rung and stops scaling, used while the
// menu is open or before sleep.
func (s *Scaler) Pause() {
	s.mu.Lock()
	if s.disabled || s.paused {
		s.mu.Unlock()
		return
	}
	s.paused = true
	s.pausedTarget = s.target
	s.target = 0
	s.mu.Unlock()
	s.Apply()
}

// Resume restores the pre-pause rung and re-enables scaling.
func (s *Scaler) Resume() {
	s.mu.Lock()
	if s.disabled || !s.paused {
		s.mu.Unlock()
		return
	}
	s.paused = false
	s.target = s.pausedTarget
	s.mu.Unlock()
	s.Apply()
}

// SetOverclock caps the ladder at one of the three presets
// (0 = ~55%, 1 = ~80%, 2 = max).
func (s *Scaler) SetOverclock(level int) {
	s.mu.Lock()
	if s.disabled {
		s.mu.Unlock()
		return
	}
	if level < 0 {
		level = 0
	}
	if level > 2 {
		level = 2
	}
	s.maxLimit = s.presets[level]
	if s.target > s.maxLimit {
		s.target = s.maxLimit
	}
	s.mu.Unlock()
	s.Apply()
}

func (s *Scaler) limit() int {
	if s.maxLimit < s.step.max() {
		return s.maxLimit
	}
	return s.step.max()
}

// PerformancePercent normalizes the current rung to 0..100 across all
// modes, for the HUD only.
func (s *Scaler) PerformancePercent() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disabled || s.step.max() == 0 {
		return 0
	}
	return s.target * 100 / s.step.max()
}

// ModeName reports "topology", "granular", "fallback" or "disabled".
func (s *Scaler) ModeName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disabled {
		return "disabled"
	}
	return s.step.name()
}

func (s *Scaler) Disabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disabled
}

// Target reports the chosen ladder index.
func (s *Scaler) Target() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target
}

// FrameBudgetUS reports the per-frame budget in microseconds.
func (s *Scaler) FrameBudgetUS() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameBudgetUS
}

// Close stops the background apply worker.
func (s *Scaler) Close() {
	if s.done != nil {
		close(s.done)
	}
}
