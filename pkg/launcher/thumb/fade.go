package thumb

// Fade eases a freshly loaded thumbnail in instead of popping it.
type Fade struct {
	startMS    int64
	alpha      int
	durationMS int64
	maxAlpha   int
	active     bool
}

func NewFade(durationMS int64, maxAlpha int) *Fade {
	return &Fade{durationMS: durationMS, maxAlpha: maxAlpha}
}

// Start begins a fade at now (milliseconds).
func (f *Fade) Start(nowMS int64) {
	f.startMS = nowMS
	f.alpha = 0
	f.active = true
}

// Update advances the fade; returns true while it is still running.
func (f *Fade) Update(nowMS int64) bool {
	if !f.active {
		return false
	}
	elapsed := nowMS - f.startMS
	if elapsed >= f.durationMS {
		f.alpha = f.maxAlpha
		f.active = false
		return false
	}
	f.alpha = CalculateAlpha(elapsed, f.durationMS, f.maxAlpha)
	return true
}

func (f *Fade) Alpha() int { return f.alpha }

// CalculateAlpha maps elapsed time onto the smoothstep curve
// t²·(3−2t).
func CalculateAlpha(elapsedMS, durationMS int64, maxAlpha int) int {
	if durationMS <= 0 || elapsedMS >= durationMS {
		return maxAlpha
	}
	if elapsedMS <= 0 {
		return 0
	}
	t := float64(elapsedMS) / float64(durationMS)
	s := t * t * (3 - 2*t)
	return int(s * float64(maxAlpha))
}
