package cpu

import (
	"fmt"
	"path/filepath"
	"strconv"
)

// stepper is the capability shared by the three ladder kinds: a range
// of indices, a way to make one of them real, and a name for the UI.
type stepper interface {
	max() int
	name() string
	// apply makes idx the hardware state and returns the affinity
	// mask the emulation thread should move to (0 means keep).
	apply(idx int) (affinity uint32, err error)
}

// granularStepper drives a single policy through its frequency table
// with the userspace governor.
type granularStepper struct {
	fs    Sysfs
	dir   string
	freqs []int
}

func newGranularStepper(fs Sysfs, dir string, freqs []int) (*granularStepper, error) {
	if err := fs.Write(filepath.Join(dir, "scaling_governor"), "userspace"); err != nil {
		return nil, fmt.Errorf("governor: %w", err)
	}
	return &granularStepper{fs: fs, dir: dir, freqs: freqs}, nil
}

func (g *granularStepper) max() int     { return len(g.freqs) - 1 }
func (g *granularStepper) name() string { return "granular" }

func (g *granularStepper) apply(idx int) (uint32, error) {
	err := g.fs.Write(filepath.Join(g.dir, "scaling_setspeed"), strconv.Itoa(g.freqs[idx]))
	return 0, err
}

// fallbackStepper clamps scaling_max_freq when the kernel doesn't
// publish a frequency table. The rungs are synthesized between the
// policy's min and max.
type fallbackStepper struct {
	fs    Sysfs
	dir   string
	freqs []int
}

func (f *fallbackStepper) max() int     { return len(f.freqs) - 1 }
func (f *fallbackStepper) name() string { return "fallback" }

func (f *fallbackStepper) apply(idx int) (uint32, error) {
	err := f.fs.Write(filepath.Join(f.dir, "scaling_max_freq"), strconv.Itoa(f.freqs[idx]))
	return 0, err
}

// synthFreqs builds an evenly spaced ladder of n rungs in [min, max].
func synthFreqs(minKHz, maxKHz, n int) []int {
	if n < 2 || maxKHz <= minKHz {
		return nil
	}
	freqs := make([]int, n)
	span := maxKHz - minKHz
	for i := 0; i < n; i++ {
		freqs[i] = minKHz + span*i/(n-1)
	}
	return freqs
}

// topologyStepper walks the PerfState ladder of a multi-cluster
// device: one governor string per cluster, then the active cluster's
// mask as the new affinity.
type topologyStepper struct {
	fs       Sysfs
	base     string
	clusters []Cluster
	ladder   []PerfState
}

func (t *topologyStepper) max() int     { return len(t.ladder) - 1 }
func (t *topologyStepper) name() string { return "topology" }

func (t *topologyStepper) apply(idx int) (uint32, error) {
	st := t.ladder[idx]
	var firstErr error
	for ci, gov := range st.Governors {
		path := filepath.Join(t.base, fmt.Sprintf("policy%d", t.clusters[ci].PolicyID), "scaling_governor")
		if err := t.fs.Write(path, gov.String()); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("policy%d: %w", t.clusters[ci].PolicyID, err)
		}
	}
	return st.AffinityMask, firstErr
}
