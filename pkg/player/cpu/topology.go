package cpu

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

type Governor int

const (
	Powersave Governor = iota
	Schedutil
	Performance
)

func (g Governor) String() string {
	switch g {
	case Powersave:
		return "powersave"
	case Schedutil:
		return "schedutil"
	case Performance:
		return "performance"
	}
	return "unknown"
}

type ClusterType int

const (
	ClusterLittle ClusterType = iota
	ClusterBig
	ClusterPrime
)

func (t ClusterType) String() string {
	switch t {
	case ClusterBig:
		return "big"
	case ClusterPrime:
		return "prime"
	}
	return "little"
}

// Cluster is one cpufreq policy domain.
type Cluster struct {
	PolicyID int
	CPUMask  uint32
	CPUCount int
	// ascending, kHz
	Freqs          []int
	MinKHz, MaxKHz int
	Type           ClusterType
}

// PerfState is one rung of the topology ladder: a governor per
// cluster plus the affinity mask of the cluster that should run the
// emulation thread. Inactive clusters sit in powersave.
type PerfState struct {
	Governors     []Governor
	AffinityMask  uint32
	ActiveCluster int
}

const defaultSysfsBase = "/sys/devices/system/cpu/cpufreq"

// detectClusters scans policy* domains. Any parse failure fails the
// whole detection; the caller degrades to disabled.
func detectClusters(fs Sysfs, base string, minKHz int) ([]Cluster, error) {
	dirs, err := fs.Glob(filepath.Join(base, "policy*"))
	if err != nil {
		return nil, err
	}
	sort.Strings(dirs)

	var clusters []Cluster
	for _, dir := range dirs {
		id, err := strconv.Atoi(strings.TrimPrefix(filepath.Base(dir), "policy"))
		if err != nil {
			continue
		}
		cpus, err := fs.Read(filepath.Join(dir, "related_cpus"))
		if err != nil {
			return nil, fmt.Errorf("policy%d: %w", id, err)
		}
		mask, count, err := parseCPUList(cpus)
		if err != nil {
			return nil, fmt.Errorf("policy%d: %w", id, err)
		}
		c := Cluster{PolicyID: id, CPUMask: mask, CPUCount: count}
		if raw, err := fs.Read(filepath.Join(dir, "scaling_available_frequencies")); err == nil {
			c.Freqs = parseFreqList(raw, minKHz)
		}
		if raw, err := fs.Read(filepath.Join(dir, "cpuinfo_min_freq")); err == nil {
			c.MinKHz, _ = strconv.Atoi(raw)
		}
		if raw, err := fs.Read(filepath.Join(dir, "cpuinfo_max_freq")); err == nil {
			c.MaxKHz, _ = strconv.Atoi(raw)
		}
		if c.MaxKHz == 0 && len(c.Freqs) > 0 {
			c.MaxKHz = c.Freqs[len(c.Freqs)-1]
		}
		clusters = append(clusters, c)
	}

	// rank by peak frequency: slowest is LITTLE, fastest PRIME
	sort.SliceStable(clusters, func(i, j int) bool { return clusters[i].MaxKHz < clusters[j].MaxKHz })
	for i := range clusters {
		switch {
		case i == 0:
			clusters[i].Type = ClusterLittle
		case i == len(clusters)-1 && len(clusters) > 2:
			clusters[i].Type = ClusterPrime
		default:
			clusters[i].Type = ClusterBig
		}
	}
	return clusters, nil
}

// buildLadder orders three PerfStates per cluster tier by expected
// performance: powersave, schedutil, performance on the slowest
// cluster first, then the same triple on each faster one.
func buildLadder(clusters []Cluster) []PerfState {
	ladder := make([]PerfState, 0, len(clusters)*3)
	for ci := range clusters {
		for _, g := range []Governor{Powersave, Schedutil, Performance} {
			st := PerfState{
				Governors:     make([]Governor, len(clusters)),
				AffinityMask:  clusters[ci].CPUMask,
				ActiveCluster: ci,
			}
			for i := range st.Governors {
				st.Governors[i] = Powersave
			}
			st.Governors[ci] = g
			ladder = append(ladder, st)
		}
	}
	return ladder
}

// parseCPUList handles "0-3" and "0 1 2 3" forms of related_cpus.
func parseCPUList(s string) (mask uint32, count int, err error) {
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' }) {
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			a, err1 := strconv.Atoi(lo)
			b, err2 := strconv.Atoi(hi)
			if err1 != nil || err2 != nil || a > b {
				return 0, 0, fmt.Errorf("bad cpu range %q", part)
			}
			for n := a; n <= b; n++ {
				mask |= 1 << uint(n)
				count++
			}
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0, 0, fmt.Errorf("bad cpu id %q", part)
		}
		mask |= 1 << uint(n)
		count++
	}
	if count == 0 {
		return 0, 0, fmt.Errorf("empty cpu list %q", s)
	}
	return mask, count, nil
}

func parseFreqList(s string, minKHz int) []int {
	var freqs []int
	for _, f := range strings.Fields(s) {
		khz, err := strconv.Atoi(f)
		if err != nil || khz < minKHz {
			continue
		}
		freqs = append(freqs, khz)
	}
	sort.Ints(freqs)
	return freqs
}
