package cpu

import "sort"

// percentile90 returns the 90th percentile of samples by sorting a
// copy. Outliers above p90 are deliberately ignored so a rare spike
// doesn't force a boost.
func percentile90(samples []int64) int64 {
	n := len(samples)
	if n == 0 {
		return 0
	}
	sorted := make([]int64, n)
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := n * 90 / 100
	if idx > n-1 {
		idx = n - 1
	}
	return sorted[idx]
}

// findNearestIndex returns the lowest index minimizing |freqs[i]-target|.
// An empty slice yields 0.
func findNearestIndex(freqs []int, target int) int {
	best, bestDiff := 0, -1
	for i, f := range freqs {
		diff := f - target
		if diff < 0 {
			diff = -diff
		}
		if bestDiff < 0 || diff < bestDiff {
			best, bestDiff = i, diff
		}
	}
	return best
}
