package cpu

import "testing"

func TestPercentile90(t *testing.T) {
	tests := []struct {
		name    string
		samples []int64
		want    int64
	}{
		{"empty", nil, 0},
		{"single", []int64{42}, 42},
		{"two", []int64{10, 20}, 20},
		{"ten sorted", []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 10},
		{"ten reversed", []int64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}, 10},
		{"outlier ignored", []int64{16, 16, 16, 16, 16, 16, 16, 16, 16, 16, 16, 16, 16, 16, 16, 16, 16, 16, 16, 500}, 16},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := percentile90(tc.samples); got != tc.want {
				t.Errorf("percentile90(%v) = %d, want %d", tc.samples, got, tc.want)
			}
		})
	}
}

func TestPercentile90DoesNotMutate(t *testing.T) {
	in := []int64{3, 1, 2}
	percentile90(in)
	if in[0] != 3 || in[1] != 1 || in[2] != 2 {
		t.Errorf("input mutated: %v", in)
	}
}

func TestFindNearestIndex(t *testing.T) {
	freqs := []int{400000, 600000, 800000, 1000000}
	tests := []struct {
		target int
		want   int
	}{
		{0, 0},
		{400000, 0},
		{499999, 0},
		{500000, 0}, // tie goes to the lowest index
		{550000, 1},
		{1000000, 3},
		{2000000, 3},
	}
	for _, tc := range tests {
		if got := findNearestIndex(freqs, tc.target); got != tc.want {
			t.Errorf("findNearestIndex(%d) = %d, want %d", tc.target, got, tc.want)
		}
	}
	if got := findNearestIndex(nil, 100); got != 0 {
		t.Errorf("empty slice: got %d, want 0", got)
	}
}
