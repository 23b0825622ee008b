package bitrate

import "testing"

func TestClamp(t *testing.T) {
	tests := []struct {
		name string
		v    int
		min  int
		max  int
		want int
	}{
		{name: "value in range", v: 50, min: 0, max: 100, want: 50},
		{name: "value below min", v: -10, min: 0, max: 100, want: 0},
		{name: "value above max", v: 150, min: 0, max: 100, want: 100},
		{name: "value equals min", v: 0, min: 0, max: 100, want: 0},
		{name: "value equals max", v: 100, min: 0, max: 100, want: 100},
		{name: "single value range", v: 50, min: 42, max: 42, want: 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clamp(tt.v, tt.min, tt.max)
			if got != tt.want {
				t.Errorf("Clamp(%d, %d, %d) = %v, want %v", tt.v, tt.min, tt.max, got, tt.want)
			}
		})
	}
}

func TestClampFloat(t *testing.T) {
	if got := ClampFloat(120.5, 0, 100); got != 100 {
		t.Errorf("ClampFloat above = %v, want 100", got)
	}
	if got := ClampFloat(-3, 0, 100); got != 0 {
		t.Errorf("ClampFloat below = %v, want 0", got)
	}
	if got := ClampFloat(42.25, 0, 100); got != 42.25 {
		t.Errorf("ClampFloat inside = %v, want 42.25", got)
	}
}

func TestRoundKbps(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{in: 5750, want: 5750},
		{in: 8937.5, want: 8938},
		{in: 9535.49, want: 9535},
		{in: 0.4, want: 0},
	}
	for _, tt := range tests {
		if got := RoundKbps(tt.in); got != tt.want {
			t.Errorf("RoundKbps(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestEstimateBytes(t *testing.T) {
	tests := []struct {
		name     string
		kbps     int
		duration float64
		want     int64
	}{
		{name: "8 Mbps for 10s", kbps: 8000, duration: 10, want: 10_000_000},
		{name: "fractional duration", kbps: 1000, duration: 2.5, want: 312_500},
		{name: "zero duration", kbps: 1000, duration: 0, want: 0},
		{name: "negative bitrate", kbps: -1, duration: 10, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateBytes(tt.kbps, tt.duration); got != tt.want {
				t.Errorf("EstimateBytes(%d, %v) = %d, want %d", tt.kbps, tt.duration, got, tt.want)
			}
		})
	}
}

func TestWeightedMeanKbps(t *testing.T) {
	tests := []struct {
		name      string
		kbps      []int
		durations []float64
		want      int
	}{
		{name: "equal weights", kbps: []int{1000, 3000}, durations: []float64{5, 5}, want: 2000},
		{name: "long segment dominates", kbps: []int{1000, 4000}, durations: []float64{9, 1}, want: 1300},
		{name: "mismatched lengths", kbps: []int{1000}, durations: []float64{1, 2}, want: 0},
		{name: "empty", want: 0},
		{name: "zero weights skipped", kbps: []int{1000, 9000}, durations: []float64{0, 4}, want: 9000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeightedMeanKbps(tt.kbps, tt.durations); got != tt.want {
				t.Errorf("WeightedMeanKbps() = %d, want %d", got, tt.want)
			}
		})
	}
}
