package bitrate

import "math"

// Clamp returns v constrained to [min, max].
func Clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// ClampFloat returns v constrained to [min, max].
func ClampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// RoundKbps rounds a kbps value to the nearest integer, halves away from zero.
func RoundKbps(v float64) int {
	return int(math.Round(v))
}

// EstimateBytes returns the stream size of durationSec seconds at kbps.
func EstimateBytes(kbps int, durationSec float64) int64 {
	if kbps <= 0 || durationSec <= 0 {
		return 0
	}
	return int64(float64(kbps) * 1000 / 8 * durationSec)
}

// WeightedMeanKbps averages kbps values weighted by segment durations.
// Returns 0 when the slices are empty, mismatched, or the total weight is not positive.
func WeightedMeanKbps(kbps []int, durations []float64) int {
	if len(kbps) == 0 || len(kbps) != len(durations) {
		return 0
	}
	var sum, total float64
	for i, k := range kbps {
		if durations[i] <= 0 {
			continue
		}
		sum += float64(k) * durations[i]
		total += durations[i]
	}
	if total <= 0 {
		return 0
	}
	return RoundKbps(sum / total)
}
