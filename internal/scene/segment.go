// Package scene turns detected scene cuts into bounded, gap-free segments.
package scene

import (
	"fmt"
	"slices"

	"vodbench/internal/model"
)

// Epsilon absorbs floating-point drift when comparing timestamps.
const Epsilon = 1e-6

// BuildSegments partitions [0, totalDuration) into segments whose ends fall
// on scene cuts where possible. Each segment ends at the last cut inside
// [start+minDur, min(start+maxDur, totalDuration)], or is forced to the
// window end when no cut lies inside it. Only the final segment may be
// shorter than minDur.
//
// cuts need not be sorted or unique; the slice is not modified.
// totalDuration <= 0 yields no segments.
func BuildSegments(cuts []float64, totalDuration, minDur, maxDur float64) ([]model.Segment, error) {
	if minDur <= 0 || maxDur < minDur {
		return nil, fmt.Errorf("%w: segment bounds min=%.3f max=%.3f", model.ErrConfiguration, minDur, maxDur)
	}
	if totalDuration <= 0 {
		return nil, nil
	}

	sorted := slices.Clone(cuts)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	var segs []model.Segment
	curStart := 0.0
	i := 0 // first cut not yet consumed
	for totalDuration-curStart > Epsilon {
		lo := curStart + minDur
		hi := min(curStart+maxDur, totalDuration)

		end := hi
		for i < len(sorted) && sorted[i] <= curStart+Epsilon {
			i++
		}
		for j := i; j < len(sorted) && sorted[j] <= hi+Epsilon; j++ {
			if sorted[j] >= lo-Epsilon {
				end = sorted[j]
			}
		}
		if totalDuration-end <= Epsilon {
			end = totalDuration
		}

		segs = append(segs, model.Segment{
			Index:    len(segs),
			Start:    curStart,
			Duration: end - curStart,
			End:      end,
		})
		curStart = end
	}
	return segs, nil
}
