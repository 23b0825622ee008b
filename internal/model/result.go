package model

import "time"

// ConfigResult is the outcome of one configuration's pass over all segments.
// Decisions holds whatever was decided before a failure.
type ConfigResult struct {
	Configuration Configuration     `json:"configuration"`
	Decisions     []SegmentDecision `json:"decisions"`
	Err           error             `json:"-"`
	Error         string            `json:"error,omitempty"`
	Elapsed       time.Duration     `json:"elapsed_ns"`
}

// OK reports whether the configuration finished without error.
func (r ConfigResult) OK() bool {
	return r.Err == nil
}

// UnderTarget counts decisions that did not reach the target quality.
func (r ConfigResult) UnderTarget() int {
	n := 0
	for _, d := range r.Decisions {
		if !d.MetTarget {
			n++
		}
	}
	return n
}

// Probes returns the total number of probe encodes.
func (r ConfigResult) Probes() int {
	n := 0
	for _, d := range r.Decisions {
		n += d.ProbesUsed
	}
	return n
}

// Bitrates returns the chosen bitrates and segment durations in segment order.
func (r ConfigResult) Bitrates() (kbps []int, durations []float64) {
	kbps = make([]int, len(r.Decisions))
	durations = make([]float64, len(r.Decisions))
	for i, d := range r.Decisions {
		kbps[i] = d.ChosenBitrateKbps
		durations[i] = d.Segment.Duration
	}
	return kbps, durations
}
