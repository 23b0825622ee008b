package model

import "fmt"

// Segment is a contiguous time slice of the source, decided and encoded independently.
type Segment struct {
	Index    int     `json:"index"`
	Start    float64 `json:"start"`    // Seconds from the start of the source.
	Duration float64 `json:"duration"` // Seconds.
	End      float64 `json:"end"`      // Start + Duration.
}

// String renders the segment as "#i [start, end)".
func (s Segment) String() string {
	return fmt.Sprintf("#%d [%.3f, %.3f)", s.Index, s.Start, s.End)
}

// ResolutionStrategy is the bitrate search envelope and probe budget of a resolution tier.
type ResolutionStrategy struct {
	Height    int `json:"height" mapstructure:"height"`
	MinKbps   int `json:"min_kbps" mapstructure:"min_kbps"`
	MaxKbps   int `json:"max_kbps" mapstructure:"max_kbps"`
	MaxProbes int `json:"max_probes" mapstructure:"max_probes"`
}

// Range is a bitrate search interval in kbps.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether kbps lies inside the closed interval.
func (r Range) Contains(kbps float64) bool {
	return kbps >= r.Min && kbps <= r.Max
}

// ProbeResult is one trial encode of a segment and its quality score.
type ProbeResult struct {
	BitrateKbps int     `json:"bitrate_kbps"`
	Score       float64 `json:"score"`
	Elapsed     float64 `json:"elapsed_sec"`
}

// SegmentDecision is the outcome of a bitrate search for one segment.
type SegmentDecision struct {
	Segment           Segment       `json:"segment"`
	ChosenBitrateKbps int           `json:"chosen_bitrate_kbps"`
	EstimatedQuality  float64       `json:"estimated_quality"`
	ProbesUsed        int           `json:"probes_used"` // Excludes the reference encode.
	ProbeTimeSeconds  float64       `json:"probe_time_sec"`
	MetTarget         bool          `json:"met_target"`
	Range             Range         `json:"range"`
	Probes            []ProbeResult `json:"probes,omitempty"`
}
