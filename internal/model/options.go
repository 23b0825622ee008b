package model

import "time"

// SearchMode selects the per-segment decision algorithm.
type SearchMode string

const (
	SearchBinary SearchMode = "binary"
	SearchLinear SearchMode = "linear"
)

// BenchOptions holds user-configurable runtime options as resolved from flags, env and config file.
type BenchOptions struct {
	Input   string
	OutDir  string
	Verbose bool
	Jobs    int // Max concurrent configurations.

	FFmpegPath  string // Optional explicit path to ffmpeg.
	FFprobePath string // Optional explicit path to ffprobe.

	TargetQuality float64
	Resolutions   []int
	Variants      []Variant

	MinSegmentSec  float64
	MaxSegmentSec  float64
	SceneThreshold float64
	NoCache        bool

	// Search tuning; nil keeps the built-in value, so an explicit 0 is honored.
	BandWidth         *float64
	NarrowGap         *float64
	NarrowSpread      *float64
	ReserveBonusProbe bool

	Mode           SearchMode
	LinearBitrates []int

	Preprocess string // Optional external command run on the source first.

	ConfigTimeout time.Duration // 0 disables.
	KeepTemp      bool
	NoUI          bool
}

// Configurations expands the resolution × variant matrix in a stable order.
func (o BenchOptions) Configurations() []Configuration {
	out := make([]Configuration, 0, len(o.Resolutions)*len(o.Variants))
	for _, h := range o.Resolutions {
		for _, v := range o.Variants {
			out = append(out, Configuration{Height: h, Variant: v})
		}
	}
	return out
}
