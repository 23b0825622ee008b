package scene

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"

	"vodbench/internal/model"
	"vodbench/internal/util"
)

// DefaultThreshold is the ffmpeg scene score above which a frame counts as a cut.
const DefaultThreshold = 0.4

var rePtsTime = regexp.MustCompile(`pts_time:\s*([0-9]+(?:\.[0-9]+)?)`)

// Detector finds scene cuts with ffmpeg's scene score and showinfo filter.
type Detector struct {
	FFmpegPath string
	Runner     util.CmdRunner
	Threshold  float64
	Logger     hclog.Logger
}

// Detect returns ascending unique cut timestamps (seconds) for input.
func (d Detector) Detect(ctx context.Context, input string) ([]float64, error) {
	if d.FFmpegPath == "" {
		return nil, fmt.Errorf("%w: ffmpeg path is required", model.ErrConfiguration)
	}
	threshold := d.Threshold
	if threshold <= 0 || threshold >= 1 {
		threshold = DefaultThreshold
	}
	runner := d.Runner
	if runner == nil {
		runner = util.NewDefaultRunner()
	}

	res, err := runner.Run(ctx, util.CmdSpec{
		Path: d.FFmpegPath,
		Args: []string{
			"-hide_banner", "-nostats",
			"-i", input,
			"-an", "-sn",
			"-filter:v", fmt.Sprintf("select='gt(scene,%.3f)',showinfo", threshold),
			"-f", "null", "-",
		},
		Logger: d.Logger,
	})
	if err != nil {
		return nil, &model.OperationError{Op: "scene-detect", Err: err}
	}
	cuts := ParseShowinfo(string(res.Stderr))
	if d.Logger != nil {
		d.Logger.Debug("scene cuts detected", "input", input, "count", len(cuts), "threshold", threshold)
	}
	return cuts, nil
}

// ParseShowinfo extracts pts_time values from showinfo filter output.
func ParseShowinfo(stderr string) []float64 {
	var cuts []float64
	for _, line := range strings.Split(stderr, "\n") {
		if !strings.Contains(line, "showinfo") {
			continue
		}
		m := rePtsTime.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil || v <= 0 {
			continue
		}
		cuts = append(cuts, v)
	}
	slices.Sort(cuts)
	return slices.Compact(cuts)
}
