// Package source reads the properties of the benchmark input with ffprobe.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"

	"vodbench/internal/model"
	"vodbench/internal/util"
)

// Info describes the primary video stream of a source file.
type Info struct {
	Path        string  `json:"path"`
	DurationSec float64 `json:"duration_sec"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Codec       string  `json:"codec"`
	FrameRate   string  `json:"frame_rate,omitempty"`
	BitRate     int64   `json:"bit_rate,omitempty"` // bits/sec; stream value, else container value
	Size        int64   `json:"size,omitempty"`
}

// Prober runs ffprobe through a CmdRunner.
type Prober struct {
	FFprobePath string
	Runner      util.CmdRunner
	Logger      hclog.Logger
}

// Probe returns the source's duration and primary video stream.
// A file without video or with a non-positive duration is a configuration error.
func (p Prober) Probe(ctx context.Context, path string) (Info, error) {
	if p.FFprobePath == "" {
		return Info{}, fmt.Errorf("%w: ffprobe path is required", model.ErrConfiguration)
	}
	runner := p.Runner
	if runner == nil {
		runner = util.NewDefaultRunner()
	}
	res, err := runner.Run(ctx, util.CmdSpec{
		Path: p.FFprobePath,
		Args: []string{
			"-v", "quiet",
			"-print_format", "json",
			"-show_format", "-show_streams",
			path,
		},
		Logger:        p.Logger,
		CaptureStdout: true,
	})
	if err != nil {
		return Info{}, &model.OperationError{Op: "probe", Err: fmt.Errorf("ffprobe %q: %w", path, err)}
	}
	info, err := ParseJSON(res.Stdout)
	if err != nil {
		return Info{}, &model.OperationError{Op: "probe", Err: err}
	}
	info.Path = path
	if info.Height <= 0 {
		return Info{}, fmt.Errorf("%w: %s has no video stream", model.ErrConfiguration, path)
	}
	if info.DurationSec <= 0 {
		return Info{}, fmt.Errorf("%w: %s has no usable duration", model.ErrConfiguration, path)
	}
	return info, nil
}

// ParseJSON converts ffprobe JSON output into Info. Exported for testing without ffprobe.
func ParseJSON(data []byte) (Info, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return Info{}, fmt.Errorf("parse ffprobe JSON: %w", err)
	}

	info := Info{
		DurationSec: parseFloat(raw.Format.Duration),
		Size:        parseInt64(raw.Format.Size),
		BitRate:     parseInt64(raw.Format.BitRate),
	}
	for _, s := range raw.Streams {
		if s.CodecType != "video" || s.Disposition["attached_pic"] == 1 {
			continue
		}
		info.Width, info.Height = s.Width, s.Height
		info.Codec = s.CodecName
		info.FrameRate = s.AvgFrameRate
		if br := parseInt64(s.BitRate); br > 0 {
			info.BitRate = br
		}
		if info.DurationSec <= 0 {
			info.DurationSec = parseFloat(s.Duration)
		}
		break
	}
	return info, nil
}

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
	Size     string `json:"size"`
	BitRate  string `json:"bit_rate"`
}

type ffprobeStream struct {
	CodecName    string         `json:"codec_name"`
	CodecType    string         `json:"codec_type"`
	Width        int            `json:"width"`
	Height       int            `json:"height"`
	BitRate      string         `json:"bit_rate"`
	Duration     string         `json:"duration"`
	AvgFrameRate string         `json:"avg_frame_rate"`
	Disposition  map[string]int `json:"disposition"`
}

// parseInt64 and parseFloat read ffprobe's string-encoded numbers; malformed values read as 0.
func parseInt64(s string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}
