package encoder

import (
	"strconv"
	"strings"

	"vodbench/internal/progress"
)

// ProgressState tracks ffmpeg -progress key/value output across lines.
type ProgressState struct {
	OutTimeUs int64
	SpeedStr  string
}

// UpdateFromLine consumes one line and returns an update whenever a
// progress= marker closes a block. durationSec is the encoded segment's length.
func (ps *ProgressState) UpdateFromLine(line string, jobID string, durationSec float64) (u progress.Update, ok bool) {
	key, val, found := strings.Cut(line, "=")
	if !found {
		return progress.Update{}, false
	}
	key = strings.TrimSpace(key)
	val = strings.TrimSpace(val)

	switch key {
	case "out_time_us", "out_time_ms":
		// Both keys carry microseconds.
		if v, err := strconv.ParseInt(val, 10, 64); err == nil {
			ps.OutTimeUs = v
		}
	case "speed":
		ps.SpeedStr = val
	case "progress":
		percent := -1.0
		if durationSec > 0 {
			percent = float64(ps.OutTimeUs) / (durationSec * 1_000_000) * 100
			if percent > 100 || val == "end" {
				percent = 100
			}
			if percent < 0 {
				percent = 0
			}
		}

		var speedPtr *string
		if ps.SpeedStr != "" && ps.SpeedStr != "N/A" {
			s := ps.SpeedStr
			speedPtr = &s
		}

		return progress.Update{
			JobID:   jobID,
			Stage:   progress.StageProbing,
			Percent: percent,
			Speed:   speedPtr,
		}, true
	}
	return progress.Update{}, false
}
