// Package report exports benchmark results as JSON, HLS playlists and a text summary.
package report

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"vodbench/internal/model"
	"vodbench/internal/source"
	"vodbench/internal/util"
	"vodbench/internal/util/bitrate"
)

// Report is everything a benchmark run produced.
type Report struct {
	Source        source.Info          `json:"source"`
	TargetQuality float64              `json:"target_quality"`
	Mode          model.SearchMode     `json:"mode"`
	Segments      []model.Segment      `json:"segments"`
	Results       []model.ConfigResult `json:"results"`
	GeneratedAt   time.Time            `json:"generated_at"`
	Elapsed       time.Duration        `json:"elapsed_ns"`
}

// Failed counts configurations that ended with an error.
func (r Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if !res.OK() {
			n++
		}
	}
	return n
}

// MeanKbps is the duration-weighted mean bitrate of a configuration's plan.
func MeanKbps(res model.ConfigResult) int {
	return bitrate.WeightedMeanKbps(res.Bitrates())
}

// EstimatedBytes is the size of the whole plan at its chosen bitrates.
func EstimatedBytes(res model.ConfigResult) int64 {
	var total int64
	for _, d := range res.Decisions {
		total += bitrate.EstimateBytes(d.ChosenBitrateKbps, d.Segment.Duration)
	}
	return total
}

// WriteJSON writes the report as indented JSON to path.
func WriteJSON(path string, r Report) error {
	r.Results = append([]model.ConfigResult(nil), r.Results...)
	for i := range r.Results {
		if err := r.Results[i].Err; err != nil {
			r.Results[i].Error = err.Error()
		}
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return util.WriteFileAtomic(path, append(data, '\n'))
}

// Files lists what WriteAll produced.
type Files struct {
	JSON      string
	Summary   string
	Master    string
	Playlists []string
}

// WriteAll writes report.json, summary.txt, one media playlist per successful
// configuration and a master playlist referencing them into dir.
func WriteAll(dir string, r Report) (Files, error) {
	var files Files
	if err := util.EnsureDir(dir); err != nil {
		return files, fmt.Errorf("create report dir: %w", err)
	}

	files.JSON = filepath.Join(dir, "report.json")
	if err := WriteJSON(files.JSON, r); err != nil {
		return files, err
	}

	playlists, err := WritePlaylists(filepath.Join(dir, "hls"), r)
	if err != nil {
		return files, err
	}
	files.Playlists = playlists.Media
	files.Master = playlists.Master

	files.Summary = filepath.Join(dir, "summary.txt")
	if err := util.WriteFileAtomic(files.Summary, []byte(PlainSummary(r))); err != nil {
		return files, fmt.Errorf("write summary: %w", err)
	}
	return files, nil
}
