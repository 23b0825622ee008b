package ui

import (
	"time"

	bubblesprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"

	"vodbench/internal/progress"
)

// jobState is the dashboard row of one configuration.
type jobState struct {
	id     string
	stage  progress.Stage
	status string
	err    error
	done   bool

	percent   float64 // Segments decided, 0..100; -1 means not started.
	encodePct float64 // Current candidate encode; -1 means unknown.
	segment   int     // -1 until a segment is in flight.
	kbps      int
	score     float64
	hasScore  bool
	speed     string

	meanKbps    int
	underTarget int
	elapsed     time.Duration

	spinner spinner.Model
	bar     bubblesprogress.Model

	logsRing []string
}

func newJobState(id string, styles Styles) jobState {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner
	bar := bubblesprogress.New(
		bubblesprogress.WithDefaultGradient(),
		bubblesprogress.WithWidth(40),
	)
	return jobState{
		id:        id,
		stage:     progress.StageSegmenting,
		status:    "Queued",
		percent:   -1,
		encodePct: -1,
		segment:   -1,
		spinner:   sp,
		bar:       bar,
	}
}

const maxLogLines = 200

// apply folds one progress event into the row.
func (js *jobState) apply(u progress.Update) {
	js.stage = u.Stage
	if u.Message != "" {
		js.status = u.Message
	}
	switch u.Stage {
	case progress.StageProbing:
		if u.Percent >= 0 {
			js.encodePct = u.Percent
		}
	case progress.StageReference:
		js.encodePct = -1
	default:
		if u.Percent >= 0 {
			js.percent = u.Percent
		}
	}
	if u.Segment != nil {
		js.segment = *u.Segment
	}
	if u.Kbps != nil {
		if *u.Kbps != js.kbps {
			js.encodePct = -1
		}
		js.kbps = *u.Kbps
	}
	if u.Score != nil {
		js.score = *u.Score
		js.hasScore = true
	}
	if u.Speed != nil {
		js.speed = *u.Speed
	}
}

func (js *jobState) log(line string) {
	if len(js.logsRing) >= maxLogLines {
		js.logsRing = js.logsRing[1:]
	}
	js.logsRing = append(js.logsRing, line)
}

func (js *jobState) finish(r progress.Result) {
	js.done = true
	js.err = r.Err
	js.elapsed = r.Elapsed
	js.encodePct = -1
	if r.Err != nil {
		js.stage = progress.StageError
		js.status = r.Err.Error()
		return
	}
	js.stage = progress.StageCompleted
	js.percent = 100
	js.meanKbps = r.MeanKbps
	js.underTarget = r.UnderTarget
}
