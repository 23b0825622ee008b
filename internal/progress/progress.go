// Package progress defines the events a benchmark run emits to observers such as the TUI.
package progress

import "time"

// Stage identifies a high-level step of a configuration's run.
type Stage string

const (
	StageSegmenting Stage = "segmenting"
	StageReference  Stage = "reference"
	StageProbing    Stage = "probing"
	StageDeciding   Stage = "deciding"
	StageCompleted  Stage = "completed"
	StageError      Stage = "error"
)

// LogStream indicates which stream produced a log line.
type LogStream int

const (
	StreamStdout LogStream = iota
	StreamStderr
)

// Update conveys progress or stage changes for a configuration.
// Percent is 0..100 when known; set to a negative value (e.g., -1) to mean unknown.
type Update struct {
	JobID   string
	Stage   Stage
	Percent float64 // 0..100, or <0 if unknown

	Segment *int           // optional index of the segment in flight
	Kbps    *int           // optional candidate bitrate
	Score   *float64       // optional latest quality score
	ETA     *time.Duration // optional
	Speed   *string        // optional, e.g. "1.2x"
	Message string         // short human-friendly status line
}

// Log is a log line associated with a configuration.
type Log struct {
	JobID  string
	Stream LogStream
	Line   string
}

// Result is emitted once per configuration when it completes or fails.
type Result struct {
	JobID       string
	Segments    int
	MeanKbps    int
	UnderTarget int // Segments whose decision did not reach the target.
	Elapsed     time.Duration
	Err         error // nil on success
}

// Reporter is implemented by UI or any observer interested in progress events.
type Reporter interface {
	Update(u Update)
	Log(l Log)
	Result(r Result)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Update(Update) {}
func (Nop) Log(Log)       {}
func (Nop) Result(Result) {}

// OrNop returns r, or Nop when r is nil.
func OrNop(r Reporter) Reporter {
	if r == nil {
		return Nop{}
	}
	return r
}
