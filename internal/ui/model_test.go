package ui

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"vodbench/internal/bench"
	"vodbench/internal/progress"
)

func ptr[T any](v T) *T { return &v }

func newTestModel() Model {
	run := func(context.Context, progress.Reporter) (bench.Result, error) { return bench.Result{}, nil }
	return NewModel(context.Background(), "clip.mp4", []string{"1080p-h264-software", "720p-h264-software"}, run)
}

func step(t *testing.T, m Model, msg any) Model {
	t.Helper()
	next, _ := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm
}

func TestModel_ProgressFlow(t *testing.T) {
	m := newTestModel()
	id := "1080p-h264-software"

	tests := []struct {
		name      string
		msg       any
		stage     progress.Stage
		percent   float64
		encodePct float64
	}{
		{name: "segmenting", msg: jobUpdateMsg{U: progress.Update{JobID: id, Stage: progress.StageSegmenting, Percent: 0, Message: "4 segments"}},
			stage: progress.StageSegmenting, percent: 0, encodePct: -1},
		{name: "probe start", msg: jobUpdateMsg{U: progress.Update{JobID: id, Stage: progress.StageProbing, Percent: -1, Segment: ptr(0), Kbps: ptr(5750)}},
			stage: progress.StageProbing, percent: 0, encodePct: -1},
		{name: "encode progress", msg: jobUpdateMsg{U: progress.Update{JobID: id, Stage: progress.StageProbing, Percent: 40, Segment: ptr(0), Kbps: ptr(5750), Speed: ptr("2.1x")}},
			stage: progress.StageProbing, percent: 0, encodePct: 40},
		{name: "next candidate resets encode", msg: jobUpdateMsg{U: progress.Update{JobID: id, Stage: progress.StageProbing, Percent: -1, Segment: ptr(0), Kbps: ptr(8000)}},
			stage: progress.StageProbing, percent: 0, encodePct: -1},
		{name: "segment decided", msg: jobUpdateMsg{U: progress.Update{JobID: id, Stage: progress.StageDeciding, Percent: 25, Message: "1/4 segments"}},
			stage: progress.StageDeciding, percent: 25, encodePct: -1},
	}
	for _, tt := range tests {
		m = step(t, m, tt.msg)
		js := m.jobs[id]
		if js.stage != tt.stage || js.percent != tt.percent || js.encodePct != tt.encodePct {
			t.Errorf("%s: stage=%s percent=%v encode=%v, want %s %v %v",
				tt.name, js.stage, js.percent, js.encodePct, tt.stage, tt.percent, tt.encodePct)
		}
	}
	if js := m.jobs[id]; js.speed != "2.1x" || js.kbps != 8000 {
		t.Errorf("speed=%q kbps=%d", js.speed, js.kbps)
	}
	if other := m.jobs["720p-h264-software"]; other.percent != -1 {
		t.Errorf("unrelated row changed: %+v", other.percent)
	}
}

func TestModel_Results(t *testing.T) {
	m := newTestModel()
	m = step(t, m, jobResultMsg{R: progress.Result{JobID: "1080p-h264-software", MeanKbps: 5200, UnderTarget: 1, Elapsed: 3 * time.Second}})
	m = step(t, m, jobResultMsg{R: progress.Result{JobID: "720p-h264-software", Err: errors.New("boom")}})

	ok, bad := m.jobs["1080p-h264-software"], m.jobs["720p-h264-software"]
	if !ok.done || ok.stage != progress.StageCompleted || ok.percent != 100 || ok.meanKbps != 5200 {
		t.Errorf("completed row = %+v", ok)
	}
	if !bad.done || bad.stage != progress.StageError || bad.status != "boom" {
		t.Errorf("failed row = %+v", bad)
	}

	view := m.View()
	for _, want := range []string{"2/2 done", "1 failed", "mean 5200 kbps", "1 under target", "boom"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}
}

func TestModel_BenchDone(t *testing.T) {
	m := newTestModel()
	want := errors.New("probe failed")
	next, cmd := m.Update(benchDoneMsg{Err: want})
	fm := next.(Model)
	if !fm.finished || !errors.Is(fm.err, want) {
		t.Errorf("finished=%v err=%v", fm.finished, fm.err)
	}
	if cmd == nil {
		t.Error("benchDoneMsg should quit the program")
	}
}

func TestTeaReporter_DropsProgressWhenFull(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rep := teaReporter{ctx: ctx, ch: make(chan tea.Msg, 1)}

	rep.Update(progress.Update{JobID: "a", Stage: progress.StageProbing, Percent: 10})
	rep.Update(progress.Update{JobID: "a", Stage: progress.StageProbing, Percent: 20}) // dropped
	if got := len(rep.ch); got != 1 {
		t.Fatalf("queued %d messages, want 1", got)
	}

	done := make(chan struct{})
	go func() {
		rep.Result(progress.Result{JobID: "a"})
		close(done)
	}()
	select {
	case <-done:
		t.Fatal("Result returned while the channel was full")
	case <-time.After(50 * time.Millisecond):
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Result did not return after cancel")
	}
}

func headless() []tea.ProgramOption {
	return []tea.ProgramOption{tea.WithInput(nil), tea.WithOutput(io.Discard)}
}

func TestRun_WaitsForCleanupOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var cleaned atomic.Bool
	run := func(ctx context.Context, _ progress.Reporter) (bench.Result, error) {
		defer func() {
			time.Sleep(100 * time.Millisecond)
			cleaned.Store(true)
		}()
		<-ctx.Done()
		return bench.Result{}, ctx.Err()
	}
	time.AfterFunc(50*time.Millisecond, cancel)

	_, err := runProgram(ctx, NewModel(ctx, "clip.mp4", []string{"1080p-h264-software"}, run), headless()...)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if !cleaned.Load() {
		t.Error("returned before the benchmark finished cleaning up")
	}
}

func TestRun_ReturnsBenchResult(t *testing.T) {
	want := bench.Result{}
	want.Report.TargetQuality = 95
	run := func(_ context.Context, rep progress.Reporter) (bench.Result, error) {
		rep.Result(progress.Result{JobID: "1080p-h264-software", MeanKbps: 4000})
		return want, nil
	}
	ctx := context.Background()
	got, err := runProgram(ctx, NewModel(ctx, "clip.mp4", []string{"1080p-h264-software"}, run), headless()...)
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if got.Report.TargetQuality != 95 {
		t.Errorf("Report = %+v", got.Report)
	}
}
