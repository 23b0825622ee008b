package ui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"vodbench/internal/bench"
	"vodbench/internal/progress"
)

// RunFunc runs the benchmark, emitting events to rep.
type RunFunc func(ctx context.Context, rep progress.Reporter) (bench.Result, error)

type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	title    string
	run      RunFunc
	jobOrder []string
	jobs     map[string]*jobState

	finished bool
	result   bench.Result
	err      error

	width, height int
	styles        Styles

	// Internal event channel used by reporter to feed tea messages
	eventCh chan tea.Msg
}

// NewModel builds a dashboard with one row per configuration ID.
func NewModel(ctx context.Context, title string, ids []string, run RunFunc) Model {
	c, cancel := context.WithCancel(ctx)
	sty := defaultStyles()

	jobs := make(map[string]*jobState, len(ids))
	order := make([]string, 0, len(ids))
	for _, id := range ids {
		js := newJobState(id, sty)
		jobs[id] = &js
		order = append(order, id)
	}
	return Model{
		ctx:      c,
		cancel:   cancel,
		title:    title,
		run:      run,
		jobs:     jobs,
		jobOrder: order,
		styles:   sty,
		eventCh:  make(chan tea.Msg, 256),
	}
}

func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	for _, id := range m.jobOrder {
		cmds = append(cmds, m.jobs[id].spinner.Tick)
	}
	cmds = append(cmds, m.listenEventsCmd())
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.cancel()
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case jobUpdateMsg:
		if js, ok := m.jobs[msg.U.JobID]; ok {
			js.apply(msg.U)
		}
	case jobLogMsg:
		if js, ok := m.jobs[msg.L.JobID]; ok {
			js.log(strings.TrimRight(msg.L.Line, "\r\n"))
		}
	case jobResultMsg:
		if js, ok := m.jobs[msg.R.JobID]; ok {
			js.finish(msg.R)
		}
	case benchDoneMsg:
		m.finished = true
		m.result = msg.Res
		m.err = msg.Err
		return m, tea.Quit
	case allDoneMsg:
		return m, tea.Quit
	}

	var cmds []tea.Cmd
	for _, id := range m.jobOrder {
		js := m.jobs[id]
		var c tea.Cmd
		js.spinner, c = js.spinner.Update(msg)
		if c != nil {
			cmds = append(cmds, c)
		}
	}
	// Keep listening for events
	cmds = append(cmds, m.listenEventsCmd())
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	return m.viewHeader() + "\n\n" + m.viewJobs()
}

func (m Model) listenEventsCmd() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
			return allDoneMsg{}
		case msg := <-m.eventCh:
			return msg
		}
	}
}

// startBench runs the benchmark in the background; its outcome arrives as
// benchDoneMsg. The returned channel is closed once run has returned.
func (m Model) startBench(out *benchDoneMsg) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		res, err := m.run(m.ctx, teaReporter{ctx: m.ctx, ch: m.eventCh})
		*out = benchDoneMsg{Res: res, Err: err}
		select {
		case m.eventCh <- *out:
		case <-m.ctx.Done():
		}
	}()
	return done
}

// teaReporter forwards progress events to the program. Progress updates are
// dropped when the channel is full; results and terminal stages are not.
type teaReporter struct {
	ctx context.Context
	ch  chan tea.Msg
}

func (r teaReporter) send(msg tea.Msg) {
	select {
	case r.ch <- msg:
	case <-r.ctx.Done():
	}
}

func (r teaReporter) Update(u progress.Update) {
	if u.Stage == progress.StageCompleted || u.Stage == progress.StageError {
		r.send(jobUpdateMsg{U: u})
		return
	}
	select {
	case r.ch <- jobUpdateMsg{U: u}:
	default:
	}
}

func (r teaReporter) Log(l progress.Log) {
	select {
	case r.ch <- jobLogMsg{L: l}:
	default:
	}
}

func (r teaReporter) Result(res progress.Result) {
	r.send(jobResultMsg{R: res})
}
