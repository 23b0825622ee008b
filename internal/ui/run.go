package ui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"vodbench/internal/bench"
)

// Run shows the dashboard while run executes. It returns run's outcome,
// or the context error when the user quits first. In both cases it returns
// only after run has returned.
func Run(ctx context.Context, title string, ids []string, run RunFunc) (bench.Result, error) {
	return runProgram(ctx, NewModel(ctx, title, ids, run))
}

func runProgram(ctx context.Context, m Model, opts ...tea.ProgramOption) (bench.Result, error) {
	var out benchDoneMsg
	done := m.startBench(&out)

	prog := tea.NewProgram(m, append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)...)
	final, err := prog.Run()

	// Stop the benchmark if the dashboard ended first and let its cleanup finish.
	m.cancel()
	<-done

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return bench.Result{}, err
	}
	fm, ok := final.(Model)
	if !ok || !fm.finished {
		if err := ctx.Err(); err != nil {
			return bench.Result{}, err
		}
		return bench.Result{}, fmt.Errorf("benchmark interrupted: %w", context.Canceled)
	}
	return out.Res, out.Err
}
