package ui

import (
	"vodbench/internal/bench"
	"vodbench/internal/progress"
)

type jobUpdateMsg struct {
	U progress.Update
}

type jobLogMsg struct {
	L progress.Log
}

type jobResultMsg struct {
	R progress.Result
}

// benchDoneMsg carries the outcome of the whole run.
type benchDoneMsg struct {
	Res bench.Result
	Err error
}

type allDoneMsg struct{}
