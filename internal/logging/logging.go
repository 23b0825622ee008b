// Package logging builds the hclog loggers used across vodbench.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
)

// Name is the root logger name.
const Name = "vodbench"

// New returns the root logger writing to w. verbose lowers the level to Debug.
func New(w io.Writer, verbose bool) hclog.Logger {
	level := hclog.Info
	if verbose {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   Name,
		Level:  level,
		Output: w,
	})
}

// NewNoop returns a logger that discards everything.
func NewNoop() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   Name,
		Level:  hclog.Off,
		Output: io.Discard,
	})
}

// NewFile returns a logger appending to dir/vodbench.log and a closer for the file.
// Used while the TUI owns the terminal.
func NewFile(dir string, verbose bool) (hclog.Logger, io.Closer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, Name+".log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return New(f, verbose), f, nil
}
