// Package search decides a bitrate per segment by probing encodes against a quality target.
package search

import (
	"context"
	"errors"

	"vodbench/internal/model"
)

// Job identifies the segment and configuration an encode belongs to.
type Job struct {
	Input   string
	Segment model.Segment
	Height  int
	Variant model.Variant
	WorkDir string
}

// Handle refers to an encoded artifact produced by a Collaborator.
type Handle struct {
	Path        string
	BitrateKbps int // 0 for the reference encode.
}

// Collaborator performs the encodes and quality measurements the engine asks for.
type Collaborator interface {
	EncodeReference(ctx context.Context, job Job) (Handle, error)
	EncodeCandidate(ctx context.Context, job Job, bitrateKbps int) (Handle, error)
	ScoreQuality(ctx context.Context, candidate, reference Handle) (float64, error)
}

// opError wraps err as a *model.OperationError unless it already is one
// or is a context error.
func opError(op string, err error) error {
	var oe *model.OperationError
	if errors.As(err, &oe) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &model.OperationError{Op: op, Err: err}
}
