package model

import "errors"

// ErrConfiguration marks fatal input or setup problems. Never retried.
var ErrConfiguration = errors.New("configuration error")

// OperationError wraps a failure of an external encode/score operation.
type OperationError struct {
	Op  string // "reference", "candidate", "score", ...
	Err error
}

func (e *OperationError) Error() string {
	if e.Err == nil {
		return e.Op + ": failed"
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *OperationError) Unwrap() error {
	return e.Err
}
