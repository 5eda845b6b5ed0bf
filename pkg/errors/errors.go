// Package errors defines the sentinel errors shared across the matcher and
// the frequency-source providers, plus a compile-failure wrapper that carries
// the synthesized expression as a diagnostic.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrCompileFailed     = errors.New("expression compilation failed")
	ErrUnknownBackend    = errors.New("unknown matcher backend")
	ErrInvalidPredicate  = errors.New("invalid match predicate")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrSourceUnavailable = errors.New("frequency source unavailable")
)

// CompileError reports a failed backend compilation. A compile failure is
// fatal to the attempt; there is no partial or degraded backend.
type CompileError struct {
	Backend string
	Expr    string
	Err     error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: %s backend, expr %q: %s",
		ErrCompileFailed.Error(), e.Backend, e.Expr, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrCompileFailed) succeed for any CompileError.
func (e *CompileError) Is(target error) bool {
	return target == ErrCompileFailed
}

// NewCompileError wraps a backend compilation failure with the offending
// expression.
func NewCompileError(backend, expr string, err error) *CompileError {
	return &CompileError{Backend: backend, Expr: expr, Err: err}
}
