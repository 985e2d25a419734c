package common

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"gputrace/internal/gfx"
)

// ErrorLogger keeps every error passed to Error and forwards all output to
// the wrapped Logger.
type ErrorLogger struct {
	Logger

	mu   sync.Mutex
	errs []error
}

// NewErrorLogger wraps next; a nil next discards output.
func NewErrorLogger(next Logger) *ErrorLogger {
	if next == nil {
		next = NewNoOpLogger()
	}
	return &ErrorLogger{Logger: next}
}

// Error records err and forwards it.
func (e *ErrorLogger) Error(err error) {
	if err == nil {
		return
	}
	e.mu.Lock()
	e.errs = append(e.errs, err)
	e.mu.Unlock()
	e.Logger.Error(err)
}

// Zerolog returns the zerolog logger behind the wrapped Logger, or nil.
func (e *ErrorLogger) Zerolog() *zerolog.Logger {
	if zl, ok := e.Logger.(interface{ Zerolog() *zerolog.Logger }); ok {
		return zl.Zerolog()
	}
	return nil
}

// LastError returns the most recent error
func (e *ErrorLogger) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.errs) == 0 {
		return nil
	}
	return e.errs[len(e.errs)-1]
}

// Errors returns a copy of the recorded errors in arrival order.
func (e *ErrorLogger) Errors() []error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]error(nil), e.errs...)
}

// Count returns how many recorded errors carry code.
func (e *ErrorLogger) Count(code gfx.Err) int {
	target := NewError(gfx.ErrSevError, code)
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, err := range e.errs {
		if errors.Is(err, target) {
			n++
		}
	}
	return n
}
