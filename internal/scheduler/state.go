package scheduler

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrDeadlineExceeded is matched by every DeadlineError.
var ErrDeadlineExceeded = errors.New("sources not found within deadline")

// State represents the scheduler state
type State int

const (
	StateAwaitingSources State = iota
	StateProcessing
	StateDone
	StateTimedOut
	StateCanceled
	StateFailed
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateAwaitingSources:
		return "awaiting-sources"
	case StateProcessing:
		return "processing"
	case StateDone:
		return "done"
	case StateTimedOut:
		return "timed-out"
	case StateCanceled:
		return "canceled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool {
	return s == StateDone || s == StateTimedOut || s == StateCanceled || s == StateFailed
}

// DeadlineError names the inputs still pending when the timeout elapsed.
type DeadlineError struct {
	Missing []string
	Timeout time.Duration
}

func (e *DeadlineError) Error() string {
	return fmt.Sprintf("%v (%s): %s", ErrDeadlineExceeded, e.Timeout, strings.Join(e.Missing, ", "))
}

func (e *DeadlineError) Unwrap() error {
	return ErrDeadlineExceeded
}
