package pipe

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrAlreadyStarted is returned when Run or Use is called
	// on a stage that has already been started.
	ErrAlreadyStarted = errors.New("pipe: already started")

	// ErrStalled indicates that a stage received nothing within its timeout.
	ErrStalled = errors.New("pipe: stalled")
)

// StallError reports a stage that gave up waiting for input.
// It matches ErrStalled.
type StallError struct {
	Stage   string
	Timeout time.Duration
}

func (e *StallError) Error() string {
	return fmt.Sprintf("pipe: %s stalled: no input within %v", e.Stage, e.Timeout)
}

func (e *StallError) Unwrap() error {
	return ErrStalled
}
