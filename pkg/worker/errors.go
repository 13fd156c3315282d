package worker

import "errors"

var (
	// ErrNotStarted is returned by Submit before Start has been called.
	ErrNotStarted = errors.New("queue not started")

	// ErrAlreadyStarted is returned by Start on a running queue.
	ErrAlreadyStarted = errors.New("queue already started")

	// ErrStopped is returned by Submit after Stop has closed intake.
	ErrStopped = errors.New("queue stopped")

	// ErrQueueFull is returned by Submit when the buffer is at capacity.
	ErrQueueFull = errors.New("queue full")

	// ErrStopTimeout is returned by Stop when the consumer does not drain
	// within the given timeout.
	ErrStopTimeout = errors.New("stop timeout exceeded")

	// ErrNilHandler causes NewQueue to panic; a queue without a handler
	// is a programming error, not a runtime condition.
	ErrNilHandler = errors.New("handler function cannot be nil")
)
