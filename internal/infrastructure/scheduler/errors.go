package scheduler

import "errors"

var (
	// ErrInvalidConfig is returned when a schedule cannot be parsed
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrUnknownJob is returned by RunNow for a name that was never registered
	ErrUnknownJob = errors.New("unknown scheduler job")
)
