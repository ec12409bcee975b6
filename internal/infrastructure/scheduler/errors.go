package scheduler

import "errors"

var (
	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid janitor configuration")

	// ErrNoTasks is returned when a janitor is started without tasks
	ErrNoTasks = errors.New("janitor has no tasks")
)
