package domain

import "errors"

// Construction-time validation errors. They are wrapped with details, so
// match them with errors.Is.
var (
	ErrEmptyStoryID      = errors.New("story id must not be empty")
	ErrInvalidPriority   = errors.New("priority must be positive")
	ErrInvalidArrivalDay = errors.New("arrival day must be positive")
	ErrEmptyTasks        = errors.New("story must have at least one task")
	ErrInvalidDuration   = errors.New("invalid phase duration")
	ErrUnknownPhase      = errors.New("unknown phase")
)
