package engine

import "errors"

// Validation errors are returned at construction or registration time.
// ErrPhaseMismatch signals corrupted routing and aborts a run.
var (
	ErrInvalidPlan     = errors.New("invalid resource plan")
	ErrPlanOverlap     = errors.New("resource plan overlaps an existing plan")
	ErrInvalidCapacity = errors.New("capacity must be positive")
	ErrDuplicateStory  = errors.New("duplicate story id")
	ErrNilStory        = errors.New("story must not be nil")
	ErrEntryPhase      = errors.New("story must start with a spec task")
	ErrInvalidDays     = errors.New("simulation days must be positive")
	ErrPhaseMismatch   = errors.New("story phase does not match step phase")
)
