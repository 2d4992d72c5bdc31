package domain

import "fmt"

// DefaultFeatureID groups stories that were not given a feature.
const DefaultFeatureID = "default_feature"

// StoryStatus is the state of a story's work cycle.
type StoryStatus int

const (
	// StatusPending waits to be admitted into work in progress.
	StatusPending StoryStatus = iota
	// StatusInProgress is being worked on by a step.
	StatusInProgress
	// StatusPhaseDone finished its current run of same-phase tasks and must
	// be routed to another step before it can continue.
	StatusPhaseDone
	// StatusDone has no tasks left.
	StatusDone
)

// String returns the lowercase status name.
func (s StoryStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusInProgress:
		return "in_progress"
	case StatusPhaseDone:
		return "phase_done"
	case StatusDone:
		return "done"
	default:
		return fmt.Sprintf("StoryStatus(%d)", int(s))
	}
}

// UserStory is an ordered sequence of tasks worked one per day. The task
// order may revisit earlier phases, which models rework.
type UserStory struct {
	id         string
	featureID  string
	arrivalDay int
	priority   int
	tasks      []Task
	current    int
	status     StoryStatus
}

// StoryOption customizes a story at construction.
type StoryOption func(*UserStory)

// WithArrivalDay sets the first day the story may leave the backlog.
func WithArrivalDay(day int) StoryOption {
	return func(s *UserStory) { s.arrivalDay = day }
}

// WithPriority sets the story priority (informational, FIFO still applies).
func WithPriority(priority int) StoryOption {
	return func(s *UserStory) { s.priority = priority }
}

// WithFeature sets the feature grouping label.
func WithFeature(featureID string) StoryOption {
	return func(s *UserStory) {
		if featureID != "" {
			s.featureID = featureID
		}
	}
}

// NewUserStory creates a story from an explicit ordered phase list, one
// task per entry. Phases may repeat in any order.
func NewUserStory(id string, phases []Phase, opts ...StoryOption) (*UserStory, error) {
	s := &UserStory{
		id:         id,
		featureID:  DefaultFeatureID,
		arrivalDay: 1,
		priority:   1,
	}
	for _, opt := range opts {
		opt(s)
	}

	if id == "" {
		return nil, ErrEmptyStoryID
	}
	if s.priority <= 0 {
		return nil, fmt.Errorf("%w: story %s has priority %d", ErrInvalidPriority, id, s.priority)
	}
	if s.arrivalDay <= 0 {
		return nil, fmt.Errorf("%w: story %s has arrival day %d", ErrInvalidArrivalDay, id, s.arrivalDay)
	}
	if len(phases) == 0 {
		return nil, fmt.Errorf("%w: story %s", ErrEmptyTasks, id)
	}

	s.tasks = make([]Task, len(phases))
	for i, phase := range phases {
		if !phase.Valid() {
			return nil, fmt.Errorf("%w: story %s task %d has phase %d", ErrUnknownPhase, id, i, int(phase))
		}
		s.tasks[i] = NewTask(phase)
	}
	return s, nil
}

// FromPhaseDurations creates a story from a phase -> day-count mapping,
// expanded in pipeline order.
func FromPhaseDurations(id string, durations PhaseDurations, opts ...StoryOption) (*UserStory, error) {
	if err := durations.Validate(); err != nil {
		return nil, fmt.Errorf("story %s: %w", id, err)
	}
	return NewUserStory(id, durations.Expand(), opts...)
}

// ID returns the story identifier.
func (s *UserStory) ID() string { return s.id }

// FeatureID returns the feature grouping label.
func (s *UserStory) FeatureID() string { return s.featureID }

// ArrivalDay returns the first day the story may leave the backlog.
func (s *UserStory) ArrivalDay() int { return s.arrivalDay }

// Priority returns the story priority.
func (s *UserStory) Priority() int { return s.priority }

// Status returns the current status.
func (s *UserStory) Status() StoryStatus { return s.status }

// CurrentTaskIndex returns the index of the next task to work.
// It equals TotalTasks once the story is done.
func (s *UserStory) CurrentTaskIndex() int { return s.current }

// TotalTasks returns the number of tasks in the story.
func (s *UserStory) TotalTasks() int { return len(s.tasks) }

// CompletedTasks returns the number of tasks already done.
func (s *UserStory) CompletedTasks() int { return s.current }

// Tasks returns a copy of the task list.
func (s *UserStory) Tasks() []Task {
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// CurrentPhase returns the phase of the next task. It is false only after
// the last task has been consumed.
func (s *UserStory) CurrentPhase() (Phase, bool) {
	if s.current >= len(s.tasks) {
		return 0, false
	}
	return s.tasks[s.current].phase, true
}

// Start moves a pending story into progress. Calling it on a story that is
// already in progress has no effect.
func (s *UserStory) Start() {
	if s.status == StatusPending {
		s.status = StatusInProgress
	}
}

// Reset returns a routed story to pending so the next step can admit it.
// Finished stories stay done.
func (s *UserStory) Reset() {
	if s.status != StatusDone {
		s.status = StatusPending
	}
}

// ProcessDay works one day on an in-progress story: the current task is
// completed on day and the index advances. The status becomes Done when no
// tasks remain and PhaseDone when the next task belongs to another phase.
// It reports whether a task was completed.
func (s *UserStory) ProcessDay(day int) bool {
	if s.status != StatusInProgress || s.current >= len(s.tasks) {
		return false
	}

	finished := s.tasks[s.current].phase
	s.tasks[s.current].complete(day)
	s.current++

	switch {
	case s.current >= len(s.tasks):
		s.status = StatusDone
	case s.tasks[s.current].phase != finished:
		s.status = StatusPhaseDone
	}
	return true
}

// CompletedWork counts completed tasks per phase. Every phase is present.
func (s *UserStory) CompletedWork() map[Phase]int {
	out := make(map[Phase]int, PhaseCount)
	for _, phase := range Phases {
		out[phase] = 0
	}
	for _, t := range s.tasks {
		if t.Done() {
			out[t.phase]++
		}
	}
	return out
}

// PhaseDay pairs a phase with a completion day. Day is 0 for pending tasks.
type PhaseDay struct {
	Phase Phase
	Day   int
}

// CompletionDates splits the task list into completed and pending entries,
// each in task order.
type CompletionDates struct {
	Completed []PhaseDay
	Pending   []PhaseDay
}

// TaskCompletionDates returns the per-task completion timeline.
func (s *UserStory) TaskCompletionDates() CompletionDates {
	var dates CompletionDates
	for _, t := range s.tasks {
		if day, ok := t.CompletedOn(); ok {
			dates.Completed = append(dates.Completed, PhaseDay{Phase: t.phase, Day: day})
		} else {
			dates.Pending = append(dates.Pending, PhaseDay{Phase: t.phase})
		}
	}
	return dates
}

// Clone returns an independent copy of the story, including progress.
func (s *UserStory) Clone() *UserStory {
	c := *s
	c.tasks = s.Tasks()
	return &c
}
