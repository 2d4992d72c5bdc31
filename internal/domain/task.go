package domain

// TaskStatus is the completion state of a single task.
type TaskStatus int

const (
	// TaskOpen means the task has not been worked yet.
	TaskOpen TaskStatus = iota
	// TaskDone means the task was completed on CompletedOn.
	TaskDone
)

// String returns the lowercase status name.
func (s TaskStatus) String() string {
	if s == TaskDone {
		return "done"
	}
	return "open"
}

// Task is exactly one simulated day of work in one phase.
// The only mutation is the Open -> Done transition.
type Task struct {
	phase       Phase
	status      TaskStatus
	completedOn int
}

// NewTask creates an open task for the given phase.
func NewTask(phase Phase) Task {
	return Task{phase: phase}
}

// Phase returns the phase this task belongs to.
func (t Task) Phase() Phase {
	return t.phase
}

// Status returns the task status.
func (t Task) Status() TaskStatus {
	return t.status
}

// Done reports whether the task has been completed.
func (t Task) Done() bool {
	return t.status == TaskDone
}

// CompletedOn returns the completion day, or false if the task is still open.
func (t Task) CompletedOn() (int, bool) {
	if t.status != TaskDone {
		return 0, false
	}
	return t.completedOn, true
}

func (t *Task) complete(day int) {
	if t.status == TaskDone {
		return
	}
	t.status = TaskDone
	t.completedOn = day
}
