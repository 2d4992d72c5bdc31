package engine

import (
	"fmt"

	"github.com/alexander-akhmetov/devcyclesim/internal/domain"
	"github.com/alexander-akhmetov/devcyclesim/internal/event"
	"github.com/alexander-akhmetov/devcyclesim/internal/queue"
)

// Step is the work station of one phase. It owns three disjoint queues:
// input (waiting), wip (being worked) and done (waiting to be routed).
type Step struct {
	name     string
	phase    domain.Phase
	capacity int

	input *queue.Deque[*domain.UserStory]
	wip   *queue.Deque[*domain.UserStory]
	done  *queue.Deque[*domain.UserStory]

	today int
	emit  event.Handler
}

// NewStep creates an empty step. capacity must be positive.
func NewStep(name string, phase domain.Phase, capacity int) (*Step, error) {
	if !phase.Valid() {
		return nil, fmt.Errorf("%w: %d", domain.ErrUnknownPhase, int(phase))
	}
	s := &Step{
		name:  name,
		phase: phase,
		input: queue.New[*domain.UserStory](),
		wip:   queue.New[*domain.UserStory](),
		done:  queue.New[*domain.UserStory](),
	}
	if err := s.SetCapacity(capacity); err != nil {
		return nil, err
	}
	return s, nil
}

// Name returns the display name.
func (s *Step) Name() string { return s.name }

// Phase returns the phase this step works on.
func (s *Step) Phase() domain.Phase { return s.phase }

// Capacity returns the number of stories the step may work on at once.
func (s *Step) Capacity() int { return s.capacity }

// SetCapacity changes the capacity. Admission and eviction happen on the
// next AdjustWorkloadToCapacity.
func (s *Step) SetCapacity(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: %s step got %d", ErrInvalidCapacity, s.phase, n)
	}
	s.capacity = n
	return nil
}

// Add appends a story to the input queue.
func (s *Step) Add(story *domain.UserStory) {
	s.input.PushBack(story)
}

// AddInFront puts a story at the head of the input queue so it is admitted
// before anything already waiting.
func (s *Step) AddInFront(story *domain.UserStory) {
	s.input.PushFront(story)
}

// AdjustWorkloadToCapacity admits stories from the head of the input queue
// while there is room. When capacity shrank below the current wip, stories
// are moved from the tail of wip back to the head of input, newest first,
// keeping their completed tasks.
func (s *Step) AdjustWorkloadToCapacity() {
	for s.wip.Len() < s.capacity {
		story, ok := s.input.PopFront()
		if !ok {
			break
		}
		s.wip.PushBack(story)
		s.emit.Emit(event.Admitted(s.today, story.ID(), s.phase))
	}
	for s.wip.Len() > s.capacity {
		story, _ := s.wip.PopBack()
		s.input.PushFront(story)
		s.emit.Emit(event.Evicted(s.today, story.ID(), s.phase))
	}
}

// ProcessDay works one day on every story in progress. Stories that
// finish their phase segment or all their tasks move to done in wip order.
// A story whose current phase differs from the step's phase aborts the day
// with ErrPhaseMismatch; admissions and evictions have already happened but
// no story is worked on.
func (s *Step) ProcessDay(day int) error {
	s.today = day
	s.AdjustWorkloadToCapacity()

	active := s.wip.Values()
	for _, story := range active {
		phase, ok := story.CurrentPhase()
		if !ok {
			return fmt.Errorf("%w: story %s has no tasks left in %s step", ErrPhaseMismatch, story.ID(), s.phase)
		}
		if phase != s.phase {
			return fmt.Errorf("%w: story %s is in %s, step is %s", ErrPhaseMismatch, story.ID(), phase, s.phase)
		}
	}

	s.wip.Clear()
	for _, story := range active {
		story.Start()
		story.ProcessDay(day)

		switch story.Status() {
		case domain.StatusDone, domain.StatusPhaseDone:
			s.done.PushBack(story)
			s.emit.Emit(event.PhaseCompleted(day, story.ID(), s.phase))
		default:
			s.wip.PushBack(story)
		}
	}
	return nil
}

// Pluck removes and returns the oldest done story, or nil.
func (s *Step) Pluck() *domain.UserStory {
	story, ok := s.done.PopFront()
	if !ok {
		return nil
	}
	return story
}

// CountInput returns the input queue length.
func (s *Step) CountInput() int { return s.input.Len() }

// CountWIP returns the number of stories in progress.
func (s *Step) CountWIP() int { return s.wip.Len() }

// CountDone returns the number of stories waiting to be routed.
func (s *Step) CountDone() int { return s.done.Len() }

// Input returns the input queue head to tail.
func (s *Step) Input() []*domain.UserStory { return s.input.Values() }

// WIP returns the stories in progress in admission order.
func (s *Step) WIP() []*domain.UserStory { return s.wip.Values() }

// Done returns the done queue head to tail.
func (s *Step) Done() []*domain.UserStory { return s.done.Values() }
