// Package engine runs the day-by-day simulation of a four-step development
// pipeline. It is synchronous and deterministic: it performs no I/O and
// reports what happens through typed events.
package engine

import (
	"fmt"

	"github.com/alexander-akhmetov/devcyclesim/internal/domain"
	"github.com/alexander-akhmetov/devcyclesim/internal/event"
	"github.com/alexander-akhmetov/devcyclesim/internal/queue"
	"github.com/alexander-akhmetov/devcyclesim/internal/stats"
)

// DefaultSimulationDays is the run length used when none is configured.
const DefaultSimulationDays = 14

// DrainOrder returns the order in which done queues are emptied at the start
// of a day. Downstream steps go first so a story advances at most one step
// per day.
func DrainOrder() [domain.PhaseCount]domain.Phase {
	return [domain.PhaseCount]domain.Phase{
		domain.PhaseRollout,
		domain.PhaseTest,
		domain.PhaseDev,
		domain.PhaseSpec,
	}
}

// Option configures a Process.
type Option func(*Process)

// WithDefaultCapacities sets the capacities used on days no plan covers.
func WithDefaultCapacities(c Capacities) Option {
	return func(p *Process) { p.defaults = c }
}

// WithEventHandler registers a callback for simulation events.
func WithEventHandler(h event.Handler) Option {
	return func(p *Process) { p.onEvent = h }
}

// Process owns the backlog, the four steps and the finished work, and
// records one statistic per simulated day.
type Process struct {
	days     int
	defaults Capacities
	plans    []ResourcePlan
	onEvent  event.Handler

	steps    [domain.PhaseCount]*Step
	backlog  *queue.Deque[*domain.UserStory]
	finished *queue.Deque[*domain.UserStory]

	stories    []*domain.UserStory
	ids        map[string]struct{}
	statistics []stats.ProcessStatistic
}

// NewProcess creates a process that simulates days days.
func NewProcess(days int, opts ...Option) (*Process, error) {
	if days < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDays, days)
	}
	p := &Process{
		days:     days,
		defaults: DefaultCapacities,
		backlog:  queue.New[*domain.UserStory](),
		finished: queue.New[*domain.UserStory](),
		ids:      make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.defaults.Validate(); err != nil {
		return nil, fmt.Errorf("default capacities: %w", err)
	}

	for _, phase := range domain.Phases {
		step, err := NewStep(phase.Title(), phase, p.defaults[phase])
		if err != nil {
			return nil, err
		}
		step.emit = p.onEvent
		p.steps[phase] = step
	}
	return p, nil
}

// Add appends a story to the backlog. Story ids must be unique and the
// first task must be a spec task since the backlog feeds the spec step.
func (p *Process) Add(story *domain.UserStory) error {
	if story == nil {
		return ErrNilStory
	}
	if phase, ok := story.CurrentPhase(); !ok || phase != domain.PhaseSpec {
		return fmt.Errorf("%w: %s", ErrEntryPhase, story.ID())
	}
	if _, ok := p.ids[story.ID()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateStory, story.ID())
	}
	p.ids[story.ID()] = struct{}{}
	p.stories = append(p.stories, story)
	p.backlog.PushBack(story)
	return nil
}

// AddResourcePlan registers a capacity plan. Plans may not overlap, and
// every capacity must be positive because a step cannot run without one.
func (p *Process) AddResourcePlan(plan ResourcePlan) error {
	if err := plan.Capacities().Validate(); err != nil {
		return fmt.Errorf("plan %s: %w", plan, err)
	}
	for _, existing := range p.plans {
		if existing.Overlaps(plan) {
			return fmt.Errorf("%w: %s overlaps %s", ErrPlanOverlap, plan, existing)
		}
	}
	p.plans = append(p.plans, plan)
	return nil
}

// Start runs days 1 through the configured number of days. It keeps going
// after all work is finished.
func (p *Process) Start() error {
	for day := 1; day <= p.days; day++ {
		if err := p.ProcessDay(day); err != nil {
			return err
		}
	}
	return nil
}

// ProcessDay runs one full day: capacity update and routing, work in every
// step in pipeline order, then a statistics snapshot.
func (p *Process) ProcessDay(day int) error {
	p.onEvent.Emit(event.DayStarted(day))

	if err := p.updateCapacities(day); err != nil {
		return fmt.Errorf("day %d: %w", day, err)
	}
	p.routeCompletedWork(day)
	p.pullFromBacklog(day)

	for _, phase := range domain.Phases {
		if err := p.steps[phase].ProcessDay(day); err != nil {
			return fmt.Errorf("day %d: %w", day, err)
		}
	}

	p.statistics = append(p.statistics, p.snapshot(day))
	return nil
}

// CapacitiesFor returns the capacities in effect on day: those of the first
// registered plan covering it, else the defaults.
func (p *Process) CapacitiesFor(day int) Capacities {
	for _, plan := range p.plans {
		if plan.Covers(day) {
			return plan.Capacities()
		}
	}
	return p.defaults
}

func (p *Process) updateCapacities(day int) error {
	caps := p.CapacitiesFor(day)
	for _, phase := range domain.Phases {
		step := p.steps[phase]
		prev := step.Capacity()
		if prev == caps[phase] {
			continue
		}
		if err := step.SetCapacity(caps[phase]); err != nil {
			return err
		}
		p.onEvent.Emit(event.CapacityChanged(day, phase, prev, caps[phase]))
	}
	return nil
}

func (p *Process) routeCompletedWork(day int) {
	for _, from := range DrainOrder() {
		source := p.steps[from]
		for story := source.Pluck(); story != nil; story = source.Pluck() {
			next, ok := story.CurrentPhase()
			if !ok {
				p.finished.PushBack(story)
				p.onEvent.Emit(event.Finished(day, story.ID(), from))
				continue
			}

			story.Reset()
			target := p.steps[next]
			if next.Before(from) {
				target.AddInFront(story)
				p.onEvent.Emit(event.Reworked(day, story.ID(), from, next))
			} else {
				target.Add(story)
				p.onEvent.Emit(event.Routed(day, story.ID(), from, next))
			}
		}
	}
}

// pullFromBacklog feeds the spec step in backlog order while it has
// uncommitted capacity.
func (p *Process) pullFromBacklog(day int) {
	spec := p.steps[domain.PhaseSpec]
	available := spec.Capacity() - spec.CountInput() - spec.CountWIP()
	for ; available > 0; available-- {
		story, ok := p.backlog.Front()
		if !ok {
			return
		}
		p.backlog.PopFront()
		story.Reset()
		spec.Add(story)
		p.onEvent.Emit(event.Pulled(day, story.ID()))
	}
}

func (p *Process) snapshot(day int) stats.ProcessStatistic {
	type place struct {
		loc  stats.Location
		step domain.Phase
	}
	where := make(map[*domain.UserStory]place, len(p.stories))
	for _, s := range p.backlog.Values() {
		where[s] = place{loc: stats.LocationBacklog}
	}
	for _, s := range p.finished.Values() {
		where[s] = place{loc: stats.LocationFinished}
	}

	var steps [domain.PhaseCount]stats.StepStatistic
	for _, phase := range domain.Phases {
		step := p.steps[phase]
		steps[phase] = stats.StepStatistic{
			Input:    step.CountInput(),
			WIP:      step.CountWIP(),
			Done:     step.CountDone(),
			Capacity: step.Capacity(),
		}
		for _, s := range step.Input() {
			where[s] = place{loc: stats.LocationInput, step: phase}
		}
		for _, s := range step.WIP() {
			where[s] = place{loc: stats.LocationWIP, step: phase}
		}
		for _, s := range step.Done() {
			where[s] = place{loc: stats.LocationDone, step: phase}
		}
	}

	snaps := make([]stats.StorySnapshot, 0, len(p.stories))
	for _, s := range p.stories {
		pl := where[s]
		snaps = append(snaps, stats.StorySnapshot{
			ID:         s.ID(),
			FeatureID:  s.FeatureID(),
			Location:   pl.loc,
			Step:       pl.step,
			TotalTasks: s.TotalTasks(),
			Timeline:   s.TaskCompletionDates(),
		})
	}
	return stats.New(day, p.backlog.Len(), steps, p.finished.Len(), snaps)
}

// Statistics returns the recorded snapshots in day order.
func (p *Process) Statistics() []stats.ProcessStatistic {
	out := make([]stats.ProcessStatistic, len(p.statistics))
	copy(out, p.statistics)
	return out
}

// SimulationDays returns the configured run length.
func (p *Process) SimulationDays() int { return p.days }

// DefaultCapacities returns the capacities used outside any plan.
func (p *Process) DefaultCapacities() Capacities { return p.defaults }

// Plans returns the registered plans in registration order.
func (p *Process) Plans() []ResourcePlan {
	return append([]ResourcePlan(nil), p.plans...)
}

// Step returns the step for phase.
func (p *Process) Step(phase domain.Phase) *Step { return p.steps[phase] }

// Backlog returns the stories not yet pulled, in order.
func (p *Process) Backlog() []*domain.UserStory { return p.backlog.Values() }

// FinishedWork returns finished stories in completion order.
func (p *Process) FinishedWork() []*domain.UserStory { return p.finished.Values() }

// Stories returns every added story in insertion order.
func (p *Process) Stories() []*domain.UserStory {
	return append([]*domain.UserStory(nil), p.stories...)
}
