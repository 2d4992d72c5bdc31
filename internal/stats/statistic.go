// Package stats holds the immutable per-day snapshots recorded by the
// simulation engine and the aggregates derived from them.
package stats

import (
	"github.com/alexander-akhmetov/devcyclesim/internal/domain"
)

// StepStatistic is the queue state of one pipeline step at the end of a day.
type StepStatistic struct {
	Input    int
	WIP      int
	Done     int
	Capacity int
}

// Total returns the number of stories held by the step.
func (s StepStatistic) Total() int {
	return s.Input + s.WIP + s.Done
}

// Utilization returns WIP as a fraction of capacity.
func (s StepStatistic) Utilization() float64 {
	if s.Capacity <= 0 {
		return 0
	}
	return float64(s.WIP) / float64(s.Capacity)
}

// Location says which queue holds a story.
type Location int

const (
	LocationBacklog Location = iota
	LocationInput
	LocationWIP
	LocationDone
	LocationFinished
)

func (l Location) String() string {
	switch l {
	case LocationBacklog:
		return "backlog"
	case LocationInput:
		return "input"
	case LocationWIP:
		return "wip"
	case LocationDone:
		return "done"
	case LocationFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// StorySnapshot is the state of one story at the end of a day.
// Step is meaningful only for the input, wip and done locations.
type StorySnapshot struct {
	ID         string
	FeatureID  string
	Location   Location
	Step       domain.Phase
	TotalTasks int
	Timeline   domain.CompletionDates
}

// FeatureCounts tallies the stories of one feature by location.
type FeatureCounts struct {
	Backlog    int
	Queued     int
	InProgress int
	StepDone   int
	Finished   int
}

// Total returns the number of stories in the feature.
func (c FeatureCounts) Total() int {
	return c.Backlog + c.Queued + c.InProgress + c.StepDone + c.Finished
}

// Completion holds task throughput figures for one day.
type Completion struct {
	// PerPhase counts tasks completed on that day.
	PerPhase [domain.PhaseCount]int
	// TasksCompleted counts every task completed up to and including that day.
	TasksCompleted int
	// TasksFinished counts the tasks of stories that reached finished work.
	TasksFinished int
}

// Today returns the number of tasks completed on that day across phases.
func (c Completion) Today() int {
	total := 0
	for _, n := range c.PerPhase {
		total += n
	}
	return total
}

// ProcessStatistic is the state of the whole pipeline at the end of a day.
// Values are never mutated after New returns.
type ProcessStatistic struct {
	Day               int
	BacklogCount      int
	FinishedWorkCount int
	Steps             [domain.PhaseCount]StepStatistic

	stories []StorySnapshot
	index   map[string]int
}

// New builds a snapshot. stories are copied and kept in the given order.
func New(day, backlog int, steps [domain.PhaseCount]StepStatistic, finished int, stories []StorySnapshot) ProcessStatistic {
	st := ProcessStatistic{
		Day:               day,
		BacklogCount:      backlog,
		FinishedWorkCount: finished,
		Steps:             steps,
		stories:           make([]StorySnapshot, len(stories)),
		index:             make(map[string]int, len(stories)),
	}
	for i, s := range stories {
		s.Timeline = domain.CompletionDates{
			Completed: append([]domain.PhaseDay(nil), s.Timeline.Completed...),
			Pending:   append([]domain.PhaseDay(nil), s.Timeline.Pending...),
		}
		st.stories[i] = s
		st.index[s.ID] = i
	}
	return st
}

// Step returns the statistic of the step for phase.
func (p ProcessStatistic) Step(phase domain.Phase) StepStatistic {
	return p.Steps[phase]
}

// StoryCount returns the number of stories held anywhere in the process.
func (p ProcessStatistic) StoryCount() int {
	total := p.BacklogCount + p.FinishedWorkCount
	for _, s := range p.Steps {
		total += s.Total()
	}
	return total
}

// Stories returns the story snapshots in insertion order.
func (p ProcessStatistic) Stories() []StorySnapshot {
	out := make([]StorySnapshot, len(p.stories))
	copy(out, p.stories)
	return out
}

// Story returns the snapshot of the story with the given id.
func (p ProcessStatistic) Story(id string) (StorySnapshot, bool) {
	i, ok := p.index[id]
	if !ok {
		return StorySnapshot{}, false
	}
	return p.stories[i], true
}

// Timeline returns the completed and pending tasks of a story.
func (p ProcessStatistic) Timeline(id string) (domain.CompletionDates, bool) {
	s, ok := p.Story(id)
	return s.Timeline, ok
}

// FeatureOf returns the feature the story belongs to.
func (p ProcessStatistic) FeatureOf(id string) string {
	s, ok := p.Story(id)
	if !ok {
		return ""
	}
	return s.FeatureID
}

// Features returns feature ids in order of first appearance.
func (p ProcessStatistic) Features() []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range p.stories {
		if !seen[s.FeatureID] {
			seen[s.FeatureID] = true
			out = append(out, s.FeatureID)
		}
	}
	return out
}

// FeatureCounts tallies the stories of feature by location.
func (p ProcessStatistic) FeatureCounts(feature string) FeatureCounts {
	var c FeatureCounts
	for _, s := range p.stories {
		if s.FeatureID != feature {
			continue
		}
		switch s.Location {
		case LocationBacklog:
			c.Backlog++
		case LocationInput:
			c.Queued++
		case LocationWIP:
			c.InProgress++
		case LocationDone:
			c.StepDone++
		case LocationFinished:
			c.Finished++
		}
	}
	return c
}

// TotalTasks returns the number of tasks across all stories.
func (p ProcessStatistic) TotalTasks() int {
	total := 0
	for _, s := range p.stories {
		total += s.TotalTasks
	}
	return total
}

// DailyCompletion derives task throughput for the snapshot's day.
func (p ProcessStatistic) DailyCompletion() Completion {
	var c Completion
	for _, s := range p.stories {
		for _, pd := range s.Timeline.Completed {
			c.TasksCompleted++
			if pd.Day == p.Day {
				c.PerPhase[pd.Phase]++
			}
		}
		if s.Location == LocationFinished {
			c.TasksFinished += s.TotalTasks
		}
	}
	return c
}
