// Package event defines typed events emitted by the simulation engine,
// consumed by the TUI, progress logger, metrics, and debug output.
package event

import (
	"fmt"

	"github.com/alexander-akhmetov/devcyclesim/internal/domain"
)

// Kind identifies the type of event.
type Kind int

const (
	// KindDayStarted opens a simulated day.
	KindDayStarted Kind = iota
	// KindCapacityChanged reports a step capacity that differs from the previous day.
	KindCapacityChanged
	// KindPulled is a story moved from the backlog into the first step.
	KindPulled
	// KindAdmitted is a story moved from a step's input into work in progress.
	KindAdmitted
	// KindEvicted is a story pushed back from work in progress to the input
	// queue because capacity shrank.
	KindEvicted
	// KindPhaseCompleted is a story that finished its run of same-phase tasks.
	KindPhaseCompleted
	// KindRouted is a story forwarded to a later step.
	KindRouted
	// KindReworked is a story routed back to an earlier step.
	KindReworked
	// KindFinished is a story with no tasks left.
	KindFinished
)

var kindNames = [...]string{
	KindDayStarted:      "day_started",
	KindCapacityChanged: "capacity_changed",
	KindPulled:          "pulled",
	KindAdmitted:        "admitted",
	KindEvicted:         "evicted",
	KindPhaseCompleted:  "phase_completed",
	KindRouted:          "routed",
	KindReworked:        "reworked",
	KindFinished:        "finished",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Event is a single typed event emitted by the engine.
type Event struct {
	Kind    Kind
	Day     int
	StoryID string
	Phase   domain.Phase // step the event happened in
	From    int          // previous capacity for KindCapacityChanged
	To      int          // new capacity for KindCapacityChanged
	Text    string       // human readable summary
}

// Handler is a callback that receives typed events.
type Handler func(Event)

// Emit calls h with e when h is set.
func (h Handler) Emit(e Event) {
	if h != nil {
		h(e)
	}
}

// Multi fans an event out to every non-nil handler in order.
func Multi(handlers ...Handler) Handler {
	return func(e Event) {
		for _, h := range handlers {
			h.Emit(e)
		}
	}
}

// DayStarted creates a KindDayStarted event.
func DayStarted(day int) Event {
	return Event{Kind: KindDayStarted, Day: day, Text: fmt.Sprintf("day %d started", day)}
}

// CapacityChanged creates a KindCapacityChanged event.
func CapacityChanged(day int, phase domain.Phase, from, to int) Event {
	return Event{
		Kind: KindCapacityChanged, Day: day, Phase: phase, From: from, To: to,
		Text: fmt.Sprintf("%s capacity %d -> %d", phase, from, to),
	}
}

// Pulled creates a KindPulled event.
func Pulled(day int, storyID string) Event {
	return Event{
		Kind: KindPulled, Day: day, StoryID: storyID, Phase: domain.PhaseSpec,
		Text: fmt.Sprintf("%s pulled from backlog", storyID),
	}
}

// Admitted creates a KindAdmitted event.
func Admitted(day int, storyID string, phase domain.Phase) Event {
	return Event{
		Kind: KindAdmitted, Day: day, StoryID: storyID, Phase: phase,
		Text: fmt.Sprintf("%s started in %s", storyID, phase),
	}
}

// Evicted creates a KindEvicted event.
func Evicted(day int, storyID string, phase domain.Phase) Event {
	return Event{
		Kind: KindEvicted, Day: day, StoryID: storyID, Phase: phase,
		Text: fmt.Sprintf("%s paused in %s", storyID, phase),
	}
}

// PhaseCompleted creates a KindPhaseCompleted event.
func PhaseCompleted(day int, storyID string, phase domain.Phase) Event {
	return Event{
		Kind: KindPhaseCompleted, Day: day, StoryID: storyID, Phase: phase,
		Text: fmt.Sprintf("%s completed %s work", storyID, phase),
	}
}

// Routed creates a KindRouted event. Phase is the target step.
func Routed(day int, storyID string, from, to domain.Phase) Event {
	return Event{
		Kind: KindRouted, Day: day, StoryID: storyID, Phase: to,
		Text: fmt.Sprintf("%s moved %s -> %s", storyID, from, to),
	}
}

// Reworked creates a KindReworked event. Phase is the target step.
func Reworked(day int, storyID string, from, to domain.Phase) Event {
	return Event{
		Kind: KindReworked, Day: day, StoryID: storyID, Phase: to,
		Text: fmt.Sprintf("%s sent back %s -> %s", storyID, from, to),
	}
}

// Finished creates a KindFinished event. Phase is the step the story left.
func Finished(day int, storyID string, phase domain.Phase) Event {
	return Event{
		Kind: KindFinished, Day: day, StoryID: storyID, Phase: phase,
		Text: fmt.Sprintf("%s finished", storyID),
	}
}
