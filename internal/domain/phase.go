// Package domain defines the shared model types used across devcyclesim:
// Phase, Task, UserStory, and their helper methods.
package domain

import (
	"fmt"
	"strings"
)

// Phase is one of the four pipeline stages.
type Phase int

const (
	// PhaseSpec is the specification stage.
	PhaseSpec Phase = iota
	// PhaseDev is the development stage.
	PhaseDev
	// PhaseTest is the testing stage.
	PhaseTest
	// PhaseRollout is the rollout stage.
	PhaseRollout
)

// Phases lists every phase in pipeline order.
var Phases = [...]Phase{PhaseSpec, PhaseDev, PhaseTest, PhaseRollout}

// PhaseCount is the number of pipeline phases.
const PhaseCount = len(Phases)

// String returns the display name (SPEC, DEV, TEST, ROLLOUT).
func (p Phase) String() string {
	switch p {
	case PhaseSpec:
		return "SPEC"
	case PhaseDev:
		return "DEV"
	case PhaseTest:
		return "TEST"
	case PhaseRollout:
		return "ROLLOUT"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Key returns the lowercase name used in scenario files.
func (p Phase) Key() string {
	return strings.ToLower(p.String())
}

// Letter returns the single-letter abbreviation used in compact reports.
func (p Phase) Letter() string {
	return p.String()[:1]
}

// Title returns the long human-readable name of the stage.
func (p Phase) Title() string {
	switch p {
	case PhaseSpec:
		return "Specification"
	case PhaseDev:
		return "Development"
	case PhaseTest:
		return "Testing"
	case PhaseRollout:
		return "Rollout"
	default:
		return p.String()
	}
}

// Valid reports whether p is one of the four pipeline phases.
func (p Phase) Valid() bool {
	return p >= PhaseSpec && p <= PhaseRollout
}

// Before reports whether p comes earlier than other in pipeline order.
func (p Phase) Before(other Phase) bool {
	return p < other
}

// ParsePhase converts a phase name to a Phase. Both the short keys
// (spec, dev, test, rollout) and the long names are accepted, case-insensitive.
func ParsePhase(s string) (Phase, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "spec", "specification":
		return PhaseSpec, nil
	case "dev", "development":
		return PhaseDev, nil
	case "test", "testing":
		return PhaseTest, nil
	case "rollout":
		return PhaseRollout, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPhase, s)
}

// PhaseDurations maps a phase to the number of single-day tasks it needs.
type PhaseDurations map[Phase]int

// Validate checks that the mapping is non-empty, names only known phases,
// and that every count is positive.
func (d PhaseDurations) Validate() error {
	if len(d) == 0 {
		return fmt.Errorf("%w: no phase durations given", ErrInvalidDuration)
	}
	for phase, days := range d {
		if !phase.Valid() {
			return fmt.Errorf("%w: %d", ErrUnknownPhase, int(phase))
		}
		if days <= 0 {
			return fmt.Errorf("%w: %s duration must be positive, got %d", ErrInvalidDuration, phase, days)
		}
	}
	return nil
}

// Expand lowers the mapping into an ordered phase list, one entry per day,
// in pipeline order.
func (d PhaseDurations) Expand() []Phase {
	var out []Phase
	for _, phase := range Phases {
		for range d[phase] {
			out = append(out, phase)
		}
	}
	return out
}
