package engine

import (
	"fmt"

	"github.com/alexander-akhmetov/devcyclesim/internal/domain"
)

// Capacities holds one capacity per phase, indexed by domain.Phase.
type Capacities [domain.PhaseCount]int

// DefaultCapacities are used on days no resource plan covers.
var DefaultCapacities = Capacities{
	domain.PhaseSpec:    2,
	domain.PhaseDev:     3,
	domain.PhaseTest:    3,
	domain.PhaseRollout: 1,
}

// Get returns the capacity for phase.
func (c Capacities) Get(phase domain.Phase) int {
	return c[phase]
}

// Validate checks that every capacity is positive.
func (c Capacities) Validate() error {
	for _, phase := range domain.Phases {
		if c[phase] <= 0 {
			return fmt.Errorf("%w: %s capacity is %d", ErrInvalidCapacity, phase, c[phase])
		}
	}
	return nil
}

func (c Capacities) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", c[domain.PhaseSpec], c[domain.PhaseDev], c[domain.PhaseTest], c[domain.PhaseRollout])
}

// ResourcePlan assigns step capacities to the inclusive day window
// [Start, End]. It is immutable once created.
type ResourcePlan struct {
	start      int
	end        int
	capacities Capacities
}

// NewResourcePlan validates and creates a plan. start must be before end
// and no capacity may be negative.
func NewResourcePlan(start, end int, capacities Capacities) (ResourcePlan, error) {
	if start >= end {
		return ResourcePlan{}, fmt.Errorf("%w: start day %d must be before end day %d", ErrInvalidPlan, start, end)
	}
	for _, phase := range domain.Phases {
		if capacities[phase] < 0 {
			return ResourcePlan{}, fmt.Errorf("%w: %s capacity %d is negative", ErrInvalidPlan, phase, capacities[phase])
		}
	}
	return ResourcePlan{start: start, end: end, capacities: capacities}, nil
}

// Start returns the first day of the plan.
func (p ResourcePlan) Start() int { return p.start }

// End returns the last day of the plan.
func (p ResourcePlan) End() int { return p.end }

// Capacities returns the planned capacities.
func (p ResourcePlan) Capacities() Capacities { return p.capacities }

// Covers reports whether day falls inside the plan window.
func (p ResourcePlan) Covers(day int) bool {
	return p.start <= day && day <= p.end
}

// Overlaps reports whether the two windows share at least one day.
func (p ResourcePlan) Overlaps(other ResourcePlan) bool {
	return p.start <= other.end && other.start <= p.end
}

func (p ResourcePlan) String() string {
	return fmt.Sprintf("%d-%d:%s", p.start, p.end, p.capacities)
}
