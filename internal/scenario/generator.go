// Package scenario loads, generates and writes the stories and resource
// plans a simulation runs on.
package scenario

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/alexander-akhmetov/devcyclesim/internal/domain"
)

// ErrInvalidRange reports a generator range with min < 1 or max < min.
var ErrInvalidRange = errors.New("invalid duration range")

// Range is an inclusive day-count interval.
type Range struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Ranges holds one duration range per phase.
type Ranges [domain.PhaseCount]Range

// DefaultRanges are the per-phase durations used when a story omits a count.
var DefaultRanges = Ranges{
	domain.PhaseSpec:    {Min: 1, Max: 3},
	domain.PhaseDev:     {Min: 2, Max: 4},
	domain.PhaseTest:    {Min: 1, Max: 3},
	domain.PhaseRollout: {Min: 1, Max: 1},
}

// Validate checks every range.
func (r Ranges) Validate() error {
	for _, phase := range domain.Phases {
		rg := r[phase]
		if rg.Min < 1 || rg.Max < rg.Min {
			return fmt.Errorf("%w: %s %d-%d", ErrInvalidRange, phase, rg.Min, rg.Max)
		}
	}
	return nil
}

// Generator draws story durations from a seeded source. The same seed and
// ranges always produce the same stories.
type Generator struct {
	rng    *rand.Rand
	ranges Ranges
}

// NewGenerator returns a generator seeded with seed.
func NewGenerator(seed uint64, ranges Ranges) (*Generator, error) {
	if err := ranges.Validate(); err != nil {
		return nil, err
	}
	return &Generator{
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		ranges: ranges,
	}, nil
}

// Draw returns a day count for phase within its range.
func (g *Generator) Draw(phase domain.Phase) int {
	rg := g.ranges[phase]
	return rg.Min + g.rng.IntN(rg.Max-rg.Min+1)
}

// Durations draws a full set of phase durations.
func (g *Generator) Durations() domain.PhaseDurations {
	d := make(domain.PhaseDurations, domain.PhaseCount)
	for _, phase := range domain.Phases {
		d[phase] = g.Draw(phase)
	}
	return d
}

// Stories generates n stories named STORY-1..STORY-n.
func (g *Generator) Stories(n int) ([]*domain.UserStory, error) {
	out := make([]*domain.UserStory, 0, n)
	for i := 1; i <= n; i++ {
		s, err := domain.FromPhaseDurations(fmt.Sprintf("STORY-%d", i), g.Durations())
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// FeatureStories generates perFeature stories for each of features
// features, named FEATURE-f-STORY-nn and grouped under FEATURE-f.
func (g *Generator) FeatureStories(features, perFeature int) ([]*domain.UserStory, error) {
	out := make([]*domain.UserStory, 0, features*perFeature)
	for f := 1; f <= features; f++ {
		feature := fmt.Sprintf("FEATURE-%d", f)
		for n := 1; n <= perFeature; n++ {
			id := fmt.Sprintf("%s-STORY-%02d", feature, n)
			s, err := domain.FromPhaseDurations(id, g.Durations(), domain.WithFeature(feature))
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
	}
	return out, nil
}

// CloneStories deep-copies stories so independent runs do not share state.
func CloneStories(stories []*domain.UserStory) []*domain.UserStory {
	out := make([]*domain.UserStory, len(stories))
	for i, s := range stories {
		out[i] = s.Clone()
	}
	return out
}
