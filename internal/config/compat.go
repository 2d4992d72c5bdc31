package config

import (
	"fmt"

	"github.com/alexander-akhmetov/devcyclesim/internal/domain"
	"github.com/alexander-akhmetov/devcyclesim/internal/engine"
	"github.com/alexander-akhmetov/devcyclesim/internal/scenario"
)

// EngineCapacities converts the capacities map to engine.Capacities.
// Phases missing from the map keep engine.DefaultCapacities.
func (c *Config) EngineCapacities() (engine.Capacities, error) {
	caps := engine.DefaultCapacities
	for key, n := range c.Capacities {
		phase, err := domain.ParsePhase(key)
		if err != nil {
			return caps, fmt.Errorf("capacities: %w", err)
		}
		caps[phase] = n
	}
	if err := caps.Validate(); err != nil {
		return caps, fmt.Errorf("capacities: %w", err)
	}
	return caps, nil
}

// GeneratorRanges converts the generator map to scenario.Ranges.
// Phases missing from the map keep scenario.DefaultRanges.
func (c *Config) GeneratorRanges() (scenario.Ranges, error) {
	ranges := scenario.DefaultRanges
	for key, r := range c.Generator {
		phase, err := domain.ParsePhase(key)
		if err != nil {
			return ranges, fmt.Errorf("generator: %w", err)
		}
		ranges[phase] = r
	}
	if err := ranges.Validate(); err != nil {
		return ranges, fmt.Errorf("generator: %w", err)
	}
	return ranges, nil
}

// NewGenerator builds a story generator from Seed and the generator ranges.
func (c *Config) NewGenerator() (*scenario.Generator, error) {
	ranges, err := c.GeneratorRanges()
	if err != nil {
		return nil, err
	}
	return scenario.NewGenerator(c.Seed, ranges)
}
