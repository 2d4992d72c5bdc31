package scenario

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/alexander-akhmetov/devcyclesim/internal/domain"
	"github.com/alexander-akhmetov/devcyclesim/internal/engine"
)

// PlanFlagFormat is the syntax accepted by ParsePlanFlag.
const PlanFlagFormat = "start-end:spec,dev,test,rollout"

// ErrPlanFormat reports a malformed inline resource plan.
var ErrPlanFormat = errors.New("invalid resource plan format")

type planRecord struct {
	Start     *int           `yaml:"start"`
	End       *int           `yaml:"end"`
	Resources map[string]int `yaml:"resources"`
}

// ParsePlanFlag parses "start-end:spec,dev,test,rollout".
func ParsePlanFlag(s string) (engine.ResourcePlan, error) {
	fail := func() (engine.ResourcePlan, error) {
		return engine.ResourcePlan{}, fmt.Errorf("%w: %s. Expected format: %q", ErrPlanFormat, s, PlanFlagFormat)
	}

	window, resources, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return fail()
	}
	startStr, endStr, ok := strings.Cut(window, "-")
	if !ok {
		return fail()
	}
	start, err1 := strconv.Atoi(strings.TrimSpace(startStr))
	end, err2 := strconv.Atoi(strings.TrimSpace(endStr))
	if err1 != nil || err2 != nil {
		return fail()
	}

	parts := strings.Split(resources, ",")
	if len(parts) != domain.PhaseCount {
		return fail()
	}
	var caps engine.Capacities
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return fail()
		}
		caps[domain.Phases[i]] = n
	}
	return engine.NewResourcePlan(start, end, caps)
}

// ParseCapacities parses "spec,dev,test,rollout".
func ParseCapacities(s string) (engine.Capacities, error) {
	var caps engine.Capacities
	parts := strings.Split(s, ",")
	if len(parts) != domain.PhaseCount {
		return caps, fmt.Errorf("%w: %q, expected spec,dev,test,rollout", engine.ErrInvalidCapacity, s)
	}
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return caps, fmt.Errorf("%w: %q is not a number", engine.ErrInvalidCapacity, part)
		}
		caps[domain.Phases[i]] = n
	}
	return caps, caps.Validate()
}

// LoadPlans reads a resource plans file, JSON or YAML by extension.
func LoadPlans(path string) ([]engine.ResourcePlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("resource plans file not found: %s", path)
		}
		return nil, fmt.Errorf("read resource plans file: %w", err)
	}
	if isYAML(path) {
		return ParsePlansYAML(data)
	}
	return ParsePlansJSON(data)
}

// ParsePlansJSON decodes [{start, end, resources: {spec, dev, test, rollout}}].
func ParsePlansJSON(data []byte) ([]engine.ResourcePlan, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON in resource plans file", ErrInvalidFormat)
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: resource plans file must contain a list", ErrInvalidFormat)
	}

	var records []planRecord
	for _, v := range root.Array() {
		rec := planRecord{Start: optInt(v.Get("start")), End: optInt(v.Get("end"))}
		if res := v.Get("resources"); res.Exists() {
			rec.Resources = make(map[string]int)
			res.ForEach(func(k, n gjson.Result) bool {
				rec.Resources[k.String()] = int(n.Int())
				return true
			})
		}
		records = append(records, rec)
	}
	return buildPlans(records)
}

// ParsePlansYAML decodes the YAML form of a resource plans file.
func ParsePlansYAML(data []byte) ([]engine.ResourcePlan, error) {
	var records []planRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: invalid YAML in resource plans file: %w", ErrInvalidFormat, err)
	}
	return buildPlans(records)
}

func buildPlans(records []planRecord) ([]engine.ResourcePlan, error) {
	plans := make([]engine.ResourcePlan, 0, len(records))
	for i, rec := range records {
		plan, err := buildPlan(rec)
		if err != nil {
			return nil, fmt.Errorf("resource plan %d: %w", i+1, err)
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

func buildPlan(rec planRecord) (engine.ResourcePlan, error) {
	switch {
	case rec.Start == nil:
		return engine.ResourcePlan{}, fmt.Errorf("%w in resource plan: 'start'", ErrMissingField)
	case rec.End == nil:
		return engine.ResourcePlan{}, fmt.Errorf("%w in resource plan: 'end'", ErrMissingField)
	case rec.Resources == nil:
		return engine.ResourcePlan{}, fmt.Errorf("%w in resource plan: 'resources'", ErrMissingField)
	}

	var caps engine.Capacities
	for _, phase := range domain.Phases {
		n, ok := rec.Resources[phase.Key()]
		if !ok {
			return engine.ResourcePlan{}, fmt.Errorf("%w in resource plan: '%s'", ErrMissingField, phase.Key())
		}
		caps[phase] = n
	}
	return engine.NewResourcePlan(*rec.Start, *rec.End, caps)
}
