package scenario

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/alexander-akhmetov/devcyclesim/internal/domain"
)

// ErrMissingField is wrapped by loader errors that name the absent field.
var ErrMissingField = errors.New("missing required field")

// ErrInvalidFormat reports a file that is not a list of objects.
var ErrInvalidFormat = errors.New("invalid format")

type taskRecord struct {
	Phase string `yaml:"phase"`
	Count *int   `yaml:"count"`
}

// storyRecord is the file representation of one story. Either Tasks or
// the classic per-phase counts describe the work.
type storyRecord struct {
	ID         *string      `yaml:"id"`
	ArrivalDay *int         `yaml:"arrival_day"`
	Priority   *int         `yaml:"priority"`
	FeatureID  string       `yaml:"feature_id,omitempty"`
	Tasks      []taskRecord `yaml:"tasks,omitempty"`
	Spec       *int         `yaml:"spec,omitempty"`
	Dev        *int         `yaml:"dev,omitempty"`
	Test       *int         `yaml:"test,omitempty"`
	Rollout    *int         `yaml:"rollout,omitempty"`
}

func (r storyRecord) counts() [domain.PhaseCount]*int {
	return [domain.PhaseCount]*int{
		domain.PhaseSpec:    r.Spec,
		domain.PhaseDev:     r.Dev,
		domain.PhaseTest:    r.Test,
		domain.PhaseRollout: r.Rollout,
	}
}

// LoadStories reads a stories file. The format follows the extension:
// .yaml and .yml are YAML, anything else is JSON. gen fills classic
// counts the file leaves out.
func LoadStories(path string, gen *Generator) ([]*domain.UserStory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stories file not found: %s", path)
		}
		return nil, fmt.Errorf("read stories file: %w", err)
	}
	if isYAML(path) {
		return ParseStoriesYAML(data, gen)
	}
	return ParseStoriesJSON(data, gen)
}

// ParseStoriesJSON decodes a JSON array of stories.
func ParseStoriesJSON(data []byte, gen *Generator) ([]*domain.UserStory, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON in stories file", ErrInvalidFormat)
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: stories file must contain a list", ErrInvalidFormat)
	}

	var records []storyRecord
	var parseErr error
	root.ForEach(func(_, v gjson.Result) bool {
		rec, err := storyFromJSON(v)
		if err != nil {
			parseErr = err
			return false
		}
		records = append(records, rec)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return buildStories(records, gen)
}

func storyFromJSON(v gjson.Result) (storyRecord, error) {
	if !v.IsObject() {
		return storyRecord{}, fmt.Errorf("%w: story entry must be an object", ErrInvalidFormat)
	}
	var rec storyRecord
	if id := v.Get("id"); id.Exists() {
		s := id.String()
		rec.ID = &s
	}
	rec.ArrivalDay = optInt(v.Get("arrival_day"))
	rec.Priority = optInt(v.Get("priority"))
	rec.FeatureID = v.Get("feature_id").String()

	if tasks := v.Get("tasks"); tasks.Exists() {
		rec.Tasks = []taskRecord{}
		for _, t := range tasks.Array() {
			rec.Tasks = append(rec.Tasks, taskRecord{
				Phase: t.Get("phase").String(),
				Count: optInt(t.Get("count")),
			})
		}
		return rec, nil
	}

	rec.Spec = optInt(v.Get("spec"))
	rec.Dev = optInt(v.Get("dev"))
	rec.Test = optInt(v.Get("test"))
	rec.Rollout = optInt(v.Get("rollout"))
	return rec, nil
}

func optInt(r gjson.Result) *int {
	if !r.Exists() || r.Type == gjson.Null {
		return nil
	}
	n := int(r.Int())
	return &n
}

// ParseStoriesYAML decodes a YAML list of stories.
func ParseStoriesYAML(data []byte, gen *Generator) ([]*domain.UserStory, error) {
	var records []storyRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: invalid YAML in stories file: %w", ErrInvalidFormat, err)
	}
	return buildStories(records, gen)
}

func buildStories(records []storyRecord, gen *Generator) ([]*domain.UserStory, error) {
	stories := make([]*domain.UserStory, 0, len(records))
	for i, rec := range records {
		s, err := buildStory(rec, gen)
		if err != nil {
			return nil, fmt.Errorf("story %d: %w", i+1, err)
		}
		stories = append(stories, s)
	}
	return stories, nil
}

func buildStory(rec storyRecord, gen *Generator) (*domain.UserStory, error) {
	if rec.ID == nil {
		return nil, fmt.Errorf("%w in story: 'id'", ErrMissingField)
	}
	id := *rec.ID

	var opts []domain.StoryOption
	if rec.ArrivalDay != nil {
		opts = append(opts, domain.WithArrivalDay(*rec.ArrivalDay))
	}
	if rec.Priority != nil {
		opts = append(opts, domain.WithPriority(*rec.Priority))
	}
	if rec.FeatureID != "" {
		opts = append(opts, domain.WithFeature(rec.FeatureID))
	}

	if rec.Tasks != nil {
		phases, err := expandTasks(rec.Tasks)
		if err != nil {
			return nil, fmt.Errorf("story %s: %w", id, err)
		}
		return domain.NewUserStory(id, phases, opts...)
	}

	durations := make(domain.PhaseDurations, domain.PhaseCount)
	for phase, n := range rec.counts() {
		switch {
		case n != nil:
			durations[domain.Phase(phase)] = *n
		case domain.Phase(phase) == domain.PhaseRollout:
			durations[domain.PhaseRollout] = 1
		case gen != nil:
			durations[domain.Phase(phase)] = gen.Draw(domain.Phase(phase))
		default:
			return nil, fmt.Errorf("%w in story %s: '%s'", ErrMissingField, id, domain.Phase(phase).Key())
		}
	}
	return domain.FromPhaseDurations(id, durations, opts...)
}

func expandTasks(tasks []taskRecord) ([]domain.Phase, error) {
	var phases []domain.Phase
	for _, t := range tasks {
		if t.Phase == "" {
			return nil, fmt.Errorf("%w in task: 'phase'", ErrMissingField)
		}
		phase, err := domain.ParsePhase(t.Phase)
		if err != nil {
			return nil, err
		}
		count := 1
		if t.Count != nil {
			count = *t.Count
		}
		if count <= 0 {
			return nil, fmt.Errorf("%w: %s task count %d", domain.ErrInvalidDuration, phase, count)
		}
		for range count {
			phases = append(phases, phase)
		}
	}
	return phases, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
