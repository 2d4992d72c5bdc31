package scenario

import (
	"fmt"
	"io"
	"os"

	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
	"gopkg.in/yaml.v3"

	"github.com/alexander-akhmetov/devcyclesim/internal/domain"
)

// phaseRun is a stretch of consecutive same-phase tasks.
type phaseRun struct {
	phase domain.Phase
	count int
}

func runs(s *domain.UserStory) []phaseRun {
	var out []phaseRun
	for _, t := range s.Tasks() {
		if n := len(out); n > 0 && out[n-1].phase == t.Phase() {
			out[n-1].count++
			continue
		}
		out = append(out, phaseRun{phase: t.Phase(), count: 1})
	}
	return out
}

// EncodeStoriesJSON renders stories in the explicit task form, indented.
func EncodeStoriesJSON(stories []*domain.UserStory) ([]byte, error) {
	doc := []byte("[]")
	for _, s := range stories {
		obj := []byte("{}")
		var err error
		if obj, err = sjson.SetBytes(obj, "id", s.ID()); err != nil {
			return nil, err
		}
		if s.FeatureID() != domain.DefaultFeatureID {
			if obj, err = sjson.SetBytes(obj, "feature_id", s.FeatureID()); err != nil {
				return nil, err
			}
		}
		if obj, err = sjson.SetBytes(obj, "arrival_day", s.ArrivalDay()); err != nil {
			return nil, err
		}
		if obj, err = sjson.SetBytes(obj, "priority", s.Priority()); err != nil {
			return nil, err
		}
		if obj, err = sjson.SetRawBytes(obj, "tasks", []byte("[]")); err != nil {
			return nil, err
		}
		for _, r := range runs(s) {
			task := []byte(fmt.Sprintf(`{"phase":%q,"count":%d}`, r.phase.Key(), r.count))
			if obj, err = sjson.SetRawBytes(obj, "tasks.-1", task); err != nil {
				return nil, err
			}
		}
		if doc, err = sjson.SetRawBytes(doc, "-1", obj); err != nil {
			return nil, err
		}
	}
	return pretty.Pretty(doc), nil
}

// EncodeStoriesYAML renders stories in the explicit task form.
func EncodeStoriesYAML(stories []*domain.UserStory) ([]byte, error) {
	records := make([]storyRecord, 0, len(stories))
	for _, s := range stories {
		id, arrival, priority := s.ID(), s.ArrivalDay(), s.Priority()
		rec := storyRecord{ID: &id, ArrivalDay: &arrival, Priority: &priority}
		if s.FeatureID() != domain.DefaultFeatureID {
			rec.FeatureID = s.FeatureID()
		}
		for _, r := range runs(s) {
			count := r.count
			rec.Tasks = append(rec.Tasks, taskRecord{Phase: r.phase.Key(), Count: &count})
		}
		records = append(records, rec)
	}
	return yaml.Marshal(records)
}

// WriteStories encodes stories to w as JSON, or YAML when yamlOut is set.
func WriteStories(w io.Writer, stories []*domain.UserStory, yamlOut bool) error {
	encode := EncodeStoriesJSON
	if yamlOut {
		encode = EncodeStoriesYAML
	}
	data, err := encode(stories)
	if err != nil {
		return fmt.Errorf("encode stories: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// SaveStories writes a stories file, choosing the format by extension.
func SaveStories(path string, stories []*domain.UserStory) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create stories file: %w", err)
	}
	if err := WriteStories(f, stories, isYAML(path)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
