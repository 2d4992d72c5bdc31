package report

import (
	"io"
	"strings"

	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/alexander-akhmetov/devcyclesim/internal/domain"
	"github.com/alexander-akhmetov/devcyclesim/internal/stats"
)

// JSON writes {"daily_statistics": {...}, "task_completion_dates": {...}}.
// Keys keep report order: days ascending, metrics in column order, stories
// in insertion order. Pending tasks carry a null day.
func JSON(w io.Writer, history []stats.ProcessStatistic) error {
	data, err := EncodeJSON(history)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// EncodeJSON builds the pretty-printed JSON document.
func EncodeJSON(history []stats.ProcessStatistic) ([]byte, error) {
	if len(history) == 0 {
		return nil, ErrEmptyHistory
	}

	doc := []byte(`{"daily_statistics":{},"task_completion_dates":{}}`)
	var err error
	for _, day := range history {
		obj := []byte(`{}`)
		for _, m := range dailyMetrics(day) {
			if obj, err = sjson.SetBytes(obj, pathKey(m.name), m.value); err != nil {
				return nil, err
			}
		}
		if doc, err = sjson.SetRawBytes(doc, "daily_statistics."+pathKey(dayLabel(day.Day)), obj); err != nil {
			return nil, err
		}
	}

	for _, s := range last(history).Stories() {
		obj, err := timelineJSON(s.Timeline)
		if err != nil {
			return nil, err
		}
		if doc, err = sjson.SetRawBytes(doc, "task_completion_dates."+pathKey(s.ID), obj); err != nil {
			return nil, err
		}
	}

	return pretty.Pretty(doc), nil
}

func timelineJSON(t domain.CompletionDates) ([]byte, error) {
	obj := []byte(`{"completed":[],"pending":[]}`)
	var err error
	for _, pd := range t.Completed {
		pair := []byte(`[]`)
		if pair, err = sjson.SetBytes(pair, "-1", pd.Phase.String()); err != nil {
			return nil, err
		}
		if pair, err = sjson.SetBytes(pair, "-1", pd.Day); err != nil {
			return nil, err
		}
		if obj, err = sjson.SetRawBytes(obj, "completed.-1", pair); err != nil {
			return nil, err
		}
	}
	for _, pd := range t.Pending {
		pair := []byte(`[]`)
		if pair, err = sjson.SetBytes(pair, "-1", pd.Phase.String()); err != nil {
			return nil, err
		}
		if pair, err = sjson.SetRawBytes(pair, "-1", []byte("null")); err != nil {
			return nil, err
		}
		if obj, err = sjson.SetRawBytes(obj, "pending.-1", pair); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

// pathKey escapes a literal object key for an sjson path. Numeric keys are
// forced to object keys with the ':' prefix.
func pathKey(key string) string {
	var b strings.Builder
	if isDigits(key) {
		b.WriteByte(':')
	}
	for _, r := range key {
		switch r {
		case '.', '*', '?', '\\', '|', '#', '@', ':':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
