package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResourcePlan_Validation(t *testing.T) {
	tests := []struct {
		name    string
		start   int
		end     int
		caps    Capacities
		wantErr bool
	}{
		{name: "valid", start: 3, end: 5, caps: Capacities{1, 2, 3, 1}},
		{name: "zero capacity allowed at construction", start: 1, end: 2, caps: Capacities{0, 2, 3, 1}},
		{name: "start equals end", start: 4, end: 4, caps: Capacities{1, 1, 1, 1}, wantErr: true},
		{name: "start after end", start: 5, end: 3, caps: Capacities{1, 1, 1, 1}, wantErr: true},
		{name: "negative capacity", start: 1, end: 3, caps: Capacities{1, -1, 1, 1}, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			plan, err := NewResourcePlan(tc.start, tc.end, tc.caps)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidPlan)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.start, plan.Start())
			assert.Equal(t, tc.end, plan.End())
			assert.Equal(t, tc.caps, plan.Capacities())
		})
	}
}

func TestResourcePlan_Covers(t *testing.T) {
	plan := mustPlan(t, 3, 5, Capacities{1, 1, 1, 1})

	for day, want := range map[int]bool{2: false, 3: true, 4: true, 5: true, 6: false} {
		assert.Equal(t, want, plan.Covers(day), "day %d", day)
	}
}

func TestResourcePlan_Overlaps(t *testing.T) {
	caps := Capacities{1, 1, 1, 1}
	base := mustPlan(t, 3, 5, caps)

	tests := []struct {
		name       string
		start, end int
		want       bool
	}{
		{"inside", 4, 6, true},
		{"touching start", 1, 3, true},
		{"touching end", 5, 9, true},
		{"containing", 1, 10, true},
		{"after", 6, 8, false},
		{"before", 1, 2, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			other := mustPlan(t, tc.start, tc.end, caps)
			assert.Equal(t, tc.want, base.Overlaps(other))
			assert.Equal(t, tc.want, other.Overlaps(base))
		})
	}
}

func TestCapacities(t *testing.T) {
	assert.Equal(t, Capacities{2, 3, 3, 1}, DefaultCapacities)
	assert.Equal(t, "2,3,3,1", DefaultCapacities.String())
	require.NoError(t, DefaultCapacities.Validate())
	assert.ErrorIs(t, Capacities{1, 1, 0, 1}.Validate(), ErrInvalidCapacity)
}

func TestResourcePlan_String(t *testing.T) {
	assert.Equal(t, "3-5:1,2,3,1", mustPlan(t, 3, 5, Capacities{1, 2, 3, 1}).String())
}
