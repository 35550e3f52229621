package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/medibook/internal/model"
)

func ids(items []model.Appointment) []string {
	out := make([]string, 0, len(items))
	for _, a := range items {
		out = append(out, a.ID)
	}
	return out
}

func TestFilterTabs(t *testing.T) {
	items := []model.Appointment{
		{ID: "past", Name: "Ann", Date: "2024-06-09", DoctorName: "Dr. House"},
		{ID: "today", Name: "Ben", Date: "2024-06-10", DoctorName: "Dr. Grey"},
		{ID: "next", Name: "Cat", Date: "2024-06-11", DoctorName: "Dr. House"},
		{ID: "far", Name: "Dan", Date: "2025-01-01", DoctorName: "Dr. Who"},
	}
	const today = "2024-06-10"

	tests := []struct {
		name     string
		tab      Tab
		selected string
		search   string
		want     []string
	}{
		{"today", TabToday, today, "", []string{"today"}},
		{"upcoming", TabUpcoming, today, "", []string{"next", "far"}},
		{"past", TabPast, today, "", []string{"past"}},
		{"all uses selected date", TabAll, "2024-06-11", "", []string{"next"}},
		{"all without date", TabAll, "", "", []string{"past", "today", "next", "far"}},
		{"search by doctor", TabUpcoming, today, "house", []string{"next"}},
		{"search by name", TabPast, today, "  ANN ", []string{"past"}},
		{"no match", TabToday, today, "zzz", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(items, tt.tab, today, tt.selected, tt.search)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestStateVisible(t *testing.T) {
	s := seededState()
	s.Tab = TabUpcoming
	assert.Equal(t, []string{"2"}, ids(s.Visible()))
}

func TestLayout(t *testing.T) {
	opts := GridOptions{StartHour: 7, PxPerHour: 80}
	items := []model.Appointment{
		{ID: "b", Time: "09:30 AM", Duration: model.Duration60},
		{ID: "a", Time: "07:00 AM", Duration: model.Duration30},
		{ID: "early", Time: "06:45 AM", Duration: model.Duration15},
		{ID: "bad", Time: "nine", Duration: model.Duration15},
		{ID: "pm", Time: "01:15 PM", Duration: model.Duration45},
	}

	entries := Layout(items, opts)

	require.Len(t, entries, 3)
	assert.Equal(t, "a", entries[0].Appointment.ID)
	assert.InDelta(t, 0, entries[0].Offset, 1e-9)
	assert.InDelta(t, 40, entries[0].Height, 1e-9)

	assert.Equal(t, "b", entries[1].Appointment.ID)
	assert.InDelta(t, 200, entries[1].Offset, 1e-9)
	assert.InDelta(t, 80, entries[1].Height, 1e-9)

	assert.Equal(t, "pm", entries[2].Appointment.ID)
	assert.InDelta(t, 500, entries[2].Offset, 1e-9)
	assert.InDelta(t, 60, entries[2].Height, 1e-9)
}

func TestLayoutKeepsEntriesAfterEndHour(t *testing.T) {
	items := []model.Appointment{
		{ID: "early", Time: "06:30 AM", Duration: model.Duration30},
		{ID: "late", Time: "09:30 PM", Duration: model.Duration30},
		{ID: "first", Time: "07:00 AM", Duration: model.Duration30},
	}
	opts := DefaultGridOptions()
	entries := Layout(items, opts)
	require.Len(t, entries, 2)

	assert.Equal(t, "first", entries[0].Appointment.ID)
	assert.InDelta(t, 0, entries[0].Offset, 1e-9)
	assert.InDelta(t, 40, entries[0].Height, 1e-9)

	assert.Equal(t, "late", entries[1].Appointment.ID)
	assert.InDelta(t, 14.5*80, entries[1].Offset, 1e-9)

	// 07:00 to 21:00 is 1120px; the 9:30 PM entry ends at 1200px.
	assert.InDelta(t, 1200, TimelineHeight(entries, opts), 1e-9)
	assert.InDelta(t, 1120, TimelineHeight(entries[:1], opts), 1e-9)
}

func TestDayGridShowsLateAppointments(t *testing.T) {
	s := seededState()
	s.Appointments[0].Time = "09:30 PM"
	s.Appointments[0].Duration = model.Duration30

	entries := s.DayGrid(DefaultGridOptions())
	require.Len(t, entries, 1)
	assert.Equal(t, "1", entries[0].Appointment.ID)
}

func TestDayGridUsesSelectedDate(t *testing.T) {
	s := seededState()
	s.Appointments[0].Time = "08:00 AM"
	s.Appointments[0].Duration = model.Duration30
	s.Appointments[1].Time = "08:00 AM"
	s.Tab = TabUpcoming

	entries := s.DayGrid(DefaultGridOptions())
	require.Len(t, entries, 1)
	assert.Equal(t, "1", entries[0].Appointment.ID)
	assert.InDelta(t, 80, entries[0].Offset, 1e-9)
}
