package booking

import (
	"sort"
	"strings"

	"github.com/jwalitptl/medibook/internal/model"
	"github.com/jwalitptl/medibook/pkg/timefmt"
)

// Filter returns the appointments visible for the given tab and search query.
// Dates compare lexicographically, which is valid for zero-padded ISO dates.
// The All tab shows the selected date.
func Filter(items []model.Appointment, tab Tab, today, selectedDate, search string) []model.Appointment {
	q := strings.ToLower(strings.TrimSpace(search))

	out := make([]model.Appointment, 0, len(items))
	for _, a := range items {
		if q != "" &&
			!strings.Contains(strings.ToLower(a.Name), q) &&
			!strings.Contains(strings.ToLower(a.DoctorName), q) {
			continue
		}

		switch tab {
		case TabToday:
			if a.Date != today {
				continue
			}
		case TabUpcoming:
			if a.Date <= today {
				continue
			}
		case TabPast:
			if a.Date >= today {
				continue
			}
		default:
			if selectedDate != "" && a.Date != selectedDate {
				continue
			}
		}
		out = append(out, a)
	}
	return out
}

// Visible applies Filter to the state.
func (s State) Visible() []model.Appointment {
	return Filter(s.Appointments, s.Tab, s.Today, s.SelectedDate, s.Search)
}

// GridOptions configures the day timeline. EndHour only sizes the timeline;
// entries after it are kept.
type GridOptions struct {
	StartHour int
	EndHour   int
	PxPerHour float64
}

func DefaultGridOptions() GridOptions {
	return GridOptions{StartHour: 7, EndHour: 21, PxPerHour: 80}
}

// GridEntry is an appointment positioned on the day timeline.
type GridEntry struct {
	Appointment model.Appointment
	Offset      float64
	Height      float64
}

// Layout positions appointments on the timeline. Entries starting before
// StartHour, or whose time cannot be parsed, are left out of the result.
func Layout(items []model.Appointment, opts GridOptions) []GridEntry {
	entries := make([]GridEntry, 0, len(items))
	for _, a := range items {
		h, m, err := timefmt.Parse12(a.Time)
		if err != nil {
			continue
		}
		start := float64(h) + float64(m)/60
		offset := (start - float64(opts.StartHour)) * opts.PxPerHour
		if offset < 0 {
			continue
		}
		entries = append(entries, GridEntry{
			Appointment: a,
			Offset:      offset,
			Height:      float64(a.Duration.Minutes()) / 60 * opts.PxPerHour,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Offset < entries[j].Offset })
	return entries
}

// TimelineHeight is the height of the StartHour..EndHour span, stretched to
// fit any entry that ends below it.
func TimelineHeight(entries []GridEntry, opts GridOptions) float64 {
	h := float64(opts.EndHour-opts.StartHour) * opts.PxPerHour
	if h < 0 {
		h = 0
	}
	for _, e := range entries {
		if bottom := e.Offset + e.Height; bottom > h {
			h = bottom
		}
	}
	return h
}

// DayGrid lays out the selected day's appointments, honoring the search query.
func (s State) DayGrid(opts GridOptions) []GridEntry {
	return Layout(Filter(s.Appointments, TabAll, s.Today, s.SelectedDate, s.Search), opts)
}
