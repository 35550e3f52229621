package appointment

import (
	"github.com/jwalitptl/medibook/internal/model"
	"github.com/jwalitptl/medibook/pkg/timefmt"
)

const minutesPerDay = 24 * 60

// window returns a's [start, end) in minutes after midnight. Records with an
// unreadable time are ignored; an unreadable duration counts as the default.
func window(a *model.Appointment) (start, end int, ok bool) {
	h, m, err := timefmt.Parse12(a.Time)
	if err != nil {
		return 0, 0, false
	}
	d := a.Duration.Minutes()
	if d == 0 {
		d = model.DefaultDuration.Minutes()
	}
	start = h*60 + m
	return start, start + d, true
}

// latestOverlapEnd returns the latest end among appointments overlapping
// [start, end). Cancelled appointments do not occupy their slot.
func latestOverlapEnd(existing []*model.Appointment, start, end int) (int, bool) {
	latest, busy := 0, false
	for _, a := range existing {
		if a.Status == model.AppointmentStatusCancelled {
			continue
		}
		oStart, oEnd, ok := window(a)
		if !ok {
			continue
		}
		if start < oEnd && end > oStart && (!busy || oEnd > latest) {
			latest, busy = oEnd, true
		}
	}
	return latest, busy
}

// SuggestStart reports whether [start, start+duration) is taken and, if so,
// the earliest later start that is free. The search moves to the latest
// conflicting end until the slot is free or the day is over, in which case
// the last end reached is returned.
func SuggestStart(existing []*model.Appointment, start, duration int) (int, bool) {
	next, busy := latestOverlapEnd(existing, start, start+duration)
	if !busy {
		return start, false
	}
	for next < minutesPerDay {
		later, stillBusy := latestOverlapEnd(existing, next, next+duration)
		if !stillBusy {
			break
		}
		next = later
	}
	return next, true
}

// FormatMinutes renders minutes after midnight as "hh:mm AM|PM".
func FormatMinutes(m int) string {
	return timefmt.Format12((m/60)%24, m%60)
}
