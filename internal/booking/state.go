package booking

import (
	"github.com/jwalitptl/medibook/internal/model"
	"github.com/jwalitptl/medibook/pkg/timefmt"
)

// Phase is the creation workflow position.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDrafting
	PhaseConflictOffered
)

func (p Phase) String() string {
	switch p {
	case PhaseDrafting:
		return "drafting"
	case PhaseConflictOffered:
		return "conflict_offered"
	default:
		return "idle"
	}
}

type Tab string

const (
	TabAll      Tab = "All"
	TabToday    Tab = "Today"
	TabUpcoming Tab = "Upcoming"
	TabPast     Tab = "Past"
)

var Tabs = []Tab{TabAll, TabToday, TabUpcoming, TabPast}

// DefaultDraftTime is the form's initial start time.
const DefaultDraftTime = "09:00"

// Draft is the new-appointment form. Time is "HH:MM"; an empty Date means
// "use the selected date" at submit time.
type Draft struct {
	Name       string                    `json:"name" validate:"required_without=Title"`
	Title      string                    `json:"title"`
	Date       string                    `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Time       string                    `json:"time" validate:"required,clock24"`
	Duration   model.AppointmentDuration `json:"duration" validate:"required,oneof='15 min' '30 min' '45 min' '60 min'"`
	DoctorName string                    `json:"doctorName" validate:"required"`
	Mode       model.AppointmentMode     `json:"mode" validate:"required,oneof='In-Person' 'Video Call'"`
	Phone      string                    `json:"phone" validate:"omitempty,phone"`
	Email      string                    `json:"email" validate:"omitempty,contact_email"`
	Reason     string                    `json:"reason"`
}

// NewDraft returns the form defaults for the given date and doctor roster.
func NewDraft(date string, doctors []string) Draft {
	d := Draft{
		Date:     date,
		Time:     DefaultDraftTime,
		Duration: model.DefaultDuration,
		Mode:     model.AppointmentModeInPerson,
	}
	if len(doctors) > 0 {
		d.DoctorName = doctors[0]
	}
	return d
}

// Payload formats the draft for submission: time becomes "hh:mm AM|PM", a
// missing date falls back to selectedDate and status is Scheduled.
func (d Draft) Payload(selectedDate string) (*model.Appointment, error) {
	t, err := timefmt.To12Hour(d.Time)
	if err != nil {
		return nil, err
	}
	date := d.Date
	if date == "" {
		date = selectedDate
	}
	return &model.Appointment{
		Name:       d.Name,
		Title:      d.Title,
		Date:       date,
		Time:       t,
		Duration:   d.Duration,
		DoctorName: d.DoctorName,
		Mode:       d.Mode,
		Phone:      d.Phone,
		Email:      d.Email,
		Reason:     d.Reason,
		Status:     model.AppointmentStatusScheduled,
	}, nil
}

// State is the whole view state of the booking screen.
type State struct {
	Today        string
	SelectedDate string
	Tab          Tab
	Search       string

	Doctors      []string
	Appointments []model.Appointment
	Loading      bool
	// Generation increases on every local patch of Appointments. A fetched
	// snapshot is applied only if it was requested under the current value.
	Generation uint64

	Phase         Phase
	Draft         Draft
	SuggestedTime string
	Notice        string
}

// Action is a state transition input.
type Action interface {
	action()
}

type (
	TodayResolved struct {
		Date      string
		Simulated bool
	}
	DoctorsLoaded struct {
		Doctors []string
	}
	AppointmentsRequested struct{}
	AppointmentsLoaded    struct {
		Appointments []model.Appointment
		Generation   uint64
	}
	AppointmentsFailed struct {
		Err error
	}

	DateSelected struct {
		Date string
	}
	DayShifted struct {
		Days int
	}
	TabSelected struct {
		Tab Tab
	}
	SearchChanged struct {
		Query string
	}

	PanelOpened  struct{}
	PanelClosed  struct{}
	DraftChanged struct {
		Draft Draft
	}
	SubmitRejected struct {
		Reason string
	}
	SubmitSucceeded  struct{}
	ConflictReported struct {
		SuggestedTime string
	}
	SuggestionAccepted struct{}
	SuggestionDeclined struct{}
	SubmitFailed       struct {
		Err error
	}

	StatusPatched struct {
		ID     string
		Status model.AppointmentStatus
	}
	StatusFailed struct {
		ID  string
		Err error
	}
)

func (TodayResolved) action()         {}
func (DoctorsLoaded) action()         {}
func (AppointmentsRequested) action() {}
func (AppointmentsLoaded) action()    {}
func (AppointmentsFailed) action()    {}
func (DateSelected) action()          {}
func (DayShifted) action()            {}
func (TabSelected) action()           {}
func (SearchChanged) action()         {}
func (PanelOpened) action()           {}
func (PanelClosed) action()           {}
func (DraftChanged) action()          {}
func (SubmitRejected) action()        {}
func (SubmitSucceeded) action()       {}
func (ConflictReported) action()      {}
func (SuggestionAccepted) action()    {}
func (SuggestionDeclined) action()    {}
func (SubmitFailed) action()          {}
func (StatusPatched) action()         {}
func (StatusFailed) action()          {}

const (
	noticeCreateFailed = "Failed to create appointment"
	noticeStatusFailed = "Failed to update status"
)

// Reduce applies a to s. It never performs I/O and never mutates slices
// shared with s.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case TodayResolved:
		s.Today = a.Date
		s.SelectedDate = a.Date
		if s.Phase == PhaseIdle {
			s.Draft = NewDraft(s.SelectedDate, s.Doctors)
		}

	case DoctorsLoaded:
		s.Doctors = append([]string(nil), a.Doctors...)
		if s.Phase == PhaseIdle {
			s.Draft = NewDraft(s.SelectedDate, s.Doctors)
		}

	case AppointmentsRequested:
		s.Loading = true

	case AppointmentsLoaded:
		s.Loading = false
		if a.Generation == s.Generation {
			s.Appointments = append([]model.Appointment(nil), a.Appointments...)
		}

	case AppointmentsFailed:
		s.Loading = false

	case DateSelected:
		if timefmt.ValidDate(a.Date) {
			s.SelectedDate = a.Date
		}

	case DayShifted:
		base := s.SelectedDate
		if base == "" {
			base = s.Today
		}
		if next, err := timefmt.ShiftDate(base, a.Days); err == nil {
			s.SelectedDate = next
		}

	case TabSelected:
		for _, t := range Tabs {
			if t == a.Tab {
				s.Tab = a.Tab
			}
		}

	case SearchChanged:
		s.Search = a.Query

	case PanelOpened:
		if s.Phase == PhaseIdle {
			s.Phase = PhaseDrafting
			s.Draft = NewDraft(s.SelectedDate, s.Doctors)
			s.SuggestedTime = ""
			s.Notice = ""
		}

	case PanelClosed:
		s.Phase = PhaseIdle
		s.Draft = NewDraft(s.SelectedDate, s.Doctors)
		s.SuggestedTime = ""
		s.Notice = ""

	case DraftChanged:
		if s.Phase == PhaseDrafting {
			s.Draft = a.Draft
		}

	case SubmitRejected:
		if s.Phase == PhaseDrafting {
			s.Notice = a.Reason
		}

	case SubmitSucceeded:
		if s.Phase == PhaseDrafting {
			s.Phase = PhaseIdle
			s.Draft = NewDraft(s.SelectedDate, s.Doctors)
			s.Notice = ""
		}

	case ConflictReported:
		if s.Phase == PhaseDrafting {
			s.Phase = PhaseConflictOffered
			s.SuggestedTime = a.SuggestedTime
			if s.Draft.Date == "" {
				s.Draft.Date = s.SelectedDate
			}
			s.Notice = model.SlotConflictMessage
		}

	case SuggestionAccepted:
		if s.Phase == PhaseConflictOffered {
			s.Phase = PhaseDrafting
			if t, err := timefmt.To24Hour(s.SuggestedTime); err == nil {
				s.Draft.Time = t
				s.Notice = ""
			} else {
				s.Notice = "Suggested time could not be applied"
			}
			s.SuggestedTime = ""
		}

	case SuggestionDeclined:
		if s.Phase == PhaseConflictOffered {
			s.Phase = PhaseDrafting
			s.SuggestedTime = ""
			s.Notice = ""
		}

	case SubmitFailed:
		if s.Phase == PhaseDrafting {
			s.Notice = noticeCreateFailed
		}

	case StatusPatched:
		patched := make([]model.Appointment, len(s.Appointments))
		copy(patched, s.Appointments)
		for i := range patched {
			if patched[i].ID == a.ID {
				patched[i].Status = a.Status
			}
		}
		s.Appointments = patched
		s.Generation++

	case StatusFailed:
		s.Notice = noticeStatusFailed
	}
	return s
}
