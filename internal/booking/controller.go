// Package booking holds the booking screen's view state and drives it
// through API results and user actions.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/medibook/internal/model"
	"github.com/jwalitptl/medibook/pkg/logger"
	"github.com/jwalitptl/medibook/pkg/timefmt"
	bookingvalidator "github.com/jwalitptl/medibook/pkg/validator"
)

// API is the subset of the appointment API the controller needs.
type API interface {
	GetConfig(ctx context.Context) (*model.ScheduleConfig, error)
	GetDoctors(ctx context.Context) ([]string, error)
	ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]model.Appointment, error)
	CreateAppointment(ctx context.Context, apt *model.Appointment) (*model.Appointment, error)
	UpdateStatus(ctx context.Context, id string, status model.AppointmentStatus) (*model.Appointment, error)
}

type Outcome int

const (
	OutcomeRejected Outcome = iota
	OutcomeCreated
	OutcomeConflict
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeConflict:
		return "conflict"
	case OutcomeFailed:
		return "failed"
	default:
		return "rejected"
	}
}

var ErrNotDrafting = errors.New("no appointment draft is open")

// ValidationError is a draft problem reported before any request is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type Options struct {
	// Location resolves "today" when the API cannot.
	Location        *time.Location
	Now             func() time.Time
	FallbackDoctors []string
	Logger          *logger.Logger
}

type Controller struct {
	api      API
	validate *validator.Validate
	loc      *time.Location
	now      func() time.Time
	doctors  []string
	log      *logger.Logger

	mu    sync.Mutex
	state State
}

func NewController(api API, opts Options) *Controller {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if len(opts.FallbackDoctors) == 0 {
		opts.FallbackDoctors = model.DefaultDoctors
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}

	today := timefmt.Today(opts.Now(), opts.Location)
	return &Controller{
		api:      api,
		validate: bookingvalidator.New(),
		loc:      opts.Location,
		now:      opts.Now,
		doctors:  opts.FallbackDoctors,
		log:      opts.Logger,
		state: State{
			Today:        today,
			SelectedDate: today,
			Tab:          TabAll,
			Doctors:      append([]string(nil), opts.FallbackDoctors...),
			Draft:        NewDraft(today, opts.FallbackDoctors),
		},
	}
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Dispatch applies a to the current state.
func (c *Controller) Dispatch(a Action) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Reduce(c.state, a)
	return c.state
}

// Load seeds "today", the doctor roster and the appointment list, in that
// order. Config and doctor failures fall back to local values.
func (c *Controller) Load(ctx context.Context) error {
	today := timefmt.Today(c.now(), c.loc)
	simulated := false
	cfg, err := c.api.GetConfig(ctx)
	switch {
	case err != nil:
		c.log.Warn("config fetch failed, using local date", "error", err.Error(), "date", today)
	case !timefmt.ValidDate(cfg.CurrentDate):
		c.log.Warn("config returned invalid date, using local date", "current_date", cfg.CurrentDate)
	default:
		today = cfg.CurrentDate
		simulated = cfg.IsSimulation
		c.log.Debug("synced with server date", "date", today)
	}
	c.Dispatch(TodayResolved{Date: today, Simulated: simulated})

	doctors, err := c.api.GetDoctors(ctx)
	if err != nil || len(doctors) == 0 {
		if err != nil {
			c.log.Warn("doctor fetch failed, using default roster", "error", err.Error())
		}
		doctors = c.doctors
	}
	c.Dispatch(DoctorsLoaded{Doctors: doctors})

	return c.Refresh(ctx)
}

// Refresh replaces the appointment list with the server's. On failure the
// current list is kept.
func (c *Controller) Refresh(ctx context.Context) error {
	generation := c.Dispatch(AppointmentsRequested{}).Generation

	items, err := c.api.ListAppointments(ctx, nil)
	if err != nil {
		c.Dispatch(AppointmentsFailed{Err: err})
		c.log.Error(err, "error fetching appointments")
		return fmt.Errorf("failed to list appointments: %w", err)
	}

	s := c.Dispatch(AppointmentsLoaded{Appointments: items, Generation: generation})
	if s.Generation != generation {
		c.log.Debug("discarded stale appointment snapshot", "requested_at", generation, "current", s.Generation)
	}
	return nil
}

func (c *Controller) OpenPanel() State {
	return c.Dispatch(PanelOpened{})
}

func (c *Controller) ClosePanel() State {
	return c.Dispatch(PanelClosed{})
}

// EditDraft applies edit to a copy of the draft.
func (c *Controller) EditDraft(edit func(*Draft)) State {
	d := c.State().Draft
	edit(&d)
	return c.Dispatch(DraftChanged{Draft: d})
}

// Submit validates and sends the draft. A validation failure sends nothing.
// A conflict moves to PhaseConflictOffered and returns the *model.SlotConflict;
// nothing is re-submitted automatically.
func (c *Controller) Submit(ctx context.Context) (Outcome, error) {
	s := c.State()
	if s.Phase != PhaseDrafting {
		return OutcomeRejected, ErrNotDrafting
	}

	draft := normalize(s.Draft)
	if err := c.validateDraft(draft); err != nil {
		c.Dispatch(SubmitRejected{Reason: err.Error()})
		return OutcomeRejected, err
	}

	payload, err := draft.Payload(s.SelectedDate)
	if err != nil {
		verr := &ValidationError{Field: "time", Message: "Please choose a valid start time"}
		c.Dispatch(SubmitRejected{Reason: verr.Message})
		return OutcomeRejected, verr
	}

	_, err = c.api.CreateAppointment(ctx, payload)
	var conflict *model.SlotConflict
	switch {
	case errors.As(err, &conflict):
		c.Dispatch(ConflictReported{SuggestedTime: conflict.SuggestedTime})
		return OutcomeConflict, conflict
	case err != nil:
		c.Dispatch(SubmitFailed{Err: err})
		c.log.Error(err, "failed to create appointment")
		return OutcomeFailed, err
	}

	c.Dispatch(SubmitSucceeded{})
	if err := c.Refresh(ctx); err != nil {
		c.log.Warn("refresh after create failed", "error", err.Error())
	}
	return OutcomeCreated, nil
}

// AcceptSuggestion moves the suggested time into the draft. The draft must be
// submitted again explicitly.
func (c *Controller) AcceptSuggestion() State {
	return c.Dispatch(SuggestionAccepted{})
}

func (c *Controller) DeclineSuggestion() State {
	return c.Dispatch(SuggestionDeclined{})
}

// ChangeStatus updates the status remotely and patches the local copy
// without re-fetching the list.
func (c *Controller) ChangeStatus(ctx context.Context, id string, status model.AppointmentStatus) error {
	updated, err := c.api.UpdateStatus(ctx, id, status)
	if err != nil {
		c.Dispatch(StatusFailed{ID: id, Err: err})
		c.log.Error(err, "failed to update status", "id", id, "status", string(status))
		return fmt.Errorf("failed to update status: %w", err)
	}

	applied := status
	if updated != nil && updated.Status != "" {
		applied = updated.Status
	}
	c.Dispatch(StatusPatched{ID: id, Status: applied})
	return nil
}

func (c *Controller) SelectDate(date string) State {
	return c.Dispatch(DateSelected{Date: date})
}

func (c *Controller) ShiftDay(days int) State {
	return c.Dispatch(DayShifted{Days: days})
}

func (c *Controller) SelectTab(tab Tab) State {
	return c.Dispatch(TabSelected{Tab: tab})
}

func (c *Controller) Search(query string) State {
	return c.Dispatch(SearchChanged{Query: query})
}

func normalize(d Draft) Draft {
	d.Name = strings.TrimSpace(d.Name)
	d.Title = strings.TrimSpace(d.Title)
	d.Phone = strings.TrimSpace(d.Phone)
	d.Email = strings.TrimSpace(d.Email)
	d.Time = strings.TrimSpace(d.Time)
	return d
}

func (c *Controller) validateDraft(d Draft) error {
	err := c.validate.Struct(d)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	fe := verrs[0]
	msg := fmt.Sprintf("Invalid %s", fe.Field())
	switch fe.Field() {
	case "name":
		msg = "Please enter a patient name or an appointment title"
	case "phone":
		msg = "Please enter a valid phone number"
	case "email":
		msg = "Please enter a valid email address"
	case "time":
		msg = "Please choose a valid start time"
	case "date":
		msg = "Please choose a valid date"
	case "doctorName":
		msg = "Please choose a doctor"
	}
	return &ValidationError{Field: fe.Field(), Message: msg}
}
