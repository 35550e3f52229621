package appointment

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/medibook/internal/model"
	"github.com/jwalitptl/medibook/internal/repository"
	"github.com/jwalitptl/medibook/internal/service/notification"
	apperrors "github.com/jwalitptl/medibook/pkg/errors"
	"github.com/jwalitptl/medibook/pkg/logger"
	"github.com/jwalitptl/medibook/pkg/metrics"
	"github.com/jwalitptl/medibook/pkg/timefmt"
)

const (
	doctorsCacheKey     = "doctors"
	defaultDoctorTTL    = 5 * time.Minute
	sideEffectTimeout   = 30 * time.Second
	resourceAppointment = "Appointment"
)

// EventPublisher receives appointment changes after they are stored.
type EventPublisher interface {
	AppointmentCreated(ctx context.Context, apt *model.Appointment) error
	StatusChanged(ctx context.Context, apt *model.Appointment, previous model.AppointmentStatus) error
}

type Options struct {
	Location *time.Location
	// SimulationDate pins "today" to a fixed ISO date.
	SimulationDate string
	Doctors        []string
	DoctorCacheTTL time.Duration
	Now            func() time.Time
	Logger         *logger.Logger
	Metrics        *metrics.Metrics
	Events         EventPublisher
	Notifier       notification.Service
	// Dispatch runs post-commit side effects. Defaults to a new goroutine.
	Dispatch func(func())
}

type Service struct {
	repo           repository.AppointmentRepository
	loc            *time.Location
	simulationDate string
	doctors        []string
	doctorCache    *cache.Cache
	now            func() time.Time
	log            *logger.Logger
	metrics        *metrics.Metrics
	events         EventPublisher
	notifier       notification.Service
	dispatch       func(func())

	// mu serializes the conflict check with the write that follows it.
	mu sync.Mutex
}

func NewService(repo repository.AppointmentRepository, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DoctorCacheTTL <= 0 {
		opts.DoctorCacheTTL = defaultDoctorTTL
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Nop()
	}
	if opts.Dispatch == nil {
		opts.Dispatch = func(f func()) { go f() }
	}
	return &Service{
		repo:           repo,
		loc:            opts.Location,
		simulationDate: opts.SimulationDate,
		doctors:        append([]string(nil), opts.Doctors...),
		doctorCache:    cache.New(opts.DoctorCacheTTL, 2*opts.DoctorCacheTTL),
		now:            opts.Now,
		log:            opts.Logger,
		metrics:        opts.Metrics,
		events:         opts.Events,
		notifier:       opts.Notifier,
		dispatch:       opts.Dispatch,
	}
}

// Today is the simulation date when one is configured, otherwise the current
// date in the configured timezone.
func (s *Service) Today() string {
	if s.simulationDate != "" {
		return s.simulationDate
	}
	return timefmt.Today(s.now(), s.loc)
}

func (s *Service) ScheduleConfig() *model.ScheduleConfig {
	return &model.ScheduleConfig{
		CurrentDate:  s.Today(),
		IsSimulation: s.simulationDate != "",
	}
}

// Doctors returns the configured roster merged with every doctor found in
// stored appointments, sorted and without duplicates.
func (s *Service) Doctors(ctx context.Context) ([]string, error) {
	if cached, ok := s.doctorCache.Get(doctorsCacheKey); ok {
		return append([]string(nil), cached.([]string)...), nil
	}

	stored, err := s.repo.DoctorNames(ctx)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to list doctors: %w", err))
	}

	seen := make(map[string]struct{}, len(s.doctors)+len(stored))
	names := make([]string, 0, len(s.doctors)+len(stored))
	for _, list := range [][]string{s.doctors, stored} {
		for _, name := range list {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	sort.Strings(names)

	s.doctorCache.Set(doctorsCacheKey, names, cache.DefaultExpiration)
	return append([]string(nil), names...), nil
}

func (s *Service) ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	if filters != nil && filters.Date != "" && !timefmt.ValidDate(filters.Date) {
		return nil, apperrors.BadRequest("date must be YYYY-MM-DD", nil)
	}
	items, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to list appointments: %w", err))
	}
	if items == nil {
		items = []*model.Appointment{}
	}
	return items, nil
}

// CreateAppointment stores a new Scheduled appointment. When the doctor is
// busy it returns *model.SlotConflict carrying the next free start time.
func (s *Service) CreateAppointment(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	apt := req.ToAppointment()
	start, duration, err := validateAppointment(apt)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	existing, err := s.repo.ListByDoctorAndDate(ctx, apt.DoctorName, apt.Date)
	if err != nil {
		s.mu.Unlock()
		return nil, apperrors.Internal(fmt.Errorf("failed to check availability: %w", err))
	}
	if next, busy := SuggestStart(existing, start, duration); busy {
		s.mu.Unlock()
		s.metrics.BookingConflicts.Inc()
		suggested := FormatMinutes(next)
		s.log.WithContext(ctx).Info("doctor busy",
			"doctor", apt.DoctorName, "date", apt.Date, "time", apt.Time, "suggested_time", suggested)
		return nil, &model.SlotConflict{Message: model.SlotConflictMessage, SuggestedTime: suggested}
	}
	err = s.repo.Create(ctx, apt)
	s.mu.Unlock()
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to create appointment: %w", err))
	}

	s.doctorCache.Delete(doctorsCacheKey)
	s.metrics.AppointmentsCreated.WithLabelValues(string(apt.Mode)).Inc()
	s.log.WithContext(ctx).Info("appointment created",
		"id", apt.ID, "doctor", apt.DoctorName, "date", apt.Date, "time", apt.Time)

	created := *apt
	s.afterCommit(ctx, func(ctx context.Context) {
		if s.events != nil {
			_ = s.events.AppointmentCreated(ctx, &created)
		}
		if s.notifier != nil {
			if err := s.notifier.AppointmentBooked(ctx, &created); err != nil {
				s.log.WithContext(ctx).Error(err, "confirmation not delivered", "id", created.ID)
			}
		}
	})
	return apt, nil
}

// UpdateStatus sets the status of an existing appointment.
func (s *Service) UpdateStatus(ctx context.Context, id string, status string) (*model.Appointment, error) {
	if strings.TrimSpace(status) == "" {
		return nil, apperrors.BadRequest("Missing status", nil)
	}
	parsed, ok := model.ParseStatus(status)
	if !ok {
		return nil, apperrors.BadRequest(fmt.Sprintf("invalid status %q", status), nil)
	}

	var previous model.AppointmentStatus
	s.mu.Lock()
	updated, err := s.repo.Get(ctx, id)
	if err == nil {
		previous = updated.Status
		updated, err = s.repo.UpdateStatus(ctx, id, parsed)
	}
	s.mu.Unlock()
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound(resourceAppointment, err)
	}
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to update status: %w", err))
	}

	s.metrics.StatusChanges.WithLabelValues(string(parsed)).Inc()
	s.log.WithContext(ctx).Info("appointment status updated",
		"id", updated.ID, "from", string(previous), "to", string(parsed))

	snapshot := *updated
	s.afterCommit(ctx, func(ctx context.Context) {
		if s.events != nil {
			_ = s.events.StatusChanged(ctx, &snapshot, previous)
		}
	})
	return updated, nil
}

// CleanupPastAppointments cancels every appointment dated before today that
// is neither Completed nor Cancelled.
func (s *Service) CleanupPastAppointments(ctx context.Context) (int64, error) {
	today := s.Today()

	s.mu.Lock()
	n, err := s.repo.CancelBefore(ctx, today)
	s.mu.Unlock()
	if err != nil {
		return 0, fmt.Errorf("failed to cancel past appointments: %w", err)
	}

	if n > 0 {
		s.metrics.AppointmentsCancelled.Add(float64(n))
		s.doctorCache.Delete(doctorsCacheKey)
	}
	s.log.WithContext(ctx).Info("past appointments cleaned up", "before", today, "cancelled", n)
	return n, nil
}

// Ping reports whether storage is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// afterCommit runs f outside the request lifecycle, keeping ctx values.
func (s *Service) afterCommit(ctx context.Context, f func(context.Context)) {
	if s.events == nil && s.notifier == nil {
		return
	}
	detached := context.WithoutCancel(ctx)
	s.dispatch(func() {
		ctx, cancel := context.WithTimeout(detached, sideEffectTimeout)
		defer cancel()
		f(ctx)
	})
}

func validateAppointment(apt *model.Appointment) (start, duration int, err error) {
	if apt.Name == "" && apt.Title == "" {
		return 0, 0, apperrors.BadRequest("name or title is required", nil)
	}
	if apt.DoctorName == "" {
		return 0, 0, apperrors.BadRequest("doctorName is required", nil)
	}
	if !timefmt.ValidDate(apt.Date) {
		return 0, 0, apperrors.BadRequest("date must be YYYY-MM-DD", nil)
	}
	h, m, err := timefmt.Parse12(apt.Time)
	if err != nil {
		return 0, 0, apperrors.BadRequest("time must be hh:mm AM|PM", err)
	}
	duration = apt.Duration.Minutes()
	if duration == 0 {
		return 0, 0, apperrors.BadRequest(fmt.Sprintf("invalid duration %q", apt.Duration), nil)
	}
	return h*60 + m, duration, nil
}
