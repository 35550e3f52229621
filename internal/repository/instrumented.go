package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jwalitptl/medibook/internal/model"
	"github.com/jwalitptl/medibook/pkg/metrics"
)

type instrumentedRepository struct {
	next    AppointmentRepository
	metrics *metrics.Metrics
}

// WithMetrics records count and latency of every call made on repo.
func WithMetrics(repo AppointmentRepository, m *metrics.Metrics) AppointmentRepository {
	if m == nil {
		return repo
	}
	return &instrumentedRepository{next: repo, metrics: m}
}

func (r *instrumentedRepository) observe(op string, start time.Time, err error) {
	status := metrics.Result(err)
	if errors.Is(err, ErrNotFound) {
		status = "not_found"
	}
	r.metrics.StorageOperations.WithLabelValues(op, status).Inc()
	r.metrics.StorageLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (r *instrumentedRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	start := time.Now()
	err := r.next.Create(ctx, appointment)
	r.observe("create", start, err)
	return err
}

func (r *instrumentedRepository) Get(ctx context.Context, id string) (*model.Appointment, error) {
	start := time.Now()
	a, err := r.next.Get(ctx, id)
	r.observe("get", start, err)
	return a, err
}

func (r *instrumentedRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	start := time.Now()
	items, err := r.next.List(ctx, filters)
	r.observe("list", start, err)
	return items, err
}

func (r *instrumentedRepository) ListByDoctorAndDate(ctx context.Context, doctorName, date string) ([]*model.Appointment, error) {
	start := time.Now()
	items, err := r.next.ListByDoctorAndDate(ctx, doctorName, date)
	r.observe("list_by_doctor_date", start, err)
	return items, err
}

func (r *instrumentedRepository) UpdateStatus(ctx context.Context, id string, status model.AppointmentStatus) (*model.Appointment, error) {
	start := time.Now()
	a, err := r.next.UpdateStatus(ctx, id, status)
	r.observe("update_status", start, err)
	return a, err
}

func (r *instrumentedRepository) DoctorNames(ctx context.Context) ([]string, error) {
	start := time.Now()
	names, err := r.next.DoctorNames(ctx)
	r.observe("doctor_names", start, err)
	return names, err
}

func (r *instrumentedRepository) CancelBefore(ctx context.Context, date string) (int64, error) {
	start := time.Now()
	n, err := r.next.CancelBefore(ctx, date)
	r.observe("cancel_before", start, err)
	return n, err
}

func (r *instrumentedRepository) Ping(ctx context.Context) error {
	start := time.Now()
	err := r.next.Ping(ctx)
	r.observe("ping", start, err)
	return err
}
