package repository

import (
	"context"
	"errors"

	"github.com/jwalitptl/medibook/internal/model"
)

// ErrNotFound is returned when no appointment has the requested id.
var ErrNotFound = errors.New("appointment not found")

type (
	// AppointmentRepository stores appointments. Implementations assign the
	// id on Create and return copies, never shared pointers.
	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id string) (*model.Appointment, error)
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		ListByDoctorAndDate(ctx context.Context, doctorName, date string) ([]*model.Appointment, error)
		UpdateStatus(ctx context.Context, id string, status model.AppointmentStatus) (*model.Appointment, error)
		DoctorNames(ctx context.Context) ([]string, error)
		// CancelBefore cancels every non-terminal appointment dated strictly
		// before date and returns how many changed.
		CancelBefore(ctx context.Context, date string) (int64, error)
		Ping(ctx context.Context) error
	}
)
