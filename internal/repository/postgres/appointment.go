package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/medibook/internal/model"
	"github.com/jwalitptl/medibook/internal/repository"
)

// Dates are stored as zero-padded ISO text so string comparison orders them.
const selectAppointment = `
	SELECT id::text AS id, name, title,
		   appointment_date AS date, start_time AS time, duration,
		   doctor_name, mode, phone, email, reason, status
	FROM appointments
`

type appointmentRepository struct {
	db *sqlx.DB
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			name, title, appointment_date, start_time, duration,
			doctor_name, mode, phone, email, reason, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id::text
	`
	var id string
	err := r.db.GetContext(ctx, &id, query,
		appointment.Name,
		appointment.Title,
		appointment.Date,
		appointment.Time,
		appointment.Duration,
		appointment.DoctorName,
		appointment.Mode,
		appointment.Phone,
		appointment.Email,
		appointment.Reason,
		appointment.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	appointment.ID = id
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id string) (*model.Appointment, error) {
	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, selectAppointment+` WHERE id::text = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := selectAppointment + ` WHERE 1=1`
	var args []interface{}
	argCount := 1

	if filters != nil {
		if filters.Date != "" {
			query += fmt.Sprintf(" AND appointment_date = $%d", argCount)
			args = append(args, filters.Date)
			argCount++
		}
		if filters.Status != "" && !strings.EqualFold(string(filters.Status), "All") {
			query += fmt.Sprintf(" AND lower(status) = lower($%d)", argCount)
			args = append(args, filters.Status)
			argCount++
		}
		if q := strings.TrimSpace(filters.Search); q != "" {
			query += fmt.Sprintf(" AND (name ILIKE $%d OR doctor_name ILIKE $%d)", argCount, argCount)
			args = append(args, "%"+escapeLike(q)+"%")
			argCount++
		}
	}

	query += " ORDER BY id ASC"

	appointments := []*model.Appointment{}
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListByDoctorAndDate(ctx context.Context, doctorName, date string) ([]*model.Appointment, error) {
	query := selectAppointment + `
		WHERE doctor_name = $1 AND appointment_date = $2
		ORDER BY start_time ASC
	`
	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, doctorName, date); err != nil {
		return nil, fmt.Errorf("failed to list doctor appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id string, status model.AppointmentStatus) (*model.Appointment, error) {
	query := `
		UPDATE appointments
		SET status = $1, updated_at = now()
		WHERE id::text = $2
		RETURNING id::text AS id, name, title,
			appointment_date AS date, start_time AS time, duration,
			doctor_name, mode, phone, email, reason, status
	`
	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, status, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) DoctorNames(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT doctor_name
		FROM appointments
		WHERE doctor_name <> ''
		ORDER BY doctor_name ASC
	`
	names := []string{}
	if err := r.db.SelectContext(ctx, &names, query); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return names, nil
}

func (r *appointmentRepository) CancelBefore(ctx context.Context, date string) (int64, error) {
	query := `
		UPDATE appointments
		SET status = $1, updated_at = now()
		WHERE appointment_date <> '' AND appointment_date < $2
		AND status NOT IN ($3, $4)
	`
	result, err := r.db.ExecContext(ctx, query,
		model.AppointmentStatusCancelled,
		date,
		model.AppointmentStatusCompleted,
		model.AppointmentStatusCancelled,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel past appointments: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}

func (r *appointmentRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
