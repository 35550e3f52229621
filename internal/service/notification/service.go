package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/jwalitptl/medibook/internal/email"
	"github.com/jwalitptl/medibook/internal/model"
	"github.com/jwalitptl/medibook/pkg/logger"
	"github.com/jwalitptl/medibook/pkg/metrics"
)

const (
	maxRetries = 3
	retryDelay = 5 * time.Second

	subjectBooked = "Your appointment is booked"
)

var confirmationTemplate = template.Must(template.New("confirmation").Parse(`<p>Hello {{.Patient}},</p>
<p>Your appointment with <strong>{{.Doctor}}</strong> is booked for {{.Date}} at {{.Time}} ({{.Duration}}, {{.Mode}}).</p>
{{if .Reason}}<p>Reason: {{.Reason}}</p>{{end}}
<p>Reference: #{{.ID}}</p>`))

type Service interface {
	AppointmentBooked(ctx context.Context, apt *model.Appointment) error
}

type Options struct {
	MaxRetries int
	RetryDelay time.Duration
	Logger     *logger.Logger
	Metrics    *metrics.Metrics
}

type service struct {
	emailSvc   email.Service
	maxRetries int
	retryDelay time.Duration
	log        *logger.Logger
	metrics    *metrics.Metrics
}

func NewService(emailSvc email.Service, opts Options) Service {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = maxRetries
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = retryDelay
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Nop()
	}
	return &service{
		emailSvc:   emailSvc,
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
		log:        opts.Logger,
		metrics:    opts.Metrics,
	}
}

// AppointmentBooked e-mails a confirmation when the appointment carries an
// address. Delivery is retried with a linear backoff.
func (s *service) AppointmentBooked(ctx context.Context, apt *model.Appointment) error {
	if apt.Email == "" {
		return nil
	}

	body, err := renderConfirmation(apt)
	if err != nil {
		s.metrics.NotificationsSent.WithLabelValues("error").Inc()
		return err
	}

	for attempt := 1; ; attempt++ {
		err = s.emailSvc.SendCustom(ctx, apt.Email, subjectBooked, body)
		if err == nil {
			s.metrics.NotificationsSent.WithLabelValues("success").Inc()
			s.log.WithContext(ctx).Info("confirmation sent", "appointment_id", apt.ID, "attempt", attempt)
			return nil
		}

		s.log.WithContext(ctx).Warn("confirmation send failed",
			"appointment_id", apt.ID, "attempt", attempt, "error", err.Error())
		if attempt >= s.maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			s.metrics.NotificationsSent.WithLabelValues("error").Inc()
			return ctx.Err()
		case <-time.After(s.retryDelay * time.Duration(attempt)):
		}
	}

	s.metrics.NotificationsSent.WithLabelValues("error").Inc()
	return fmt.Errorf("failed to send confirmation after %d attempts: %w", s.maxRetries, err)
}

func renderConfirmation(apt *model.Appointment) (string, error) {
	data := struct {
		ID, Patient, Doctor, Date, Time, Duration, Mode, Reason string
	}{
		ID:       apt.ID,
		Patient:  apt.DisplayName(),
		Doctor:   apt.DoctorName,
		Date:     apt.Date,
		Time:     apt.Time,
		Duration: string(apt.Duration),
		Mode:     string(apt.Mode),
		Reason:   apt.Reason,
	}

	var buf bytes.Buffer
	if err := confirmationTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render confirmation: %w", err)
	}
	return buf.String(), nil
}
