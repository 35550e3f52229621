package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/medibook/internal/model"
	"github.com/jwalitptl/medibook/pkg/metrics"
)

type fakeSender struct {
	mu       sync.Mutex
	failures int
	calls    int
	to       string
	subject  string
	content  string
}

func (f *fakeSender) SendCustom(_ context.Context, to, subject, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return errors.New("smtp unavailable")
	}
	f.to, f.subject, f.content = to, subject, content
	return nil
}

func booked() *model.Appointment {
	return &model.Appointment{
		ID:         "7",
		Name:       "Asha <Rao>",
		Date:       "2024-06-10",
		Time:       "02:30 PM",
		Duration:   model.Duration30,
		DoctorName: "Dr. Priya Sharma",
		Mode:       model.AppointmentModeVideoCall,
		Email:      "asha@example.com",
		Status:     model.AppointmentStatusScheduled,
	}
}

func TestAppointmentBooked(t *testing.T) {
	sender := &fakeSender{}
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	svc := NewService(sender, Options{Metrics: m})

	require.NoError(t, svc.AppointmentBooked(context.Background(), booked()))
	assert.Equal(t, 1, sender.calls)
	assert.Equal(t, "asha@example.com", sender.to)
	assert.Equal(t, subjectBooked, sender.subject)
	assert.Contains(t, sender.content, "Dr. Priya Sharma")
	assert.Contains(t, sender.content, "2024-06-10 at 02:30 PM")
	assert.Contains(t, sender.content, "Asha &lt;Rao&gt;")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsSent.WithLabelValues("success")))
}

func TestAppointmentBookedWithoutEmail(t *testing.T) {
	sender := &fakeSender{}
	svc := NewService(sender, Options{})

	apt := booked()
	apt.Email = ""
	require.NoError(t, svc.AppointmentBooked(context.Background(), apt))
	assert.Zero(t, sender.calls)
}

func TestAppointmentBookedRetries(t *testing.T) {
	sender := &fakeSender{failures: 2}
	svc := NewService(sender, Options{RetryDelay: time.Millisecond})

	require.NoError(t, svc.AppointmentBooked(context.Background(), booked()))
	assert.Equal(t, 3, sender.calls)
}

func TestAppointmentBookedGivesUp(t *testing.T) {
	sender := &fakeSender{failures: 10}
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	svc := NewService(sender, Options{MaxRetries: 2, RetryDelay: time.Millisecond, Metrics: m})

	err := svc.AppointmentBooked(context.Background(), booked())
	assert.ErrorContains(t, err, "after 2 attempts")
	assert.Equal(t, 2, sender.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsSent.WithLabelValues("error")))
}

func TestAppointmentBookedCancelledDuringBackoff(t *testing.T) {
	sender := &fakeSender{failures: 10}
	svc := NewService(sender, Options{RetryDelay: time.Hour})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, svc.AppointmentBooked(ctx, booked()), context.DeadlineExceeded)
	assert.Equal(t, 1, sender.calls)
}
