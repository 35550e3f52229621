package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/medibook/internal/booking"
	"github.com/jwalitptl/medibook/internal/client"
	"github.com/jwalitptl/medibook/internal/handler/appointment"
	"github.com/jwalitptl/medibook/internal/handler/health"
	"github.com/jwalitptl/medibook/internal/handler/prometheus"
	"github.com/jwalitptl/medibook/internal/middleware"
	"github.com/jwalitptl/medibook/internal/model"
	"github.com/jwalitptl/medibook/internal/repository/memory"
	"github.com/jwalitptl/medibook/internal/router"
	appointmentsvc "github.com/jwalitptl/medibook/internal/service/appointment"
)

func newTestServer(t *testing.T, seed ...*model.Appointment) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, middleware.RegisterValidators())

	repo := memory.NewAppointmentRepository(seed...)
	svc := appointmentsvc.NewService(repo, appointmentsvc.Options{
		Location:       time.UTC,
		SimulationDate: "2024-06-10",
		Doctors:        model.DefaultDoctors,
		Dispatch:       func(f func()) { f() },
	})
	r := router.NewRouter(
		appointment.NewHandler(svc),
		health.NewHandler(repo),
		prometheus.New("test", prom.NewRegistry()),
		router.RouterConfig{CORSConfig: middleware.DefaultCORSConfig()},
	)
	r.Setup()

	srv := httptest.NewServer(r.Engine())
	t.Cleanup(srv.Close)
	return srv.URL
}

func runApp(t *testing.T, url, stdin string, args ...string) (string, error) {
	t.Helper()
	ctrl := booking.NewController(client.New(client.Config{BaseURL: url}, nil), booking.Options{})
	var out bytes.Buffer
	err := newApp(ctrl, strings.NewReader(stdin), &out).run(context.Background(), args)
	return out.String(), err
}

func seeded() *model.Appointment {
	return &model.Appointment{
		Name: "Asha Rao", DoctorName: "Dr. Priya Sharma", Date: "2024-06-10", Time: "10:00 AM",
		Duration: model.Duration30, Mode: model.AppointmentModeInPerson, Status: model.AppointmentStatusScheduled,
	}
}

func TestDoctorsCommand(t *testing.T) {
	out, err := runApp(t, newTestServer(t), "", "doctors")
	require.NoError(t, err)
	assert.Contains(t, out, "Dr. Anjali Gupta")
	assert.Contains(t, out, "Dr. Rajesh Kumar")
}

func TestListCommand(t *testing.T) {
	url := newTestServer(t, seeded())

	out, err := runApp(t, url, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Today: 2024-06-10")
	assert.Contains(t, out, "Asha Rao")

	out, err = runApp(t, url, "", "list", "--tab", "upcoming")
	require.NoError(t, err)
	assert.Contains(t, out, "No appointments.")

	out, err = runApp(t, url, "", "list", "--search", "kumar")
	require.NoError(t, err)
	assert.Contains(t, out, "No appointments.")

	_, err = runApp(t, url, "", "list", "--tab", "Someday")
	assert.ErrorContains(t, err, "unknown tab")

	_, err = runApp(t, url, "", "list", "--date", "June 10")
	assert.ErrorContains(t, err, "invalid date")
}

func TestDayCommand(t *testing.T) {
	out, err := runApp(t, newTestServer(t, seeded()), "", "day", "--start-hour", "9")
	require.NoError(t, err)
	assert.Contains(t, out, "Day: 2024-06-10")
	assert.Contains(t, out, "10:00 AM")
	// One hour after a 09:00 start at 80px per hour, half an hour tall.
	assert.Regexp(t, `\|\s+80\s+\|\s+40\s+\|`, out)
	assert.Contains(t, out, "Timeline: 960px")
}

func TestDayCommandShowsLateAppointments(t *testing.T) {
	late := seeded()
	late.Time = "09:30 PM"
	out, err := runApp(t, newTestServer(t, late), "", "day")
	require.NoError(t, err)
	assert.Contains(t, out, "09:30 PM")
	assert.Contains(t, out, "Timeline: 1200px")
}

func TestBookCommand(t *testing.T) {
	url := newTestServer(t, seeded())

	out, err := runApp(t, url, "", "book", "--name", "Ravi", "--time", "14:00", "--doctor", "Dr. Priya Sharma", "--duration", "45")
	require.NoError(t, err)
	assert.Contains(t, out, "Booked Ravi with Dr. Priya Sharma on 2024-06-10 at 14:00.")

	out, err = runApp(t, url, "", "list", "--search", "ravi")
	require.NoError(t, err)
	assert.Contains(t, out, "02:00 PM")
	assert.Contains(t, out, "45 min")
}

func TestBookCommandConflict(t *testing.T) {
	url := newTestServer(t, seeded())

	out, err := runApp(t, url, "y\ny\n", "book", "--name", "Ravi", "--time", "10:15", "--doctor", "Dr. Priya Sharma")
	require.NoError(t, err)
	assert.Contains(t, out, "Doctor is busy at this time. Next free time: 10:30 AM")
	assert.Contains(t, out, "Book at 10:30?")
	assert.Contains(t, out, "Booked Ravi with Dr. Priya Sharma on 2024-06-10 at 10:30.")

	out, err = runApp(t, url, "n\n", "book", "--name", "Mira", "--time", "10:00", "--doctor", "Dr. Priya Sharma")
	assert.ErrorIs(t, err, errNotBooked)
	assert.Contains(t, out, "Next free time: 11:00 AM")

	_, err = runApp(t, url, "y\nn\n", "book", "--name", "Mira", "--time", "10:00", "--doctor", "Dr. Priya Sharma")
	assert.ErrorIs(t, err, errNotBooked)

	out, err = runApp(t, url, "", "book", "--yes", "--name", "Mira", "--time", "10:00", "--doctor", "Dr. Priya Sharma")
	require.NoError(t, err)
	assert.Contains(t, out, "at 11:00.")
}

func TestBookCommandRejectsInvalidDraft(t *testing.T) {
	url := newTestServer(t)

	_, err := runApp(t, url, "", "book", "--time", "10:00")
	var verr *booking.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = runApp(t, url, "", "book", "--name", "Ravi", "--email", "ravi@")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Field)
}

func TestStatusCommand(t *testing.T) {
	url := newTestServer(t, seeded())

	out, err := runApp(t, url, "", "status", "1", "confirmed")
	require.NoError(t, err)
	assert.Contains(t, out, "Appointment 1 is now Confirmed.")

	_, err = runApp(t, url, "", "status", "1", "lost")
	assert.ErrorContains(t, err, "unknown status")

	_, err = runApp(t, url, "", "status", "42", "Confirmed")
	assert.Error(t, err)

	_, err = runApp(t, url, "", "status", "1")
	assert.ErrorContains(t, err, "usage")
}

func TestUnknownCommand(t *testing.T) {
	out, err := runApp(t, "http://127.0.0.1:1", "", "reschedule")
	assert.ErrorContains(t, err, "unknown command")
	assert.Contains(t, out, "Usage: booking")

	_, err = runApp(t, "http://127.0.0.1:1", "")
	assert.Error(t, err)
}
