package repository_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/medibook/internal/model"
	"github.com/jwalitptl/medibook/internal/repository"
	"github.com/jwalitptl/medibook/internal/repository/memory"
	"github.com/jwalitptl/medibook/pkg/metrics"
)

func TestWithMetrics(t *testing.T) {
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	repo := repository.WithMetrics(memory.NewAppointmentRepository(), m)
	ctx := context.Background()

	apt := &model.Appointment{Name: "Asha", DoctorName: "Dr. Priya Sharma", Date: "2024-06-10", Time: "09:00 AM", Status: model.AppointmentStatusScheduled}
	require.NoError(t, repo.Create(ctx, apt))
	assert.NotEmpty(t, apt.ID)

	_, err := repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.StorageOperations.WithLabelValues("create", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StorageOperations.WithLabelValues("get", "not_found")))
}

func TestWithMetricsNil(t *testing.T) {
	inner := memory.NewAppointmentRepository()
	assert.Equal(t, inner, repository.WithMetrics(inner, nil))
}
