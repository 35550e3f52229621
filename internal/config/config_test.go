package config

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/medibook/internal/model"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:5000", cfg.APIURL)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, http.MethodPatch, cfg.StatusMethod)
	assert.Equal(t, model.DefaultDoctors, cfg.FallbackDoctors())

	_, offset := time.Date(2024, 6, 10, 0, 0, 0, 0, cfg.Location()).Zone()
	assert.Equal(t, 5*3600+30*60, offset)

	cc := cfg.ClientConfig()
	assert.Equal(t, cfg.APIURL, cc.BaseURL)
	assert.Equal(t, cfg.Timeout, cc.Timeout)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("BOOKING_API_URL", "http://clinic.local:8080")
	t.Setenv("BOOKING_TIMEZONE", "America/New_York")
	t.Setenv("BOOKING_TIMEOUT", "3s")
	t.Setenv("BOOKING_STATUS_METHOD", "put")
	t.Setenv("BOOKING_DOCTORS", "Dr. A, Dr. B")
	t.Setenv("BOOKING_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://clinic.local:8080", cfg.APIURL)
	assert.Equal(t, "America/New_York", cfg.Location().String())
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, http.MethodPut, cfg.StatusMethod)
	assert.Equal(t, []string{"Dr. A", "Dr. B"}, cfg.FallbackDoctors())
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Run("timezone", func(t *testing.T) {
		t.Setenv("BOOKING_TIMEZONE", "Mars/Olympus")
		_, err := Load()
		assert.ErrorContains(t, err, "TIMEZONE")
	})
	t.Run("status method", func(t *testing.T) {
		t.Setenv("BOOKING_STATUS_METHOD", "POST")
		_, err := Load()
		assert.ErrorContains(t, err, "STATUS_METHOD")
	})
	t.Run("timeout", func(t *testing.T) {
		t.Setenv("BOOKING_TIMEOUT", "soon")
		_, err := Load()
		assert.Error(t, err)
	})
}
