package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReadsFileAndDefaults(t *testing.T) {
	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "+05:30", cfg.Scheduler.Timezone)
	assert.Equal(t, time.Hour, cfg.Scheduler.CleanupInterval)
	assert.Len(t, cfg.Scheduler.Doctors, 3)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("MEDIBOOK_SERVER_PORT", "6001")
	t.Setenv("MEDIBOOK_STORAGE_DRIVER", "memory")
	t.Setenv("MEDIBOOK_SCHEDULER_SIMULATION_DATE", "2024-06-10")

	cfg, err := load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, 6001, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "2024-06-10", cfg.Scheduler.SimulationDate)
}

func TestUnknownDriverRejected(t *testing.T) {
	t.Setenv("MEDIBOOK_STORAGE_DRIVER", "cassandra")
	_, err := load(viper.New())
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", db.DSN())

	db.URL = "postgres://u:p@db/n"
	assert.Equal(t, "postgres://u:p@db/n", db.DSN())
}

func TestSMTPEnabled(t *testing.T) {
	assert.False(t, SMTPConfig{}.Enabled())
	assert.True(t, SMTPConfig{Host: "smtp.example.com", From: "clinic@example.com"}.Enabled())
}
