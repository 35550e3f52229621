// Package config loads the booking client's settings from BOOKING_*
// environment variables.
package config

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/jwalitptl/medibook/internal/client"
	"github.com/jwalitptl/medibook/internal/model"
	"github.com/jwalitptl/medibook/pkg/timefmt"
)

const envPrefix = "BOOKING"

type Config struct {
	APIURL string `envconfig:"API_URL" default:"http://127.0.0.1:5000"`
	// Timezone is an IANA name or a "+05:30" style offset. It resolves
	// "today" when the API cannot be reached.
	Timezone     string        `envconfig:"TIMEZONE" default:"+05:30"`
	Timeout      time.Duration `envconfig:"TIMEOUT" default:"15s"`
	StatusMethod string        `envconfig:"STATUS_METHOD" default:"PATCH"`
	Doctors      []string      `envconfig:"DOCTORS"`
	LogLevel     string        `envconfig:"LOG_LEVEL" default:"warn"`

	location *time.Location
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	loc, err := timefmt.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid %s_TIMEZONE: %w", envPrefix, err)
	}
	c.location = loc

	c.StatusMethod = strings.ToUpper(strings.TrimSpace(c.StatusMethod))
	if c.StatusMethod != http.MethodPatch && c.StatusMethod != http.MethodPut {
		return fmt.Errorf("invalid %s_STATUS_METHOD %q: want PATCH or PUT", envPrefix, c.StatusMethod)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid %s_TIMEOUT %s", envPrefix, c.Timeout)
	}
	if strings.TrimSpace(c.APIURL) == "" {
		return fmt.Errorf("%s_API_URL is required", envPrefix)
	}
	return nil
}

// Location is the resolved Timezone. Validate must have succeeded.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// FallbackDoctors is the configured roster, or the built-in one.
func (c *Config) FallbackDoctors() []string {
	var out []string
	for _, d := range c.Doctors {
		if d = strings.TrimSpace(d); d != "" {
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), model.DefaultDoctors...)
	}
	return out
}

func (c *Config) ClientConfig() client.Config {
	return client.Config{
		BaseURL:      c.APIURL,
		Timeout:      c.Timeout,
		StatusMethod: c.StatusMethod,
	}
}
