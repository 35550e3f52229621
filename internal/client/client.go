// Package client talks to the appointment API over HTTP/JSON.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jwalitptl/medibook/internal/model"
	apperrors "github.com/jwalitptl/medibook/pkg/errors"
)

const (
	DefaultBaseURL = "http://127.0.0.1:5000"
	DefaultTimeout = 15 * time.Second

	pathConfig       = "/config"
	pathDoctors      = "/doctors"
	pathAppointments = "/appointments"
)

type Config struct {
	BaseURL string
	Timeout time.Duration
	// StatusMethod is PATCH (default) or PUT.
	StatusMethod string
}

type Client struct {
	baseURL      string
	statusMethod string
	http         *http.Client
	log          *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	method := strings.ToUpper(strings.TrimSpace(cfg.StatusMethod))
	if method != http.MethodPut {
		method = http.MethodPatch
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		statusMethod: method,
		http:         &http.Client{Timeout: cfg.Timeout},
		log:          logger,
	}
}

// GetConfig fetches the server's notion of "today".
func (c *Client) GetConfig(ctx context.Context) (*model.ScheduleConfig, error) {
	c.log.Debug("client.GetConfig called")

	var cfg model.ScheduleConfig
	if _, err := c.do(ctx, http.MethodGet, pathConfig, nil, &cfg); err != nil {
		c.log.Error("client.GetConfig failed", zap.Error(err))
		return nil, err
	}

	c.log.Debug("client.GetConfig succeeded", zap.String("current_date", cfg.CurrentDate))
	return &cfg, nil
}

// GetDoctors fetches the doctor roster.
func (c *Client) GetDoctors(ctx context.Context) ([]string, error) {
	c.log.Debug("client.GetDoctors called")

	var doctors []string
	if _, err := c.do(ctx, http.MethodGet, pathDoctors, nil, &doctors); err != nil {
		c.log.Error("client.GetDoctors failed", zap.Error(err))
		return nil, err
	}

	c.log.Debug("client.GetDoctors succeeded", zap.Int("count", len(doctors)))
	return doctors, nil
}

// ListAppointments fetches appointments. A nil filter lists everything.
func (c *Client) ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]model.Appointment, error) {
	path := pathAppointments
	if q := filterQuery(filters); q != "" {
		path += "?" + q
	}
	c.log.Debug("client.ListAppointments called", zap.String("path", path))

	var appointments []model.Appointment
	if _, err := c.do(ctx, http.MethodGet, path, nil, &appointments); err != nil {
		c.log.Error("client.ListAppointments failed", zap.Error(err))
		return nil, err
	}

	c.log.Debug("client.ListAppointments succeeded", zap.Int("count", len(appointments)))
	return appointments, nil
}

// CreateAppointment submits a fully formatted appointment. A 409 response is
// returned as *model.SlotConflict.
func (c *Client) CreateAppointment(ctx context.Context, apt *model.Appointment) (*model.Appointment, error) {
	c.log.Info("client.CreateAppointment called",
		zap.String("doctor", apt.DoctorName),
		zap.String("date", apt.Date),
		zap.String("time", apt.Time),
	)

	var created model.Appointment
	if _, err := c.do(ctx, http.MethodPost, pathAppointments, apt, &created); err != nil {
		c.log.Warn("client.CreateAppointment failed", zap.Error(err))
		return nil, err
	}

	c.log.Info("client.CreateAppointment succeeded", zap.String("id", created.ID))
	return &created, nil
}

// UpdateStatus changes an appointment's status and returns the server's copy.
func (c *Client) UpdateStatus(ctx context.Context, id string, status model.AppointmentStatus) (*model.Appointment, error) {
	c.log.Info("client.UpdateStatus called", zap.String("id", id), zap.String("status", string(status)))

	path := fmt.Sprintf("%s/%s/status", pathAppointments, url.PathEscape(id))
	body := model.UpdateStatusRequest{Status: status}

	var updated model.Appointment
	hasBody, err := c.do(ctx, c.statusMethod, path, body, &updated)
	if err != nil {
		c.log.Error("client.UpdateStatus failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if !hasBody {
		updated = model.Appointment{ID: id, Status: status}
	}

	c.log.Info("client.UpdateStatus succeeded", zap.String("id", id))
	return &updated, nil
}

// do performs the request and decodes a 2xx body into out. It reports
// whether a body was present.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) (bool, error) {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return false, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to send %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusConflict {
		conflict := &model.SlotConflict{}
		if err := json.Unmarshal(raw, conflict); err != nil || conflict.SuggestedTime == "" {
			return false, apperrors.Upstream(resp.StatusCode, errorMessage(raw))
		}
		if conflict.Message == "" {
			conflict.Message = model.SlotConflictMessage
		}
		return false, conflict
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, apperrors.Upstream(resp.StatusCode, errorMessage(raw))
	}

	if len(bytes.TrimSpace(raw)) == 0 || out == nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return true, nil
}

// errorMessage extracts "message" or "error" from an error body.
func errorMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}

func filterQuery(f *model.AppointmentFilters) string {
	if f == nil {
		return ""
	}
	q := url.Values{}
	if f.Date != "" {
		q.Set("date", f.Date)
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	return q.Encode()
}
