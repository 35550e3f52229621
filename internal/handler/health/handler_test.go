package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	h.RegisterRoutes(engine.Group(""))
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestReadiness(t *testing.T) {
	tests := []struct {
		name   string
		ping   pingFunc
		status int
		body   string
	}{
		{
			name:   "storage up",
			ping:   func(context.Context) error { return nil },
			status: http.StatusOK,
			body:   `{"status":"UP"}`,
		},
		{
			name:   "storage down",
			ping:   func(context.Context) error { return errors.New("connection refused") },
			status: http.StatusServiceUnavailable,
			body:   `{"status":"DOWN","reason":"Storage unavailable"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(NewHandler(tt.ping), "/health/ready")
			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestReadinessPingHasDeadline(t *testing.T) {
	var deadline bool
	h := NewHandler(pingFunc(func(ctx context.Context) error {
		_, deadline = ctx.Deadline()
		return nil
	}))
	h.timeout = time.Second

	w := serve(h, "/health/ready")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, deadline)
}

func TestLiveness(t *testing.T) {
	w := serve(NewHandler(pingFunc(func(context.Context) error { return errors.New("down") })), "/health/live")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"UP"}`, w.Body.String())
}
