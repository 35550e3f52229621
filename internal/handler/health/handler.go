package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/jwalitptl/medibook/pkg/errors"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	storage Pinger
	timeout time.Duration
}

func NewHandler(storage Pinger) *Handler {
	return &Handler{
		storage: storage,
		timeout: 2 * time.Second,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	health := r.Group("/health")
	{
		health.GET("/live", h.LivenessCheck)
		health.GET("/ready", h.ReadinessCheck)
	}
}

func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

func (h *Handler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.storage.Ping(ctx); err != nil {
		appErr := apperrors.Unavailable("Storage unavailable", err)
		c.JSON(appErr.StatusCode(), gin.H{
			"status": "DOWN",
			"reason": appErr.Message,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}
