package appointment

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/medibook/internal/model"
	apperrors "github.com/jwalitptl/medibook/pkg/errors"
	"github.com/jwalitptl/medibook/pkg/validator"
)

type Service interface {
	ScheduleConfig() *model.ScheduleConfig
	Doctors(ctx context.Context) ([]string, error)
	ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
	CreateAppointment(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error)
	UpdateStatus(ctx context.Context, id string, status string) (*model.Appointment, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/config", h.GetConfig)
	r.GET("/doctors", h.ListDoctors)

	appointments := r.Group("/appointments")
	{
		appointments.GET("", h.ListAppointments)
		appointments.POST("", h.CreateAppointment)
		appointments.PATCH("/:id/status", h.UpdateStatus)
		appointments.PUT("/:id/status", h.UpdateStatus)
	}
}

func (h *Handler) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.ScheduleConfig())
}

func (h *Handler) ListDoctors(c *gin.Context) {
	doctors, err := h.service.Doctors(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, doctors)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	var filters model.AppointmentFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.Error(apperrors.BadRequest("invalid query parameters", err))
		return
	}

	appointments, err := h.service.ListAppointments(c.Request.Context(), &filters)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, appointments)
}

// CreateAppointment answers 409 with the suggested start time when the
// doctor is busy.
func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.BadRequest(validator.Describe(err), err))
		return
	}

	appointment, err := h.service.CreateAppointment(c.Request.Context(), &req)
	var conflict *model.SlotConflict
	switch {
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, conflict)
		return
	case err != nil:
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, appointment)
}

type statusBody struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	var body statusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.Error(apperrors.BadRequest("Missing status", err))
		return
	}

	appointment, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), body.Status)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, appointment)
}
