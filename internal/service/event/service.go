package event

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/medibook/internal/model"
	"github.com/jwalitptl/medibook/pkg/logger"
	"github.com/jwalitptl/medibook/pkg/messaging"
	"github.com/jwalitptl/medibook/pkg/metrics"
)

// EventService publishes appointment changes on the appointments channel.
// A nil publisher turns every call into a no-op.
type EventService struct {
	broker  messaging.Publisher
	log     *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewEventService(broker messaging.Publisher, log *logger.Logger, m *metrics.Metrics) *EventService {
	if log == nil {
		log = logger.Nop()
	}
	if m == nil {
		m = metrics.Nop()
	}
	return &EventService{
		broker:  broker,
		log:     log,
		metrics: m,
		now:     time.Now,
	}
}

func (s *EventService) AppointmentCreated(ctx context.Context, apt *model.Appointment) error {
	return s.emit(ctx, model.EventAppointmentCreated, apt, "")
}

func (s *EventService) StatusChanged(ctx context.Context, apt *model.Appointment, previous model.AppointmentStatus) error {
	return s.emit(ctx, model.EventAppointmentStatusChanged, apt, previous)
}

func (s *EventService) emit(ctx context.Context, eventType string, apt *model.Appointment, previous model.AppointmentStatus) error {
	if s == nil || s.broker == nil {
		return nil
	}

	evt := &model.AppointmentEvent{
		ID:             uuid.New().String(),
		Type:           eventType,
		Appointment:    apt,
		PreviousStatus: previous,
		OccurredAt:     s.now().UTC().Format(time.RFC3339),
	}

	err := s.broker.Publish(ctx, model.EventChannelAppointments, evt)
	s.metrics.EventsPublished.WithLabelValues(eventType, metrics.Result(err)).Inc()
	if err != nil {
		s.log.WithContext(ctx).Error(err, "failed to publish event", "type", eventType, "appointment_id", apt.ID)
		return fmt.Errorf("failed to publish %s: %w", eventType, err)
	}

	s.log.WithContext(ctx).Debug("event published", "type", eventType, "event_id", evt.ID, "appointment_id", apt.ID)
	return nil
}
