package event

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/jwalitptl/medibook/internal/model"
	"github.com/jwalitptl/medibook/pkg/logger"
	"github.com/jwalitptl/medibook/pkg/messaging"
)

// Watch logs every appointment event received on the appointments channel
// until ctx is done or the subscription closes. handle, when set, is called
// with each decoded event.
func Watch(ctx context.Context, sub messaging.Subscriber, log *logger.Logger, handle func(*model.AppointmentEvent)) error {
	if log == nil {
		log = logger.Nop()
	}
	msgs, err := sub.Subscribe(ctx, model.EventChannelAppointments)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", model.EventChannelAppointments, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case raw, ok := <-msgs:
			if !ok {
				return nil
			}
			var evt model.AppointmentEvent
			if err := json.Unmarshal(raw, &evt); err != nil {
				log.Warn("dropping malformed appointment event", "error", err.Error())
				continue
			}
			fields := []interface{}{"type", evt.Type, "event_id", evt.ID}
			if evt.Appointment != nil {
				fields = append(fields, "appointment_id", evt.Appointment.ID, "status", string(evt.Appointment.Status))
			}
			if evt.PreviousStatus != "" {
				fields = append(fields, "previous_status", string(evt.PreviousStatus))
			}
			log.Info("appointment event", fields...)
			if handle != nil {
				handle(&evt)
			}
		}
	}
}
