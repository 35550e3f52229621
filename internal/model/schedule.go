package model

import "fmt"

// ScheduleConfig is served by GET /config; CurrentDate seeds the client's "today".
type ScheduleConfig struct {
	CurrentDate  string `json:"current_date"`
	IsSimulation bool   `json:"is_simulation"`
}

// SlotConflict reports that the doctor is already booked in the requested
// window. SuggestedTime is the earliest later start ("hh:mm AM|PM").
type SlotConflict struct {
	Message       string `json:"message"`
	SuggestedTime string `json:"suggested_time"`
}

func (e *SlotConflict) Error() string {
	if e.SuggestedTime == "" {
		return e.Message
	}
	return fmt.Sprintf("%s suggested time: %s", e.Message, e.SuggestedTime)
}

const SlotConflictMessage = "Doctor is busy at this time."

// DefaultDoctors is the roster used when none is available from the API.
var DefaultDoctors = []string{
	"Dr. Rajesh Kumar",
	"Dr. Priya Sharma",
	"Dr. Anjali Gupta",
}

// Event types published for appointment changes.
const (
	EventAppointmentCreated       = "appointment.created"
	EventAppointmentStatusChanged = "appointment.status_changed"
	EventChannelAppointments      = "appointments"
)

// AppointmentEvent is the broker payload for appointment changes.
type AppointmentEvent struct {
	ID             string            `json:"id"`
	Type           string            `json:"type"`
	Appointment    *Appointment      `json:"appointment"`
	PreviousStatus AppointmentStatus `json:"previous_status,omitempty"`
	OccurredAt     string            `json:"occurred_at"`
}
