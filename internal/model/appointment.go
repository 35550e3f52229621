package model

import (
	"strings"

	"github.com/jwalitptl/medibook/pkg/timefmt"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "Scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "Confirmed"
	AppointmentStatusCancelled AppointmentStatus = "Cancelled"
	AppointmentStatusCompleted AppointmentStatus = "Completed"
)

// AppointmentStatuses lists every status in display order.
var AppointmentStatuses = []AppointmentStatus{
	AppointmentStatusScheduled,
	AppointmentStatusConfirmed,
	AppointmentStatusCancelled,
	AppointmentStatusCompleted,
}

// ParseStatus matches s case-insensitively against the known statuses.
func ParseStatus(s string) (AppointmentStatus, bool) {
	for _, st := range AppointmentStatuses {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, true
		}
	}
	return "", false
}

// Terminal reports whether the status is final and must not be auto-cancelled.
func (s AppointmentStatus) Terminal() bool {
	return s == AppointmentStatusCompleted || s == AppointmentStatusCancelled
}

type AppointmentMode string

const (
	AppointmentModeInPerson  AppointmentMode = "In-Person"
	AppointmentModeVideoCall AppointmentMode = "Video Call"
)

type AppointmentDuration string

const (
	Duration15 AppointmentDuration = "15 min"
	Duration30 AppointmentDuration = "30 min"
	Duration45 AppointmentDuration = "45 min"
	Duration60 AppointmentDuration = "60 min"

	DefaultDuration = Duration30
)

var AppointmentDurations = []AppointmentDuration{Duration15, Duration30, Duration45, Duration60}

// Minutes returns the duration length, or 0 when it cannot be parsed.
func (d AppointmentDuration) Minutes() int {
	n, err := timefmt.DurationMinutes(string(d))
	if err != nil {
		return 0
	}
	return n
}

// Appointment is the booking record exchanged with the API. Date is ISO
// "YYYY-MM-DD" and Time is "hh:mm AM|PM".
type Appointment struct {
	ID         string              `json:"id" db:"id"`
	Name       string              `json:"name" db:"name"`
	Title      string              `json:"title,omitempty" db:"title"`
	Date       string              `json:"date" db:"date"`
	Time       string              `json:"time" db:"time"`
	Duration   AppointmentDuration `json:"duration" db:"duration"`
	DoctorName string              `json:"doctorName" db:"doctor_name"`
	Mode       AppointmentMode     `json:"mode" db:"mode"`
	Phone      string              `json:"phone,omitempty" db:"phone"`
	Email      string              `json:"email,omitempty" db:"email"`
	Reason     string              `json:"reason,omitempty" db:"reason"`
	Status     AppointmentStatus   `json:"status" db:"status"`
}

// DisplayName is the patient name, falling back to the title.
func (a *Appointment) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.Title
}

type CreateAppointmentRequest struct {
	Name       string              `json:"name" binding:"required_without=Title,max=120"`
	Title      string              `json:"title" binding:"max=200"`
	Date       string              `json:"date" binding:"required,datetime=2006-01-02"`
	Time       string              `json:"time" binding:"required,clock12"`
	Duration   AppointmentDuration `json:"duration" binding:"omitempty,oneof='15 min' '30 min' '45 min' '60 min'"`
	DoctorName string              `json:"doctorName" binding:"required,max=120"`
	Mode       AppointmentMode     `json:"mode" binding:"required,oneof='In-Person' 'Video Call'"`
	Phone      string              `json:"phone" binding:"omitempty,phone"`
	Email      string              `json:"email" binding:"omitempty,contact_email"`
	Reason     string              `json:"reason" binding:"max=1000"`
	Status     AppointmentStatus   `json:"status"`
}

// ToAppointment builds the record to store; status is always Scheduled.
func (r *CreateAppointmentRequest) ToAppointment() *Appointment {
	duration := r.Duration
	if duration == "" {
		duration = DefaultDuration
	}
	return &Appointment{
		Name:       strings.TrimSpace(r.Name),
		Title:      strings.TrimSpace(r.Title),
		Date:       r.Date,
		Time:       r.Time,
		Duration:   duration,
		DoctorName: strings.TrimSpace(r.DoctorName),
		Mode:       r.Mode,
		Phone:      r.Phone,
		Email:      r.Email,
		Reason:     r.Reason,
		Status:     AppointmentStatusScheduled,
	}
}

type UpdateStatusRequest struct {
	Status AppointmentStatus `json:"status" binding:"required,oneof=Scheduled Confirmed Cancelled Completed"`
}

// AppointmentFilters narrows an appointment listing. Empty fields match all.
type AppointmentFilters struct {
	Date   string            `form:"date"`
	Status AppointmentStatus `form:"status"`
	Search string            `form:"search"`
}

// Match applies the filters to a single record.
func (f *AppointmentFilters) Match(a *Appointment) bool {
	if f == nil {
		return true
	}
	if f.Date != "" && a.Date != f.Date {
		return false
	}
	if f.Status != "" && !strings.EqualFold(string(f.Status), "All") &&
		!strings.EqualFold(string(a.Status), string(f.Status)) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(a.Name), q) &&
			!strings.Contains(strings.ToLower(a.DoctorName), q) {
			return false
		}
	}
	return true
}
