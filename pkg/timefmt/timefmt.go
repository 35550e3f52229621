// Package timefmt converts between the wall-clock formats used by the booking
// API ("hh:mm AM|PM") and by form inputs ("HH:MM"), and resolves calendar
// dates in an explicit timezone.
package timefmt

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// DateLayout is the ISO calendar date used for appointment dates.
	DateLayout = "2006-01-02"
	// Clock12Layout is the stored appointment time layout.
	Clock12Layout = "03:04 PM"
	// Clock24Layout is the form input time layout.
	Clock24Layout = "15:04"
)

// To12Hour converts "HH:MM" into "hh:mm AM|PM".
func To12Hour(hhmm string) (string, error) {
	h, m, err := splitClock(hhmm)
	if err != nil {
		return "", err
	}
	if h < 0 || h > 23 {
		return "", fmt.Errorf("hour out of range in %q", hhmm)
	}
	return Format12(h, m), nil
}

// Format12 renders an hour/minute pair as "hh:mm AM|PM".
func Format12(hour, minute int) string {
	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	h := hour % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%02d:%02d %s", h, minute, period)
}

// To24Hour converts "hh:mm AM|PM" into "HH:MM".
func To24Hour(s string) (string, error) {
	h, m, err := Parse12(s)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d:%02d", h, m), nil
}

// Parse12 parses "hh:mm AM|PM" into a 24-hour hour and minute.
func Parse12(s string) (hour, minute int, err error) {
	clock, period, ok := strings.Cut(strings.TrimSpace(s), " ")
	if !ok {
		return 0, 0, fmt.Errorf("missing AM/PM in %q", s)
	}
	h, m, err := splitClock(clock)
	if err != nil {
		return 0, 0, err
	}
	if h < 1 || h > 12 {
		return 0, 0, fmt.Errorf("hour out of range in %q", s)
	}

	switch strings.ToUpper(strings.TrimSpace(period)) {
	case "PM":
		if h != 12 {
			h += 12
		}
	case "AM":
		if h == 12 {
			h = 0
		}
	default:
		return 0, 0, fmt.Errorf("invalid period in %q", s)
	}
	return h, m, nil
}

// Parse24 parses "HH:MM" into hour and minute.
func Parse24(s string) (hour, minute int, err error) {
	h, m, err := splitClock(s)
	if err != nil {
		return 0, 0, err
	}
	if h < 0 || h > 23 {
		return 0, 0, fmt.Errorf("hour out of range in %q", s)
	}
	return h, m, nil
}

func splitClock(s string) (int, int, error) {
	hs, ms, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid clock value %q", s)
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid hour in %q: %w", s, err)
	}
	m, err := strconv.Atoi(ms)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid minute in %q: %w", s, err)
	}
	if m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("minute out of range in %q", s)
	}
	return h, m, nil
}

// DurationMinutes parses a "30 min" style duration.
func DurationMinutes(s string) (int, error) {
	v := strings.TrimSpace(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "min"))
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return n, nil
}

// LoadLocation resolves an IANA zone name ("Asia/Kolkata") or a fixed
// offset ("+05:30", "UTC+05:30", "-04:00").
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "UTC") {
		return time.UTC, nil
	}

	offset := strings.TrimPrefix(strings.TrimPrefix(name, "UTC"), "GMT")
	if offset != "" && (offset[0] == '+' || offset[0] == '-') {
		sign := 1
		if offset[0] == '-' {
			sign = -1
		}
		h, m, err := splitClock(offset[1:])
		if err != nil {
			return nil, fmt.Errorf("invalid offset %q: %w", name, err)
		}
		if h > 14 {
			return nil, fmt.Errorf("offset out of range %q", name)
		}
		return time.FixedZone(name, sign*(h*3600+m*60)), nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load location %q: %w", name, err)
	}
	return loc, nil
}

// Today returns now's calendar date in loc.
func Today(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format(DateLayout)
}

// ShiftDate moves an ISO date by days.
func ShiftDate(date string, days int) (string, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t.AddDate(0, 0, days).Format(DateLayout), nil
}

// ValidDate reports whether s is a zero-padded ISO date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
