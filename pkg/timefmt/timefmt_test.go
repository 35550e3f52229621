package timefmt

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTo12Hour(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"00:00", "12:00 AM"},
		{"00:45", "12:45 AM"},
		{"07:05", "07:05 AM"},
		{"11:59", "11:59 AM"},
		{"12:00", "12:00 PM"},
		{"13:30", "01:30 PM"},
		{"14:30", "02:30 PM"},
		{"23:59", "11:59 PM"},
		{"9:5", "09:05 AM"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := To12Hour(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTo24Hour(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12:00 AM", "00:00"},
		{"12:30 PM", "12:30"},
		{"02:30 PM", "14:30"},
		{"07:00 AM", "07:00"},
		{"11:15 pm", "23:15"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := To24Hour(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConversionRejectsMalformedInput(t *testing.T) {
	for _, in := range []string{"", "24:00", "10:60", "ab:cd", "1030"} {
		_, err := To12Hour(in)
		assert.Error(t, err, in)
	}
	for _, in := range []string{"", "14:30", "00:30 AM", "13:00 PM", "10:30 XM", "10:75 AM"} {
		_, err := To24Hour(in)
		assert.Error(t, err, in)
	}
}

func TestConversionRoundTripsEveryClockValue(t *testing.T) {
	for h := 0; h < 24; h++ {
		for m := 0; m < 60; m++ {
			hhmm := fmt.Sprintf("%02d:%02d", h, m)

			twelve, err := To12Hour(hhmm)
			require.NoError(t, err)
			twentyFour, err := To24Hour(twelve)
			require.NoError(t, err)
			assert.Equal(t, hhmm, twentyFour)

			again, err := To12Hour(twentyFour)
			require.NoError(t, err)
			assert.Equal(t, twelve, again)
		}
	}
}

func TestDurationMinutes(t *testing.T) {
	for in, want := range map[string]int{"15 min": 15, "30 min": 30, "45 MIN": 45, "60": 60} {
		got, err := DurationMinutes(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}

	_, err := DurationMinutes("half an hour")
	assert.Error(t, err)
	_, err = DurationMinutes("0 min")
	assert.Error(t, err)
}

func TestLoadLocationAndToday(t *testing.T) {
	loc, err := LoadLocation("+05:30")
	require.NoError(t, err)

	// 20:00 UTC is already the next day at +05:30.
	now := time.Date(2024, 6, 9, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-06-10", Today(now, loc))
	assert.Equal(t, "2024-06-09", Today(now, time.UTC))

	loc, err = LoadLocation("UTC-04:00")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-09", Today(now, loc))

	_, err = LoadLocation("+99:00")
	assert.Error(t, err)
	_, err = LoadLocation("Not/AZone")
	assert.Error(t, err)
}

func TestShiftDate(t *testing.T) {
	got, err := ShiftDate("2024-02-28", 2)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", got)

	got, err = ShiftDate("2024-01-01", -1)
	require.NoError(t, err)
	assert.Equal(t, "2023-12-31", got)

	_, err = ShiftDate("2024/01/01", 1)
	assert.Error(t, err)
}
