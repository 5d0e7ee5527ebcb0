package availability

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeToMinutes(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"00:00", 0},
		{"00:01", 1},
		{"09:30", 570},
		{"10:00", 600},
		{"19:00", 1140},
		{"23:59", 1439},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := TimeToMinutes(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestTimeToMinutes_Invalid(t *testing.T) {
	inputs := []string{
		"",
		"10",
		"10:00:00",
		"10.30",
		"24:00",
		"10:60",
		"-1:30",
		"aa:bb",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := TimeToMinutes(input)
			assert.Error(t, err)
		})
	}
}

func TestMinutesToTime(t *testing.T) {
	assert.Equal(t, "00:00", MinutesToTime(0))
	assert.Equal(t, "09:05", MinutesToTime(545))
	assert.Equal(t, "10:00", MinutesToTime(600))
	assert.Equal(t, "23:59", MinutesToTime(1439))
}

// Round-trip law: MinutesToTime(TimeToMinutes(t)) == t for every canonical
// HH:MM value of the day.
func TestTimeConversion_RoundTrip(t *testing.T) {
	for h := 0; h < 24; h++ {
		for m := 0; m < 60; m++ {
			clock := fmt.Sprintf("%02d:%02d", h, m)
			minutes, err := TimeToMinutes(clock)
			require.NoError(t, err)
			require.Equal(t, clock, MinutesToTime(minutes))
		}
	}
}

func TestNewBusyInterval(t *testing.T) {
	b, err := NewBusyInterval("2026-01-05", "11:00", "12:30")
	require.NoError(t, err)
	assert.Equal(t, BusyInterval{Date: "2026-01-05", StartMinutes: 660, EndMinutes: 750}, b)
	assert.Equal(t, 90, b.Duration())
}

func TestNewBusyInterval_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
	}{
		{"malformed start", "11am", "12:00"},
		{"malformed end", "11:00", "noon"},
		{"start equals end", "11:00", "11:00"},
		{"start after end", "12:00", "11:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBusyInterval("2026-01-05", tt.start, tt.end)
			assert.Error(t, err)
		})
	}
}

func TestAllDayBusyInterval(t *testing.T) {
	b := AllDayBusyInterval("2026-01-05")
	assert.Equal(t, 0, b.StartMinutes)
	// All-day events end at 23:59, not midnight. The one-minute gap is a
	// deliberate convention.
	assert.Equal(t, 1439, b.EndMinutes)
}
