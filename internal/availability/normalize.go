package availability

import (
	"fmt"
	"strconv"
	"strings"
)

// TimeToMinutes converts a canonical "HH:MM" clock string to minutes since
// midnight. It accepts only zero-padded 24-hour values in [00:00, 23:59];
// anything else is a caller bug and fails fast rather than silently
// producing misplaced busy time.
func TimeToMinutes(t string) (int, error) {
	parts := strings.Split(t, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", t)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", t, err)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", t, err)
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid time %q: out of range", t)
	}
	return hours*60 + minutes, nil
}

// MinutesToTime converts minutes since midnight back to a zero-padded
// "HH:MM" string. It is the inverse of TimeToMinutes for m in [0, 1439].
func MinutesToTime(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// NewBusyInterval builds a canonical busy interval from a calendar-day
// string and an HH:MM start/end pair. The clock strings are taken literally;
// timezone reduction is the calendar source's responsibility.
func NewBusyInterval(date, start, end string) (BusyInterval, error) {
	startMin, err := TimeToMinutes(start)
	if err != nil {
		return BusyInterval{}, fmt.Errorf("busy interval on %s: %w", date, err)
	}
	endMin, err := TimeToMinutes(end)
	if err != nil {
		return BusyInterval{}, fmt.Errorf("busy interval on %s: %w", date, err)
	}
	if startMin >= endMin {
		return BusyInterval{}, fmt.Errorf("busy interval on %s: start %s is not before end %s", date, start, end)
	}
	return BusyInterval{Date: date, StartMinutes: startMin, EndMinutes: endMin}, nil
}

// AllDayBusyInterval builds the canonical representation of an all-day
// event: 00:00-23:59. The 23:59 end is intentional, see BusyInterval.
func AllDayBusyInterval(date string) BusyInterval {
	return BusyInterval{Date: date, StartMinutes: 0, EndMinutes: 23*60 + 59}
}
