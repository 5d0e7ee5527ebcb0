package calendar

import (
	calendarv3 "google.golang.org/api/calendar/v3"

	"github.com/teemow/freeweek/internal/availability"
)

// reduceEvent converts one Google Calendar event to a canonical busy
// interval. The second return value is false for events that carry no
// usable start information.
//
// All-day events (start.date set) become 00:00-23:59 on their start date.
//
// Timed events are split on the literal digits of the RFC3339 dateTime
// string: the first ten characters are the date, characters twelve through
// sixteen the clock. The value is NOT reprojected into the business
// timezone; a calendar returning a different UTC offset would silently
// misplace busy time. This matches the configured-calendar contract (all
// team calendars live in the business timezone) and is kept as documented
// behavior rather than corrected.
func reduceEvent(event *calendarv3.Event) (availability.BusyInterval, bool) {
	if event == nil || event.Start == nil {
		return availability.BusyInterval{}, false
	}

	if event.Start.Date != "" {
		return availability.AllDayBusyInterval(event.Start.Date), true
	}

	date, start := splitDateTime(event.Start.DateTime)
	if date == "" {
		return availability.BusyInterval{}, false
	}
	if start == "" {
		start = "00:00"
	}

	end := ""
	if event.End != nil {
		_, end = splitDateTime(event.End.DateTime)
	}
	if end == "" {
		end = "23:59"
	}

	b, err := availability.NewBusyInterval(date, start, end)
	if err != nil {
		// Zero-length or inverted events (start >= end) carry no busy time.
		return availability.BusyInterval{}, false
	}
	return b, true
}

// splitDateTime splits an RFC3339 timestamp like
// "2026-01-05T11:00:00+09:00" into its literal date and HH:MM parts.
func splitDateTime(s string) (date, clock string) {
	if len(s) < 10 || s[4] != '-' || s[7] != '-' {
		return "", ""
	}
	date = s[:10]
	if len(s) >= 16 && s[10] == 'T' {
		clock = s[11:16]
	}
	return date, clock
}

// reduceEvents converts a page of events, skipping everything that does not
// reduce to a busy interval.
func reduceEvents(events []*calendarv3.Event) []availability.BusyInterval {
	var busy []availability.BusyInterval
	for _, event := range events {
		if b, ok := reduceEvent(event); ok {
			busy = append(busy, b)
		}
	}
	return busy
}
