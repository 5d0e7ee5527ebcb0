// Package availability computes free time slots from busy calendar intervals.
//
// The package is the pure core of the bot: it knows nothing about Slack or
// the Google Calendar wire format. Callers hand it busy intervals that have
// already been reduced to minutes-since-midnight within a single calendar
// day, and it returns the gaps in the fixed working-hours window
// (10:00-19:00) over a rolling horizon of business days, skipping weekends
// and dropping gaps shorter than one hour.
//
// All computation is anchored in a single business timezone. The anchor date
// is resolved once per invocation from the wall clock and every subsequent
// day is derived by date-only arithmetic, so daylight-saving transitions
// cannot drift the day boundaries.
//
// The package performs no I/O and holds no mutable state; a Computer is safe
// for concurrent use.
//
// Example usage:
//
//	loc, _ := time.LoadLocation("Asia/Tokyo")
//	c := availability.NewComputer(loc)
//
//	busy := []availability.BusyInterval{
//	    {Date: "2026-01-05", StartMinutes: 660, EndMinutes: 720}, // 11:00-12:00
//	}
//	slots := c.ComputeFreeSlots(busy, 7)
package availability
