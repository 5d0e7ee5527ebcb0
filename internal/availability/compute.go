package availability

import (
	"fmt"
	"sort"
	"time"
)

// Computer derives free slots for a horizon of business days. The zero
// value is not usable; construct one with NewComputer.
type Computer struct {
	loc *time.Location

	// now is swappable for tests; defaults to time.Now.
	now func() time.Time
}

// NewComputer creates a Computer anchored in the given business timezone.
func NewComputer(loc *time.Location) *Computer {
	return &Computer{loc: loc, now: time.Now}
}

// NewComputerAt creates a Computer with a fixed clock, for tests and for
// callers that need a reproducible anchor.
func NewComputerAt(loc *time.Location, now func() time.Time) *Computer {
	return &Computer{loc: loc, now: now}
}

// Location returns the business timezone the computer is anchored in.
func (c *Computer) Location() *time.Location {
	return c.loc
}

// Now returns the current wall clock in the business timezone. Callers
// that pair a calendar fetch with a computation resolve the clock here once
// and feed the same value to both, so a request straddling midnight cannot
// fetch and compute against different anchor days.
func (c *Computer) Now() time.Time {
	return c.now().In(c.loc)
}

// AnchorDate returns "today" as a calendar-date string in the business
// timezone. This is the single point where wall-clock time enters the
// computation.
func (c *Computer) AnchorDate() string {
	return c.Now().Format(DateLayout)
}

// ComputeFreeSlots returns the free slots within the working-hours window
// for each business day in [today, today+days), skipping weekends. The
// anchor date is resolved once, up front; a computation that straddles
// midnight still enumerates days relative to the anchor.
//
// Busy intervals whose date falls outside the horizon are ignored. A days
// value of zero or less yields an empty result.
func (c *Computer) ComputeFreeSlots(busy []BusyInterval, days int) []FreeSlot {
	return c.computeFrom(c.anchor(), busy, days)
}

// ComputeFreeSlotsFrom is ComputeFreeSlots with an explicit anchor date,
// mainly for tests. The anchor must be a valid "YYYY-MM-DD" string.
func (c *Computer) ComputeFreeSlotsFrom(anchorDate string, busy []BusyInterval, days int) ([]FreeSlot, error) {
	anchor, err := time.Parse(DateLayout, anchorDate)
	if err != nil {
		return nil, fmt.Errorf("invalid anchor date %q: %w", anchorDate, err)
	}
	return c.computeFrom(anchor, busy, days), nil
}

// anchor resolves today's date in the business timezone as a date-only
// value. Day enumeration then uses AddDate on this value, never arithmetic
// on a timestamp that carries hours, so offset changes at DST boundaries
// cannot shift a day.
func (c *Computer) anchor() time.Time {
	t := c.now().In(c.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (c *Computer) computeFrom(anchor time.Time, busy []BusyInterval, days int) []FreeSlot {
	var free []FreeSlot
	for i := 0; i < days; i++ {
		day := anchor.AddDate(0, 0, i)
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		date := day.Format(DateLayout)
		free = append(free, subtractFromWindow(date, mergeBusyRuns(busy, date))...)
	}
	return free
}

// span is a busy run in minutes, detached from its date.
type span struct {
	start, end int
}

// mergeBusyRuns selects the intervals for one date and merges them into a
// minimal set of disjoint, maximal runs ordered by start. Touching
// intervals count as overlapping. The sort is stable so that ties keep
// input order, though only the merged result matters.
func mergeBusyRuns(busy []BusyInterval, date string) []span {
	var day []span
	for _, b := range busy {
		if b.Date == date {
			day = append(day, span{start: b.StartMinutes, end: b.EndMinutes})
		}
	}
	sort.SliceStable(day, func(i, j int) bool {
		return day[i].start < day[j].start
	})

	var merged []span
	for _, s := range day {
		if len(merged) == 0 || s.start > merged[len(merged)-1].end {
			merged = append(merged, s)
			continue
		}
		if s.end > merged[len(merged)-1].end {
			merged[len(merged)-1].end = s.end
		}
	}
	return merged
}

// subtractFromWindow walks the merged busy runs and emits the gaps inside
// the working-hours window that meet the minimum slot duration. Runs
// entirely outside the window fall out naturally: the cursor only ever
// advances, and emitted slots are clipped to the window end.
func subtractFromWindow(date string, runs []span) []FreeSlot {
	var slots []FreeSlot
	cursor := WorkStartMinutes

	for _, run := range runs {
		if run.start > cursor && run.start-cursor >= MinSlotMinutes {
			end := run.start
			if end > WorkEndMinutes {
				end = WorkEndMinutes
			}
			if end > cursor {
				slots = append(slots, FreeSlot{Date: date, StartMinutes: cursor, EndMinutes: end})
			}
		}
		if run.end > cursor {
			cursor = run.end
		}
	}

	if cursor < WorkEndMinutes && WorkEndMinutes-cursor >= MinSlotMinutes {
		slots = append(slots, FreeSlot{Date: date, StartMinutes: cursor, EndMinutes: WorkEndMinutes})
	}
	return slots
}
