package availability

// Working-hours window and slot policy, expressed in minutes since midnight
// in the business timezone.
const (
	// WorkStartMinutes is the start of the daily availability window (10:00).
	WorkStartMinutes = 10 * 60

	// WorkEndMinutes is the end of the daily availability window (19:00).
	WorkEndMinutes = 19 * 60

	// MinSlotMinutes is the minimum duration for a reported free slot.
	// Gaps shorter than this are dropped, not truncated.
	MinSlotMinutes = 60
)

// DateLayout is the calendar-date format used throughout the engine.
const DateLayout = "2006-01-02"

// BusyInterval is one continuous busy period within a single calendar day,
// expressed in minutes since midnight in the business timezone.
// StartMinutes must be strictly less than EndMinutes.
//
// An all-day event is represented as [0, 1439], i.e. 00:00-23:59. The
// one-minute gap before midnight is a deliberate convention carried over
// from the upstream calendar reduction; changing it would shift the
// coverage accounting for fully booked days.
type BusyInterval struct {
	Date         string
	StartMinutes int
	EndMinutes   int
}

// Duration returns the busy duration in minutes.
func (b BusyInterval) Duration() int {
	return b.EndMinutes - b.StartMinutes
}

// FreeSlot is a contiguous free period within the working-hours window on a
// business day. Slots are produced by ComputeFreeSlots and never mutated
// afterwards.
type FreeSlot struct {
	Date         string
	StartMinutes int
	EndMinutes   int
}

// Duration returns the slot duration in minutes.
func (s FreeSlot) Duration() int {
	return s.EndMinutes - s.StartMinutes
}

// String renders the slot as "HH:MM-HH:MM".
func (s FreeSlot) String() string {
	return MinutesToTime(s.StartMinutes) + "-" + MinutesToTime(s.EndMinutes)
}
