// Package calendar fetches busy intervals from Google Calendar.
//
// The package is the bot's CalendarSource collaborator: given a horizon of
// days it lists the events of every configured calendar over that range and
// reduces them to the canonical busy-interval shape the availability engine
// consumes. It is the only place that understands the Google Calendar wire
// format.
//
// Calendars are fetched concurrently. A calendar that fails to load is
// logged and contributes no busy intervals; the overall fetch still
// succeeds. This is a deliberate degraded mode: partial upstream failure
// means the bot reports more availability than actually exists, which is
// preferred over reporting nothing at all.
//
// Example usage:
//
//	cache, err := google.NewTokenCache(ctx, creds)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	src, err := calendar.NewSource(ctx, cache, []string{"alice@example.com", "bob@example.com"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	busy, err := src.FetchBusyIntervals(ctx, computer.Now(), 7)
package calendar
