package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	calendarv3 "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/freeweek/internal/availability"
	"github.com/teemow/freeweek/internal/google"
	"github.com/teemow/freeweek/internal/instrumentation"
	"github.com/teemow/freeweek/internal/logging"
)

// maxEventsPerCalendar caps the number of events requested per calendar for
// one horizon. A week of a normally booked calendar stays well below this.
const maxEventsPerCalendar = 100

// Source fetches busy intervals from a fixed set of Google Calendars.
type Source struct {
	svc         *calendarv3.Service
	calendarIDs []string
	logger      *slog.Logger
	metrics     *instrumentation.Metrics
}

// Option configures a Source.
type Option func(*Source)

// WithLogger sets the logger used for per-calendar fetch failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		s.logger = logger
	}
}

// WithMetrics enables fetch instrumentation.
func WithMetrics(metrics *instrumentation.Metrics) Option {
	return func(s *Source) {
		s.metrics = metrics
	}
}

// NewSource creates a calendar source authenticated through the given token
// cache.
func NewSource(ctx context.Context, tokens *google.TokenCache, calendarIDs []string, opts ...Option) (*Source, error) {
	if len(calendarIDs) == 0 {
		return nil, fmt.Errorf("no calendar IDs configured")
	}

	svc, err := calendarv3.NewService(ctx, option.WithTokenSource(tokens))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	s := &Source{
		svc:         svc,
		calendarIDs: calendarIDs,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CalendarIDs returns the configured calendar IDs.
func (s *Source) CalendarIDs() []string {
	return s.calendarIDs
}

// FetchBusyIntervals lists the events of every configured calendar from
// now's date at 00:00 through the end of the day `days` days out, both
// bounds in now's location, and reduces them to busy intervals. The caller
// passes now already resolved in the business timezone so the fetch window
// and the availability computation share one anchor. Calendars are fetched
// concurrently; per-calendar failures are logged and skipped.
func (s *Source) FetchBusyIntervals(ctx context.Context, now time.Time, days int) ([]availability.BusyInterval, error) {
	timeMin, timeMax := fetchWindow(now, days)
	return s.fetchBusyIntervals(ctx, timeMin, timeMax)
}

func (s *Source) fetchBusyIntervals(ctx context.Context, timeMin, timeMax time.Time) ([]availability.BusyInterval, error) {
	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		busy []availability.BusyInterval
	)

	for _, id := range s.calendarIDs {
		wg.Add(1)
		go func(calendarID string) {
			defer wg.Done()

			start := time.Now()
			intervals, err := s.fetchCalendar(ctx, calendarID, timeMin, timeMax)
			if s.metrics != nil {
				s.metrics.RecordCalendarFetch(ctx, time.Since(start), err)
			}
			if err != nil {
				// Degraded mode: a failing calendar contributes nothing.
				s.logger.Error("calendar fetch failed",
					logging.Operation("fetch_busy_intervals"),
					logging.Calendar(calendarID),
					logging.Err(err))
				return
			}

			mu.Lock()
			busy = append(busy, intervals...)
			mu.Unlock()
		}(id)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return busy, nil
}

func (s *Source) fetchCalendar(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]availability.BusyInterval, error) {
	events, err := s.svc.Events.List(calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(maxEventsPerCalendar).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	return reduceEvents(events.Items), nil
}

// fetchWindow returns the event query range for a horizon: local midnight
// of the anchor day through 23:59:59.999 of the day `days` days out. The
// upper bound is one day wider than the computed horizon; the availability
// engine ignores intervals past its last day.
func fetchWindow(now time.Time, days int) (timeMin, timeMax time.Time) {
	timeMin = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	timeMax = time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, int(999*time.Millisecond), now.Location()).
		AddDate(0, 0, days)
	return timeMin, timeMax
}
