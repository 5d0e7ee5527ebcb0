package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys.
const (
	attrCommand = "command"
	attrStatus  = "status"
)

// Status attribute values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Metrics provides methods for recording service metrics. The zero value is
// a no-op recorder.
type Metrics struct {
	slashCommandsTotal    metric.Int64Counter
	slashCommandDuration  metric.Float64Histogram
	calendarFetchTotal    metric.Int64Counter
	calendarFetchDuration metric.Float64Histogram
	tokenRefreshTotal     metric.Int64Counter
	freeSlotsComputed     metric.Int64Histogram
}

// NewMetrics creates a Metrics instance with all instruments registered on
// the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.slashCommandsTotal, err = meter.Int64Counter(
		"slack_commands_total",
		metric.WithDescription("Total number of Slack slash commands processed"),
		metric.WithUnit("{command}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create slack_commands_total counter: %w", err)
	}

	m.slashCommandDuration, err = meter.Float64Histogram(
		"slack_command_duration_seconds",
		metric.WithDescription("End-to-end slash command processing duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create slack_command_duration_seconds histogram: %w", err)
	}

	m.calendarFetchTotal, err = meter.Int64Counter(
		"calendar_fetch_total",
		metric.WithDescription("Total number of per-calendar event fetches"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar_fetch_total counter: %w", err)
	}

	m.calendarFetchDuration, err = meter.Float64Histogram(
		"calendar_fetch_duration_seconds",
		metric.WithDescription("Per-calendar event fetch duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar_fetch_duration_seconds histogram: %w", err)
	}

	m.tokenRefreshTotal, err = meter.Int64Counter(
		"token_refresh_total",
		metric.WithDescription("Total number of Google access token refreshes"),
		metric.WithUnit("{refresh}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create token_refresh_total counter: %w", err)
	}

	m.freeSlotsComputed, err = meter.Int64Histogram(
		"free_slots_computed",
		metric.WithDescription("Number of free slots produced per availability computation"),
		metric.WithUnit("{slot}"),
		metric.WithExplicitBucketBoundaries(0, 1, 2, 5, 10, 20, 50),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create free_slots_computed histogram: %w", err)
	}

	return m, nil
}

// RecordSlashCommand records one processed slash command.
func (m *Metrics) RecordSlashCommand(ctx context.Context, command string, duration time.Duration, err error) {
	if m == nil || m.slashCommandsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrCommand, command),
		attribute.String(attrStatus, statusValue(err)),
	)
	m.slashCommandsTotal.Add(ctx, 1, attrs)
	m.slashCommandDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordCalendarFetch records one per-calendar event fetch.
func (m *Metrics) RecordCalendarFetch(ctx context.Context, duration time.Duration, err error) {
	if m == nil || m.calendarFetchTotal == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String(attrStatus, statusValue(err)))
	m.calendarFetchTotal.Add(ctx, 1, attrs)
	m.calendarFetchDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordTokenRefresh records one access token exchange.
func (m *Metrics) RecordTokenRefresh(ctx context.Context, err error) {
	if m == nil || m.tokenRefreshTotal == nil {
		return
	}
	m.tokenRefreshTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String(attrStatus, statusValue(err))))
}

// RecordFreeSlotsComputed records the result size of one availability
// computation.
func (m *Metrics) RecordFreeSlotsComputed(ctx context.Context, count int) {
	if m == nil || m.freeSlotsComputed == nil {
		return
	}
	m.freeSlotsComputed.Record(ctx, int64(count))
}

func statusValue(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}
