// Package instrumentation provides OpenTelemetry-based metrics for the bot.
//
// Metrics are exported through the Prometheus exporter and served by the
// dedicated metrics server in internal/server. The package exposes a
// Provider that owns the meter provider lifecycle and a Metrics recorder
// with one method per instrumented event (slash commands, calendar fetches,
// token refreshes, computed free slots).
//
// A disabled Provider hands out a no-op Metrics recorder, so call sites
// never need to branch on whether instrumentation is on.
package instrumentation
