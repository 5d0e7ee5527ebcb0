// Package server wires the bot's HTTP surface.
//
// The main server exposes the Slack slash-command endpoint plus health
// probes for Kubernetes:
//
//	POST /slack/command   slash-command webhook (signature-verified)
//	GET  /healthz         liveness probe
//	GET  /readyz          readiness probe
//	GET  /                 plain banner
//
// Slash commands are acknowledged immediately with an ephemeral "searching"
// message and processed in a background goroutine, because Slack gives
// webhooks only three seconds to answer while a multi-calendar fetch can
// take longer. The final result is delivered through the command's
// response_url.
//
// Prometheus metrics are served by a separate MetricsServer on a dedicated
// port so operational data is never exposed on the public listener.
package server
