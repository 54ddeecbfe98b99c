// Package server runs the operational HTTP endpoints of handoutbot.
//
// The MetricsServer listens on its own address, separate from any bot
// traffic, and serves:
//   - /metrics: Prometheus scrape endpoint backed by the OpenTelemetry exporter
//   - /healthz: liveness, always ok while the process runs
//   - /readyz: readiness, ok once the bot is polling and until shutdown begins
package server
