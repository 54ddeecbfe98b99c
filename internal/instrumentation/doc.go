// Package instrumentation provides OpenTelemetry instrumentation for handoutbot.
//
// This package enables observability through:
//   - OpenTelemetry metrics for chat updates, handout searches, Drive API calls
//     and OAuth credential handling
//   - Distributed tracing for search handling and Drive API calls
//   - Prometheus metrics export via /metrics endpoint on dedicated port
//   - OTLP export support for modern observability platforms
//
// # Metrics
//
// Bot Metrics:
//   - bot_updates_total: Counter of handled chat updates by kind and status
//   - bot_update_duration_seconds: Histogram of update handling durations
//   - bot_replies_total: Counter of outbound messages by kind
//
// Search Metrics:
//   - handout_search_results_total: Counter of searches by outcome (none, single, multiple, error)
//
// Google API Metrics:
//   - google_api_operations_total: Counter of Google API operations by service, operation, status
//   - google_api_operation_duration_seconds: Histogram of Google API operation durations
//   - drive_api_retries_total: Counter of retried Drive requests by operation
//
// OAuth Metrics:
//   - oauth_consent_total: Counter of interactive consent flows by result
//   - oauth_token_refresh_total: Counter of token refresh attempts by result
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: handoutbot)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	recorder := provider.Metrics()
//	recorder.RecordUpdate(ctx, instrumentation.UpdateKindSearch, instrumentation.StatusSuccess, time.Since(start))
//
// A nil *Metrics is valid and records nothing, so packages can accept an
// optional recorder without checks at every call site.
package instrumentation
