package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
const (
	attrKind      = "kind"
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
	attrResult    = "result"
	attrOutcome   = "outcome"
	attrTool      = "tool"
)

// durationBuckets covers everything from a cached reply to a slow, retried
// Drive listing.
var durationBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0}

// Metrics provides methods for recording observability metrics.
// All methods are safe to call on a nil receiver.
type Metrics struct {
	// Bot metrics
	updatesTotal   metric.Int64Counter
	updateDuration metric.Float64Histogram
	repliesTotal   metric.Int64Counter

	// Search metrics
	searchResultsTotal metric.Int64Counter

	// Google API metrics
	googleAPIOperationsTotal   metric.Int64Counter
	googleAPIOperationDuration metric.Float64Histogram
	driveRetriesTotal          metric.Int64Counter

	// OAuth metrics
	oauthConsentTotal      metric.Int64Counter
	oauthTokenRefreshTotal metric.Int64Counter

	// MCP Tool metrics
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram
}

// NewMetrics creates a new Metrics instance with all instruments initialized.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	counters := []struct {
		target *metric.Int64Counter
		name   string
		desc   string
		unit   string
	}{
		{&m.updatesTotal, "bot_updates_total", "Total number of chat updates handled", "{update}"},
		{&m.repliesTotal, "bot_replies_total", "Total number of outbound chat messages", "{message}"},
		{&m.searchResultsTotal, "handout_search_results_total", "Total number of handout searches by outcome", "{search}"},
		{&m.googleAPIOperationsTotal, "google_api_operations_total", "Total number of Google API operations", "{operation}"},
		{&m.driveRetriesTotal, "drive_api_retries_total", "Total number of retried Drive API requests", "{retry}"},
		{&m.oauthConsentTotal, "oauth_consent_total", "Total number of interactive OAuth consent flows", "{attempt}"},
		{&m.oauthTokenRefreshTotal, "oauth_token_refresh_total", "Total number of OAuth token refresh attempts", "{attempt}"},
		{&m.toolInvocationsTotal, "mcp_tool_invocations_total", "Total number of MCP tool invocations", "{invocation}"},
	}
	for _, c := range counters {
		*c.target, err = meter.Int64Counter(c.name,
			metric.WithDescription(c.desc),
			metric.WithUnit(c.unit),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s counter: %w", c.name, err)
		}
	}

	histograms := []struct {
		target *metric.Float64Histogram
		name   string
		desc   string
	}{
		{&m.updateDuration, "bot_update_duration_seconds", "Chat update handling duration in seconds"},
		{&m.googleAPIOperationDuration, "google_api_operation_duration_seconds", "Google API operation duration in seconds"},
		{&m.toolDuration, "mcp_tool_duration_seconds", "MCP tool execution duration in seconds"},
	}
	for _, h := range histograms {
		*h.target, err = meter.Float64Histogram(h.name,
			metric.WithDescription(h.desc),
			metric.WithUnit("s"),
			metric.WithExplicitBucketBoundaries(durationBuckets...),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s histogram: %w", h.name, err)
		}
	}

	return m, nil
}

// RecordUpdate records a handled chat update.
//
// Parameters:
//   - kind: one of the UpdateKind constants
//   - status: "success" or "error"
//   - duration: time spent handling the update
func (m *Metrics) RecordUpdate(ctx context.Context, kind, status string, duration time.Duration) {
	if m == nil || m.updatesTotal == nil || m.updateDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrKind, kind),
		attribute.String(attrStatus, status),
	)
	m.updatesTotal.Add(ctx, 1, attrs)
	m.updateDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordReply records one outbound message of the given ReplyKind.
func (m *Metrics) RecordReply(ctx context.Context, kind string) {
	if m == nil || m.repliesTotal == nil {
		return
	}
	m.repliesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrKind, kind)))
}

// RecordSearchResult records the outcome of a handout search.
func (m *Metrics) RecordSearchResult(ctx context.Context, outcome string) {
	if m == nil || m.searchResultsTotal == nil {
		return
	}
	m.searchResultsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrOutcome, outcome)))
}

// RecordGoogleAPIOperation records a Google API operation with service, operation,
// status, and duration.
func (m *Metrics) RecordGoogleAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m == nil || m.googleAPIOperationsTotal == nil || m.googleAPIOperationDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	)
	m.googleAPIOperationsTotal.Add(ctx, 1, attrs)
	m.googleAPIOperationDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordDriveRetry records a Drive request that is about to be retried.
func (m *Metrics) RecordDriveRetry(ctx context.Context, operation string) {
	if m == nil || m.driveRetriesTotal == nil {
		return
	}
	m.driveRetriesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrOperation, operation)))
}

// RecordOAuthConsent records an interactive consent flow with result.
// Result should be one of: "success", "failure"
func (m *Metrics) RecordOAuthConsent(ctx context.Context, result string) {
	if m == nil || m.oauthConsentTotal == nil {
		return
	}
	m.oauthConsentTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

// RecordOAuthTokenRefresh records an OAuth token refresh attempt with result.
// Result should be one of: "success", "failure"
func (m *Metrics) RecordOAuthTokenRefresh(ctx context.Context, result string) {
	if m == nil || m.oauthTokenRefreshTotal == nil {
		return
	}
	m.oauthTokenRefreshTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

// RecordToolInvocation records an MCP tool invocation with tool name, status, and duration.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	)
	m.toolInvocationsTotal.Add(ctx, 1, attrs)
	m.toolDuration.Record(ctx, duration.Seconds(), attrs)
}
