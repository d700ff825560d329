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
	attrStatus    = "status"
	attrOperation = "operation"
	attrKind      = "kind"
	attrTool      = "tool"
	attrDomain    = "mailbox_domain"
)

// Metrics provides methods for recording observability metrics.
type Metrics struct {
	// EWS metrics
	ewsOperationsTotal   metric.Int64Counter
	ewsOperationDuration metric.Float64Histogram
	decodeErrorsTotal    metric.Int64Counter
	statusSlotsTotal     metric.Int64Counter

	// MCP Tool metrics
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	// detailedLabels adds the mailbox domain to EWS operation metrics
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{
		detailedLabels: detailedLabels,
	}

	var err error

	m.ewsOperationsTotal, err = meter.Int64Counter(
		"ews_operations_total",
		metric.WithDescription("Total number of EWS operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ews_operations_total counter: %w", err)
	}

	m.ewsOperationDuration, err = meter.Float64Histogram(
		"ews_operation_duration_seconds",
		metric.WithDescription("EWS operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ews_operation_duration_seconds histogram: %w", err)
	}

	m.decodeErrorsTotal, err = meter.Int64Counter(
		"availability_decode_errors_total",
		metric.WithDescription("Total number of failed availability request or response translations"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create availability_decode_errors_total counter: %w", err)
	}

	m.statusSlotsTotal, err = meter.Int64Counter(
		"availability_status_slots_total",
		metric.WithDescription("Total number of decoded merged free/busy slots by status"),
		metric.WithUnit("{slot}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create availability_status_slots_total counter: %w", err)
	}

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordEWSOperation records one EWS operation.
//
// Parameters:
//   - operation: Operation name (get_user_availability, send, decode, ...)
//   - status: Result status ("success" or "error")
//   - mailbox: Target mailbox; only its domain is recorded, and only with detailed labels
//   - duration: Time taken for the operation
func (m *Metrics) RecordEWSOperation(ctx context.Context, operation, status, mailbox string, duration time.Duration) {
	if m.ewsOperationsTotal == nil || m.ewsOperationDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}
	if m.detailedLabels && mailbox != "" {
		attrs = append(attrs, attribute.String(attrDomain, ExtractMailboxDomain(mailbox)))
	}

	m.ewsOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.ewsOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordDecodeError records a failed translation, labelled by ErrorKind(err).
func (m *Metrics) RecordDecodeError(ctx context.Context, err error) {
	if m.decodeErrorsTotal == nil || err == nil {
		return
	}

	m.decodeErrorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrKind, ErrorKind(err))))
}

// RecordStatusSlots records how many decoded slots carried each status name.
func (m *Metrics) RecordStatusSlots(ctx context.Context, counts map[string]int) {
	if m.statusSlotsTotal == nil {
		return
	}

	for status, n := range counts {
		if n == 0 {
			continue
		}
		m.statusSlotsTotal.Add(ctx, int64(n), metric.WithAttributes(attribute.String(attrStatus, status)))
	}
}

// RecordToolInvocation records an MCP tool invocation with tool name, status, and duration.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}
