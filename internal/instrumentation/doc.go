// Package instrumentation provides OpenTelemetry metrics, tracing and audit
// logging for ewsfreebusy.
//
// # Metrics
//
// EWS metrics:
//   - ews_operations_total: Counter of EWS operations by operation and status
//   - ews_operation_duration_seconds: Histogram of EWS operation durations
//   - availability_decode_errors_total: Counter of translation failures by error kind
//   - availability_status_slots_total: Counter of decoded free/busy slots by status
//
// MCP tool metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// # Tracing
//
// Spans are created for EWS operations (ews.<operation>) and MCP tool
// invocations (tool.<name>). Mailbox addresses are reduced to their domain
// before they become span attributes.
//
// # Configuration
//
// DefaultConfig reads:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp or stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout or none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces and metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: ewsfreebusy)
//   - AUDIT_LOGGING_ENABLED, AUDIT_LOGGING_INCLUDE_PII: lookup audit log
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordEWSOperation(ctx,
//		instrumentation.OperationGetUserAvailability,
//		instrumentation.StatusSuccess, mailbox, time.Since(start))
package instrumentation
