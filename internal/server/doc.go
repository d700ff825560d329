// Package server provides the MCP server context and the operational HTTP
// listener for the ewsfreebusy application.
//
// # Key Components
//
// ServerContext carries the runtime configuration, the availability service
// and the metrics recorder shared by all MCP tools. The service is nil when
// no EWS endpoint is configured.
//
// MetricsServer serves Prometheus metrics on a dedicated port, separate from
// the MCP transport. HealthChecker adds liveness and readiness probes to the
// same listener:
//   - /healthz: the process is alive
//   - /readyz: the server is ready, not shutting down, and has an endpoint
//   - /healthz/detailed: uptime and the default lookup settings
package server
