// Package common provides shared utilities for MCP tool implementations:
// the instrumented handler wrapper and argument parsing for availability
// lookups.
package common
