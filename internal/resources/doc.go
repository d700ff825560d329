// Package resources provides MCP resources for exposing server state.
// Resources are read-only data sources that MCP clients can fetch, here the
// lookup defaults the tools fall back to and the calendar item types the
// response decoder understands.
package resources
