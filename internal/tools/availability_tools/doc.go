// Package availability_tools provides MCP (Model Context Protocol) tools for
// Exchange free/busy lookups.
//
// The tools query a mailbox's merged free/busy view through the configured
// EWS endpoint, search it for meeting slots, and export the reported events as
// iCalendar. A batch tool runs the same lookup for several mailboxes
// concurrently. Two tools work offline: one renders the SOAP request document
// for a window and one explains how a timezone is described to the service.
package availability_tools
