// Package cmd implements the command-line interface for ewsfreebusy.
//
// This package provides the following commands:
//   - request: Print the GetUserAvailability SOAP request for a window
//   - decode: Decode a saved response as text, JSON or iCalendar
//   - timezone: Show the offset and transition rules sent for a timezone
//   - query: Send a lookup to the configured EWS endpoint
//   - serve: Start the MCP server to provide tools for AI assistants
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - version: Display version information
//
// Without a subcommand the help text is printed.
package cmd
