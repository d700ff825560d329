package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyOperation   = "operation"
	KeyMailboxHash = "mailbox_hash"
	KeyTimezone    = "timezone"
	KeyRequestID   = "request_id"
	KeyDuration    = "duration"
	KeyStatus      = "status"
	KeyError       = "error"
	KeyTool        = "tool"
)

// Status values for consistent logging.
// Note: These are intentionally duplicated from instrumentation package
// to avoid circular dependencies (instrumentation imports logging).
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// NewHandler returns the text handler used by the CLI. Debug output is only
// emitted when debug is set.
func NewHandler(w io.Writer, debug bool) slog.Handler {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
}

// WithOperation returns a logger with the operation attribute set.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// WithTool returns a logger with the tool attribute set.
func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(slog.String(KeyTool, tool))
}

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Tool returns a slog attribute for the tool name.
func Tool(tool string) slog.Attr {
	return slog.String(KeyTool, tool)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Timezone returns a slog attribute for an IANA zone name.
func Timezone(name string) slog.Attr {
	return slog.String(KeyTimezone, name)
}

// RequestID returns a slog attribute correlating one outbound request.
func RequestID(id string) slog.Attr {
	return slog.String(KeyRequestID, id)
}

// Err returns a slog attribute for an error.
// If err is nil, returns an empty Group attribute that will be omitted from output.
//
// Usage:
//
//	logger.Info("operation", logging.Err(err))  // Safe even if err is nil
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// AnonymizeMailbox returns a hashed representation of a mailbox address so
// log entries can be correlated without exposing PII. Addresses are
// compared case-insensitively.
func AnonymizeMailbox(address string) string {
	address = strings.ToLower(strings.TrimSpace(address))
	if address == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(address))
	return "mailbox:" + hex.EncodeToString(hash[:8])
}

// MailboxHash returns a slog attribute with the anonymized mailbox address.
//
// Usage:
//
//	logger.Info("availability fetched", logging.MailboxHash(params.Mailbox))
func MailboxHash(address string) slog.Attr {
	return slog.String(KeyMailboxHash, AnonymizeMailbox(address))
}

// SanitizeToken returns a masked version of a token for logging.
// It returns a length indicator without exposing any token content.
func SanitizeToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[token:%d chars]", len(token))
}

// ExtractDomain extracts the domain part from a mailbox address.
func ExtractDomain(address string) string {
	if address == "" {
		return ""
	}
	parts := strings.Split(address, "@")
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}

// Domain returns a slog attribute for the mailbox domain (lower cardinality than the full address).
func Domain(address string) slog.Attr {
	return slog.String("mailbox_domain", ExtractDomain(address))
}
