package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"github.com/teemow/ewsfreebusy/internal/logging"
)

// Lookup records one availability lookup for audit logging. Looking up
// someone else's calendar is a privacy-relevant action, so every lookup made
// through the MCP surface or the CLI is recorded.
type Lookup struct {
	// Source is the tool or command that issued the lookup
	Source string

	// Mailbox is the queried address (PII)
	Mailbox string

	TimeZone    string
	WindowStart time.Time
	WindowEnd   time.Time

	// Result
	StatusCount int
	ItemCount   int
	StartTime   time.Time
	Duration    time.Duration
	Success     bool
	Error       string

	TraceID string
}

// NewLookup starts timing a lookup.
func NewLookup(source, mailbox, timeZone string) *Lookup {
	return &Lookup{
		Source:    source,
		Mailbox:   mailbox,
		TimeZone:  timeZone,
		StartTime: time.Now(),
	}
}

// WithWindow sets the queried time window.
func (l *Lookup) WithWindow(start, end time.Time) *Lookup {
	l.WindowStart = start
	l.WindowEnd = end
	return l
}

// WithTrace copies the trace ID from ctx.
func (l *Lookup) WithTrace(ctx context.Context) *Lookup {
	l.TraceID = GetTraceID(ctx)
	return l
}

// Complete stops timing and records the outcome.
func (l *Lookup) Complete(statusCount, itemCount int, err error) *Lookup {
	l.Duration = time.Since(l.StartTime)
	l.StatusCount = statusCount
	l.ItemCount = itemCount
	l.Success = err == nil
	if err != nil {
		l.Error = err.Error()
	}
	return l
}

// Status returns "success" or "error".
func (l *Lookup) Status() string {
	if l.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns the attributes for the lookup. The mailbox is hashed
// unless includePII is set.
func (l *Lookup) LogAttrs(includePII bool) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("source", l.Source),
		logging.Timezone(l.TimeZone),
		slog.Duration(logging.KeyDuration, l.Duration),
		logging.Status(l.Status()),
		slog.Int("status_count", l.StatusCount),
		slog.Int("item_count", l.ItemCount),
	}

	if includePII {
		attrs = append(attrs, slog.String("mailbox", l.Mailbox))
	} else {
		attrs = append(attrs, logging.MailboxHash(l.Mailbox))
	}
	if !l.WindowStart.IsZero() {
		attrs = append(attrs,
			slog.Time("window_start", l.WindowStart),
			slog.Time("window_end", l.WindowEnd))
	}
	if l.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", l.TraceID))
	}
	if l.Error != "" {
		attrs = append(attrs, slog.String(logging.KeyError, l.Error))
	}

	return attrs
}

// AuditLogger writes lookup records to a dedicated slog logger.
type AuditLogger struct {
	logger     *slog.Logger
	includePII bool
	enabled    bool
}

// NewAuditLogger creates an AuditLogger. A nil logger selects slog.Default().
func NewAuditLogger(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:     logger,
		includePII: config.IncludePII,
		enabled:    config.Enabled,
	}
}

// LogLookup writes one lookup record. Failed lookups are logged at warn level.
func (al *AuditLogger) LogLookup(l *Lookup) {
	if al == nil || !al.enabled || l == nil {
		return
	}

	attrs := l.LogAttrs(al.includePII)
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}

	if l.Success {
		al.logger.Info("availability_lookup", args...)
	} else {
		al.logger.Warn("availability_lookup_failed", args...)
	}
}
