package ews

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/ewsfreebusy/internal/availability"
	"github.com/teemow/ewsfreebusy/internal/instrumentation"
	"github.com/teemow/ewsfreebusy/internal/logging"
)

// Availability is the outcome of one GetUserAvailability exchange.
type Availability struct {
	// Params are the effective parameters after defaults were applied
	Params availability.Params

	// Rule is the timezone rule the request was built with
	Rule availability.TimezoneRule

	// Statuses holds one entry per merged interval, in window order
	Statuses []availability.Status

	// Items are the calendar items reported for the window
	Items []availability.Item

	// RequestID is the client request ID sent with the request
	RequestID string
}

// StatusCounts returns how many slots carry each status name.
func (a *Availability) StatusCounts() map[string]int {
	counts := make(map[string]int)
	for _, s := range a.Statuses {
		counts[s.String()]++
	}
	return counts
}

// Service performs GetUserAvailability round trips over a Transport.
type Service struct {
	transport Transport
	decoder   *availability.Decoder
	metrics   *instrumentation.Metrics
	logger    *slog.Logger
	audit     *instrumentation.AuditLogger
	source    string
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithRegistry decodes items using registry instead of the default one.
func WithRegistry(registry *availability.Registry) Option {
	return func(s *Service) {
		s.decoder = availability.NewDecoder(registry)
	}
}

// WithMetrics records operation metrics on m.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithServiceLogger sets the structured logger.
func WithServiceLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAuditLogger writes an audit record for every lookup.
func WithAuditLogger(audit *instrumentation.AuditLogger) Option {
	return func(s *Service) {
		s.audit = audit
	}
}

// WithSource names the caller in audit records, e.g. "query" or a tool name.
func WithSource(source string) Option {
	return func(s *Service) {
		s.source = source
	}
}

// WithClock overrides the clock used for defaults and timezone resolution.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a Service sending requests through transport.
func NewService(transport Transport, opts ...Option) *Service {
	s := &Service{
		transport: transport,
		decoder:   availability.NewDecoder(nil),
		logger:    slog.Default(),
		source:    "service",
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Decoder returns the response decoder used by the service.
func (s *Service) Decoder() *availability.Decoder {
	return s.decoder
}

// GetUserAvailability builds a request for params, sends it and decodes the
// response. Unset params are filled from availability.DefaultParams.
func (s *Service) GetUserAvailability(ctx context.Context, params availability.Params) (result *Availability, err error) {
	now := s.now()
	params = params.WithDefaults(now)

	requestID := RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = NewRequestID()
		ctx = WithRequestID(ctx, requestID)
	}

	attrs := instrumentation.NewSpanAttributeBuilder().
		WithOperation(instrumentation.OperationGetUserAvailability).
		WithMailbox(params.Mailbox).
		WithTimezone(params.TimeZone).
		WithRequestID(requestID).
		Build()
	ctx, span := instrumentation.StartEWSSpan(ctx, instrumentation.OperationGetUserAvailability, attrs...)
	defer span.End()

	logger := logging.WithOperation(s.logger, instrumentation.OperationGetUserAvailability).With(
		logging.MailboxHash(params.Mailbox),
		logging.Domain(params.Mailbox),
		logging.Timezone(params.TimeZone),
		logging.RequestID(requestID),
	)

	lookup := instrumentation.NewLookup(s.source, params.Mailbox, params.TimeZone).
		WithWindow(params.Start, params.End).
		WithTrace(ctx)

	start := time.Now()
	defer func() {
		status := instrumentation.StatusSuccess
		statusCount, itemCount := 0, 0
		if err != nil {
			status = instrumentation.StatusError
			instrumentation.SetSpanError(span, err)
			logger.Warn("availability lookup failed", logging.Err(err))
			if s.metrics != nil {
				s.metrics.RecordDecodeError(ctx, err)
			}
		} else {
			statusCount, itemCount = len(result.Statuses), len(result.Items)
			span.SetAttributes(
				attribute.Int(instrumentation.SpanAttrStatusCount, statusCount),
				attribute.Int(instrumentation.SpanAttrItemCount, itemCount),
			)
			instrumentation.SetSpanSuccess(span)
			logger.Debug("availability lookup completed",
				slog.Int("statuses", statusCount),
				slog.Int("items", itemCount),
				slog.Duration(logging.KeyDuration, time.Since(start)))
			if s.metrics != nil {
				s.metrics.RecordStatusSlots(ctx, result.StatusCounts())
			}
		}
		if s.metrics != nil {
			s.metrics.RecordEWSOperation(ctx, instrumentation.OperationGetUserAvailability, status, params.Mailbox, time.Since(start))
		}
		s.audit.LogLookup(lookup.Complete(statusCount, itemCount, err))
	}()

	doc, rule, err := availability.NewRequest(params, now)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Bool(instrumentation.SpanAttrDaylightSaving, rule.DaylightSavingActive))

	body, err := doc.Marshal()
	if err != nil {
		return nil, err
	}

	data, err := s.send(ctx, params.Mailbox, body)
	if err != nil {
		return nil, err
	}

	decoded, err := s.decode(ctx, params.Mailbox, data)
	if err != nil {
		return nil, err
	}

	return &Availability{
		Params:    params,
		Rule:      rule,
		Statuses:  decoded.Statuses,
		Items:     decoded.Items,
		RequestID: requestID,
	}, nil
}

func (s *Service) send(ctx context.Context, mailbox string, body []byte) ([]byte, error) {
	ctx, span := instrumentation.StartEWSSpan(ctx, instrumentation.OperationSend)
	defer span.End()

	start := time.Now()
	data, err := s.transport.Send(ctx, body)
	if s.metrics != nil {
		status := instrumentation.StatusSuccess
		if err != nil {
			status = instrumentation.StatusError
		}
		s.metrics.RecordEWSOperation(ctx, instrumentation.OperationSend, status, mailbox, time.Since(start))
	}

	if err != nil {
		instrumentation.SetSpanError(span, err)
		// Exchange reports SOAP faults with HTTP 500 and a fault body
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && len(data) > 0 {
			if doc, parseErr := availability.ParseResponse(data); parseErr == nil {
				if faultErr := doc.ResponseError(); faultErr != nil {
					return nil, faultErr
				}
			}
		}
		return nil, fmt.Errorf("GetUserAvailability request failed: %w", err)
	}
	instrumentation.SetSpanSuccess(span)
	return data, nil
}

func (s *Service) decode(ctx context.Context, mailbox string, data []byte) (*availability.Result, error) {
	_, span := instrumentation.StartEWSSpan(ctx, instrumentation.OperationDecode)
	defer span.End()

	start := time.Now()
	result, err := s.decoder.Decode(data)
	if s.metrics != nil {
		status := instrumentation.StatusSuccess
		if err != nil {
			status = instrumentation.StatusError
		}
		s.metrics.RecordEWSOperation(ctx, instrumentation.OperationDecode, status, mailbox, time.Since(start))
	}
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, err
	}
	instrumentation.SetSpanSuccess(span)
	return result, nil
}
