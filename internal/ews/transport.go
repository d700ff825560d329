package ews

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/ewsfreebusy/internal/logging"
)

const (
	// ContentType is the media type of SOAP 1.1 request bodies.
	ContentType = "text/xml; charset=utf-8"

	// DefaultTimeout bounds a single round trip when no client is supplied.
	DefaultTimeout = 30 * time.Second

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 16 << 20

	headerClientRequestID       = "client-request-id"
	headerReturnClientRequestID = "return-client-request-id"
)

// Transport delivers a serialized request document and returns the raw
// response document. Implementations must be safe for concurrent use.
type Transport interface {
	Send(ctx context.Context, body []byte) ([]byte, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, body []byte) ([]byte, error)

// Send implements Transport
func (f TransportFunc) Send(ctx context.Context, body []byte) ([]byte, error) {
	return f(ctx, body)
}

// HTTPTransport posts request documents to an EWS endpoint.
type HTTPTransport struct {
	endpoint  string
	client    *http.Client
	logger    logging.Logger
	userAgent string
	auth      string
}

// HTTPOption configures an HTTPTransport.
type HTTPOption func(*HTTPTransport)

// WithHTTPClient replaces the HTTP client. Authorization options applied
// after this one wrap the client's transport.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(t *HTTPTransport) {
		t.client = client
	}
}

// WithTokenSource authorises every request with a bearer token from ts.
func WithTokenSource(ts oauth2.TokenSource) HTTPOption {
	return func(t *HTTPTransport) {
		base := t.client.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		t.client = &http.Client{
			Transport: &oauth2.Transport{
				Source: oauth2.ReuseTokenSource(nil, ts),
				Base:   base,
			},
			Timeout: t.client.Timeout,
		}
	}
}

// WithBearerToken authorises every request with a fixed access token. Only
// the token's length is ever logged.
func WithBearerToken(token string) HTTPOption {
	withSource := WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
	return func(t *HTTPTransport) {
		withSource(t)
		t.auth = logging.SanitizeToken(token)
	}
}

// WithLogger sets the logger used for request tracing at debug level.
func WithLogger(logger logging.Logger) HTTPOption {
	return func(t *HTTPTransport) {
		t.logger = logger
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) HTTPOption {
	return func(t *HTTPTransport) {
		t.userAgent = ua
	}
}

// NewHTTPTransport creates a transport for endpoint, usually
// https://<host>/EWS/Exchange.asmx.
func NewHTTPTransport(endpoint string, opts ...HTTPOption) (*HTTPTransport, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("EWS endpoint is required")
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		return nil, fmt.Errorf("EWS endpoint %q must be an http or https URL", endpoint)
	}

	t := &HTTPTransport{
		endpoint:  endpoint,
		client:    &http.Client{Timeout: DefaultTimeout},
		logger:    logging.NewSlogAdapter(nil),
		userAgent: "ewsfreebusy",
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Endpoint returns the configured endpoint URL.
func (t *HTTPTransport) Endpoint() string {
	return t.endpoint
}

// Send posts body and returns the response body. Non-2xx responses return an
// *HTTPError; the body is returned alongside it so SOAP faults can still be
// decoded.
func (t *HTTPTransport) Send(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", ContentType)
	req.Header.Set("Accept", "text/xml")
	req.Header.Set("User-Agent", t.userAgent)
	if id := RequestIDFromContext(ctx); id != "" {
		req.Header.Set(headerClientRequestID, id)
		req.Header.Set(headerReturnClientRequestID, "true")
	}

	logArgs := []any{
		logging.KeyRequestID, RequestIDFromContext(ctx),
		"bytes", len(body),
	}
	if t.auth != "" {
		logArgs = append(logArgs, "auth", t.auth)
	}
	t.logger.Debug("sending EWS request", logArgs...)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	t.logger.Debug("received EWS response",
		logging.KeyRequestID, RequestIDFromContext(ctx),
		logging.KeyStatus, resp.StatusCode,
		"bytes", len(data))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return data, &HTTPError{StatusCode: resp.StatusCode, Body: data}
	}
	return data, nil
}
