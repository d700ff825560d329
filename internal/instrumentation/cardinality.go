package instrumentation

import (
	"errors"
	"strings"

	"github.com/teemow/ewsfreebusy/internal/availability"
)

// Cardinality management helpers for metrics. Label values derived from
// mailboxes or errors go through these functions so the label space stays
// bounded.

// ExtractMailboxDomain extracts the domain part from a mailbox address.
//
// Example:
//
//	ExtractMailboxDomain("jane@example.com")  // "example.com"
//	ExtractMailboxDomain("invalid")           // "unknown"
func ExtractMailboxDomain(address string) string {
	if address == "" {
		return "unknown"
	}

	parts := strings.Split(address, "@")
	if len(parts) == 2 && parts[1] != "" {
		return strings.ToLower(parts[1])
	}

	return "unknown"
}

// Error kinds used as metric label values.
const (
	ErrorKindTimezone      = "timezone"
	ErrorKindUnknownItem   = "unknown_item"
	ErrorKindMalformed     = "malformed_response"
	ErrorKindStatusCode    = "status_code"
	ErrorKindInvalidParams = "invalid_params"
	ErrorKindServiceFault  = "service_fault"
	ErrorKindOther         = "other"
)

// ErrorKind maps an availability error to a fixed label value.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, availability.ErrTimezoneResolution):
		return ErrorKindTimezone
	case errors.Is(err, availability.ErrUnknownItemType):
		return ErrorKindUnknownItem
	case errors.Is(err, availability.ErrInvalidStatusCode):
		return ErrorKindStatusCode
	case errors.Is(err, availability.ErrMalformedResponse):
		return ErrorKindMalformed
	case errors.Is(err, availability.ErrInvalidParams):
		return ErrorKindInvalidParams
	case errors.Is(err, availability.ErrServiceFault):
		return ErrorKindServiceFault
	default:
		return ErrorKindOther
	}
}
