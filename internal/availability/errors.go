package availability

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for matching with errors.Is.
var (
	ErrTimezoneResolution = errors.New("timezone resolution failed")
	ErrUnknownItemType    = errors.New("unknown calendar item type")
	ErrMalformedResponse  = errors.New("malformed availability response")
	ErrInvalidStatusCode  = errors.New("invalid free/busy status code")
	ErrInvalidParams      = errors.New("invalid availability parameters")
	ErrRegistrySealed     = errors.New("item registry is sealed")
	ErrServiceFault       = errors.New("availability service returned an error")
)

// TimezoneResolutionError is returned when a timezone name cannot be resolved.
// It is a configuration class failure and carries a server error status.
type TimezoneResolutionError struct {
	Name       string // Timezone name as supplied by the caller
	Cause      error  // Underlying lookup error
	StatusCode int    // HTTP-equivalent status (always 500)
}

// Error implements the error interface
func (e *TimezoneResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve timezone %q: %v", e.Name, e.Cause)
}

// Unwrap returns the underlying cause
func (e *TimezoneResolutionError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrTimezoneResolution
func (e *TimezoneResolutionError) Is(target error) bool {
	return target == ErrTimezoneResolution
}

func newTimezoneResolutionError(name string, cause error) *TimezoneResolutionError {
	return &TimezoneResolutionError{
		Name:       name,
		Cause:      cause,
		StatusCode: http.StatusInternalServerError,
	}
}

// UnknownItemTypeError is returned when a calendar item tag has no registered constructor.
type UnknownItemTypeError struct {
	Tag string
}

// Error implements the error interface
func (e *UnknownItemTypeError) Error() string {
	return fmt.Sprintf("no decoder registered for calendar item type %q", e.Tag)
}

// Is reports whether target is ErrUnknownItemType
func (e *UnknownItemTypeError) Is(target error) bool {
	return target == ErrUnknownItemType
}

// MalformedResponseError is returned when an expected element is absent from
// the response document or the document is not well-formed.
type MalformedResponseError struct {
	Element string // Expected element local name, empty for parse failures
	Cause   error
}

// Error implements the error interface
func (e *MalformedResponseError) Error() string {
	if e.Element == "" {
		return fmt.Sprintf("malformed response document: %v", e.Cause)
	}
	if e.Cause != nil {
		return fmt.Sprintf("malformed response document: element %s: %v", e.Element, e.Cause)
	}
	return fmt.Sprintf("malformed response document: element %s not found", e.Element)
}

// Unwrap returns the underlying cause, if any
func (e *MalformedResponseError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrMalformedResponse
func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}

// StatusCodeError is returned when the merged free/busy string contains a
// character outside '0'..'4'.
type StatusCodeError struct {
	Position int
	Code     rune
}

// Error implements the error interface
func (e *StatusCodeError) Error() string {
	return fmt.Sprintf("invalid free/busy status code %q at position %d", e.Code, e.Position)
}

// Is reports whether target is ErrInvalidStatusCode
func (e *StatusCodeError) Is(target error) bool {
	return target == ErrInvalidStatusCode
}

// ValidationError describes an invalid request parameter.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is reports whether target is ErrInvalidParams
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidParams
}

// ServiceError is a fault reported by the remote service inside a response
// document, either as a SOAP fault or as a response message with
// ResponseClass="Error".
type ServiceError struct {
	Code    string
	Message string
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("availability service error: %s", e.Message)
	}
	return fmt.Sprintf("availability service error %s: %s", e.Code, e.Message)
}

// Is reports whether target is ErrServiceFault
func (e *ServiceError) Is(target error) bool {
	return target == ErrServiceFault
}
