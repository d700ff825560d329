package instrumentation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/teemow/ewsfreebusy/internal/availability"
)

func TestExtractMailboxDomain(t *testing.T) {
	tests := []struct {
		address  string
		expected string
	}{
		{"jane@example.com", "example.com"},
		{"room.4@Facilities.Example.org", "facilities.example.org"},
		{"invalid", "unknown"},
		{"", "unknown"},
		{"@", "unknown"},
		{"user@", "unknown"},
		{"@domain.com", "domain.com"},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			if got := ExtractMailboxDomain(tt.address); got != tt.expected {
				t.Errorf("ExtractMailboxDomain(%q) = %q, want %q", tt.address, got, tt.expected)
			}
		})
	}
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&availability.TimezoneResolutionError{Name: "Mars/Base"}, ErrorKindTimezone},
		{&availability.UnknownItemTypeError{Tag: "Appointment"}, ErrorKindUnknownItem},
		{&availability.MalformedResponseError{Element: "MergedFreeBusy"}, ErrorKindMalformed},
		{&availability.StatusCodeError{Position: 0, Code: 'x'}, ErrorKindStatusCode},
		{&availability.ValidationError{Field: "mailbox", Reason: "empty"}, ErrorKindInvalidParams},
		{&availability.ServiceError{Code: "ErrorServerBusy"}, ErrorKindServiceFault},
		{fmt.Errorf("wrapped: %w", &availability.UnknownItemTypeError{Tag: "X"}), ErrorKindUnknownItem},
		{errors.New("dial tcp: refused"), ErrorKindOther},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := ErrorKind(tt.err); got != tt.want {
				t.Errorf("ErrorKind(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}
