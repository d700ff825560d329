package availability

import (
	"strings"
	"time"
)

// Default request values used when the caller does not supply them.
const (
	DefaultTimeZone             = "Europe/London"
	DefaultMailbox              = "test.test@test.com"
	DefaultMergeIntervalMinutes = 60
)

// Params holds the caller-supplied inputs of a GetUserAvailability request.
//
// Start and End are wall-clock values: only their calendar fields are written
// to the request, the offset is conveyed separately by the timezone block.
type Params struct {
	TimeZone             string
	Mailbox              string
	Start                time.Time
	End                  time.Time
	MergeIntervalMinutes int
}

// DefaultParams returns the default parameter set for the day containing now:
// the window runs from the first second after midnight to the last second
// before the next midnight.
func DefaultParams(now time.Time) Params {
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return Params{
		TimeZone:             DefaultTimeZone,
		Mailbox:              DefaultMailbox,
		Start:                midnight.Add(time.Second),
		End:                  midnight.AddDate(0, 0, 1).Add(-time.Second),
		MergeIntervalMinutes: DefaultMergeIntervalMinutes,
	}
}

// WithDefaults fills unset fields from DefaultParams(now).
func (p Params) WithDefaults(now time.Time) Params {
	defaults := DefaultParams(now)
	if strings.TrimSpace(p.TimeZone) == "" {
		p.TimeZone = defaults.TimeZone
	}
	if strings.TrimSpace(p.Mailbox) == "" {
		p.Mailbox = defaults.Mailbox
	}
	if p.Start.IsZero() {
		p.Start = defaults.Start
	}
	if p.End.IsZero() {
		p.End = defaults.End
	}
	if p.MergeIntervalMinutes == 0 {
		p.MergeIntervalMinutes = defaults.MergeIntervalMinutes
	}
	return p
}

// Validate checks the parameter invariants.
func (p Params) Validate() error {
	if strings.TrimSpace(p.TimeZone) == "" {
		return &ValidationError{Field: "time zone", Reason: "must not be empty"}
	}
	if strings.TrimSpace(p.Mailbox) == "" {
		return &ValidationError{Field: "mailbox", Reason: "must not be empty"}
	}
	if p.MergeIntervalMinutes <= 0 {
		return &ValidationError{Field: "merge interval", Reason: "must be a positive number of minutes"}
	}
	if !wallClock(p.Start).Before(wallClock(p.End)) {
		return &ValidationError{Field: "time window", Reason: "start must be before end"}
	}
	return nil
}

// wallClock strips the location so that comparisons use calendar fields only.
func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

// TimezoneRule is the offset information for a zone at a reference instant.
type TimezoneRule struct {
	// UTCOffsetMinutes is the signed offset from UTC, including active DST
	UTCOffsetMinutes int

	// StandardOffsetMinutes is the extra offset applied during DST (0 when inactive)
	StandardOffsetMinutes int

	// DaylightSavingActive reports whether DST is in effect at the reference instant
	DaylightSavingActive bool
}

// Status is the availability of a mailbox for one merged interval.
type Status int

// Free/busy status codes as encoded in the merged free/busy string.
const (
	Free Status = iota
	Tentative
	Busy
	OutOfOffice
	NoData
)

var statusNames = [...]string{
	Free:        "Free",
	Tentative:   "Tentative",
	Busy:        "Busy",
	OutOfOffice: "OOF",
	NoData:      "NoData",
}

// String returns the service's name for the status
func (s Status) String() string {
	if s < Free || s > NoData {
		return "Unknown"
	}
	return statusNames[s]
}

// Code returns the single character used for the status on the wire.
func (s Status) Code() byte {
	return byte('0' + s)
}

// ParseStatusCode maps a single status character to a Status.
func ParseStatusCode(c rune) (Status, bool) {
	if c < '0' || c > '4' {
		return 0, false
	}
	return Status(c - '0'), true
}
