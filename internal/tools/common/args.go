package common

import (
	"fmt"
	"strings"
	"time"

	"github.com/teemow/ewsfreebusy/internal/availability"
	"github.com/teemow/ewsfreebusy/internal/config"
)

// Argument names shared by the availability tools.
const (
	ArgMailbox       = "mailbox"
	ArgTimeZone      = "timezone"
	ArgStart         = "start"
	ArgEnd           = "end"
	ArgMergeInterval = "mergeIntervalMinutes"
)

// wallClockLayouts are tried in order when parsing window bounds.
var wallClockLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// GetStringArg returns the trimmed string argument name, or "" when it is
// missing or not a string.
func GetStringArg(args map[string]interface{}, name string) string {
	if value, ok := args[name].(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

// GetIntArg returns the numeric argument name truncated to an int. JSON
// numbers arrive as float64.
func GetIntArg(args map[string]interface{}, name string, fallback int) int {
	switch value := args[name].(type) {
	case float64:
		return int(value)
	case int:
		return value
	default:
		return fallback
	}
}

// GetBoolArg returns the boolean argument name, or fallback.
func GetBoolArg(args map[string]interface{}, name string, fallback bool) bool {
	if value, ok := args[name].(bool); ok {
		return value
	}
	return fallback
}

// ParseWallClock parses a window bound. Values without an offset are taken
// as wall-clock times; for RFC 3339 values only the calendar fields are kept,
// because the offset is conveyed by the timezone argument.
func ParseWallClock(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC), nil
	}
	for _, layout := range wallClockLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q: expected YYYY-MM-DDTHH:MM:SS", value)
}

// LocalWallClock returns the calendar fields of now in zone as a UTC-located
// value, matching how window bounds are parsed. Unknown zones leave the
// fields of now unchanged.
func LocalWallClock(now time.Time, zone string) time.Time {
	if loc, err := time.LoadLocation(zone); err == nil && zone != "" {
		now = now.In(loc)
	}
	return time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), now.Minute(), now.Second(), 0, time.UTC)
}

// ParamsFromArgs builds request parameters from tool arguments. Arguments
// that are not supplied fall back to the configured defaults for the day
// containing now in the requested timezone. A date-only end bound covers
// that whole day.
func ParamsFromArgs(args map[string]interface{}, cfg config.Runtime, now time.Time) (availability.Params, error) {
	zone := cfg.TimeZone
	if tz := GetStringArg(args, ArgTimeZone); tz != "" {
		zone = tz
	}

	params := cfg.Params(LocalWallClock(now, zone))
	params.TimeZone = zone
	if mailbox := GetStringArg(args, ArgMailbox); mailbox != "" {
		params.Mailbox = mailbox
	}

	if raw := GetStringArg(args, ArgStart); raw != "" {
		start, err := ParseWallClock(raw)
		if err != nil {
			return availability.Params{}, fmt.Errorf("start: %w", err)
		}
		params.Start = start
		if GetStringArg(args, ArgEnd) == "" {
			params.End = start.AddDate(0, 0, 1).Add(-time.Second)
		}
	}

	if raw := GetStringArg(args, ArgEnd); raw != "" {
		end, err := ParseWallClock(raw)
		if err != nil {
			return availability.Params{}, fmt.Errorf("end: %w", err)
		}
		if len(raw) == len("2006-01-02") {
			end = end.AddDate(0, 0, 1).Add(-time.Second)
		}
		params.End = end
	}

	if interval := GetIntArg(args, ArgMergeInterval, 0); interval != 0 {
		params.MergeIntervalMinutes = interval
	}

	return params, params.Validate()
}
