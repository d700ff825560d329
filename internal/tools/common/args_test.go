package common

import (
	"errors"
	"testing"
	"time"

	"github.com/teemow/ewsfreebusy/internal/availability"
	"github.com/teemow/ewsfreebusy/internal/config"
)

func TestGetStringArg(t *testing.T) {
	args := map[string]interface{}{
		"mailbox": "  jane@example.com ",
		"number":  123,
	}

	if got := GetStringArg(args, "mailbox"); got != "jane@example.com" {
		t.Errorf("GetStringArg() = %q", got)
	}
	if got := GetStringArg(args, "number"); got != "" {
		t.Errorf("expected empty string for non-string value, got %q", got)
	}
	if got := GetStringArg(args, "missing"); got != "" {
		t.Errorf("expected empty string for missing value, got %q", got)
	}
}

func TestGetIntAndBoolArg(t *testing.T) {
	args := map[string]interface{}{
		"float": float64(30),
		"int":   15,
		"text":  "45",
		"flag":  false,
	}

	if got := GetIntArg(args, "float", 0); got != 30 {
		t.Errorf("GetIntArg(float) = %d", got)
	}
	if got := GetIntArg(args, "int", 0); got != 15 {
		t.Errorf("GetIntArg(int) = %d", got)
	}
	if got := GetIntArg(args, "text", 7); got != 7 {
		t.Errorf("GetIntArg(text) = %d, want fallback", got)
	}
	if got := GetBoolArg(args, "flag", true); got {
		t.Error("GetBoolArg(flag) should be false")
	}
	if got := GetBoolArg(args, "missing", true); !got {
		t.Error("GetBoolArg(missing) should fall back to true")
	}
}

func TestParseWallClock(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Time
		wantErr  bool
	}{
		{input: "2024-07-01T09:30:00", expected: time.Date(2024, 7, 1, 9, 30, 0, 0, time.UTC)},
		{input: "2024-07-01T09:30", expected: time.Date(2024, 7, 1, 9, 30, 0, 0, time.UTC)},
		{input: "2024-07-01 09:30:15", expected: time.Date(2024, 7, 1, 9, 30, 15, 0, time.UTC)},
		{input: "2024-07-01", expected: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)},
		{input: "2024-07-01T09:30:00+02:00", expected: time.Date(2024, 7, 1, 9, 30, 0, 0, time.UTC)},
		{input: "next tuesday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseWallClock(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.expected) {
				t.Errorf("ParseWallClock(%q) = %s, want %s", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParamsFromArgs(t *testing.T) {
	cfg := config.Runtime{TimeZone: "Europe/London", Mailbox: "default@example.com", MergeIntervalMinutes: 60}
	now := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)

	t.Run("defaults", func(t *testing.T) {
		params, err := ParamsFromArgs(map[string]interface{}{}, cfg, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if params.Mailbox != "default@example.com" || params.TimeZone != "Europe/London" || params.MergeIntervalMinutes != 60 {
			t.Errorf("unexpected params %+v", params)
		}
		if !params.Start.Equal(time.Date(2024, 7, 1, 0, 0, 1, 0, time.UTC)) {
			t.Errorf("unexpected start %s", params.Start)
		}
	})

	t.Run("explicit window", func(t *testing.T) {
		params, err := ParamsFromArgs(map[string]interface{}{
			ArgMailbox:       "jane@example.com",
			ArgTimeZone:      "Asia/Tokyo",
			ArgStart:         "2024-07-02T09:00:00",
			ArgEnd:           "2024-07-02T17:00:00",
			ArgMergeInterval: float64(30),
		}, cfg, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if params.Mailbox != "jane@example.com" || params.TimeZone != "Asia/Tokyo" || params.MergeIntervalMinutes != 30 {
			t.Errorf("unexpected params %+v", params)
		}
		if !params.End.Equal(time.Date(2024, 7, 2, 17, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected end %s", params.End)
		}
	})

	t.Run("start only covers the day", func(t *testing.T) {
		params, err := ParamsFromArgs(map[string]interface{}{ArgStart: "2024-07-03"}, cfg, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !params.End.Equal(time.Date(2024, 7, 3, 23, 59, 59, 0, time.UTC)) {
			t.Errorf("unexpected end %s", params.End)
		}
	})

	t.Run("date-only end covers the day", func(t *testing.T) {
		params, err := ParamsFromArgs(map[string]interface{}{ArgStart: "2024-07-03T08:00", ArgEnd: "2024-07-04"}, cfg, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !params.End.Equal(time.Date(2024, 7, 4, 23, 59, 59, 0, time.UTC)) {
			t.Errorf("unexpected end %s", params.End)
		}
	})

	t.Run("inverted window", func(t *testing.T) {
		_, err := ParamsFromArgs(map[string]interface{}{ArgStart: "2024-07-03T10:00", ArgEnd: "2024-07-03T09:00"}, cfg, now)
		if !errors.Is(err, availability.ErrInvalidParams) {
			t.Errorf("expected invalid params error, got %v", err)
		}
	})

	t.Run("bad start", func(t *testing.T) {
		if _, err := ParamsFromArgs(map[string]interface{}{ArgStart: "soon"}, cfg, now); err == nil {
			t.Error("expected error")
		}
	})
}

func TestLocalWallClock(t *testing.T) {
	now := time.Date(2024, 7, 1, 23, 30, 0, 0, time.UTC)

	if got := LocalWallClock(now, "Asia/Tokyo"); !got.Equal(time.Date(2024, 7, 2, 8, 30, 0, 0, time.UTC)) {
		t.Errorf("LocalWallClock(Tokyo) = %s", got)
	}
	if got := LocalWallClock(now, "Mars/Olympus_Mons"); !got.Equal(now) {
		t.Errorf("unknown zone should keep fields, got %s", got)
	}
}
