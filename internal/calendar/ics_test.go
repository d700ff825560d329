package calendar

import (
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/teemow/ewsfreebusy/internal/availability"
)

func propertyValue(event *ics.VEvent, prop ics.ComponentProperty) string {
	p := event.GetProperty(prop)
	if p == nil {
		return ""
	}
	return p.Value
}

func TestExportICS(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}

	items := []availability.Item{
		&availability.CalendarEvent{
			StartTime: time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2024, 7, 1, 10, 30, 0, 0, time.UTC),
			BusyType:  "Busy",
			Details: &availability.CalendarEventDetails{
				ID:        "AAMkAD",
				Subject:   "Planning",
				Location:  "Room 4",
				IsPrivate: true,
			},
		},
		&availability.CalendarItem{
			ItemID:               "item-1",
			Subject:              "Lunch",
			Start:                time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC),
			End:                  time.Date(2024, 7, 1, 13, 0, 0, 0, time.UTC),
			LegacyFreeBusyStatus: "Tentative",
			OrganizerEmail:       "bob@example.com",
		},
	}

	now := time.Date(2024, 6, 30, 8, 0, 0, 0, time.UTC)
	out, err := ExportICS("jane@example.com", items, london, now)
	if err != nil {
		t.Fatalf("ExportICS failed: %v", err)
	}
	if !strings.Contains(out, "METHOD:PUBLISH") {
		t.Errorf("expected PUBLISH method in %s", out)
	}

	cal, err := ics.ParseCalendar(strings.NewReader(out))
	if err != nil {
		t.Fatalf("failed to parse exported calendar: %v", err)
	}
	events := cal.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	planning := events[0]
	if planning.Id() != "AAMkAD" {
		t.Errorf("expected UID AAMkAD, got %q", planning.Id())
	}
	start, err := planning.GetStartAt()
	if err != nil {
		t.Fatalf("failed to read start: %v", err)
	}
	// 09:00 wall clock in London during BST is 08:00 UTC
	if want := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC); !start.Equal(want) {
		t.Errorf("expected start %s, got %s", want, start)
	}
	if got := propertyValue(planning, ics.ComponentPropertySummary); got != "Planning" {
		t.Errorf("unexpected summary %q", got)
	}
	if got := propertyValue(planning, ics.ComponentPropertyLocation); got != "Room 4" {
		t.Errorf("unexpected location %q", got)
	}
	if got := propertyValue(planning, ics.ComponentPropertyClass); got != "PRIVATE" {
		t.Errorf("unexpected class %q", got)
	}
	if got := propertyValue(planning, ics.ComponentPropertyStatus); got != "CONFIRMED" {
		t.Errorf("unexpected status %q", got)
	}

	lunch := events[1]
	if lunch.Id() != "item-1" {
		t.Errorf("expected UID item-1, got %q", lunch.Id())
	}
	lunchStart, err := lunch.GetStartAt()
	if err != nil {
		t.Fatalf("failed to read start: %v", err)
	}
	if want := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC); !lunchStart.Equal(want) {
		t.Errorf("calendar items should keep their instant, got %s", lunchStart)
	}
	if got := propertyValue(lunch, ics.ComponentPropertyStatus); got != "TENTATIVE" {
		t.Errorf("unexpected status %q", got)
	}
	if got := propertyValue(lunch, ics.ComponentPropertyOrganizer); got != "mailto:bob@example.com" {
		t.Errorf("unexpected organizer %q", got)
	}
}

func TestExportICS_StableUIDWithoutID(t *testing.T) {
	items := []availability.Item{
		&availability.CalendarEvent{
			StartTime: time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC),
			BusyType:  "OOF",
		},
	}
	now := time.Date(2024, 6, 30, 8, 0, 0, 0, time.UTC)

	first, err := ExportICS("jane@example.com", items, nil, now)
	if err != nil {
		t.Fatalf("ExportICS failed: %v", err)
	}
	second, err := ExportICS("JANE@example.com", items, nil, now)
	if err != nil {
		t.Fatalf("ExportICS failed: %v", err)
	}

	uid := func(doc string) string {
		cal, err := ics.ParseCalendar(strings.NewReader(doc))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}
		events := cal.Events()
		if len(events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(events))
		}
		if got := propertyValue(events[0], ics.ComponentPropertySummary); got != "OOF" {
			t.Errorf("expected status as summary, got %q", got)
		}
		return events[0].Id()
	}

	a, b := uid(first), uid(second)
	if a == "" || a != b {
		t.Errorf("expected stable UID, got %q and %q", a, b)
	}
}

func TestExportICS_InvalidSpan(t *testing.T) {
	items := []availability.Item{
		&availability.CalendarEvent{
			StartTime: time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC),
			BusyType:  "Busy",
		},
	}
	if _, err := ExportICS("jane@example.com", items, time.UTC, time.Now()); err == nil {
		t.Error("expected error for inverted span")
	}
}

func TestExportICS_Empty(t *testing.T) {
	out, err := ExportICS("jane@example.com", nil, time.UTC, time.Now())
	if err != nil {
		t.Fatalf("ExportICS failed: %v", err)
	}
	if !strings.Contains(out, "BEGIN:VCALENDAR") || strings.Contains(out, "BEGIN:VEVENT") {
		t.Errorf("unexpected document %s", out)
	}
}
