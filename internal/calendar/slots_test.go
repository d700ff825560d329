package calendar

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/teemow/ewsfreebusy/internal/availability"
)

var day = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func TestStatusRanges(t *testing.T) {
	statuses := []availability.Status{
		availability.Free,
		availability.Free,
		availability.Busy,
		availability.Busy,
		availability.Tentative,
		availability.Free,
	}

	ranges := StatusRanges(at(9, 0), 30*time.Minute, statuses)

	expected := []StatusRange{
		{TimeRange{at(9, 0), at(10, 0)}, availability.Free},
		{TimeRange{at(10, 0), at(11, 0)}, availability.Busy},
		{TimeRange{at(11, 0), at(11, 30)}, availability.Tentative},
		{TimeRange{at(11, 30), at(12, 0)}, availability.Free},
	}
	if len(ranges) != len(expected) {
		t.Fatalf("expected %d ranges, got %d: %+v", len(expected), len(ranges), ranges)
	}
	for i := range expected {
		if !ranges[i].Start.Equal(expected[i].Start) || !ranges[i].End.Equal(expected[i].End) || ranges[i].Status != expected[i].Status {
			t.Errorf("range %d: expected %+v, got %+v", i, expected[i], ranges[i])
		}
	}
}

func TestStatusRanges_Empty(t *testing.T) {
	if got := StatusRanges(at(9, 0), time.Hour, nil); got != nil {
		t.Errorf("expected nil for empty statuses, got %+v", got)
	}
	if got := StatusRanges(at(9, 0), 0, []availability.Status{availability.Busy}); got != nil {
		t.Errorf("expected nil for zero interval, got %+v", got)
	}
}

func TestBusyRanges(t *testing.T) {
	ranges := []StatusRange{
		{TimeRange{at(9, 0), at(10, 0)}, availability.Busy},
		{TimeRange{at(10, 0), at(11, 0)}, availability.Tentative},
		{TimeRange{at(11, 0), at(12, 0)}, availability.OutOfOffice},
		{TimeRange{at(12, 0), at(13, 0)}, availability.NoData},
		{TimeRange{at(13, 0), at(14, 0)}, availability.Free},
	}

	withTentative := BusyRanges(ranges, true)
	if len(withTentative) != 1 || !withTentative[0].Start.Equal(at(9, 0)) || !withTentative[0].End.Equal(at(12, 0)) {
		t.Errorf("expected one merged range 09:00-12:00, got %+v", withTentative)
	}

	withoutTentative := BusyRanges(ranges, false)
	if len(withoutTentative) != 2 {
		t.Fatalf("expected 2 ranges, got %+v", withoutTentative)
	}
	if !withoutTentative[0].End.Equal(at(10, 0)) || !withoutTentative[1].Start.Equal(at(11, 0)) {
		t.Errorf("unexpected ranges %+v", withoutTentative)
	}
}

func TestMergeRanges(t *testing.T) {
	input := []TimeRange{
		{at(13, 0), at(14, 0)},
		{at(9, 0), at(10, 0)},
		{at(9, 30), at(11, 0)},
		{at(11, 0), at(11, 30)},
		{at(15, 0), at(15, 0)},
		{at(10, 0), at(10, 30)},
	}

	merged := MergeRanges(input)
	if len(merged) != 2 {
		t.Fatalf("expected 2 ranges, got %+v", merged)
	}
	if !merged[0].Start.Equal(at(9, 0)) || !merged[0].End.Equal(at(11, 30)) {
		t.Errorf("unexpected first range %+v", merged[0])
	}
	if !merged[1].Start.Equal(at(13, 0)) || !merged[1].End.Equal(at(14, 0)) {
		t.Errorf("unexpected second range %+v", merged[1])
	}
	if !input[0].Start.Equal(at(13, 0)) {
		t.Error("input should not be reordered")
	}
}

func TestFindAvailableSlots(t *testing.T) {
	busy := []TimeRange{
		{at(10, 0), at(11, 0)},
		{at(11, 30), at(12, 0)},
	}

	tests := []struct {
		name     string
		duration time.Duration
		step     time.Duration
		expected []time.Time
	}{
		{
			name:     "hour slots on the hour",
			duration: time.Hour,
			step:     time.Hour,
			expected: []time.Time{at(9, 0), at(12, 0)},
		},
		{
			name:     "half hour slots with default step",
			duration: 30 * time.Minute,
			step:     0,
			expected: []time.Time{at(9, 0), at(9, 15), at(9, 30), at(11, 0), at(12, 0), at(12, 15), at(12, 30)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots, err := FindAvailableSlots(busy, tt.duration, tt.step, at(9, 0), at(13, 0))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(slots) != len(tt.expected) {
				t.Fatalf("expected %d slots, got %d: %+v", len(tt.expected), len(slots), slots)
			}
			for i, start := range tt.expected {
				if !slots[i].Start.Equal(start) {
					t.Errorf("slot %d: expected start %s, got %s", i, start, slots[i].Start)
				}
				if slots[i].Duration != tt.duration || !slots[i].End.Equal(start.Add(tt.duration)) {
					t.Errorf("slot %d: unexpected end %s", i, slots[i].End)
				}
			}
		})
	}
}

func TestFindAvailableSlots_Errors(t *testing.T) {
	if _, err := FindAvailableSlots(nil, 0, 0, at(9, 0), at(10, 0)); err == nil {
		t.Error("expected error for zero duration")
	}
	if _, err := FindAvailableSlots(nil, time.Hour, 0, at(10, 0), at(9, 0)); err == nil {
		t.Error("expected error for inverted range")
	}
}

func TestFindAvailableSlots_FullyBusy(t *testing.T) {
	slots, err := FindAvailableSlots([]TimeRange{{at(8, 0), at(18, 0)}}, time.Hour, 0, at(9, 0), at(17, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("expected no slots, got %+v", slots)
	}
}

func TestEventRanges(t *testing.T) {
	items := []availability.Item{
		&availability.CalendarEvent{StartTime: at(9, 0), EndTime: at(10, 0), BusyType: "Busy"},
		&availability.CalendarEvent{StartTime: at(9, 30), EndTime: at(10, 30), BusyType: "OOF"},
		&availability.CalendarEvent{StartTime: at(11, 0), EndTime: at(12, 0), BusyType: "Free"},
		&availability.CalendarEvent{StartTime: at(13, 0), EndTime: at(14, 0), BusyType: "Tentative"},
		&availability.CalendarItem{Start: at(15, 0), End: at(16, 0), LegacyFreeBusyStatus: "Busy"},
	}

	ranges := EventRanges(items, time.UTC, false)
	if len(ranges) != 2 {
		t.Fatalf("expected 2 ranges, got %+v", ranges)
	}
	if !ranges[0].End.Equal(at(10, 30)) || !ranges[1].Start.Equal(at(15, 0)) {
		t.Errorf("unexpected ranges %+v", ranges)
	}

	if got := EventRanges(items, time.UTC, true); len(got) != 3 {
		t.Errorf("expected tentative range to be included, got %+v", got)
	}
}

func TestEventRanges_ItemInstantsInZone(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Fatalf("failed to load zone: %v", err)
	}

	items := []availability.Item{
		&availability.CalendarEvent{StartTime: at(9, 0), EndTime: at(10, 0), BusyType: "Busy"},
		&availability.CalendarItem{
			Start:                time.Date(2024, time.July, 1, 10, 0, 0, 0, time.UTC),
			End:                  time.Date(2024, time.July, 1, 11, 0, 0, 0, time.UTC),
			LegacyFreeBusyStatus: "Busy",
		},
	}

	ranges := EventRanges(items, london, false)
	if len(ranges) != 2 {
		t.Fatalf("expected 2 ranges, got %+v", ranges)
	}
	if !ranges[0].Start.Equal(at(9, 0)) || !ranges[0].End.Equal(at(10, 0)) {
		t.Errorf("event range moved: %+v", ranges[0])
	}
	if !ranges[1].Start.Equal(at(11, 0)) || !ranges[1].End.Equal(at(12, 0)) {
		t.Errorf("expected item at 11:00-12:00 London wall-clock, got %+v", ranges[1])
	}
}

func TestFromResult(t *testing.T) {
	statuses := []availability.Status{availability.Free, availability.Busy, availability.Tentative}
	items := []availability.Item{
		&availability.CalendarEvent{
			StartTime: at(1, 0),
			EndTime:   at(2, 0),
			BusyType:  "Busy",
			Details:   &availability.CalendarEventDetails{ID: "AAMkAD", Subject: "Planning", IsPrivate: true},
		},
		&availability.CalendarItem{
			ItemID:               "item-1",
			Subject:              "Lunch",
			Start:                at(2, 0),
			End:                  at(3, 0),
			LegacyFreeBusyStatus: "Tentative",
			OrganizerEmail:       "bob@example.com",
		},
	}

	info := FromResult("jane@example.com", day, time.Hour, statuses, items)

	if info.Mailbox != "jane@example.com" {
		t.Errorf("unexpected mailbox %q", info.Mailbox)
	}
	if len(info.Ranges) != 3 {
		t.Errorf("expected 3 ranges, got %d", len(info.Ranges))
	}
	if len(info.Busy) != 1 || !info.Busy[0].Start.Equal(at(1, 0)) || !info.Busy[0].End.Equal(at(3, 0)) {
		t.Errorf("unexpected busy ranges %+v", info.Busy)
	}
	if len(info.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(info.Events))
	}
	if ev := info.Events[0]; ev.ID != "AAMkAD" || ev.Subject != "Planning" || !ev.Private || ev.Status != availability.Busy {
		t.Errorf("unexpected event summary %+v", ev)
	}
	if ev := info.Events[1]; ev.Kind != availability.TagCalendarItem || ev.Organizer != "bob@example.com" || ev.Status != availability.Tentative {
		t.Errorf("unexpected item summary %+v", ev)
	}
}

func TestTimeRange(t *testing.T) {
	a := TimeRange{at(9, 0), at(10, 0)}
	b := TimeRange{at(10, 0), at(11, 0)}
	c := TimeRange{at(9, 30), at(9, 45)}

	if a.Overlaps(b) {
		t.Error("touching ranges should not overlap")
	}
	if !a.Overlaps(c) || !c.Overlaps(a) {
		t.Error("nested ranges should overlap")
	}
	if a.Duration() != time.Hour {
		t.Errorf("expected 1h, got %s", a.Duration())
	}
}
