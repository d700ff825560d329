package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/teemow/ewsfreebusy/internal/availability"
)

const displayLayout = "2006-01-02 15:04"

// FormatFreeBusy renders info as plain text, one line per status range
// followed by the reported events.
func FormatFreeBusy(info FreeBusyInfo) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Availability for %s:\n", info.Mailbox)
	if len(info.Ranges) == 0 {
		b.WriteString("  No status information returned\n")
	}
	for _, r := range info.Ranges {
		fmt.Fprintf(&b, "  %s to %s  %s\n", r.Start.Format(displayLayout), r.End.Format(displayLayout), r.Status)
	}

	if len(info.Busy) == 0 {
		b.WriteString("\nStatus: FREE for entire range\n")
	} else {
		fmt.Fprintf(&b, "\nBusy periods: %d\n", len(info.Busy))
		for i, busy := range info.Busy {
			fmt.Fprintf(&b, "  %d. %s to %s\n", i+1, busy.Start.Format(displayLayout), busy.End.Format(displayLayout))
		}
	}

	if len(info.Events) > 0 {
		fmt.Fprintf(&b, "\nEvents: %d\n", len(info.Events))
		for i, ev := range info.Events {
			title := ev.Subject
			if title == "" {
				title = "(no details)"
			}
			fmt.Fprintf(&b, "  %d. %s to %s  %s  [%s]", i+1, ev.Start.Format(displayLayout), ev.End.Format(displayLayout), title, ev.Status)
			if ev.Location != "" {
				fmt.Fprintf(&b, "  @ %s", ev.Location)
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

// FormatSlots renders available slots as a numbered list.
func FormatSlots(slots []AvailableSlot) string {
	if len(slots) == 0 {
		return "No available time slots found for the specified criteria\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d available time slot(s):\n\n", len(slots))
	for i, slot := range slots {
		fmt.Fprintf(&b, "%d. %s to %s (%s)\n", i+1, slot.Start.Format(displayLayout), slot.End.Format(displayLayout), slot.Duration)
	}
	return b.String()
}

// FormatTimezone describes the rule resolved for zone at ref. When daylight
// saving is active the transition descriptors sent with requests are listed
// with their recurrence and their occurrence in ref's year.
func FormatTimezone(zone string, rule availability.TimezoneRule, ref time.Time) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "Timezone: %s\n", zone)
	fmt.Fprintf(&b, "  UTC offset: %+d minutes (Bias %d)\n", rule.UTCOffsetMinutes, -rule.UTCOffsetMinutes)
	fmt.Fprintf(&b, "  Daylight saving active: %t\n", rule.DaylightSavingActive)
	if !rule.DaylightSavingActive {
		return b.String(), nil
	}
	fmt.Fprintf(&b, "  Daylight saving offset: %d minutes\n", rule.StandardOffsetMinutes)

	loc, err := time.LoadLocation(zone)
	if err != nil {
		return "", fmt.Errorf("failed to load timezone %q: %w", zone, err)
	}
	year := ref.In(loc).Year()

	transitions := []struct {
		name string
		rule availability.TransitionRule
	}{
		{"Standard", availability.StandardTransition},
		{"Daylight", availability.DaylightTransition},
	}
	for _, tr := range transitions {
		rrule, err := tr.rule.RRule()
		if err != nil {
			return "", err
		}
		occurrence, err := tr.rule.Occurrence(year, loc)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "  %s transition: %s at %s (%s), %d: %s\n",
			tr.name, tr.rule.DayOfWeek, tr.rule.Time, rrule, year, occurrence.Format(displayLayout))
	}
	return b.String(), nil
}
