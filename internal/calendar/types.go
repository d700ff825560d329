package calendar

import (
	"time"

	"github.com/teemow/ewsfreebusy/internal/availability"
)

// TimeRange represents a time range
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Duration returns the length of the range
func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Overlaps reports whether r and other share any instant. Ranges are
// half-open, so touching ranges do not overlap.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// StatusRange is a run of consecutive merged intervals with the same status
type StatusRange struct {
	TimeRange
	Status availability.Status
}

// AvailableSlot represents an available time slot for scheduling
type AvailableSlot struct {
	Start    time.Time
	End      time.Time
	Duration time.Duration
}

// FreeBusyInfo represents availability information for a mailbox
type FreeBusyInfo struct {
	Mailbox string
	Ranges  []StatusRange
	Busy    []TimeRange
	Events  []EventSummary
}

// EventSummary represents a simplified calendar item for listing
type EventSummary struct {
	ID        string
	Kind      string
	Subject   string
	Location  string
	Start     time.Time
	End       time.Time
	Status    availability.Status
	Organizer string
	Private   bool
}

// summarize converts a decoded item to an EventSummary. Items of kinds this
// package does not know about keep only their tag and span.
func summarize(item availability.Item) EventSummary {
	start, end := item.Span()
	summary := EventSummary{
		Kind:   item.Tag(),
		Start:  start,
		End:    end,
		Status: availability.Busy,
	}

	switch it := item.(type) {
	case *availability.CalendarEvent:
		summary.Status = it.BusyStatus()
		if it.Details != nil {
			summary.ID = it.Details.ID
			summary.Subject = it.Details.Subject
			summary.Location = it.Details.Location
			summary.Private = it.Details.IsPrivate
		}
	case *availability.CalendarItem:
		summary.ID = it.ItemID
		summary.Subject = it.Subject
		summary.Location = it.Location
		summary.Status = legacyStatus(it.LegacyFreeBusyStatus)
		summary.Organizer = it.OrganizerEmail
	}

	return summary
}

func legacyStatus(value string) availability.Status {
	switch value {
	case "Free":
		return availability.Free
	case "Tentative":
		return availability.Tentative
	case "OOF":
		return availability.OutOfOffice
	case "NoData":
		return availability.NoData
	default:
		return availability.Busy
	}
}
