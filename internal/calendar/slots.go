package calendar

import (
	"fmt"
	"sort"
	"time"

	"github.com/teemow/ewsfreebusy/internal/availability"
)

// DefaultSlotStep is the increment between candidate slot starts.
const DefaultSlotStep = 15 * time.Minute

// StatusRanges expands a merged free/busy sequence into time ranges.
// Slot i covers [start+i*interval, start+(i+1)*interval); consecutive slots
// with the same status are coalesced into one range.
func StatusRanges(start time.Time, interval time.Duration, statuses []availability.Status) []StatusRange {
	if interval <= 0 || len(statuses) == 0 {
		return nil
	}

	var ranges []StatusRange
	for i, status := range statuses {
		slotStart := start.Add(time.Duration(i) * interval)
		slotEnd := slotStart.Add(interval)

		if n := len(ranges); n > 0 && ranges[n-1].Status == status {
			ranges[n-1].End = slotEnd
			continue
		}
		ranges = append(ranges, StatusRange{
			TimeRange: TimeRange{Start: slotStart, End: slotEnd},
			Status:    status,
		})
	}
	return ranges
}

// BusyRanges returns the merged ranges in which the mailbox cannot be booked.
// Busy and OOF always block; Tentative blocks only when includeTentative is set.
// NoData is treated as free.
func BusyRanges(ranges []StatusRange, includeTentative bool) []TimeRange {
	var busy []TimeRange
	for _, r := range ranges {
		switch r.Status {
		case availability.Busy, availability.OutOfOffice:
			busy = append(busy, r.TimeRange)
		case availability.Tentative:
			if includeTentative {
				busy = append(busy, r.TimeRange)
			}
		}
	}
	return MergeRanges(busy)
}

// EventRanges returns the merged spans of items whose status blocks time,
// as wall-clock values in loc. CalendarEvent times already are wall-clock
// values; CalendarItem instants are converted.
func EventRanges(items []availability.Item, loc *time.Location, includeTentative bool) []TimeRange {
	if loc == nil {
		loc = time.UTC
	}

	var busy []TimeRange
	for _, item := range items {
		s := summarize(item)
		if _, ok := item.(*availability.CalendarItem); ok {
			s.Start = wallClock(s.Start, loc)
			s.End = wallClock(s.End, loc)
		}
		if s.Status == availability.Free || s.Status == availability.NoData {
			continue
		}
		if s.Status == availability.Tentative && !includeTentative {
			continue
		}
		if !s.Start.Before(s.End) {
			continue
		}
		busy = append(busy, TimeRange{Start: s.Start, End: s.End})
	}
	return MergeRanges(busy)
}

// wallClock returns the calendar fields of t in loc as a UTC-located value.
func wallClock(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// MergeRanges sorts ranges by start and merges overlapping or touching ones.
// Empty and inverted ranges are dropped. The input is not modified.
func MergeRanges(ranges []TimeRange) []TimeRange {
	sorted := make([]TimeRange, 0, len(ranges))
	for _, r := range ranges {
		if r.Start.Before(r.End) {
			sorted = append(sorted, r)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	var merged []TimeRange
	for _, r := range sorted {
		if n := len(merged); n > 0 && !r.Start.After(merged[n-1].End) {
			if r.End.After(merged[n-1].End) {
				merged[n-1].End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// FindAvailableSlots finds slots of the given duration within [timeMin, timeMax)
// that do not overlap any busy range. Candidate starts advance by step, and
// jump to the end of a busy range when they collide with it.
func FindAvailableSlots(busy []TimeRange, duration, step time.Duration, timeMin, timeMax time.Time) ([]AvailableSlot, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("slot duration must be positive, got %s", duration)
	}
	if !timeMin.Before(timeMax) {
		return nil, fmt.Errorf("time range start %s must be before end %s", timeMin, timeMax)
	}
	if step <= 0 {
		step = DefaultSlotStep
	}

	merged := MergeRanges(busy)

	var availableSlots []AvailableSlot
	currentTime := timeMin
	for !currentTime.Add(duration).After(timeMax) {
		slot := TimeRange{Start: currentTime, End: currentTime.Add(duration)}

		isFree := true
		for _, b := range merged {
			if slot.Overlaps(b) {
				isFree = false
				// Skip to the end of this busy period
				currentTime = b.End
				break
			}
		}

		if isFree {
			availableSlots = append(availableSlots, AvailableSlot{
				Start:    slot.Start,
				End:      slot.End,
				Duration: duration,
			})
			currentTime = currentTime.Add(step)
		}
	}

	return availableSlots, nil
}

// FromResult builds the availability view of one mailbox from a decoded
// response. start and interval must match the request that produced it.
func FromResult(mailbox string, start time.Time, interval time.Duration, statuses []availability.Status, items []availability.Item) FreeBusyInfo {
	ranges := StatusRanges(start, interval, statuses)

	events := make([]EventSummary, 0, len(items))
	for _, item := range items {
		events = append(events, summarize(item))
	}

	return FreeBusyInfo{
		Mailbox: mailbox,
		Ranges:  ranges,
		Busy:    BusyRanges(ranges, true),
		Events:  events,
	}
}
