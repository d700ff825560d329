// Package calendar turns decoded availability into schedulable time ranges.
//
// A merged free/busy sequence becomes a list of StatusRange values, busy
// ranges are merged, and FindAvailableSlots searches the gaps for meeting
// slots of a given length. ExportICS renders decoded calendar items as an
// iCalendar document.
//
// Example usage:
//
//	ranges := calendar.StatusRanges(params.Start, time.Hour, result.Statuses)
//	busy := calendar.BusyRanges(ranges, true)
//	slots, err := calendar.FindAvailableSlots(busy, 30*time.Minute, 0, params.Start, params.End)
//	if err != nil {
//	    log.Fatal(err)
//	}
package calendar
