package calendar

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/teemow/ewsfreebusy/internal/availability"
)

// ProductID identifies exported calendars.
const ProductID = "-//teemow//ewsfreebusy//EN"

// ExportICS renders items as an iCalendar PUBLISH document. CalendarEvent
// times are wall-clock values in the request timezone and are placed in loc;
// other items keep the instant they were decoded with.
func ExportICS(mailbox string, items []availability.Item, loc *time.Location, now time.Time) (string, error) {
	if loc == nil {
		loc = time.UTC
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(ProductID)

	for _, item := range items {
		s := summarize(item)
		if _, ok := item.(*availability.CalendarEvent); ok {
			s.Start = inLocation(s.Start, loc)
			s.End = inLocation(s.End, loc)
		}
		if !s.Start.Before(s.End) {
			return "", fmt.Errorf("%s item %q ends before it starts", s.Kind, s.ID)
		}

		event := cal.AddEvent(eventUID(mailbox, s))
		event.SetDtStampTime(now)
		event.SetStartAt(s.Start)
		event.SetEndAt(s.End)
		event.SetSummary(eventSummary(s))
		if s.Location != "" {
			event.SetLocation(s.Location)
		}
		event.SetProperty(ics.ComponentPropertyStatus, icsStatus(s.Status))
		event.SetProperty(ics.ComponentProperty("TRANSP"), transparency(s.Status))
		event.SetProperty(ics.ComponentProperty("X-EWS-ITEM-KIND"), s.Kind)
		if s.Private {
			event.SetProperty(ics.ComponentPropertyClass, "PRIVATE")
		}
		if s.Organizer != "" {
			event.SetOrganizer("mailto:" + s.Organizer)
		}
	}

	return cal.Serialize(), nil
}

// inLocation reinterprets the calendar fields of t in loc.
func inLocation(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

// eventUID prefers the service's item ID. Items without one get a stable
// name-based UUID so repeated exports of the same window produce the same UIDs.
func eventUID(mailbox string, s EventSummary) string {
	if s.ID != "" {
		return s.ID
	}
	name := strings.Join([]string{
		strings.ToLower(mailbox),
		s.Kind,
		s.Start.UTC().Format(time.RFC3339),
		s.End.UTC().Format(time.RFC3339),
	}, "|")
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

func eventSummary(s EventSummary) string {
	if s.Subject != "" {
		return s.Subject
	}
	return s.Status.String()
}

func icsStatus(status availability.Status) string {
	if status == availability.Tentative {
		return "TENTATIVE"
	}
	return "CONFIRMED"
}

func transparency(status availability.Status) string {
	if status == availability.Free {
		return "TRANSPARENT"
	}
	return "OPAQUE"
}
