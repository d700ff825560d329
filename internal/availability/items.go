package availability

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"
)

// Built-in calendar item element names.
const (
	TagCalendarEvent = "CalendarEvent"
	TagCalendarItem  = "CalendarItem"
)

// Item is a typed calendar record decoded from the response.
type Item interface {
	// Tag returns the element name the record was decoded from
	Tag() string

	// Span returns the start and end of the item
	Span() (start, end time.Time)
}

var builtinItems = map[string]ItemConstructor{
	TagCalendarEvent: newCalendarEvent,
	TagCalendarItem:  newCalendarItem,
}

// CalendarEvent is a busy period reported in a detailed free/busy view.
// StartTime and EndTime are wall-clock values in the request's timezone.
type CalendarEvent struct {
	StartTime time.Time
	EndTime   time.Time
	BusyType  string
	Details   *CalendarEventDetails
}

// CalendarEventDetails is only present when the caller may see event details.
type CalendarEventDetails struct {
	ID            string
	Subject       string
	Location      string
	IsMeeting     bool
	IsRecurring   bool
	IsException   bool
	IsReminderSet bool
	IsPrivate     bool
}

// Tag implements Item
func (e *CalendarEvent) Tag() string { return TagCalendarEvent }

// Span implements Item
func (e *CalendarEvent) Span() (time.Time, time.Time) { return e.StartTime, e.EndTime }

// BusyStatus maps BusyType to a Status; unknown values map to NoData.
func (e *CalendarEvent) BusyStatus() Status {
	switch e.BusyType {
	case "Free":
		return Free
	case "Tentative":
		return Tentative
	case "Busy":
		return Busy
	case "OOF":
		return OutOfOffice
	default:
		return NoData
	}
}

type calendarEventXML struct {
	StartTime string `xml:"StartTime"`
	EndTime   string `xml:"EndTime"`
	BusyType  string `xml:"BusyType"`
	Details   *struct {
		ID            string `xml:"ID"`
		Subject       string `xml:"Subject"`
		Location      string `xml:"Location"`
		IsMeeting     bool   `xml:"IsMeeting"`
		IsRecurring   bool   `xml:"IsRecurring"`
		IsException   bool   `xml:"IsException"`
		IsReminderSet bool   `xml:"IsReminderSet"`
		IsPrivate     bool   `xml:"IsPrivate"`
	} `xml:"CalendarEventDetails"`
}

func newCalendarEvent(node RawNode) (Item, error) {
	var raw calendarEventXML
	if err := node.Decode(&raw); err != nil {
		return nil, err
	}

	start, err := parseServiceTime(raw.StartTime)
	if err != nil {
		return nil, fmt.Errorf("invalid StartTime: %w", err)
	}
	end, err := parseServiceTime(raw.EndTime)
	if err != nil {
		return nil, fmt.Errorf("invalid EndTime: %w", err)
	}

	event := &CalendarEvent{
		StartTime: start,
		EndTime:   end,
		BusyType:  strings.TrimSpace(raw.BusyType),
	}
	if raw.Details != nil {
		event.Details = &CalendarEventDetails{
			ID:            raw.Details.ID,
			Subject:       raw.Details.Subject,
			Location:      raw.Details.Location,
			IsMeeting:     raw.Details.IsMeeting,
			IsRecurring:   raw.Details.IsRecurring,
			IsException:   raw.Details.IsException,
			IsReminderSet: raw.Details.IsReminderSet,
			IsPrivate:     raw.Details.IsPrivate,
		}
	}
	return event, nil
}

// CalendarItem is a full calendar item record.
type CalendarItem struct {
	ItemID               string
	ChangeKey            string
	Subject              string
	Start                time.Time
	End                  time.Time
	Location             string
	LegacyFreeBusyStatus string
	OrganizerName        string
	OrganizerEmail       string
}

// Tag implements Item
func (c *CalendarItem) Tag() string { return TagCalendarItem }

// Span implements Item
func (c *CalendarItem) Span() (time.Time, time.Time) { return c.Start, c.End }

type calendarItemXML struct {
	ItemID struct {
		ID        string `xml:"Id,attr"`
		ChangeKey string `xml:"ChangeKey,attr"`
	} `xml:"ItemId"`
	Subject              string `xml:"Subject"`
	Start                string `xml:"Start"`
	End                  string `xml:"End"`
	Location             string `xml:"Location"`
	LegacyFreeBusyStatus string `xml:"LegacyFreeBusyStatus"`
	Organizer            struct {
		Name         string `xml:"Mailbox>Name"`
		EmailAddress string `xml:"Mailbox>EmailAddress"`
	} `xml:"Organizer"`
}

func newCalendarItem(node RawNode) (Item, error) {
	var raw calendarItemXML
	if err := node.Decode(&raw); err != nil {
		return nil, err
	}

	start, err := parseServiceTime(raw.Start)
	if err != nil {
		return nil, fmt.Errorf("invalid Start: %w", err)
	}
	end, err := parseServiceTime(raw.End)
	if err != nil {
		return nil, fmt.Errorf("invalid End: %w", err)
	}

	return &CalendarItem{
		ItemID:               raw.ItemID.ID,
		ChangeKey:            raw.ItemID.ChangeKey,
		Subject:              raw.Subject,
		Start:                start,
		End:                  end,
		Location:             raw.Location,
		LegacyFreeBusyStatus: strings.TrimSpace(raw.LegacyFreeBusyStatus),
		OrganizerName:        raw.Organizer.Name,
		OrganizerEmail:       raw.Organizer.EmailAddress,
	}, nil
}

// Decode unmarshals the node's children into v. Prefixes used by the service
// are bound on a synthetic root so nested elements resolve their namespaces.
func (n RawNode) Decode(v any) error {
	var buf bytes.Buffer
	buf.WriteString(`<node xmlns="`)
	buf.WriteString(NamespaceTypes)
	buf.WriteString(`" xmlns:t="`)
	buf.WriteString(NamespaceTypes)
	buf.WriteString(`" xmlns:m="`)
	buf.WriteString(NamespaceMessages)
	buf.WriteString(`">`)
	buf.Write(n.InnerXML)
	buf.WriteString(`</node>`)

	if err := xml.Unmarshal(buf.Bytes(), v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", n.Tag(), err)
	}
	return nil
}

// serviceTimeLayouts are the timestamp forms the service emits: wall-clock
// without offset in free/busy views, RFC 3339 on items.
var serviceTimeLayouts = []string{
	windowLayout,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
}

func parseServiceTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	var lastErr error
	for _, layout := range serviceTimeLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
