package availability

import (
	"encoding/xml"
	"fmt"
	"time"
)

// XML namespaces used by the availability service.
const (
	NamespaceXSI      = "http://www.w3.org/2001/XMLSchema-instance"
	NamespaceXSD      = "http://www.w3.org/2001/XMLSchema"
	NamespaceSOAP     = "http://schemas.xmlsoap.org/soap/envelope/"
	NamespaceTypes    = "http://schemas.microsoft.com/exchange/services/2006/types"
	NamespaceMessages = "http://schemas.microsoft.com/exchange/services/2006/messages"
)

// Fixed request values.
const (
	AttendeeTypeRequired = "Required"
	RequestedViewMerged  = "DetailedMerged"

	// windowLayout is local wall-clock time with second precision and no offset
	windowLayout = "2006-01-02T15:04:05"
)

// Fixed daylight saving transition placeholders. They describe the Western
// European convention regardless of the resolved zone.
var (
	StandardTransition = TransitionRule{
		Time:      "04:00:00",
		DayOrder:  5,
		Month:     10,
		DayOfWeek: "Sunday",
	}
	DaylightTransition = TransitionRule{
		Time:      "03:00:00",
		DayOrder:  5,
		Month:     3,
		DayOfWeek: "Sunday",
	}
)

// RequestDocument is the SOAP envelope of a GetUserAvailability request.
type RequestDocument struct {
	XMLName   xml.Name    `xml:"soap:Envelope"`
	XMLNSXSI  string      `xml:"xmlns:xsi,attr"`
	XMLNSXSD  string      `xml:"xmlns:xsd,attr"`
	XMLNSSOAP string      `xml:"xmlns:soap,attr"`
	XMLNST    string      `xml:"xmlns:t,attr"`
	XMLNSM    string      `xml:"xmlns:m,attr"`
	Body      RequestBody `xml:"soap:Body"`
}

// RequestBody wraps the availability request message.
type RequestBody struct {
	Request GetUserAvailabilityRequest `xml:"m:GetUserAvailabilityRequest"`
}

// GetUserAvailabilityRequest is the request message.
type GetUserAvailabilityRequest struct {
	TimeZone            TimeZone            `xml:"t:TimeZone"`
	MailboxDataArray    MailboxDataArray    `xml:"m:MailboxDataArray"`
	FreeBusyViewOptions FreeBusyViewOptions `xml:"t:FreeBusyViewOptions"`
}

// TimeZone describes the caller's timezone. Bias is the number of minutes to
// subtract from local time to obtain UTC.
type TimeZone struct {
	Bias         int                   `xml:"t:Bias"`
	StandardTime *TransitionDescriptor `xml:"t:StandardTime,omitempty"`
	DaylightTime *TransitionDescriptor `xml:"t:DaylightTime,omitempty"`
}

// TransitionDescriptor is a recurring switch between standard and daylight time.
type TransitionDescriptor struct {
	Bias      int    `xml:"t:Bias"`
	Time      string `xml:"t:Time"`
	DayOrder  int    `xml:"t:DayOrder"`
	Month     int    `xml:"t:Month"`
	DayOfWeek string `xml:"t:DayOfWeek"`
}

// Rule returns the recurrence part of the descriptor.
func (d TransitionDescriptor) Rule() TransitionRule {
	return TransitionRule{
		Time:      d.Time,
		DayOrder:  d.DayOrder,
		Month:     d.Month,
		DayOfWeek: d.DayOfWeek,
	}
}

// MailboxDataArray lists the mailboxes to query.
type MailboxDataArray struct {
	MailboxData []MailboxData `xml:"t:MailboxData"`
}

// MailboxData identifies one mailbox.
type MailboxData struct {
	Email            Email  `xml:"t:Email"`
	AttendeeType     string `xml:"t:AttendeeType"`
	ExcludeConflicts bool   `xml:"t:ExcludeConflicts"`
}

// Email holds a mailbox address.
type Email struct {
	Address string `xml:"t:Address"`
}

// FreeBusyViewOptions selects the window and granularity of the view.
type FreeBusyViewOptions struct {
	TimeWindow                      TimeWindow `xml:"t:TimeWindow"`
	MergedFreeBusyIntervalInMinutes int        `xml:"t:MergedFreeBusyIntervalInMinutes"`
	RequestedView                   string     `xml:"t:RequestedView"`
}

// TimeWindow is the requested range in local wall-clock time.
type TimeWindow struct {
	StartTime string `xml:"t:StartTime"`
	EndTime   string `xml:"t:EndTime"`
}

// BuildRequest builds the request document for params using rule.
// It performs no I/O and returns structurally identical documents for
// identical inputs.
func BuildRequest(params Params, rule TimezoneRule) (*RequestDocument, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	tz := TimeZone{Bias: -rule.UTCOffsetMinutes}
	if rule.DaylightSavingActive {
		tz.StandardTime = StandardTransition.descriptor(0)
		tz.DaylightTime = DaylightTransition.descriptor(-rule.StandardOffsetMinutes)
	}

	return &RequestDocument{
		XMLNSXSI:  NamespaceXSI,
		XMLNSXSD:  NamespaceXSD,
		XMLNSSOAP: NamespaceSOAP,
		XMLNST:    NamespaceTypes,
		XMLNSM:    NamespaceMessages,
		Body: RequestBody{
			Request: GetUserAvailabilityRequest{
				TimeZone: tz,
				MailboxDataArray: MailboxDataArray{
					MailboxData: []MailboxData{
						{
							Email:            Email{Address: params.Mailbox},
							AttendeeType:     AttendeeTypeRequired,
							ExcludeConflicts: false,
						},
					},
				},
				FreeBusyViewOptions: FreeBusyViewOptions{
					TimeWindow: TimeWindow{
						StartTime: params.Start.Format(windowLayout),
						EndTime:   params.End.Format(windowLayout),
					},
					MergedFreeBusyIntervalInMinutes: params.MergeIntervalMinutes,
					RequestedView:                   RequestedViewMerged,
				},
			},
		},
	}, nil
}

// NewRequest resolves the timezone of params at ref and builds the request.
// The resolved rule is returned alongside the document.
func NewRequest(params Params, ref time.Time) (*RequestDocument, TimezoneRule, error) {
	if err := params.Validate(); err != nil {
		return nil, TimezoneRule{}, err
	}

	rule, err := ResolveTimezone(params.TimeZone, ref)
	if err != nil {
		return nil, TimezoneRule{}, err
	}

	doc, err := BuildRequest(params, rule)
	if err != nil {
		return nil, TimezoneRule{}, err
	}
	return doc, rule, nil
}

// Marshal encodes the document with an XML declaration.
func (d *RequestDocument) Marshal() ([]byte, error) {
	body, err := xml.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request document: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

// MarshalIndent encodes the document with an XML declaration and indentation.
func (d *RequestDocument) MarshalIndent() ([]byte, error) {
	body, err := xml.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode request document: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

// Transitions returns the transition descriptors present in the document.
func (d *RequestDocument) Transitions() []TransitionDescriptor {
	tz := d.Body.Request.TimeZone
	var out []TransitionDescriptor
	if tz.StandardTime != nil {
		out = append(out, *tz.StandardTime)
	}
	if tz.DaylightTime != nil {
		out = append(out, *tz.DaylightTime)
	}
	return out
}
