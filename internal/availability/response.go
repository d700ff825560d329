package availability

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Response element names.
const (
	elementMergedFreeBusy     = "MergedFreeBusy"
	elementCalendarEventArray = "CalendarEventArray"
	elementFault              = "Fault"
	elementResponseMessage    = "ResponseMessage"
)

var errEmptyDocument = errors.New("document has no root element")

// ResponseDocument is a well-formed response document owned by the decoder
// for the duration of decoding.
type ResponseDocument struct {
	raw []byte
}

// ParseResponse checks that data is a well-formed XML document.
func ParseResponse(data []byte) (*ResponseDocument, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	sawRoot := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &MalformedResponseError{Cause: err}
		}
		if _, ok := tok.(xml.StartElement); ok {
			sawRoot = true
		}
	}
	if !sawRoot {
		return nil, &MalformedResponseError{Cause: errEmptyDocument}
	}

	raw := make([]byte, len(data))
	copy(raw, data)
	return &ResponseDocument{raw: raw}, nil
}

// Bytes returns the raw document.
func (d *ResponseDocument) Bytes() []byte {
	return d.raw
}

// find decodes the first element anywhere in the document whose local name
// is local into v. Elements outside the types namespace only match when
// they carry no namespace at all.
func (d *ResponseDocument) find(local string, v any) (bool, error) {
	dec := xml.NewDecoder(bytes.NewReader(d.raw))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return false, nil
		}
		if err != nil {
			return false, err
		}

		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != local {
			continue
		}
		if se.Name.Space != NamespaceTypes && se.Name.Space != "" {
			continue
		}
		return true, dec.DecodeElement(v, &se)
	}
}

// ResponseError returns the fault reported by the service, or nil when the
// document carries none. Both SOAP faults and response messages with
// ResponseClass="Error" are recognised.
func (d *ResponseDocument) ResponseError() error {
	dec := xml.NewDecoder(bytes.NewReader(d.raw))
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch {
		case se.Name.Local == elementFault && se.Name.Space == NamespaceSOAP:
			var fault struct {
				Code   string `xml:"faultcode"`
				String string `xml:"faultstring"`
			}
			if err := dec.DecodeElement(&fault, &se); err != nil {
				return &MalformedResponseError{Element: elementFault, Cause: err}
			}
			return &ServiceError{
				Code:    strings.TrimSpace(fault.Code),
				Message: strings.TrimSpace(fault.String),
			}

		case se.Name.Local == elementResponseMessage && responseClass(se) == "Error":
			var msg struct {
				MessageText  string `xml:"MessageText"`
				ResponseCode string `xml:"ResponseCode"`
			}
			if err := dec.DecodeElement(&msg, &se); err != nil {
				return &MalformedResponseError{Element: elementResponseMessage, Cause: err}
			}
			return &ServiceError{
				Code:    strings.TrimSpace(msg.ResponseCode),
				Message: strings.TrimSpace(msg.MessageText),
			}
		}
	}
}

func responseClass(se xml.StartElement) string {
	for _, attr := range se.Attr {
		if attr.Name.Local == "ResponseClass" {
			return attr.Value
		}
	}
	return ""
}

// Decoder turns response documents into typed values using an item registry.
type Decoder struct {
	registry *Registry
}

// NewDecoder creates a decoder backed by registry. A nil registry selects
// DefaultRegistry().
func NewDecoder(registry *Registry) *Decoder {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Decoder{registry: registry}
}

// Registry returns the decoder's item registry.
func (d *Decoder) Registry() *Registry {
	return d.registry
}

// DecodeAvailability extracts the merged free/busy status sequence.
func (d *Decoder) DecodeAvailability(doc *ResponseDocument) ([]Status, error) {
	var text string
	found, err := doc.find(elementMergedFreeBusy, &text)
	if err != nil {
		return nil, &MalformedResponseError{Element: elementMergedFreeBusy, Cause: err}
	}
	if !found {
		return nil, &MalformedResponseError{Element: elementMergedFreeBusy}
	}
	return DecodeMergedFreeBusy(strings.TrimSpace(text))
}

// DecodeMergedFreeBusy maps each character of a merged free/busy string to
// its Status, preserving order. Any character outside '0'..'4' fails the
// whole decode.
func DecodeMergedFreeBusy(text string) ([]Status, error) {
	statuses := make([]Status, 0, len(text))
	for i, c := range text {
		status, ok := ParseStatusCode(c)
		if !ok {
			return nil, &StatusCodeError{Position: i, Code: c}
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// EncodeMergedFreeBusy is the inverse of DecodeMergedFreeBusy.
func EncodeMergedFreeBusy(statuses []Status) string {
	buf := make([]byte, len(statuses))
	for i, s := range statuses {
		buf[i] = s.Code()
	}
	return string(buf)
}

type calendarEventArrayXML struct {
	Nodes []RawNode `xml:",any"`
}

// DecodeItems decodes every child of the calendar event array through the
// registry. It fails on the first unregistered tag or constructor error and
// returns no partial result.
func (d *Decoder) DecodeItems(doc *ResponseDocument) ([]Item, error) {
	var array calendarEventArrayXML
	found, err := doc.find(elementCalendarEventArray, &array)
	if err != nil {
		return nil, &MalformedResponseError{Element: elementCalendarEventArray, Cause: err}
	}
	if !found {
		return nil, &MalformedResponseError{Element: elementCalendarEventArray}
	}

	items := make([]Item, 0, len(array.Nodes))
	for i, node := range array.Nodes {
		ctor, ok := d.registry.Resolve(node.Tag())
		if !ok {
			return nil, &UnknownItemTypeError{Tag: node.Tag()}
		}
		item, err := ctor(node)
		if err != nil {
			return nil, fmt.Errorf("failed to decode calendar item %d (%s): %w", i, node.Tag(), err)
		}
		items = append(items, item)
	}
	return items, nil
}

// Result holds everything decoded from one response.
type Result struct {
	Statuses []Status
	Items    []Item
}

// Decode parses data and decodes both the status sequence and the items.
// A fault reported by the service is returned before any decoding.
//
// Decode is more lenient than DecodeItems: a response without a
// CalendarEventArray decodes to an empty item list instead of a
// *MalformedResponseError, because free/busy-only views omit the array.
// A missing MergedFreeBusy is still an error. Call DecodeItems directly
// to require the array.
func (d *Decoder) Decode(data []byte) (*Result, error) {
	doc, err := ParseResponse(data)
	if err != nil {
		return nil, err
	}
	if err := doc.ResponseError(); err != nil {
		return nil, err
	}

	statuses, err := d.DecodeAvailability(doc)
	if err != nil {
		return nil, err
	}
	items, err := d.DecodeItems(doc)
	if err != nil && !isMissingElement(err, elementCalendarEventArray) {
		return nil, err
	}
	// the service omits the event array when the window holds no events
	if items == nil {
		items = []Item{}
	}
	return &Result{Statuses: statuses, Items: items}, nil
}

func isMissingElement(err error, element string) bool {
	var malformed *MalformedResponseError
	return errors.As(err, &malformed) && malformed.Element == element && malformed.Cause == nil
}
