// Package availability translates free/busy lookups to and from the
// GetUserAvailability SOAP documents of an Exchange Web Services endpoint.
//
// The package performs no I/O. A request is built from Params and a
// TimezoneRule resolved for the caller's zone:
//
//	params := availability.DefaultParams(time.Now())
//	params.Mailbox = "jane@example.com"
//
//	doc, rule, err := availability.NewRequest(params, time.Now())
//	if err != nil {
//	    return err
//	}
//	body, err := doc.Marshal()
//
// The response is decoded with a Decoder. Calendar items are dispatched by
// element name through a Registry; DefaultRegistry knows CalendarEvent and
// CalendarItem, and callers may build their own:
//
//	reg := availability.NewRegistry()
//	_ = reg.Register("CalendarEvent", myConstructor)
//	reg.Seal()
//
//	result, err := availability.NewDecoder(reg).Decode(responseBody)
//
// Every failure is returned as a typed error that matches one of the
// package's sentinel errors with errors.Is.
package availability
