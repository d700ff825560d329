// Package ews sends GetUserAvailability requests to an Exchange Web Services
// endpoint and decodes the responses.
//
// The Transport interface decouples request translation from delivery.
// HTTPTransport posts SOAP documents over HTTP and authorises them with an
// oauth2.TokenSource. Service ties translation, delivery and decoding
// together, and records metrics, spans and audit entries for each lookup.
//
// Example:
//
//	transport, err := ews.NewHTTPTransport(endpoint, ews.WithBearerToken(token))
//	if err != nil {
//		return err
//	}
//	svc := ews.NewService(transport)
//	result, err := svc.GetUserAvailability(ctx, availability.Params{
//		Mailbox:  "jane@example.com",
//		TimeZone: "Europe/London",
//	})
package ews
