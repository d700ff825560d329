// Package logging provides structured logging helpers for ewsfreebusy.
//
// All log output goes through log/slog. The package fixes the attribute keys
// used across the codebase and hashes mailbox addresses before they reach a
// log line:
//
//	logger := logging.WithOperation(slog.Default(), "ews.get_user_availability")
//	logger.Info("availability fetched",
//	    logging.MailboxHash(params.Mailbox),
//	    logging.Timezone(params.TimeZone),
//	    logging.Status(logging.StatusSuccess))
//
// Bearer tokens are never logged; use SanitizeToken when a token's presence
// needs to be visible.
package logging
