// Package batch runs one operation per item for tools that accept several
// mailboxes at once.
//
// Parameters may be a single string or an array of strings. Items run
// concurrently with a bounded number in flight, partial failures are
// reported per item, and results keep the order of the input.
package batch
