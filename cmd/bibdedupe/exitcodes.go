package main

import "github.com/matsen/bibdedupe/internal/citation"

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (unreadable or invalid config)
	ExitDataError   = 3 // Data error (malformed input, unknown format)
)

// exitCodeFor maps an error to an exit code. Errors from the citation
// taxonomy that describe bad input are data errors.
func exitCodeFor(err error) int {
	switch citation.KindOf(err) {
	case citation.KindInvalidFormat, citation.KindMissingField,
		citation.KindInvalidFieldValue, citation.KindMalformedInput:
		return ExitDataError
	default:
		return ExitError
	}
}
