package citation

import (
	"errors"
	"fmt"
)

// Kind classifies an Error. The set of kinds is closed.
type Kind int

const (
	KindOther             Kind = iota // Catch-all
	KindIO                            // Underlying I/O failure
	KindInvalidFormat                 // Input does not follow the expected grammar
	KindMissingField                  // A structurally required field was absent
	KindInvalidFieldValue             // A field failed semantic validation
	KindMalformedInput                // Line-addressable structural failure
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindInvalidFormat:
		return "invalid_format"
	case KindMissingField:
		return "missing_field"
	case KindInvalidFieldValue:
		return "invalid_field_value"
	case KindMalformedInput:
		return "malformed_input"
	default:
		return "other"
	}
}

// Error is the single error type returned by parsers and the deduplicator.
type Error struct {
	Kind    Kind
	Field   string // MissingField, InvalidFieldValue
	Message string
	Line    int   // MalformedInput (1-indexed)
	Err     error // Cause, for IO and converted format-library errors
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindIO:
		return "IO error: " + e.Message
	case KindInvalidFormat:
		return "Parse error: " + e.Message
	case KindMissingField:
		return "Missing required field: " + e.Field
	case KindInvalidFieldValue:
		return fmt.Sprintf("Invalid field value: %s - %s", e.Field, e.Message)
	case KindMalformedInput:
		return fmt.Sprintf("Malformed input: %s at line %d", e.Message, e.Line)
	default:
		return "Error: " + e.Message
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// InvalidFormat reports input that does not conform to the expected grammar.
func InvalidFormat(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidFormat, Message: fmt.Sprintf(format, args...)}
}

// MissingField reports an absent required field.
func MissingField(name string) *Error {
	return &Error{Kind: KindMissingField, Field: name}
}

// InvalidFieldValue reports a field that is present but semantically invalid.
func InvalidFieldValue(field, message string) *Error {
	return &Error{Kind: KindInvalidFieldValue, Field: field, Message: message}
}

// MalformedInput reports a structural failure at a specific line.
func MalformedInput(message string, line int) *Error {
	return &Error{Kind: KindMalformedInput, Message: message, Line: line}
}

// Other reports anything that fits no other kind.
func Other(format string, args ...any) *Error {
	return &Error{Kind: KindOther, Message: fmt.Sprintf(format, args...)}
}

// FromIO converts an I/O error. A nil err stays nil.
func FromIO(err error) error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return err
	}
	return &Error{Kind: KindIO, Message: err.Error(), Err: err}
}

// FromFormat converts an error raised by a format library (XML, CSV, JSON,
// PDF decoding) into an InvalidFormat error. A nil err stays nil.
func FromFormat(err error) error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return err
	}
	return &Error{Kind: KindInvalidFormat, Message: err.Error(), Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
// Errors outside the taxonomy are reported as KindOther.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindOther
}

// IsKind reports whether err's chain contains an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == kind
}
