package stego

import (
	"errors"
	"fmt"
)

// Kind classifies codec failures so callers can map them to user-facing
// messages or status codes.
type Kind int

const (
	KindUnknown Kind = iota
	// KindInvalidInput: message empty after sanitisation or too long.
	KindInvalidInput
	// KindCapacityExceeded: payload bits do not fit in the carrier.
	KindCapacityExceeded
	// KindPayloadTooLarge: input buffer exceeds the size guard.
	KindPayloadTooLarge
	// KindUnreadableImage: dimensions or container could not be determined.
	KindUnreadableImage
	// KindNoPayloadDetected: every detection strategy came back empty.
	KindNoPayloadDetected
)

var kindNames = map[Kind]string{
	KindUnknown:           "unknown",
	KindInvalidInput:      "invalid input",
	KindCapacityExceeded:  "capacity exceeded",
	KindPayloadTooLarge:   "payload too large",
	KindUnreadableImage:   "unreadable image",
	KindNoPayloadDetected: "no payload detected",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Sentinels for errors.Is. Any *Error of the same Kind matches.
var (
	ErrInvalidInput      = &Error{Kind: KindInvalidInput}
	ErrCapacityExceeded  = &Error{Kind: KindCapacityExceeded}
	ErrPayloadTooLarge   = &Error{Kind: KindPayloadTooLarge}
	ErrUnreadableImage   = &Error{Kind: KindUnreadableImage}
	ErrNoPayloadDetected = &Error{Kind: KindNoPayloadDetected}
)

// Error is the typed failure returned by every entry point of the codec.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

// NewError builds an *Error with a formatted diagnostic detail.
func NewError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// WrapError attaches a kind to an underlying cause.
func WrapError(kind Kind, err error, detail string) *Error {
	return &Error{Kind: kind, Detail: detail, Err: err}
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind carried anywhere in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
