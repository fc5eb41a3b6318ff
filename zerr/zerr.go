// Package zerr defines the closed set of error kinds shared by the text
// model, edit-application engine, and language-server coordinator.
package zerr

import (
	"errors"
	"fmt"
)

// Kind identifies a recoverable error category. Every Kind maps to a
// user-visible status-bar message or a session-state transition; none of
// them tear down the event loop.
type Kind int

const (
	_ Kind = iota
	InvalidBoundary
	OverlappingEdits
	VersionMismatch
	UnreadableFile
	DiskFull
	Timeout
	Cancelled
	Disconnected
	Unsupported
	Parse
	Protocol
)

func (k Kind) String() string {
	switch k {
	case InvalidBoundary:
		return "InvalidBoundary"
	case OverlappingEdits:
		return "OverlappingEdits"
	case VersionMismatch:
		return "VersionMismatch"
	case UnreadableFile:
		return "UnreadableFile"
	case DiskFull:
		return "DiskFull"
	case Timeout:
		return "Timeout"
	case Cancelled:
		return "Cancelled"
	case Disconnected:
		return "Disconnected"
	case Unsupported:
		return "Unsupported"
	case Parse:
		return "Parse"
	case Protocol:
		return "Protocol"
	default:
		return "Unknown"
	}
}

// Error wraps a Kind with contextual detail and an optional cause.
type Error struct {
	Kind    Kind
	Detail  string
	Cause   error
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether err carries the given Kind.
func Is(err error, k Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == k
	}
	return false
}

// New constructs an *Error of the given kind.
func New(k Kind, detail string) *Error {
	return &Error{Kind: k, Detail: detail}
}

// Wrap constructs an *Error of the given kind around a cause.
func Wrap(k Kind, detail string, cause error) *Error {
	return &Error{Kind: k, Detail: detail, Cause: cause}
}
