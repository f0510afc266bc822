// Package pcberr defines the core's error kinds and the PCBError type
// every fallible operation returns, per the error handling design in the
// spec (kinds, policy, and the distinction between recoverable errors and
// invariant violations that must reach the emergency-save path).
package pcberr

import (
	"errors"
	"fmt"
)

// Kind is one of the seven error kinds the spec's error-handling design
// names.
type Kind string

const (
	Parse     Kind = "ParseError"
	Argument  Kind = "ArgumentError"
	NotFound  Kind = "NotFoundError"
	Locked    Kind = "LockedError"
	Geometry  Kind = "GeometryError"
	Resource  Kind = "ResourceError"
	Invariant Kind = "InvariantViolation"
)

// Location names a position in an action-script or board file, when one
// is known.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	if l.File == "" {
		return ""
	}
	if l.Line == 0 {
		return l.File
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// PCBError is the error type every core operation returns. Argument,
// NotFound, and Locked errors are reported and leave the model untouched;
// Parse errors abort a load and keep the previous board; Resource errors
// trigger emergency-save and abort the save; Invariant is fatal and is
// never expected to be handled by a caller — see emergency.Fatal.
type PCBError struct {
	Kind     Kind
	Message  string
	Location Location
	Cause    error
}

func (e *PCBError) Error() string {
	loc := e.Location.String()
	switch {
	case loc != "" && e.Cause != nil:
		return fmt.Sprintf("%s: %s (%s): %v", e.Kind, e.Message, loc, e.Cause)
	case loc != "":
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, loc)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

func (e *PCBError) Unwrap() error { return e.Cause }

// Is supports errors.Is by kind, so callers can write
// errors.Is(err, pcberr.Locked) style checks against a sentinel built with
// New(pcberr.Locked, "").
func (e *PCBError) Is(target error) bool {
	t, ok := target.(*PCBError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New builds a PCBError with no location and no cause.
func New(kind Kind, message string) *PCBError {
	return &PCBError{Kind: kind, Message: message}
}

// Newf builds a PCBError with a formatted message.
func Newf(kind Kind, format string, args ...any) *PCBError {
	return &PCBError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// At attaches a source location.
func (e *PCBError) At(loc Location) *PCBError {
	e.Location = loc
	return e
}

// Wrap attaches an underlying cause (a resource error's OS error, say).
func (e *PCBError) Wrap(cause error) *PCBError {
	e.Cause = cause
	return e
}

// KindOf extracts the Kind of err if it is (or wraps) a *PCBError.
func KindOf(err error) (Kind, bool) {
	var pe *PCBError
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return "", false
}

// IsFatal reports whether err must be routed to the emergency-save path
// rather than reported and ignored.
func IsFatal(err error) bool {
	k, ok := KindOf(err)
	return ok && k == Invariant
}
