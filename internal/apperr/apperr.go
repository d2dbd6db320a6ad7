// Package apperr defines the error kinds that cross the recognition and
// camera boundaries. Lower-level failures are wrapped into one of these kinds
// before they leave a component.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	InternalError Kind = iota
	ServiceNotReady
	InvalidInput
	NoPlateDetected
	TextUnreadable
	CameraInitFailed
	CameraNotActive
	CameraCaptureFailed
	CameraUnsupported
)

var kindNames = map[Kind]string{
	InternalError:       "InternalError",
	ServiceNotReady:     "ServiceNotReady",
	InvalidInput:        "InvalidInput",
	NoPlateDetected:     "NoPlateDetected",
	TextUnreadable:      "TextUnreadable",
	CameraInitFailed:    "CameraInitFailed",
	CameraNotActive:     "CameraNotActive",
	CameraCaptureFailed: "CameraCaptureFailed",
	CameraUnsupported:   "CameraUnsupported",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is a classified failure. Err, when set, is the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so callers can write
// errors.Is(err, apperr.New(apperr.CameraNotActive, "")).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf classifies err. Errors that were never classified are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return InternalError
}

// From returns err as an *Error, wrapping unclassified errors as InternalError.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(InternalError, "unexpected failure", err)
}
