// Package mfpgaerr defines the error taxonomy shared by every package in
// the m-fpga control stack, modelled on the arm-emulator parser's
// Error/ErrorKind pair.
package mfpgaerr

import "fmt"

// Kind categorises a failure the way the specification's error taxonomy
// does, so callers can switch on it instead of matching strings.
type Kind int

const (
	// NullRef means a required operand was absent.
	NullRef Kind = iota
	// BadArgs means an index was out of range, a Q-format was malformed,
	// or an effect was empty.
	BadArgs
	// AllocFail means buffer growth failed.
	AllocFail
	// ExprParse means an expression string was malformed.
	ExprParse
	// BadInstruction means an unknown opcode was seen during decode.
	BadInstruction
	// UnknownCommand means an unknown command byte was seen during
	// stream decode. Non-fatal: the decoder resynchronises trivially.
	UnknownCommand
	// WouldBlock means the transport applied backpressure; retry later.
	WouldBlock
)

func (k Kind) String() string {
	switch k {
	case NullRef:
		return "NullRef"
	case BadArgs:
		return "BadArgs"
	case AllocFail:
		return "AllocFail"
	case ExprParse:
		return "ExprParse"
	case BadInstruction:
		return "BadInstruction"
	case UnknownCommand:
		return "UnknownCommand"
	case WouldBlock:
		return "WouldBlock"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the concrete error type every package in this module returns
// for domain failures. It carries enough context to report where the
// failure happened without forcing every caller to build its own wrapper.
type Error struct {
	Kind    Kind
	Message string
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap supports errors.Is/errors.As against the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// New creates an Error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with a kind and message. If err is already
// an *Error of the requested kind, it is returned unchanged.
func Wrap(kind Kind, message string, err error) error {
	if err == nil {
		return nil
	}
	if existing, ok := err.(*Error); ok && existing.Kind == kind {
		return existing
	}
	return &Error{Kind: kind, Message: message, Wrapped: err}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
