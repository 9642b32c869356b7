package store

import "fmt"

type kind int

const (
	kindNotFound kind = iota + 1
	kindAlreadyExists
)

// Error is a persistence failure a caller can branch on with errors.Is.
type Error struct {
	kind    kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so copies made by WithMessage
// and WithCause still satisfy errors.Is against the sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.kind == e.kind
}

// WithMessage returns a copy with a custom message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{kind: e.kind, Message: msg, Err: e.Err}
}

// WithCause returns a copy wrapping err.
func (e *Error) WithCause(err error) *Error {
	return &Error{kind: e.kind, Message: e.Message, Err: err}
}

// Sentinel errors.
var (
	ErrNotFound = &Error{
		kind:    kindNotFound,
		Message: "resource not found",
	}

	// ErrAlreadyExists reports a uniqueness violation, such as a taken
	// email or a second review of the same book by the same user.
	ErrAlreadyExists = &Error{
		kind:    kindAlreadyExists,
		Message: "resource already exists",
	}
)
