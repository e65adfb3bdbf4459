// Package validation distinguishes client-caused input errors from internal
// engine failures so HTTP handlers can map them to the right status code.
package validation

import (
	"errors"
	"fmt"
)

// Error marks an error as caused by invalid client input.
type Error struct {
	msg string
}

func (e *Error) Error() string { return e.msg }

// Errorf builds a validation error with a human-readable message.
func Errorf(format string, args ...any) error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err (or anything it wraps) is a client error.
func IsValidation(err error) bool {
	var ve *Error
	return errors.As(err, &ve)
}
