// Package errors is the project's error layer: cheap construction,
// message wrapping with a stable separator, and stdlib-compatible
// unwrapping.
package errors

import (
	"errors"
)

var _ error = (*wrappedError)(nil)

// New returns an error with the given text.
func New(text string) error {
	return errors.New(text)
}

// Wrap prefixes err with text. A nil err stays nil; empty text returns
// err untouched.
func Wrap(err error, text string) error {
	if err == nil {
		return nil
	}

	if len(text) == 0 {
		return err
	}

	return &wrappedError{
		err: err,
		msg: text,
	}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

type wrappedError struct {
	err error
	msg string
}

const sep = ", err: "

func (err wrappedError) Error() string {
	if err.err == nil {
		return err.msg
	}

	return err.msg + sep + err.err.Error()
}

func (err wrappedError) Unwrap() error {
	if err.err == nil {
		return errors.New(err.msg)
	}

	return err.err
}
