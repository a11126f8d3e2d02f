// Package etlerr defines the pipeline's error taxonomy. Each stage wraps its
// failures into a kinded error so the scheduler and logs can tell a broken
// reference file from an unreachable API or a failed load transaction.
package etlerr

import (
	"errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

type Kind string

const (
	KindReferenceLoad       Kind = "REFERENCE_LOAD"
	KindUpstreamUnavailable Kind = "UPSTREAM_UNAVAILABLE"
	KindExtraction          Kind = "EXTRACTION"
	KindLoadTransaction     Kind = "LOAD_TRANSACTION"
)

// Error is a kinded pipeline error with a captured stack trace.
type Error struct {
	Kind    Kind
	Message string
	Err     error
	stack   []byte
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

// Stack returns the stack captured at construction time.
func (e *Error) Stack() []byte {
	return e.stack
}

func New(kind Kind, message string, err error) *Error {
	var stack []byte
	if err != nil {
		if stackErr, ok := err.(*goerrors.Error); ok {
			stack = stackErr.Stack()
		} else {
			stack = goerrors.Wrap(err, 2).Stack()
		}
	} else {
		stack = goerrors.New(message).Stack()
	}

	return &Error{
		Kind:    kind,
		Message: message,
		Err:     err,
		stack:   stack,
	}
}

func ReferenceLoad(message string, err error) *Error {
	return New(KindReferenceLoad, message, err)
}

func UpstreamUnavailable(message string, err error) *Error {
	return New(KindUpstreamUnavailable, message, err)
}

func Extraction(message string, err error) *Error {
	return New(KindExtraction, message, err)
}

func LoadTransaction(message string, err error) *Error {
	return New(KindLoadTransaction, message, err)
}

// KindOf returns the kind of err if it is (or wraps) an *Error, else "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
