// Package errors provides standardized error handling for the ringbuffer packages.
// It includes error classification, the sentinel errors shared by ring and buffer,
// and helpers for consistent error wrapping.
package errors

import (
	"context"
	"errors"
	"fmt"
)

// ErrorClass represents the classification of errors for handling purposes
type ErrorClass int

const (
	// ErrorTransient represents temporary errors that may be retried
	ErrorTransient ErrorClass = iota
	// ErrorInvalid represents errors caused by a misuse of the API or invalid input
	ErrorInvalid
	// ErrorFatal represents unrecoverable errors
	ErrorFatal
)

// String returns the string representation of ErrorClass
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorTransient:
		return "transient"
	case ErrorInvalid:
		return "invalid"
	case ErrorFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

var (
	// Container errors
	ErrOverflow        = errors.New("source exceeds buffer capacity")
	ErrEmpty           = errors.New("buffer is empty")
	ErrOutOfRange      = errors.New("position out of range")
	ErrForeignIterator = errors.New("iterator belongs to a different buffer")
	ErrStaleIterator   = errors.New("iterator outlived a capacity change")
	ErrClosed          = errors.New("buffer is closed")

	// Data errors
	ErrInvalidData   = errors.New("invalid data format")
	ErrParsingFailed = errors.New("parsing failed")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrMissingConfig = errors.New("missing required configuration")

	// Resource errors
	ErrAllocationFailed = errors.New("allocation failed")
)

// sentinelClasses classifies errors that reach a caller without a
// ClassifiedError around them. The first match wins.
var sentinelClasses = []struct {
	err   error
	class ErrorClass
}{
	{ErrAllocationFailed, ErrorTransient},
	{context.DeadlineExceeded, ErrorTransient},
	{ErrInvalidConfig, ErrorFatal},
	{ErrMissingConfig, ErrorFatal},
	{ErrOverflow, ErrorInvalid},
	{ErrEmpty, ErrorInvalid},
	{ErrOutOfRange, ErrorInvalid},
	{ErrForeignIterator, ErrorInvalid},
	{ErrStaleIterator, ErrorInvalid},
	{ErrClosed, ErrorInvalid},
	{ErrInvalidData, ErrorInvalid},
	{ErrParsingFailed, ErrorInvalid},
}

// ClassifiedError wraps an error with its classification
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Message   string
	Component string
	Operation string
}

// Error implements the error interface
func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Err.Error()
}

// Unwrap returns the underlying error
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// Classify returns the class of err. The outermost ClassifiedError decides;
// otherwise the first known sentinel in the chain does. Anything else is
// transient. Classify(nil) is transient.
func Classify(err error) ErrorClass {
	if err == nil {
		return ErrorTransient
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class
	}
	for _, s := range sentinelClasses {
		if errors.Is(err, s.err) {
			return s.class
		}
	}
	return ErrorTransient
}

// IsTransient reports whether the operation that returned err may be retried.
// A Block-policy write that timed out is transient.
func IsTransient(err error) bool {
	return err != nil && Classify(err) == ErrorTransient
}

// IsFatal checks if an error is fatal
func IsFatal(err error) bool {
	return err != nil && Classify(err) == ErrorFatal
}

// IsInvalid reports whether err comes from a violated precondition or bad input.
func IsInvalid(err error) bool {
	return err != nil && Classify(err) == ErrorInvalid
}

func classify(class ErrorClass, err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrapped := Wrap(err, component, method, action)
	return &ClassifiedError{
		Class:     class,
		Err:       wrapped,
		Message:   wrapped.Error(),
		Component: component,
		Operation: method,
	}
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// WrapTransient wraps an error as transient with context
func WrapTransient(err error, component, method, action string) error {
	return classify(ErrorTransient, err, component, method, action)
}

// WrapFatal wraps an error as fatal with context
func WrapFatal(err error, component, method, action string) error {
	return classify(ErrorFatal, err, component, method, action)
}

// WrapInvalid wraps an error as invalid with context
func WrapInvalid(err error, component, method, action string) error {
	return classify(ErrorInvalid, err, component, method, action)
}
