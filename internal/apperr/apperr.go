// Package apperr defines the error taxonomy shared across the service.
//
// ConfigurationError: malformed quiz definitions, rejected before any attempt
// may start. ErrNotFound: unknown quiz/attempt ids, surfaced to the caller.
// ValidationError: a single bad answer, isolated so scoring continues.
// DeliveryError: event sink failures, recovered locally by requeueing.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadySubmitted = errors.New("attempt already submitted")
)

type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

type ValidationError struct {
	QuestionID string
	Reason     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid answer for question %q: %s", e.QuestionID, e.Reason)
}

type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	return "event delivery failed: " + e.Err.Error()
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
