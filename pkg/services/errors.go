package services

import (
	"errors"
)

// ErrAlertNotFound is returned by lifecycle operations when the target alert
// id has no persisted record. The API layer maps it to 404 so clients can
// distinguish "already gone" from "rejected".
var ErrAlertNotFound = errors.New("alert not found")

// ValidationError rejects caller input: empty notes, empty corrective
// action, or a lifecycle operation aimed at a computed (live) alert.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// IsValidationError reports whether err is (or wraps) a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
