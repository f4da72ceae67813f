package services

import (
	"errors"

	"github.com/jonpan30062/newsaferoute/internal/models"
)

// Service-level errors
var (
	ErrNotFound        = errors.New("not found")
	ErrMissingLocation = errors.New("concern has no coordinates")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrAlreadyResolved = errors.New("concern is already resolved")
	ErrNotApprovable   = errors.New("concern cannot be approved in its current status")
)

// Error codes reported per item in batch results and by the CLI.
const (
	CodeNotFound        = "NOT_FOUND"
	CodeMissingLocation = "MISSING_LOCATION"
	CodeInvalidStatus   = "INVALID_STATUS"
	CodeAlreadyResolved = "ALREADY_RESOLVED"
	CodeNotApprovable   = "NOT_APPROVABLE"
	CodeValidation      = "VALIDATION_ERROR"
	CodeInternal        = "INTERNAL_ERROR"
)

// ErrorCode classifies err into one of the Code constants.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrMissingLocation):
		return CodeMissingLocation
	case errors.Is(err, ErrInvalidStatus):
		return CodeInvalidStatus
	case errors.Is(err, ErrAlreadyResolved):
		return CodeAlreadyResolved
	case errors.Is(err, ErrNotApprovable):
		return CodeNotApprovable
	case errors.Is(err, models.ErrValidation):
		return CodeValidation
	default:
		return CodeInternal
	}
}
