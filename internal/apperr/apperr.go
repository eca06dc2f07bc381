package apperr

import (
	"errors"
	"fmt"
)

// Sentinel errors for the content aggregate. Handlers map these to HTTP
// status codes; services wrap them with context via fmt.Errorf and %w.
var (
	ErrForbidden              = errors.New("forbidden")
	ErrNovelNotFound          = errors.New("novel not found")
	ErrChapterNotFound        = errors.New("chapter not found")
	ErrDuplicateChapterNumber = errors.New("chapter number already exists for this novel")
	ErrAssetUpload            = errors.New("asset upload failed")
	ErrAssetDelete            = errors.New("asset delete failed")
)

// ValidationError reports a malformed or missing input field. Always
// recoverable by resubmission, never emitted after a side effect.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
