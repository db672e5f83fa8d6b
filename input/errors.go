package input

import (
	"fmt"

	"github.com/xraph/dialog"
)

// ValidationError is a rejection shown to the operator. Its message is the
// text rendered next to the re-asked field.
type ValidationError struct {
	Message string
	cause   error
}

func (e *ValidationError) Error() string { return e.Message }

// Unwrap makes every ValidationError match dialog.ErrValidationFailed, plus
// its cause when there is one.
func (e *ValidationError) Unwrap() []error {
	if e.cause == nil {
		return []error{dialog.ErrValidationFailed}
	}
	return []error{dialog.ErrValidationFailed, e.cause}
}

// Invalid returns a ValidationError with a formatted message.
func Invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func invalidSelection(key string) error {
	return &ValidationError{
		Message: fmt.Sprintf("%q is not one of the offered options", key),
		cause:   dialog.ErrInvalidSelection,
	}
}
