package utils

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"venuehub/internal/domain"
)

// ValidationFailure converts a validator error into the domain's
// field-level validation error, keeping the first failing field.
func ValidationFailure(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &domain.ValidationError{
			Field:   fe.Field(),
			Message: fmt.Sprintf("failed validation rule %q", fe.Tag()),
		}
	}
	return &domain.ValidationError{Message: err.Error()}
}
