package validation

import (
	"errors"
	"fmt"
)

// ErrInvalid is matched by every ValidationError via errors.Is
var ErrInvalid = errors.New("invalid input")

// ValidationError описывает ошибку проверки одного поля
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Is позволяет проверять errors.Is(err, ErrInvalid)
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
