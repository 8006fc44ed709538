package employee

import "errors"

var (
	ErrValidation         = errors.New("employee: validation failed")
	ErrEmployeeNotFound   = errors.New("employee: not found")
	ErrEmailAlreadyExists = errors.New("employee: email already exists")
	ErrInvalidOrder       = errors.New("employee: invalid order")
	ErrStorage            = errors.New("employee: storage failure")
)

// ValidationError は入力値の検証エラーです。Field は問題のあるフィールド名を指します。
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Reason
}

// Is は errors.Is(err, ErrValidation) を成立させます。
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalidField(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
