package service

import "errors"

// ValidationError 请求参数不合法，对应 400
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmptySearchQuery   = invalid("Search query is required")
)

// IsValidation 是否参数错误
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
