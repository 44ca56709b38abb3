package types

import (
	"errors"
	"fmt"
)

const (
	CodeValidation         = "VALIDATION"
	CodePortfolioNotFound  = "PORTFOLIO_NOT_FOUND"
	CodeHoldingNotFound    = "HOLDING_NOT_FOUND"
	CodeQuoteNotFound      = "QUOTE_NOT_FOUND"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUserExists         = "USER_EXISTS"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeStoreFailure       = "STORE_FAILURE"
	CodeUpstreamFailure    = "UPSTREAM_FAILURE"
)

// CodedError is a typed error used for stable API mapping.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *CodedError) Unwrap() error { return e.Cause }

// NewError builds a CodedError.
func NewError(code, msg string, cause error) error {
	return &CodedError{Code: code, Message: msg, Cause: cause}
}

// Errorf builds a CodedError without a cause.
func Errorf(code, format string, args ...any) error {
	return &CodedError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsCode reports whether err, or anything it wraps, is a CodedError with code.
func IsCode(err error, code string) bool {
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Code == code
	}
	return false
}
