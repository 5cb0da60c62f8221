// Package errors defines the domain error taxonomy shared by the services
// and mapped to HTTP statuses by the handlers.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes.
const (
	CodeNotFound            = "NOT_FOUND"
	CodeForbidden           = "FORBIDDEN"
	CodeInvalidState        = "INVALID_STATE"
	CodeInvalidSignature    = "INVALID_SIGNATURE"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeInvalidAmount       = "INVALID_AMOUNT"
	CodeGatewayUnavailable  = "GATEWAY_UNAVAILABLE"
	CodeValidation          = "VALIDATION_FAILED"
)

// DomainError is an expected, user-facing failure identified by Code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches any DomainError carrying the same code, so wrapped copies
// created with New still satisfy errors.Is against the sentinels.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New returns a DomainError with the given code and a specific message.
func New(code, format string, args ...interface{}) *DomainError {
	return &DomainError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the code of the first DomainError in err's chain, or "".
func CodeOf(err error) string {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Code
	}
	return ""
}
