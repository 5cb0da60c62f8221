package errors

var (
	ErrNotFound = &DomainError{
		Code:    CodeNotFound,
		Message: "resource not found",
	}
	ErrForbidden = &DomainError{
		Code:    CodeForbidden,
		Message: "not allowed to act on this resource",
	}
	ErrInvalidState = &DomainError{
		Code:    CodeInvalidState,
		Message: "operation not valid in the current state",
	}
	ErrInvalidSignature = &DomainError{
		Code:    CodeInvalidSignature,
		Message: "payment signature verification failed",
	}
	ErrInsufficientBalance = &DomainError{
		Code:    CodeInsufficientBalance,
		Message: "insufficient wallet balance",
	}
	ErrInvalidAmount = &DomainError{
		Code:    CodeInvalidAmount,
		Message: "invalid amount",
	}
	ErrGatewayUnavailable = &DomainError{
		Code:    CodeGatewayUnavailable,
		Message: "payment gateway unavailable",
	}
	ErrValidation = &DomainError{
		Code:    CodeValidation,
		Message: "request validation failed",
	}
)
