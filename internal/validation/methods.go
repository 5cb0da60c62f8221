// Package validation checks request DTOs with go-playground/validator
// struct tags and collects per-field messages.
package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	apperrors "medipay/internal/errors"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Validator collects field errors for a single request.
type Validator struct {
	Errors map[string]string
}

// New creates a new validator
func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

// Valid checks if there are any validation errors
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError records the first message for field.
func (v *Validator) AddError(field, message string) {
	if _, exists := v.Errors[field]; !exists {
		v.Errors[field] = message
	}
}

// Check adds an error if the condition is false
func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.AddError(field, message)
	}
}

// Required checks that a string is not blank.
func (v *Validator) Required(field, value string) {
	v.Check(strings.TrimSpace(value) != "", field, "is required")
}

// PositiveAmount checks a money value is above zero with at most two decimals.
func (v *Validator) PositiveAmount(field string, amount decimal.Decimal) {
	v.Check(amount.IsPositive(), field, "must be greater than zero")
	v.Check(amount.Equal(amount.Round(2)), field, "must have at most two decimal places")
}

// Struct runs the struct tag rules on s and records every failure.
func (v *Validator) Struct(s interface{}) {
	err := engine.Struct(s)
	if err == nil {
		return
	}
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		v.AddError("request", err.Error())
		return
	}
	for _, fe := range fields {
		v.AddError(fieldName(fe), message(fe))
	}
}

// Err returns nil when valid, otherwise an *Error wrapping ErrValidation.
func (v *Validator) Err() error {
	if v.Valid() {
		return nil
	}
	return &Error{Fields: v.Errors}
}

// Struct validates s in one call.
func Struct(s interface{}) error {
	v := New()
	v.Struct(s)
	return v.Err()
}

// Error carries the failing fields of a request.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s %s", name, e.Fields[name]))
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

func (e *Error) Unwrap() error {
	return apperrors.ErrValidation
}
