package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	err := New(CodeInsufficientBalance, "balance %s is below %s", "50.00", "100.00")

	assert.True(t, stderrors.Is(err, ErrInsufficientBalance))
	assert.False(t, stderrors.Is(err, ErrInvalidAmount))
	assert.Equal(t, "balance 50.00 is below 100.00", err.Error())
}

func TestDomainError_Wrapped(t *testing.T) {
	err := fmt.Errorf("approve payout p-1: %w", ErrInvalidState)

	assert.True(t, stderrors.Is(err, ErrInvalidState))
	assert.Equal(t, CodeInvalidState, CodeOf(err))
	assert.Equal(t, "", CodeOf(stderrors.New("boom")))
}
