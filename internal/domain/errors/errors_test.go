package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DomainError
		expected string
	}{
		{
			name: "with wrapped error",
			err: &DomainError{
				Code:    "transfer_failed",
				Message: "transfer could not be applied",
				Err:     errors.New("connection reset"),
			},
			expected: "transfer could not be applied: connection reset",
		},
		{
			name: "without wrapped error",
			err: &DomainError{
				Code:    "invalid_state",
				Message: "account is not in a usable state",
				Err:     nil,
			},
			expected: "account is not in a usable state",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	domainErr := &DomainError{
		Code:    "test",
		Message: "test message",
		Err:     originalErr,
	}

	unwrapped := domainErr.Unwrap()
	assert.Equal(t, originalErr, unwrapped)
}

func TestNewDomainError(t *testing.T) {
	originalErr := errors.New("underlying error")
	err := NewDomainError("test_code", "test message", originalErr)

	assert.NotNil(t, err)
	assert.Equal(t, "test_code", err.Code)
	assert.Equal(t, "test message", err.Message)
	assert.Equal(t, originalErr, err.Err)
}

func TestValidationError_Error(t *testing.T) {
	err := NewValidationError("account_name", "cannot be empty")
	assert.Equal(t, "validation failed for field account_name: cannot be empty", err.Error())
}

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrAccountNotFound,
		ErrDuplicateName,
		ErrOptimisticLockFailed,
		ErrInvalidAmount,
		ErrInsufficientFunds,
		ErrAccessDenied,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				assert.ErrorIs(t, a, b)
				continue
			}
			assert.NotErrorIs(t, a, b)
		}
	}
}

func TestDomainError_ErrorsIsThroughWrap(t *testing.T) {
	wrapped := NewDomainError("insufficient_funds", "debit rejected", ErrInsufficientFunds)
	assert.ErrorIs(t, wrapped, ErrInsufficientFunds)
}
