package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New("LED_003", "Insufficient balance", http.StatusPaymentRequired),
			expected: "[LED_003] Insufficient balance",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap("SYS_001", "DB error", http.StatusInternalServerError, fmt.Errorf("connection refused")),
			expected: "[SYS_001] DB error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap("SYS_001", "wrapped", http.StatusInternalServerError, inner)

	assert.True(t, errors.Is(appErr, inner))
}

func TestAppError_IsNilUnwrap(t *testing.T) {
	appErr := New("LED_001", "test", http.StatusBadRequest)
	assert.Nil(t, appErr.Unwrap())
}

func TestLedgerErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"InvalidAmount", ErrInvalidAmount("must be positive"), "LED_001", 400},
		{"AccountNotFound", ErrAccountNotFound("tenant-1"), "LED_002", 404},
		{"InsufficientBalance", ErrInsufficientBalance(decimal.NewFromInt(150), decimal.NewFromInt(100)), "LED_003", 402},
		{"TransientContention", ErrTransientContention(fmt.Errorf("serialize")), "LED_004", 503},
		{"DuplicateReference", ErrDuplicateReference("order", "ORD-1"), "LED_005", 409},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestInsufficientBalance_ReportsShortfall(t *testing.T) {
	err := ErrInsufficientBalance(decimal.RequireFromString("150.00"), decimal.RequireFromString("100.00"))
	assert.Contains(t, err.Message, "150.00")
	assert.Contains(t, err.Message, "100.00")
}

func TestRemittanceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"NoEligibleShipments", ErrNoEligibleShipments("tenant-1"), "REM_001", 404},
		{"PayoutProvider", ErrPayoutProvider(fmt.Errorf("502 from provider")), "REM_002", 502},
		{"BatchNotFound", ErrBatchNotFound("b-1"), "REM_003", 404},
		{"InvalidBatchState", ErrInvalidBatchState("payout_completed", "draft"), "REM_004", 409},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestErrorCodeConstants(t *testing.T) {
	// The exported constants are the wire codes; drift here breaks every
	// caller that branches on a code.
	assert.Equal(t, "LED_001", CodeValidation)
	assert.Equal(t, "LED_002", CodeAccountNotFound)
	assert.Equal(t, "LED_003", CodeInsufficientBalance)
	assert.Equal(t, "LED_004", CodeTransientContention)
	assert.Equal(t, "LED_005", CodeDuplicateReference)
	assert.Equal(t, "REM_001", CodeNoEligibleShipments)
	assert.Equal(t, "REM_002", CodePayoutProvider)
	assert.Equal(t, "REM_003", CodeBatchNotFound)
	assert.Equal(t, "REM_004", CodeInvalidBatchState)
	assert.Equal(t, "HOOK_001", CodeWebhookVerification)
	assert.Equal(t, "SYS_001", CodeInternal)
	assert.Equal(t, "SYS_002", CodeRateLimit)

	assert.Equal(t, CodeNoEligibleShipments, ErrNoEligibleShipments("tenant-1").Code)
	assert.Equal(t, CodeInvalidBatchState, ErrInvalidBatchState("payout_completed", "draft").Code)
}

func TestWebhookAndSystemErrors(t *testing.T) {
	assert.Equal(t, "HOOK_001", ErrWebhookVerificationFailed().Code)
	assert.Equal(t, http.StatusUnauthorized, ErrWebhookVerificationFailed().HTTPStatus)

	dbErr := ErrDatabaseError(fmt.Errorf("broken pipe"))
	assert.Equal(t, "SYS_001", dbErr.Code)
	assert.True(t, errors.Is(dbErr, dbErr.Err))
}
