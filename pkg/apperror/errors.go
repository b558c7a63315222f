package apperror

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// Stable error codes carried in API responses. Callers branching on a
// specific failure match on these instead of bare strings.
const (
	CodeValidation          = "LED_001"
	CodeAccountNotFound     = "LED_002"
	CodeInsufficientBalance = "LED_003"
	CodeTransientContention = "LED_004"
	CodeDuplicateReference  = "LED_005"
	CodeNoEligibleShipments = "REM_001"
	CodePayoutProvider      = "REM_002"
	CodeBatchNotFound       = "REM_003"
	CodeInvalidBatchState   = "REM_004"
	CodeWebhookVerification = "HOOK_001"
	CodeInternal            = "SYS_001"
	CodeRateLimit           = "SYS_002"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Wallet Ledger (LED) ----

func ErrInvalidAmount(detail string) *AppError {
	msg := "Invalid amount"
	if detail != "" {
		msg = fmt.Sprintf("Invalid amount: %s", detail)
	}
	return New(CodeValidation, msg, http.StatusBadRequest)
}

func ErrAccountNotFound(tenantID string) *AppError {
	return New(CodeAccountNotFound, fmt.Sprintf("Wallet account for tenant %s not found", tenantID), http.StatusNotFound)
}

// ErrInsufficientBalance reports the requested amount and the available
// balance so callers can see the shortfall.
func ErrInsufficientBalance(requested, available decimal.Decimal) *AppError {
	return New(CodeInsufficientBalance,
		fmt.Sprintf("Insufficient balance: requested %s, available %s", requested.StringFixed(2), available.StringFixed(2)),
		http.StatusPaymentRequired)
}

func ErrTransientContention(err error) *AppError {
	return Wrap(CodeTransientContention, "Concurrent update contention, retry with backoff", http.StatusServiceUnavailable, err)
}

func ErrDuplicateReference(referenceType, referenceID string) *AppError {
	return New(CodeDuplicateReference,
		fmt.Sprintf("Ledger entry for reference %s/%s already recorded", referenceType, referenceID),
		http.StatusConflict)
}

// ---- Remittance (REM) ----

func ErrNoEligibleShipments(tenantID string) *AppError {
	return New(CodeNoEligibleShipments, fmt.Sprintf("No eligible COD shipments to remit for tenant %s", tenantID), http.StatusNotFound)
}

func ErrPayoutProvider(err error) *AppError {
	return Wrap(CodePayoutProvider, "Payout provider rejected or failed to process the request", http.StatusBadGateway, err)
}

func ErrBatchNotFound(batchID string) *AppError {
	return New(CodeBatchNotFound, fmt.Sprintf("Remittance batch %s not found", batchID), http.StatusNotFound)
}

func ErrInvalidBatchState(current, wanted string) *AppError {
	return New(CodeInvalidBatchState,
		fmt.Sprintf("Remittance batch is %s, operation requires %s", current, wanted),
		http.StatusConflict)
}

// ---- Webhook (HOOK) ----

func ErrWebhookVerificationFailed() *AppError {
	return New(CodeWebhookVerification, "Webhook signature verification failed", http.StatusUnauthorized)
}

// ---- System & Infrastructure (SYS) ----

func ErrRateLimitExceeded() *AppError {
	return New(CodeRateLimit, "Rate limit exceeded, retry later", http.StatusTooManyRequests)
}

func ErrDatabaseError(err error) *AppError {
	return Wrap(CodeInternal, "Internal database error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap(CodeInternal, "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request-validation error in the LED_001 family.
func Validation(message string) *AppError {
	return New(CodeValidation, message, http.StatusBadRequest)
}
