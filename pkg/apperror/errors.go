package apperror

import (
	"fmt"
	"net/http"
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

// ---- Transaction input errors (TXN) ----
// Always caller-fixable; never retried.

func ErrInvalidAddress(which string) *AppError {
	return New("TXN_001", fmt.Sprintf("%s is not a valid address", which), http.StatusBadRequest)
}

func ErrInvalidAssetSpec(message string) *AppError {
	return New("TXN_002", message, http.StatusBadRequest)
}

func ErrInvalidAmount() *AppError {
	return New("TXN_003", "Value must be a positive decimal number", http.StatusBadRequest)
}

func ErrPrecisionExceeded() *AppError {
	return New("TXN_004", "Value has more fractional digits than the asset allows", http.StatusBadRequest)
}

func ErrTransactionNotFound() *AppError {
	return New("TXN_005", "Transaction not found", http.StatusNotFound)
}

// ---- Resolution errors (WAL) ----
// Caller-fixable; surfaced immediately.

func ErrUnknownWallet(address string) *AppError {
	return New("WAL_001", fmt.Sprintf("No key material for address %s", address), http.StatusBadRequest)
}

func ErrUnknownContract(contract string, err error) *AppError {
	return Wrap("WAL_002", fmt.Sprintf("Token contract %s could not be resolved", contract), http.StatusBadRequest, err)
}

// ---- Upstream errors (CHN) ----
// Not locally recoverable within the request.

func ErrBroadcastRejected(err error) *AppError {
	return Wrap("CHN_001", "Ledger rejected the transaction", http.StatusUnprocessableEntity, err)
}

func ErrSigningDenied(err error) *AppError {
	return Wrap("CHN_002", "Custody service refused to sign", http.StatusForbidden, err)
}

// ErrChainUnavailable covers network failures and timeouts talking to the
// ledger. No side effect occurred unless the broadcast-ambiguous condition
// was logged alongside, so callers may retry.
func ErrChainUnavailable(err error) *AppError {
	return Wrap("CHN_003", "Ledger network unavailable", http.StatusServiceUnavailable, err)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request-shape validation error.
func Validation(message string) *AppError {
	return New("TXN_003", message, http.StatusBadRequest)
}
