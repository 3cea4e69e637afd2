package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	e := New("TXN_001", "address_from is not a valid address", http.StatusBadRequest)
	assert.Equal(t, "[TXN_001] address_from is not a valid address", e.Error())
}

func TestAppError_ErrorWithWrapped(t *testing.T) {
	inner := errors.New("dial tcp: connection refused")
	e := ErrChainUnavailable(inner)
	assert.Contains(t, e.Error(), "CHN_003")
	assert.Contains(t, e.Error(), "connection refused")
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("insufficient funds for gas")
	e := ErrBroadcastRejected(inner)
	assert.ErrorIs(t, e, inner)
}

func TestAppError_ErrorsAs(t *testing.T) {
	var appErr *AppError
	err := fmt.Errorf("handler: %w", ErrUnknownWallet("0xabc"))
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WAL_001", appErr.Code)
}

func TestErrorHTTPStatuses(t *testing.T) {
	cases := []struct {
		err    *AppError
		status int
	}{
		{ErrInvalidAddress("address_to"), http.StatusBadRequest},
		{ErrInvalidAssetSpec("contract_address is required for tokens"), http.StatusBadRequest},
		{ErrInvalidAmount(), http.StatusBadRequest},
		{ErrPrecisionExceeded(), http.StatusBadRequest},
		{ErrTransactionNotFound(), http.StatusNotFound},
		{ErrUnknownWallet("0xabc"), http.StatusBadRequest},
		{ErrUnknownContract("0xdef", nil), http.StatusBadRequest},
		{ErrBroadcastRejected(nil), http.StatusUnprocessableEntity},
		{ErrSigningDenied(nil), http.StatusForbidden},
		{ErrChainUnavailable(nil), http.StatusServiceUnavailable},
		{ErrRateLimitExceeded(), http.StatusTooManyRequests},
		{InternalError(nil), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.HTTPStatus, tc.err.Code)
	}
}
