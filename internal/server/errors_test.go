package server

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	clientdomain "github.com/suitedesk/suitedesk/internal/client/domain"
	companydomain "github.com/suitedesk/suitedesk/internal/company/domain"
	invoicedomain "github.com/suitedesk/suitedesk/internal/invoice/domain"
)

func TestMapErrorStatusCodes(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{invoicedomain.ErrExactlyOneTarget, http.StatusBadRequest},
		{invoicedomain.ErrInvalidUpToDate, http.StatusBadRequest},
		{clientdomain.ErrInvalidDateRange, http.StatusBadRequest},
		{clientdomain.ErrClientNotFound, http.StatusNotFound},
		{invoicedomain.ErrInvoiceNotFound, http.StatusNotFound},
		{invoicedomain.ErrInvalidTransition, http.StatusConflict},
		{invoicedomain.ErrBalanceOutstanding, http.StatusConflict},
		{invoicedomain.ErrGenerationBusy, http.StatusServiceUnavailable},
		{companydomain.ErrProfileMissing, http.StatusPreconditionFailed},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		status, _ := mapError(tc.err)
		assert.Equal(t, tc.want, status, "error %v", tc.err)
	}
}

func TestMapErrorValidationPayload(t *testing.T) {
	status, payload := mapError(newValidationError("id", "invalid_id", "invalid id"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_error", payload.Type)
	assert.Len(t, payload.Errors, 1)
	assert.Equal(t, "invalid_id", payload.Errors[0].Code)
}
