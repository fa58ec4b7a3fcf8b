package domain

import (
	"context"
	"errors"
)

type CreatePaymentRequest struct {
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	PaymentDate   string  `json:"payment_date" binding:"required"`
	PaymentMethod string  `json:"payment_method"`
	Reference     string  `json:"reference"`
	Notes         string  `json:"notes"`
}

// InvoicePayments is the payment history of one invoice together with the
// derived aggregates. Balance going to zero does not flip the invoice status
// by itself; marking an invoice paid stays an explicit action.
type InvoicePayments struct {
	Payments  []Payment `json:"payments"`
	TotalPaid float64   `json:"total_paid"`
	Balance   float64   `json:"balance"`
}

type Service interface {
	Create(ctx context.Context, invoiceID string, req CreatePaymentRequest) (Payment, error)
	ListByInvoice(ctx context.Context, invoiceID string) (InvoicePayments, error)
	// Balance returns totalAmount - totalPaid for an invoice.
	Balance(ctx context.Context, invoiceID string) (float64, error)
}

var (
	ErrInvalidPaymentDate = errors.New("invalid_payment_date")
)
