package pdf

import (
	"context"
	"io"
)

// InvoiceDocument carries the already-formatted strings the renderer lays
// out. Formatting (dates, currency) happens in the caller; this package only
// does layout.
type InvoiceDocument struct {
	CompanyName    string
	CompanyAddress string
	CompanyTIN     string
	CompanyEmail   string
	CompanyPhone   string
	BankDetails    string

	InvoiceNumber string
	IssueDate     string
	DueDate       string
	BillingPeriod string

	ClientName    string
	ClientAddress string
	ClientTIN     string

	Description string
	BaseAmount  string
	VATAmount   string
	TotalAmount string
	Withholding string
	NetAmount   string
}

type Provider interface {
	RenderInvoice(ctx context.Context, doc InvoiceDocument) (io.Reader, error)
}

// NoOpProvider renders nothing; used when document output is disabled.
type NoOpProvider struct{}

func (p *NoOpProvider) RenderInvoice(ctx context.Context, doc InvoiceDocument) (io.Reader, error) {
	return nil, nil
}
