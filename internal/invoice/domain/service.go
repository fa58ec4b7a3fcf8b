package domain

import (
	"context"
	"errors"
)

// GenerateRequest targets either one client or every active client; exactly
// one of ClientID/AllClients must be set. UpToDate (YYYY-MM-DD) bounds which
// periods are materialized; IncludeFuture lifts the bound.
type GenerateRequest struct {
	ClientID          string `json:"client_id"`
	AllClients        bool   `json:"all_clients"`
	UpToDate          string `json:"up_to_date"`
	IncludeFuture     bool   `json:"include_future"`
	HasWithholdingTax bool   `json:"has_withholding_tax"`
}

// ClientGenerationResult is one client's slice of a generation batch. A
// failed client never aborts the rest of the batch.
type ClientGenerationResult struct {
	ClientID   string   `json:"client_id"`
	ClientName string   `json:"client_name"`
	Success    bool     `json:"success"`
	InvoiceIDs []string `json:"invoice_ids"`
	Error      string   `json:"error,omitempty"`
}

// GenerateResponse reports the whole run. Success is false when any client
// entry failed, so callers can surface partial failures without walking
// Results themselves.
type GenerateResponse struct {
	Success  bool                     `json:"success"`
	Message  string                   `json:"message"`
	Invoices []Invoice                `json:"invoices"`
	Results  []ClientGenerationResult `json:"results"`
}

type ListInvoicesRequest struct {
	ClientID string `form:"client_id"`
	Status   string `form:"status"`
}

type ListInvoicesResponse struct {
	Invoices []Invoice `json:"invoices"`
}

type BulkDeleteRequest struct {
	InvoiceIDs []string `json:"invoice_ids" binding:"required,min=1"`
}

type Service interface {
	List(ctx context.Context, req ListInvoicesRequest) (ListInvoicesResponse, error)
	GetByID(ctx context.Context, id string) (Invoice, error)
	// Generate runs the billing engine for the requested target(s).
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
	// UpdateStatus performs an explicit forward-only transition. PAID
	// additionally requires the balance to be settled.
	UpdateStatus(ctx context.Context, id string, target InvoiceStatus) (Invoice, error)
	// MarkOverdue flags PENDING/SENT invoices past their due date.
	MarkOverdue(ctx context.Context) (int, error)
	// RegenerateDocument re-renders the invoice file. Amounts never change.
	RegenerateDocument(ctx context.Context, id string) (Invoice, error)
	BulkDelete(ctx context.Context, req BulkDeleteRequest) (int, error)
}

var (
	ErrInvoiceNotFound    = errors.New("invoice_not_found")
	ErrExactlyOneTarget   = errors.New("exactly_one_of_client_id_or_all_clients")
	ErrInvalidUpToDate    = errors.New("invalid_up_to_date")
	ErrInvalidTransition  = errors.New("invalid_status_transition")
	ErrBalanceOutstanding = errors.New("balance_outstanding")
	ErrGenerationBusy     = errors.New("generation_already_running")
)
