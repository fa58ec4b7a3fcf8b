package domain

import (
	"context"
	"errors"

	"github.com/suitedesk/suitedesk/pkg/db/pagination"
)

type ListClientsRequest struct {
	pagination.Pagination
	Status string `form:"status"`
}

type ListClientsResponse struct {
	pagination.PageInfo
	Clients []Client `json:"clients"`
}

// CreateClientRequest carries client fields with dates as YYYY-MM-DD.
type CreateClientRequest struct {
	Name               string  `json:"name" binding:"required"`
	Email              string  `json:"email"`
	Phone              string  `json:"phone"`
	Address            string  `json:"address"`
	TIN                string  `json:"tin"`
	RentalRate         float64 `json:"rental_rate" binding:"required,gt=0"`
	VATInclusive       bool    `json:"vat_inclusive"`
	BillingTerms       string  `json:"billing_terms"`
	CustomBillingTerms string  `json:"custom_billing_terms"`
	StartDate          string  `json:"start_date" binding:"required"`
	EndDate            string  `json:"end_date" binding:"required"`
}

type UpdateClientRequest struct {
	Name               *string  `json:"name"`
	Email              *string  `json:"email"`
	Phone              *string  `json:"phone"`
	Address            *string  `json:"address"`
	TIN                *string  `json:"tin"`
	RentalRate         *float64 `json:"rental_rate"`
	VATInclusive       *bool    `json:"vat_inclusive"`
	BillingTerms       *string  `json:"billing_terms"`
	CustomBillingTerms *string  `json:"custom_billing_terms"`
	StartDate          *string  `json:"start_date"`
	EndDate            *string  `json:"end_date"`
	Status             *string  `json:"status"`
}

type Service interface {
	List(ctx context.Context, req ListClientsRequest) (ListClientsResponse, error)
	GetByID(ctx context.Context, id string) (Client, error)
	Create(ctx context.Context, req CreateClientRequest) (Client, error)
	// BulkCreate imports many clients in one all-or-nothing transaction.
	BulkCreate(ctx context.Context, reqs []CreateClientRequest) ([]Client, error)
	Update(ctx context.Context, id string, req UpdateClientRequest) (Client, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrClientNotFound   = errors.New("client_not_found")
	ErrInvalidDateRange = errors.New("invalid_date_range")
	ErrInvalidPageToken = errors.New("invalid_page_token")
)
