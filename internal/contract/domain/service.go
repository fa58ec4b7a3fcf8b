package domain

import (
	"context"
	"errors"
)

type CreateContractRequest struct {
	ClientID  string `json:"client_id" binding:"required"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	FilePath  string `json:"file_path"`
}

type ListContractsResponse struct {
	Contracts []Contract `json:"contracts"`
}

type Service interface {
	List(ctx context.Context) (ListContractsResponse, error)
	ListByClient(ctx context.Context, clientID string) (ListContractsResponse, error)
	GetByID(ctx context.Context, id string) (Contract, error)
	// Create allocates the next VO-SA-{year}-NNN number and stores the
	// contract as ACTIVE.
	Create(ctx context.Context, req CreateContractRequest) (Contract, error)
	UpdateStatus(ctx context.Context, id string, status ContractStatus) (Contract, error)
	// LatestActive returns the most recent active contract for a client, or
	// nil when the client has none.
	LatestActive(ctx context.Context, clientID string) (*Contract, error)
}

var (
	ErrContractNotFound = errors.New("contract_not_found")
	ErrInvalidDateRange = errors.New("invalid_contract_date_range")
	ErrInvalidStatus    = errors.New("invalid_contract_status")
)
