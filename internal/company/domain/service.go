package domain

import (
	"context"
	"errors"
)

type UpdateCompanyRequest struct {
	Name        string `json:"name" binding:"required"`
	Address     string `json:"address"`
	TIN         string `json:"tin"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	BankDetails string `json:"bank_details"`
}

type Service interface {
	Get(ctx context.Context) (Company, error)
	Upsert(ctx context.Context, req UpdateCompanyRequest) (Company, error)
}

var (
	// ErrProfileMissing aborts any operation that needs company details on
	// an invoice before partial work happens.
	ErrProfileMissing = errors.New("company_profile_missing")
)
