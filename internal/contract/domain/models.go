// Package domain contains persistence models for lease contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/suitedesk/suitedesk/internal/civil"
)

// ContractStatus represents contract lifecycle states.
type ContractStatus string

const (
	ContractStatusActive     ContractStatus = "ACTIVE"
	ContractStatusExpired    ContractStatus = "EXPIRED"
	ContractStatusTerminated ContractStatus = "TERMINATED"
)

// Contract represents a signed lease. When a client has an active contract,
// its dates govern billing-period generation instead of the client's own.
type Contract struct {
	ID             snowflake.ID   `gorm:"primaryKey" json:"id"`
	ClientID       snowflake.ID   `gorm:"not null;index" json:"client_id"`
	ContractNumber string         `gorm:"type:text;not null;uniqueIndex:ux_contracts_number" json:"contract_number"`
	StartDate      time.Time      `gorm:"not null" json:"start_date"`
	EndDate        time.Time      `gorm:"not null" json:"end_date"`
	Status         ContractStatus `gorm:"type:text;not null;default:'ACTIVE'" json:"status"`
	FilePath       string         `gorm:"type:text;not null;default:''" json:"file_path"`
	CreatedAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Contract) TableName() string { return "contracts" }

// StartOn returns the inclusive contract start as a calendar date.
func (c Contract) StartOn() civil.Date { return civil.DateOf(c.StartDate.UTC()) }

// EndOn returns the inclusive contract end as a calendar date.
func (c Contract) EndOn() civil.Date { return civil.DateOf(c.EndDate.UTC()) }
