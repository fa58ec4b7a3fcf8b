// Package domain contains persistence models for leasing clients.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/suitedesk/suitedesk/internal/billing"
	"github.com/suitedesk/suitedesk/internal/civil"
	"gorm.io/datatypes"
)

// ClientStatus represents whether a client is currently leased.
type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "ACTIVE"
	ClientStatusInactive ClientStatus = "INACTIVE"
)

// Client represents a virtual-office tenant. RentalRate is the rate for one
// billing period, not a monthly rate scaled by the cadence.
type Client struct {
	ID                 snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name               string            `gorm:"type:text;not null" json:"name"`
	Email              string            `gorm:"type:text;not null;default:''" json:"email"`
	Phone              string            `gorm:"type:text;not null;default:''" json:"phone"`
	Address            string            `gorm:"type:text;not null;default:''" json:"address"`
	TIN                string            `gorm:"column:tin;type:text;not null;default:''" json:"tin"`
	RentalRate         float64           `gorm:"type:numeric(14,2);not null;default:0" json:"rental_rate"`
	VATInclusive       bool              `gorm:"not null;default:false" json:"vat_inclusive"`
	BillingTerms       billing.Cadence   `gorm:"type:text;not null;default:'MONTHLY'" json:"billing_terms"`
	CustomBillingTerms string            `gorm:"type:text;not null;default:''" json:"custom_billing_terms"`
	StartDate          time.Time         `gorm:"not null" json:"start_date"`
	EndDate            time.Time         `gorm:"not null" json:"end_date"`
	Status             ClientStatus      `gorm:"type:text;not null;default:'ACTIVE'" json:"status"`
	Metadata           datatypes.JSONMap `gorm:"type:jsonb;serializer:json;not null;default:'{}'" json:"metadata"`
	CreatedAt          time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Client) TableName() string { return "clients" }

// StartOn returns the inclusive contract start as a calendar date.
func (c Client) StartOn() civil.Date { return civil.DateOf(c.StartDate.UTC()) }

// EndOn returns the inclusive contract end as a calendar date.
func (c Client) EndOn() civil.Date { return civil.DateOf(c.EndDate.UTC()) }
