// Package domain contains persistence models for invoice payments.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Payment is one recorded payment against an invoice. Payments are manual
// records entered by staff; there is no payment-capture integration.
type Payment struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	InvoiceID     snowflake.ID `gorm:"not null;index" json:"invoice_id"`
	Amount        float64      `gorm:"type:numeric(14,2);not null" json:"amount"`
	PaymentDate   time.Time    `gorm:"not null" json:"payment_date"`
	PaymentMethod string       `gorm:"type:text;not null;default:''" json:"payment_method"`
	Reference     string       `gorm:"type:text;not null;default:''" json:"reference"`
	Notes         string       `gorm:"type:text;not null;default:''" json:"notes"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }
