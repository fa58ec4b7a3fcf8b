// Package domain contains persistence models for invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/suitedesk/suitedesk/internal/billing"
	"github.com/suitedesk/suitedesk/internal/civil"
	"gorm.io/datatypes"
)

// InvoiceStatus represents invoice lifecycle states. Status only moves
// forward: PENDING → SENT → PAID, with OVERDUE reachable from PENDING/SENT.
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "PENDING"
	InvoiceStatusSent    InvoiceStatus = "SENT"
	InvoiceStatusPaid    InvoiceStatus = "PAID"
	InvoiceStatusOverdue InvoiceStatus = "OVERDUE"
)

// rank orders the forward-only lifecycle. OVERDUE sits beside SENT: an
// overdue invoice can still be paid, but a paid one can never go overdue.
func (s InvoiceStatus) rank() int {
	switch s {
	case InvoiceStatusPending:
		return 0
	case InvoiceStatusSent, InvoiceStatusOverdue:
		return 1
	case InvoiceStatusPaid:
		return 2
	default:
		return -1
	}
}

// CanTransition reports whether moving to target is a legal forward step.
func (s InvoiceStatus) CanTransition(target InvoiceStatus) bool {
	if s.rank() < 0 || target.rank() < 0 {
		return false
	}
	if s == target {
		return false
	}
	return target.rank() >= s.rank()
}

// Invoice represents a generated invoice for one billing period. Amount
// fields are immutable after creation; regeneration replaces only the
// rendered file.
type Invoice struct {
	ID                 snowflake.ID      `gorm:"primaryKey" json:"id"`
	InvoiceNumber      string            `gorm:"type:text;not null;uniqueIndex:ux_invoices_number" json:"invoice_number"`
	ClientID           snowflake.ID      `gorm:"not null;index;uniqueIndex:ux_invoices_client_period,priority:1" json:"client_id"`
	Amount             float64           `gorm:"type:numeric(14,2);not null" json:"amount"`
	VATAmount          float64           `gorm:"column:vat_amount;type:numeric(14,2);not null" json:"vat_amount"`
	TotalAmount        float64           `gorm:"type:numeric(14,2);not null" json:"total_amount"`
	WithholdingTax     float64           `gorm:"type:numeric(14,2);not null;default:0" json:"withholding_tax"`
	NetAmount          float64           `gorm:"type:numeric(14,2);not null" json:"net_amount"`
	HasWithholdingTax  bool              `gorm:"not null;default:false" json:"has_withholding_tax"`
	BillingPeriodStart time.Time         `gorm:"not null;uniqueIndex:ux_invoices_client_period,priority:2" json:"billing_period_start"`
	BillingPeriodEnd   time.Time         `gorm:"not null;uniqueIndex:ux_invoices_client_period,priority:3" json:"billing_period_end"`
	DueDate            time.Time         `gorm:"not null" json:"due_date"`
	Status             InvoiceStatus     `gorm:"type:text;not null;default:'PENDING'" json:"status"`
	FilePath           string            `gorm:"type:text;not null;default:''" json:"file_path"`
	Metadata           datatypes.JSONMap `gorm:"type:jsonb;serializer:json;not null;default:'{}'" json:"metadata"`
	CreatedAt          time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// Period returns the invoice's billing period as calendar dates.
func (i Invoice) Period() billing.Period {
	return billing.Period{
		Start: civil.DateOf(i.BillingPeriodStart.UTC()),
		End:   civil.DateOf(i.BillingPeriodEnd.UTC()),
	}
}

// DueOn returns the due date as a calendar date.
func (i Invoice) DueOn() civil.Date { return civil.DateOf(i.DueDate.UTC()) }
