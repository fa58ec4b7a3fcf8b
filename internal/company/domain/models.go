// Package domain contains the company profile used on rendered invoices.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Company is the leasing company's own profile. There is exactly one row;
// invoice generation refuses to run without it.
type Company struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"type:text;not null" json:"name"`
	Address     string       `gorm:"type:text;not null;default:''" json:"address"`
	TIN         string       `gorm:"column:tin;type:text;not null;default:''" json:"tin"`
	Email       string       `gorm:"type:text;not null;default:''" json:"email"`
	Phone       string       `gorm:"type:text;not null;default:''" json:"phone"`
	BankDetails string       `gorm:"type:text;not null;default:''" json:"bank_details"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Company) TableName() string { return "companies" }
