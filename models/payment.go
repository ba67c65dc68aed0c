// Package models contains domain entities and business models for the platform
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adsphere/adsphere/utils"
)

// PaymentStatus represents the status of a recorded payment
type PaymentStatus string

const (
	PaymentStatusCreated  PaymentStatus = "created"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// String returns the string representation of the status
func (s PaymentStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusCreated, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for PaymentStatus
func (s *PaymentStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = PaymentStatus(v)
	case []byte:
		*s = PaymentStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into PaymentStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for PaymentStatus
func (s PaymentStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid PaymentStatus: %s", s)
	}
	return string(s), nil
}

// Payment records a gateway payment. The gateway payload is stored verbatim
// and treated as trusted input; no signature verification happens here.
type Payment struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UUID            uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uk_payments_uuid" json:"uuid"`
	UserID          uint            `gorm:"not null;index:idx_payments_user_id" json:"user_id"`
	PlanID          uint            `gorm:"not null;index:idx_payments_plan_id" json:"plan_id"`
	GatewayPayID    string          `gorm:"size:120;not null;uniqueIndex:uk_payments_gateway_pay_id" json:"gateway_pay_id"`
	GatewayOrderID  *string         `gorm:"size:120;index:idx_payments_gateway_order_id" json:"gateway_order_id,omitempty"`
	Amount          float64         `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency        string          `gorm:"size:3;not null;default:'USD'" json:"currency"`
	Status          PaymentStatus   `gorm:"size:10;not null;default:'created';index:idx_payments_status" json:"status"`
	TransactionDate time.Time       `gorm:"not null;index:idx_payments_transaction_date" json:"transaction_date"`
	GatewayPayload  json.RawMessage `gorm:"type:jsonb" json:"gateway_payload,omitempty"`
	CreatedAt       time.Time       `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_payments_created_at" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	// Relations
	User *User `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	Plan *Plan `gorm:"foreignKey:PlanID;references:ID" json:"plan,omitempty"`
}

func (Payment) TableName() string {
	return "payments"
}

// BeforeCreate is called before creating a new record
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == uuid.Nil {
		p.UUID = uuid.New()
	}
	if p.Currency == "" {
		p.Currency = utils.DefaultCurrency
	}
	if p.Status == "" {
		p.Status = PaymentStatusCreated
	}
	if p.TransactionDate.IsZero() {
		p.TransactionDate = utils.UTCNow()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (p *Payment) BeforeUpdate(tx *gorm.DB) error {
	p.UpdatedAt = utils.UTCNow()
	return nil
}

// PlanRevenue is a revenue aggregate for a single plan
type PlanRevenue struct {
	PlanID   uint    `json:"plan_id"`
	PlanName string  `json:"plan_name"`
	Revenue  float64 `json:"revenue"`
	Count    int64   `json:"count"`
}

// PaymentStats aggregates payment figures for the admin dashboard
type PaymentStats struct {
	TotalRevenue  float64          `json:"total_revenue"`
	TotalCount    int64            `json:"total_count"`
	CountByStatus map[string]int64 `json:"count_by_status"`
	RevenueByPlan []PlanRevenue    `json:"revenue_by_plan"`
}

// PaymentFilter represents filter criteria for payment queries
type PaymentFilter struct {
	ID           *uint
	UUID         *uuid.UUID
	UserID       *uint
	PlanID       *uint
	Status       *PaymentStatus
	GatewayPayID *string
	Search       *string // Matches gateway pay/order id
	DateAfter    *time.Time
	DateBefore   *time.Time
	Page         int
	PageSize     int
}
