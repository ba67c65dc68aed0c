// Package models contains domain entities and business models for the platform
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/adsphere/adsphere/utils"
)

// Billing interval constants
const (
	BillingIntervalMonthly = "monthly"
	BillingIntervalYearly  = "yearly"
)

// Plan represents a subscription plan in the public catalog.
type Plan struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UUID            uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uk_plans_uuid" json:"uuid"`
	Name            string         `gorm:"size:120;not null" json:"name"`
	Slug            string         `gorm:"size:120;not null;uniqueIndex:uk_plans_slug" json:"slug"`
	Description     *string        `gorm:"type:text" json:"description,omitempty"`
	Price           float64        `gorm:"type:numeric(12,2);not null" json:"price"`
	Currency        string         `gorm:"size:3;not null;default:'USD'" json:"currency"`
	BillingInterval string         `gorm:"size:10;not null;default:'monthly'" json:"billing_interval"`
	Features        pq.StringArray `gorm:"type:text[]" json:"features"`
	Platforms       pq.StringArray `gorm:"type:text[]" json:"platforms"`
	MaxCampaigns    int            `gorm:"not null;default:1" json:"max_campaigns"`
	IsActive        *bool          `gorm:"default:true;index:idx_plans_is_active" json:"is_active"`
	SortOrder       int            `gorm:"not null;default:0;index:idx_plans_sort_order" json:"sort_order"`
	CreatedAt       time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	// Relations
	Subscriptions []Subscription `gorm:"foreignKey:PlanID" json:"-"`
}

func (Plan) TableName() string {
	return "plans"
}

// BeforeCreate is called before creating a new record
func (p *Plan) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == uuid.Nil {
		p.UUID = uuid.New()
	}
	if p.Currency == "" {
		p.Currency = utils.DefaultCurrency
	}
	if p.BillingInterval == "" {
		p.BillingInterval = BillingIntervalMonthly
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (p *Plan) BeforeUpdate(tx *gorm.DB) error {
	p.UpdatedAt = utils.UTCNow()
	return nil
}

// PlanFilter represents filter criteria for plan queries
type PlanFilter struct {
	ID              *uint
	UUID            *uuid.UUID
	Slug            *string
	BillingInterval *string
	IsActive        *bool
	PriceMin        *float64
	PriceMax        *float64
}
