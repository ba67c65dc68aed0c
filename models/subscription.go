// Package models contains domain entities and business models for the platform
package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adsphere/adsphere/utils"
)

// SubscriptionStatus represents the lifecycle state of a subscription
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

// String returns the string representation of the status
func (s SubscriptionStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubscriptionStatusActive, SubscriptionStatusExpired, SubscriptionStatusCancelled:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for SubscriptionStatus
func (s *SubscriptionStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = SubscriptionStatus(v)
	case []byte:
		*s = SubscriptionStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into SubscriptionStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for SubscriptionStatus
func (s SubscriptionStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid SubscriptionStatus: %s", s)
	}
	return string(s), nil
}

// Subscription links a user to a plan for a billing period.
type Subscription struct {
	ID        uint               `gorm:"primaryKey" json:"id"`
	UUID      uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:uk_subscriptions_uuid" json:"uuid"`
	UserID    uint               `gorm:"not null;index:idx_subscriptions_user_id" json:"user_id"`
	PlanID    uint               `gorm:"not null;index:idx_subscriptions_plan_id" json:"plan_id"`
	Status    SubscriptionStatus `gorm:"size:12;not null;default:'active';index:idx_subscriptions_status" json:"status"`
	StartsAt  time.Time          `gorm:"not null;index:idx_subscriptions_starts_at" json:"starts_at"`
	EndsAt    time.Time          `gorm:"not null;index:idx_subscriptions_ends_at" json:"ends_at"`
	CreatedAt time.Time          `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time          `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	// Relations
	User *User `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	Plan *Plan `gorm:"foreignKey:PlanID;references:ID" json:"plan,omitempty"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// BeforeCreate is called before creating a new record
func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.UUID == uuid.Nil {
		s.UUID = uuid.New()
	}
	if s.Status == "" {
		s.Status = SubscriptionStatusActive
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (s *Subscription) BeforeUpdate(tx *gorm.DB) error {
	s.UpdatedAt = utils.UTCNow()
	return nil
}

// IsLive reports whether the subscription is active and inside its period.
func (s *Subscription) IsLive() bool {
	now := utils.UTCNow()
	return s.Status == SubscriptionStatusActive && now.After(s.StartsAt) && now.Before(s.EndsAt)
}

// SubscriptionFilter represents filter criteria for subscription queries
type SubscriptionFilter struct {
	ID           *uint
	UUID         *uuid.UUID
	UserID       *uint
	PlanID       *uint
	Status       *SubscriptionStatus
	StartsAfter  *time.Time
	StartsBefore *time.Time
	EndsAfter    *time.Time
	EndsBefore   *time.Time
}
