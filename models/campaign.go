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

// CampaignStatus is the numeric campaign status. The codes are a wire
// contract shared with existing clients and must not be renumbered.
type CampaignStatus int16

const (
	// CampaignStatusUnderReview is the default status on creation.
	CampaignStatusUnderReview CampaignStatus = 0
	// CampaignStatusApproved is set when every media of the campaign is approved.
	CampaignStatusApproved CampaignStatus = 1
	// CampaignStatusUnderReviewExplicit marks a campaign explicitly put back under review.
	CampaignStatusUnderReviewExplicit CampaignStatus = 2
	// CampaignStatusNeedsChanges is set when any media needs changes.
	CampaignStatusNeedsChanges CampaignStatus = 3
	// CampaignStatusEdited marks a campaign whose media was edited and must be re-reviewed.
	CampaignStatusEdited CampaignStatus = 4
)

// Valid checks if the status is a known code
func (s CampaignStatus) Valid() bool {
	return s >= CampaignStatusUnderReview && s <= CampaignStatusEdited
}

// String returns a human readable label for the status
func (s CampaignStatus) String() string {
	switch s {
	case CampaignStatusUnderReview, CampaignStatusUnderReviewExplicit:
		return "under_review"
	case CampaignStatusApproved:
		return "approved"
	case CampaignStatusNeedsChanges:
		return "needs_changes"
	case CampaignStatusEdited:
		return "edited"
	default:
		return fmt.Sprintf("unknown(%d)", int16(s))
	}
}

// Scan implements the sql.Scanner interface for CampaignStatus
func (s *CampaignStatus) Scan(value any) error {
	if value == nil {
		*s = CampaignStatusUnderReview
		return nil
	}

	switch v := value.(type) {
	case int64:
		*s = CampaignStatus(v)
	case []byte:
		var n int16
		if _, err := fmt.Sscanf(string(v), "%d", &n); err != nil {
			return fmt.Errorf("cannot scan %q into CampaignStatus", string(v))
		}
		*s = CampaignStatus(n)
	default:
		return fmt.Errorf("cannot scan %T into CampaignStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for CampaignStatus
func (s CampaignStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid CampaignStatus: %d", int16(s))
	}
	return int64(s), nil
}

// Campaign represents an advertising campaign submitted by a user.
type Campaign struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UUID      uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uk_campaigns_uuid" json:"uuid"`
	UserID    uint           `gorm:"not null;index:idx_campaigns_user_id" json:"user_id"`
	PlanID    uint           `gorm:"not null;index:idx_campaigns_plan_id" json:"plan_id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Target    *string        `gorm:"type:text" json:"target,omitempty"`
	Budget    float64        `gorm:"type:numeric(14,2);not null;default:0" json:"budget"`
	Spent     float64        `gorm:"type:numeric(14,2);not null;default:0" json:"spent"`
	LeadCount int            `gorm:"not null;default:0" json:"lead_count"`
	Objective *string        `gorm:"size:120" json:"objective,omitempty"`
	Details   *string        `gorm:"type:text" json:"details,omitempty"`
	StartsAt  time.Time      `gorm:"not null;index:idx_campaigns_starts_at" json:"starts_at"`
	EndsAt    time.Time      `gorm:"not null" json:"ends_at"`
	Status    CampaignStatus `gorm:"type:smallint;not null;default:0;index:idx_campaigns_status" json:"status"`
	UpdatedBy uint           `gorm:"not null" json:"updated_by"`
	CreatedAt time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_campaigns_created_at" json:"created_at"`
	UpdatedAt time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	// Relations
	User  *User           `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	Plan  *Plan           `gorm:"foreignKey:PlanID;references:ID" json:"plan,omitempty"`
	Media []CampaignMedia `gorm:"foreignKey:CampaignID" json:"media,omitempty"`
}

func (Campaign) TableName() string {
	return "campaigns"
}

// BeforeCreate is called before creating a new record
func (c *Campaign) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	if c.UpdatedBy == 0 {
		c.UpdatedBy = c.UserID
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (c *Campaign) BeforeUpdate(tx *gorm.DB) error {
	c.UpdatedAt = utils.UTCNow()
	return nil
}

// IsUnderReview reports whether the campaign sits in either under-review code.
func (c *Campaign) IsUnderReview() bool {
	return c.Status == CampaignStatusUnderReview || c.Status == CampaignStatusUnderReviewExplicit
}

// CampaignFilter represents filter criteria for campaign queries
type CampaignFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	UserID        *uint
	PlanID        *uint
	Status        *CampaignStatus
	Name          *string
	StartsAfter   *time.Time
	StartsBefore  *time.Time
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	Page          int
	PageSize      int
}
