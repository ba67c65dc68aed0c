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

// MediaStatus is the numeric review status of a single campaign media.
// The codes are a wire contract shared with existing clients and must
// not be renumbered.
type MediaStatus int16

const (
	// MediaStatusPending is the default status for freshly attached media.
	MediaStatusPending MediaStatus = 0
	// MediaStatusApproved is set by an approving review decision.
	MediaStatusApproved MediaStatus = 1
	// MediaStatusNeedsChanges is set by a needs-changes review decision.
	MediaStatusNeedsChanges MediaStatus = 2
	// MediaStatusRejected is a legacy code kept for wire compatibility.
	// No current input produces it.
	MediaStatusRejected MediaStatus = 3
	// MediaStatusEdited marks media whose content was edited after review.
	MediaStatusEdited MediaStatus = 4
)

// Valid checks if the status is a known code
func (s MediaStatus) Valid() bool {
	return s >= MediaStatusPending && s <= MediaStatusEdited
}

// String returns a human readable label for the status
func (s MediaStatus) String() string {
	switch s {
	case MediaStatusPending:
		return "pending"
	case MediaStatusApproved:
		return "approved"
	case MediaStatusNeedsChanges:
		return "needs_changes"
	case MediaStatusRejected:
		return "rejected"
	case MediaStatusEdited:
		return "edited"
	default:
		return fmt.Sprintf("unknown(%d)", int16(s))
	}
}

// Scan implements the sql.Scanner interface for MediaStatus
func (s *MediaStatus) Scan(value any) error {
	if value == nil {
		*s = MediaStatusPending
		return nil
	}

	switch v := value.(type) {
	case int64:
		*s = MediaStatus(v)
	case []byte:
		var n int16
		if _, err := fmt.Sscanf(string(v), "%d", &n); err != nil {
			return fmt.Errorf("cannot scan %q into MediaStatus", string(v))
		}
		*s = MediaStatus(n)
	default:
		return fmt.Errorf("cannot scan %T into MediaStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for MediaStatus
func (s MediaStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid MediaStatus: %d", int16(s))
	}
	return int64(s), nil
}

// Media type constants
const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// FeedbackEntry is one reviewer feedback item in the append-only history.
type FeedbackEntry struct {
	Feedback  string    `json:"feedback"`
	Timestamp time.Time `json:"timestamp"`
}

// FeedbackHistory is the ordered, append-only list of reviewer feedback.
type FeedbackHistory []FeedbackEntry

// Value implements the driver.Valuer interface for FeedbackHistory
func (h FeedbackHistory) Value() (driver.Value, error) {
	if h == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(h)
}

// Scan implements the sql.Scanner interface for FeedbackHistory
func (h *FeedbackHistory) Scan(value any) error {
	if value == nil {
		*h = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into FeedbackHistory", value)
	}

	return json.Unmarshal(bytes, h)
}

// ChangeEntry is one prior-value record in the append-only change history.
type ChangeEntry struct {
	Field     string    `json:"field"`
	OldValue  string    `json:"old_value"`
	Timestamp time.Time `json:"timestamp"`
}

// ChangeHistory is the ordered, append-only list of prior field values.
type ChangeHistory []ChangeEntry

// Value implements the driver.Valuer interface for ChangeHistory
func (h ChangeHistory) Value() (driver.Value, error) {
	if h == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(h)
}

// Scan implements the sql.Scanner interface for ChangeHistory
func (h *ChangeHistory) Scan(value any) error {
	if value == nil {
		*h = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into ChangeHistory", value)
	}

	return json.Unmarshal(bytes, h)
}

// CampaignMedia represents a single file attached to a campaign, subject
// to independent review.
type CampaignMedia struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	UUID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uk_campaign_media_uuid" json:"uuid"`
	CampaignID uint            `gorm:"not null;index:idx_campaign_media_campaign_id;uniqueIndex:uk_campaign_media_file,priority:1" json:"campaign_id"`
	FileURL    string          `gorm:"type:text;not null;uniqueIndex:uk_campaign_media_file,priority:2" json:"file_url"`
	MediaType  string          `gorm:"size:10;not null" json:"media_type"`
	Details    *string         `gorm:"type:text" json:"details,omitempty"`
	Status     MediaStatus     `gorm:"type:smallint;not null;default:0;index:idx_campaign_media_status" json:"status"`
	Feedback   FeedbackHistory `gorm:"type:jsonb;not null;default:'[]'" json:"feedback"`
	OldValues  ChangeHistory   `gorm:"type:jsonb;not null;default:'[]'" json:"old_values"`
	CreatedAt  time.Time       `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_campaign_media_updated_at" json:"updated_at"`

	// Relations
	Campaign *Campaign `gorm:"foreignKey:CampaignID;references:ID;constraint:OnDelete:CASCADE" json:"campaign,omitempty"`
}

func (CampaignMedia) TableName() string {
	return "campaign_media"
}

// BeforeCreate is called before creating a new record
func (m *CampaignMedia) BeforeCreate(tx *gorm.DB) error {
	if m.UUID == uuid.Nil {
		m.UUID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = utils.UTCNow()
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (m *CampaignMedia) BeforeUpdate(tx *gorm.DB) error {
	m.UpdatedAt = utils.UTCNow()
	return nil
}

// IsImage reports whether the media is an image.
func (m *CampaignMedia) IsImage() bool {
	return m.MediaType == MediaTypeImage
}

// CampaignMediaFilter represents filter criteria for campaign media queries
type CampaignMediaFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	CampaignID    *uint
	FileURL       *string
	MediaType     *string
	Status        *MediaStatus
	UpdatedAfter  *time.Time
	UpdatedBefore *time.Time
}
