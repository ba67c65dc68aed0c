// Package models contains domain entities and business models for the platform
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adsphere/adsphere/utils"
)

// User role constants, carried over from the legacy wire contract
const (
	RoleCustomer = 2
	RoleAdmin    = 8
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UUID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_users_uuid" json:"uuid"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"size:255;not null;uniqueIndex:idx_users_email" json:"email"`
	Mobile       *string   `gorm:"size:20;index:idx_users_mobile" json:"mobile,omitempty"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"` // Never serialize password hash
	Role         int       `gorm:"not null;default:2;index:idx_users_role" json:"role"`

	// Business profile (optional, filled via the business-info endpoint)
	CompanyName    *string `gorm:"size:120" json:"company_name,omitempty"`
	CompanyWebsite *string `gorm:"size:255" json:"company_website,omitempty"`
	Industry       *string `gorm:"size:120" json:"industry,omitempty"`
	CompanyAddress *string `gorm:"size:255" json:"company_address,omitempty"`

	// Status and verification
	IsVerified *bool `gorm:"default:false" json:"is_verified"`
	IsActive   *bool `gorm:"default:true;index:idx_users_is_active" json:"is_active"`

	CreatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_users_created_at" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
	VerifiedAt  *time.Time `json:"verified_at,omitempty"`
	LastLoginAt *time.Time `gorm:"index:idx_users_last_login_at" json:"last_login_at,omitempty"`

	// Relations
	Sessions      []UserSession     `gorm:"foreignKey:UserID" json:"-"`
	OTPs          []OTPVerification `gorm:"foreignKey:UserID" json:"-"`
	Subscriptions []Subscription    `gorm:"foreignKey:UserID" json:"subscriptions,omitempty"`
	Payments      []Payment         `gorm:"foreignKey:UserID" json:"-"`
	Campaigns     []Campaign        `gorm:"foreignKey:UserID" json:"-"`
	AuditLogs     []AuditLog        `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate is called before creating a new record
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UUID == uuid.Nil {
		u.UUID = uuid.New()
	}
	if u.Role == 0 {
		u.Role = RoleCustomer
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = utils.UTCNow()
	return nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsCustomer() bool {
	return u.Role == RoleCustomer
}

func (u *User) HasBusinessInfo() bool {
	return u.CompanyName != nil && *u.CompanyName != ""
}

// UserFilter represents filter criteria for user queries
type UserFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	Email         *string
	Mobile        *string
	Role          *int
	IsVerified    *bool
	IsActive      *bool
	Search        *string // Matches name, email, company name
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
