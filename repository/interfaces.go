// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/adsphere/adsphere/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// UserRepository defines operations for users
type UserRepository interface {
	Repository[models.User, models.UserFilter]
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ByUUID(ctx context.Context, uuid string) (*models.User, error)
	UpdatePassword(ctx context.Context, userID uint, passwordHash string) error
	UpdateVerification(ctx context.Context, userID uint, verifiedAt time.Time) error
	UpdateLastLogin(ctx context.Context, userID uint, at time.Time) error
	UpdateBusinessInfo(ctx context.Context, user models.User) error
}

// UserSessionRepository defines operations for user sessions
type UserSessionRepository interface {
	Repository[models.UserSession, models.UserSessionFilter]
	BySessionToken(ctx context.Context, token string) (*models.UserSession, error)
	ByRefreshToken(ctx context.Context, token string) (*models.UserSession, error)
	ExpireSession(ctx context.Context, sessionID uint) error
	ExpireAllUserSessions(ctx context.Context, userID uint) error
	GetLatestByCorrelationID(ctx context.Context, correlationID uuid.UUID) (*models.UserSession, error)
}

// OTPVerificationRepository defines operations for OTP verifications
type OTPVerificationRepository interface {
	Repository[models.OTPVerification, models.OTPVerificationFilter]
	ByUserAndType(ctx context.Context, userID uint, otpType string) ([]*models.OTPVerification, error)
	ExpireOldOTPs(ctx context.Context, userID uint, otpType string) error
	Update(ctx context.Context, otp models.OTPVerification) error
}

// PlanRepository defines operations for subscription plans
type PlanRepository interface {
	Repository[models.Plan, models.PlanFilter]
	BySlug(ctx context.Context, slug string) (*models.Plan, error)
	ListActive(ctx context.Context) ([]*models.Plan, error)
	Update(ctx context.Context, plan models.Plan) error
	Delete(ctx context.Context, id uint) error
}

// SubscriptionRepository defines operations for subscriptions
type SubscriptionRepository interface {
	Repository[models.Subscription, models.SubscriptionFilter]
	ActiveByUser(ctx context.Context, userID uint) (*models.Subscription, error)
	CountLiveByPlan(ctx context.Context, planID uint) (int64, error)
	Update(ctx context.Context, subscription models.Subscription) error
}

// PaymentRepository defines operations for payments
type PaymentRepository interface {
	Repository[models.Payment, models.PaymentFilter]
	ByGatewayPayID(ctx context.Context, gatewayPayID string) (*models.Payment, error)
	ListWithRelations(ctx context.Context, filter models.PaymentFilter) ([]*models.Payment, int64, error)
	Stats(ctx context.Context, filter models.PaymentFilter) (*models.PaymentStats, error)
}

// CampaignRepository defines operations for campaigns
type CampaignRepository interface {
	Repository[models.Campaign, models.CampaignFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Campaign, error)
	ByUserID(ctx context.Context, userID uint, limit, offset int) ([]*models.Campaign, error)
	Update(ctx context.Context, campaign models.Campaign) error
	UpdateStatus(ctx context.Context, id uint, status models.CampaignStatus, at time.Time) error
	Delete(ctx context.Context, id uint) error
}

// CampaignMediaRepository defines operations for campaign media
type CampaignMediaRepository interface {
	Repository[models.CampaignMedia, models.CampaignMediaFilter]
	ByCampaignID(ctx context.Context, campaignID uint) ([]*models.CampaignMedia, error)
	ByCampaignAndFileURL(ctx context.Context, campaignID uint, fileURL string) (*models.CampaignMedia, error)
	Update(ctx context.Context, media models.CampaignMedia) error
	Delete(ctx context.Context, id uint) error
	DeleteByCampaignID(ctx context.Context, campaignID uint) error
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.AuditLog, error)
	ListByAction(ctx context.Context, action string, limit, offset int) ([]*models.AuditLog, error)
}
