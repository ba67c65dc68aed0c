package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/adsphere/adsphere/models"
	"github.com/adsphere/adsphere/utils"
)

// OTPVerificationRepositoryImpl implements the OTPVerificationRepository interface
type OTPVerificationRepositoryImpl struct {
	*BaseRepository[models.OTPVerification, models.OTPVerificationFilter]
}

// NewOTPVerificationRepository creates a new OTP verification repository
func NewOTPVerificationRepository(db *gorm.DB) OTPVerificationRepository {
	return &OTPVerificationRepositoryImpl{
		BaseRepository: NewBaseRepository[models.OTPVerification, models.OTPVerificationFilter](db),
	}
}

// applyFilter applies filter criteria to a GORM query.
func (r *OTPVerificationRepositoryImpl) applyFilter(query *gorm.DB, filter models.OTPVerificationFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.OTPType != nil {
		query = query.Where("otp_type = ?", *filter.OTPType)
	}
	if filter.TargetValue != nil {
		query = query.Where("target_value = ?", *filter.TargetValue)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	if filter.ExpiresAfter != nil {
		query = query.Where("expires_at > ?", *filter.ExpiresAfter)
	}
	if filter.ExpiresBefore != nil {
		query = query.Where("expires_at < ?", *filter.ExpiresBefore)
	}
	if filter.IsActive != nil && *filter.IsActive {
		query = query.Where("status = ? AND expires_at > ?", models.OTPStatusPending, utils.UTCNow())
	}
	return query
}

// ByFilter retrieves OTP verifications based on filter criteria
func (r *OTPVerificationRepositoryImpl) ByFilter(ctx context.Context, filter models.OTPVerificationFilter, orderBy string, limit, offset int) ([]*models.OTPVerification, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.OTPVerification{}), filter)

	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.OTPVerification
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of OTP verifications matching the filter
func (r *OTPVerificationRepositoryImpl) Count(ctx context.Context, filter models.OTPVerificationFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.OTPVerification{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any OTP verification matching the filter exists
func (r *OTPVerificationRepositoryImpl) Exists(ctx context.Context, filter models.OTPVerificationFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ByUserAndType retrieves OTP verifications for a user filtered by type
func (r *OTPVerificationRepositoryImpl) ByUserAndType(ctx context.Context, userID uint, otpType string) ([]*models.OTPVerification, error) {
	filter := models.OTPVerificationFilter{UserID: &userID, OTPType: &otpType}
	return r.ByFilter(ctx, filter, "created_at DESC", 0, 0)
}

// ExpireOldOTPs marks all pending OTPs of a given type expired
func (r *OTPVerificationRepositoryImpl) ExpireOldOTPs(ctx context.Context, userID uint, otpType string) error {
	db := r.getDB(ctx)
	return db.Model(&models.OTPVerification{}).
		Where("user_id = ? AND otp_type = ? AND status = ?", userID, otpType, models.OTPStatusPending).
		Update("status", models.OTPStatusExpired).Error
}

// Update persists a modified OTP verification record
func (r *OTPVerificationRepositoryImpl) Update(ctx context.Context, otp models.OTPVerification) error {
	db := r.getDB(ctx)
	return db.Save(&otp).Error
}
