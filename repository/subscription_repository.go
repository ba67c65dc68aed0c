package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/adsphere/adsphere/models"
	"github.com/adsphere/adsphere/utils"
)

// SubscriptionRepositoryImpl implements the SubscriptionRepository interface
type SubscriptionRepositoryImpl struct {
	*BaseRepository[models.Subscription, models.SubscriptionFilter]
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &SubscriptionRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Subscription, models.SubscriptionFilter](db),
	}
}

// ActiveByUser retrieves the user's currently live subscription, if any
func (r *SubscriptionRepositoryImpl) ActiveByUser(ctx context.Context, userID uint) (*models.Subscription, error) {
	db := r.getDB(ctx)

	now := utils.UTCNow()
	var sub models.Subscription
	err := db.Preload("Plan").
		Where("user_id = ? AND status = ? AND starts_at <= ? AND ends_at > ?",
			userID, models.SubscriptionStatusActive, now, now).
		Order("ends_at DESC").
		First(&sub).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// CountLiveByPlan counts active in-period subscriptions on a plan
func (r *SubscriptionRepositoryImpl) CountLiveByPlan(ctx context.Context, planID uint) (int64, error) {
	db := r.getDB(ctx)

	now := utils.UTCNow()
	var count int64
	err := db.Model(&models.Subscription{}).
		Where("plan_id = ? AND status = ? AND ends_at > ?", planID, models.SubscriptionStatusActive, now).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter criteria to a GORM query.
func (r *SubscriptionRepositoryImpl) applyFilter(query *gorm.DB, filter models.SubscriptionFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.PlanID != nil {
		query = query.Where("plan_id = ?", *filter.PlanID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.StartsAfter != nil {
		query = query.Where("starts_at > ?", *filter.StartsAfter)
	}
	if filter.StartsBefore != nil {
		query = query.Where("starts_at < ?", *filter.StartsBefore)
	}
	if filter.EndsAfter != nil {
		query = query.Where("ends_at > ?", *filter.EndsAfter)
	}
	if filter.EndsBefore != nil {
		query = query.Where("ends_at < ?", *filter.EndsBefore)
	}
	return query
}

// ByFilter retrieves subscriptions based on filter criteria
func (r *SubscriptionRepositoryImpl) ByFilter(ctx context.Context, filter models.SubscriptionFilter, orderBy string, limit, offset int) ([]*models.Subscription, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Subscription{}).Preload("User").Preload("Plan"), filter)

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

	var rows []*models.Subscription
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of subscriptions matching the filter
func (r *SubscriptionRepositoryImpl) Count(ctx context.Context, filter models.SubscriptionFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Subscription{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any subscription matching the filter exists
func (r *SubscriptionRepositoryImpl) Exists(ctx context.Context, filter models.SubscriptionFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update updates a subscription
func (r *SubscriptionRepositoryImpl) Update(ctx context.Context, subscription models.Subscription) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	subscription.UpdatedAt = utils.UTCNow()

	err = db.Save(&subscription).Error
	if err != nil {
		return err
	}

	return nil
}
