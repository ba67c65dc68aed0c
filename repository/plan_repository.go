package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/adsphere/adsphere/models"
	"github.com/adsphere/adsphere/utils"
)

// PlanRepositoryImpl implements the PlanRepository interface
type PlanRepositoryImpl struct {
	*BaseRepository[models.Plan, models.PlanFilter]
}

// NewPlanRepository creates a new plan repository
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &PlanRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Plan, models.PlanFilter](db),
	}
}

// BySlug retrieves a plan by its slug
func (r *PlanRepositoryImpl) BySlug(ctx context.Context, slug string) (*models.Plan, error) {
	rows, err := r.ByFilter(ctx, models.PlanFilter{Slug: &slug}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// ListActive retrieves the active plans ordered for the public catalog
func (r *PlanRepositoryImpl) ListActive(ctx context.Context) ([]*models.Plan, error) {
	active := true
	return r.ByFilter(ctx, models.PlanFilter{IsActive: &active}, "sort_order ASC, price ASC", 0, 0)
}

// applyFilter applies filter criteria to a GORM query.
func (r *PlanRepositoryImpl) applyFilter(query *gorm.DB, filter models.PlanFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.Slug != nil {
		query = query.Where("slug = ?", *filter.Slug)
	}
	if filter.BillingInterval != nil {
		query = query.Where("billing_interval = ?", *filter.BillingInterval)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.PriceMin != nil {
		query = query.Where("price >= ?", *filter.PriceMin)
	}
	if filter.PriceMax != nil {
		query = query.Where("price <= ?", *filter.PriceMax)
	}
	return query
}

// ByFilter retrieves plans based on filter criteria
func (r *PlanRepositoryImpl) ByFilter(ctx context.Context, filter models.PlanFilter, orderBy string, limit, offset int) ([]*models.Plan, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Plan{}), filter)

	if orderBy == "" {
		orderBy = "sort_order ASC, id ASC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.Plan
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of plans matching the filter
func (r *PlanRepositoryImpl) Count(ctx context.Context, filter models.PlanFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Plan{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any plan matching the filter exists
func (r *PlanRepositoryImpl) Exists(ctx context.Context, filter models.PlanFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update updates a plan
func (r *PlanRepositoryImpl) Update(ctx context.Context, plan models.Plan) error {
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

	plan.UpdatedAt = utils.UTCNow()

	err = db.Save(&plan).Error
	if err != nil {
		return err
	}

	return nil
}

// Delete removes a plan row
func (r *PlanRepositoryImpl) Delete(ctx context.Context, id uint) error {
	db := r.getDB(ctx)
	return db.Delete(&models.Plan{}, id).Error
}
