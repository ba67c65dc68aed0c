package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/adsphere/adsphere/models"
	"github.com/adsphere/adsphere/utils"
)

// CampaignMediaRepositoryImpl implements the CampaignMediaRepository interface
type CampaignMediaRepositoryImpl struct {
	*BaseRepository[models.CampaignMedia, models.CampaignMediaFilter]
}

// NewCampaignMediaRepository creates a new campaign media repository
func NewCampaignMediaRepository(db *gorm.DB) CampaignMediaRepository {
	return &CampaignMediaRepositoryImpl{
		BaseRepository: NewBaseRepository[models.CampaignMedia, models.CampaignMediaFilter](db),
	}
}

// ByCampaignID retrieves all media rows belonging to a campaign
func (r *CampaignMediaRepositoryImpl) ByCampaignID(ctx context.Context, campaignID uint) ([]*models.CampaignMedia, error) {
	filter := models.CampaignMediaFilter{CampaignID: &campaignID}
	return r.ByFilter(ctx, filter, "id ASC", 0, 0)
}

// ByCampaignAndFileURL retrieves the media row keyed on (campaign_id, file_url)
func (r *CampaignMediaRepositoryImpl) ByCampaignAndFileURL(ctx context.Context, campaignID uint, fileURL string) (*models.CampaignMedia, error) {
	db := r.getDB(ctx)

	var media models.CampaignMedia
	err := db.Where("campaign_id = ? AND file_url = ?", campaignID, fileURL).
		Last(&media).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &media, nil
}

// applyFilter applies filter criteria to a GORM query.
func (r *CampaignMediaRepositoryImpl) applyFilter(query *gorm.DB, filter models.CampaignMediaFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.CampaignID != nil {
		query = query.Where("campaign_id = ?", *filter.CampaignID)
	}
	if filter.FileURL != nil {
		query = query.Where("file_url = ?", *filter.FileURL)
	}
	if filter.MediaType != nil {
		query = query.Where("media_type = ?", *filter.MediaType)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.UpdatedAfter != nil {
		query = query.Where("updated_at > ?", *filter.UpdatedAfter)
	}
	if filter.UpdatedBefore != nil {
		query = query.Where("updated_at < ?", *filter.UpdatedBefore)
	}
	return query
}

// ByFilter retrieves media rows based on filter criteria
func (r *CampaignMediaRepositoryImpl) ByFilter(ctx context.Context, filter models.CampaignMediaFilter, orderBy string, limit, offset int) ([]*models.CampaignMedia, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.CampaignMedia{}), filter)

	if orderBy == "" {
		orderBy = "id ASC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.CampaignMedia
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of media rows matching the filter
func (r *CampaignMediaRepositoryImpl) Count(ctx context.Context, filter models.CampaignMediaFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.CampaignMedia{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any media row matching the filter exists
func (r *CampaignMediaRepositoryImpl) Exists(ctx context.Context, filter models.CampaignMediaFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update updates a media row
func (r *CampaignMediaRepositoryImpl) Update(ctx context.Context, media models.CampaignMedia) error {
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

	media.UpdatedAt = utils.UTCNow()

	err = db.Omit("Campaign").Save(&media).Error
	if err != nil {
		return err
	}

	return nil
}

// Delete removes a media row
func (r *CampaignMediaRepositoryImpl) Delete(ctx context.Context, id uint) error {
	db := r.getDB(ctx)
	return db.Delete(&models.CampaignMedia{}, id).Error
}

// DeleteByCampaignID removes all media rows of a campaign
func (r *CampaignMediaRepositoryImpl) DeleteByCampaignID(ctx context.Context, campaignID uint) error {
	db := r.getDB(ctx)
	return db.Where("campaign_id = ?", campaignID).
		Delete(&models.CampaignMedia{}).Error
}
