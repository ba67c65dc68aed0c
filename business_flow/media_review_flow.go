// Package businessflow contains the core business logic and use cases for the media review workflow
package businessflow

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/adsphere/adsphere/app/dto"
	"github.com/adsphere/adsphere/app/services"
	"github.com/adsphere/adsphere/models"
	"github.com/adsphere/adsphere/repository"
	"github.com/adsphere/adsphere/utils"
)

// Review decision values accepted from reviewers
const (
	DecisionApproved     = "approved"
	DecisionNeedsChanges = "needs_changes"
)

// MediaReviewFlow records review decisions on campaign media, maintains
// the append-only feedback and change histories, and derives the
// aggregate campaign status from the statuses of all its media.
type MediaReviewFlow interface {
	SubmitReview(ctx context.Context, req *dto.SubmitReviewRequest, metadata *ClientMetadata) (*dto.SubmitReviewResponse, error)
	EditMedia(ctx context.Context, req *dto.EditMediaRequest, metadata *ClientMetadata) (*dto.EditMediaResponse, error)
	DeleteMedia(ctx context.Context, req *dto.DeleteMediaRequest, metadata *ClientMetadata) (*dto.DeleteMediaResponse, error)
	DeleteCampaignCascade(ctx context.Context, req *dto.DeleteCampaignRequest, metadata *ClientMetadata) (*dto.DeleteCampaignResponse, error)
}

// MediaReviewFlowImpl implements the media review business flow
type MediaReviewFlowImpl struct {
	mediaRepo    repository.CampaignMediaRepository
	campaignRepo repository.CampaignRepository
	auditRepo    repository.AuditLogRepository
	fileStore    services.FileStore
	db           *gorm.DB
}

// NewMediaReviewFlow creates a new media review flow instance
func NewMediaReviewFlow(
	mediaRepo repository.CampaignMediaRepository,
	campaignRepo repository.CampaignRepository,
	auditRepo repository.AuditLogRepository,
	fileStore services.FileStore,
	db *gorm.DB,
) MediaReviewFlow {
	return &MediaReviewFlowImpl{
		mediaRepo:    mediaRepo,
		campaignRepo: campaignRepo,
		auditRepo:    auditRepo,
		fileStore:    fileStore,
		db:           db,
	}
}

// withTx runs fn inside a database transaction. Without a database handle
// (engine tests run against in-memory stores) fn runs directly.
func (s *MediaReviewFlowImpl) withTx(ctx context.Context, fn func(context.Context) error) error {
	if s.db == nil {
		return fn(ctx)
	}
	return repository.WithTransaction(ctx, s.db, fn)
}

// decisionStatus maps a review decision to its wire status code.
func decisionStatus(decision string) (models.MediaStatus, error) {
	switch decision {
	case DecisionApproved:
		return models.MediaStatusApproved, nil
	case DecisionNeedsChanges:
		return models.MediaStatusNeedsChanges, nil
	default:
		return 0, ErrUnknownDecision
	}
}

// SubmitReview records a reviewer's decision on one media item, appends
// optional feedback to the media's history, and recomputes the owning
// campaign's aggregate status. The media and campaign writes share one
// transaction.
func (s *MediaReviewFlowImpl) SubmitReview(ctx context.Context, req *dto.SubmitReviewRequest, metadata *ClientMetadata) (*dto.SubmitReviewResponse, error) {
	if req == nil {
		return nil, NewBusinessError(CodeInvalidInput, "request is required", nil)
	}

	newStatus, err := decisionStatus(req.Decision)
	if err != nil {
		return nil, NewBusinessError(CodeInvalidInput, fmt.Sprintf("decision must be %q or %q", DecisionApproved, DecisionNeedsChanges), err)
	}

	media, err := s.mediaRepo.ByID(ctx, req.MediaID)
	if err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to load media", err)
	}
	if media == nil {
		return nil, NewBusinessError(CodeNotFound, "campaign media not found", ErrMediaNotFound)
	}

	campaign, err := s.campaignRepo.ByID(ctx, media.CampaignID)
	if err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to load campaign", err)
	}
	if campaign == nil {
		return nil, NewBusinessError(CodeNotFound, "campaign not found", ErrCampaignNotFound)
	}

	resp := &dto.SubmitReviewResponse{
		MediaID:        media.ID,
		CampaignID:     campaign.ID,
		MediaStatus:    int16(newStatus),
		CampaignStatus: int16(campaign.Status),
	}

	err = s.withTx(ctx, func(txCtx context.Context) error {
		now := utils.UTCNow()

		media.Status = newStatus
		if req.Feedback != nil && *req.Feedback != "" {
			media.Feedback = append(media.Feedback, models.FeedbackEntry{
				Feedback:  *req.Feedback,
				Timestamp: now,
			})
		}
		if err := s.mediaRepo.Update(txCtx, *media); err != nil {
			return NewBusinessError(CodeStorageFailure, "failed to update media", err)
		}

		derived, changed, err := s.recomputeCampaignStatus(txCtx, campaign.ID)
		if err != nil {
			return err
		}
		if changed {
			resp.CampaignStatus = int16(derived)
		}
		resp.CampaignStatusChanged = changed
		return nil
	})
	if err != nil {
		errMsg := err.Error()
		_ = createAuditLog(ctx, s.auditRepo, nil, models.AuditActionMediaReviewed,
			fmt.Sprintf("Review of media %d failed", req.MediaID), false, &errMsg, metadata)
		return nil, err
	}

	_ = createAuditLog(ctx, s.auditRepo, nil, models.AuditActionMediaReviewed,
		fmt.Sprintf("Media %d reviewed: %s", media.ID, req.Decision), true, nil, metadata)

	return resp, nil
}

// recomputeCampaignStatus derives the campaign status from all its media.
// Needs-changes on any media wins; otherwise all-approved (with at least
// one media) yields approved. In every other case no status is written and
// the campaign keeps whatever it had. The recomputation is idempotent and
// writes no history.
func (s *MediaReviewFlowImpl) recomputeCampaignStatus(ctx context.Context, campaignID uint) (models.CampaignStatus, bool, error) {
	mediaList, err := s.mediaRepo.ByCampaignID(ctx, campaignID)
	if err != nil {
		return 0, false, NewBusinessError(CodeStorageFailure, "failed to list campaign media", err)
	}

	hasNeedsChanges := false
	allApproved := len(mediaList) > 0
	for _, m := range mediaList {
		if m.Status == models.MediaStatusNeedsChanges {
			hasNeedsChanges = true
			break
		}
		if m.Status != models.MediaStatusApproved {
			allApproved = false
		}
	}

	var derived models.CampaignStatus
	switch {
	case hasNeedsChanges:
		derived = models.CampaignStatusNeedsChanges
	case allApproved:
		derived = models.CampaignStatusApproved
	default:
		derived = models.CampaignStatusUnderReview
	}

	// Only a positive derived status is written back. A campaign with no
	// media, or a mixed pending/approved set, keeps its previous status.
	if derived <= models.CampaignStatusUnderReview {
		return derived, false, nil
	}

	if err := s.campaignRepo.UpdateStatus(ctx, campaignID, derived, utils.UTCNow()); err != nil {
		return 0, false, NewBusinessError(CodeStorageFailure, "failed to update campaign status", err)
	}
	return derived, true, nil
}

// EditMedia updates media content fields. Changes to file URL and details
// are recorded in the prior-value history before overwriting; the media
// type is replaced without history. The edit forces both the media and the
// owning campaign into the edited status, overriding any rollup outcome.
func (s *MediaReviewFlowImpl) EditMedia(ctx context.Context, req *dto.EditMediaRequest, metadata *ClientMetadata) (*dto.EditMediaResponse, error) {
	if req == nil {
		return nil, NewBusinessError(CodeInvalidInput, "request is required", nil)
	}
	if req.FileURL == nil && req.Details == nil && req.MediaType == nil {
		return nil, NewBusinessError(CodeInvalidInput, "at least one field must be provided", ErrNoEditableFields)
	}
	if req.MediaType != nil && *req.MediaType != models.MediaTypeImage && *req.MediaType != models.MediaTypeVideo {
		return nil, NewBusinessError(CodeInvalidInput, "media type must be image or video", ErrInvalidMediaType)
	}

	media, err := s.mediaRepo.ByID(ctx, req.MediaID)
	if err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to load media", err)
	}
	if media == nil {
		return nil, NewBusinessError(CodeNotFound, "campaign media not found", ErrMediaNotFound)
	}

	err = s.withTx(ctx, func(txCtx context.Context) error {
		now := utils.UTCNow()

		if req.FileURL != nil && *req.FileURL != media.FileURL {
			media.OldValues = append(media.OldValues, models.ChangeEntry{
				Field:     "file_url",
				OldValue:  media.FileURL,
				Timestamp: now,
			})
			media.FileURL = *req.FileURL
		}
		if req.Details != nil {
			oldDetails := ""
			if media.Details != nil {
				oldDetails = *media.Details
			}
			if *req.Details != oldDetails {
				media.OldValues = append(media.OldValues, models.ChangeEntry{
					Field:     "details",
					OldValue:  oldDetails,
					Timestamp: now,
				})
				media.Details = req.Details
			}
		}
		// The media type carries no history.
		if req.MediaType != nil {
			media.MediaType = *req.MediaType
		}

		media.Status = models.MediaStatusEdited
		if err := s.mediaRepo.Update(txCtx, *media); err != nil {
			return NewBusinessError(CodeStorageFailure, "failed to update media", err)
		}

		// A human edit always forces re-review of the whole campaign.
		if err := s.campaignRepo.UpdateStatus(txCtx, media.CampaignID, models.CampaignStatusEdited, now); err != nil {
			return NewBusinessError(CodeStorageFailure, "failed to update campaign status", err)
		}
		return nil
	})
	if err != nil {
		errMsg := err.Error()
		_ = createAuditLog(ctx, s.auditRepo, nil, models.AuditActionMediaEdited,
			fmt.Sprintf("Edit of media %d failed", req.MediaID), false, &errMsg, metadata)
		return nil, err
	}

	_ = createAuditLog(ctx, s.auditRepo, nil, models.AuditActionMediaEdited,
		fmt.Sprintf("Media %d edited", media.ID), true, nil, metadata)

	return &dto.EditMediaResponse{
		MediaID:        media.ID,
		MediaStatus:    int16(media.Status),
		CampaignID:     media.CampaignID,
		CampaignStatus: int16(models.CampaignStatusEdited),
	}, nil
}

// DeleteMedia removes the media row and best-effort deletes the physical
// file. The row removal is authoritative; a failed file deletion is
// reported as a warning, never rolled back.
func (s *MediaReviewFlowImpl) DeleteMedia(ctx context.Context, req *dto.DeleteMediaRequest, metadata *ClientMetadata) (*dto.DeleteMediaResponse, error) {
	if req == nil {
		return nil, NewBusinessError(CodeInvalidInput, "request is required", nil)
	}

	media, err := s.mediaRepo.ByID(ctx, req.MediaID)
	if err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to load media", err)
	}
	if media == nil {
		return nil, NewBusinessError(CodeNotFound, "campaign media not found", ErrMediaNotFound)
	}

	warning := s.cleanupFile(ctx, media.FileURL, metadata)

	if err := s.mediaRepo.Delete(ctx, media.ID); err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to delete media", err)
	}

	_ = createAuditLog(ctx, s.auditRepo, nil, models.AuditActionMediaDeleted,
		fmt.Sprintf("Media %d deleted", media.ID), true, nil, metadata)

	return &dto.DeleteMediaResponse{
		MediaID: media.ID,
		Warning: warning,
	}, nil
}

// DeleteCampaignCascade removes a campaign together with all its media
// rows, attempting physical deletion for each file. Safe to re-run.
func (s *MediaReviewFlowImpl) DeleteCampaignCascade(ctx context.Context, req *dto.DeleteCampaignRequest, metadata *ClientMetadata) (*dto.DeleteCampaignResponse, error) {
	if req == nil {
		return nil, NewBusinessError(CodeInvalidInput, "request is required", nil)
	}

	campaign, err := s.campaignRepo.ByID(ctx, req.CampaignID)
	if err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to load campaign", err)
	}
	if campaign == nil {
		return nil, NewBusinessError(CodeNotFound, "campaign not found", ErrCampaignNotFound)
	}
	if !req.RequesterIsAdmin && campaign.UserID != req.RequesterID {
		return nil, NewBusinessError(CodeForbidden, "campaign belongs to another user", ErrCampaignAccessDenied)
	}

	mediaList, err := s.mediaRepo.ByCampaignID(ctx, campaign.ID)
	if err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to list campaign media", err)
	}

	var warnings []string
	for _, m := range mediaList {
		if w := s.cleanupFile(ctx, m.FileURL, metadata); w != nil {
			warnings = append(warnings, *w)
		}
	}

	err = s.withTx(ctx, func(txCtx context.Context) error {
		if err := s.mediaRepo.DeleteByCampaignID(txCtx, campaign.ID); err != nil {
			return NewBusinessError(CodeStorageFailure, "failed to delete campaign media", err)
		}
		if err := s.campaignRepo.Delete(txCtx, campaign.ID); err != nil {
			return NewBusinessError(CodeStorageFailure, "failed to delete campaign", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = createAuditLog(ctx, s.auditRepo, nil, models.AuditActionCampaignDeleted,
		fmt.Sprintf("Campaign %d deleted with %d media", campaign.ID, len(mediaList)), true, nil, metadata)

	return &dto.DeleteCampaignResponse{
		CampaignID:   campaign.ID,
		RemovedMedia: len(mediaList),
		Warnings:     warnings,
	}, nil
}

// cleanupFile best-effort deletes a physical file. A missing file is not
// an error; a failed deletion produces a warning and an audit entry.
func (s *MediaReviewFlowImpl) cleanupFile(ctx context.Context, path string, metadata *ClientMetadata) *string {
	if s.fileStore == nil || path == "" {
		return nil
	}
	if !s.fileStore.Exists(path) {
		return nil
	}
	if err := s.fileStore.Delete(path); err != nil {
		warning := fmt.Sprintf("%s: %s: %v", CodeFileCleanupFailure, path, err)
		errMsg := err.Error()
		_ = createAuditLog(ctx, s.auditRepo, nil, models.AuditActionFileCleanupIssue,
			fmt.Sprintf("Failed to delete file %s", path), false, &errMsg, metadata)
		return &warning
	}
	return nil
}
