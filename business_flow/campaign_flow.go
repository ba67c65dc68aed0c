// Package businessflow contains the core business logic and use cases for campaign workflows
package businessflow

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/adsphere/adsphere/app/dto"
	"github.com/adsphere/adsphere/models"
	"github.com/adsphere/adsphere/repository"
	"github.com/adsphere/adsphere/utils"
)

// CampaignFlow handles the campaign business logic
type CampaignFlow interface {
	CreateCampaign(ctx context.Context, req *dto.CreateCampaignRequest, metadata *ClientMetadata) (*dto.CampaignResponse, error)
	UpdateCampaign(ctx context.Context, req *dto.UpdateCampaignRequest, metadata *ClientMetadata) (*dto.CampaignResponse, error)
	GetCampaign(ctx context.Context, campaignID, requesterID uint, requesterIsAdmin bool) (*dto.CampaignResponse, error)
	ListCampaigns(ctx context.Context, req *dto.ListCampaignsRequest, metadata *ClientMetadata) (*dto.ListCampaignsResponse, error)
	UpsertCampaignMedia(ctx context.Context, req *dto.UpsertCampaignMediaRequest, metadata *ClientMetadata) (*dto.UpsertCampaignMediaResponse, error)
}

// CampaignFlowImpl implements the campaign business flow
type CampaignFlowImpl struct {
	campaignRepo     repository.CampaignRepository
	mediaRepo        repository.CampaignMediaRepository
	userRepo         repository.UserRepository
	planRepo         repository.PlanRepository
	subscriptionRepo repository.SubscriptionRepository
	auditRepo        repository.AuditLogRepository
	db               *gorm.DB
}

// NewCampaignFlow creates a new campaign flow instance
func NewCampaignFlow(
	campaignRepo repository.CampaignRepository,
	mediaRepo repository.CampaignMediaRepository,
	userRepo repository.UserRepository,
	planRepo repository.PlanRepository,
	subscriptionRepo repository.SubscriptionRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) CampaignFlow {
	return &CampaignFlowImpl{
		campaignRepo:     campaignRepo,
		mediaRepo:        mediaRepo,
		userRepo:         userRepo,
		planRepo:         planRepo,
		subscriptionRepo: subscriptionRepo,
		auditRepo:        auditRepo,
		db:               db,
	}
}

// CreateCampaign creates a campaign for the authenticated user. The campaign
// starts under review and must fit inside the plan's campaign allowance.
func (s *CampaignFlowImpl) CreateCampaign(ctx context.Context, req *dto.CreateCampaignRequest, metadata *ClientMetadata) (*dto.CampaignResponse, error) {
	if req == nil {
		return nil, NewBusinessError(CodeInvalidInput, "request is required", nil)
	}
	if !req.EndsAt.After(req.StartsAt) {
		return nil, NewBusinessError(CodeInvalidInput, "campaign end must be after start", ErrEndBeforeStart)
	}

	user, err := getUser(ctx, s.userRepo, req.UserID)
	if err != nil {
		return nil, NewBusinessError(CodeNotFound, "user not found", err)
	}

	sub, err := s.subscriptionRepo.ActiveByUser(ctx, user.ID)
	if err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to check subscription", err)
	}
	if sub == nil {
		return nil, NewBusinessError(CodeInvalidInput, "an active subscription is required", ErrNoActiveSubscription)
	}

	plan, err := s.planRepo.ByID(ctx, sub.PlanID)
	if err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to load plan", err)
	}
	if plan == nil {
		return nil, NewBusinessError(CodeNotFound, "plan not found", ErrPlanNotFound)
	}

	count, err := s.campaignRepo.Count(ctx, models.CampaignFilter{UserID: &user.ID})
	if err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to count campaigns", err)
	}
	if plan.MaxCampaigns > 0 && count >= int64(plan.MaxCampaigns) {
		return nil, NewBusinessErrorf(CodeInvalidInput, "plan allows at most %d campaigns", ErrCampaignLimitReached, plan.MaxCampaigns)
	}

	campaign := models.Campaign{
		UserID:    user.ID,
		PlanID:    plan.ID,
		Name:      req.Name,
		Target:    req.Target,
		Budget:    req.Budget,
		Objective: req.Objective,
		Details:   req.Details,
		StartsAt:  utils.TimeToUTC(req.StartsAt),
		EndsAt:    utils.TimeToUTC(req.EndsAt),
		Status:    models.CampaignStatusUnderReview,
		UpdatedBy: user.ID,
	}

	if err := s.campaignRepo.Save(ctx, &campaign); err != nil {
		errMsg := err.Error()
		_ = createAuditLog(ctx, s.auditRepo, &user.ID, models.AuditActionCampaignCreated,
			"Campaign creation failed", false, &errMsg, metadata)
		return nil, NewBusinessError(CodeStorageFailure, "failed to create campaign", err)
	}

	_ = createAuditLog(ctx, s.auditRepo, &user.ID, models.AuditActionCampaignCreated,
		fmt.Sprintf("Campaign %d created", campaign.ID), true, nil, metadata)

	resp := ToCampaignDTO(campaign)
	return &resp, nil
}

// UpdateCampaign lets the owner edit campaign fields. Review status is not
// touched here; content changes on media go through the review flow.
func (s *CampaignFlowImpl) UpdateCampaign(ctx context.Context, req *dto.UpdateCampaignRequest, metadata *ClientMetadata) (*dto.CampaignResponse, error) {
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
	if campaign.UserID != req.UserID {
		return nil, NewBusinessError(CodeForbidden, "campaign belongs to another user", ErrCampaignAccessDenied)
	}

	if req.Name != nil {
		campaign.Name = *req.Name
	}
	if req.Target != nil {
		campaign.Target = req.Target
	}
	if req.Budget != nil {
		campaign.Budget = *req.Budget
	}
	if req.Objective != nil {
		campaign.Objective = req.Objective
	}
	if req.Details != nil {
		campaign.Details = req.Details
	}
	if req.StartsAt != nil {
		campaign.StartsAt = utils.TimeToUTC(*req.StartsAt)
	}
	if req.EndsAt != nil {
		campaign.EndsAt = utils.TimeToUTC(*req.EndsAt)
	}
	if !campaign.EndsAt.After(campaign.StartsAt) {
		return nil, NewBusinessError(CodeInvalidInput, "campaign end must be after start", ErrEndBeforeStart)
	}
	campaign.UpdatedBy = req.UserID

	if err := s.campaignRepo.Update(ctx, *campaign); err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to update campaign", err)
	}

	_ = createAuditLog(ctx, s.auditRepo, &req.UserID, models.AuditActionCampaignUpdated,
		fmt.Sprintf("Campaign %d updated", campaign.ID), true, nil, metadata)

	resp := ToCampaignDTO(*campaign)
	return &resp, nil
}

// GetCampaign returns one campaign with its media. Owners see their own
// campaigns, admins see all.
func (s *CampaignFlowImpl) GetCampaign(ctx context.Context, campaignID, requesterID uint, requesterIsAdmin bool) (*dto.CampaignResponse, error) {
	campaign, err := s.campaignRepo.ByID(ctx, campaignID)
	if err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to load campaign", err)
	}
	if campaign == nil {
		return nil, NewBusinessError(CodeNotFound, "campaign not found", ErrCampaignNotFound)
	}
	if !requesterIsAdmin && campaign.UserID != requesterID {
		return nil, NewBusinessError(CodeForbidden, "campaign belongs to another user", ErrCampaignAccessDenied)
	}

	resp := ToCampaignDTO(*campaign)
	return &resp, nil
}

// ListCampaigns returns a page of campaigns. Non-admin requesters are
// always scoped to their own campaigns.
func (s *CampaignFlowImpl) ListCampaigns(ctx context.Context, req *dto.ListCampaignsRequest, metadata *ClientMetadata) (*dto.ListCampaignsResponse, error) {
	if req == nil {
		return nil, NewBusinessError(CodeInvalidInput, "request is required", nil)
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	filter := models.CampaignFilter{}
	if !req.RequesterIsAdmin {
		filter.UserID = &req.RequesterID
	} else if req.UserID != nil {
		filter.UserID = req.UserID
	}
	if req.Status != nil {
		status := models.CampaignStatus(*req.Status)
		if !status.Valid() {
			return nil, NewBusinessErrorf(CodeInvalidInput, "unknown campaign status %d", nil, *req.Status)
		}
		filter.Status = &status
	}
	if req.Search != nil {
		filter.Name = req.Search
	}

	total, err := s.campaignRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to count campaigns", err)
	}

	campaigns, err := s.campaignRepo.ByFilter(ctx, filter, "created_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to list campaigns", err)
	}

	items := make([]dto.CampaignResponse, 0, len(campaigns))
	for _, c := range campaigns {
		items = append(items, ToCampaignDTO(*c))
	}

	return &dto.ListCampaignsResponse{
		Items:      items,
		Pagination: dto.NewPaginationDTO(page, pageSize, total),
	}, nil
}

// UpsertCampaignMedia bulk-attaches media descriptors to a campaign keyed
// on (campaign_id, file_url): unknown files insert as pending, known files
// only refresh type and details.
func (s *CampaignFlowImpl) UpsertCampaignMedia(ctx context.Context, req *dto.UpsertCampaignMediaRequest, metadata *ClientMetadata) (*dto.UpsertCampaignMediaResponse, error) {
	if req == nil || len(req.Items) == 0 {
		return nil, NewBusinessError(CodeInvalidInput, "at least one media item is required", nil)
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

	for _, item := range req.Items {
		if item.FileURL == "" {
			return nil, NewBusinessError(CodeInvalidInput, "file_url is required for every media item", nil)
		}
		if item.MediaType != models.MediaTypeImage && item.MediaType != models.MediaTypeVideo {
			return nil, NewBusinessError(CodeInvalidInput, "media type must be image or video", ErrInvalidMediaType)
		}
	}

	resp := &dto.UpsertCampaignMediaResponse{CampaignID: campaign.ID}

	err = s.runInTx(ctx, func(txCtx context.Context) error {
		for _, item := range req.Items {
			existing, err := s.mediaRepo.ByCampaignAndFileURL(txCtx, campaign.ID, item.FileURL)
			if err != nil {
				return NewBusinessError(CodeStorageFailure, "failed to look up media", err)
			}
			if existing == nil {
				media := models.CampaignMedia{
					CampaignID: campaign.ID,
					FileURL:    item.FileURL,
					MediaType:  item.MediaType,
					Details:    item.Details,
					Status:     models.MediaStatusPending,
				}
				if err := s.mediaRepo.Save(txCtx, &media); err != nil {
					return NewBusinessError(CodeStorageFailure, "failed to insert media", err)
				}
				resp.Created++
				continue
			}

			existing.MediaType = item.MediaType
			existing.Details = item.Details
			if err := s.mediaRepo.Update(txCtx, *existing); err != nil {
				return NewBusinessError(CodeStorageFailure, "failed to update media", err)
			}
			resp.Updated++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = createAuditLog(ctx, s.auditRepo, &req.RequesterID, models.AuditActionCampaignUpdated,
		fmt.Sprintf("Campaign %d media upsert: %d created, %d updated", campaign.ID, resp.Created, resp.Updated), true, nil, metadata)

	return resp, nil
}

func (s *CampaignFlowImpl) runInTx(ctx context.Context, fn func(context.Context) error) error {
	if s.db == nil {
		return fn(ctx)
	}
	return repository.WithTransaction(ctx, s.db, fn)
}

// ToCampaignDTO converts a campaign model to its response DTO
func ToCampaignDTO(campaign models.Campaign) dto.CampaignResponse {
	resp := dto.CampaignResponse{
		ID:          campaign.ID,
		UUID:        campaign.UUID.String(),
		UserID:      campaign.UserID,
		PlanID:      campaign.PlanID,
		Name:        campaign.Name,
		Target:      campaign.Target,
		Budget:      campaign.Budget,
		Spent:       campaign.Spent,
		LeadCount:   campaign.LeadCount,
		Objective:   campaign.Objective,
		Details:     campaign.Details,
		StartsAt:    campaign.StartsAt.Format(timeFormat),
		EndsAt:      campaign.EndsAt.Format(timeFormat),
		Status:      int16(campaign.Status),
		StatusLabel: campaign.Status.String(),
		UpdatedBy:   campaign.UpdatedBy,
		CreatedAt:   campaign.CreatedAt.Format(timeFormat),
		UpdatedAt:   campaign.UpdatedAt.Format(timeFormat),
	}
	for _, m := range campaign.Media {
		resp.Media = append(resp.Media, ToCampaignMediaDTO(m))
	}
	return resp
}

// ToCampaignMediaDTO converts a media model to its response DTO
func ToCampaignMediaDTO(media models.CampaignMedia) dto.CampaignMediaResponse {
	resp := dto.CampaignMediaResponse{
		ID:          media.ID,
		UUID:        media.UUID.String(),
		CampaignID:  media.CampaignID,
		FileURL:     media.FileURL,
		MediaType:   media.MediaType,
		Details:     media.Details,
		Status:      int16(media.Status),
		StatusLabel: media.Status.String(),
		UpdatedAt:   media.UpdatedAt.Format(timeFormat),
	}
	for _, f := range media.Feedback {
		resp.Feedback = append(resp.Feedback, dto.FeedbackEntryDTO{
			Feedback:  f.Feedback,
			Timestamp: f.Timestamp.Format(timeFormat),
		})
	}
	for _, c := range media.OldValues {
		resp.OldValues = append(resp.OldValues, dto.ChangeEntryDTO{
			Field:     c.Field,
			OldValue:  c.OldValue,
			Timestamp: c.Timestamp.Format(timeFormat),
		})
	}
	return resp
}
