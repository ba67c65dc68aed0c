package businessflow

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/adsphere/adsphere/app/dto"
	"github.com/adsphere/adsphere/config"
	"github.com/adsphere/adsphere/models"
	"github.com/adsphere/adsphere/repository"
	"github.com/adsphere/adsphere/utils"
)

// PlanFlow handles the plan catalog business logic
type PlanFlow interface {
	ListPlans(ctx context.Context) (*dto.ListPlansResponse, error)
	ListAllPlans(ctx context.Context) (*dto.ListPlansResponse, error)
	GetPlan(ctx context.Context, slug string) (*dto.PlanResponse, error)
	CreatePlan(ctx context.Context, req *dto.CreatePlanRequest, adminID uint, metadata *ClientMetadata) (*dto.PlanResponse, error)
	UpdatePlan(ctx context.Context, req *dto.UpdatePlanRequest, adminID uint, metadata *ClientMetadata) (*dto.PlanResponse, error)
	DeletePlan(ctx context.Context, planID uint, adminID uint, metadata *ClientMetadata) error
}

// PlanFlowImpl implements the plan business flow
type PlanFlowImpl struct {
	planRepo         repository.PlanRepository
	subscriptionRepo repository.SubscriptionRepository
	auditRepo        repository.AuditLogRepository
	rc               *redis.Client
	cacheConfig      *config.CacheConfig
}

// NewPlanFlow creates a new plan flow instance
func NewPlanFlow(
	planRepo repository.PlanRepository,
	subscriptionRepo repository.SubscriptionRepository,
	auditRepo repository.AuditLogRepository,
	rc *redis.Client,
	cacheConfig *config.CacheConfig,
) PlanFlow {
	return &PlanFlowImpl{
		planRepo:         planRepo,
		subscriptionRepo: subscriptionRepo,
		auditRepo:        auditRepo,
		rc:               rc,
		cacheConfig:      cacheConfig,
	}
}

func redisKey(cfg config.CacheConfig, key string) string {
	if cfg.RedisPrefix == "" {
		return key
	}
	return cfg.RedisPrefix + ":" + key
}

// ListPlans returns the active plan catalog, served from cache when warm.
func (s *PlanFlowImpl) ListPlans(ctx context.Context) (*dto.ListPlansResponse, error) {
	if s.rc != nil && s.cacheConfig != nil {
		cacheKey := redisKey(*s.cacheConfig, utils.PlanCatalogCacheKey)
		if bs, err := s.rc.Get(ctx, cacheKey).Bytes(); err == nil && len(bs) > 0 {
			var out dto.ListPlansResponse
			if err := json.Unmarshal(bs, &out); err == nil {
				return &out, nil
			}
		}
	}

	plans, err := s.planRepo.ListActive(ctx)
	if err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to list plans", err)
	}

	out := &dto.ListPlansResponse{Items: make([]dto.PlanResponse, 0, len(plans))}
	for _, p := range plans {
		out.Items = append(out.Items, ToPlanDTO(*p))
	}

	if s.rc != nil && s.cacheConfig != nil {
		if bs, err := json.Marshal(out); err == nil {
			_ = s.rc.Set(ctx, redisKey(*s.cacheConfig, utils.PlanCatalogCacheKey), bs, utils.PlanCatalogCacheTTL).Err()
		}
	}

	return out, nil
}

// ListAllPlans returns every plan, inactive ones included. Admin only,
// never cached.
func (s *PlanFlowImpl) ListAllPlans(ctx context.Context) (*dto.ListPlansResponse, error) {
	plans, err := s.planRepo.ByFilter(ctx, models.PlanFilter{}, "sort_order ASC, price ASC", 0, 0)
	if err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to list plans", err)
	}

	out := &dto.ListPlansResponse{Items: make([]dto.PlanResponse, 0, len(plans))}
	for _, p := range plans {
		out.Items = append(out.Items, ToPlanDTO(*p))
	}
	return out, nil
}

// GetPlan returns one active plan by slug.
func (s *PlanFlowImpl) GetPlan(ctx context.Context, slug string) (*dto.PlanResponse, error) {
	if slug == "" {
		return nil, NewBusinessError(CodeInvalidInput, "plan slug is required", nil)
	}

	plan, err := s.planRepo.BySlug(ctx, slug)
	if err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to load plan", err)
	}
	if plan == nil || !utils.IsTrue(plan.IsActive) {
		return nil, NewBusinessError(CodeNotFound, "plan not found", ErrPlanNotFound)
	}

	resp := ToPlanDTO(*plan)
	return &resp, nil
}

// CreatePlan adds a plan to the catalog. Admin only.
func (s *PlanFlowImpl) CreatePlan(ctx context.Context, req *dto.CreatePlanRequest, adminID uint, metadata *ClientMetadata) (*dto.PlanResponse, error) {
	if req == nil {
		return nil, NewBusinessError(CodeInvalidInput, "request is required", nil)
	}

	existing, err := s.planRepo.BySlug(ctx, req.Slug)
	if err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to check plan slug", err)
	}
	if existing != nil {
		return nil, NewBusinessErrorf(CodeConflict, "plan slug %q is already taken", ErrPlanSlugTaken, req.Slug)
	}

	plan := models.Plan{
		Slug:            req.Slug,
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		Currency:        req.Currency,
		BillingInterval: req.BillingInterval,
		MaxCampaigns:    req.MaxCampaigns,
		Features:        pq.StringArray(req.Features),
		Platforms:       pq.StringArray(req.Platforms),
		SortOrder:       req.SortOrder,
		IsActive:        utils.ToPtr(true),
	}
	if plan.Currency == "" {
		plan.Currency = utils.DefaultCurrency
	}

	if err := s.planRepo.Save(ctx, &plan); err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to create plan", err)
	}

	s.invalidateCatalogCache(ctx)
	_ = createAuditLog(ctx, s.auditRepo, &adminID, models.AuditActionPlanCreated,
		fmt.Sprintf("Plan %s created", plan.Slug), true, nil, metadata)

	resp := ToPlanDTO(plan)
	return &resp, nil
}

// UpdatePlan edits plan fields. Admin only.
func (s *PlanFlowImpl) UpdatePlan(ctx context.Context, req *dto.UpdatePlanRequest, adminID uint, metadata *ClientMetadata) (*dto.PlanResponse, error) {
	if req == nil {
		return nil, NewBusinessError(CodeInvalidInput, "request is required", nil)
	}

	plan, err := s.planRepo.ByID(ctx, req.PlanID)
	if err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to load plan", err)
	}
	if plan == nil {
		return nil, NewBusinessError(CodeNotFound, "plan not found", ErrPlanNotFound)
	}

	if req.Name != nil {
		plan.Name = *req.Name
	}
	if req.Description != nil {
		plan.Description = req.Description
	}
	if req.Price != nil {
		plan.Price = *req.Price
	}
	if req.BillingInterval != nil {
		plan.BillingInterval = *req.BillingInterval
	}
	if req.MaxCampaigns != nil {
		plan.MaxCampaigns = *req.MaxCampaigns
	}
	if req.Features != nil {
		plan.Features = pq.StringArray(req.Features)
	}
	if req.Platforms != nil {
		plan.Platforms = pq.StringArray(req.Platforms)
	}
	if req.SortOrder != nil {
		plan.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		plan.IsActive = req.IsActive
	}

	if err := s.planRepo.Update(ctx, *plan); err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to update plan", err)
	}

	s.invalidateCatalogCache(ctx)
	_ = createAuditLog(ctx, s.auditRepo, &adminID, models.AuditActionPlanUpdated,
		fmt.Sprintf("Plan %s updated", plan.Slug), true, nil, metadata)

	resp := ToPlanDTO(*plan)
	return &resp, nil
}

// DeletePlan removes a plan from the catalog. A plan with live
// subscriptions cannot be deleted.
func (s *PlanFlowImpl) DeletePlan(ctx context.Context, planID uint, adminID uint, metadata *ClientMetadata) error {
	plan, err := s.planRepo.ByID(ctx, planID)
	if err != nil {
		return NewBusinessError(CodeStorageFailure, "failed to load plan", err)
	}
	if plan == nil {
		return NewBusinessError(CodeNotFound, "plan not found", ErrPlanNotFound)
	}

	live, err := s.subscriptionRepo.CountLiveByPlan(ctx, plan.ID)
	if err != nil {
		return NewBusinessError(CodeStorageFailure, "failed to check subscriptions", err)
	}
	if live > 0 {
		return NewBusinessErrorf(CodeConflict, "plan has %d live subscriptions", ErrPlanHasSubscriptions, live)
	}

	if err := s.planRepo.Delete(ctx, plan.ID); err != nil {
		return NewBusinessError(CodeStorageFailure, "failed to delete plan", err)
	}

	s.invalidateCatalogCache(ctx)
	_ = createAuditLog(ctx, s.auditRepo, &adminID, models.AuditActionPlanDeleted,
		fmt.Sprintf("Plan %s deleted", plan.Slug), true, nil, metadata)

	return nil
}

func (s *PlanFlowImpl) invalidateCatalogCache(ctx context.Context) {
	if s.rc == nil || s.cacheConfig == nil {
		return
	}
	_ = s.rc.Del(ctx, redisKey(*s.cacheConfig, utils.PlanCatalogCacheKey)).Err()
}

// ToPlanDTO converts a plan model to its response DTO
func ToPlanDTO(plan models.Plan) dto.PlanResponse {
	return dto.PlanResponse{
		ID:              plan.ID,
		UUID:            plan.UUID.String(),
		Slug:            plan.Slug,
		Name:            plan.Name,
		Description:     plan.Description,
		Price:           plan.Price,
		Currency:        plan.Currency,
		BillingInterval: plan.BillingInterval,
		MaxCampaigns:    plan.MaxCampaigns,
		Features:        []string(plan.Features),
		Platforms:       []string(plan.Platforms),
		SortOrder:       plan.SortOrder,
		IsActive:        utils.IsTrue(plan.IsActive),
	}
}
