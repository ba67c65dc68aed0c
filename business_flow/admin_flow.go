package businessflow

import (
	"context"

	"github.com/adsphere/adsphere/app/dto"
	"github.com/adsphere/adsphere/models"
	"github.com/adsphere/adsphere/repository"
)

// AdminFlow handles the admin reporting surface over customers and
// subscriptions
type AdminFlow interface {
	ListCustomers(ctx context.Context, req *dto.ListCustomersRequest) (*dto.ListCustomersResponse, error)
	ListSubscriptions(ctx context.Context, req *dto.ListSubscriptionsRequest) (*dto.ListSubscriptionsResponse, error)
}

// AdminFlowImpl implements the admin business flow
type AdminFlowImpl struct {
	userRepo         repository.UserRepository
	subscriptionRepo repository.SubscriptionRepository
	planRepo         repository.PlanRepository
}

// NewAdminFlow creates a new admin flow instance
func NewAdminFlow(
	userRepo repository.UserRepository,
	subscriptionRepo repository.SubscriptionRepository,
	planRepo repository.PlanRepository,
) AdminFlow {
	return &AdminFlowImpl{
		userRepo:         userRepo,
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
	}
}

// ListCustomers returns a filtered page of customer accounts.
func (s *AdminFlowImpl) ListCustomers(ctx context.Context, req *dto.ListCustomersRequest) (*dto.ListCustomersResponse, error) {
	page, pageSize := 1, 20
	role := models.RoleCustomer
	filter := models.UserFilter{Role: &role}
	if req != nil {
		if req.Page > 0 {
			page = req.Page
		}
		if req.PageSize > 0 && req.PageSize <= 100 {
			pageSize = req.PageSize
		}
		filter.Search = req.Search
		filter.IsVerified = req.IsVerified
		filter.IsActive = req.IsActive
	}

	total, err := s.userRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to count customers", err)
	}

	users, err := s.userRepo.ByFilter(ctx, filter, "created_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to list customers", err)
	}

	items := make([]dto.AuthUserDTO, 0, len(users))
	for _, u := range users {
		items = append(items, ToAuthUserDTO(*u))
	}

	return &dto.ListCustomersResponse{
		Items:      items,
		Pagination: dto.NewPaginationDTO(page, pageSize, total),
	}, nil
}

// ListSubscriptions returns a filtered page of subscriptions with their
// plan names resolved.
func (s *AdminFlowImpl) ListSubscriptions(ctx context.Context, req *dto.ListSubscriptionsRequest) (*dto.ListSubscriptionsResponse, error) {
	page, pageSize := 1, 20
	filter := models.SubscriptionFilter{}
	if req != nil {
		if req.Page > 0 {
			page = req.Page
		}
		if req.PageSize > 0 && req.PageSize <= 100 {
			pageSize = req.PageSize
		}
		filter.UserID = req.UserID
		filter.PlanID = req.PlanID
		if req.Status != nil {
			status := models.SubscriptionStatus(*req.Status)
			if !status.Valid() {
				return nil, NewBusinessErrorf(CodeInvalidInput, "unknown subscription status %q", nil, *req.Status)
			}
			filter.Status = &status
		}
	}

	total, err := s.subscriptionRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to count subscriptions", err)
	}

	subs, err := s.subscriptionRepo.ByFilter(ctx, filter, "created_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to list subscriptions", err)
	}

	planNames := make(map[uint]string)
	items := make([]dto.SubscriptionDTO, 0, len(subs))
	for _, sub := range subs {
		item := ToSubscriptionDTO(*sub)
		name, ok := planNames[sub.PlanID]
		if !ok {
			if plan, err := s.planRepo.ByID(ctx, sub.PlanID); err == nil && plan != nil {
				name = plan.Name
			}
			planNames[sub.PlanID] = name
		}
		if name != "" {
			item.PlanName = &name
		}
		items = append(items, item)
	}

	return &dto.ListSubscriptionsResponse{
		Items:      items,
		Pagination: dto.NewPaginationDTO(page, pageSize, total),
	}, nil
}
