package businessflow

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/adsphere/adsphere/app/dto"
	"github.com/adsphere/adsphere/app/services"
	"github.com/adsphere/adsphere/models"
	"github.com/adsphere/adsphere/repository"
	"github.com/adsphere/adsphere/utils"
)

// PaymentFlow handles payment recording and the admin payment surface
type PaymentFlow interface {
	RecordPayment(ctx context.Context, req *dto.RecordPaymentRequest, metadata *ClientMetadata) (*dto.RecordPaymentResponse, error)
	ListPayments(ctx context.Context, req *dto.ListPaymentsRequest) (*dto.ListPaymentsResponse, error)
	GetPaymentStats(ctx context.Context, req *dto.PaymentStatsRequest) (*dto.PaymentStatsResponse, error)
	ExportPayments(ctx context.Context, req *dto.ListPaymentsRequest) (string, []byte, error)
}

// PaymentFlowImpl implements the payment business flow
type PaymentFlowImpl struct {
	paymentRepo         repository.PaymentRepository
	subscriptionRepo    repository.SubscriptionRepository
	planRepo            repository.PlanRepository
	userRepo            repository.UserRepository
	auditRepo           repository.AuditLogRepository
	notificationService services.NotificationService
	db                  *gorm.DB
}

// NewPaymentFlow creates a new payment flow instance
func NewPaymentFlow(
	paymentRepo repository.PaymentRepository,
	subscriptionRepo repository.SubscriptionRepository,
	planRepo repository.PlanRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditLogRepository,
	notificationService services.NotificationService,
	db *gorm.DB,
) PaymentFlow {
	return &PaymentFlowImpl{
		paymentRepo:         paymentRepo,
		subscriptionRepo:    subscriptionRepo,
		planRepo:            planRepo,
		userRepo:            userRepo,
		auditRepo:           auditRepo,
		notificationService: notificationService,
		db:                  db,
	}
}

// RecordPayment stores a confirmed gateway payment and activates or extends
// the user's subscription in the same transaction. The receipt email is
// best-effort and never fails the payment.
func (s *PaymentFlowImpl) RecordPayment(ctx context.Context, req *dto.RecordPaymentRequest, metadata *ClientMetadata) (*dto.RecordPaymentResponse, error) {
	if req == nil {
		return nil, NewBusinessError(CodeInvalidInput, "request is required", nil)
	}
	if req.Amount <= 0 {
		return nil, NewBusinessError(CodeInvalidInput, "amount must be positive", ErrAmountInvalid)
	}
	if req.GatewayPayID == "" {
		return nil, NewBusinessError(CodeInvalidInput, "gateway pay id is required", nil)
	}

	user, err := getUser(ctx, s.userRepo, req.UserID)
	if err != nil {
		return nil, NewBusinessError(CodeNotFound, "user not found", err)
	}

	plan, err := s.planRepo.ByID(ctx, req.PlanID)
	if err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to load plan", err)
	}
	if plan == nil {
		return nil, NewBusinessError(CodeNotFound, "plan not found", ErrPlanNotFound)
	}
	if !utils.IsTrue(plan.IsActive) {
		return nil, NewBusinessError(CodeInvalidInput, "plan is not active", ErrPlanInactive)
	}

	existing, err := s.paymentRepo.ByGatewayPayID(ctx, req.GatewayPayID)
	if err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to check payment", err)
	}
	if existing != nil {
		return nil, NewBusinessErrorf(CodeConflict, "payment %s is already recorded", ErrDuplicatePayment, req.GatewayPayID)
	}

	payment := models.Payment{
		UserID:          user.ID,
		PlanID:          plan.ID,
		GatewayPayID:    req.GatewayPayID,
		GatewayOrderID:  req.GatewayOrderID,
		Amount:          req.Amount,
		Currency:        req.Currency,
		Status:          models.PaymentStatusPaid,
		TransactionDate: utils.UTCNow(),
		GatewayPayload:  req.GatewayPayload,
	}
	if payment.Currency == "" {
		payment.Currency = plan.Currency
	}

	var subscription *models.Subscription
	err = s.runInTx(ctx, func(txCtx context.Context) error {
		if err := s.paymentRepo.Save(txCtx, &payment); err != nil {
			return NewBusinessError(CodeStorageFailure, "failed to record payment", err)
		}

		sub, err := s.subscriptionRepo.ActiveByUser(txCtx, user.ID)
		if err != nil {
			return NewBusinessError(CodeStorageFailure, "failed to check subscription", err)
		}

		if sub != nil && sub.PlanID == plan.ID {
			// Same plan paid again: extend the running period.
			sub.EndsAt = addBillingInterval(sub.EndsAt, plan.BillingInterval)
			if err := s.subscriptionRepo.Update(txCtx, *sub); err != nil {
				return NewBusinessError(CodeStorageFailure, "failed to extend subscription", err)
			}
			subscription = sub
			return nil
		}

		if sub != nil {
			// Plan change: close the old subscription before opening the new one.
			sub.Status = models.SubscriptionStatusCancelled
			if err := s.subscriptionRepo.Update(txCtx, *sub); err != nil {
				return NewBusinessError(CodeStorageFailure, "failed to close subscription", err)
			}
		}

		now := utils.UTCNow()
		fresh := models.Subscription{
			UserID:   user.ID,
			PlanID:   plan.ID,
			Status:   models.SubscriptionStatusActive,
			StartsAt: now,
			EndsAt:   addBillingInterval(now, plan.BillingInterval),
		}
		if err := s.subscriptionRepo.Save(txCtx, &fresh); err != nil {
			return NewBusinessError(CodeStorageFailure, "failed to create subscription", err)
		}
		subscription = &fresh
		return nil
	})
	if err != nil {
		errMsg := err.Error()
		_ = createAuditLog(ctx, s.auditRepo, &user.ID, models.AuditActionPaymentRecorded,
			"Payment recording failed", false, &errMsg, metadata)
		return nil, err
	}

	_ = createAuditLog(ctx, s.auditRepo, &user.ID, models.AuditActionPaymentRecorded,
		fmt.Sprintf("Payment %s recorded for plan %s", payment.GatewayPayID, plan.Slug), true, nil, metadata)

	if s.notificationService != nil {
		subject := "Your Digital Ads Platform subscription is active"
		body := fmt.Sprintf("Hi %s,\n\nWe received your payment of %.2f %s for the %s plan. Your subscription runs until %s.\n\nThank you.",
			user.Name, payment.Amount, payment.Currency, plan.Name, subscription.EndsAt.Format("2006-01-02"))
		_ = s.notificationService.SendEmail(user.Email, subject, body)
	}

	return &dto.RecordPaymentResponse{
		Payment:      ToPaymentDTO(payment),
		Subscription: ToSubscriptionDTO(*subscription),
	}, nil
}

// ListPayments returns a filtered page of payments with user and plan
// details. Admin only.
func (s *PaymentFlowImpl) ListPayments(ctx context.Context, req *dto.ListPaymentsRequest) (*dto.ListPaymentsResponse, error) {
	filter, err := paymentFilterFromRequest(req)
	if err != nil {
		return nil, err
	}

	payments, total, err := s.paymentRepo.ListWithRelations(ctx, *filter)
	if err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to list payments", err)
	}

	items := make([]dto.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		items = append(items, ToPaymentDTO(*p))
	}

	return &dto.ListPaymentsResponse{
		Items:      items,
		Pagination: dto.NewPaginationDTO(filter.Page, filter.PageSize, total),
	}, nil
}

// GetPaymentStats aggregates revenue figures for the admin dashboard.
func (s *PaymentFlowImpl) GetPaymentStats(ctx context.Context, req *dto.PaymentStatsRequest) (*dto.PaymentStatsResponse, error) {
	filter := models.PaymentFilter{}
	if req != nil {
		filter.DateAfter = req.DateAfter
		filter.DateBefore = req.DateBefore
	}

	stats, err := s.paymentRepo.Stats(ctx, filter)
	if err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to compute payment stats", err)
	}

	return &dto.PaymentStatsResponse{
		TotalRevenue:  stats.TotalRevenue,
		TotalCount:    stats.TotalCount,
		CountByStatus: stats.CountByStatus,
		RevenueByPlan: stats.RevenueByPlan,
	}, nil
}

// ExportPayments builds an XLSX workbook of the filtered payments and
// returns the suggested filename plus the file bytes.
func (s *PaymentFlowImpl) ExportPayments(ctx context.Context, req *dto.ListPaymentsRequest) (string, []byte, error) {
	filter, err := paymentFilterFromRequest(req)
	if err != nil {
		return "", nil, err
	}
	// Export ignores paging and dumps the whole filtered set.
	filter.Page = 1
	filter.PageSize = 0

	payments, _, err := s.paymentRepo.ListWithRelations(ctx, *filter)
	if err != nil {
		return "", nil, NewBusinessError(CodeStorageFailure, "failed to list payments", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := xl.GetSheetName(0)
	header := []string{"id", "uuid", "user_email", "plan", "gateway_pay_id", "gateway_order_id", "amount", "currency", "status", "transaction_date"}
	_ = xl.SetSheetRow(sheet, "A1", &header)

	for ri, p := range payments {
		email := ""
		if p.User != nil {
			email = p.User.Email
		}
		planSlug := ""
		if p.Plan != nil {
			planSlug = p.Plan.Slug
		}
		orderID := ""
		if p.GatewayOrderID != nil {
			orderID = *p.GatewayOrderID
		}
		record := []string{
			strconv.FormatUint(uint64(p.ID), 10),
			p.UUID.String(),
			email,
			planSlug,
			p.GatewayPayID,
			orderID,
			strconv.FormatFloat(p.Amount, 'f', 2, 64),
			p.Currency,
			p.Status.String(),
			p.TransactionDate.UTC().Format(time.RFC3339),
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		_ = xl.SetSheetRow(sheet, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError(CodeStorageFailure, "failed to write export file", err)
	}

	filename := fmt.Sprintf("payments_%s.xlsx", utils.UTCNow().Format("20060102_150405"))
	return filename, buf.Bytes(), nil
}

func (s *PaymentFlowImpl) runInTx(ctx context.Context, fn func(context.Context) error) error {
	if s.db == nil {
		return fn(ctx)
	}
	return repository.WithTransaction(ctx, s.db, fn)
}

func paymentFilterFromRequest(req *dto.ListPaymentsRequest) (*models.PaymentFilter, error) {
	filter := models.PaymentFilter{Page: 1, PageSize: 20}
	if req == nil {
		return &filter, nil
	}
	if req.Page > 0 {
		filter.Page = req.Page
	} else if req.Page < 0 {
		return nil, NewBusinessError(CodeInvalidInput, "page must be positive", ErrInvalidPage)
	}
	if req.PageSize > 0 {
		if req.PageSize > 100 {
			return nil, NewBusinessError(CodeInvalidInput, "page size must be at most 100", ErrInvalidPageSize)
		}
		filter.PageSize = req.PageSize
	}
	if req.UserID != nil {
		filter.UserID = req.UserID
	}
	if req.PlanID != nil {
		filter.PlanID = req.PlanID
	}
	if req.Status != nil {
		status := models.PaymentStatus(*req.Status)
		if !status.Valid() {
			return nil, NewBusinessErrorf(CodeInvalidInput, "unknown payment status %q", nil, *req.Status)
		}
		filter.Status = &status
	}
	if req.Search != nil {
		filter.Search = req.Search
	}
	filter.DateAfter = req.DateAfter
	filter.DateBefore = req.DateBefore
	return &filter, nil
}

func addBillingInterval(t time.Time, interval string) time.Time {
	if interval == models.BillingIntervalYearly {
		return t.AddDate(1, 0, 0)
	}
	return t.AddDate(0, 1, 0)
}

// ToPaymentDTO converts a payment model to its response DTO
func ToPaymentDTO(payment models.Payment) dto.PaymentResponse {
	resp := dto.PaymentResponse{
		ID:              payment.ID,
		UUID:            payment.UUID.String(),
		UserID:          payment.UserID,
		PlanID:          payment.PlanID,
		GatewayPayID:    payment.GatewayPayID,
		GatewayOrderID:  payment.GatewayOrderID,
		Amount:          payment.Amount,
		Currency:        payment.Currency,
		Status:          payment.Status.String(),
		TransactionDate: payment.TransactionDate.Format(timeFormat),
		CreatedAt:       payment.CreatedAt.Format(timeFormat),
	}
	if payment.User != nil {
		resp.UserEmail = &payment.User.Email
		resp.UserName = &payment.User.Name
	}
	if payment.Plan != nil {
		resp.PlanName = &payment.Plan.Name
		resp.PlanSlug = &payment.Plan.Slug
	}
	return resp
}

// ToSubscriptionDTO converts a subscription model to its response DTO
func ToSubscriptionDTO(sub models.Subscription) dto.SubscriptionDTO {
	return dto.SubscriptionDTO{
		ID:        sub.ID,
		UUID:      sub.UUID.String(),
		UserID:    sub.UserID,
		PlanID:    sub.PlanID,
		Status:    sub.Status.String(),
		StartsAt:  sub.StartsAt.Format(timeFormat),
		EndsAt:    sub.EndsAt.Format(timeFormat),
		CreatedAt: sub.CreatedAt.Format(timeFormat),
	}
}
