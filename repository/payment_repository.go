package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/adsphere/adsphere/models"
)

// PaymentRepositoryImpl implements the PaymentRepository interface
type PaymentRepositoryImpl struct {
	*BaseRepository[models.Payment, models.PaymentFilter]
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &PaymentRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Payment, models.PaymentFilter](db),
	}
}

// ByGatewayPayID retrieves a payment by the gateway's payment id
func (r *PaymentRepositoryImpl) ByGatewayPayID(ctx context.Context, gatewayPayID string) (*models.Payment, error) {
	rows, err := r.ByFilter(ctx, models.PaymentFilter{GatewayPayID: &gatewayPayID}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// applyFilter applies filter criteria to a GORM query.
func (r *PaymentRepositoryImpl) applyFilter(query *gorm.DB, filter models.PaymentFilter) *gorm.DB {
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
	if filter.GatewayPayID != nil {
		query = query.Where("gateway_pay_id = ?", *filter.GatewayPayID)
	}
	if filter.Search != nil && *filter.Search != "" {
		pattern := "%" + *filter.Search + "%"
		query = query.Where("gateway_pay_id ILIKE ? OR gateway_order_id ILIKE ?", pattern, pattern)
	}
	if filter.DateAfter != nil {
		query = query.Where("transaction_date > ?", *filter.DateAfter)
	}
	if filter.DateBefore != nil {
		query = query.Where("transaction_date < ?", *filter.DateBefore)
	}
	return query
}

// ByFilter retrieves payments based on filter criteria
func (r *PaymentRepositoryImpl) ByFilter(ctx context.Context, filter models.PaymentFilter, orderBy string, limit, offset int) ([]*models.Payment, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Payment{}), filter)

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

	var rows []*models.Payment
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of payments matching the filter
func (r *PaymentRepositoryImpl) Count(ctx context.Context, filter models.PaymentFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Payment{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any payment matching the filter exists
func (r *PaymentRepositoryImpl) Exists(ctx context.Context, filter models.PaymentFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListWithRelations retrieves a page of payments with user and plan preloaded,
// plus the total row count for the filter.
func (r *PaymentRepositoryImpl) ListWithRelations(ctx context.Context, filter models.PaymentFilter) ([]*models.Payment, int64, error) {
	total, err := r.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Payment{}).Preload("User").Preload("Plan"), filter).
		Order("transaction_date DESC")

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		if filter.Page > 1 {
			query = query.Offset((filter.Page - 1) * filter.PageSize)
		}
	}

	var rows []*models.Payment
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Stats aggregates payment figures for the admin dashboard
func (r *PaymentRepositoryImpl) Stats(ctx context.Context, filter models.PaymentFilter) (*models.PaymentStats, error) {
	db := r.getDB(ctx)

	stats := &models.PaymentStats{
		CountByStatus: make(map[string]int64),
	}

	type statusRow struct {
		Status string
		Count  int64
		Sum    float64
	}
	var byStatus []statusRow
	query := r.applyFilter(db.Model(&models.Payment{}), filter)
	if err := query.
		Select("status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS sum").
		Group("status").
		Scan(&byStatus).Error; err != nil {
		return nil, err
	}
	for _, row := range byStatus {
		stats.CountByStatus[row.Status] = row.Count
		stats.TotalCount += row.Count
		if row.Status == models.PaymentStatusPaid.String() {
			stats.TotalRevenue += row.Sum
		}
	}

	type planRow struct {
		PlanID   uint
		PlanName string
		Revenue  float64
		Count    int64
	}
	var byPlan []planRow
	query = r.applyFilter(db.Model(&models.Payment{}), filter)
	if err := query.
		Select("payments.plan_id, plans.name AS plan_name, COALESCE(SUM(payments.amount), 0) AS revenue, COUNT(*) AS count").
		Joins("JOIN plans ON plans.id = payments.plan_id").
		Where("payments.status = ?", models.PaymentStatusPaid).
		Group("payments.plan_id, plans.name").
		Order("revenue DESC").
		Scan(&byPlan).Error; err != nil {
		return nil, err
	}
	for _, row := range byPlan {
		stats.RevenueByPlan = append(stats.RevenueByPlan, models.PlanRevenue{
			PlanID:   row.PlanID,
			PlanName: row.PlanName,
			Revenue:  row.Revenue,
			Count:    row.Count,
		})
	}

	return stats, nil
}
