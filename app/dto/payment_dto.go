package dto

import (
	"encoding/json"
	"time"

	"github.com/adsphere/adsphere/models"
)

// RecordPaymentRequest stores a confirmed gateway payment
type RecordPaymentRequest struct {
	UserID         uint            `json:"-"`
	PlanID         uint            `json:"plan_id" validate:"required"`
	GatewayPayID   string          `json:"gateway_pay_id" validate:"required,max=120"`
	GatewayOrderID *string         `json:"gateway_order_id,omitempty" validate:"omitempty,max=120"`
	Amount         float64         `json:"amount" validate:"required,gt=0"`
	Currency       string          `json:"currency" validate:"omitempty,len=3,uppercase"`
	GatewayPayload json.RawMessage `json:"gateway_payload,omitempty"`
}

// PaymentResponse is the outward shape of a recorded payment
type PaymentResponse struct {
	ID              uint    `json:"id"`
	UUID            string  `json:"uuid"`
	UserID          uint    `json:"user_id"`
	PlanID          uint    `json:"plan_id"`
	UserEmail       *string `json:"user_email,omitempty"`
	UserName        *string `json:"user_name,omitempty"`
	PlanName        *string `json:"plan_name,omitempty"`
	PlanSlug        *string `json:"plan_slug,omitempty"`
	GatewayPayID    string  `json:"gateway_pay_id"`
	GatewayOrderID  *string `json:"gateway_order_id,omitempty"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	Status          string  `json:"status"`
	TransactionDate string  `json:"transaction_date"`
	CreatedAt       string  `json:"created_at"`
}

// RecordPaymentResponse pairs the payment with the activated subscription
type RecordPaymentResponse struct {
	Payment      PaymentResponse `json:"payment"`
	Subscription SubscriptionDTO `json:"subscription"`
}

// ListPaymentsRequest filters the admin payment listing
type ListPaymentsRequest struct {
	UserID     *uint      `query:"user_id"`
	PlanID     *uint      `query:"plan_id"`
	Status     *string    `query:"status"`
	Search     *string    `query:"search"`
	DateAfter  *time.Time `query:"date_after"`
	DateBefore *time.Time `query:"date_before"`
	Page       int        `query:"page"`
	PageSize   int        `query:"page_size"`
}

// ListPaymentsResponse is a page of payments
type ListPaymentsResponse struct {
	Items      []PaymentResponse `json:"items"`
	Pagination PaginationDTO     `json:"pagination"`
}

// PaymentStatsResponse aggregates revenue for the admin dashboard
type PaymentStatsResponse struct {
	TotalRevenue  float64              `json:"total_revenue"`
	TotalCount    int64                `json:"total_count"`
	CountByStatus map[string]int64     `json:"count_by_status"`
	RevenueByPlan []models.PlanRevenue `json:"revenue_by_plan"`
}
