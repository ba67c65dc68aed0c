package dto

import "time"

// AdminCaptchaInitResponse serves a rotate captcha challenge for admin login
type AdminCaptchaInitResponse struct {
	ChallengeID       string `json:"challenge_id"`
	MasterImageBase64 string `json:"master_image_base64"`
	ThumbImageBase64  string `json:"thumb_image_base64"`
}

// AdminCaptchaVerifyRequest submits admin credentials plus the captcha answer
type AdminCaptchaVerifyRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required"`
	ChallengeID string  `json:"challenge_id" validate:"required"`
	UserAngle   float64 `json:"user_angle" validate:"gte=0,lte=360"`
}

// ListCustomersRequest filters the admin customer listing
type ListCustomersRequest struct {
	Search     *string `query:"search"`
	IsVerified *bool   `query:"is_verified"`
	IsActive   *bool   `query:"is_active"`
	Page       int     `query:"page"`
	PageSize   int     `query:"page_size"`
}

// ListCustomersResponse is a page of customer accounts
type ListCustomersResponse struct {
	Items      []AuthUserDTO `json:"items"`
	Pagination PaginationDTO `json:"pagination"`
}

// ListSubscriptionsRequest filters the admin subscription listing
type ListSubscriptionsRequest struct {
	UserID   *uint   `query:"user_id"`
	PlanID   *uint   `query:"plan_id"`
	Status   *string `query:"status"`
	Page     int     `query:"page"`
	PageSize int     `query:"page_size"`
}

// SubscriptionDTO is the outward shape of a subscription
type SubscriptionDTO struct {
	ID        uint    `json:"id"`
	UUID      string  `json:"uuid"`
	UserID    uint    `json:"user_id"`
	PlanID    uint    `json:"plan_id"`
	PlanName  *string `json:"plan_name,omitempty"`
	Status    string  `json:"status"`
	StartsAt  string  `json:"starts_at"`
	EndsAt    string  `json:"ends_at"`
	CreatedAt string  `json:"created_at"`
}

// ListSubscriptionsResponse is a page of subscriptions
type ListSubscriptionsResponse struct {
	Items      []SubscriptionDTO `json:"items"`
	Pagination PaginationDTO     `json:"pagination"`
}

// PaymentStatsRequest bounds the stats window
type PaymentStatsRequest struct {
	DateAfter  *time.Time `query:"date_after"`
	DateBefore *time.Time `query:"date_before"`
}
