package dto

// PlanResponse is the outward shape of a subscription plan
type PlanResponse struct {
	ID              uint     `json:"id"`
	UUID            string   `json:"uuid"`
	Slug            string   `json:"slug"`
	Name            string   `json:"name"`
	Description     *string  `json:"description,omitempty"`
	Price           float64  `json:"price"`
	Currency        string   `json:"currency"`
	BillingInterval string   `json:"billing_interval"`
	MaxCampaigns    int      `json:"max_campaigns"`
	Features        []string `json:"features"`
	Platforms       []string `json:"platforms"`
	SortOrder       int      `json:"sort_order"`
	IsActive        bool     `json:"is_active"`
}

// ListPlansResponse is the public plan catalog
type ListPlansResponse struct {
	Items []PlanResponse `json:"items"`
}

// CreatePlanRequest adds a plan to the catalog
type CreatePlanRequest struct {
	Slug            string   `json:"slug" validate:"required,max=120,lowercase"`
	Name            string   `json:"name" validate:"required,max=120"`
	Description     *string  `json:"description,omitempty"`
	Price           float64  `json:"price" validate:"gte=0"`
	Currency        string   `json:"currency" validate:"omitempty,len=3,uppercase"`
	BillingInterval string   `json:"billing_interval" validate:"omitempty,oneof=monthly yearly"`
	MaxCampaigns    int      `json:"max_campaigns" validate:"gte=0"`
	Features        []string `json:"features"`
	Platforms       []string `json:"platforms"`
	SortOrder       int      `json:"sort_order"`
}

// UpdatePlanRequest edits plan fields
type UpdatePlanRequest struct {
	PlanID          uint     `json:"-"`
	Name            *string  `json:"name,omitempty" validate:"omitempty,max=120"`
	Description     *string  `json:"description,omitempty"`
	Price           *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	BillingInterval *string  `json:"billing_interval,omitempty" validate:"omitempty,oneof=monthly yearly"`
	MaxCampaigns    *int     `json:"max_campaigns,omitempty" validate:"omitempty,gte=0"`
	Features        []string `json:"features,omitempty"`
	Platforms       []string `json:"platforms,omitempty"`
	SortOrder       *int     `json:"sort_order,omitempty"`
	IsActive        *bool    `json:"is_active,omitempty"`
}
