package dto

import "time"

// CreateCampaignRequest opens a new campaign under the caller's plan
type CreateCampaignRequest struct {
	UserID    uint      `json:"-"`
	Name      string    `json:"name" validate:"required,max=255"`
	Target    *string   `json:"target,omitempty" validate:"omitempty,max=255"`
	Budget    float64   `json:"budget" validate:"gte=0"`
	Objective *string   `json:"objective,omitempty" validate:"omitempty,max=255"`
	Details   *string   `json:"details,omitempty"`
	StartsAt  time.Time `json:"starts_at" validate:"required"`
	EndsAt    time.Time `json:"ends_at" validate:"required"`
}

// UpdateCampaignRequest edits campaign fields, owner only
type UpdateCampaignRequest struct {
	CampaignID uint       `json:"-"`
	UserID     uint       `json:"-"`
	Name       *string    `json:"name,omitempty" validate:"omitempty,max=255"`
	Target     *string    `json:"target,omitempty" validate:"omitempty,max=255"`
	Budget     *float64   `json:"budget,omitempty" validate:"omitempty,gte=0"`
	Objective  *string    `json:"objective,omitempty" validate:"omitempty,max=255"`
	Details    *string    `json:"details,omitempty"`
	StartsAt   *time.Time `json:"starts_at,omitempty"`
	EndsAt     *time.Time `json:"ends_at,omitempty"`
}

// CampaignResponse is the outward shape of a campaign with its media
type CampaignResponse struct {
	ID          uint                    `json:"id"`
	UUID        string                  `json:"uuid"`
	UserID      uint                    `json:"user_id"`
	PlanID      uint                    `json:"plan_id"`
	Name        string                  `json:"name"`
	Target      *string                 `json:"target,omitempty"`
	Budget      float64                 `json:"budget"`
	Spent       float64                 `json:"spent"`
	LeadCount   int                     `json:"lead_count"`
	Objective   *string                 `json:"objective,omitempty"`
	Details     *string                 `json:"details,omitempty"`
	StartsAt    string                  `json:"starts_at"`
	EndsAt      string                  `json:"ends_at"`
	Status      int16                   `json:"status"`
	StatusLabel string                  `json:"status_label"`
	UpdatedBy   uint                    `json:"updated_by"`
	CreatedAt   string                  `json:"created_at"`
	UpdatedAt   string                  `json:"updated_at"`
	Media       []CampaignMediaResponse `json:"media,omitempty"`
}

// ListCampaignsRequest filters the campaign listing
type ListCampaignsRequest struct {
	RequesterID      uint    `json:"-"`
	RequesterIsAdmin bool    `json:"-"`
	UserID           *uint   `query:"user_id"`
	Status           *int16  `query:"status"`
	Search           *string `query:"search"`
	Page             int     `query:"page"`
	PageSize         int     `query:"page_size"`
}

// ListCampaignsResponse is a page of campaigns
type ListCampaignsResponse struct {
	Items      []CampaignResponse `json:"items"`
	Pagination PaginationDTO      `json:"pagination"`
}

// CampaignMediaItem describes one media descriptor in a bulk upsert
type CampaignMediaItem struct {
	FileURL   string  `json:"file_url" validate:"required,max=500"`
	MediaType string  `json:"media_type" validate:"required,oneof=image video"`
	Details   *string `json:"details,omitempty"`
}

// UpsertCampaignMediaRequest bulk-attaches media descriptors to a campaign
type UpsertCampaignMediaRequest struct {
	CampaignID       uint                `json:"-"`
	RequesterID      uint                `json:"-"`
	RequesterIsAdmin bool                `json:"-"`
	Items            []CampaignMediaItem `json:"items" validate:"required,min=1,dive"`
}

// UpsertCampaignMediaResponse counts the inserted and refreshed rows
type UpsertCampaignMediaResponse struct {
	CampaignID uint `json:"campaign_id"`
	Created    int  `json:"created"`
	Updated    int  `json:"updated"`
}
