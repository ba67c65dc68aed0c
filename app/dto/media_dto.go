package dto

// FeedbackEntryDTO is one reviewer note in a media's feedback history
type FeedbackEntryDTO struct {
	Feedback  string `json:"feedback"`
	Timestamp string `json:"timestamp"`
}

// ChangeEntryDTO is one recorded prior value in a media's change history
type ChangeEntryDTO struct {
	Field     string `json:"field"`
	OldValue  string `json:"old_value"`
	Timestamp string `json:"timestamp"`
}

// CampaignMediaResponse is the outward shape of a campaign media item
type CampaignMediaResponse struct {
	ID          uint               `json:"id"`
	UUID        string             `json:"uuid"`
	CampaignID  uint               `json:"campaign_id"`
	FileURL     string             `json:"file_url"`
	MediaType   string             `json:"media_type"`
	Details     *string            `json:"details,omitempty"`
	Status      int16              `json:"status"`
	StatusLabel string             `json:"status_label"`
	Feedback    []FeedbackEntryDTO `json:"feedback,omitempty"`
	OldValues   []ChangeEntryDTO   `json:"old_values,omitempty"`
	UpdatedAt   string             `json:"updated_at"`
}

// SubmitReviewRequest records a reviewer decision on one media item
type SubmitReviewRequest struct {
	MediaID  uint    `json:"-"`
	Decision string  `json:"decision" validate:"required,oneof=approved needs_changes"`
	Feedback *string `json:"feedback,omitempty" validate:"omitempty,max=2000"`
}

// SubmitReviewResponse reports the media and campaign statuses after a review
type SubmitReviewResponse struct {
	MediaID               uint  `json:"media_id"`
	CampaignID            uint  `json:"campaign_id"`
	MediaStatus           int16 `json:"media_status"`
	CampaignStatus        int16 `json:"campaign_status"`
	CampaignStatusChanged bool  `json:"campaign_status_changed"`
}

// EditMediaRequest replaces media content after reviewer feedback
type EditMediaRequest struct {
	MediaID   uint    `json:"-"`
	FileURL   *string `json:"file_url,omitempty" validate:"omitempty,max=500"`
	Details   *string `json:"details,omitempty"`
	MediaType *string `json:"media_type,omitempty" validate:"omitempty,oneof=image video"`
}

// EditMediaResponse reports the statuses forced by an edit
type EditMediaResponse struct {
	MediaID        uint  `json:"media_id"`
	MediaStatus    int16 `json:"media_status"`
	CampaignID     uint  `json:"campaign_id"`
	CampaignStatus int16 `json:"campaign_status"`
}

// DeleteMediaRequest removes one media item
type DeleteMediaRequest struct {
	MediaID uint `json:"-"`
}

// DeleteMediaResponse acknowledges the removal; Warning is set when the
// physical file could not be cleaned up
type DeleteMediaResponse struct {
	MediaID uint    `json:"media_id"`
	Warning *string `json:"warning,omitempty"`
}

// DeleteCampaignRequest removes a campaign with all its media
type DeleteCampaignRequest struct {
	CampaignID       uint `json:"-"`
	RequesterID      uint `json:"-"`
	RequesterIsAdmin bool `json:"-"`
}

// DeleteCampaignResponse reports the cascade result
type DeleteCampaignResponse struct {
	CampaignID   uint     `json:"campaign_id"`
	RemovedMedia int      `json:"removed_media"`
	Warnings     []string `json:"warnings,omitempty"`
}
