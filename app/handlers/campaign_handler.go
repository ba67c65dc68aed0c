package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/adsphere/adsphere/app/dto"
	businessflow "github.com/adsphere/adsphere/business_flow"
)

// CampaignHandler serves the customer campaign surface
type CampaignHandler struct {
	campaignFlow businessflow.CampaignFlow
	reviewFlow   businessflow.MediaReviewFlow
	validator    *validator.Validate
}

// NewCampaignHandler creates a new campaign handler
func NewCampaignHandler(campaignFlow businessflow.CampaignFlow, reviewFlow businessflow.MediaReviewFlow) *CampaignHandler {
	return &CampaignHandler{
		campaignFlow: campaignFlow,
		reviewFlow:   reviewFlow,
		validator:    validator.New(),
	}
}

// CreateCampaign creates a campaign for the authenticated customer
// @Summary Create campaign
// @Description Create an advertising campaign under the caller's active subscription
// @Tags Campaigns
// @Accept json
// @Produce json
// @Param request body dto.CreateCampaignRequest true "Campaign details"
// @Success 201 {object} dto.APIResponse{data=dto.CampaignResponse} "Campaign created"
// @Failure 402 {object} dto.APIResponse "No active subscription"
// @Failure 409 {object} dto.APIResponse "Campaign limit reached"
// @Security BearerAuth
// @Router /api/v1/campaigns [post]
func (h *CampaignHandler) CreateCampaign(c fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.CreateCampaignRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.UserID = userID
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := h.campaignFlow.CreateCampaign(createRequestContext(c, "/api/v1/campaigns"), &req, clientMetadata(c))
	if err != nil {
		log.Println("Create campaign failed", err)
		return businessErrorResponse(c, err, "Failed to create campaign")
	}
	return successResponse(c, fiber.StatusCreated, "Campaign created", result)
}

// UpdateCampaign edits the caller's own campaign
// @Summary Update campaign
// @Description Update fields of a campaign owned by the caller
// @Tags Campaigns
// @Accept json
// @Produce json
// @Param id path int true "Campaign ID"
// @Param request body dto.UpdateCampaignRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.CampaignResponse} "Campaign updated"
// @Failure 403 {object} dto.APIResponse "Not the campaign owner"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Security BearerAuth
// @Router /api/v1/campaigns/{id} [put]
func (h *CampaignHandler) UpdateCampaign(c fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	campaignID, err := pathID(c, "id")
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid campaign ID", "INVALID_REQUEST", nil)
	}

	var req dto.UpdateCampaignRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.CampaignID = campaignID
	req.UserID = userID
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := h.campaignFlow.UpdateCampaign(createRequestContext(c, "/api/v1/campaigns/:id"), &req, clientMetadata(c))
	if err != nil {
		log.Println("Update campaign failed", err)
		return businessErrorResponse(c, err, "Failed to update campaign")
	}
	return successResponse(c, fiber.StatusOK, "Campaign updated", result)
}

// GetCampaign returns one campaign with its media
// @Summary Get campaign
// @Description Fetch a campaign with its media; owners see their own, admins see all
// @Tags Campaigns
// @Produce json
// @Param id path int true "Campaign ID"
// @Success 200 {object} dto.APIResponse{data=dto.CampaignResponse} "Campaign"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Security BearerAuth
// @Router /api/v1/campaigns/{id} [get]
func (h *CampaignHandler) GetCampaign(c fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	campaignID, err := pathID(c, "id")
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid campaign ID", "INVALID_REQUEST", nil)
	}

	result, err := h.campaignFlow.GetCampaign(createRequestContext(c, "/api/v1/campaigns/:id"), campaignID, userID, currentUserIsAdmin(c))
	if err != nil {
		return businessErrorResponse(c, err, "Failed to fetch campaign")
	}
	return successResponse(c, fiber.StatusOK, "Campaign retrieved", result)
}

// ListCampaigns lists campaigns visible to the caller
// @Summary List campaigns
// @Description List campaigns; customers see their own, admins can filter by user
// @Tags Campaigns
// @Produce json
// @Param user_id query int false "Filter by owner (admin only)"
// @Param status query int false "Filter by campaign status"
// @Param search query string false "Search campaign names"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} dto.APIResponse{data=dto.ListCampaignsResponse} "Campaigns"
// @Security BearerAuth
// @Router /api/v1/campaigns [get]
func (h *CampaignHandler) ListCampaigns(c fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.ListCampaignsRequest
	if err := c.Bind().Query(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	req.RequesterID = userID
	req.RequesterIsAdmin = currentUserIsAdmin(c)

	result, err := h.campaignFlow.ListCampaigns(createRequestContext(c, "/api/v1/campaigns"), &req, clientMetadata(c))
	if err != nil {
		log.Println("List campaigns failed", err)
		return businessErrorResponse(c, err, "Failed to list campaigns")
	}
	return successResponse(c, fiber.StatusOK, "Campaigns retrieved", result)
}

// UpsertCampaignMedia attaches or refreshes media on a campaign
// @Summary Upsert campaign media
// @Description Attach new media to a campaign or refresh existing entries matched by file URL
// @Tags Campaigns
// @Accept json
// @Produce json
// @Param id path int true "Campaign ID"
// @Param request body dto.UpsertCampaignMediaRequest true "Media items"
// @Success 200 {object} dto.APIResponse{data=dto.UpsertCampaignMediaResponse} "Media upserted"
// @Failure 403 {object} dto.APIResponse "Not the campaign owner"
// @Security BearerAuth
// @Router /api/v1/campaigns/{id}/media [post]
func (h *CampaignHandler) UpsertCampaignMedia(c fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	campaignID, err := pathID(c, "id")
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid campaign ID", "INVALID_REQUEST", nil)
	}

	var req dto.UpsertCampaignMediaRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.CampaignID = campaignID
	req.RequesterID = userID
	req.RequesterIsAdmin = currentUserIsAdmin(c)
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := h.campaignFlow.UpsertCampaignMedia(createRequestContext(c, "/api/v1/campaigns/:id/media"), &req, clientMetadata(c))
	if err != nil {
		log.Println("Upsert campaign media failed", err)
		return businessErrorResponse(c, err, "Failed to upsert campaign media")
	}
	return successResponse(c, fiber.StatusOK, "Campaign media upserted", result)
}

// DeleteCampaign removes a campaign with all its media
// @Summary Delete campaign
// @Description Delete a campaign, its media rows, and their stored files; owners delete their own, admins any
// @Tags Campaigns
// @Produce json
// @Param id path int true "Campaign ID"
// @Success 200 {object} dto.APIResponse{data=dto.DeleteCampaignResponse} "Campaign deleted"
// @Failure 403 {object} dto.APIResponse "Not the campaign owner"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Security BearerAuth
// @Router /api/v1/campaigns/{id} [delete]
func (h *CampaignHandler) DeleteCampaign(c fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	campaignID, err := pathID(c, "id")
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid campaign ID", "INVALID_REQUEST", nil)
	}

	req := dto.DeleteCampaignRequest{
		CampaignID:       campaignID,
		RequesterID:      userID,
		RequesterIsAdmin: currentUserIsAdmin(c),
	}
	result, err := h.reviewFlow.DeleteCampaignCascade(createRequestContext(c, "/api/v1/campaigns/:id"), &req, clientMetadata(c))
	if err != nil {
		log.Println("Delete campaign failed", err)
		return businessErrorResponse(c, err, "Failed to delete campaign")
	}
	return successResponse(c, fiber.StatusOK, "Campaign deleted", result)
}
