package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/adsphere/adsphere/app/dto"
	"github.com/adsphere/adsphere/app/middleware"
	businessflow "github.com/adsphere/adsphere/business_flow"
)

// MediaReviewHandler serves the admin media review surface
type MediaReviewHandler struct {
	reviewFlow businessflow.MediaReviewFlow
	validator  *validator.Validate
}

// NewMediaReviewHandler creates a new media review handler
func NewMediaReviewHandler(reviewFlow businessflow.MediaReviewFlow) *MediaReviewHandler {
	return &MediaReviewHandler{
		reviewFlow: reviewFlow,
		validator:  validator.New(),
	}
}

// SubmitReview approves a media item or requests changes on it
// @Summary Review media
// @Description Approve a campaign media item or request changes, recomputing the campaign status
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path int true "Media ID"
// @Param request body dto.SubmitReviewRequest true "Review decision"
// @Success 200 {object} dto.APIResponse{data=dto.SubmitReviewResponse} "Review recorded"
// @Failure 404 {object} dto.APIResponse "Media not found"
// @Security BearerAuth
// @Router /api/v1/admin/media/{id}/review [post]
func (h *MediaReviewHandler) SubmitReview(c fiber.Ctx) error {
	mediaID, err := pathID(c, "id")
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid media ID", "INVALID_REQUEST", nil)
	}

	var req dto.SubmitReviewRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.MediaID = mediaID
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := h.reviewFlow.SubmitReview(createRequestContext(c, "/api/v1/admin/media/:id/review"), &req, clientMetadata(c))
	if err != nil {
		log.Println("Submit review failed", err)
		return businessErrorResponse(c, err, "Failed to submit review")
	}
	middleware.RecordReviewDecision(req.Decision)
	return successResponse(c, fiber.StatusOK, "Review recorded", result)
}

// EditMedia edits a media item in place on behalf of the customer
// @Summary Edit media
// @Description Edit a media item's file, details, or type, forcing it back through review
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path int true "Media ID"
// @Param request body dto.EditMediaRequest true "Fields to edit"
// @Success 200 {object} dto.APIResponse{data=dto.EditMediaResponse} "Media edited"
// @Failure 404 {object} dto.APIResponse "Media not found"
// @Security BearerAuth
// @Router /api/v1/admin/media/{id} [put]
func (h *MediaReviewHandler) EditMedia(c fiber.Ctx) error {
	mediaID, err := pathID(c, "id")
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid media ID", "INVALID_REQUEST", nil)
	}

	var req dto.EditMediaRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.MediaID = mediaID
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := h.reviewFlow.EditMedia(createRequestContext(c, "/api/v1/admin/media/:id"), &req, clientMetadata(c))
	if err != nil {
		log.Println("Edit media failed", err)
		return businessErrorResponse(c, err, "Failed to edit media")
	}
	return successResponse(c, fiber.StatusOK, "Media edited", result)
}

// DeleteMedia removes a media item and its stored file
// @Summary Delete media
// @Description Delete one media item and its stored file
// @Tags Admin
// @Produce json
// @Param id path int true "Media ID"
// @Success 200 {object} dto.APIResponse{data=dto.DeleteMediaResponse} "Media deleted"
// @Failure 404 {object} dto.APIResponse "Media not found"
// @Security BearerAuth
// @Router /api/v1/admin/media/{id} [delete]
func (h *MediaReviewHandler) DeleteMedia(c fiber.Ctx) error {
	mediaID, err := pathID(c, "id")
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid media ID", "INVALID_REQUEST", nil)
	}

	req := dto.DeleteMediaRequest{MediaID: mediaID}
	result, err := h.reviewFlow.DeleteMedia(createRequestContext(c, "/api/v1/admin/media/:id"), &req, clientMetadata(c))
	if err != nil {
		log.Println("Delete media failed", err)
		return businessErrorResponse(c, err, "Failed to delete media")
	}
	return successResponse(c, fiber.StatusOK, "Media deleted", result)
}
