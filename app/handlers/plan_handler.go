package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/adsphere/adsphere/app/dto"
	businessflow "github.com/adsphere/adsphere/business_flow"
)

// PlanHandler serves the public plan catalog and the admin plan CRUD
type PlanHandler struct {
	planFlow  businessflow.PlanFlow
	validator *validator.Validate
}

// NewPlanHandler creates a new plan handler
func NewPlanHandler(planFlow businessflow.PlanFlow) *PlanHandler {
	return &PlanHandler{
		planFlow:  planFlow,
		validator: validator.New(),
	}
}

// ListPlans returns the active plan catalog
// @Summary List plans
// @Description List active subscription plans ordered by price
// @Tags Plans
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListPlansResponse} "Plan catalog"
// @Router /api/v1/plans [get]
func (h *PlanHandler) ListPlans(c fiber.Ctx) error {
	result, err := h.planFlow.ListPlans(createRequestContext(c, "/api/v1/plans"))
	if err != nil {
		log.Println("List plans failed", err)
		return businessErrorResponse(c, err, "Failed to list plans")
	}
	return successResponse(c, fiber.StatusOK, "Plans retrieved", result)
}

// ListAllPlans returns every plan for the admin console
// @Summary List all plans
// @Description List all subscription plans, inactive ones included (admin only)
// @Tags Admin
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListPlansResponse} "Plan catalog"
// @Security BearerAuth
// @Router /api/v1/admin/plans [get]
func (h *PlanHandler) ListAllPlans(c fiber.Ctx) error {
	result, err := h.planFlow.ListAllPlans(createRequestContext(c, "/api/v1/admin/plans"))
	if err != nil {
		log.Println("List all plans failed", err)
		return businessErrorResponse(c, err, "Failed to list plans")
	}
	return successResponse(c, fiber.StatusOK, "Plans retrieved", result)
}

// GetPlan returns a single active plan by slug
// @Summary Get plan
// @Description Fetch one active plan by its slug
// @Tags Plans
// @Produce json
// @Param slug path string true "Plan slug"
// @Success 200 {object} dto.APIResponse{data=dto.PlanResponse} "Plan"
// @Failure 404 {object} dto.APIResponse "Plan not found"
// @Router /api/v1/plans/{slug} [get]
func (h *PlanHandler) GetPlan(c fiber.Ctx) error {
	slug := c.Params("slug")
	if slug == "" {
		return errorResponse(c, fiber.StatusBadRequest, "Plan slug is required", "INVALID_REQUEST", nil)
	}

	result, err := h.planFlow.GetPlan(createRequestContext(c, "/api/v1/plans/:slug"), slug)
	if err != nil {
		return businessErrorResponse(c, err, "Failed to fetch plan")
	}
	return successResponse(c, fiber.StatusOK, "Plan retrieved", result)
}

// CreatePlan creates a new subscription plan
// @Summary Create plan
// @Description Create a subscription plan (admin only)
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body dto.CreatePlanRequest true "Plan details"
// @Success 201 {object} dto.APIResponse{data=dto.PlanResponse} "Plan created"
// @Failure 409 {object} dto.APIResponse "Slug already in use"
// @Security BearerAuth
// @Router /api/v1/admin/plans [post]
func (h *PlanHandler) CreatePlan(c fiber.Ctx) error {
	adminID, ok := currentUserID(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.CreatePlanRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := h.planFlow.CreatePlan(createRequestContext(c, "/api/v1/admin/plans"), &req, adminID, clientMetadata(c))
	if err != nil {
		log.Println("Create plan failed", err)
		return businessErrorResponse(c, err, "Failed to create plan")
	}
	return successResponse(c, fiber.StatusCreated, "Plan created", result)
}

// UpdatePlan updates an existing plan
// @Summary Update plan
// @Description Update a subscription plan (admin only)
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path int true "Plan ID"
// @Param request body dto.UpdatePlanRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.PlanResponse} "Plan updated"
// @Failure 404 {object} dto.APIResponse "Plan not found"
// @Security BearerAuth
// @Router /api/v1/admin/plans/{id} [put]
func (h *PlanHandler) UpdatePlan(c fiber.Ctx) error {
	adminID, ok := currentUserID(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	planID, err := pathID(c, "id")
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid plan ID", "INVALID_REQUEST", nil)
	}

	var req dto.UpdatePlanRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.PlanID = planID
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := h.planFlow.UpdatePlan(createRequestContext(c, "/api/v1/admin/plans/:id"), &req, adminID, clientMetadata(c))
	if err != nil {
		log.Println("Update plan failed", err)
		return businessErrorResponse(c, err, "Failed to update plan")
	}
	return successResponse(c, fiber.StatusOK, "Plan updated", result)
}

// DeletePlan deactivates a plan with no live subscriptions
// @Summary Delete plan
// @Description Delete a subscription plan that has no active or pending subscriptions (admin only)
// @Tags Admin
// @Produce json
// @Param id path int true "Plan ID"
// @Success 200 {object} dto.APIResponse "Plan deleted"
// @Failure 409 {object} dto.APIResponse "Plan still has live subscriptions"
// @Security BearerAuth
// @Router /api/v1/admin/plans/{id} [delete]
func (h *PlanHandler) DeletePlan(c fiber.Ctx) error {
	adminID, ok := currentUserID(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	planID, err := pathID(c, "id")
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid plan ID", "INVALID_REQUEST", nil)
	}

	if err := h.planFlow.DeletePlan(createRequestContext(c, "/api/v1/admin/plans/:id"), planID, adminID, clientMetadata(c)); err != nil {
		log.Println("Delete plan failed", err)
		return businessErrorResponse(c, err, "Failed to delete plan")
	}
	return successResponse(c, fiber.StatusOK, "Plan deleted", nil)
}
