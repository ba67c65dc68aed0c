package handlers

import (
	"log"

	"github.com/gofiber/fiber/v3"

	"github.com/adsphere/adsphere/app/dto"
	businessflow "github.com/adsphere/adsphere/business_flow"
)

// AdminHandler serves the admin account and subscription views
type AdminHandler struct {
	adminFlow businessflow.AdminFlow
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminFlow businessflow.AdminFlow) *AdminHandler {
	return &AdminHandler{adminFlow: adminFlow}
}

// ListCustomers lists customer accounts
// @Summary List customers
// @Description List customer accounts with optional search and status filters (admin only)
// @Tags Admin
// @Produce json
// @Param search query string false "Search name, email, or company"
// @Param is_verified query bool false "Filter by verification state"
// @Param is_active query bool false "Filter by active state"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} dto.APIResponse{data=dto.ListCustomersResponse} "Customers"
// @Security BearerAuth
// @Router /api/v1/admin/customers [get]
func (h *AdminHandler) ListCustomers(c fiber.Ctx) error {
	var req dto.ListCustomersRequest
	if err := c.Bind().Query(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	result, err := h.adminFlow.ListCustomers(createRequestContext(c, "/api/v1/admin/customers"), &req)
	if err != nil {
		log.Println("List customers failed", err)
		return businessErrorResponse(c, err, "Failed to list customers")
	}
	return successResponse(c, fiber.StatusOK, "Customers retrieved", result)
}

// ListSubscriptions lists subscriptions across all customers
// @Summary List subscriptions
// @Description List subscriptions with optional user, plan, and status filters (admin only)
// @Tags Admin
// @Produce json
// @Param user_id query int false "Filter by user ID"
// @Param plan_id query int false "Filter by plan ID"
// @Param status query string false "Filter by subscription status"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} dto.APIResponse{data=dto.ListSubscriptionsResponse} "Subscriptions"
// @Security BearerAuth
// @Router /api/v1/admin/subscriptions [get]
func (h *AdminHandler) ListSubscriptions(c fiber.Ctx) error {
	var req dto.ListSubscriptionsRequest
	if err := c.Bind().Query(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	result, err := h.adminFlow.ListSubscriptions(createRequestContext(c, "/api/v1/admin/subscriptions"), &req)
	if err != nil {
		log.Println("List subscriptions failed", err)
		return businessErrorResponse(c, err, "Failed to list subscriptions")
	}
	return successResponse(c, fiber.StatusOK, "Subscriptions retrieved", result)
}
