package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/adsphere/adsphere/app/dto"
	businessflow "github.com/adsphere/adsphere/business_flow"
)

// PaymentHandler records gateway payments and serves the admin payment views
type PaymentHandler struct {
	paymentFlow businessflow.PaymentFlow
	validator   *validator.Validate
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentFlow businessflow.PaymentFlow) *PaymentHandler {
	return &PaymentHandler{
		paymentFlow: paymentFlow,
		validator:   validator.New(),
	}
}

// RecordPayment records a confirmed gateway payment and activates the subscription
// @Summary Record payment
// @Description Record a confirmed payment and activate or extend the caller's subscription
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body dto.RecordPaymentRequest true "Payment details"
// @Success 201 {object} dto.APIResponse{data=dto.RecordPaymentResponse} "Payment recorded"
// @Failure 409 {object} dto.APIResponse "Payment already recorded"
// @Security BearerAuth
// @Router /api/v1/payments [post]
func (h *PaymentHandler) RecordPayment(c fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.RecordPaymentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.UserID = userID
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := h.paymentFlow.RecordPayment(createRequestContext(c, "/api/v1/payments"), &req, clientMetadata(c))
	if err != nil {
		log.Println("Record payment failed", err)
		return businessErrorResponse(c, err, "Failed to record payment")
	}
	return successResponse(c, fiber.StatusCreated, "Payment recorded", result)
}

// ListMyPayments lists the caller's own payment history
// @Summary My payments
// @Description List the authenticated customer's payment history
// @Tags Payments
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} dto.APIResponse{data=dto.ListPaymentsResponse} "Payments"
// @Security BearerAuth
// @Router /api/v1/payments [get]
func (h *PaymentHandler) ListMyPayments(c fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.ListPaymentsRequest
	if err := c.Bind().Query(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	req.UserID = &userID

	result, err := h.paymentFlow.ListPayments(createRequestContext(c, "/api/v1/payments"), &req)
	if err != nil {
		return businessErrorResponse(c, err, "Failed to list payments")
	}
	return successResponse(c, fiber.StatusOK, "Payments retrieved", result)
}

// ListPayments lists payments across all customers
// @Summary List payments
// @Description List payments with optional filters (admin only)
// @Tags Admin
// @Produce json
// @Param user_id query int false "Filter by user ID"
// @Param plan_id query int false "Filter by plan ID"
// @Param status query string false "Filter by payment status"
// @Param search query string false "Search gateway references"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} dto.APIResponse{data=dto.ListPaymentsResponse} "Payments"
// @Security BearerAuth
// @Router /api/v1/admin/payments [get]
func (h *PaymentHandler) ListPayments(c fiber.Ctx) error {
	var req dto.ListPaymentsRequest
	if err := c.Bind().Query(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	result, err := h.paymentFlow.ListPayments(createRequestContext(c, "/api/v1/admin/payments"), &req)
	if err != nil {
		log.Println("List payments failed", err)
		return businessErrorResponse(c, err, "Failed to list payments")
	}
	return successResponse(c, fiber.StatusOK, "Payments retrieved", result)
}

// PaymentStats aggregates revenue over a date window
// @Summary Payment stats
// @Description Aggregate paid revenue totals and per-plan breakdown (admin only)
// @Tags Admin
// @Produce json
// @Param date_after query string false "Window start (RFC3339)"
// @Param date_before query string false "Window end (RFC3339)"
// @Success 200 {object} dto.APIResponse{data=dto.PaymentStatsResponse} "Revenue stats"
// @Security BearerAuth
// @Router /api/v1/admin/payments/stats [get]
func (h *PaymentHandler) PaymentStats(c fiber.Ctx) error {
	var req dto.PaymentStatsRequest
	if err := c.Bind().Query(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	result, err := h.paymentFlow.GetPaymentStats(createRequestContext(c, "/api/v1/admin/payments/stats"), &req)
	if err != nil {
		log.Println("Payment stats failed", err)
		return businessErrorResponse(c, err, "Failed to compute payment stats")
	}
	return successResponse(c, fiber.StatusOK, "Payment stats retrieved", result)
}

// ExportPayments streams the filtered payment list as an xlsx workbook
// @Summary Export payments
// @Description Export the filtered payment list as an Excel workbook (admin only)
// @Tags Admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param user_id query int false "Filter by user ID"
// @Param plan_id query int false "Filter by plan ID"
// @Param status query string false "Filter by payment status"
// @Success 200 {file} binary "Excel workbook"
// @Security BearerAuth
// @Router /api/v1/admin/payments/export [get]
func (h *PaymentHandler) ExportPayments(c fiber.Ctx) error {
	var req dto.ListPaymentsRequest
	if err := c.Bind().Query(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	filename, content, err := h.paymentFlow.ExportPayments(createRequestContextWithTimeout(c, "/api/v1/admin/payments/export", exportTimeout), &req)
	if err != nil {
		log.Println("Export payments failed", err)
		return businessErrorResponse(c, err, "Failed to export payments")
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(content)
}
