package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/adsphere/adsphere/app/dto"
	businessflow "github.com/adsphere/adsphere/business_flow"
)

// AdminAuthHandler handles the captcha-protected admin login
type AdminAuthHandler struct {
	adminAuthFlow businessflow.AdminAuthFlow
	validator     *validator.Validate
}

// NewAdminAuthHandler creates a new admin auth handler
func NewAdminAuthHandler(adminAuthFlow businessflow.AdminAuthFlow) *AdminAuthHandler {
	return &AdminAuthHandler{
		adminAuthFlow: adminAuthFlow,
		validator:     validator.New(),
	}
}

// InitCaptcha serves a rotate captcha challenge
// @Summary Admin Captcha
// @Description Serve a rotate captcha challenge for admin login
// @Tags Admin
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.AdminCaptchaInitResponse} "Captcha challenge"
// @Failure 500 {object} dto.APIResponse "Captcha unavailable"
// @Router /api/v1/admin/auth/captcha [get]
func (h *AdminAuthHandler) InitCaptcha(c fiber.Ctx) error {
	result, err := h.adminAuthFlow.InitCaptcha(createRequestContext(c, "/api/v1/admin/auth/captcha"))
	if err != nil {
		log.Println("Captcha init failed", err)
		return businessErrorResponse(c, err, "Failed to initialize captcha")
	}
	return successResponse(c, fiber.StatusOK, "Captcha challenge created", result)
}

// Login verifies the captcha answer plus admin credentials
// @Summary Admin Login
// @Description Authenticate an admin account behind a rotate captcha
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body dto.AdminCaptchaVerifyRequest true "Credentials and captcha answer"
// @Success 200 {object} dto.APIResponse{data=dto.LoginResponse} "Login successful"
// @Failure 401 {object} dto.APIResponse "Authentication or captcha failed"
// @Failure 403 {object} dto.APIResponse "Account is not an admin"
// @Router /api/v1/admin/auth/login [post]
func (h *AdminAuthHandler) Login(c fiber.Ctx) error {
	var req dto.AdminCaptchaVerifyRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := h.adminAuthFlow.Verify(createRequestContext(c, "/api/v1/admin/auth/login"), &req, clientMetadata(c))
	if err != nil {
		log.Println("Admin login failed", err)
		return businessErrorResponse(c, err, "Admin login failed")
	}

	return successResponse(c, fiber.StatusOK, "Login successful", result)
}
