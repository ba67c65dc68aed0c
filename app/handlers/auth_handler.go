package handlers

import (
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/adsphere/adsphere/app/dto"
	businessflow "github.com/adsphere/adsphere/business_flow"
)

// AuthHandlerInterface defines the contract for authentication handlers
type AuthHandlerInterface interface {
	Signup(c fiber.Ctx) error
	VerifyOTP(c fiber.Ctx) error
	ResendOTP(c fiber.Ctx) error
	Login(c fiber.Ctx) error
	Logout(c fiber.Ctx) error
	RefreshSession(c fiber.Ctx) error
	GetProfile(c fiber.Ctx) error
	UpdateBusinessInfo(c fiber.Ctx) error
	Health(c fiber.Ctx) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	signupFlow businessflow.SignupFlow
	loginFlow  businessflow.LoginFlow
	validator  *validator.Validate
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(signupFlow businessflow.SignupFlow, loginFlow businessflow.LoginFlow) *AuthHandler {
	return &AuthHandler{
		signupFlow: signupFlow,
		loginFlow:  loginFlow,
		validator:  validator.New(),
	}
}

// Signup handles the customer registration process
// @Summary Customer Registration
// @Description Register a new customer account with email verification
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.SignupRequest true "Registration data"
// @Success 200 {object} dto.APIResponse{data=dto.SignupResponse} "Registration initiated successfully"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 409 {object} dto.APIResponse "Email already registered"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/auth/signup [post]
func (h *AuthHandler) Signup(c fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := h.signupFlow.Signup(createRequestContext(c, "/api/v1/auth/signup"), &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsEmailAlreadyExists(err) {
			return errorResponse(c, fiber.StatusConflict, "Email already registered", "EMAIL_EXISTS", nil)
		}
		log.Println("Signup failed", err)
		return businessErrorResponse(c, err, "Signup failed")
	}

	return successResponse(c, fiber.StatusOK, result.Message, result)
}

// VerifyOTP handles OTP verification for customer registration
// @Summary Verify OTP
// @Description Verify the OTP code sent to the account email
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.OTPVerificationRequest true "OTP verification data"
// @Success 200 {object} dto.APIResponse{data=dto.OTPVerificationResponse} "OTP verified successfully"
// @Failure 400 {object} dto.APIResponse "Invalid OTP or request"
// @Failure 404 {object} dto.APIResponse "User not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/auth/verify [post]
func (h *AuthHandler) VerifyOTP(c fiber.Ctx) error {
	var req dto.OTPVerificationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := h.signupFlow.VerifyOTP(createRequestContext(c, "/api/v1/auth/verify"), &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsNoValidOTPFound(err) {
			return errorResponse(c, fiber.StatusBadRequest, "No valid verification code found", "NO_VALID_OTP", nil)
		}
		if businessflow.IsInvalidOTPCode(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Verification code is incorrect", "INVALID_OTP_CODE", nil)
		}
		log.Println("OTP verification failed", err)
		return businessErrorResponse(c, err, "OTP verification failed")
	}

	return successResponse(c, fiber.StatusOK, "Account verified successfully", result)
}

// ResendOTP handles resending the verification code
// @Summary Resend OTP
// @Description Resend the verification code to the account email
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.OTPResendRequest true "OTP resend request"
// @Success 200 {object} dto.APIResponse{data=dto.OTPResendResponse} "OTP resent successfully"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Failure 404 {object} dto.APIResponse "User not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/auth/resend-otp [post]
func (h *AuthHandler) ResendOTP(c fiber.Ctx) error {
	var req dto.OTPResendRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	result, err := h.signupFlow.ResendOTP(createRequestContext(c, "/api/v1/auth/resend-otp"), &req, clientMetadata(c))
	if err != nil {
		log.Println("Resend OTP failed", err)
		return businessErrorResponse(c, err, "Failed to resend verification code")
	}

	return successResponse(c, fiber.StatusOK, result.Message, result)
}

// Login handles customer authentication
// @Summary Customer Login
// @Description Authenticate with email and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.LoginResponse} "Login successful"
// @Failure 400 {object} dto.APIResponse "Invalid request"
// @Failure 401 {object} dto.APIResponse "Authentication failed"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := h.loginFlow.Login(createRequestContext(c, "/api/v1/auth/login"), &req, clientMetadata(c))
	if err != nil {
		log.Println("Login failed", err)
		return businessErrorResponse(c, err, "Login failed")
	}

	return successResponse(c, fiber.StatusOK, "Login successful", result)
}

// Logout expires the current session
// @Summary Logout
// @Description Expire the current session and revoke its token
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse "Logged out"
// @Failure 401 {object} dto.APIResponse "Not authenticated"
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Not authenticated", "UNAUTHORIZED", nil)
	}
	token, _ := c.Locals("session_token").(string)

	if err := h.loginFlow.Logout(createRequestContext(c, "/api/v1/auth/logout"), userID, token, clientMetadata(c)); err != nil {
		log.Println("Logout failed", err)
		return businessErrorResponse(c, err, "Logout failed")
	}

	return successResponse(c, fiber.StatusOK, "Logged out", nil)
}

// RefreshSession rotates the session using a refresh token
// @Summary Refresh Session
// @Description Exchange a refresh token for a new session
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.APIResponse{data=dto.LoginResponse} "Session refreshed"
// @Failure 401 {object} dto.APIResponse "Refresh token invalid or expired"
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) RefreshSession(c fiber.Ctx) error {
	var req dto.RefreshTokenRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	result, err := h.loginFlow.RefreshSession(createRequestContext(c, "/api/v1/auth/refresh"), &req, clientMetadata(c))
	if err != nil {
		log.Println("Session refresh failed", err)
		return businessErrorResponse(c, err, "Session refresh failed")
	}

	return successResponse(c, fiber.StatusOK, "Session refreshed", result)
}

// GetProfile returns the authenticated profile
// @Summary Get Profile
// @Description Return the authenticated user's profile
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.AuthUserDTO} "Profile"
// @Failure 401 {object} dto.APIResponse "Not authenticated"
// @Router /api/v1/profile [get]
func (h *AuthHandler) GetProfile(c fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Not authenticated", "UNAUTHORIZED", nil)
	}

	result, err := h.loginFlow.GetProfile(createRequestContext(c, "/api/v1/profile"), userID)
	if err != nil {
		return businessErrorResponse(c, err, "Failed to load profile")
	}

	return successResponse(c, fiber.StatusOK, "Profile retrieved", result)
}

// UpdateBusinessInfo updates company details on the profile
// @Summary Update Business Info
// @Description Update company details on the authenticated profile
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateBusinessInfoRequest true "Business info"
// @Success 200 {object} dto.APIResponse{data=dto.AuthUserDTO} "Profile updated"
// @Failure 401 {object} dto.APIResponse "Not authenticated"
// @Router /api/v1/profile/business-info [put]
func (h *AuthHandler) UpdateBusinessInfo(c fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Not authenticated", "UNAUTHORIZED", nil)
	}

	var req dto.UpdateBusinessInfoRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.UserID = userID

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := h.loginFlow.UpdateBusinessInfo(createRequestContext(c, "/api/v1/profile/business-info"), &req, clientMetadata(c))
	if err != nil {
		return businessErrorResponse(c, err, "Failed to update profile")
	}

	return successResponse(c, fiber.StatusOK, "Profile updated", result)
}

// Health handles health check requests
// @Summary Health Check
// @Description Check the health status of the API
// @Tags Health
// @Produce json
// @Success 200 {object} dto.APIResponse "Service is healthy"
// @Router /api/v1/health [get]
func (h *AuthHandler) Health(c fiber.Ctx) error {
	return successResponse(c, fiber.StatusOK, "Service is healthy", fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
