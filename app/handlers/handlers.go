// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/adsphere/adsphere/app/dto"
	businessflow "github.com/adsphere/adsphere/business_flow"
)

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return err.Field() + " must be at least " + err.Param() + " characters"
	case "max":
		return err.Field() + " must be at most " + err.Param() + " characters"
	case "len":
		return err.Field() + " must be exactly " + err.Param() + " characters"
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	case "url":
		return err.Field() + " must be a valid URL"
	case "e164":
		return err.Field() + " must be a valid international phone number"
	case "numeric":
		return err.Field() + " must contain only numbers"
	case "lowercase":
		return err.Field() + " must be lowercase"
	case "uppercase":
		return err.Field() + " must be uppercase"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
	default:
		return err.Field() + " is invalid"
	}
}

// validationMessages flattens validator errors into user-facing strings.
func validationMessages(err error) []string {
	var messages []string
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, verr := range verrs {
			messages = append(messages, getValidationErrorMessage(verr))
		}
		return messages
	}
	return []string{err.Error()}
}

func errorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func successResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// businessErrorResponse maps a flow error to an HTTP response using its
// business error code.
func businessErrorResponse(c fiber.Ctx, err error, fallbackMessage string) error {
	be, ok := err.(*businessflow.BusinessError)
	if !ok {
		return errorResponse(c, fiber.StatusInternalServerError, fallbackMessage, businessflow.CodeStorageFailure, nil)
	}

	status := fiber.StatusInternalServerError
	switch be.Code {
	case businessflow.CodeNotFound:
		status = fiber.StatusNotFound
	case businessflow.CodeInvalidInput:
		status = fiber.StatusBadRequest
	case businessflow.CodeUnauthorized:
		status = fiber.StatusUnauthorized
	case businessflow.CodeForbidden:
		status = fiber.StatusForbidden
	case businessflow.CodeConflict:
		status = fiber.StatusConflict
	}
	return errorResponse(c, status, be.Message, be.Code, nil)
}

// Long-running endpoints get more room than the default request timeout.
const (
	exportTimeout = 2 * time.Minute
	uploadTimeout = 5 * time.Minute
)

// clientMetadata collects client information for audit logging.
func clientMetadata(c fiber.Ctx) *businessflow.ClientMetadata {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	if requestID := c.Get(businessflow.RequestIDKey); requestID != "" {
		metadata.SetRequestID(requestID)
	}
	return metadata
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

// createRequestContextWithTimeout creates a context with custom timeout and request-scoped values
func createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	ctx = context.WithValue(ctx, "request_id", c.Get(businessflow.RequestIDKey))
	ctx = context.WithValue(ctx, "user_agent", c.Get("User-Agent"))
	ctx = context.WithValue(ctx, "ip_address", c.IP())
	ctx = context.WithValue(ctx, "endpoint", endpoint)
	ctx = context.WithValue(ctx, "timeout", timeout)
	ctx = context.WithValue(ctx, "cancel_func", cancel) // Store cancel function for cleanup

	return ctx
}

// currentUserID reads the authenticated user ID set by the auth middleware.
func currentUserID(c fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("user_id").(uint)
	return id, ok
}

// currentUserIsAdmin reads the admin flag set by the auth middleware.
func currentUserIsAdmin(c fiber.Ctx) bool {
	isAdmin, _ := c.Locals("is_admin").(bool)
	return isAdmin
}

// pathID parses a numeric path parameter.
func pathID(c fiber.Ctx, name string) (uint, error) {
	var id uint
	if _, err := fmt.Sscanf(c.Params(name), "%d", &id); err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}
