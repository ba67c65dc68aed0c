// Package middleware contains HTTP middleware functions for request processing
package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/adsphere/adsphere/app/dto"
	"github.com/adsphere/adsphere/app/services"
	"github.com/adsphere/adsphere/models"
)

// AuthMiddleware handles JWT token validation for protected endpoints
type AuthMiddleware struct {
	tokenService services.TokenService
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(tokenService services.TokenService) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
	}
}

func unauthorized(c fiber.Ctx, message, code string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code: code,
		},
	})
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(c fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", unauthorized(c, "Authorization header is required", "MISSING_AUTHORIZATION_HEADER")
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", unauthorized(c, "Invalid authorization header format. Expected 'Bearer <token>'", "INVALID_AUTHORIZATION_FORMAT")
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", unauthorized(c, "Access token is required", "MISSING_ACCESS_TOKEN")
	}
	return token, nil
}

func tokenError(c fiber.Ctx, err error) error {
	var code, message string
	if errors.Is(err, services.ErrTokenExpired) {
		code = "TOKEN_EXPIRED"
		message = "Access token has expired"
	} else if errors.Is(err, services.ErrTokenInvalid) {
		code = "TOKEN_INVALID"
		message = "Invalid access token"
	} else if errors.Is(err, services.ErrTokenRevoked) {
		code = "TOKEN_REVOKED"
		message = "Access token has been revoked"
	} else {
		code = "TOKEN_VALIDATION_FAILED"
		message = "Token validation failed"
	}
	return unauthorized(c, message, code)
}

// setAuthLocals stores the authenticated identity for downstream handlers.
func setAuthLocals(c fiber.Ctx, token string, claims *services.TokenClaims) {
	c.Locals("user_id", claims.UserID)
	c.Locals("is_admin", claims.Role == models.RoleAdmin)
	c.Locals("session_token", token)
	c.Locals("token_claims", claims)

	if requestID := c.Get("X-Request-ID"); requestID != "" {
		c.Locals("request_id", requestID)
	}
}

// Authenticate is the middleware function that validates JWT tokens
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, err := bearerToken(c)
		if err != nil {
			return err
		}

		// Validation already checks the revocation list
		claims, err := m.tokenService.ValidateToken(token)
		if err != nil {
			return tokenError(c, err)
		}

		setAuthLocals(c, token, claims)
		return c.Next()
	}
}

// AdminAuthenticate validates JWT tokens and rejects non-admin accounts
func (m *AuthMiddleware) AdminAuthenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, err := bearerToken(c)
		if err != nil {
			return err
		}

		claims, err := m.tokenService.ValidateToken(token)
		if err != nil {
			return tokenError(c, err)
		}

		if claims.Role != models.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(dto.APIResponse{
				Success: false,
				Message: "Admin privileges required",
				Error:   dto.ErrorDetail{Code: "FORBIDDEN"},
			})
		}

		setAuthLocals(c, token, claims)
		return c.Next()
	}
}

// OptionalAuth is a middleware that validates JWT tokens if present, but doesn't require them
func (m *AuthMiddleware) OptionalAuth() fiber.Handler {
	return func(c fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Next()
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			return c.Next()
		}

		claims, err := m.tokenService.ValidateToken(token)
		if err != nil {
			// Optional auth, continue anonymously
			return c.Next()
		}

		setAuthLocals(c, token, claims)
		return c.Next()
	}
}

// GetUserIDFromContext extracts the authenticated user ID from the request context
func GetUserIDFromContext(c fiber.Ctx) (uint, bool) {
	userID, ok := c.Locals("user_id").(uint)
	return userID, ok
}

// GetTokenClaimsFromContext extracts token claims from the request context
func GetTokenClaimsFromContext(c fiber.Ctx) (*services.TokenClaims, bool) {
	claims, ok := c.Locals("token_claims").(*services.TokenClaims)
	return claims, ok
}
