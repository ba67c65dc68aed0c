// Package dto contains the request and response shapes of the HTTP API
package dto

// APIResponse represents the standard API response structure
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty" validate:"omitempty"`
	Error   any    `json:"error,omitempty" validate:"omitempty"`
}

// ErrorDetail represents error details in API responses
type ErrorDetail struct {
	Code    string `json:"code"`
	Details any    `json:"details,omitempty" validate:"omitempty"`
}

// PaginationDTO describes the page window of a list response
type PaginationDTO struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginationDTO builds pagination metadata from a page window and total count
func NewPaginationDTO(page, pageSize int, total int64) PaginationDTO {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return PaginationDTO{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

// AuthUserDTO is the outward shape of a user account
type AuthUserDTO struct {
	ID             uint    `json:"id"`
	UUID           string  `json:"uuid"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Mobile         *string `json:"mobile,omitempty"`
	Role           int     `json:"role"`
	CompanyName    *string `json:"company_name,omitempty"`
	CompanyWebsite *string `json:"company_website,omitempty"`
	Industry       *string `json:"industry,omitempty"`
	CompanyAddress *string `json:"company_address,omitempty"`
	IsVerified     *bool   `json:"is_verified"`
	IsActive       *bool   `json:"is_active"`
	CreatedAt      string  `json:"created_at"`
	LastLoginAt    *string `json:"last_login_at,omitempty"`
}

// SessionDTO carries the issued tokens of an authenticated session
type SessionDTO struct {
	SessionToken string  `json:"session_token"`
	RefreshToken *string `json:"refresh_token,omitempty"`
	ExpiresIn    int     `json:"expires_in"`
	TokenType    string  `json:"token_type"`
	CreatedAt    string  `json:"created_at"`
}
