package dto

// LoginRequest authenticates by email and password
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the authenticated account and its session
type LoginResponse struct {
	User    AuthUserDTO `json:"user"`
	Session SessionDTO  `json:"session"`
}

// RefreshTokenRequest rotates a session using its refresh token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// UpdateBusinessInfoRequest edits company details on the profile
type UpdateBusinessInfoRequest struct {
	UserID         uint    `json:"-"`
	CompanyName    *string `json:"company_name,omitempty" validate:"omitempty,max=120"`
	CompanyWebsite *string `json:"company_website,omitempty" validate:"omitempty,url,max=255"`
	Industry       *string `json:"industry,omitempty" validate:"omitempty,max=120"`
	CompanyAddress *string `json:"company_address,omitempty" validate:"omitempty,max=255"`
}
