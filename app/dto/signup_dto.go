package dto

// SignupRequest registers a new customer account
type SignupRequest struct {
	Name           string  `json:"name" validate:"required,max=120"`
	Email          string  `json:"email" validate:"required,email,max=255"`
	Mobile         *string `json:"mobile,omitempty" validate:"omitempty,e164"`
	Password       string  `json:"password" validate:"required,min=8,max=128"`
	CompanyName    *string `json:"company_name,omitempty" validate:"omitempty,max=120"`
	CompanyWebsite *string `json:"company_website,omitempty" validate:"omitempty,url,max=255"`
	Industry       *string `json:"industry,omitempty" validate:"omitempty,max=120"`
	CompanyAddress *string `json:"company_address,omitempty" validate:"omitempty,max=255"`
}

// SignupResponse acknowledges a registration and names the OTP target
type SignupResponse struct {
	UserID    uint   `json:"user_id"`
	OTPTarget string `json:"otp_target"`
	Message   string `json:"message"`
}

// OTPVerificationRequest confirms the signup verification code
type OTPVerificationRequest struct {
	UserID  uint   `json:"user_id" validate:"required"`
	OTPCode string `json:"otp_code" validate:"required,len=6,numeric"`
}

// OTPVerificationResponse carries the verified account and its first session
type OTPVerificationResponse struct {
	User    AuthUserDTO `json:"user"`
	Session SessionDTO  `json:"session"`
}

// OTPResendRequest asks for a fresh verification code
type OTPResendRequest struct {
	UserID uint `json:"user_id" validate:"required"`
}

// OTPResendResponse acknowledges the resent code
type OTPResendResponse struct {
	OTPTarget string `json:"otp_target"`
	Message   string `json:"message"`
}
