// Package businessflow contains the core business logic and use cases for the platform
package businessflow

import (
	"errors"
	"fmt"
)

// Stable business error codes surfaced to the transport layer
const (
	CodeNotFound           = "NOT_FOUND"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeStorageFailure     = "STORAGE_FAILURE"
	CodeFileCleanupFailure = "FILE_CLEANUP_FAILURE"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeConflict           = "CONFLICT"
)

// Business flow error constants
var (
	// User-related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrAccountNotVerified = errors.New("account is not verified")
	ErrIncorrectPassword  = errors.New("incorrect password")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrNotAnAdmin         = errors.New("user is not an admin")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session has expired")

	// OTP-related errors
	ErrNoValidOTPFound = errors.New("no valid OTP found")
	ErrInvalidOTPCode  = errors.New("invalid OTP code")
	ErrOTPExpired      = errors.New("OTP has expired")
	ErrAlreadyVerified = errors.New("already verified")

	// Captcha errors
	ErrCaptchaFailed = errors.New("captcha verification failed")

	// Plan-related errors
	ErrPlanNotFound         = errors.New("plan not found")
	ErrPlanSlugTaken        = errors.New("plan slug already in use")
	ErrPlanHasSubscriptions = errors.New("plan has live subscriptions")
	ErrPlanInactive         = errors.New("plan is not active")

	// Subscription errors
	ErrNoActiveSubscription = errors.New("no active subscription")

	// Payment-related errors
	ErrDuplicatePayment = errors.New("payment already recorded")
	ErrAmountInvalid    = errors.New("payment amount must be positive")

	// Campaign-related errors
	ErrCampaignNotFound     = errors.New("campaign not found")
	ErrCampaignAccessDenied = errors.New("campaign access denied")
	ErrCampaignLimitReached = errors.New("campaign limit for the plan reached")
	ErrEndBeforeStart       = errors.New("campaign end must be after start")

	// Media review errors
	ErrMediaNotFound      = errors.New("campaign media not found")
	ErrUnknownDecision    = errors.New("unrecognized review decision")
	ErrNoEditableFields   = errors.New("at least one field must be provided for update")
	ErrInvalidMediaType   = errors.New("media type must be image or video")
	ErrFileCleanupFailed  = errors.New("physical file deletion failed")
	ErrUploadMissingFile  = errors.New("file is required")
	ErrUploadPathRequired = errors.New("file path is required")

	// Filter errors
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = errors.New("page size must be between 1 and 100")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

func IsAccountInactive(err error) bool {
	return errors.Is(err, ErrAccountInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsEmailAlreadyExists(err error) bool {
	return errors.Is(err, ErrEmailAlreadyExists)
}

func IsPlanNotFound(err error) bool {
	return errors.Is(err, ErrPlanNotFound)
}

func IsCampaignNotFound(err error) bool {
	return errors.Is(err, ErrCampaignNotFound)
}

func IsCampaignAccessDenied(err error) bool {
	return errors.Is(err, ErrCampaignAccessDenied)
}

func IsMediaNotFound(err error) bool {
	return errors.Is(err, ErrMediaNotFound)
}

func IsUnknownDecision(err error) bool {
	return errors.Is(err, ErrUnknownDecision)
}

func IsFileCleanupFailed(err error) bool {
	return errors.Is(err, ErrFileCleanupFailed)
}

func IsDuplicatePayment(err error) bool {
	return errors.Is(err, ErrDuplicatePayment)
}

func IsNoValidOTPFound(err error) bool {
	return errors.Is(err, ErrNoValidOTPFound)
}

func IsInvalidOTPCode(err error) bool {
	return errors.Is(err, ErrInvalidOTPCode)
}

func IsAlreadyVerified(err error) bool {
	return errors.Is(err, ErrAlreadyVerified)
}

func IsPlanHasSubscriptions(err error) bool {
	return errors.Is(err, ErrPlanHasSubscriptions)
}
