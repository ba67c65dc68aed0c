package businessflow

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/adsphere/adsphere/app/dto"
	"github.com/adsphere/adsphere/app/services"
	"github.com/adsphere/adsphere/models"
	"github.com/adsphere/adsphere/repository"
	"github.com/adsphere/adsphere/utils"
)

// SignupFlow handles the customer registration process
type SignupFlow interface {
	Signup(ctx context.Context, req *dto.SignupRequest, metadata *ClientMetadata) (*dto.SignupResponse, error)
	VerifyOTP(ctx context.Context, req *dto.OTPVerificationRequest, metadata *ClientMetadata) (*dto.OTPVerificationResponse, error)
	ResendOTP(ctx context.Context, req *dto.OTPResendRequest, metadata *ClientMetadata) (*dto.OTPResendResponse, error)
}

// SignupFlowImpl implements the signup business flow
type SignupFlowImpl struct {
	userRepo            repository.UserRepository
	otpRepo             repository.OTPVerificationRepository
	sessionRepo         repository.UserSessionRepository
	auditRepo           repository.AuditLogRepository
	tokenService        services.TokenService
	notificationService services.NotificationService
	db                  *gorm.DB
}

// NewSignupFlow creates a new signup flow instance
func NewSignupFlow(
	userRepo repository.UserRepository,
	otpRepo repository.OTPVerificationRepository,
	sessionRepo repository.UserSessionRepository,
	auditRepo repository.AuditLogRepository,
	tokenService services.TokenService,
	notificationService services.NotificationService,
	db *gorm.DB,
) SignupFlow {
	return &SignupFlowImpl{
		userRepo:            userRepo,
		otpRepo:             otpRepo,
		sessionRepo:         sessionRepo,
		auditRepo:           auditRepo,
		tokenService:        tokenService,
		notificationService: notificationService,
		db:                  db,
	}
}

// Signup registers a new customer account and sends a verification code to
// the account email. The account stays unverified until the code is
// confirmed.
func (s *SignupFlowImpl) Signup(ctx context.Context, req *dto.SignupRequest, metadata *ClientMetadata) (*dto.SignupResponse, error) {
	if req == nil {
		return nil, NewBusinessError(CodeInvalidInput, "request is required", nil)
	}
	if err := s.validateSignupRequest(req); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.ByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to check email", err)
	}
	if existing != nil {
		return nil, NewBusinessError(CodeConflict, "email is already registered", ErrEmailAlreadyExists)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to hash password", err)
	}

	user := models.User{
		Name:           req.Name,
		Email:          strings.ToLower(req.Email),
		Mobile:         req.Mobile,
		PasswordHash:   string(hashedPassword),
		Role:           models.RoleCustomer,
		CompanyName:    req.CompanyName,
		CompanyWebsite: req.CompanyWebsite,
		Industry:       req.Industry,
		CompanyAddress: req.CompanyAddress,
		IsVerified:     utils.ToPtr(false),
		IsActive:       utils.ToPtr(true),
	}

	var otpCode string
	err = s.runInTx(ctx, func(txCtx context.Context) error {
		if err := s.userRepo.Save(txCtx, &user); err != nil {
			return NewBusinessError(CodeStorageFailure, "failed to create account", err)
		}

		otpCode, err = s.generateAndSaveOTP(txCtx, user.ID, user.Email, models.OTPTypeEmail)
		if err != nil {
			return NewBusinessError(CodeStorageFailure, "failed to create verification code", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notificationService != nil {
		message := fmt.Sprintf("Your Digital Ads Platform verification code is %s. It expires in %d minutes.",
			otpCode, int(utils.OTPExpiry.Minutes()))
		_ = s.notificationService.SendEmail(user.Email, "Verify your account", message)
	}

	_ = createAuditLog(ctx, s.auditRepo, &user.ID, models.AuditActionOTPGenerated,
		fmt.Sprintf("Verification code sent to %s", maskEmail(user.Email)), true, nil, metadata)

	return &dto.SignupResponse{
		UserID:    user.ID,
		OTPTarget: maskEmail(user.Email),
		Message:   "Account created. Check your email for the verification code.",
	}, nil
}

// VerifyOTP confirms the signup verification code, marks the account
// verified and opens the first session.
func (s *SignupFlowImpl) VerifyOTP(ctx context.Context, req *dto.OTPVerificationRequest, metadata *ClientMetadata) (*dto.OTPVerificationResponse, error) {
	if req == nil || req.UserID == 0 || req.OTPCode == "" {
		return nil, NewBusinessError(CodeInvalidInput, "user id and code are required", nil)
	}

	user, err := getUser(ctx, s.userRepo, req.UserID)
	if err != nil {
		return nil, NewBusinessError(CodeNotFound, "user not found", err)
	}
	if utils.IsTrue(user.IsVerified) {
		return nil, NewBusinessError(CodeConflict, "account is already verified", ErrAlreadyVerified)
	}

	var accessToken, refreshToken string
	err = s.runInTx(ctx, func(txCtx context.Context) error {
		if err := s.verifyOTPCode(txCtx, user.ID, req.OTPCode, models.OTPTypeEmail); err != nil {
			return err
		}

		if err := s.userRepo.UpdateVerification(txCtx, user.ID, utils.UTCNow()); err != nil {
			return NewBusinessError(CodeStorageFailure, "failed to mark account verified", err)
		}

		accessToken, refreshToken, err = s.tokenService.GenerateTokens(user.ID, user.Role)
		if err != nil {
			return NewBusinessError(CodeStorageFailure, "failed to generate tokens", err)
		}

		return s.createSession(txCtx, user.ID, accessToken, refreshToken, metadata)
	})
	if err != nil {
		errMsg := err.Error()
		_ = createAuditLog(ctx, s.auditRepo, &user.ID, models.AuditActionOTPFailed,
			"OTP verification failed", false, &errMsg, metadata)
		if be, ok := err.(*BusinessError); ok {
			return nil, be
		}
		return nil, NewBusinessError(CodeInvalidInput, "verification failed", err)
	}

	user.IsVerified = utils.ToPtr(true)
	_ = createAuditLog(ctx, s.auditRepo, &user.ID, models.AuditActionSignupCompleted,
		"Signup completed", true, nil, metadata)

	return &dto.OTPVerificationResponse{
		User: ToAuthUserDTO(*user),
		Session: dto.SessionDTO{
			SessionToken: accessToken,
			RefreshToken: &refreshToken,
			ExpiresIn:    utils.AccessTokenTTLSeconds,
			TokenType:    "Bearer",
			CreatedAt:    utils.UTCNowRFC3339(),
		},
	}, nil
}

// ResendOTP expires any pending signup codes and issues a fresh one.
func (s *SignupFlowImpl) ResendOTP(ctx context.Context, req *dto.OTPResendRequest, metadata *ClientMetadata) (*dto.OTPResendResponse, error) {
	if req == nil || req.UserID == 0 {
		return nil, NewBusinessError(CodeInvalidInput, "user id is required", nil)
	}

	user, err := getUser(ctx, s.userRepo, req.UserID)
	if err != nil {
		return nil, NewBusinessError(CodeNotFound, "user not found", err)
	}
	if utils.IsTrue(user.IsVerified) {
		return nil, NewBusinessError(CodeConflict, "account is already verified", ErrAlreadyVerified)
	}

	var otpCode string
	err = s.runInTx(ctx, func(txCtx context.Context) error {
		if err := s.otpRepo.ExpireOldOTPs(txCtx, user.ID, models.OTPTypeEmail); err != nil {
			return NewBusinessError(CodeStorageFailure, "failed to expire old codes", err)
		}
		otpCode, err = s.generateAndSaveOTP(txCtx, user.ID, user.Email, models.OTPTypeEmail)
		if err != nil {
			return NewBusinessError(CodeStorageFailure, "failed to create verification code", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notificationService != nil {
		message := fmt.Sprintf("Your Digital Ads Platform verification code is %s. It expires in %d minutes.",
			otpCode, int(utils.OTPExpiry.Minutes()))
		_ = s.notificationService.SendEmail(user.Email, "Verify your account", message)
	}

	_ = createAuditLog(ctx, s.auditRepo, &user.ID, models.AuditActionOTPGenerated,
		fmt.Sprintf("Verification code resent to %s", maskEmail(user.Email)), true, nil, metadata)

	return &dto.OTPResendResponse{
		OTPTarget: maskEmail(user.Email),
		Message:   "A new verification code has been sent.",
	}, nil
}

func (s *SignupFlowImpl) validateSignupRequest(req *dto.SignupRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return NewBusinessError(CodeInvalidInput, "name is required", nil)
	}
	if !strings.Contains(req.Email, "@") {
		return NewBusinessError(CodeInvalidInput, "a valid email is required", nil)
	}
	if len(req.Password) < 8 {
		return NewBusinessError(CodeInvalidInput, "password must be at least 8 characters", nil)
	}
	return nil
}

func (s *SignupFlowImpl) generateAndSaveOTP(ctx context.Context, userID uint, target, otpType string) (string, error) {
	otpCode, err := GenerateOTP()
	if err != nil {
		return "", err
	}

	otp := &models.OTPVerification{
		CorrelationID: uuid.New(),
		UserID:        userID,
		OTPCode:       otpCode,
		OTPType:       otpType,
		TargetValue:   target,
		Status:        models.OTPStatusPending,
		AttemptsCount: 0,
		MaxAttempts:   3,
		ExpiresAt:     utils.UTCNowAdd(utils.OTPExpiry),
	}

	if err := s.otpRepo.Save(ctx, otp); err != nil {
		return "", err
	}

	return otpCode, nil
}

func (s *SignupFlowImpl) verifyOTPCode(ctx context.Context, userID uint, code, otpType string) error {
	otps, err := s.otpRepo.ByUserAndType(ctx, userID, otpType)
	if err != nil {
		return NewBusinessError(CodeStorageFailure, "failed to load verification codes", err)
	}

	var validOTP *models.OTPVerification
	for _, otp := range otps {
		if otp.Status == models.OTPStatusPending && otp.CanAttempt() {
			validOTP = otp
			break
		}
	}
	if validOTP == nil {
		return NewBusinessError(CodeInvalidInput, "no valid verification code found", ErrNoValidOTPFound)
	}

	if validOTP.OTPCode != code {
		// Record the failed attempt under the same correlation ID.
		failedOTP := *validOTP
		failedOTP.ID = 0
		failedOTP.AttemptsCount++
		failedOTP.Status = models.OTPStatusFailed
		_ = s.otpRepo.Save(ctx, &failedOTP)

		validOTP.AttemptsCount++
		_ = s.otpRepo.Update(ctx, *validOTP)

		return NewBusinessError(CodeInvalidInput, "verification code is incorrect", ErrInvalidOTPCode)
	}

	verifiedOTP := *validOTP
	verifiedOTP.ID = 0
	verifiedOTP.Status = models.OTPStatusVerified
	verifiedOTP.VerifiedAt = utils.UTCNowPtr()
	if err := s.otpRepo.Save(ctx, &verifiedOTP); err != nil {
		return NewBusinessError(CodeStorageFailure, "failed to record verification", err)
	}

	validOTP.Status = models.OTPStatusVerified
	return s.otpRepo.Update(ctx, *validOTP)
}

func (s *SignupFlowImpl) createSession(ctx context.Context, userID uint, accessToken, refreshToken string, metadata *ClientMetadata) error {
	session, err := newSession(userID, accessToken, refreshToken, metadata)
	if err != nil {
		return err
	}
	return s.sessionRepo.Save(ctx, session)
}

func (s *SignupFlowImpl) runInTx(ctx context.Context, fn func(context.Context) error) error {
	if s.db == nil {
		return fn(ctx)
	}
	return repository.WithTransaction(ctx, s.db, fn)
}

// GenerateOTP produces a 6-digit numeric code from crypto/rand.
func GenerateOTP() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func maskEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 1 {
		return email
	}
	visible := 1
	if at > 4 {
		visible = 2
	}
	return email[:visible] + strings.Repeat("*", at-visible) + email[at:]
}
