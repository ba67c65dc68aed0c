// Package businessflow contains the core business logic and use cases for authentication workflows
package businessflow

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/adsphere/adsphere/app/dto"
	"github.com/adsphere/adsphere/app/services"
	"github.com/adsphere/adsphere/models"
	"github.com/adsphere/adsphere/repository"
	"github.com/adsphere/adsphere/utils"
)

// AdminAuthFlow represents the admin authentication flow used by handlers
type AdminAuthFlow interface {
	InitCaptcha(ctx context.Context) (*dto.AdminCaptchaInitResponse, error)
	Verify(ctx context.Context, req *dto.AdminCaptchaVerifyRequest, metadata *ClientMetadata) (*dto.LoginResponse, error)
}

// AdminAuthFlowImpl provides captcha-init and admin credential verification
type AdminAuthFlowImpl struct {
	userRepo     repository.UserRepository
	sessionRepo  repository.UserSessionRepository
	auditRepo    repository.AuditLogRepository
	tokenService services.TokenService
	captchaSvc   services.CaptchaService
}

func NewAdminAuthFlow(
	userRepo repository.UserRepository,
	sessionRepo repository.UserSessionRepository,
	auditRepo repository.AuditLogRepository,
	tokenService services.TokenService,
	captchaSvc services.CaptchaService,
) AdminAuthFlow {
	return &AdminAuthFlowImpl{
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		auditRepo:    auditRepo,
		tokenService: tokenService,
		captchaSvc:   captchaSvc,
	}
}

func (af *AdminAuthFlowImpl) InitCaptcha(ctx context.Context) (*dto.AdminCaptchaInitResponse, error) {
	if af.captchaSvc == nil {
		return nil, NewBusinessError(CodeStorageFailure, "captcha service not available", ErrCaptchaFailed)
	}
	ch, err := af.captchaSvc.GenerateRotate(ctx)
	if err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to initialize captcha", err)
	}
	return &dto.AdminCaptchaInitResponse{
		ChallengeID:       ch.ID,
		MasterImageBase64: ch.MasterImageBase64,
		ThumbImageBase64:  ch.ThumbImageBase64,
	}, nil
}

// Verify checks the captcha answer plus admin credentials and opens an
// admin session. The captcha is consumed whether or not credentials match.
func (af *AdminAuthFlowImpl) Verify(ctx context.Context, req *dto.AdminCaptchaVerifyRequest, metadata *ClientMetadata) (*dto.LoginResponse, error) {
	if req == nil || req.Email == "" || req.Password == "" {
		return nil, NewBusinessError(CodeInvalidInput, "email and password are required", nil)
	}
	if req.ChallengeID == "" {
		return nil, NewBusinessError(CodeInvalidInput, "captcha challenge missing", ErrCaptchaFailed)
	}

	if af.captchaSvc == nil || !af.captchaSvc.VerifyRotate(ctx, req.ChallengeID, req.UserAngle) {
		return nil, NewBusinessError(CodeUnauthorized, "captcha validation failed", ErrCaptchaFailed)
	}

	user, err := af.userRepo.ByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to look up account", err)
	}
	if user == nil {
		return nil, NewBusinessError(CodeUnauthorized, "invalid credentials", ErrUserNotFound)
	}
	if !user.IsAdmin() {
		errMsg := "account is not an admin"
		_ = createAuditLog(ctx, af.auditRepo, &user.ID, models.AuditActionLoginFailed,
			"Admin login rejected", false, &errMsg, metadata)
		return nil, NewBusinessError(CodeForbidden, "account is not an admin", ErrNotAnAdmin)
	}
	if !utils.IsTrue(user.IsActive) {
		return nil, NewBusinessError(CodeUnauthorized, "account is inactive", ErrAccountInactive)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		errMsg := "incorrect password"
		_ = createAuditLog(ctx, af.auditRepo, &user.ID, models.AuditActionLoginFailed,
			"Admin login failed", false, &errMsg, metadata)
		return nil, NewBusinessError(CodeUnauthorized, "invalid credentials", ErrIncorrectPassword)
	}

	accessToken, refreshToken, err := af.tokenService.GenerateTokens(user.ID, user.Role)
	if err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to generate tokens", err)
	}

	session, err := newSession(user.ID, accessToken, refreshToken, metadata)
	if err != nil {
		return nil, err
	}
	if err := af.sessionRepo.Save(ctx, session); err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to create session", err)
	}

	_ = createAuditLog(ctx, af.auditRepo, &user.ID, models.AuditActionLoginSuccessful,
		"Admin login successful", true, nil, metadata)

	return &dto.LoginResponse{
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
