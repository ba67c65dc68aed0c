package businessflow

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/adsphere/adsphere/app/dto"
	"github.com/adsphere/adsphere/app/services"
	"github.com/adsphere/adsphere/models"
	"github.com/adsphere/adsphere/repository"
	"github.com/adsphere/adsphere/utils"
)

// LoginFlow handles authentication and the authenticated profile surface
type LoginFlow interface {
	Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error)
	Logout(ctx context.Context, userID uint, sessionToken string, metadata *ClientMetadata) error
	RefreshSession(ctx context.Context, req *dto.RefreshTokenRequest, metadata *ClientMetadata) (*dto.LoginResponse, error)
	GetProfile(ctx context.Context, userID uint) (*dto.AuthUserDTO, error)
	UpdateBusinessInfo(ctx context.Context, req *dto.UpdateBusinessInfoRequest, metadata *ClientMetadata) (*dto.AuthUserDTO, error)
}

// LoginFlowImpl implements the login business flow
type LoginFlowImpl struct {
	userRepo     repository.UserRepository
	sessionRepo  repository.UserSessionRepository
	auditRepo    repository.AuditLogRepository
	tokenService services.TokenService
	db           *gorm.DB
}

// NewLoginFlow creates a new login flow instance
func NewLoginFlow(
	userRepo repository.UserRepository,
	sessionRepo repository.UserSessionRepository,
	auditRepo repository.AuditLogRepository,
	tokenService services.TokenService,
	db *gorm.DB,
) LoginFlow {
	return &LoginFlowImpl{
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		auditRepo:    auditRepo,
		tokenService: tokenService,
		db:           db,
	}
}

// Login authenticates by email and password and opens a new session.
func (lf *LoginFlowImpl) Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error) {
	if req == nil || req.Email == "" || req.Password == "" {
		return nil, NewBusinessError(CodeInvalidInput, "email and password are required", nil)
	}

	user, err := lf.userRepo.ByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to look up account", err)
	}
	if user == nil {
		return nil, NewBusinessError(CodeUnauthorized, "invalid credentials", ErrUserNotFound)
	}

	if err := lf.checkCredentials(user, req.Password); err != nil {
		errMsg := err.Error()
		_ = createAuditLog(ctx, lf.auditRepo, &user.ID, models.AuditActionLoginFailed,
			"Login failed", false, &errMsg, metadata)
		return nil, err
	}

	return lf.openSession(ctx, user, metadata)
}

// Logout expires the current session and revokes its token.
func (lf *LoginFlowImpl) Logout(ctx context.Context, userID uint, sessionToken string, metadata *ClientMetadata) error {
	session, err := lf.sessionRepo.BySessionToken(ctx, sessionToken)
	if err != nil {
		return NewBusinessError(CodeStorageFailure, "failed to look up session", err)
	}
	if session == nil || session.UserID != userID {
		return NewBusinessError(CodeNotFound, "session not found", ErrSessionNotFound)
	}

	if err := lf.sessionRepo.ExpireSession(ctx, session.ID); err != nil {
		return NewBusinessError(CodeStorageFailure, "failed to expire session", err)
	}
	_ = lf.tokenService.RevokeToken(sessionToken)

	_ = createAuditLog(ctx, lf.auditRepo, &userID, models.AuditActionLogout,
		"Logged out", true, nil, metadata)
	return nil
}

// RefreshSession exchanges a valid refresh token for a fresh session.
func (lf *LoginFlowImpl) RefreshSession(ctx context.Context, req *dto.RefreshTokenRequest, metadata *ClientMetadata) (*dto.LoginResponse, error) {
	if req == nil || req.RefreshToken == "" {
		return nil, NewBusinessError(CodeInvalidInput, "refresh token is required", nil)
	}

	session, err := lf.sessionRepo.ByRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to look up session", err)
	}
	if session == nil {
		return nil, NewBusinessError(CodeUnauthorized, "session not found", ErrSessionNotFound)
	}
	if !session.IsValid() {
		return nil, NewBusinessError(CodeUnauthorized, "session has expired", ErrSessionExpired)
	}

	user, err := getUser(ctx, lf.userRepo, session.UserID)
	if err != nil {
		return nil, NewBusinessError(CodeNotFound, "user not found", err)
	}
	if !utils.IsTrue(user.IsActive) {
		return nil, NewBusinessError(CodeUnauthorized, "account is inactive", ErrAccountInactive)
	}

	var resp *dto.LoginResponse
	err = lf.runInTx(ctx, func(txCtx context.Context) error {
		if err := lf.sessionRepo.ExpireSession(txCtx, session.ID); err != nil {
			return NewBusinessError(CodeStorageFailure, "failed to rotate session", err)
		}
		resp, err = lf.openSession(txCtx, user, metadata)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// GetProfile returns the authenticated user's profile.
func (lf *LoginFlowImpl) GetProfile(ctx context.Context, userID uint) (*dto.AuthUserDTO, error) {
	user, err := getUser(ctx, lf.userRepo, userID)
	if err != nil {
		return nil, NewBusinessError(CodeNotFound, "user not found", err)
	}
	profile := ToAuthUserDTO(*user)
	return &profile, nil
}

// UpdateBusinessInfo updates company details on the authenticated profile.
func (lf *LoginFlowImpl) UpdateBusinessInfo(ctx context.Context, req *dto.UpdateBusinessInfoRequest, metadata *ClientMetadata) (*dto.AuthUserDTO, error) {
	if req == nil {
		return nil, NewBusinessError(CodeInvalidInput, "request is required", nil)
	}

	user, err := getUser(ctx, lf.userRepo, req.UserID)
	if err != nil {
		return nil, NewBusinessError(CodeNotFound, "user not found", err)
	}

	if req.CompanyName != nil {
		user.CompanyName = req.CompanyName
	}
	if req.CompanyWebsite != nil {
		user.CompanyWebsite = req.CompanyWebsite
	}
	if req.Industry != nil {
		user.Industry = req.Industry
	}
	if req.CompanyAddress != nil {
		user.CompanyAddress = req.CompanyAddress
	}

	if err := lf.userRepo.UpdateBusinessInfo(ctx, *user); err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to update profile", err)
	}

	_ = createAuditLog(ctx, lf.auditRepo, &user.ID, models.AuditActionProfileUpdated,
		"Business info updated", true, nil, metadata)

	profile := ToAuthUserDTO(*user)
	return &profile, nil
}

func (lf *LoginFlowImpl) checkCredentials(user *models.User, password string) error {
	if !utils.IsTrue(user.IsActive) {
		return NewBusinessError(CodeUnauthorized, "account is inactive", ErrAccountInactive)
	}
	if !utils.IsTrue(user.IsVerified) {
		return NewBusinessError(CodeUnauthorized, "account is not verified", ErrAccountNotVerified)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return NewBusinessError(CodeUnauthorized, "invalid credentials", ErrIncorrectPassword)
	}
	return nil
}

// openSession issues tokens, persists the session, stamps last login and
// builds the login response.
func (lf *LoginFlowImpl) openSession(ctx context.Context, user *models.User, metadata *ClientMetadata) (*dto.LoginResponse, error) {
	accessToken, refreshToken, err := lf.tokenService.GenerateTokens(user.ID, user.Role)
	if err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to generate tokens", err)
	}

	session, err := newSession(user.ID, accessToken, refreshToken, metadata)
	if err != nil {
		return nil, err
	}
	if err := lf.sessionRepo.Save(ctx, session); err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to create session", err)
	}

	now := utils.UTCNow()
	if err := lf.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, NewBusinessError(CodeStorageFailure, "failed to stamp login", err)
	}
	user.LastLoginAt = &now

	_ = createAuditLog(ctx, lf.auditRepo, &user.ID, models.AuditActionLoginSuccessful,
		fmt.Sprintf("Login successful for %s", maskEmail(user.Email)), true, nil, metadata)

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

func (lf *LoginFlowImpl) runInTx(ctx context.Context, fn func(context.Context) error) error {
	if lf.db == nil {
		return fn(ctx)
	}
	return repository.WithTransaction(ctx, lf.db, fn)
}
