package businessflow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/adsphere/adsphere/app/dto"
	businessflow "github.com/adsphere/adsphere/business_flow"
	"github.com/adsphere/adsphere/models"
	"github.com/adsphere/adsphere/utils"
)

type loginFixture struct {
	flow        businessflow.LoginFlow
	userRepo    *fakeUserRepo
	sessionRepo *fakeSessionRepo
	auditRepo   *fakeAuditRepo
}

func newLoginFixture(t *testing.T) *loginFixture {
	userRepo := newFakeUserRepo()
	sessionRepo := newFakeSessionRepo()
	auditRepo := newFakeAuditRepo()

	return &loginFixture{
		flow:        businessflow.NewLoginFlow(userRepo, sessionRepo, auditRepo, testTokenService(t), nil),
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		auditRepo:   auditRepo,
	}
}

func (f *loginFixture) verifiedUser(t *testing.T, email, password string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	return f.userRepo.add(models.User{
		Name:         "Ada",
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleCustomer,
		IsVerified:   utils.ToPtr(true),
		IsActive:     utils.ToPtr(true),
	})
}

func TestLogin(t *testing.T) {
	f := newLoginFixture(t)
	user := f.verifiedUser(t, "ada@example.com", "Str0ngPass!")

	ctx := context.Background()
	resp, err := f.flow.Login(ctx, &dto.LoginRequest{
		Email:    "Ada@Example.com",
		Password: "Str0ngPass!",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, user.ID, resp.User.ID)
	assert.NotEmpty(t, resp.Session.SessionToken)
	require.NotNil(t, resp.Session.RefreshToken)

	session, _ := f.sessionRepo.BySessionToken(ctx, resp.Session.SessionToken)
	require.NotNil(t, session)
	assert.True(t, session.IsValid())

	stored, _ := f.userRepo.ByID(ctx, user.ID)
	assert.NotNil(t, stored.LastLoginAt)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newLoginFixture(t)
	f.verifiedUser(t, "ada@example.com", "Str0ngPass!")

	_, err := f.flow.Login(context.Background(), &dto.LoginRequest{
		Email:    "ada@example.com",
		Password: "WrongPass!",
	}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, businessflow.ErrIncorrectPassword))

	var bizErr *businessflow.BusinessError
	require.ErrorAs(t, err, &bizErr)
	assert.Equal(t, businessflow.CodeUnauthorized, bizErr.Code)

	failed := f.auditRepo.byAction(models.AuditActionLoginFailed)
	assert.Len(t, failed, 1)
}

func TestLogin_UnknownEmail(t *testing.T) {
	f := newLoginFixture(t)

	_, err := f.flow.Login(context.Background(), &dto.LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever1",
	}, nil)
	require.Error(t, err)

	var bizErr *businessflow.BusinessError
	require.ErrorAs(t, err, &bizErr)
	// Unknown account and wrong password look identical to the caller.
	assert.Equal(t, businessflow.CodeUnauthorized, bizErr.Code)
	assert.Equal(t, "invalid credentials", bizErr.Message)
}

func TestLogin_UnverifiedAccount(t *testing.T) {
	f := newLoginFixture(t)
	hash, _ := bcrypt.GenerateFromPassword([]byte("Str0ngPass!"), bcrypt.MinCost)
	f.userRepo.add(models.User{
		Email:        "new@example.com",
		PasswordHash: string(hash),
		IsVerified:   utils.ToPtr(false),
		IsActive:     utils.ToPtr(true),
	})

	_, err := f.flow.Login(context.Background(), &dto.LoginRequest{
		Email:    "new@example.com",
		Password: "Str0ngPass!",
	}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, businessflow.ErrAccountNotVerified))
}

func TestLogin_InactiveAccount(t *testing.T) {
	f := newLoginFixture(t)
	hash, _ := bcrypt.GenerateFromPassword([]byte("Str0ngPass!"), bcrypt.MinCost)
	f.userRepo.add(models.User{
		Email:        "gone@example.com",
		PasswordHash: string(hash),
		IsVerified:   utils.ToPtr(true),
		IsActive:     utils.ToPtr(false),
	})

	_, err := f.flow.Login(context.Background(), &dto.LoginRequest{
		Email:    "gone@example.com",
		Password: "Str0ngPass!",
	}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, businessflow.ErrAccountInactive))
}

func TestLogout(t *testing.T) {
	f := newLoginFixture(t)
	user := f.verifiedUser(t, "ada@example.com", "Str0ngPass!")

	ctx := context.Background()
	resp, err := f.flow.Login(ctx, &dto.LoginRequest{Email: user.Email, Password: "Str0ngPass!"}, nil)
	require.NoError(t, err)

	require.NoError(t, f.flow.Logout(ctx, user.ID, resp.Session.SessionToken, nil))

	session, _ := f.sessionRepo.BySessionToken(ctx, resp.Session.SessionToken)
	require.NotNil(t, session)
	assert.False(t, session.IsValid())
}

func TestLogout_ForeignSessionRejected(t *testing.T) {
	f := newLoginFixture(t)
	user := f.verifiedUser(t, "ada@example.com", "Str0ngPass!")

	ctx := context.Background()
	resp, err := f.flow.Login(ctx, &dto.LoginRequest{Email: user.Email, Password: "Str0ngPass!"}, nil)
	require.NoError(t, err)

	err = f.flow.Logout(ctx, user.ID+1, resp.Session.SessionToken, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, businessflow.ErrSessionNotFound))
}

func TestRefreshSession_RotatesSession(t *testing.T) {
	f := newLoginFixture(t)
	user := f.verifiedUser(t, "ada@example.com", "Str0ngPass!")

	ctx := context.Background()
	login, err := f.flow.Login(ctx, &dto.LoginRequest{Email: user.Email, Password: "Str0ngPass!"}, nil)
	require.NoError(t, err)

	refreshed, err := f.flow.RefreshSession(ctx, &dto.RefreshTokenRequest{
		RefreshToken: *login.Session.RefreshToken,
	}, nil)
	require.NoError(t, err)
	assert.NotEqual(t, login.Session.SessionToken, refreshed.Session.SessionToken)

	// The old session is expired by the rotation.
	old, _ := f.sessionRepo.BySessionToken(ctx, login.Session.SessionToken)
	require.NotNil(t, old)
	assert.False(t, old.IsValid())

	fresh, _ := f.sessionRepo.BySessionToken(ctx, refreshed.Session.SessionToken)
	require.NotNil(t, fresh)
	assert.True(t, fresh.IsValid())
}

func TestRefreshSession_ExpiredSessionRejected(t *testing.T) {
	f := newLoginFixture(t)
	user := f.verifiedUser(t, "ada@example.com", "Str0ngPass!")

	ctx := context.Background()
	login, err := f.flow.Login(ctx, &dto.LoginRequest{Email: user.Email, Password: "Str0ngPass!"}, nil)
	require.NoError(t, err)

	session, _ := f.sessionRepo.BySessionToken(ctx, login.Session.SessionToken)
	require.NoError(t, f.sessionRepo.ExpireSession(ctx, session.ID))

	_, err = f.flow.RefreshSession(ctx, &dto.RefreshTokenRequest{
		RefreshToken: *login.Session.RefreshToken,
	}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, businessflow.ErrSessionExpired))
}

func TestGetProfile(t *testing.T) {
	f := newLoginFixture(t)
	user := f.verifiedUser(t, "ada@example.com", "Str0ngPass!")

	profile, err := f.flow.GetProfile(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, profile.Email)

	_, err = f.flow.GetProfile(context.Background(), user.ID+1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, businessflow.ErrUserNotFound))
}

func TestUpdateBusinessInfo(t *testing.T) {
	f := newLoginFixture(t)
	user := f.verifiedUser(t, "ada@example.com", "Str0ngPass!")

	profile, err := f.flow.UpdateBusinessInfo(context.Background(), &dto.UpdateBusinessInfoRequest{
		UserID:      user.ID,
		CompanyName: strp("Lovelace Analytics"),
		Industry:    strp("advertising"),
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, profile.CompanyName)
	assert.Equal(t, "Lovelace Analytics", *profile.CompanyName)

	stored, _ := f.userRepo.ByID(context.Background(), user.ID)
	require.NotNil(t, stored.CompanyName)
	assert.Equal(t, "Lovelace Analytics", *stored.CompanyName)
}
