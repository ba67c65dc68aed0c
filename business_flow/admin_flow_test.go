package businessflow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/adsphere/adsphere/app/dto"
	"github.com/adsphere/adsphere/app/services"
	businessflow "github.com/adsphere/adsphere/business_flow"
	"github.com/adsphere/adsphere/models"
	"github.com/adsphere/adsphere/utils"
)

// fakeCaptcha accepts any answer for challenges it issued, once.
type fakeCaptcha struct {
	issued map[string]bool
	serial int
}

func newFakeCaptcha() *fakeCaptcha {
	return &fakeCaptcha{issued: map[string]bool{}}
}

func (c *fakeCaptcha) GenerateRotate(_ context.Context) (*services.RotateChallenge, error) {
	c.serial++
	id := "challenge-" + string(rune('a'+c.serial))
	c.issued[id] = true
	return &services.RotateChallenge{
		ID:                id,
		MasterImageBase64: "data:image/png;base64,master",
		ThumbImageBase64:  "data:image/png;base64,thumb",
	}, nil
}

func (c *fakeCaptcha) VerifyRotate(_ context.Context, challengeID string, _ float64) bool {
	if !c.issued[challengeID] {
		return false
	}
	delete(c.issued, challengeID)
	return true
}

type adminAuthFixture struct {
	flow        businessflow.AdminAuthFlow
	userRepo    *fakeUserRepo
	sessionRepo *fakeSessionRepo
	auditRepo   *fakeAuditRepo
	captcha     *fakeCaptcha
}

func newAdminAuthFixture(t *testing.T) *adminAuthFixture {
	userRepo := newFakeUserRepo()
	sessionRepo := newFakeSessionRepo()
	auditRepo := newFakeAuditRepo()
	captcha := newFakeCaptcha()

	return &adminAuthFixture{
		flow:        businessflow.NewAdminAuthFlow(userRepo, sessionRepo, auditRepo, testTokenService(t), captcha),
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		auditRepo:   auditRepo,
		captcha:     captcha,
	}
}

func (f *adminAuthFixture) admin(t *testing.T, email, password string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	return f.userRepo.add(models.User{
		Name:         "Root",
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		IsVerified:   utils.ToPtr(true),
		IsActive:     utils.ToPtr(true),
	})
}

func (f *adminAuthFixture) challenge(t *testing.T) string {
	t.Helper()

	init, err := f.flow.InitCaptcha(context.Background())
	require.NoError(t, err)
	return init.ChallengeID
}

func TestAdminLogin(t *testing.T) {
	f := newAdminAuthFixture(t)
	admin := f.admin(t, "root@example.com", "Adm1nPass!")

	resp, err := f.flow.Verify(context.Background(), &dto.AdminCaptchaVerifyRequest{
		Email:       "root@example.com",
		Password:    "Adm1nPass!",
		ChallengeID: f.challenge(t),
		UserAngle:   42,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, admin.ID, resp.User.ID)
	assert.NotEmpty(t, resp.Session.SessionToken)

	session, _ := f.sessionRepo.BySessionToken(context.Background(), resp.Session.SessionToken)
	require.NotNil(t, session)
	assert.Equal(t, admin.ID, session.UserID)
}

func TestAdminLogin_CaptchaRequired(t *testing.T) {
	f := newAdminAuthFixture(t)
	f.admin(t, "root@example.com", "Adm1nPass!")

	_, err := f.flow.Verify(context.Background(), &dto.AdminCaptchaVerifyRequest{
		Email:       "root@example.com",
		Password:    "Adm1nPass!",
		ChallengeID: "never-issued",
	}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, businessflow.ErrCaptchaFailed))
}

func TestAdminLogin_CaptchaSingleUse(t *testing.T) {
	f := newAdminAuthFixture(t)
	f.admin(t, "root@example.com", "Adm1nPass!")

	ctx := context.Background()
	challenge := f.challenge(t)

	_, err := f.flow.Verify(ctx, &dto.AdminCaptchaVerifyRequest{
		Email:       "root@example.com",
		Password:    "Adm1nPass!",
		ChallengeID: challenge,
	}, nil)
	require.NoError(t, err)

	_, err = f.flow.Verify(ctx, &dto.AdminCaptchaVerifyRequest{
		Email:       "root@example.com",
		Password:    "Adm1nPass!",
		ChallengeID: challenge,
	}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, businessflow.ErrCaptchaFailed))
}

func TestAdminLogin_NonAdminRejected(t *testing.T) {
	f := newAdminAuthFixture(t)
	hash, _ := bcrypt.GenerateFromPassword([]byte("CustPass1!"), bcrypt.MinCost)
	f.userRepo.add(models.User{
		Email:        "customer@example.com",
		PasswordHash: string(hash),
		Role:         models.RoleCustomer,
		IsActive:     utils.ToPtr(true),
	})

	_, err := f.flow.Verify(context.Background(), &dto.AdminCaptchaVerifyRequest{
		Email:       "customer@example.com",
		Password:    "CustPass1!",
		ChallengeID: f.challenge(t),
	}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, businessflow.ErrNotAnAdmin))

	var bizErr *businessflow.BusinessError
	require.ErrorAs(t, err, &bizErr)
	assert.Equal(t, businessflow.CodeForbidden, bizErr.Code)
}

func TestAdminLogin_WrongPasswordStillConsumesCaptcha(t *testing.T) {
	f := newAdminAuthFixture(t)
	f.admin(t, "root@example.com", "Adm1nPass!")

	ctx := context.Background()
	challenge := f.challenge(t)

	_, err := f.flow.Verify(ctx, &dto.AdminCaptchaVerifyRequest{
		Email:       "root@example.com",
		Password:    "WrongPass!",
		ChallengeID: challenge,
	}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, businessflow.ErrIncorrectPassword))

	assert.False(t, f.captcha.VerifyRotate(ctx, challenge, 0))
}

func TestListCustomers(t *testing.T) {
	userRepo := newFakeUserRepo()
	subscriptionRepo := newFakeSubscriptionRepo()
	planRepo := newFakePlanRepo()
	flow := businessflow.NewAdminFlow(userRepo, subscriptionRepo, planRepo)

	userRepo.add(models.User{Name: "Ada", Email: "ada@example.com", Role: models.RoleCustomer})
	userRepo.add(models.User{Name: "Bob", Email: "bob@example.com", Role: models.RoleCustomer})
	userRepo.add(models.User{Name: "Root", Email: "root@example.com", Role: models.RoleAdmin})

	resp, err := flow.ListCustomers(context.Background(), nil)
	require.NoError(t, err)
	// Admin accounts never show up in the customer listing.
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, int64(2), resp.Pagination.Total)
}

func TestListSubscriptions_ResolvesPlanNames(t *testing.T) {
	userRepo := newFakeUserRepo()
	subscriptionRepo := newFakeSubscriptionRepo()
	planRepo := newFakePlanRepo()
	flow := businessflow.NewAdminFlow(userRepo, subscriptionRepo, planRepo)

	plan := planRepo.add(models.Plan{Name: "Growth", Slug: "growth", IsActive: utils.ToPtr(true)})
	now := time.Now().UTC()
	subscriptionRepo.add(models.Subscription{
		UserID:   1,
		PlanID:   plan.ID,
		Status:   models.SubscriptionStatusActive,
		StartsAt: now,
		EndsAt:   now.Add(time.Hour),
	})

	resp, err := flow.ListSubscriptions(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	require.NotNil(t, resp.Items[0].PlanName)
	assert.Equal(t, "Growth", *resp.Items[0].PlanName)
}

func TestListSubscriptions_UnknownStatusRejected(t *testing.T) {
	flow := businessflow.NewAdminFlow(newFakeUserRepo(), newFakeSubscriptionRepo(), newFakePlanRepo())

	bad := "frozen"
	_, err := flow.ListSubscriptions(context.Background(), &dto.ListSubscriptionsRequest{Status: &bad})
	require.Error(t, err)

	var bizErr *businessflow.BusinessError
	require.ErrorAs(t, err, &bizErr)
	assert.Equal(t, businessflow.CodeInvalidInput, bizErr.Code)
}
