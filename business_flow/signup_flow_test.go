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
)

func testTokenService(t *testing.T) services.TokenService {
	t.Helper()

	svc, err := services.NewTokenService(
		15*time.Minute, 24*time.Hour,
		"adsphere-test", "adsphere-clients",
		false, "", "",
		"test-secret-key-feeling-rather-long",
	)
	require.NoError(t, err)
	return svc
}

type signupFixture struct {
	flow        businessflow.SignupFlow
	userRepo    *fakeUserRepo
	otpRepo     *fakeOTPRepo
	sessionRepo *fakeSessionRepo
	auditRepo   *fakeAuditRepo
	notifier    *recordingNotifier
}

func newSignupFixture(t *testing.T) *signupFixture {
	userRepo := newFakeUserRepo()
	otpRepo := newFakeOTPRepo()
	sessionRepo := newFakeSessionRepo()
	auditRepo := newFakeAuditRepo()
	notifier := &recordingNotifier{}

	return &signupFixture{
		flow:        businessflow.NewSignupFlow(userRepo, otpRepo, sessionRepo, auditRepo, testTokenService(t), notifier, nil),
		userRepo:    userRepo,
		otpRepo:     otpRepo,
		sessionRepo: sessionRepo,
		auditRepo:   auditRepo,
		notifier:    notifier,
	}
}

func signupReq(email string) *dto.SignupRequest {
	return &dto.SignupRequest{
		Name:     "Ada Lovelace",
		Email:    email,
		Password: "Str0ngPass!",
	}
}

// pendingCode digs the issued OTP code out of the store.
func (f *signupFixture) pendingCode(t *testing.T, userID uint) string {
	t.Helper()

	otps, err := f.otpRepo.ByUserAndType(context.Background(), userID, models.OTPTypeEmail)
	require.NoError(t, err)
	for _, otp := range otps {
		if otp.Status == models.OTPStatusPending {
			return otp.OTPCode
		}
	}
	t.Fatal("no pending verification code found")
	return ""
}

func TestSignup(t *testing.T) {
	f := newSignupFixture(t)

	resp, err := f.flow.Signup(context.Background(), signupReq("Ada@Example.com"), nil)
	require.NoError(t, err)
	assert.NotZero(t, resp.UserID)
	assert.Equal(t, "a**@example.com", resp.OTPTarget)

	user, _ := f.userRepo.ByID(context.Background(), resp.UserID)
	require.NotNil(t, user)
	// Email is stored lowercased, account starts unverified.
	assert.Equal(t, "ada@example.com", user.Email)
	assert.False(t, *user.IsVerified)
	assert.Equal(t, models.RoleCustomer, user.Role)

	// Password is stored hashed, never plain.
	assert.NotEqual(t, "Str0ngPass!", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("Str0ngPass!")))

	require.Len(t, f.notifier.emails, 1)
	assert.Equal(t, "ada@example.com", f.notifier.emails[0].to)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	f := newSignupFixture(t)

	ctx := context.Background()
	_, err := f.flow.Signup(ctx, signupReq("ada@example.com"), nil)
	require.NoError(t, err)

	_, err = f.flow.Signup(ctx, signupReq("ADA@example.com"), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, businessflow.ErrEmailAlreadyExists))
}

func TestSignup_ShortPassword(t *testing.T) {
	f := newSignupFixture(t)

	req := signupReq("ada@example.com")
	req.Password = "short"

	_, err := f.flow.Signup(context.Background(), req, nil)
	require.Error(t, err)

	var bizErr *businessflow.BusinessError
	require.ErrorAs(t, err, &bizErr)
	assert.Equal(t, businessflow.CodeInvalidInput, bizErr.Code)
}

func TestVerifyOTP(t *testing.T) {
	f := newSignupFixture(t)
	ctx := context.Background()

	signup, err := f.flow.Signup(ctx, signupReq("ada@example.com"), nil)
	require.NoError(t, err)
	code := f.pendingCode(t, signup.UserID)

	resp, err := f.flow.VerifyOTP(ctx, &dto.OTPVerificationRequest{
		UserID:  signup.UserID,
		OTPCode: code,
	}, nil)
	require.NoError(t, err)

	require.NotNil(t, resp.User.IsVerified)
	assert.True(t, *resp.User.IsVerified)
	assert.NotEmpty(t, resp.Session.SessionToken)
	require.NotNil(t, resp.Session.RefreshToken)
	assert.Equal(t, "Bearer", resp.Session.TokenType)

	// Verification opens the first session.
	session, _ := f.sessionRepo.BySessionToken(ctx, resp.Session.SessionToken)
	require.NotNil(t, session)
	assert.Equal(t, signup.UserID, session.UserID)
	assert.True(t, session.IsValid())

	user, _ := f.userRepo.ByID(ctx, signup.UserID)
	assert.True(t, *user.IsVerified)
}

func TestVerifyOTP_WrongCodeCountsAttempt(t *testing.T) {
	f := newSignupFixture(t)
	ctx := context.Background()

	signup, err := f.flow.Signup(ctx, signupReq("ada@example.com"), nil)
	require.NoError(t, err)
	code := f.pendingCode(t, signup.UserID)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	_, err = f.flow.VerifyOTP(ctx, &dto.OTPVerificationRequest{
		UserID:  signup.UserID,
		OTPCode: wrong,
	}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, businessflow.ErrInvalidOTPCode))

	// The right code still works afterwards.
	_, err = f.flow.VerifyOTP(ctx, &dto.OTPVerificationRequest{
		UserID:  signup.UserID,
		OTPCode: code,
	}, nil)
	require.NoError(t, err)
}

func TestVerifyOTP_AttemptsExhausted(t *testing.T) {
	f := newSignupFixture(t)
	ctx := context.Background()

	signup, err := f.flow.Signup(ctx, signupReq("ada@example.com"), nil)
	require.NoError(t, err)
	code := f.pendingCode(t, signup.UserID)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	for i := 0; i < 3; i++ {
		_, err = f.flow.VerifyOTP(ctx, &dto.OTPVerificationRequest{UserID: signup.UserID, OTPCode: wrong}, nil)
		require.Error(t, err)
	}

	// After max attempts even the right code is refused.
	_, err = f.flow.VerifyOTP(ctx, &dto.OTPVerificationRequest{UserID: signup.UserID, OTPCode: code}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, businessflow.ErrNoValidOTPFound))
}

func TestVerifyOTP_AlreadyVerified(t *testing.T) {
	f := newSignupFixture(t)
	ctx := context.Background()

	signup, err := f.flow.Signup(ctx, signupReq("ada@example.com"), nil)
	require.NoError(t, err)
	code := f.pendingCode(t, signup.UserID)

	_, err = f.flow.VerifyOTP(ctx, &dto.OTPVerificationRequest{UserID: signup.UserID, OTPCode: code}, nil)
	require.NoError(t, err)

	_, err = f.flow.VerifyOTP(ctx, &dto.OTPVerificationRequest{UserID: signup.UserID, OTPCode: code}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, businessflow.ErrAlreadyVerified))
}

func TestResendOTP_InvalidatesOldCode(t *testing.T) {
	f := newSignupFixture(t)
	ctx := context.Background()

	signup, err := f.flow.Signup(ctx, signupReq("ada@example.com"), nil)
	require.NoError(t, err)
	oldCode := f.pendingCode(t, signup.UserID)

	_, err = f.flow.ResendOTP(ctx, &dto.OTPResendRequest{UserID: signup.UserID}, nil)
	require.NoError(t, err)

	newCode := f.pendingCode(t, signup.UserID)

	// The old code only keeps working when the regenerated code happens to
	// collide with it; verify against the fresh one.
	if oldCode != newCode {
		_, err = f.flow.VerifyOTP(ctx, &dto.OTPVerificationRequest{UserID: signup.UserID, OTPCode: oldCode}, nil)
		require.Error(t, err)
	}

	_, err = f.flow.VerifyOTP(ctx, &dto.OTPVerificationRequest{UserID: signup.UserID, OTPCode: newCode}, nil)
	require.NoError(t, err)
}

func TestGenerateOTP(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := businessflow.GenerateOTP()
		require.NoError(t, err)
		assert.Len(t, code, 6)
		assert.Regexp(t, `^\d{6}$`, code)
	}
}
