package testing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/adsphere/adsphere/models"
)

// TestFixtures provides builders for inserting test data
type TestFixtures struct {
	db  *gorm.DB
	seq int
}

// NewTestFixtures creates a fixture builder bound to the given database
func NewTestFixtures(db *gorm.DB) *TestFixtures {
	return &TestFixtures{db: db}
}

func (f *TestFixtures) next() int {
	f.seq++
	return f.seq
}

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

// CreateTestUser creates a verified, active customer account.
// Password is always "TestPass123!".
func (f *TestFixtures) CreateTestUser() (*models.User, error) {
	n := f.next()

	hash, err := bcrypt.GenerateFromPassword([]byte("TestPass123!"), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash test password: %w", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		UUID:         uuid.New(),
		Name:         fmt.Sprintf("Test User %d", n),
		Email:        fmt.Sprintf("user%d@test.example.com", n),
		Mobile:       strPtr(fmt.Sprintf("+1555000%04d", n)),
		PasswordHash: string(hash),
		Role:         models.RoleCustomer,
		IsVerified:   boolPtr(true),
		IsActive:     boolPtr(true),
		VerifiedAt:   &now,
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create test user: %w", err)
	}
	return user, nil
}

// CreateTestAdmin creates an admin account
func (f *TestFixtures) CreateTestAdmin() (*models.User, error) {
	user, err := f.CreateTestUser()
	if err != nil {
		return nil, err
	}
	user.Role = models.RoleAdmin
	if err := f.db.Save(user).Error; err != nil {
		return nil, fmt.Errorf("failed to promote test admin: %w", err)
	}
	return user, nil
}

// CreateTestPlan creates an active plan with a unique slug
func (f *TestFixtures) CreateTestPlan() (*models.Plan, error) {
	n := f.next()

	plan := &models.Plan{
		Name:            fmt.Sprintf("Test Plan %d", n),
		Slug:            fmt.Sprintf("test-plan-%d", n),
		Description:     strPtr("Plan used by tests"),
		Price:           49.99,
		Currency:        "USD",
		BillingInterval: models.BillingIntervalMonthly,
		Features:        pq.StringArray{"analytics", "support"},
		Platforms:       pq.StringArray{"google", "instagram"},
		MaxCampaigns:    5,
		IsActive:        boolPtr(true),
		SortOrder:       n,
	}

	if err := f.db.Create(plan).Error; err != nil {
		return nil, fmt.Errorf("failed to create test plan: %w", err)
	}
	return plan, nil
}

// CreateTestSubscription creates an active subscription for a user on a plan
func (f *TestFixtures) CreateTestSubscription(userID, planID uint) (*models.Subscription, error) {
	now := time.Now().UTC()
	sub := &models.Subscription{
		UserID:   userID,
		PlanID:   planID,
		Status:   models.SubscriptionStatusActive,
		StartsAt: now,
		EndsAt:   now.Add(30 * 24 * time.Hour),
	}

	if err := f.db.Create(sub).Error; err != nil {
		return nil, fmt.Errorf("failed to create test subscription: %w", err)
	}
	return sub, nil
}

// CreateTestCampaign creates a campaign for a user on a plan
func (f *TestFixtures) CreateTestCampaign(userID, planID uint) (*models.Campaign, error) {
	n := f.next()
	now := time.Now().UTC()

	campaign := &models.Campaign{
		UserID:    userID,
		PlanID:    planID,
		Name:      fmt.Sprintf("Test Campaign %d", n),
		Target:    strPtr("US adults 18-35"),
		Budget:    1000,
		Objective: strPtr("awareness"),
		StartsAt:  now,
		EndsAt:    now.Add(14 * 24 * time.Hour),
		UpdatedBy: userID,
	}

	if err := f.db.Create(campaign).Error; err != nil {
		return nil, fmt.Errorf("failed to create test campaign: %w", err)
	}
	return campaign, nil
}

// CreateTestMedia attaches a media item to a campaign
func (f *TestFixtures) CreateTestMedia(campaignID uint) (*models.CampaignMedia, error) {
	n := f.next()

	media := &models.CampaignMedia{
		CampaignID: campaignID,
		FileURL:    fmt.Sprintf("/uploads/test-media-%d.jpg", n),
		MediaType:  "image",
		Details:    strPtr("Primary creative"),
	}

	if err := f.db.Create(media).Error; err != nil {
		return nil, fmt.Errorf("failed to create test media: %w", err)
	}
	return media, nil
}

// CreateTestOTP creates a pending email OTP for a user
func (f *TestFixtures) CreateTestOTP(userID uint, target string) (*models.OTPVerification, error) {
	otp := &models.OTPVerification{
		CorrelationID: uuid.New(),
		UserID:        userID,
		OTPCode:       "123456",
		OTPType:       models.OTPTypeEmail,
		TargetValue:   target,
		Status:        models.OTPStatusPending,
		MaxAttempts:   3,
		ExpiresAt:     time.Now().UTC().Add(5 * time.Minute),
	}

	if err := f.db.Create(otp).Error; err != nil {
		return nil, fmt.Errorf("failed to create test OTP: %w", err)
	}
	return otp, nil
}

// CreateTestSession creates an active session for a user
func (f *TestFixtures) CreateTestSession(userID uint) (*models.UserSession, error) {
	n := f.next()
	now := time.Now().UTC()

	session := &models.UserSession{
		CorrelationID:  uuid.New(),
		UserID:         userID,
		SessionToken:   fmt.Sprintf("test-session-token-%d-%d", userID, n),
		RefreshToken:   strPtr(fmt.Sprintf("test-refresh-token-%d-%d", userID, n)),
		IsActive:       boolPtr(true),
		LastAccessedAt: now,
		ExpiresAt:      now.Add(24 * time.Hour),
	}

	if err := f.db.Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create test session: %w", err)
	}
	return session, nil
}
