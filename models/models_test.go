package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCampaignStatusLabels(t *testing.T) {
	assert.Equal(t, "under_review", CampaignStatusUnderReview.String())
	assert.Equal(t, "under_review", CampaignStatusUnderReviewExplicit.String())
	assert.Equal(t, "approved", CampaignStatusApproved.String())
	assert.Equal(t, "needs_changes", CampaignStatusNeedsChanges.String())
	assert.Equal(t, "edited", CampaignStatusEdited.String())
	assert.Equal(t, "unknown(7)", CampaignStatus(7).String())
}

func TestCampaignStatusScanValue(t *testing.T) {
	var s CampaignStatus
	require.NoError(t, s.Scan(int64(3)))
	assert.Equal(t, CampaignStatusNeedsChanges, s)

	require.NoError(t, s.Scan(nil))
	assert.Equal(t, CampaignStatusUnderReview, s)

	v, err := CampaignStatusEdited.Value()
	require.NoError(t, err)
	assert.Equal(t, int64(4), v)

	_, err = CampaignStatus(-2).Value()
	assert.Error(t, err)
}

func TestCampaignIsUnderReview(t *testing.T) {
	c := &Campaign{Status: CampaignStatusUnderReview}
	assert.True(t, c.IsUnderReview())

	c.Status = CampaignStatusUnderReviewExplicit
	assert.True(t, c.IsUnderReview())

	c.Status = CampaignStatusApproved
	assert.False(t, c.IsUnderReview())
}

func TestSubscriptionStatusValue(t *testing.T) {
	v, err := SubscriptionStatusActive.Value()
	require.NoError(t, err)
	assert.Equal(t, "active", v)

	_, err = SubscriptionStatus("frozen").Value()
	assert.Error(t, err)
}

func TestSubscriptionIsLive(t *testing.T) {
	now := time.Now().UTC()

	live := &Subscription{
		Status:   SubscriptionStatusActive,
		StartsAt: now.Add(-time.Hour),
		EndsAt:   now.Add(time.Hour),
	}
	assert.True(t, live.IsLive())

	cancelled := &Subscription{
		Status:   SubscriptionStatusCancelled,
		StartsAt: now.Add(-time.Hour),
		EndsAt:   now.Add(time.Hour),
	}
	assert.False(t, cancelled.IsLive())

	lapsed := &Subscription{
		Status:   SubscriptionStatusActive,
		StartsAt: now.Add(-48 * time.Hour),
		EndsAt:   now.Add(-time.Hour),
	}
	assert.False(t, lapsed.IsLive())

	future := &Subscription{
		Status:   SubscriptionStatusActive,
		StartsAt: now.Add(time.Hour),
		EndsAt:   now.Add(48 * time.Hour),
	}
	assert.False(t, future.IsLive())
}

func TestOTPCanAttempt(t *testing.T) {
	otp := &OTPVerification{
		Status:        OTPStatusPending,
		AttemptsCount: 0,
		MaxAttempts:   3,
		ExpiresAt:     time.Now().Add(5 * time.Minute),
	}
	assert.True(t, otp.CanAttempt())

	otp.AttemptsCount = 3
	assert.False(t, otp.CanAttempt())

	otp.AttemptsCount = 1
	otp.ExpiresAt = time.Now().Add(-time.Minute)
	assert.True(t, otp.IsExpired())
	assert.False(t, otp.CanAttempt())

	otp.ExpiresAt = time.Now().Add(5 * time.Minute)
	otp.Status = OTPStatusVerified
	assert.False(t, otp.IsPending())
	assert.False(t, otp.CanAttempt())
}

func TestUserRoleHelpers(t *testing.T) {
	admin := &User{Role: RoleAdmin}
	assert.True(t, admin.IsAdmin())
	assert.False(t, admin.IsCustomer())

	customer := &User{Role: RoleCustomer}
	assert.False(t, customer.IsAdmin())
	assert.True(t, customer.IsCustomer())
}

func TestUserHasBusinessInfo(t *testing.T) {
	u := &User{}
	assert.False(t, u.HasBusinessInfo())

	empty := ""
	u.CompanyName = &empty
	assert.False(t, u.HasBusinessInfo())

	name := "Acme Media"
	u.CompanyName = &name
	assert.True(t, u.HasBusinessInfo())
}
