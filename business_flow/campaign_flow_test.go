package businessflow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adsphere/adsphere/app/dto"
	businessflow "github.com/adsphere/adsphere/business_flow"
	"github.com/adsphere/adsphere/models"
	"github.com/adsphere/adsphere/utils"
)

type campaignFixture struct {
	flow             businessflow.CampaignFlow
	campaignRepo     *fakeCampaignRepo
	mediaRepo        *fakeMediaRepo
	userRepo         *fakeUserRepo
	planRepo         *fakePlanRepo
	subscriptionRepo *fakeSubscriptionRepo
	auditRepo        *fakeAuditRepo
}

func newCampaignFixture() *campaignFixture {
	campaignRepo := newFakeCampaignRepo()
	mediaRepo := newFakeMediaRepo()
	userRepo := newFakeUserRepo()
	planRepo := newFakePlanRepo()
	subscriptionRepo := newFakeSubscriptionRepo()
	auditRepo := newFakeAuditRepo()

	return &campaignFixture{
		flow:             businessflow.NewCampaignFlow(campaignRepo, mediaRepo, userRepo, planRepo, subscriptionRepo, auditRepo, nil),
		campaignRepo:     campaignRepo,
		mediaRepo:        mediaRepo,
		userRepo:         userRepo,
		planRepo:         planRepo,
		subscriptionRepo: subscriptionRepo,
		auditRepo:        auditRepo,
	}
}

// subscribedUser creates a user with an active subscription on a plan
// allowing maxCampaigns campaigns.
func (f *campaignFixture) subscribedUser(maxCampaigns int) *models.User {
	user := f.userRepo.add(models.User{
		Name:  "Ada",
		Email: "ada@example.com",
		Role:  models.RoleCustomer,
	})
	plan := f.planRepo.add(models.Plan{
		Name:         "Growth",
		Slug:         "growth",
		MaxCampaigns: maxCampaigns,
		IsActive:     utils.ToPtr(true),
	})
	now := time.Now().UTC()
	f.subscriptionRepo.add(models.Subscription{
		UserID:   user.ID,
		PlanID:   plan.ID,
		Status:   models.SubscriptionStatusActive,
		StartsAt: now.Add(-time.Hour),
		EndsAt:   now.Add(30 * 24 * time.Hour),
	})
	return user
}

func createReq(userID uint) *dto.CreateCampaignRequest {
	now := time.Now().UTC()
	return &dto.CreateCampaignRequest{
		UserID:   userID,
		Name:     "Spring Push",
		Budget:   500,
		StartsAt: now,
		EndsAt:   now.Add(7 * 24 * time.Hour),
	}
}

func TestCreateCampaign(t *testing.T) {
	f := newCampaignFixture()
	user := f.subscribedUser(3)

	resp, err := f.flow.CreateCampaign(context.Background(), createReq(user.ID), nil)
	require.NoError(t, err)

	assert.Equal(t, user.ID, resp.UserID)
	assert.Equal(t, int16(0), resp.Status)
	assert.Equal(t, "under_review", resp.StatusLabel)
}

func TestCreateCampaign_RequiresActiveSubscription(t *testing.T) {
	f := newCampaignFixture()
	user := f.userRepo.add(models.User{Name: "Bob", Email: "bob@example.com"})

	_, err := f.flow.CreateCampaign(context.Background(), createReq(user.ID), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, businessflow.ErrNoActiveSubscription))
}

func TestCreateCampaign_PlanLimitEnforced(t *testing.T) {
	f := newCampaignFixture()
	user := f.subscribedUser(2)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := f.flow.CreateCampaign(ctx, createReq(user.ID), nil)
		require.NoError(t, err)
	}

	_, err := f.flow.CreateCampaign(ctx, createReq(user.ID), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, businessflow.ErrCampaignLimitReached))
}

func TestCreateCampaign_UnlimitedPlan(t *testing.T) {
	f := newCampaignFixture()
	user := f.subscribedUser(0)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := f.flow.CreateCampaign(ctx, createReq(user.ID), nil)
		require.NoError(t, err)
	}
}

func TestCreateCampaign_EndBeforeStart(t *testing.T) {
	f := newCampaignFixture()
	user := f.subscribedUser(3)

	req := createReq(user.ID)
	req.EndsAt = req.StartsAt.Add(-time.Hour)

	_, err := f.flow.CreateCampaign(context.Background(), req, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, businessflow.ErrEndBeforeStart))
}

func TestUpdateCampaign_OwnerOnly(t *testing.T) {
	f := newCampaignFixture()
	user := f.subscribedUser(3)
	campaign := f.campaignRepo.add(models.Campaign{
		UserID:   user.ID,
		PlanID:   1,
		Name:     "Original",
		StartsAt: time.Now().UTC(),
		EndsAt:   time.Now().UTC().Add(24 * time.Hour),
	})

	_, err := f.flow.UpdateCampaign(context.Background(), &dto.UpdateCampaignRequest{
		CampaignID: campaign.ID,
		UserID:     user.ID + 1,
		Name:       strp("Hijacked"),
	}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, businessflow.ErrCampaignAccessDenied))
}

func TestUpdateCampaign(t *testing.T) {
	f := newCampaignFixture()
	user := f.subscribedUser(3)
	campaign := f.campaignRepo.add(models.Campaign{
		UserID:   user.ID,
		PlanID:   1,
		Name:     "Original",
		Budget:   100,
		StartsAt: time.Now().UTC(),
		EndsAt:   time.Now().UTC().Add(24 * time.Hour),
	})

	budget := 250.0
	resp, err := f.flow.UpdateCampaign(context.Background(), &dto.UpdateCampaignRequest{
		CampaignID: campaign.ID,
		UserID:     user.ID,
		Name:       strp("Renamed"),
		Budget:     &budget,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", resp.Name)
	assert.Equal(t, 250.0, resp.Budget)
}

func TestGetCampaign_AdminSeesAll(t *testing.T) {
	f := newCampaignFixture()
	campaign := f.campaignRepo.add(models.Campaign{UserID: 7, PlanID: 1, Name: "Private"})

	ctx := context.Background()

	_, err := f.flow.GetCampaign(ctx, campaign.ID, 8, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, businessflow.ErrCampaignAccessDenied))

	resp, err := f.flow.GetCampaign(ctx, campaign.ID, 8, true)
	require.NoError(t, err)
	assert.Equal(t, campaign.ID, resp.ID)
}

func TestListCampaigns_NonAdminScopedToOwn(t *testing.T) {
	f := newCampaignFixture()
	f.campaignRepo.add(models.Campaign{UserID: 1, PlanID: 1, Name: "Mine"})
	f.campaignRepo.add(models.Campaign{UserID: 2, PlanID: 1, Name: "Theirs"})

	resp, err := f.flow.ListCampaigns(context.Background(), &dto.ListCampaignsRequest{
		RequesterID: 1,
	}, nil)
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Mine", resp.Items[0].Name)
	assert.Equal(t, int64(1), resp.Pagination.Total)
}

func TestListCampaigns_UnknownStatusRejected(t *testing.T) {
	f := newCampaignFixture()
	bad := int16(9)

	_, err := f.flow.ListCampaigns(context.Background(), &dto.ListCampaignsRequest{
		RequesterID:      1,
		RequesterIsAdmin: true,
		Status:           &bad,
	}, nil)
	require.Error(t, err)

	var bizErr *businessflow.BusinessError
	require.ErrorAs(t, err, &bizErr)
	assert.Equal(t, businessflow.CodeInvalidInput, bizErr.Code)
}

func TestUpsertCampaignMedia_CreatesAndUpdates(t *testing.T) {
	f := newCampaignFixture()
	campaign := f.campaignRepo.add(models.Campaign{UserID: 1, PlanID: 1, Name: "C"})
	f.mediaRepo.add(models.CampaignMedia{
		CampaignID: campaign.ID,
		FileURL:    "/uploads/existing.jpg",
		MediaType:  "image",
		Status:     models.MediaStatusApproved,
	})

	ctx := context.Background()
	resp, err := f.flow.UpsertCampaignMedia(ctx, &dto.UpsertCampaignMediaRequest{
		CampaignID:  campaign.ID,
		RequesterID: 1,
		Items: []dto.CampaignMediaItem{
			{FileURL: "/uploads/existing.jpg", MediaType: "video", Details: strp("now a video")},
			{FileURL: "/uploads/fresh.jpg", MediaType: "image"},
		},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Created)
	assert.Equal(t, 1, resp.Updated)

	// The refreshed row keeps its review status; the new one starts pending.
	existing, _ := f.mediaRepo.ByCampaignAndFileURL(ctx, campaign.ID, "/uploads/existing.jpg")
	assert.Equal(t, "video", existing.MediaType)
	assert.Equal(t, models.MediaStatusApproved, existing.Status)

	fresh, _ := f.mediaRepo.ByCampaignAndFileURL(ctx, campaign.ID, "/uploads/fresh.jpg")
	assert.Equal(t, models.MediaStatusPending, fresh.Status)
}

func TestUpsertCampaignMedia_OwnershipEnforced(t *testing.T) {
	f := newCampaignFixture()
	campaign := f.campaignRepo.add(models.Campaign{UserID: 1, PlanID: 1, Name: "C"})

	_, err := f.flow.UpsertCampaignMedia(context.Background(), &dto.UpsertCampaignMediaRequest{
		CampaignID:  campaign.ID,
		RequesterID: 2,
		Items:       []dto.CampaignMediaItem{{FileURL: "/uploads/a.jpg", MediaType: "image"}},
	}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, businessflow.ErrCampaignAccessDenied))
}

func TestUpsertCampaignMedia_ValidatesItems(t *testing.T) {
	f := newCampaignFixture()
	campaign := f.campaignRepo.add(models.Campaign{UserID: 1, PlanID: 1, Name: "C"})

	_, err := f.flow.UpsertCampaignMedia(context.Background(), &dto.UpsertCampaignMediaRequest{
		CampaignID:  campaign.ID,
		RequesterID: 1,
		Items:       []dto.CampaignMediaItem{{FileURL: "/uploads/a.gif", MediaType: "gif"}},
	}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, businessflow.ErrInvalidMediaType))
}
