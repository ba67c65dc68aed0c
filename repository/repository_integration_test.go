package repository_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adsphere/adsphere/models"
	"github.com/adsphere/adsphere/repository"
	apptesting "github.com/adsphere/adsphere/testing"
)

// setupIntegrationDB provisions a fresh database, skipping the test when
// PostgreSQL is not reachable (e.g. on CI runners without a DB service).
func setupIntegrationDB(t *testing.T) *apptesting.TestDB {
	t.Helper()

	testDB, err := apptesting.SetupTestDB()
	if err != nil {
		t.Skipf("PostgreSQL not available, skipping integration test: %v", err)
	}
	t.Cleanup(func() {
		if err := testDB.TeardownTestDB(); err != nil {
			t.Logf("failed to teardown test database: %v", err)
		}
	})
	return testDB
}

func TestUserRepository_Integration(t *testing.T) {
	testDB := setupIntegrationDB(t)
	fixtures := apptesting.NewTestFixtures(testDB.DB)
	repo := repository.NewUserRepository(testDB.DB)
	ctx := apptesting.CreateTestContext()

	user, err := fixtures.CreateTestUser()
	require.NoError(t, err)

	t.Run("ByEmail", func(t *testing.T) {
		found, err := repo.ByEmail(ctx, user.Email)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, user.ID, found.ID)
		assert.Equal(t, user.UUID, found.UUID)
	})

	t.Run("ByEmail not found", func(t *testing.T) {
		found, err := repo.ByEmail(ctx, "nobody@test.example.com")
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("UpdateLastLogin", func(t *testing.T) {
		at := time.Now().UTC().Truncate(time.Second)
		require.NoError(t, repo.UpdateLastLogin(ctx, user.ID, at))

		found, err := repo.ByID(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, found.LastLoginAt)
		assert.WithinDuration(t, at, *found.LastLoginAt, time.Second)
	})

	t.Run("ByFilter role", func(t *testing.T) {
		admin, err := fixtures.CreateTestAdmin()
		require.NoError(t, err)

		role := models.RoleAdmin
		admins, err := repo.ByFilter(ctx, models.UserFilter{Role: &role}, "id ASC", 10, 0)
		require.NoError(t, err)
		require.Len(t, admins, 1)
		assert.Equal(t, admin.ID, admins[0].ID)
	})
}

func TestPlanRepository_Integration(t *testing.T) {
	testDB := setupIntegrationDB(t)
	fixtures := apptesting.NewTestFixtures(testDB.DB)
	repo := repository.NewPlanRepository(testDB.DB)
	ctx := apptesting.CreateTestContext()

	plan, err := fixtures.CreateTestPlan()
	require.NoError(t, err)

	t.Run("BySlug", func(t *testing.T) {
		found, err := repo.BySlug(ctx, plan.Slug)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, plan.Name, found.Name)
		assert.ElementsMatch(t, plan.Platforms, found.Platforms)
	})

	t.Run("ListActive excludes inactive", func(t *testing.T) {
		inactive, err := fixtures.CreateTestPlan()
		require.NoError(t, err)
		inactive.IsActive = boolPtr(false)
		require.NoError(t, repo.Update(ctx, *inactive))

		active, err := repo.ListActive(ctx)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, plan.ID, active[0].ID)
	})

	t.Run("Delete", func(t *testing.T) {
		doomed, err := fixtures.CreateTestPlan()
		require.NoError(t, err)
		require.NoError(t, repo.Delete(ctx, doomed.ID))

		found, err := repo.ByID(ctx, doomed.ID)
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestCampaignRepositories_Integration(t *testing.T) {
	testDB := setupIntegrationDB(t)
	fixtures := apptesting.NewTestFixtures(testDB.DB)
	campaignRepo := repository.NewCampaignRepository(testDB.DB)
	mediaRepo := repository.NewCampaignMediaRepository(testDB.DB)
	ctx := apptesting.CreateTestContext()

	user, err := fixtures.CreateTestUser()
	require.NoError(t, err)
	plan, err := fixtures.CreateTestPlan()
	require.NoError(t, err)
	campaign, err := fixtures.CreateTestCampaign(user.ID, plan.ID)
	require.NoError(t, err)

	t.Run("new campaign starts under review", func(t *testing.T) {
		found, err := campaignRepo.ByID(ctx, campaign.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, models.CampaignStatusUnderReview, found.Status)
	})

	t.Run("UpdateStatus", func(t *testing.T) {
		require.NoError(t, campaignRepo.UpdateStatus(ctx, campaign.ID, models.CampaignStatusApproved, time.Now().UTC()))

		found, err := campaignRepo.ByID(ctx, campaign.ID)
		require.NoError(t, err)
		assert.Equal(t, models.CampaignStatusApproved, found.Status)
	})

	t.Run("media unique per campaign and file URL", func(t *testing.T) {
		media, err := fixtures.CreateTestMedia(campaign.ID)
		require.NoError(t, err)

		found, err := mediaRepo.ByCampaignAndFileURL(ctx, campaign.ID, media.FileURL)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, media.ID, found.ID)
		assert.Equal(t, models.MediaStatusPending, found.Status)

		dup := &models.CampaignMedia{
			CampaignID: campaign.ID,
			FileURL:    media.FileURL,
			MediaType:  "image",
		}
		assert.Error(t, mediaRepo.Save(ctx, dup))
	})

	t.Run("DeleteByCampaignID", func(t *testing.T) {
		_, err := fixtures.CreateTestMedia(campaign.ID)
		require.NoError(t, err)

		require.NoError(t, mediaRepo.DeleteByCampaignID(ctx, campaign.ID))

		remaining, err := mediaRepo.ByCampaignID(ctx, campaign.ID)
		require.NoError(t, err)
		assert.Empty(t, remaining)
	})

	t.Run("ByUserID pagination", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			_, err := fixtures.CreateTestCampaign(user.ID, plan.ID)
			require.NoError(t, err)
		}

		page, err := campaignRepo.ByUserID(ctx, user.ID, 2, 0)
		require.NoError(t, err)
		assert.Len(t, page, 2)

		total, err := campaignRepo.Count(ctx, models.CampaignFilter{UserID: &user.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
	})
}

func TestSessionRepository_Integration(t *testing.T) {
	testDB := setupIntegrationDB(t)
	fixtures := apptesting.NewTestFixtures(testDB.DB)
	repo := repository.NewUserSessionRepository(testDB.DB)
	ctx := apptesting.CreateTestContext()

	user, err := fixtures.CreateTestUser()
	require.NoError(t, err)
	session, err := fixtures.CreateTestSession(user.ID)
	require.NoError(t, err)

	t.Run("BySessionToken", func(t *testing.T) {
		found, err := repo.BySessionToken(ctx, session.SessionToken)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.True(t, found.IsValid())
	})

	t.Run("ExpireAllUserSessions", func(t *testing.T) {
		_, err := fixtures.CreateTestSession(user.ID)
		require.NoError(t, err)

		require.NoError(t, repo.ExpireAllUserSessions(ctx, user.ID))

		found, err := repo.BySessionToken(ctx, session.SessionToken)
		require.NoError(t, err)
		if found != nil {
			assert.False(t, found.IsValid())
		}
	})
}

func boolPtr(b bool) *bool { return &b }
