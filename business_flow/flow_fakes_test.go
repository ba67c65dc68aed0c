package businessflow_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/adsphere/adsphere/models"
)

// In-memory repository fakes. The flows under test run with a nil
// database handle, so every operation executes directly against these
// maps and no transaction machinery is involved.

type fakeUserRepo struct {
	users  map[uint]*models.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]*models.User{}}
}

func (r *fakeUserRepo) add(user models.User) *models.User {
	r.nextID++
	user.ID = r.nextID
	if user.UUID == uuid.Nil {
		user.UUID = uuid.New()
	}
	r.users[user.ID] = &user
	return &user
}

func (r *fakeUserRepo) ByID(_ context.Context, id uint) (*models.User, error) {
	if u, ok := r.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) ByFilter(_ context.Context, filter models.UserFilter, _ string, limit, offset int) ([]*models.User, error) {
	var out []*models.User
	for _, u := range r.users {
		if filter.Email != nil && u.Email != *filter.Email {
			continue
		}
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		copied := *u
		out = append(out, &copied)
	}
	return paginate(out, limit, offset), nil
}

func (r *fakeUserRepo) Save(_ context.Context, user *models.User) error {
	if user.ID == 0 {
		r.nextID++
		user.ID = r.nextID
	}
	if user.UUID == uuid.Nil {
		user.UUID = uuid.New()
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) SaveBatch(ctx context.Context, users []*models.User) error {
	for _, u := range users {
		if err := r.Save(ctx, u); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeUserRepo) Count(ctx context.Context, filter models.UserFilter) (int64, error) {
	rows, err := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(rows)), err
}

func (r *fakeUserRepo) Exists(ctx context.Context, filter models.UserFilter) (bool, error) {
	n, err := r.Count(ctx, filter)
	return n > 0, err
}

func (r *fakeUserRepo) ByEmail(ctx context.Context, email string) (*models.User, error) {
	rows, err := r.ByFilter(ctx, models.UserFilter{Email: &email}, "", 0, 0)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (r *fakeUserRepo) ByUUID(_ context.Context, uuidStr string) (*models.User, error) {
	for _, u := range r.users {
		if u.UUID.String() == uuidStr {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, userID uint, passwordHash string) error {
	u, ok := r.users[userID]
	if !ok {
		return errors.New("user not found")
	}
	u.PasswordHash = passwordHash
	return nil
}

func (r *fakeUserRepo) UpdateVerification(_ context.Context, userID uint, verifiedAt time.Time) error {
	u, ok := r.users[userID]
	if !ok {
		return errors.New("user not found")
	}
	verified := true
	u.IsVerified = &verified
	u.VerifiedAt = &verifiedAt
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, userID uint, at time.Time) error {
	u, ok := r.users[userID]
	if !ok {
		return errors.New("user not found")
	}
	u.LastLoginAt = &at
	return nil
}

func (r *fakeUserRepo) UpdateBusinessInfo(_ context.Context, user models.User) error {
	u, ok := r.users[user.ID]
	if !ok {
		return errors.New("user not found")
	}
	u.CompanyName = user.CompanyName
	u.CompanyWebsite = user.CompanyWebsite
	u.Industry = user.Industry
	u.CompanyAddress = user.CompanyAddress
	return nil
}

type fakePlanRepo struct {
	plans  map[uint]*models.Plan
	nextID uint
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: map[uint]*models.Plan{}}
}

func (r *fakePlanRepo) add(plan models.Plan) *models.Plan {
	r.nextID++
	plan.ID = r.nextID
	if plan.UUID == uuid.Nil {
		plan.UUID = uuid.New()
	}
	r.plans[plan.ID] = &plan
	return &plan
}

func (r *fakePlanRepo) ByID(_ context.Context, id uint) (*models.Plan, error) {
	if p, ok := r.plans[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, nil
}

func (r *fakePlanRepo) ByFilter(_ context.Context, filter models.PlanFilter, _ string, limit, offset int) ([]*models.Plan, error) {
	var out []*models.Plan
	for _, p := range r.plans {
		if filter.Slug != nil && p.Slug != *filter.Slug {
			continue
		}
		copied := *p
		out = append(out, &copied)
	}
	return paginate(out, limit, offset), nil
}

func (r *fakePlanRepo) Save(_ context.Context, plan *models.Plan) error {
	if plan.ID == 0 {
		r.nextID++
		plan.ID = r.nextID
	}
	if plan.UUID == uuid.Nil {
		plan.UUID = uuid.New()
	}
	copied := *plan
	r.plans[plan.ID] = &copied
	return nil
}

func (r *fakePlanRepo) SaveBatch(ctx context.Context, plans []*models.Plan) error {
	for _, p := range plans {
		if err := r.Save(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakePlanRepo) Count(ctx context.Context, filter models.PlanFilter) (int64, error) {
	rows, err := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(rows)), err
}

func (r *fakePlanRepo) Exists(ctx context.Context, filter models.PlanFilter) (bool, error) {
	n, err := r.Count(ctx, filter)
	return n > 0, err
}

func (r *fakePlanRepo) BySlug(_ context.Context, slug string) (*models.Plan, error) {
	for _, p := range r.plans {
		if p.Slug == slug {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakePlanRepo) ListActive(_ context.Context) ([]*models.Plan, error) {
	var out []*models.Plan
	for _, p := range r.plans {
		if p.IsActive != nil && *p.IsActive {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakePlanRepo) Update(_ context.Context, plan models.Plan) error {
	if _, ok := r.plans[plan.ID]; !ok {
		return errors.New("plan not found")
	}
	copied := plan
	r.plans[plan.ID] = &copied
	return nil
}

func (r *fakePlanRepo) Delete(_ context.Context, id uint) error {
	delete(r.plans, id)
	return nil
}

type fakeSubscriptionRepo struct {
	subs   map[uint]*models.Subscription
	nextID uint
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{subs: map[uint]*models.Subscription{}}
}

func (r *fakeSubscriptionRepo) add(sub models.Subscription) *models.Subscription {
	r.nextID++
	sub.ID = r.nextID
	if sub.UUID == uuid.Nil {
		sub.UUID = uuid.New()
	}
	r.subs[sub.ID] = &sub
	return &sub
}

func (r *fakeSubscriptionRepo) ByID(_ context.Context, id uint) (*models.Subscription, error) {
	if s, ok := r.subs[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeSubscriptionRepo) ByFilter(_ context.Context, filter models.SubscriptionFilter, _ string, limit, offset int) ([]*models.Subscription, error) {
	var out []*models.Subscription
	for _, s := range r.subs {
		if filter.UserID != nil && s.UserID != *filter.UserID {
			continue
		}
		if filter.PlanID != nil && s.PlanID != *filter.PlanID {
			continue
		}
		copied := *s
		out = append(out, &copied)
	}
	return paginate(out, limit, offset), nil
}

func (r *fakeSubscriptionRepo) Save(_ context.Context, sub *models.Subscription) error {
	if sub.ID == 0 {
		r.nextID++
		sub.ID = r.nextID
	}
	if sub.UUID == uuid.Nil {
		sub.UUID = uuid.New()
	}
	copied := *sub
	r.subs[sub.ID] = &copied
	return nil
}

func (r *fakeSubscriptionRepo) SaveBatch(ctx context.Context, subs []*models.Subscription) error {
	for _, s := range subs {
		if err := r.Save(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeSubscriptionRepo) Count(ctx context.Context, filter models.SubscriptionFilter) (int64, error) {
	rows, err := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(rows)), err
}

func (r *fakeSubscriptionRepo) Exists(ctx context.Context, filter models.SubscriptionFilter) (bool, error) {
	n, err := r.Count(ctx, filter)
	return n > 0, err
}

func (r *fakeSubscriptionRepo) ActiveByUser(_ context.Context, userID uint) (*models.Subscription, error) {
	for _, s := range r.subs {
		if s.UserID == userID && s.IsLive() {
			copied := *s
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeSubscriptionRepo) CountLiveByPlan(_ context.Context, planID uint) (int64, error) {
	var n int64
	for _, s := range r.subs {
		if s.PlanID == planID && s.IsLive() {
			n++
		}
	}
	return n, nil
}

func (r *fakeSubscriptionRepo) Update(_ context.Context, sub models.Subscription) error {
	if _, ok := r.subs[sub.ID]; !ok {
		return errors.New("subscription not found")
	}
	copied := sub
	r.subs[sub.ID] = &copied
	return nil
}

type fakeCampaignRepo struct {
	campaigns map[uint]*models.Campaign
	nextID    uint
}

func newFakeCampaignRepo() *fakeCampaignRepo {
	return &fakeCampaignRepo{campaigns: map[uint]*models.Campaign{}}
}

func (r *fakeCampaignRepo) add(campaign models.Campaign) *models.Campaign {
	r.nextID++
	campaign.ID = r.nextID
	if campaign.UUID == uuid.Nil {
		campaign.UUID = uuid.New()
	}
	r.campaigns[campaign.ID] = &campaign
	return &campaign
}

func (r *fakeCampaignRepo) ByID(_ context.Context, id uint) (*models.Campaign, error) {
	if c, ok := r.campaigns[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeCampaignRepo) ByFilter(_ context.Context, filter models.CampaignFilter, _ string, limit, offset int) ([]*models.Campaign, error) {
	var out []*models.Campaign
	for _, c := range r.campaigns {
		if filter.UserID != nil && c.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		copied := *c
		out = append(out, &copied)
	}
	return paginate(out, limit, offset), nil
}

func (r *fakeCampaignRepo) Save(_ context.Context, campaign *models.Campaign) error {
	if campaign.ID == 0 {
		r.nextID++
		campaign.ID = r.nextID
	}
	if campaign.UUID == uuid.Nil {
		campaign.UUID = uuid.New()
	}
	copied := *campaign
	r.campaigns[campaign.ID] = &copied
	return nil
}

func (r *fakeCampaignRepo) SaveBatch(ctx context.Context, campaigns []*models.Campaign) error {
	for _, c := range campaigns {
		if err := r.Save(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeCampaignRepo) Count(ctx context.Context, filter models.CampaignFilter) (int64, error) {
	rows, err := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(rows)), err
}

func (r *fakeCampaignRepo) Exists(ctx context.Context, filter models.CampaignFilter) (bool, error) {
	n, err := r.Count(ctx, filter)
	return n > 0, err
}

func (r *fakeCampaignRepo) ByUUID(_ context.Context, uuidStr string) (*models.Campaign, error) {
	for _, c := range r.campaigns {
		if c.UUID.String() == uuidStr {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeCampaignRepo) ByUserID(ctx context.Context, userID uint, limit, offset int) ([]*models.Campaign, error) {
	return r.ByFilter(ctx, models.CampaignFilter{UserID: &userID}, "", limit, offset)
}

func (r *fakeCampaignRepo) Update(_ context.Context, campaign models.Campaign) error {
	if _, ok := r.campaigns[campaign.ID]; !ok {
		return errors.New("campaign not found")
	}
	copied := campaign
	r.campaigns[campaign.ID] = &copied
	return nil
}

func (r *fakeCampaignRepo) UpdateStatus(_ context.Context, id uint, status models.CampaignStatus, at time.Time) error {
	c, ok := r.campaigns[id]
	if !ok {
		return errors.New("campaign not found")
	}
	c.Status = status
	c.UpdatedAt = at
	return nil
}

func (r *fakeCampaignRepo) Delete(_ context.Context, id uint) error {
	delete(r.campaigns, id)
	return nil
}

type fakeMediaRepo struct {
	media  map[uint]*models.CampaignMedia
	nextID uint
}

func newFakeMediaRepo() *fakeMediaRepo {
	return &fakeMediaRepo{media: map[uint]*models.CampaignMedia{}}
}

func (r *fakeMediaRepo) add(m models.CampaignMedia) *models.CampaignMedia {
	r.nextID++
	m.ID = r.nextID
	if m.UUID == uuid.Nil {
		m.UUID = uuid.New()
	}
	r.media[m.ID] = &m
	return &m
}

func (r *fakeMediaRepo) ByID(_ context.Context, id uint) (*models.CampaignMedia, error) {
	if m, ok := r.media[id]; ok {
		copied := *m
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeMediaRepo) ByFilter(_ context.Context, filter models.CampaignMediaFilter, _ string, limit, offset int) ([]*models.CampaignMedia, error) {
	var out []*models.CampaignMedia
	for _, m := range r.media {
		if filter.CampaignID != nil && m.CampaignID != *filter.CampaignID {
			continue
		}
		if filter.Status != nil && m.Status != *filter.Status {
			continue
		}
		copied := *m
		out = append(out, &copied)
	}
	return paginate(out, limit, offset), nil
}

func (r *fakeMediaRepo) Save(_ context.Context, m *models.CampaignMedia) error {
	if m.ID == 0 {
		r.nextID++
		m.ID = r.nextID
	}
	if m.UUID == uuid.Nil {
		m.UUID = uuid.New()
	}
	copied := *m
	r.media[m.ID] = &copied
	return nil
}

func (r *fakeMediaRepo) SaveBatch(ctx context.Context, media []*models.CampaignMedia) error {
	for _, m := range media {
		if err := r.Save(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeMediaRepo) Count(ctx context.Context, filter models.CampaignMediaFilter) (int64, error) {
	rows, err := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(rows)), err
}

func (r *fakeMediaRepo) Exists(ctx context.Context, filter models.CampaignMediaFilter) (bool, error) {
	n, err := r.Count(ctx, filter)
	return n > 0, err
}

func (r *fakeMediaRepo) ByCampaignID(ctx context.Context, campaignID uint) ([]*models.CampaignMedia, error) {
	return r.ByFilter(ctx, models.CampaignMediaFilter{CampaignID: &campaignID}, "", 0, 0)
}

func (r *fakeMediaRepo) ByCampaignAndFileURL(_ context.Context, campaignID uint, fileURL string) (*models.CampaignMedia, error) {
	for _, m := range r.media {
		if m.CampaignID == campaignID && m.FileURL == fileURL {
			copied := *m
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeMediaRepo) Update(_ context.Context, m models.CampaignMedia) error {
	if _, ok := r.media[m.ID]; !ok {
		return errors.New("media not found")
	}
	copied := m
	r.media[m.ID] = &copied
	return nil
}

func (r *fakeMediaRepo) Delete(_ context.Context, id uint) error {
	delete(r.media, id)
	return nil
}

func (r *fakeMediaRepo) DeleteByCampaignID(_ context.Context, campaignID uint) error {
	for id, m := range r.media {
		if m.CampaignID == campaignID {
			delete(r.media, id)
		}
	}
	return nil
}

type fakePaymentRepo struct {
	payments map[uint]*models.Payment
	nextID   uint
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: map[uint]*models.Payment{}}
}

func (r *fakePaymentRepo) ByID(_ context.Context, id uint) (*models.Payment, error) {
	if p, ok := r.payments[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, nil
}

func (r *fakePaymentRepo) ByFilter(_ context.Context, filter models.PaymentFilter, _ string, limit, offset int) ([]*models.Payment, error) {
	var out []*models.Payment
	for _, p := range r.payments {
		if filter.UserID != nil && p.UserID != *filter.UserID {
			continue
		}
		if filter.PlanID != nil && p.PlanID != *filter.PlanID {
			continue
		}
		copied := *p
		out = append(out, &copied)
	}
	return paginate(out, limit, offset), nil
}

func (r *fakePaymentRepo) Save(_ context.Context, p *models.Payment) error {
	if p.ID == 0 {
		r.nextID++
		p.ID = r.nextID
	}
	if p.UUID == uuid.Nil {
		p.UUID = uuid.New()
	}
	copied := *p
	r.payments[p.ID] = &copied
	return nil
}

func (r *fakePaymentRepo) SaveBatch(ctx context.Context, payments []*models.Payment) error {
	for _, p := range payments {
		if err := r.Save(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakePaymentRepo) Count(ctx context.Context, filter models.PaymentFilter) (int64, error) {
	rows, err := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(rows)), err
}

func (r *fakePaymentRepo) Exists(ctx context.Context, filter models.PaymentFilter) (bool, error) {
	n, err := r.Count(ctx, filter)
	return n > 0, err
}

func (r *fakePaymentRepo) ByGatewayPayID(_ context.Context, gatewayPayID string) (*models.Payment, error) {
	for _, p := range r.payments {
		if p.GatewayPayID == gatewayPayID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakePaymentRepo) ListWithRelations(ctx context.Context, filter models.PaymentFilter) ([]*models.Payment, int64, error) {
	total, err := r.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	limit := filter.PageSize
	offset := 0
	if filter.PageSize > 0 && filter.Page > 1 {
		offset = (filter.Page - 1) * filter.PageSize
	}
	rows, err := r.ByFilter(ctx, filter, "", limit, offset)
	return rows, total, err
}

func (r *fakePaymentRepo) Stats(ctx context.Context, filter models.PaymentFilter) (*models.PaymentStats, error) {
	rows, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}
	stats := &models.PaymentStats{CountByStatus: map[string]int64{}}
	for _, p := range rows {
		stats.TotalCount++
		stats.CountByStatus[p.Status.String()]++
		if p.Status == models.PaymentStatusPaid {
			stats.TotalRevenue += p.Amount
		}
	}
	return stats, nil
}

type fakeSessionRepo struct {
	sessions map[uint]*models.UserSession
	nextID   uint
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[uint]*models.UserSession{}}
}

func (r *fakeSessionRepo) ByID(_ context.Context, id uint) (*models.UserSession, error) {
	if s, ok := r.sessions[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeSessionRepo) ByFilter(_ context.Context, filter models.UserSessionFilter, _ string, limit, offset int) ([]*models.UserSession, error) {
	var out []*models.UserSession
	for _, s := range r.sessions {
		if filter.UserID != nil && s.UserID != *filter.UserID {
			continue
		}
		copied := *s
		out = append(out, &copied)
	}
	return paginate(out, limit, offset), nil
}

func (r *fakeSessionRepo) Save(_ context.Context, s *models.UserSession) error {
	if s.ID == 0 {
		r.nextID++
		s.ID = r.nextID
	}
	copied := *s
	r.sessions[s.ID] = &copied
	return nil
}

func (r *fakeSessionRepo) SaveBatch(ctx context.Context, sessions []*models.UserSession) error {
	for _, s := range sessions {
		if err := r.Save(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeSessionRepo) Count(ctx context.Context, filter models.UserSessionFilter) (int64, error) {
	rows, err := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(rows)), err
}

func (r *fakeSessionRepo) Exists(ctx context.Context, filter models.UserSessionFilter) (bool, error) {
	n, err := r.Count(ctx, filter)
	return n > 0, err
}

func (r *fakeSessionRepo) BySessionToken(_ context.Context, token string) (*models.UserSession, error) {
	for _, s := range r.sessions {
		if s.SessionToken == token {
			copied := *s
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) ByRefreshToken(_ context.Context, token string) (*models.UserSession, error) {
	for _, s := range r.sessions {
		if s.RefreshToken != nil && *s.RefreshToken == token {
			copied := *s
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) ExpireSession(_ context.Context, sessionID uint) error {
	s, ok := r.sessions[sessionID]
	if !ok {
		return errors.New("session not found")
	}
	inactive := false
	s.IsActive = &inactive
	s.ExpiresAt = time.Now().UTC()
	return nil
}

func (r *fakeSessionRepo) ExpireAllUserSessions(ctx context.Context, userID uint) error {
	for id, s := range r.sessions {
		if s.UserID == userID {
			if err := r.ExpireSession(ctx, id); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *fakeSessionRepo) GetLatestByCorrelationID(_ context.Context, correlationID uuid.UUID) (*models.UserSession, error) {
	var latest *models.UserSession
	for _, s := range r.sessions {
		if s.CorrelationID == correlationID && (latest == nil || s.ID > latest.ID) {
			latest = s
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

type fakeOTPRepo struct {
	otps   map[uint]*models.OTPVerification
	nextID uint
}

func newFakeOTPRepo() *fakeOTPRepo {
	return &fakeOTPRepo{otps: map[uint]*models.OTPVerification{}}
}

func (r *fakeOTPRepo) ByID(_ context.Context, id uint) (*models.OTPVerification, error) {
	if o, ok := r.otps[id]; ok {
		copied := *o
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeOTPRepo) ByFilter(_ context.Context, filter models.OTPVerificationFilter, _ string, limit, offset int) ([]*models.OTPVerification, error) {
	var out []*models.OTPVerification
	for _, o := range r.otps {
		if filter.UserID != nil && o.UserID != *filter.UserID {
			continue
		}
		copied := *o
		out = append(out, &copied)
	}
	return paginate(out, limit, offset), nil
}

func (r *fakeOTPRepo) Save(_ context.Context, o *models.OTPVerification) error {
	if o.ID == 0 {
		r.nextID++
		o.ID = r.nextID
	}
	copied := *o
	r.otps[o.ID] = &copied
	return nil
}

func (r *fakeOTPRepo) SaveBatch(ctx context.Context, otps []*models.OTPVerification) error {
	for _, o := range otps {
		if err := r.Save(ctx, o); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeOTPRepo) Count(ctx context.Context, filter models.OTPVerificationFilter) (int64, error) {
	rows, err := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(rows)), err
}

func (r *fakeOTPRepo) Exists(ctx context.Context, filter models.OTPVerificationFilter) (bool, error) {
	n, err := r.Count(ctx, filter)
	return n > 0, err
}

func (r *fakeOTPRepo) ByUserAndType(_ context.Context, userID uint, otpType string) ([]*models.OTPVerification, error) {
	var out []*models.OTPVerification
	for _, o := range r.otps {
		if o.UserID == userID && o.OTPType == otpType {
			copied := *o
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeOTPRepo) ExpireOldOTPs(_ context.Context, userID uint, otpType string) error {
	for _, o := range r.otps {
		if o.UserID == userID && o.OTPType == otpType && o.Status == models.OTPStatusPending {
			o.Status = models.OTPStatusExpired
		}
	}
	return nil
}

func (r *fakeOTPRepo) Update(_ context.Context, o models.OTPVerification) error {
	if _, ok := r.otps[o.ID]; !ok {
		return errors.New("otp not found")
	}
	copied := o
	r.otps[o.ID] = &copied
	return nil
}

type fakeAuditRepo struct {
	entries []*models.AuditLog
}

func newFakeAuditRepo() *fakeAuditRepo {
	return &fakeAuditRepo{}
}

func (r *fakeAuditRepo) ByID(_ context.Context, id uint) (*models.AuditLog, error) {
	for _, e := range r.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, nil
}

func (r *fakeAuditRepo) ByFilter(_ context.Context, _ models.AuditLogFilter, _ string, limit, offset int) ([]*models.AuditLog, error) {
	return paginate(r.entries, limit, offset), nil
}

func (r *fakeAuditRepo) Save(_ context.Context, entry *models.AuditLog) error {
	entry.ID = uint(len(r.entries) + 1)
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeAuditRepo) SaveBatch(ctx context.Context, entries []*models.AuditLog) error {
	for _, e := range entries {
		if err := r.Save(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeAuditRepo) Count(_ context.Context, _ models.AuditLogFilter) (int64, error) {
	return int64(len(r.entries)), nil
}

func (r *fakeAuditRepo) Exists(_ context.Context, _ models.AuditLogFilter) (bool, error) {
	return len(r.entries) > 0, nil
}

func (r *fakeAuditRepo) ListByUser(_ context.Context, userID uint, limit, offset int) ([]*models.AuditLog, error) {
	var out []*models.AuditLog
	for _, e := range r.entries {
		if e.UserID != nil && *e.UserID == userID {
			out = append(out, e)
		}
	}
	return paginate(out, limit, offset), nil
}

func (r *fakeAuditRepo) ListByAction(_ context.Context, action string, limit, offset int) ([]*models.AuditLog, error) {
	var out []*models.AuditLog
	for _, e := range r.entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return paginate(out, limit, offset), nil
}

func (r *fakeAuditRepo) byAction(action string) []*models.AuditLog {
	out, _ := r.ListByAction(context.Background(), action, 0, 0)
	return out
}

// fakeFileStore tracks stored paths and can be told to fail deletions.
type fakeFileStore struct {
	files     map[string][]byte
	deleteErr error
	deleted   []string
}

func newFakeFileStore(paths ...string) *fakeFileStore {
	fs := &fakeFileStore{files: map[string][]byte{}}
	for _, p := range paths {
		fs.files[p] = []byte("content")
	}
	return fs
}

func (fs *fakeFileStore) Save(path string, r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	fs.files[path] = data
	return int64(len(data)), nil
}

func (fs *fakeFileStore) Exists(path string) bool {
	_, ok := fs.files[path]
	return ok
}

func (fs *fakeFileStore) AbsPath(path string) (string, error) {
	return "/fake/" + path, nil
}

func (fs *fakeFileStore) Delete(path string) error {
	if fs.deleteErr != nil {
		return fmt.Errorf("delete %s: %w", path, fs.deleteErr)
	}
	delete(fs.files, path)
	fs.deleted = append(fs.deleted, path)
	return nil
}

func paginate[T any](rows []*T, limit, offset int) []*T {
	if offset > 0 {
		if offset >= len(rows) {
			return nil
		}
		rows = rows[offset:]
	}
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
