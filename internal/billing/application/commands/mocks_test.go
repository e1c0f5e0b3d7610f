package commands

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dorakingx/subscryption/internal/billing/domain"
	sharedDomain "github.com/dorakingx/subscryption/internal/shared/domain"
	"github.com/dorakingx/subscryption/internal/shared/infrastructure/outbox"
)

// mockPlanRepo is a mock implementation of domain.PlanRepository.
type mockPlanRepo struct {
	mock.Mock
}

func (m *mockPlanRepo) NextID(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockPlanRepo) Save(ctx context.Context, plan *domain.Plan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *mockPlanRepo) FindByID(ctx context.Context, planID int64) (*domain.Plan, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Plan), args.Error(1)
}

func (m *mockPlanRepo) List(ctx context.Context) ([]*domain.Plan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Plan), args.Error(1)
}

func (m *mockPlanRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// mockSubscriptionRepo is a mock implementation of domain.SubscriptionRepository.
type mockSubscriptionRepo struct {
	mock.Mock
}

func (m *mockSubscriptionRepo) Save(ctx context.Context, sub *domain.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *mockSubscriptionRepo) FindActive(ctx context.Context, subscriber sharedDomain.Identity, planID int64) (*domain.Subscription, error) {
	args := m.Called(ctx, subscriber, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subscription), args.Error(1)
}

func (m *mockSubscriptionRepo) FindLatest(ctx context.Context, subscriber sharedDomain.Identity, planID int64) (*domain.Subscription, error) {
	args := m.Called(ctx, subscriber, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subscription), args.Error(1)
}

// mockAccessRepo is a mock implementation of domain.AccessPolicyRepository.
type mockAccessRepo struct {
	mock.Mock
}

func (m *mockAccessRepo) Load(ctx context.Context) (*domain.AccessPolicy, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccessPolicy), args.Error(1)
}

func (m *mockAccessRepo) Save(ctx context.Context, policy *domain.AccessPolicy) error {
	args := m.Called(ctx, policy)
	return args.Error(0)
}

// mockOutboxRepo is a mock implementation of outbox.Repository.
type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) Save(ctx context.Context, msg *outbox.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *mockOutboxRepo) SaveBatch(ctx context.Context, msgs []*outbox.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockOutboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *mockOutboxRepo) MarkPublished(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockOutboxRepo) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	args := m.Called(ctx, id, errMsg, nextRetryAt)
	return args.Error(0)
}

func (m *mockOutboxRepo) DeleteOld(ctx context.Context, olderThanDays int) (int64, error) {
	args := m.Called(ctx, olderThanDays)
	return args.Get(0).(int64), args.Error(1)
}

// mockUnitOfWork is a mock implementation of UnitOfWork.
type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// mockTokenGateway is a mock implementation of domain.TokenGateway.
type mockTokenGateway struct {
	mock.Mock
}

func (m *mockTokenGateway) TransferFrom(ctx context.Context, from, to sharedDomain.Identity, amount int64) error {
	args := m.Called(ctx, from, to, amount)
	return args.Error(0)
}

func (m *mockTokenGateway) Approve(ctx context.Context, spender sharedDomain.Identity, amount int64) error {
	args := m.Called(ctx, spender, amount)
	return args.Error(0)
}

func (m *mockTokenGateway) BalanceOf(ctx context.Context, id sharedDomain.Identity) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

// fakeStatusCache records writes so tests can assert write-through behavior.
type fakeStatusCache struct {
	mu      sync.Mutex
	entries map[string]bool
}

func newFakeStatusCache() *fakeStatusCache {
	return &fakeStatusCache{entries: make(map[string]bool)}
}

func (c *fakeStatusCache) Get(_ context.Context, subscriber sharedDomain.Identity, planID int64) (bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	active, ok := c.entries[cacheKey(subscriber, planID)]
	return active, ok
}

func (c *fakeStatusCache) Set(_ context.Context, subscriber sharedDomain.Identity, planID int64, active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(subscriber, planID)] = active
}

func cacheKey(subscriber sharedDomain.Identity, planID int64) string {
	return subscriber.String() + "/" + strconv.FormatInt(planID, 10)
}

// Fixtures

func testPlan(planID int64, price int64, period time.Duration, maxSubscribers int64) *domain.Plan {
	now := time.Now().UTC()
	return domain.RehydratePlan(
		sharedDomain.RehydrateBaseEntity(uuid.New(), now, now),
		planID, "Basic", price, period, maxSubscribers, 0, true,
	)
}

func testPolicy(owner sharedDomain.Identity) *domain.AccessPolicy {
	now := time.Now().UTC()
	return domain.RehydrateAccessPolicy(
		sharedDomain.RehydrateBaseEntity(uuid.New(), now, now),
		owner, false, nil,
	)
}
