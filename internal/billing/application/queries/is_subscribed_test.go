package queries

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dorakingx/subscryption/internal/billing/domain"
	sharedDomain "github.com/dorakingx/subscryption/internal/shared/domain"
)

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

// memoryStatusCache is an in-process StatusCache for tests.
type memoryStatusCache struct {
	mu      sync.Mutex
	entries map[string]bool
	sets    int
}

func newMemoryStatusCache() *memoryStatusCache {
	return &memoryStatusCache{entries: make(map[string]bool)}
}

func (c *memoryStatusCache) Get(_ context.Context, subscriber sharedDomain.Identity, planID int64) (bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	active, ok := c.entries[key(subscriber, planID)]
	return active, ok
}

func (c *memoryStatusCache) Set(_ context.Context, subscriber sharedDomain.Identity, planID int64, active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key(subscriber, planID)] = active
	c.sets++
}

func key(subscriber sharedDomain.Identity, planID int64) string {
	return subscriber.String() + "/" + strconv.FormatInt(planID, 10)
}

func activeSubscription(subscriber sharedDomain.Identity, planID int64) *domain.Subscription {
	now := time.Now().UTC()
	return domain.RehydrateSubscription(
		sharedDomain.RehydrateBaseEntity(uuid.New(), now, now),
		subscriber, planID, domain.StatusActive,
		now, now, now.Add(30*24*time.Hour),
	)
}

func TestIsSubscribedHandler_Handle(t *testing.T) {
	subscriber := sharedDomain.NewIdentity("acct-alice")

	t.Run("reports an active subscription and fills the cache", func(t *testing.T) {
		repo := new(mockSubscriptionRepo)
		cache := newMemoryStatusCache()
		handler := NewIsSubscribedHandler(repo, cache)

		repo.On("FindActive", mock.Anything, subscriber, int64(1)).Return(activeSubscription(subscriber, 1), nil)

		active, err := handler.Handle(context.Background(), IsSubscribedQuery{Subscriber: subscriber, PlanID: 1})

		require.NoError(t, err)
		assert.True(t, active)
		assert.Equal(t, 1, cache.sets)
	})

	t.Run("reports false without error when never subscribed", func(t *testing.T) {
		repo := new(mockSubscriptionRepo)
		handler := NewIsSubscribedHandler(repo, nil)

		repo.On("FindActive", mock.Anything, subscriber, int64(2)).Return(nil, domain.ErrNotSubscribed)

		active, err := handler.Handle(context.Background(), IsSubscribedQuery{Subscriber: subscriber, PlanID: 2})

		require.NoError(t, err)
		assert.False(t, active)
	})

	t.Run("serves repeat checks from the cache", func(t *testing.T) {
		repo := new(mockSubscriptionRepo)
		cache := newMemoryStatusCache()
		handler := NewIsSubscribedHandler(repo, cache)

		repo.On("FindActive", mock.Anything, subscriber, int64(1)).Return(activeSubscription(subscriber, 1), nil).Once()

		for i := 0; i < 3; i++ {
			active, err := handler.Handle(context.Background(), IsSubscribedQuery{Subscriber: subscriber, PlanID: 1})
			require.NoError(t, err)
			assert.True(t, active)
		}

		repo.AssertNumberOfCalls(t, "FindActive", 1)
	})

	t.Run("propagates ledger errors", func(t *testing.T) {
		repo := new(mockSubscriptionRepo)
		handler := NewIsSubscribedHandler(repo, nil)

		repo.On("FindActive", mock.Anything, subscriber, int64(1)).Return(nil, errors.New("connection refused"))

		_, err := handler.Handle(context.Background(), IsSubscribedQuery{Subscriber: subscriber, PlanID: 1})

		assert.Error(t, err)
	})
}
