package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/dorakingx/subscryption/internal/billing/domain"
	sharedDomain "github.com/dorakingx/subscryption/internal/shared/domain"
	"github.com/dorakingx/subscryption/internal/shared/infrastructure/migrations"
)

func setupBillingTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	require.NoError(t, migrations.RunSQLiteMigrations(context.Background(), db))

	return db
}

func TestSQLitePlanRepository_SaveAndFind(t *testing.T) {
	db := setupBillingTestDB(t)
	defer db.Close()

	repo := NewSQLitePlanRepository(db)

	id, err := repo.NextID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	plan, err := domain.NewPlan(id, "Basic", 1_000_000, 30*24*time.Hour, 100)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), plan))

	found, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, plan.ID(), found.ID())
	assert.Equal(t, "Basic", found.Name())
	assert.Equal(t, int64(1_000_000), found.Price())
	assert.Equal(t, 30*24*time.Hour, found.BillingPeriod())
	assert.Equal(t, int64(100), found.MaxSubscribers())
	assert.True(t, found.IsActive())

	// Ids advance monotonically
	next, err := repo.NextID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), next)
}

func TestSQLitePlanRepository_FindByID_NotFound(t *testing.T) {
	db := setupBillingTestDB(t)
	defer db.Close()

	repo := NewSQLitePlanRepository(db)

	_, err := repo.FindByID(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrPlanNotFound)
}

func TestSQLitePlanRepository_SaveUpdatesExisting(t *testing.T) {
	db := setupBillingTestDB(t)
	defer db.Close()

	repo := NewSQLitePlanRepository(db)

	plan, err := domain.NewPlan(1, "Pro", 2_000_000, 30*24*time.Hour, 0)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), plan))

	plan.SetActive(false)
	require.NoError(t, repo.Save(context.Background(), plan))

	found, err := repo.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, found.IsActive())

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSQLitePlanRepository_List(t *testing.T) {
	db := setupBillingTestDB(t)
	defer db.Close()

	repo := NewSQLitePlanRepository(db)

	for i, name := range []string{"Basic", "Pro", "Enterprise"} {
		plan, err := domain.NewPlan(int64(i+1), name, int64(i+1)*1_000_000, 30*24*time.Hour, 0)
		require.NoError(t, err)
		require.NoError(t, repo.Save(context.Background(), plan))
	}

	plans, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 3)
	assert.Equal(t, "Basic", plans[0].Name())
	assert.Equal(t, "Enterprise", plans[2].Name())
}

func TestSQLiteSubscriptionRepository_FindActive(t *testing.T) {
	db := setupBillingTestDB(t)
	defer db.Close()

	planRepo := NewSQLitePlanRepository(db)
	subRepo := NewSQLiteSubscriptionRepository(db)

	plan, err := domain.NewPlan(1, "Basic", 1_000_000, 30*24*time.Hour, 0)
	require.NoError(t, err)
	require.NoError(t, planRepo.Save(context.Background(), plan))

	subscriber := sharedDomain.NewIdentity("acct-alice")

	_, err = subRepo.FindActive(context.Background(), subscriber, 1)
	assert.ErrorIs(t, err, domain.ErrNotSubscribed)

	sub := domain.NewSubscription(subscriber, plan, time.Now().UTC())
	require.NoError(t, subRepo.Save(context.Background(), sub))

	found, err := subRepo.FindActive(context.Background(), subscriber, 1)
	require.NoError(t, err)
	assert.Equal(t, sub.ID(), found.ID())
	assert.True(t, found.IsActive())
	assert.True(t, found.Subscriber().Equals(subscriber))
}

func TestSQLiteSubscriptionRepository_TerminalRecordsKept(t *testing.T) {
	db := setupBillingTestDB(t)
	defer db.Close()

	planRepo := NewSQLitePlanRepository(db)
	subRepo := NewSQLiteSubscriptionRepository(db)

	plan, err := domain.NewPlan(1, "Basic", 1_000_000, 30*24*time.Hour, 0)
	require.NoError(t, err)
	require.NoError(t, planRepo.Save(context.Background(), plan))

	subscriber := sharedDomain.NewIdentity("acct-bob")
	start := time.Now().UTC().Add(-time.Hour)

	first := domain.NewSubscription(subscriber, plan, start)
	require.NoError(t, subRepo.Save(context.Background(), first))
	require.NoError(t, first.Cancel())
	require.NoError(t, subRepo.Save(context.Background(), first))

	// The pair can start over after a terminal record
	second := domain.NewSubscription(subscriber, plan, time.Now().UTC())
	require.NoError(t, subRepo.Save(context.Background(), second))

	active, err := subRepo.FindActive(context.Background(), subscriber, 1)
	require.NoError(t, err)
	assert.Equal(t, second.ID(), active.ID())

	latest, err := subRepo.FindLatest(context.Background(), subscriber, 1)
	require.NoError(t, err)
	assert.Equal(t, second.ID(), latest.ID())
}

func TestSQLiteSubscriptionRepository_SaveAdvancesSchedule(t *testing.T) {
	db := setupBillingTestDB(t)
	defer db.Close()

	planRepo := NewSQLitePlanRepository(db)
	subRepo := NewSQLiteSubscriptionRepository(db)

	period := 30 * 24 * time.Hour
	plan, err := domain.NewPlan(1, "Basic", 1_000_000, period, 0)
	require.NoError(t, err)
	require.NoError(t, planRepo.Save(context.Background(), plan))

	subscriber := sharedDomain.NewIdentity("acct-carol")
	start := time.Now().UTC().Truncate(time.Millisecond)

	sub := domain.NewSubscription(subscriber, plan, start)
	require.NoError(t, subRepo.Save(context.Background(), sub))
	require.NoError(t, sub.RecordPayment(period, plan.Price()))
	require.NoError(t, subRepo.Save(context.Background(), sub))

	found, err := subRepo.FindActive(context.Background(), subscriber, 1)
	require.NoError(t, err)
	assert.True(t, found.LastPaymentAt().Equal(start.Add(period)))
	assert.True(t, found.NextPaymentDue().Equal(start.Add(2*period)))
}

func TestSQLiteAccessPolicyRepository_LoadUninitialized(t *testing.T) {
	db := setupBillingTestDB(t)
	defer db.Close()

	repo := NewSQLiteAccessPolicyRepository(db)

	policy, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, policy)
}

func TestSQLiteAccessPolicyRepository_RoundTrip(t *testing.T) {
	db := setupBillingTestDB(t)
	defer db.Close()

	repo := NewSQLiteAccessPolicyRepository(db)

	owner := sharedDomain.NewIdentity("acct-owner")
	policy, err := domain.NewAccessPolicy(owner)
	require.NoError(t, err)

	policy.SetPullerAuthorization(sharedDomain.NewIdentity("acct-relay-b"), true)
	policy.SetPullerAuthorization(sharedDomain.NewIdentity("acct-relay-a"), true)
	policy.Pause()
	require.NoError(t, repo.Save(context.Background(), policy))

	loaded, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.True(t, loaded.IsOwner(owner))
	assert.True(t, loaded.IsPaused())
	assert.True(t, loaded.IsAuthorizedPuller(sharedDomain.NewIdentity("acct-relay-a")))
	assert.True(t, loaded.IsAuthorizedPuller(sharedDomain.NewIdentity("acct-relay-b")))
	assert.False(t, loaded.IsAuthorizedPuller(sharedDomain.NewIdentity("acct-stranger")))

	// Revoking persists on the next save
	policy.SetPullerAuthorization(sharedDomain.NewIdentity("acct-relay-b"), false)
	policy.Unpause()
	require.NoError(t, repo.Save(context.Background(), policy))

	loaded, err = repo.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, loaded.IsPaused())
	assert.False(t, loaded.IsAuthorizedPuller(sharedDomain.NewIdentity("acct-relay-b")))
	assert.True(t, loaded.IsAuthorizedPuller(sharedDomain.NewIdentity("acct-relay-a")))
}
