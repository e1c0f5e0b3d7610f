package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlan(t *testing.T) {
	plan, err := NewPlan(1, "Basic Plan", 10_000_000, 30*24*time.Hour, 0)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, plan.ID())
	assert.Equal(t, int64(1), plan.PlanID())
	assert.Equal(t, "Basic Plan", plan.Name())
	assert.Equal(t, int64(10_000_000), plan.Price())
	assert.Equal(t, 30*24*time.Hour, plan.BillingPeriod())
	assert.True(t, plan.IsUnlimited())
	assert.Equal(t, int64(0), plan.CurrentSubscribers())
	assert.True(t, plan.IsActive())
}

func TestNewPlan_EmitsEvent(t *testing.T) {
	plan, err := NewPlan(3, "Pro Plan", 2_000_000, 2592000*time.Second, 50)

	require.NoError(t, err)
	events := plan.DomainEvents()
	require.Len(t, events, 1)

	created, ok := events[0].(*PlanCreated)
	require.True(t, ok)
	assert.Equal(t, int64(3), created.PlanID)
	assert.Equal(t, "Pro Plan", created.Name)
	assert.Equal(t, int64(2_000_000), created.Price)
	assert.Equal(t, int64(2592000), created.BillingPeriodSeconds)
	assert.Equal(t, int64(50), created.MaxSubscribers)
}

func TestNewPlan_InvalidPrice(t *testing.T) {
	tests := []struct {
		name  string
		price int64
	}{
		{"zero", 0},
		{"negative", -1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPlan(1, "Test", tc.price, time.Hour, 0)
			assert.ErrorIs(t, err, ErrInvalidPrice)
		})
	}
}

func TestNewPlan_InvalidPeriod(t *testing.T) {
	_, err := NewPlan(1, "Test", 100, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	_, err = NewPlan(1, "Test", 100, -time.Second, 0)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestPlan_SetActive(t *testing.T) {
	plan, _ := NewPlan(1, "Basic", 100, time.Hour, 0)
	plan.ClearDomainEvents()

	plan.SetActive(false)
	assert.False(t, plan.IsActive())

	events := plan.DomainEvents()
	require.Len(t, events, 1)
	updated, ok := events[0].(*PlanStatusUpdated)
	require.True(t, ok)
	assert.False(t, updated.Active)
}

func TestPlan_SetActive_NoOpWhenUnchanged(t *testing.T) {
	plan, _ := NewPlan(1, "Basic", 100, time.Hour, 0)
	plan.ClearDomainEvents()

	plan.SetActive(true)
	assert.Empty(t, plan.DomainEvents())
}

func TestPlan_RegisterSubscriber_Capacity(t *testing.T) {
	plan, _ := NewPlan(1, "Capped", 100, time.Hour, 2)

	require.NoError(t, plan.RegisterSubscriber())
	require.NoError(t, plan.RegisterSubscriber())
	assert.Equal(t, int64(2), plan.CurrentSubscribers())

	err := plan.RegisterSubscriber()
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, int64(2), plan.CurrentSubscribers())
}

func TestPlan_RegisterSubscriber_Unlimited(t *testing.T) {
	plan, _ := NewPlan(1, "Open", 100, time.Hour, 0)

	for i := 0; i < 100; i++ {
		require.NoError(t, plan.RegisterSubscriber())
	}
	assert.Equal(t, int64(100), plan.CurrentSubscribers())
}

func TestPlan_ReleaseSubscriber(t *testing.T) {
	plan, _ := NewPlan(1, "Capped", 100, time.Hour, 2)
	require.NoError(t, plan.RegisterSubscriber())

	plan.ReleaseSubscriber()
	assert.Equal(t, int64(0), plan.CurrentSubscribers())

	// Never goes negative.
	plan.ReleaseSubscriber()
	assert.Equal(t, int64(0), plan.CurrentSubscribers())
}

func TestPlan_ReleaseThenRegisterWithinCap(t *testing.T) {
	plan, _ := NewPlan(1, "Capped", 100, time.Hour, 1)
	require.NoError(t, plan.RegisterSubscriber())
	require.ErrorIs(t, plan.RegisterSubscriber(), ErrCapacityExceeded)

	plan.ReleaseSubscriber()
	assert.NoError(t, plan.RegisterSubscriber())
	assert.Equal(t, int64(1), plan.CurrentSubscribers())
}
