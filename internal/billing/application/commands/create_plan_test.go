package commands

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dorakingx/subscryption/internal/billing/domain"
	sharedDomain "github.com/dorakingx/subscryption/internal/shared/domain"
)

func TestCreatePlanHandler_Handle(t *testing.T) {
	owner := sharedDomain.NewIdentity("acct-owner")
	period := 30 * 24 * time.Hour

	setup := func() (*mockPlanRepo, *mockAccessRepo, *mockOutboxRepo, *mockUnitOfWork, *CreatePlanHandler, context.Context, context.Context) {
		planRepo := new(mockPlanRepo)
		accessRepo := new(mockAccessRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewCreatePlanHandler(planRepo, accessRepo, outboxRepo, uow)

		ctx := context.Background()
		txCtx := context.WithValue(ctx, "tx", "transaction")
		uow.On("Begin", ctx).Return(txCtx, nil)
		return planRepo, accessRepo, outboxRepo, uow, handler, ctx, txCtx
	}

	t.Run("creates a plan with the next catalog id", func(t *testing.T) {
		planRepo, accessRepo, outboxRepo, uow, handler, ctx, txCtx := setup()

		uow.On("Commit", txCtx).Return(nil)
		accessRepo.On("Load", txCtx).Return(testPolicy(owner), nil)
		planRepo.On("NextID", txCtx).Return(int64(4), nil)
		planRepo.On("Save", txCtx, mock.AnythingOfType("*domain.Plan")).Return(nil)
		outboxRepo.On("SaveBatch", txCtx, mock.AnythingOfType("[]*outbox.Message")).Return(nil)

		result, err := handler.Handle(ctx, CreatePlanCommand{
			Caller:         owner,
			Name:           "Enterprise",
			Price:          3_000_000,
			BillingPeriod:  period,
			MaxSubscribers: 500,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(4), result.PlanID)

		planRepo.AssertExpectations(t)
		outboxRepo.AssertExpectations(t)
	})

	t.Run("rejects non-owner callers before validation", func(t *testing.T) {
		planRepo, accessRepo, _, uow, handler, ctx, txCtx := setup()

		uow.On("Rollback", txCtx).Return(nil)
		accessRepo.On("Load", txCtx).Return(testPolicy(owner), nil)

		// Invalid price too, but authorization is checked first
		_, err := handler.Handle(ctx, CreatePlanCommand{
			Caller:        sharedDomain.NewIdentity("acct-stranger"),
			Name:          "Free",
			Price:         0,
			BillingPeriod: period,
		})

		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		planRepo.AssertNotCalled(t, "NextID", mock.Anything)
	})

	t.Run("rejects a non-positive price", func(t *testing.T) {
		planRepo, accessRepo, _, uow, handler, ctx, txCtx := setup()

		uow.On("Rollback", txCtx).Return(nil)
		accessRepo.On("Load", txCtx).Return(testPolicy(owner), nil)
		planRepo.On("NextID", txCtx).Return(int64(1), nil)

		_, err := handler.Handle(ctx, CreatePlanCommand{
			Caller:        owner,
			Name:          "Free",
			Price:         0,
			BillingPeriod: period,
		})

		assert.ErrorIs(t, err, domain.ErrInvalidPrice)
		planRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects a non-positive billing period", func(t *testing.T) {
		planRepo, accessRepo, _, uow, handler, ctx, txCtx := setup()

		uow.On("Rollback", txCtx).Return(nil)
		accessRepo.On("Load", txCtx).Return(testPolicy(owner), nil)
		planRepo.On("NextID", txCtx).Return(int64(1), nil)

		_, err := handler.Handle(ctx, CreatePlanCommand{
			Caller:        owner,
			Name:          "Broken",
			Price:         1_000_000,
			BillingPeriod: 0,
		})

		assert.ErrorIs(t, err, domain.ErrInvalidPeriod)
	})

	t.Run("rejects every caller when the engine is uninitialized", func(t *testing.T) {
		_, accessRepo, _, uow, handler, ctx, txCtx := setup()

		uow.On("Rollback", txCtx).Return(nil)
		accessRepo.On("Load", txCtx).Return(nil, nil)

		_, err := handler.Handle(ctx, CreatePlanCommand{
			Caller:        owner,
			Name:          "Basic",
			Price:         1_000_000,
			BillingPeriod: period,
		})

		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}
