package commands

import (
	"context"

	"github.com/dorakingx/subscryption/internal/billing/application/queries"
	"github.com/dorakingx/subscryption/internal/billing/domain"
	sharedApplication "github.com/dorakingx/subscryption/internal/shared/application"
	sharedDomain "github.com/dorakingx/subscryption/internal/shared/domain"
	"github.com/dorakingx/subscryption/internal/shared/infrastructure/outbox"
)

// CancelSubscriptionCommand lets a subscriber exit their own subscription.
// Cancellation is never blocked by the pause flag and gives no prorated
// refund for the unused remainder of the period.
type CancelSubscriptionCommand struct {
	Subscriber sharedDomain.Identity
	PlanID     int64
}

// CancelSubscriptionHandler handles the CancelSubscriptionCommand.
type CancelSubscriptionHandler struct {
	planRepo   domain.PlanRepository
	subRepo    domain.SubscriptionRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	guard      *Guard
	cache      queries.StatusCache
}

// NewCancelSubscriptionHandler creates a new CancelSubscriptionHandler.
func NewCancelSubscriptionHandler(
	planRepo domain.PlanRepository,
	subRepo domain.SubscriptionRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	guard *Guard,
	cache queries.StatusCache,
) *CancelSubscriptionHandler {
	return &CancelSubscriptionHandler{
		planRepo:   planRepo,
		subRepo:    subRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		guard:      guard,
		cache:      cache,
	}
}

// Handle executes the CancelSubscriptionCommand.
func (h *CancelSubscriptionHandler) Handle(ctx context.Context, cmd CancelSubscriptionCommand) error {
	release := h.guard.Lock(cmd.Subscriber, cmd.PlanID)
	defer release()

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		sub, err := h.subRepo.FindActive(txCtx, cmd.Subscriber, cmd.PlanID)
		if err != nil {
			return err
		}
		plan, err := h.planRepo.FindByID(txCtx, cmd.PlanID)
		if err != nil {
			return err
		}

		if err := sub.Cancel(); err != nil {
			return err
		}
		plan.ReleaseSubscriber()

		if err := h.subRepo.Save(txCtx, sub); err != nil {
			return err
		}
		if err := h.planRepo.Save(txCtx, plan); err != nil {
			return err
		}

		return stageEvents(txCtx, h.outboxRepo, cmd.Subscriber, sub, plan)
	})
	if err != nil {
		return err
	}

	if h.cache != nil {
		h.cache.Set(ctx, cmd.Subscriber, cmd.PlanID, false)
	}

	return nil
}
