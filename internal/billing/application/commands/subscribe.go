package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dorakingx/subscryption/internal/billing/application/queries"
	"github.com/dorakingx/subscryption/internal/billing/domain"
	sharedApplication "github.com/dorakingx/subscryption/internal/shared/application"
	sharedDomain "github.com/dorakingx/subscryption/internal/shared/domain"
	"github.com/dorakingx/subscryption/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// SubscribeCommand enrolls the calling subscriber in a plan. The first charge
// is pulled immediately under the subscriber's allowance.
type SubscribeCommand struct {
	Subscriber sharedDomain.Identity
	PlanID     int64
}

// SubscribeResult contains the result of a successful enrollment.
type SubscribeResult struct {
	SubscriptionID uuid.UUID
	Charged        int64
	NextPaymentDue time.Time
}

// SubscribeHandler handles the SubscribeCommand.
type SubscribeHandler struct {
	planRepo   domain.PlanRepository
	subRepo    domain.SubscriptionRepository
	accessRepo domain.AccessPolicyRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	token      domain.TokenGateway
	custody    sharedDomain.Identity
	guard      *Guard
	cache      queries.StatusCache
	now        func() time.Time
}

// NewSubscribeHandler creates a new SubscribeHandler. The cache is optional.
func NewSubscribeHandler(
	planRepo domain.PlanRepository,
	subRepo domain.SubscriptionRepository,
	accessRepo domain.AccessPolicyRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	token domain.TokenGateway,
	custody sharedDomain.Identity,
	guard *Guard,
	cache queries.StatusCache,
) *SubscribeHandler {
	return &SubscribeHandler{
		planRepo:   planRepo,
		subRepo:    subRepo,
		accessRepo: accessRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		token:      token,
		custody:    custody,
		guard:      guard,
		cache:      cache,
		now:        time.Now,
	}
}

// Handle executes the SubscribeCommand. All validations run before the token
// pull; the pull runs before any commit. A failed pull rolls the whole
// operation back, leaving no record and no counter change.
func (h *SubscribeHandler) Handle(ctx context.Context, cmd SubscribeCommand) (*SubscribeResult, error) {
	release := h.guard.Lock(cmd.Subscriber, cmd.PlanID)
	defer release()

	var result *SubscribeResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		policy, err := h.accessRepo.Load(txCtx)
		if err != nil {
			return err
		}

		plan, err := h.planRepo.FindByID(txCtx, cmd.PlanID)
		if err != nil {
			return err
		}
		if !plan.IsActive() {
			return domain.ErrPlanNotActive
		}
		if policy != nil && policy.IsPaused() {
			return domain.ErrEnginePaused
		}

		if _, err := h.subRepo.FindActive(txCtx, cmd.Subscriber, cmd.PlanID); err == nil {
			return domain.ErrAlreadySubscribed
		} else if !errors.Is(err, domain.ErrNotSubscribed) {
			return err
		}

		if err := plan.RegisterSubscriber(); err != nil {
			return err
		}

		// External interaction after every validation and before any commit.
		if err := h.token.TransferFrom(txCtx, cmd.Subscriber, h.custody, plan.Price()); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrPaymentFailed, err)
		}

		sub := domain.NewSubscription(cmd.Subscriber, plan, h.now().UTC())

		if err := h.planRepo.Save(txCtx, plan); err != nil {
			return err
		}
		if err := h.subRepo.Save(txCtx, sub); err != nil {
			return err
		}
		if err := stageEvents(txCtx, h.outboxRepo, cmd.Subscriber, plan, sub); err != nil {
			return err
		}

		result = &SubscribeResult{
			SubscriptionID: sub.ID(),
			Charged:        plan.Price(),
			NextPaymentDue: sub.NextPaymentDue(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		h.cache.Set(ctx, cmd.Subscriber, cmd.PlanID, true)
	}

	return result, nil
}
