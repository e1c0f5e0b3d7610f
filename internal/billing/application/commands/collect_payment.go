package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/dorakingx/subscryption/internal/billing/application/queries"
	"github.com/dorakingx/subscryption/internal/billing/domain"
	sharedApplication "github.com/dorakingx/subscryption/internal/shared/application"
	sharedDomain "github.com/dorakingx/subscryption/internal/shared/domain"
	"github.com/dorakingx/subscryption/internal/shared/infrastructure/outbox"
)

const expiryReasonPullFailed = "payment pull failed"

// CollectPaymentCommand triggers a recurring pull for a subscription. The
// caller must be the owner or an authorized puller.
type CollectPaymentCommand struct {
	Caller     sharedDomain.Identity
	Subscriber sharedDomain.Identity
	PlanID     int64
}

// CollectPaymentResult contains the outcome of a collection attempt.
type CollectPaymentResult struct {
	Amount         int64
	NextPaymentDue time.Time
	Expired        bool
}

// CollectPaymentHandler handles the CollectPaymentCommand.
type CollectPaymentHandler struct {
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

// NewCollectPaymentHandler creates a new CollectPaymentHandler.
func NewCollectPaymentHandler(
	planRepo domain.PlanRepository,
	subRepo domain.SubscriptionRepository,
	accessRepo domain.AccessPolicyRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	token domain.TokenGateway,
	custody sharedDomain.Identity,
	guard *Guard,
	cache queries.StatusCache,
) *CollectPaymentHandler {
	return &CollectPaymentHandler{
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

// Handle executes the CollectPaymentCommand. Collection can never run early.
// On a successful pull the schedule advances additively from the prior due
// date. On a failed pull the subscription expires immediately and that
// accounting is committed; ErrPaymentFailed is still surfaced to the caller.
// A grace window, if wanted, is the puller's responsibility.
func (h *CollectPaymentHandler) Handle(ctx context.Context, cmd CollectPaymentCommand) (*CollectPaymentResult, error) {
	release := h.guard.Lock(cmd.Subscriber, cmd.PlanID)
	defer release()

	var (
		result  *CollectPaymentResult
		pullErr error
	)

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		policy, err := h.accessRepo.Load(txCtx)
		if err != nil {
			return err
		}
		// Authorization before any other validation: failures must not leak
		// plan or subscription existence.
		if policy == nil || !policy.CanCollect(cmd.Caller) {
			return domain.ErrUnauthorized
		}

		sub, err := h.subRepo.FindActive(txCtx, cmd.Subscriber, cmd.PlanID)
		if err != nil {
			return err
		}
		plan, err := h.planRepo.FindByID(txCtx, cmd.PlanID)
		if err != nil {
			return err
		}

		if !sub.DueAt(h.now().UTC()) {
			return domain.ErrPaymentNotDue
		}
		if policy.IsPaused() {
			return domain.ErrEnginePaused
		}

		pullErr = h.token.TransferFrom(txCtx, cmd.Subscriber, h.custody, plan.Price())
		if pullErr != nil {
			// Immediate expiry, no engine-side retry. This accounting is the
			// intended consequence of the failed pull and must be committed.
			if err := sub.Expire(expiryReasonPullFailed); err != nil {
				return err
			}
			plan.ReleaseSubscriber()

			if err := h.subRepo.Save(txCtx, sub); err != nil {
				return err
			}
			if err := h.planRepo.Save(txCtx, plan); err != nil {
				return err
			}
			if err := stageEvents(txCtx, h.outboxRepo, cmd.Caller, sub, plan); err != nil {
				return err
			}

			result = &CollectPaymentResult{Expired: true}
			return nil
		}

		if err := sub.RecordPayment(plan.BillingPeriod(), plan.Price()); err != nil {
			return err
		}
		if err := h.subRepo.Save(txCtx, sub); err != nil {
			return err
		}
		if err := stageEvents(txCtx, h.outboxRepo, cmd.Caller, sub); err != nil {
			return err
		}

		result = &CollectPaymentResult{
			Amount:         plan.Price(),
			NextPaymentDue: sub.NextPaymentDue(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Expired {
		if h.cache != nil {
			h.cache.Set(ctx, cmd.Subscriber, cmd.PlanID, false)
		}
		return result, fmt.Errorf("%w: %v", domain.ErrPaymentFailed, pullErr)
	}

	return result, nil
}
