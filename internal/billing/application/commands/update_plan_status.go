package commands

import (
	"context"

	"github.com/dorakingx/subscryption/internal/billing/domain"
	sharedApplication "github.com/dorakingx/subscryption/internal/shared/application"
	sharedDomain "github.com/dorakingx/subscryption/internal/shared/domain"
	"github.com/dorakingx/subscryption/internal/shared/infrastructure/outbox"
)

// UpdatePlanStatusCommand toggles a plan's visibility for new subscriptions.
// Existing subscribers on the plan are unaffected.
type UpdatePlanStatusCommand struct {
	Caller sharedDomain.Identity
	PlanID int64
	Active bool
}

// UpdatePlanStatusHandler handles the UpdatePlanStatusCommand.
type UpdatePlanStatusHandler struct {
	planRepo   domain.PlanRepository
	accessRepo domain.AccessPolicyRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewUpdatePlanStatusHandler creates a new UpdatePlanStatusHandler.
func NewUpdatePlanStatusHandler(
	planRepo domain.PlanRepository,
	accessRepo domain.AccessPolicyRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
) *UpdatePlanStatusHandler {
	return &UpdatePlanStatusHandler{
		planRepo:   planRepo,
		accessRepo: accessRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
	}
}

// Handle executes the UpdatePlanStatusCommand.
func (h *UpdatePlanStatusHandler) Handle(ctx context.Context, cmd UpdatePlanStatusCommand) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		policy, err := h.accessRepo.Load(txCtx)
		if err != nil {
			return err
		}
		if policy == nil || !policy.IsOwner(cmd.Caller) {
			return domain.ErrUnauthorized
		}

		plan, err := h.planRepo.FindByID(txCtx, cmd.PlanID)
		if err != nil {
			return err
		}

		plan.SetActive(cmd.Active)

		if err := h.planRepo.Save(txCtx, plan); err != nil {
			return err
		}

		return stageEvents(txCtx, h.outboxRepo, cmd.Caller, plan)
	})
}
