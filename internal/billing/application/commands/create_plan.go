package commands

import (
	"context"
	"time"

	"github.com/dorakingx/subscryption/internal/billing/domain"
	sharedApplication "github.com/dorakingx/subscryption/internal/shared/application"
	sharedDomain "github.com/dorakingx/subscryption/internal/shared/domain"
	"github.com/dorakingx/subscryption/internal/shared/infrastructure/outbox"
)

// CreatePlanCommand contains the data needed to add a plan to the catalog.
type CreatePlanCommand struct {
	Caller         sharedDomain.Identity
	Name           string
	Price          int64
	BillingPeriod  time.Duration
	MaxSubscribers int64
}

// CreatePlanResult contains the result of creating a plan.
type CreatePlanResult struct {
	PlanID int64
}

// CreatePlanHandler handles the CreatePlanCommand.
type CreatePlanHandler struct {
	planRepo   domain.PlanRepository
	accessRepo domain.AccessPolicyRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewCreatePlanHandler creates a new CreatePlanHandler.
func NewCreatePlanHandler(
	planRepo domain.PlanRepository,
	accessRepo domain.AccessPolicyRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
) *CreatePlanHandler {
	return &CreatePlanHandler{
		planRepo:   planRepo,
		accessRepo: accessRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
	}
}

// Handle executes the CreatePlanCommand. Only the owner may create plans; the
// authorization check runs before any other validation.
func (h *CreatePlanHandler) Handle(ctx context.Context, cmd CreatePlanCommand) (*CreatePlanResult, error) {
	var result *CreatePlanResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		policy, err := h.accessRepo.Load(txCtx)
		if err != nil {
			return err
		}
		if policy == nil || !policy.IsOwner(cmd.Caller) {
			return domain.ErrUnauthorized
		}

		planID, err := h.planRepo.NextID(txCtx)
		if err != nil {
			return err
		}

		plan, err := domain.NewPlan(planID, cmd.Name, cmd.Price, cmd.BillingPeriod, cmd.MaxSubscribers)
		if err != nil {
			return err
		}

		if err := h.planRepo.Save(txCtx, plan); err != nil {
			return err
		}

		if err := stageEvents(txCtx, h.outboxRepo, cmd.Caller, plan); err != nil {
			return err
		}

		result = &CreatePlanResult{PlanID: plan.PlanID()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
