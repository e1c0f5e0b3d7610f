package commands

import (
	"context"

	"github.com/dorakingx/subscryption/internal/billing/domain"
	sharedApplication "github.com/dorakingx/subscryption/internal/shared/application"
	sharedDomain "github.com/dorakingx/subscryption/internal/shared/domain"
	"github.com/dorakingx/subscryption/internal/shared/infrastructure/outbox"
)

// SetPausedCommand engages or releases the emergency stop. While paused,
// subscribe and collect are blocked; cancel and queries are not.
type SetPausedCommand struct {
	Caller sharedDomain.Identity
	Paused bool
}

// SetPausedHandler handles the SetPausedCommand.
type SetPausedHandler struct {
	accessRepo domain.AccessPolicyRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewSetPausedHandler creates a new SetPausedHandler.
func NewSetPausedHandler(
	accessRepo domain.AccessPolicyRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
) *SetPausedHandler {
	return &SetPausedHandler{
		accessRepo: accessRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
	}
}

// Handle executes the SetPausedCommand.
func (h *SetPausedHandler) Handle(ctx context.Context, cmd SetPausedCommand) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		policy, err := h.accessRepo.Load(txCtx)
		if err != nil {
			return err
		}
		if policy == nil || !policy.IsOwner(cmd.Caller) {
			return domain.ErrUnauthorized
		}

		if cmd.Paused {
			policy.Pause()
		} else {
			policy.Unpause()
		}

		if err := h.accessRepo.Save(txCtx, policy); err != nil {
			return err
		}

		return stageEvents(txCtx, h.outboxRepo, cmd.Caller, policy)
	})
}
