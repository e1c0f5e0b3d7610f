package commands

import (
	"context"

	"github.com/dorakingx/subscryption/internal/billing/domain"
	sharedApplication "github.com/dorakingx/subscryption/internal/shared/application"
	sharedDomain "github.com/dorakingx/subscryption/internal/shared/domain"
	"github.com/dorakingx/subscryption/internal/shared/infrastructure/outbox"
)

// TransferOwnershipCommand hands the owner role to another identity.
type TransferOwnershipCommand struct {
	Caller   sharedDomain.Identity
	NewOwner sharedDomain.Identity
}

// TransferOwnershipHandler handles the TransferOwnershipCommand.
type TransferOwnershipHandler struct {
	accessRepo domain.AccessPolicyRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewTransferOwnershipHandler creates a new TransferOwnershipHandler.
func NewTransferOwnershipHandler(
	accessRepo domain.AccessPolicyRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
) *TransferOwnershipHandler {
	return &TransferOwnershipHandler{
		accessRepo: accessRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
	}
}

// Handle executes the TransferOwnershipCommand.
func (h *TransferOwnershipHandler) Handle(ctx context.Context, cmd TransferOwnershipCommand) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		policy, err := h.accessRepo.Load(txCtx)
		if err != nil {
			return err
		}
		if policy == nil || !policy.IsOwner(cmd.Caller) {
			return domain.ErrUnauthorized
		}

		if err := policy.TransferOwnership(cmd.NewOwner); err != nil {
			return err
		}

		if err := h.accessRepo.Save(txCtx, policy); err != nil {
			return err
		}

		return stageEvents(txCtx, h.outboxRepo, cmd.Caller, policy)
	})
}
