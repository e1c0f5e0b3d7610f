package commands

import (
	"context"

	"github.com/dorakingx/subscryption/internal/billing/domain"
	sharedApplication "github.com/dorakingx/subscryption/internal/shared/application"
	sharedDomain "github.com/dorakingx/subscryption/internal/shared/domain"
	"github.com/dorakingx/subscryption/internal/shared/infrastructure/outbox"
)

// AuthorizePullerCommand sets or clears the puller flag for an identity.
type AuthorizePullerCommand struct {
	Caller   sharedDomain.Identity
	Identity sharedDomain.Identity
	Allowed  bool
}

// AuthorizePullerHandler handles the AuthorizePullerCommand.
type AuthorizePullerHandler struct {
	accessRepo domain.AccessPolicyRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewAuthorizePullerHandler creates a new AuthorizePullerHandler.
func NewAuthorizePullerHandler(
	accessRepo domain.AccessPolicyRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
) *AuthorizePullerHandler {
	return &AuthorizePullerHandler{
		accessRepo: accessRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
	}
}

// Handle executes the AuthorizePullerCommand.
func (h *AuthorizePullerHandler) Handle(ctx context.Context, cmd AuthorizePullerCommand) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		policy, err := h.accessRepo.Load(txCtx)
		if err != nil {
			return err
		}
		if policy == nil || !policy.IsOwner(cmd.Caller) {
			return domain.ErrUnauthorized
		}

		policy.SetPullerAuthorization(cmd.Identity, cmd.Allowed)

		if err := h.accessRepo.Save(txCtx, policy); err != nil {
			return err
		}

		return stageEvents(txCtx, h.outboxRepo, cmd.Caller, policy)
	})
}
