package commands

import (
	"context"

	sharedApplication "github.com/dorakingx/subscryption/internal/shared/application"
	sharedDomain "github.com/dorakingx/subscryption/internal/shared/domain"
	"github.com/dorakingx/subscryption/internal/shared/infrastructure/outbox"
)

// stageEvents drains the uncommitted events of the given aggregates into the
// transactional outbox, stamped with command-scoped metadata. Saving in the
// same unit of work as the state change keeps publication all-or-nothing.
func stageEvents(ctx context.Context, repo outbox.Repository, actor sharedDomain.Identity, roots ...sharedDomain.AggregateRoot) error {
	metadata := sharedApplication.NewEventMetadata(actor)

	var msgs []*outbox.Message
	for _, root := range roots {
		events := root.DomainEvents()
		sharedApplication.ApplyEventMetadata(events, metadata)

		for _, event := range events {
			msg, err := outbox.NewMessage(event)
			if err != nil {
				return err
			}
			msgs = append(msgs, msg)
		}
		root.ClearDomainEvents()
	}

	if len(msgs) == 0 {
		return nil
	}
	return repo.SaveBatch(ctx, msgs)
}
