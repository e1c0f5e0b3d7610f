package queries

import (
	"context"
	"errors"

	"github.com/dorakingx/subscryption/internal/billing/domain"
	sharedDomain "github.com/dorakingx/subscryption/internal/shared/domain"
)

// IsSubscribedQuery checks whether an active record exists for the pair.
// A lapsed due date does not affect the answer; lapse is surfaced only when
// collection actually runs.
type IsSubscribedQuery struct {
	Subscriber sharedDomain.Identity
	PlanID     int64
}

// IsSubscribedHandler handles the IsSubscribedQuery, reading through the
// optional status cache.
type IsSubscribedHandler struct {
	subRepo domain.SubscriptionRepository
	cache   StatusCache
}

// NewIsSubscribedHandler creates a new IsSubscribedHandler. The cache is
// optional.
func NewIsSubscribedHandler(subRepo domain.SubscriptionRepository, cache StatusCache) *IsSubscribedHandler {
	return &IsSubscribedHandler{subRepo: subRepo, cache: cache}
}

// Handle executes the IsSubscribedQuery.
func (h *IsSubscribedHandler) Handle(ctx context.Context, query IsSubscribedQuery) (bool, error) {
	if h.cache != nil {
		if active, ok := h.cache.Get(ctx, query.Subscriber, query.PlanID); ok {
			return active, nil
		}
	}

	active := true
	if _, err := h.subRepo.FindActive(ctx, query.Subscriber, query.PlanID); err != nil {
		if !errors.Is(err, domain.ErrNotSubscribed) {
			return false, err
		}
		active = false
	}

	if h.cache != nil {
		h.cache.Set(ctx, query.Subscriber, query.PlanID, active)
	}

	return active, nil
}
