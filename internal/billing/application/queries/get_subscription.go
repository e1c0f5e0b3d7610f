package queries

import (
	"context"

	"github.com/dorakingx/subscryption/internal/billing/domain"
	sharedDomain "github.com/dorakingx/subscryption/internal/shared/domain"
)

// GetSubscriptionQuery fetches the most recent subscription record for a
// (subscriber, plan) pair, terminal or not.
type GetSubscriptionQuery struct {
	Subscriber sharedDomain.Identity
	PlanID     int64
}

// GetSubscriptionHandler handles the GetSubscriptionQuery.
type GetSubscriptionHandler struct {
	subRepo domain.SubscriptionRepository
}

// NewGetSubscriptionHandler creates a new GetSubscriptionHandler.
func NewGetSubscriptionHandler(subRepo domain.SubscriptionRepository) *GetSubscriptionHandler {
	return &GetSubscriptionHandler{subRepo: subRepo}
}

// Handle executes the GetSubscriptionQuery.
func (h *GetSubscriptionHandler) Handle(ctx context.Context, query GetSubscriptionQuery) (*domain.Subscription, error) {
	return h.subRepo.FindLatest(ctx, query.Subscriber, query.PlanID)
}
