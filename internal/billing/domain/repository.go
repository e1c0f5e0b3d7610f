package domain

import (
	"context"

	sharedDomain "github.com/dorakingx/subscryption/internal/shared/domain"
)

// PlanRepository defines access for plan persistence. Catalog ids are
// allocated monotonically and never reused.
type PlanRepository interface {
	// NextID allocates the next catalog id within the current transaction.
	NextID(ctx context.Context) (int64, error)

	Save(ctx context.Context, plan *Plan) error
	FindByID(ctx context.Context, planID int64) (*Plan, error)
	List(ctx context.Context) ([]*Plan, error)
	Count(ctx context.Context) (int64, error)
}

// SubscriptionRepository defines access for subscription persistence.
// Terminal records are retained; only one active record may exist per
// (subscriber, plan) pair.
type SubscriptionRepository interface {
	Save(ctx context.Context, sub *Subscription) error

	// FindActive returns the active record for the pair, or ErrNotSubscribed.
	FindActive(ctx context.Context, subscriber sharedDomain.Identity, planID int64) (*Subscription, error)

	// FindLatest returns the most recent record for the pair regardless of
	// state, or ErrNotSubscribed when the pair has no history.
	FindLatest(ctx context.Context, subscriber sharedDomain.Identity, planID int64) (*Subscription, error)
}

// AccessPolicyRepository persists the engine-wide authorization singleton.
type AccessPolicyRepository interface {
	// Load returns the policy, or nil when the engine has not been initialized.
	Load(ctx context.Context) (*AccessPolicy, error)
	Save(ctx context.Context, policy *AccessPolicy) error
}
