package domain

import (
	"time"

	sharedDomain "github.com/dorakingx/subscryption/internal/shared/domain"
)

// SubscriptionStatus represents the lifecycle state of a subscription.
type SubscriptionStatus string

const (
	StatusActive    SubscriptionStatus = "active"
	StatusCancelled SubscriptionStatus = "cancelled"
	StatusExpired   SubscriptionStatus = "expired"
)

// IsTerminal reports whether no transition may leave this state.
func (s SubscriptionStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusExpired
}

// Subscription is a subscriber's enrollment in a plan. Records are never
// physically deleted; terminal records are retained for audit and history.
// At most one active record exists per (subscriber, plan) pair.
type Subscription struct {
	sharedDomain.BaseAggregateRoot
	subscriber     sharedDomain.Identity
	planID         int64
	status         SubscriptionStatus
	startedAt      time.Time
	lastPaymentAt  time.Time
	nextPaymentDue time.Time
}

// NewSubscription enrolls a subscriber in a plan. The first payment is taken
// at enrollment, so lastPaymentAt starts at now and the next charge falls one
// billing period later.
func NewSubscription(subscriber sharedDomain.Identity, plan *Plan, now time.Time) *Subscription {
	sub := &Subscription{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		subscriber:        subscriber,
		planID:            plan.PlanID(),
		status:            StatusActive,
		startedAt:         now,
		lastPaymentAt:     now,
		nextPaymentDue:    now.Add(plan.BillingPeriod()),
	}

	sub.AddDomainEvent(NewSubscribed(sub))

	return sub
}

// Getters
func (s *Subscription) Subscriber() sharedDomain.Identity { return s.subscriber }
func (s *Subscription) PlanID() int64                     { return s.planID }
func (s *Subscription) Status() SubscriptionStatus        { return s.status }
func (s *Subscription) StartedAt() time.Time              { return s.startedAt }
func (s *Subscription) LastPaymentAt() time.Time          { return s.lastPaymentAt }
func (s *Subscription) NextPaymentDue() time.Time         { return s.nextPaymentDue }

// IsActive reports whether the subscription is in its non-terminal state.
func (s *Subscription) IsActive() bool {
	return s.status == StatusActive
}

// DueAt reports whether a collection may run at the given instant. Collection
// can never be anticipated early.
func (s *Subscription) DueAt(now time.Time) bool {
	return !now.Before(s.nextPaymentDue)
}

// RecordPayment advances the schedule after a successful pull. The paid-at
// timestamp is the previously scheduled due time, not the clock reading, and
// the next due date steps additively from it, so late collections never drift
// the schedule.
func (s *Subscription) RecordPayment(period time.Duration, amount int64) error {
	if !s.IsActive() {
		return ErrNotSubscribed
	}
	s.lastPaymentAt = s.nextPaymentDue
	s.nextPaymentDue = s.nextPaymentDue.Add(period)
	s.Touch()
	s.AddDomainEvent(NewPaymentCollected(s, amount))
	return nil
}

// Cancel transitions the subscription to its cancelled terminal state.
// No prorated refund is given for the unused remainder of the period.
func (s *Subscription) Cancel() error {
	if !s.IsActive() {
		return ErrNotSubscribed
	}
	s.status = StatusCancelled
	s.Touch()
	s.AddDomainEvent(NewSubscriptionCancelled(s))
	return nil
}

// Expire transitions the subscription to its expired terminal state, recording
// why the engine gave up on it.
func (s *Subscription) Expire(reason string) error {
	if !s.IsActive() {
		return ErrNotSubscribed
	}
	s.status = StatusExpired
	s.Touch()
	s.AddDomainEvent(NewSubscriptionExpired(s, reason))
	return nil
}

// RehydrateSubscription recreates a subscription from persisted state without
// generating events.
func RehydrateSubscription(
	base sharedDomain.BaseEntity,
	subscriber sharedDomain.Identity,
	planID int64,
	status SubscriptionStatus,
	startedAt time.Time,
	lastPaymentAt time.Time,
	nextPaymentDue time.Time,
) *Subscription {
	return &Subscription{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(base),
		subscriber:        subscriber,
		planID:            planID,
		status:            status,
		startedAt:         startedAt,
		lastPaymentAt:     lastPaymentAt,
		nextPaymentDue:    nextPaymentDue,
	}
}
