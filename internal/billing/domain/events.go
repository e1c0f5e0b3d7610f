package domain

import (
	"time"

	sharedDomain "github.com/dorakingx/subscryption/internal/shared/domain"
)

const (
	planAggregate         = "Plan"
	subscriptionAggregate = "Subscription"
	accessAggregate       = "AccessPolicy"
)

// PlanCreated is emitted when a plan is added to the catalog.
type PlanCreated struct {
	sharedDomain.BaseEvent
	PlanID               int64  `json:"plan_id"`
	Name                 string `json:"name"`
	Price                int64  `json:"price"`
	BillingPeriodSeconds int64  `json:"billing_period_seconds"`
	MaxSubscribers       int64  `json:"max_subscribers"`
}

// NewPlanCreated creates a PlanCreated event.
func NewPlanCreated(p *Plan) *PlanCreated {
	return &PlanCreated{
		BaseEvent:            sharedDomain.NewBaseEvent(p.ID(), planAggregate, "billing.plan.created"),
		PlanID:               p.PlanID(),
		Name:                 p.Name(),
		Price:                p.Price(),
		BillingPeriodSeconds: int64(p.BillingPeriod() / time.Second),
		MaxSubscribers:       p.MaxSubscribers(),
	}
}

// PlanStatusUpdated is emitted when a plan is activated or deactivated.
type PlanStatusUpdated struct {
	sharedDomain.BaseEvent
	PlanID int64 `json:"plan_id"`
	Active bool  `json:"active"`
}

// NewPlanStatusUpdated creates a PlanStatusUpdated event.
func NewPlanStatusUpdated(p *Plan) *PlanStatusUpdated {
	return &PlanStatusUpdated{
		BaseEvent: sharedDomain.NewBaseEvent(p.ID(), planAggregate, "billing.plan.status_updated"),
		PlanID:    p.PlanID(),
		Active:    p.IsActive(),
	}
}

// Subscribed is emitted when a subscriber enrolls in a plan.
type Subscribed struct {
	sharedDomain.BaseEvent
	Subscriber string    `json:"subscriber"`
	PlanID     int64     `json:"plan_id"`
	StartedAt  time.Time `json:"started_at"`
}

// NewSubscribed creates a Subscribed event.
func NewSubscribed(s *Subscription) *Subscribed {
	return &Subscribed{
		BaseEvent:  sharedDomain.NewBaseEvent(s.ID(), subscriptionAggregate, "billing.subscription.started"),
		Subscriber: s.Subscriber().String(),
		PlanID:     s.PlanID(),
		StartedAt:  s.StartedAt(),
	}
}

// PaymentCollected is emitted after a successful recurring pull.
type PaymentCollected struct {
	sharedDomain.BaseEvent
	Subscriber        string    `json:"subscriber"`
	PlanID            int64     `json:"plan_id"`
	Amount            int64     `json:"amount"`
	NewNextPaymentDue time.Time `json:"new_next_payment_due"`
}

// NewPaymentCollected creates a PaymentCollected event.
func NewPaymentCollected(s *Subscription, amount int64) *PaymentCollected {
	return &PaymentCollected{
		BaseEvent:         sharedDomain.NewBaseEvent(s.ID(), subscriptionAggregate, "billing.subscription.payment_collected"),
		Subscriber:        s.Subscriber().String(),
		PlanID:            s.PlanID(),
		Amount:            amount,
		NewNextPaymentDue: s.NextPaymentDue(),
	}
}

// SubscriptionCancelled is emitted when a subscriber exits voluntarily.
type SubscriptionCancelled struct {
	sharedDomain.BaseEvent
	Subscriber string `json:"subscriber"`
	PlanID     int64  `json:"plan_id"`
}

// NewSubscriptionCancelled creates a SubscriptionCancelled event.
func NewSubscriptionCancelled(s *Subscription) *SubscriptionCancelled {
	return &SubscriptionCancelled{
		BaseEvent:  sharedDomain.NewBaseEvent(s.ID(), subscriptionAggregate, "billing.subscription.cancelled"),
		Subscriber: s.Subscriber().String(),
		PlanID:     s.PlanID(),
	}
}

// SubscriptionExpired is emitted when the engine gives up on a subscription.
type SubscriptionExpired struct {
	sharedDomain.BaseEvent
	Subscriber string `json:"subscriber"`
	PlanID     int64  `json:"plan_id"`
	Reason     string `json:"reason"`
}

// NewSubscriptionExpired creates a SubscriptionExpired event.
func NewSubscriptionExpired(s *Subscription, reason string) *SubscriptionExpired {
	return &SubscriptionExpired{
		BaseEvent:  sharedDomain.NewBaseEvent(s.ID(), subscriptionAggregate, "billing.subscription.expired"),
		Subscriber: s.Subscriber().String(),
		PlanID:     s.PlanID(),
		Reason:     reason,
	}
}

// PullerAuthorized is emitted when a puller flag is set or cleared.
type PullerAuthorized struct {
	sharedDomain.BaseEvent
	Identity string `json:"identity"`
	Allowed  bool   `json:"allowed"`
}

// NewPullerAuthorized creates a PullerAuthorized event.
func NewPullerAuthorized(a *AccessPolicy, id sharedDomain.Identity, allowed bool) *PullerAuthorized {
	return &PullerAuthorized{
		BaseEvent: sharedDomain.NewBaseEvent(a.ID(), accessAggregate, "billing.access.puller_authorized"),
		Identity:  id.String(),
		Allowed:   allowed,
	}
}

// EnginePaused is emitted when the emergency stop engages.
type EnginePaused struct {
	sharedDomain.BaseEvent
}

// NewEnginePaused creates an EnginePaused event.
func NewEnginePaused(a *AccessPolicy) *EnginePaused {
	return &EnginePaused{
		BaseEvent: sharedDomain.NewBaseEvent(a.ID(), accessAggregate, "billing.access.paused"),
	}
}

// EngineUnpaused is emitted when the emergency stop releases.
type EngineUnpaused struct {
	sharedDomain.BaseEvent
}

// NewEngineUnpaused creates an EngineUnpaused event.
func NewEngineUnpaused(a *AccessPolicy) *EngineUnpaused {
	return &EngineUnpaused{
		BaseEvent: sharedDomain.NewBaseEvent(a.ID(), accessAggregate, "billing.access.unpaused"),
	}
}

// OwnershipTransferred is emitted when the owner role changes hands.
type OwnershipTransferred struct {
	sharedDomain.BaseEvent
	PreviousOwner string `json:"previous_owner"`
	NewOwner      string `json:"new_owner"`
}

// NewOwnershipTransferred creates an OwnershipTransferred event.
func NewOwnershipTransferred(a *AccessPolicy, previous, next sharedDomain.Identity) *OwnershipTransferred {
	return &OwnershipTransferred{
		BaseEvent:     sharedDomain.NewBaseEvent(a.ID(), accessAggregate, "billing.access.ownership_transferred"),
		PreviousOwner: previous.String(),
		NewOwner:      next.String(),
	}
}
