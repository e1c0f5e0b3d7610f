package domain

import (
	"strings"
	"time"

	sharedDomain "github.com/dorakingx/subscryption/internal/shared/domain"
)

// Plan represents a priced, periodic subscription offering with an optional
// subscriber cap. Plans are owned by the catalog and mutated only through
// owner-invoked operations.
type Plan struct {
	sharedDomain.BaseAggregateRoot
	planID             int64
	name               string
	price              int64
	billingPeriod      time.Duration
	maxSubscribers     int64
	currentSubscribers int64
	active             bool
}

// NewPlan creates a plan with the next catalog id. The price is denominated in
// the token's smallest unit and must be positive; decimal scaling is the
// deployment configuration's concern, never the engine's.
func NewPlan(planID int64, name string, price int64, billingPeriod time.Duration, maxSubscribers int64) (*Plan, error) {
	if price <= 0 {
		return nil, ErrInvalidPrice
	}
	if billingPeriod <= 0 {
		return nil, ErrInvalidPeriod
	}
	if maxSubscribers < 0 {
		maxSubscribers = 0
	}

	plan := &Plan{
		BaseAggregateRoot:  sharedDomain.NewBaseAggregateRoot(),
		planID:             planID,
		name:               strings.TrimSpace(name),
		price:              price,
		billingPeriod:      billingPeriod,
		maxSubscribers:     maxSubscribers,
		currentSubscribers: 0,
		active:             true,
	}

	plan.AddDomainEvent(NewPlanCreated(plan))

	return plan, nil
}

// Getters
func (p *Plan) PlanID() int64                { return p.planID }
func (p *Plan) Name() string                 { return p.name }
func (p *Plan) Price() int64                 { return p.price }
func (p *Plan) BillingPeriod() time.Duration { return p.billingPeriod }
func (p *Plan) MaxSubscribers() int64        { return p.maxSubscribers }
func (p *Plan) CurrentSubscribers() int64    { return p.currentSubscribers }
func (p *Plan) IsActive() bool               { return p.active }

// IsUnlimited reports whether the plan has no subscriber cap.
func (p *Plan) IsUnlimited() bool {
	return p.maxSubscribers == 0
}

// SetActive toggles visibility for new subscriptions only. Deactivation does
// not cancel or pause existing subscribers.
func (p *Plan) SetActive(active bool) {
	if p.active == active {
		return
	}
	p.active = active
	p.Touch()
	p.AddDomainEvent(NewPlanStatusUpdated(p))
}

// RegisterSubscriber accounts for a new subscriber, enforcing the cap.
func (p *Plan) RegisterSubscriber() error {
	if !p.IsUnlimited() && p.currentSubscribers >= p.maxSubscribers {
		return ErrCapacityExceeded
	}
	p.currentSubscribers++
	p.Touch()
	return nil
}

// ReleaseSubscriber accounts for a subscriber leaving via cancel or expiry.
func (p *Plan) ReleaseSubscriber() {
	if p.currentSubscribers > 0 {
		p.currentSubscribers--
		p.Touch()
	}
}

// RehydratePlan recreates a plan from persisted state without generating events.
func RehydratePlan(
	base sharedDomain.BaseEntity,
	planID int64,
	name string,
	price int64,
	billingPeriod time.Duration,
	maxSubscribers int64,
	currentSubscribers int64,
	active bool,
) *Plan {
	return &Plan{
		BaseAggregateRoot:  sharedDomain.RehydrateBaseAggregateRoot(base),
		planID:             planID,
		name:               name,
		price:              price,
		billingPeriod:      billingPeriod,
		maxSubscribers:     maxSubscribers,
		currentSubscribers: currentSubscribers,
		active:             active,
	}
}
