package domain

import (
	"sort"

	sharedDomain "github.com/dorakingx/subscryption/internal/shared/domain"
)

// AccessPolicy is the engine-wide authorization singleton: the owner identity,
// the emergency-stop flag and the set of accounts authorized to trigger
// recurring collection on behalf of subscribers.
type AccessPolicy struct {
	sharedDomain.BaseAggregateRoot
	owner   sharedDomain.Identity
	paused  bool
	pullers map[string]bool
}

// NewAccessPolicy creates the policy with its initial owner.
func NewAccessPolicy(owner sharedDomain.Identity) (*AccessPolicy, error) {
	if owner.IsZero() {
		return nil, ErrInvalidOwner
	}
	return &AccessPolicy{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		owner:             owner,
		pullers:           make(map[string]bool),
	}, nil
}

// Owner returns the current owner identity.
func (a *AccessPolicy) Owner() sharedDomain.Identity { return a.owner }

// IsPaused reports whether the emergency stop is engaged.
func (a *AccessPolicy) IsPaused() bool { return a.paused }

// IsOwner reports whether the identity is the owner.
func (a *AccessPolicy) IsOwner(id sharedDomain.Identity) bool {
	return !id.IsZero() && a.owner.Equals(id)
}

// IsAuthorizedPuller reports whether the identity holds the puller flag.
func (a *AccessPolicy) IsAuthorizedPuller(id sharedDomain.Identity) bool {
	return a.pullers[id.String()]
}

// CanCollect reports whether the identity may trigger payment collection.
func (a *AccessPolicy) CanCollect(id sharedDomain.Identity) bool {
	return a.IsOwner(id) || a.IsAuthorizedPuller(id)
}

// Pause engages the emergency stop. Subscribe and collect are blocked while
// paused; cancel and read-only queries are not.
func (a *AccessPolicy) Pause() {
	if a.paused {
		return
	}
	a.paused = true
	a.Touch()
	a.AddDomainEvent(NewEnginePaused(a))
}

// Unpause releases the emergency stop.
func (a *AccessPolicy) Unpause() {
	if !a.paused {
		return
	}
	a.paused = false
	a.Touch()
	a.AddDomainEvent(NewEngineUnpaused(a))
}

// SetPullerAuthorization sets or clears the puller flag for an identity.
// The operation is idempotent; an event is emitted only when the flag changes.
func (a *AccessPolicy) SetPullerAuthorization(id sharedDomain.Identity, allowed bool) {
	if id.IsZero() || a.pullers[id.String()] == allowed {
		return
	}
	if allowed {
		a.pullers[id.String()] = true
	} else {
		delete(a.pullers, id.String())
	}
	a.Touch()
	a.AddDomainEvent(NewPullerAuthorized(a, id, allowed))
}

// TransferOwnership hands the owner role to another identity.
func (a *AccessPolicy) TransferOwnership(newOwner sharedDomain.Identity) error {
	if newOwner.IsZero() {
		return ErrInvalidOwner
	}
	if a.owner.Equals(newOwner) {
		return nil
	}
	previous := a.owner
	a.owner = newOwner
	a.Touch()
	a.AddDomainEvent(NewOwnershipTransferred(a, previous, newOwner))
	return nil
}

// Pullers returns the authorized puller identities in stable order.
func (a *AccessPolicy) Pullers() []sharedDomain.Identity {
	keys := make([]string, 0, len(a.pullers))
	for k := range a.pullers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ids := make([]sharedDomain.Identity, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, sharedDomain.NewIdentity(k))
	}
	return ids
}

// RehydrateAccessPolicy recreates the policy from persisted state without
// generating events.
func RehydrateAccessPolicy(
	base sharedDomain.BaseEntity,
	owner sharedDomain.Identity,
	paused bool,
	pullers []sharedDomain.Identity,
) *AccessPolicy {
	set := make(map[string]bool, len(pullers))
	for _, p := range pullers {
		set[p.String()] = true
	}
	return &AccessPolicy{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(base),
		owner:             owner,
		paused:            paused,
		pullers:           set,
	}
}
