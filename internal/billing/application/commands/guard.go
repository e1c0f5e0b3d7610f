package commands

import (
	"fmt"
	"sync"

	sharedDomain "github.com/dorakingx/subscryption/internal/shared/domain"
)

// Guard serializes mutating operations per (subscriber, plan) key. The token
// gateway call is the engine's only external interaction; holding the key for
// the whole operation means that call can never re-enter a mutating operation
// for the same subscription mid-flight.
type Guard struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// NewGuard creates an empty guard.
func NewGuard() *Guard {
	return &Guard{locks: make(map[string]*entry)}
}

// Lock acquires the key and returns its release function.
func (g *Guard) Lock(subscriber sharedDomain.Identity, planID int64) func() {
	key := fmt.Sprintf("%s/%d", subscriber.String(), planID)

	g.mu.Lock()
	e, ok := g.locks[key]
	if !ok {
		e = &entry{}
		g.locks[key] = e
	}
	e.refs++
	g.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		g.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(g.locks, key)
		}
		g.mu.Unlock()
	}
}
