package queries

import (
	"context"

	sharedDomain "github.com/dorakingx/subscryption/internal/shared/domain"
)

// StatusCache is an optional read-model cache for the hot subscription-status
// check. Mutating handlers write through it after commit, so a populated entry
// is always current; a miss falls back to the ledger.
type StatusCache interface {
	// Get returns the cached active flag and whether an entry was present.
	Get(ctx context.Context, subscriber sharedDomain.Identity, planID int64) (active bool, ok bool)

	// Set records the active flag for a pair.
	Set(ctx context.Context, subscriber sharedDomain.Identity, planID int64, active bool)
}
