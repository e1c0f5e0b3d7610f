package domain

import (
	"context"

	sharedDomain "github.com/dorakingx/subscryption/internal/shared/domain"
)

// TokenGateway is the engine's only external dependency: the stablecoin-like
// token consumed through its transfer/allowance surface. Amounts are opaque
// integers in the token's smallest unit; the engine never assumes a decimal
// count.
type TokenGateway interface {
	// TransferFrom pulls amount from the subscriber into custody under a
	// previously granted allowance. A nil error means the transfer settled.
	TransferFrom(ctx context.Context, from, to sharedDomain.Identity, amount int64) error

	// Approve grants a spender an allowance on behalf of the engine.
	Approve(ctx context.Context, spender sharedDomain.Identity, amount int64) error

	// BalanceOf reports the token balance of an account.
	BalanceOf(ctx context.Context, id sharedDomain.Identity) (int64, error)
}
