package token

import (
	"context"
	"log/slog"

	sharedDomain "github.com/dorakingx/subscryption/internal/shared/domain"
)

// NoopGateway settles every transfer without moving funds. Used in
// development when no token service is configured.
type NoopGateway struct {
	logger *slog.Logger
}

// NewNoopGateway creates a gateway that approves everything.
func NewNoopGateway(logger *slog.Logger) *NoopGateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopGateway{logger: logger}
}

// TransferFrom logs the pull and reports success.
func (g *NoopGateway) TransferFrom(_ context.Context, from, to sharedDomain.Identity, amount int64) error {
	g.logger.Debug("noop token transfer",
		"from", from.String(),
		"to", to.String(),
		"amount", amount,
	)
	return nil
}

// Approve reports success.
func (g *NoopGateway) Approve(_ context.Context, spender sharedDomain.Identity, amount int64) error {
	g.logger.Debug("noop token approval",
		"spender", spender.String(),
		"amount", amount,
	)
	return nil
}

// BalanceOf reports a zero balance.
func (g *NoopGateway) BalanceOf(_ context.Context, _ sharedDomain.Identity) (int64, error) {
	return 0, nil
}
