package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dorakingx/subscryption/internal/billing/domain"
	sharedDomain "github.com/dorakingx/subscryption/internal/shared/domain"
	"github.com/dorakingx/subscryption/internal/shared/infrastructure/persistence"
)

// PostgresAccessPolicyRepository implements AccessPolicyRepository with
// PostgreSQL. The policy is a singleton row; pullers live in a child table.
type PostgresAccessPolicyRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAccessPolicyRepository creates a new repository.
func NewPostgresAccessPolicyRepository(pool *pgxpool.Pool) *PostgresAccessPolicyRepository {
	return &PostgresAccessPolicyRepository{pool: pool}
}

// Load returns the policy, or nil when the engine has not been initialized.
func (r *PostgresAccessPolicyRepository) Load(ctx context.Context) (*domain.AccessPolicy, error) {
	exec := persistence.Executor(ctx, r.pool)

	var (
		id                   uuid.UUID
		owner                string
		paused               bool
		createdAt, updatedAt time.Time
	)
	err := exec.QueryRow(ctx, `
		SELECT id, owner, paused, created_at, updated_at
		FROM access_policies
		LIMIT 1`,
	).Scan(&id, &owner, &paused, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load access policy: %w", err)
	}

	rows, err := exec.Query(ctx, `
		SELECT puller FROM access_policy_pullers WHERE policy_id = $1`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query pullers: %w", err)
	}
	defer rows.Close()

	var pullers []sharedDomain.Identity
	for rows.Next() {
		var puller string
		if err := rows.Scan(&puller); err != nil {
			return nil, fmt.Errorf("failed to scan puller: %w", err)
		}
		pullers = append(pullers, sharedDomain.NewIdentity(puller))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pullers: %w", err)
	}

	return domain.RehydrateAccessPolicy(
		sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		sharedDomain.NewIdentity(owner),
		paused,
		pullers,
	), nil
}

// Save upserts the policy row and rewrites the puller set.
func (r *PostgresAccessPolicyRepository) Save(ctx context.Context, policy *domain.AccessPolicy) error {
	exec := persistence.Executor(ctx, r.pool)

	_, err := exec.Exec(ctx, `
		INSERT INTO access_policies (id, owner, paused, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			owner = EXCLUDED.owner,
			paused = EXCLUDED.paused,
			updated_at = EXCLUDED.updated_at`,
		policy.ID(), policy.Owner().String(), policy.IsPaused(),
		policy.CreatedAt(), policy.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to save access policy: %w", err)
	}

	if _, err := exec.Exec(ctx, `DELETE FROM access_policy_pullers WHERE policy_id = $1`, policy.ID()); err != nil {
		return fmt.Errorf("failed to clear pullers: %w", err)
	}
	for _, puller := range policy.Pullers() {
		if _, err := exec.Exec(ctx, `
			INSERT INTO access_policy_pullers (policy_id, puller) VALUES ($1, $2)`,
			policy.ID(), puller.String(),
		); err != nil {
			return fmt.Errorf("failed to save puller: %w", err)
		}
	}

	return nil
}
