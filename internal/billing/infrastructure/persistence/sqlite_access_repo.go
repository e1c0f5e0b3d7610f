package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dorakingx/subscryption/internal/billing/domain"
	sharedDomain "github.com/dorakingx/subscryption/internal/shared/domain"
	"github.com/dorakingx/subscryption/internal/shared/infrastructure/persistence"
)

// SQLiteAccessPolicyRepository implements AccessPolicyRepository with SQLite.
type SQLiteAccessPolicyRepository struct {
	db *sql.DB
}

// NewSQLiteAccessPolicyRepository creates a new repository.
func NewSQLiteAccessPolicyRepository(db *sql.DB) *SQLiteAccessPolicyRepository {
	return &SQLiteAccessPolicyRepository{db: db}
}

// Load returns the policy, or nil when the engine has not been initialized.
func (r *SQLiteAccessPolicyRepository) Load(ctx context.Context) (*domain.AccessPolicy, error) {
	exec := persistence.SQLiteExec(ctx, r.db)

	var (
		id, owner            string
		paused               int
		createdAt, updatedAt string
	)
	err := exec.QueryRowContext(ctx, `
		SELECT id, owner, paused, created_at, updated_at
		FROM access_policies
		LIMIT 1`,
	).Scan(&id, &owner, &paused, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load access policy: %w", err)
	}

	rows, err := exec.QueryContext(ctx, `
		SELECT puller FROM access_policy_pullers WHERE policy_id = ?`,
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

	base, err := rehydrateBase(id, createdAt, updatedAt)
	if err != nil {
		return nil, err
	}

	return domain.RehydrateAccessPolicy(
		base,
		sharedDomain.NewIdentity(owner),
		paused != 0,
		pullers,
	), nil
}

// Save upserts the policy row and rewrites the puller set.
func (r *SQLiteAccessPolicyRepository) Save(ctx context.Context, policy *domain.AccessPolicy) error {
	exec := persistence.SQLiteExec(ctx, r.db)

	_, err := exec.ExecContext(ctx, `
		INSERT INTO access_policies (id, owner, paused, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			owner = excluded.owner,
			paused = excluded.paused,
			updated_at = excluded.updated_at`,
		policy.ID().String(), policy.Owner().String(), boolToInt(policy.IsPaused()),
		policy.CreatedAt().UTC().Format(timeLayout),
		policy.UpdatedAt().UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save access policy: %w", err)
	}

	if _, err := exec.ExecContext(ctx, `DELETE FROM access_policy_pullers WHERE policy_id = ?`, policy.ID().String()); err != nil {
		return fmt.Errorf("failed to clear pullers: %w", err)
	}
	for _, puller := range policy.Pullers() {
		if _, err := exec.ExecContext(ctx, `
			INSERT INTO access_policy_pullers (policy_id, puller) VALUES (?, ?)`,
			policy.ID().String(), puller.String(),
		); err != nil {
			return fmt.Errorf("failed to save puller: %w", err)
		}
	}

	return nil
}
