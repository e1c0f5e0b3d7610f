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

// PostgresPlanRepository implements PlanRepository with PostgreSQL.
type PostgresPlanRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPlanRepository creates a new repository.
func NewPostgresPlanRepository(pool *pgxpool.Pool) *PostgresPlanRepository {
	return &PostgresPlanRepository{pool: pool}
}

// NextID allocates the next catalog id. Plans are never deleted, so the
// maximum existing id plus one is monotonic and never reused.
func (r *PostgresPlanRepository) NextID(ctx context.Context) (int64, error) {
	exec := persistence.Executor(ctx, r.pool)

	var next int64
	err := exec.QueryRow(ctx, `SELECT COALESCE(MAX(plan_id), 0) + 1 FROM plans`).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate plan id: %w", err)
	}
	return next, nil
}

// Save inserts or updates a plan.
func (r *PostgresPlanRepository) Save(ctx context.Context, plan *domain.Plan) error {
	exec := persistence.Executor(ctx, r.pool)

	_, err := exec.Exec(ctx, `
		INSERT INTO plans (
			id, plan_id, name, price, billing_period_seconds,
			max_subscribers, current_subscribers, active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			price = EXCLUDED.price,
			billing_period_seconds = EXCLUDED.billing_period_seconds,
			max_subscribers = EXCLUDED.max_subscribers,
			current_subscribers = EXCLUDED.current_subscribers,
			active = EXCLUDED.active,
			updated_at = EXCLUDED.updated_at`,
		plan.ID(), plan.PlanID(), plan.Name(), plan.Price(),
		int64(plan.BillingPeriod()/time.Second),
		plan.MaxSubscribers(), plan.CurrentSubscribers(), plan.IsActive(),
		plan.CreatedAt(), plan.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}
	return nil
}

// FindByID returns the plan with the given catalog id.
func (r *PostgresPlanRepository) FindByID(ctx context.Context, planID int64) (*domain.Plan, error) {
	exec := persistence.Executor(ctx, r.pool)

	row := exec.QueryRow(ctx, `
		SELECT id, plan_id, name, price, billing_period_seconds,
		       max_subscribers, current_subscribers, active, created_at, updated_at
		FROM plans
		WHERE plan_id = $1`,
		planID,
	)

	plan, err := scanPostgresPlan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

// List returns all plans ordered by catalog id.
func (r *PostgresPlanRepository) List(ctx context.Context) ([]*domain.Plan, error) {
	exec := persistence.Executor(ctx, r.pool)

	rows, err := exec.Query(ctx, `
		SELECT id, plan_id, name, price, billing_period_seconds,
		       max_subscribers, current_subscribers, active, created_at, updated_at
		FROM plans
		ORDER BY plan_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query plans: %w", err)
	}
	defer rows.Close()

	var plans []*domain.Plan
	for rows.Next() {
		plan, err := scanPostgresPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate plans: %w", err)
	}
	return plans, nil
}

// Count returns the number of plans in the catalog.
func (r *PostgresPlanRepository) Count(ctx context.Context) (int64, error) {
	exec := persistence.Executor(ctx, r.pool)

	var count int64
	if err := exec.QueryRow(ctx, `SELECT COUNT(*) FROM plans`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count plans: %w", err)
	}
	return count, nil
}

func scanPostgresPlan(row pgx.Row) (*domain.Plan, error) {
	var (
		id                   uuid.UUID
		planID, price        int64
		name                 string
		periodSeconds        int64
		maxSubs, currentSubs int64
		active               bool
		createdAt, updatedAt time.Time
	)

	err := row.Scan(
		&id, &planID, &name, &price, &periodSeconds,
		&maxSubs, &currentSubs, &active, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	return domain.RehydratePlan(
		sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		planID, name, price,
		time.Duration(periodSeconds)*time.Second,
		maxSubs, currentSubs, active,
	), nil
}
