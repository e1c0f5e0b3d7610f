package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dorakingx/subscryption/internal/billing/domain"
	sharedDomain "github.com/dorakingx/subscryption/internal/shared/domain"
	"github.com/dorakingx/subscryption/internal/shared/infrastructure/persistence"
)

const timeLayout = time.RFC3339Nano

// SQLitePlanRepository implements PlanRepository with SQLite.
type SQLitePlanRepository struct {
	db *sql.DB
}

// NewSQLitePlanRepository creates a new repository.
func NewSQLitePlanRepository(db *sql.DB) *SQLitePlanRepository {
	return &SQLitePlanRepository{db: db}
}

// NextID allocates the next catalog id. Plans are never deleted, so the
// maximum existing id plus one is monotonic and never reused.
func (r *SQLitePlanRepository) NextID(ctx context.Context) (int64, error) {
	exec := persistence.SQLiteExec(ctx, r.db)

	var next int64
	err := exec.QueryRowContext(ctx, `SELECT COALESCE(MAX(plan_id), 0) + 1 FROM plans`).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate plan id: %w", err)
	}
	return next, nil
}

// Save inserts or updates a plan.
func (r *SQLitePlanRepository) Save(ctx context.Context, plan *domain.Plan) error {
	exec := persistence.SQLiteExec(ctx, r.db)

	_, err := exec.ExecContext(ctx, `
		INSERT INTO plans (
			id, plan_id, name, price, billing_period_seconds,
			max_subscribers, current_subscribers, active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			price = excluded.price,
			billing_period_seconds = excluded.billing_period_seconds,
			max_subscribers = excluded.max_subscribers,
			current_subscribers = excluded.current_subscribers,
			active = excluded.active,
			updated_at = excluded.updated_at`,
		plan.ID().String(), plan.PlanID(), plan.Name(), plan.Price(),
		int64(plan.BillingPeriod()/time.Second),
		plan.MaxSubscribers(), plan.CurrentSubscribers(), boolToInt(plan.IsActive()),
		plan.CreatedAt().UTC().Format(timeLayout), plan.UpdatedAt().UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}
	return nil
}

// FindByID returns the plan with the given catalog id.
func (r *SQLitePlanRepository) FindByID(ctx context.Context, planID int64) (*domain.Plan, error) {
	exec := persistence.SQLiteExec(ctx, r.db)

	row := exec.QueryRowContext(ctx, `
		SELECT id, plan_id, name, price, billing_period_seconds,
		       max_subscribers, current_subscribers, active, created_at, updated_at
		FROM plans
		WHERE plan_id = ?`,
		planID,
	)

	plan, err := scanSQLitePlan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

// List returns all plans ordered by catalog id.
func (r *SQLitePlanRepository) List(ctx context.Context) ([]*domain.Plan, error) {
	exec := persistence.SQLiteExec(ctx, r.db)

	rows, err := exec.QueryContext(ctx, `
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
		plan, err := scanSQLitePlan(rows)
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
func (r *SQLitePlanRepository) Count(ctx context.Context) (int64, error) {
	exec := persistence.SQLiteExec(ctx, r.db)

	var count int64
	if err := exec.QueryRowContext(ctx, `SELECT COUNT(*) FROM plans`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count plans: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLitePlan(row rowScanner) (*domain.Plan, error) {
	var (
		id                   string
		planID, price        int64
		name                 string
		periodSeconds        int64
		maxSubs, currentSubs int64
		active               int
		createdAt, updatedAt string
	)

	err := row.Scan(
		&id, &planID, &name, &price, &periodSeconds,
		&maxSubs, &currentSubs, &active, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	base, err := rehydrateBase(id, createdAt, updatedAt)
	if err != nil {
		return nil, err
	}

	return domain.RehydratePlan(
		base, planID, name, price,
		time.Duration(periodSeconds)*time.Second,
		maxSubs, currentSubs, active != 0,
	), nil
}

func rehydrateBase(id, createdAt, updatedAt string) (sharedDomain.BaseEntity, error) {
	parsedID, err := uuid.Parse(id)
	if err != nil {
		return sharedDomain.BaseEntity{}, fmt.Errorf("failed to parse id %q: %w", id, err)
	}
	created, err := parseStoredTime(createdAt)
	if err != nil {
		return sharedDomain.BaseEntity{}, err
	}
	updated, err := parseStoredTime(updatedAt)
	if err != nil {
		return sharedDomain.BaseEntity{}, err
	}
	return sharedDomain.RehydrateBaseEntity(parsedID, created, updated), nil
}

func parseStoredTime(value string) (time.Time, error) {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", value, err)
	}
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
