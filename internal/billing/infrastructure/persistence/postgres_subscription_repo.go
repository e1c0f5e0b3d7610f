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

// PostgresSubscriptionRepository implements SubscriptionRepository with
// PostgreSQL. A partial unique index on (subscriber, plan_id) for active rows
// backs the one-live-record rule.
type PostgresSubscriptionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSubscriptionRepository creates a new repository.
func NewPostgresSubscriptionRepository(pool *pgxpool.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

// Save inserts or updates a subscription.
func (r *PostgresSubscriptionRepository) Save(ctx context.Context, sub *domain.Subscription) error {
	exec := persistence.Executor(ctx, r.pool)

	_, err := exec.Exec(ctx, `
		INSERT INTO subscriptions (
			id, subscriber, plan_id, status, started_at,
			last_payment_at, next_payment_due, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			last_payment_at = EXCLUDED.last_payment_at,
			next_payment_due = EXCLUDED.next_payment_due,
			updated_at = EXCLUDED.updated_at`,
		sub.ID(), sub.Subscriber().String(), sub.PlanID(), string(sub.Status()),
		sub.StartedAt(), sub.LastPaymentAt(), sub.NextPaymentDue(),
		sub.CreatedAt(), sub.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}
	return nil
}

// FindActive returns the active record for the pair, or ErrNotSubscribed.
func (r *PostgresSubscriptionRepository) FindActive(ctx context.Context, subscriber sharedDomain.Identity, planID int64) (*domain.Subscription, error) {
	exec := persistence.Executor(ctx, r.pool)

	row := exec.QueryRow(ctx, `
		SELECT id, subscriber, plan_id, status, started_at,
		       last_payment_at, next_payment_due, created_at, updated_at
		FROM subscriptions
		WHERE subscriber = $1 AND plan_id = $2 AND status = 'active'`,
		subscriber.String(), planID,
	)

	sub, err := scanPostgresSubscription(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotSubscribed
		}
		return nil, err
	}
	return sub, nil
}

// FindLatest returns the most recent record for the pair regardless of state.
func (r *PostgresSubscriptionRepository) FindLatest(ctx context.Context, subscriber sharedDomain.Identity, planID int64) (*domain.Subscription, error) {
	exec := persistence.Executor(ctx, r.pool)

	row := exec.QueryRow(ctx, `
		SELECT id, subscriber, plan_id, status, started_at,
		       last_payment_at, next_payment_due, created_at, updated_at
		FROM subscriptions
		WHERE subscriber = $1 AND plan_id = $2
		ORDER BY started_at DESC
		LIMIT 1`,
		subscriber.String(), planID,
	)

	sub, err := scanPostgresSubscription(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotSubscribed
		}
		return nil, err
	}
	return sub, nil
}

func scanPostgresSubscription(row pgx.Row) (*domain.Subscription, error) {
	var (
		id                   uuid.UUID
		subscriber, status   string
		planID               int64
		startedAt            time.Time
		lastPaymentAt        time.Time
		nextPaymentDue       time.Time
		createdAt, updatedAt time.Time
	)

	err := row.Scan(
		&id, &subscriber, &planID, &status, &startedAt,
		&lastPaymentAt, &nextPaymentDue, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	return domain.RehydrateSubscription(
		sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		sharedDomain.NewIdentity(subscriber),
		planID,
		domain.SubscriptionStatus(status),
		startedAt, lastPaymentAt, nextPaymentDue,
	), nil
}
