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

// SQLiteSubscriptionRepository implements SubscriptionRepository with SQLite.
type SQLiteSubscriptionRepository struct {
	db *sql.DB
}

// NewSQLiteSubscriptionRepository creates a new repository.
func NewSQLiteSubscriptionRepository(db *sql.DB) *SQLiteSubscriptionRepository {
	return &SQLiteSubscriptionRepository{db: db}
}

// Save inserts or updates a subscription.
func (r *SQLiteSubscriptionRepository) Save(ctx context.Context, sub *domain.Subscription) error {
	exec := persistence.SQLiteExec(ctx, r.db)

	_, err := exec.ExecContext(ctx, `
		INSERT INTO subscriptions (
			id, subscriber, plan_id, status, started_at,
			last_payment_at, next_payment_due, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			status = excluded.status,
			last_payment_at = excluded.last_payment_at,
			next_payment_due = excluded.next_payment_due,
			updated_at = excluded.updated_at`,
		sub.ID().String(), sub.Subscriber().String(), sub.PlanID(), string(sub.Status()),
		sub.StartedAt().UTC().Format(timeLayout),
		sub.LastPaymentAt().UTC().Format(timeLayout),
		sub.NextPaymentDue().UTC().Format(timeLayout),
		sub.CreatedAt().UTC().Format(timeLayout),
		sub.UpdatedAt().UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}
	return nil
}

// FindActive returns the active record for the pair, or ErrNotSubscribed.
func (r *SQLiteSubscriptionRepository) FindActive(ctx context.Context, subscriber sharedDomain.Identity, planID int64) (*domain.Subscription, error) {
	exec := persistence.SQLiteExec(ctx, r.db)

	row := exec.QueryRowContext(ctx, `
		SELECT id, subscriber, plan_id, status, started_at,
		       last_payment_at, next_payment_due, created_at, updated_at
		FROM subscriptions
		WHERE subscriber = ? AND plan_id = ? AND status = 'active'`,
		subscriber.String(), planID,
	)

	sub, err := scanSQLiteSubscription(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotSubscribed
		}
		return nil, err
	}
	return sub, nil
}

// FindLatest returns the most recent record for the pair regardless of state.
func (r *SQLiteSubscriptionRepository) FindLatest(ctx context.Context, subscriber sharedDomain.Identity, planID int64) (*domain.Subscription, error) {
	exec := persistence.SQLiteExec(ctx, r.db)

	row := exec.QueryRowContext(ctx, `
		SELECT id, subscriber, plan_id, status, started_at,
		       last_payment_at, next_payment_due, created_at, updated_at
		FROM subscriptions
		WHERE subscriber = ? AND plan_id = ?
		ORDER BY started_at DESC
		LIMIT 1`,
		subscriber.String(), planID,
	)

	sub, err := scanSQLiteSubscription(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotSubscribed
		}
		return nil, err
	}
	return sub, nil
}

func scanSQLiteSubscription(row rowScanner) (*domain.Subscription, error) {
	var (
		id, subscriber, status   string
		planID                   int64
		startedAt, lastPaymentAt string
		nextPaymentDue           string
		createdAt, updatedAt     string
	)

	err := row.Scan(
		&id, &subscriber, &planID, &status, &startedAt,
		&lastPaymentAt, &nextPaymentDue, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	base, err := rehydrateBase(id, createdAt, updatedAt)
	if err != nil {
		return nil, err
	}

	started, err := parseStoredTime(startedAt)
	if err != nil {
		return nil, err
	}
	lastPayment, err := parseStoredTime(lastPaymentAt)
	if err != nil {
		return nil, err
	}
	nextDue, err := parseStoredTime(nextPaymentDue)
	if err != nil {
		return nil, err
	}

	return domain.RehydrateSubscription(
		base,
		sharedDomain.NewIdentity(subscriber),
		planID,
		domain.SubscriptionStatus(status),
		started, lastPayment, nextDue,
	), nil
}
