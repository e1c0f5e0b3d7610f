package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dorakingx/subscryption/internal/shared/infrastructure/persistence"
)

const timeLayout = time.RFC3339Nano

// SQLiteRepository is a SQLite implementation of the outbox Repository.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLiteRepository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Save stores a new outbox message.
func (r *SQLiteRepository) Save(ctx context.Context, msg *Message) error {
	exec := persistence.SQLiteExec(ctx, r.db)

	result, err := exec.ExecContext(ctx, `
		INSERT INTO outbox (event_id, aggregate_type, aggregate_id, routing_key, payload, metadata, created_at, retry_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0)`,
		msg.EventID.String(), msg.AggregateType, msg.AggregateID.String(),
		msg.RoutingKey, string(msg.Payload), string(msg.Metadata),
		msg.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save outbox message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get outbox message id: %w", err)
	}
	msg.ID = id

	return nil
}

// SaveBatch stores multiple outbox messages.
func (r *SQLiteRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	for _, msg := range msgs {
		if err := r.Save(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

// GetUnpublished retrieves unpublished messages due for a publish attempt.
func (r *SQLiteRepository) GetUnpublished(ctx context.Context, limit int) ([]*Message, error) {
	exec := persistence.SQLiteExec(ctx, r.db)

	now := time.Now().UTC().Format(timeLayout)
	rows, err := exec.QueryContext(ctx, `
		SELECT id, event_id, aggregate_type, aggregate_id, routing_key, payload, metadata,
		       created_at, published_at, next_retry_at, retry_count, last_error
		FROM outbox
		WHERE published_at IS NULL
		  AND (next_retry_at IS NULL OR next_retry_at <= ?)
		ORDER BY created_at
		LIMIT ?`,
		now, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query unpublished messages: %w", err)
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		msg, err := scanSQLiteMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate outbox messages: %w", err)
	}

	return messages, nil
}

// MarkPublished marks a message as successfully published.
func (r *SQLiteRepository) MarkPublished(ctx context.Context, id int64) error {
	exec := persistence.SQLiteExec(ctx, r.db)

	_, err := exec.ExecContext(ctx, `
		UPDATE outbox SET published_at = ?, last_error = NULL
		WHERE id = ?`,
		time.Now().UTC().Format(timeLayout), id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark message as published: %w", err)
	}
	return nil
}

// MarkFailed records a publish failure and schedules the next attempt.
func (r *SQLiteRepository) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	exec := persistence.SQLiteExec(ctx, r.db)

	_, err := exec.ExecContext(ctx, `
		UPDATE outbox SET retry_count = retry_count + 1, last_error = ?, next_retry_at = ?
		WHERE id = ?`,
		errMsg, nextRetryAt.UTC().Format(timeLayout), id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark message as failed: %w", err)
	}
	return nil
}

// DeleteOld removes published messages older than the retention period.
func (r *SQLiteRepository) DeleteOld(ctx context.Context, olderThanDays int) (int64, error) {
	exec := persistence.SQLiteExec(ctx, r.db)

	cutoff := time.Now().UTC().AddDate(0, 0, -olderThanDays).Format(timeLayout)
	result, err := exec.ExecContext(ctx, `
		DELETE FROM outbox
		WHERE published_at IS NOT NULL
		  AND published_at < ?`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old messages: %w", err)
	}
	return result.RowsAffected()
}

func scanSQLiteMessage(rows *sql.Rows) (*Message, error) {
	var (
		msg                  Message
		eventID, aggregateID string
		payload, metadata    string
		createdAt            string
		publishedAt, retryAt sql.NullString
		lastError            sql.NullString
	)

	err := rows.Scan(
		&msg.ID, &eventID, &msg.AggregateType, &aggregateID,
		&msg.RoutingKey, &payload, &metadata,
		&createdAt, &publishedAt, &retryAt,
		&msg.RetryCount, &lastError,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan outbox message: %w", err)
	}

	if msg.EventID, err = parseUUID(eventID); err != nil {
		return nil, err
	}
	if msg.AggregateID, err = parseUUID(aggregateID); err != nil {
		return nil, err
	}
	msg.Payload = []byte(payload)
	msg.Metadata = []byte(metadata)

	if msg.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if publishedAt.Valid {
		t, err := parseTime(publishedAt.String)
		if err != nil {
			return nil, err
		}
		msg.PublishedAt = &t
	}
	if retryAt.Valid {
		t, err := parseTime(retryAt.String)
		if err != nil {
			return nil, err
		}
		msg.NextRetryAt = &t
	}
	if lastError.Valid {
		msg.LastError = &lastError.String
	}

	return &msg, nil
}

func parseUUID(value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse uuid %q: %w", value, err)
	}
	return id, nil
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", value, err)
	}
	return t, nil
}
