package store

import (
	"context"
	"fmt"
	"time"

	"glowbook/internal/models"
)

const queueColumns = `id, entity_type, entity_id, operation, payload, status, retry_count,
        last_error, created_at, scheduled_at, processed_at`

// EnqueueItem appends a new queue item.
func (s *Store) EnqueueItem(ctx context.Context, item *models.SyncQueueItem) error {
	query := `INSERT INTO sync_queue (entity_type, entity_id, operation, payload, status, retry_count, last_error, created_at, scheduled_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	if item.Status == "" {
		item.Status = models.ItemPending
	}
	if item.ScheduledAt.IsZero() {
		item.ScheduledAt = now
	}

	result, err := s.db.ExecContext(ctx, query,
		item.EntityType,
		item.EntityID,
		item.Operation,
		item.Payload,
		item.Status,
		item.RetryCount,
		item.LastError,
		now,
		item.ScheduledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue sync item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	item.ID = id
	item.CreatedAt = now

	return nil
}

// GetPendingItems returns the due queue snapshot: items still pending or
// scheduled for retry whose scheduled_at has passed, oldest eligible first.
func (s *Store) GetPendingItems(ctx context.Context, now time.Time, limit int) ([]models.SyncQueueItem, error) {
	query := `SELECT ` + queueColumns + `
              FROM sync_queue
              WHERE status IN ('pending', 'retry') AND scheduled_at <= ?
              ORDER BY scheduled_at ASC, id ASC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending sync items: %w", err)
	}
	defer rows.Close()

	var items []models.SyncQueueItem
	for rows.Next() {
		var it models.SyncQueueItem
		err := rows.Scan(
			&it.ID, &it.EntityType, &it.EntityID, &it.Operation, &it.Payload,
			&it.Status, &it.RetryCount, &it.LastError, &it.CreatedAt, &it.ScheduledAt, &it.ProcessedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// MarkItemRetry reschedules a failed attempt: bumps retry_count, records the
// error and pushes scheduled_at into the future.
func (s *Store) MarkItemRetry(ctx context.Context, id int64, errMsg string, nextAt time.Time) error {
	query := `UPDATE sync_queue SET status = 'retry', last_error = ?, scheduled_at = ?, retry_count = retry_count + 1 WHERE id = ?`
	_, err := s.db.ExecContext(ctx, query, errMsg, nextAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark sync item for retry: %w", err)
	}
	return nil
}

// MarkItemFailed parks an item permanently after its retry budget is spent.
// The row stays around for observability instead of being silently dropped.
func (s *Store) MarkItemFailed(ctx context.Context, id int64, errMsg string) error {
	now := time.Now()
	query := `UPDATE sync_queue SET status = 'failed', last_error = ?, retry_count = retry_count + 1, processed_at = ? WHERE id = ?`
	_, err := s.db.ExecContext(ctx, query, errMsg, now, id)
	if err != nil {
		return fmt.Errorf("failed to mark sync item failed: %w", err)
	}
	return nil
}

// RemoveItem deletes a queue item after a successful sync.
func (s *Store) RemoveItem(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sync_queue WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to remove sync item: %w", err)
	}
	return nil
}

// CountPending returns the number of items still waiting to be replayed.
func (s *Store) CountPending(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sync_queue WHERE status IN ('pending', 'retry')`).Scan(&n)
	return n, err
}

// GetFailedItems returns permanently-failed items, newest first.
func (s *Store) GetFailedItems(ctx context.Context) ([]models.SyncQueueItem, error) {
	query := `SELECT ` + queueColumns + ` FROM sync_queue WHERE status = 'failed' ORDER BY processed_at DESC, id DESC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get failed sync items: %w", err)
	}
	defer rows.Close()

	var items []models.SyncQueueItem
	for rows.Next() {
		var it models.SyncQueueItem
		err := rows.Scan(
			&it.ID, &it.EntityType, &it.EntityID, &it.Operation, &it.Payload,
			&it.Status, &it.RetryCount, &it.LastError, &it.CreatedAt, &it.ScheduledAt, &it.ProcessedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// CountFailed returns the number of permanently-failed items.
func (s *Store) CountFailed(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sync_queue WHERE status = 'failed'`).Scan(&n)
	return n, err
}

// ClearFailed drops all permanently-failed items.
func (s *Store) ClearFailed(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sync_queue WHERE status = 'failed'`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear failed sync items: %w", err)
	}
	return res.RowsAffected()
}
