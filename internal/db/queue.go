package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// errorPreviewLimit caps the length of the error preview column. The full
// message is stored separately in error_message.
const errorPreviewLimit = 200

// QueueRepository handles enrichment queue database operations.
type QueueRepository struct {
	pool *pgxpool.Pool
}

// ClaimBatch atomically locks up to limit pending entries for a company and
// returns them. The select-and-lock runs as a single statement with
// FOR UPDATE SKIP LOCKED, so concurrent callers never claim the same entry.
// An empty result means no pending work and is not an error.
func (r *QueueRepository) ClaimBatch(ctx context.Context, companyID uuid.UUID, limit int) ([]QueueEntry, error) {
	query := `
		UPDATE enrichment_queue
		SET status = 'locked', updated_at = NOW()
		WHERE id IN (
			SELECT id FROM enrichment_queue
			WHERE company_id = $1 AND status = 'pending'
			ORDER BY priority DESC, updated_at ASC
			FOR UPDATE SKIP LOCKED
			LIMIT $2
		)
		RETURNING id, artist_id, company_id, priority, retries, attempts, status, updated_at
	`
	rows, err := r.pool.Query(ctx, query, companyID, limit)
	if err != nil {
		return nil, fmt.Errorf("claiming queue batch: %w", err)
	}
	defer rows.Close()

	var entries []QueueEntry
	for rows.Next() {
		var e QueueEntry
		if err := rows.Scan(
			&e.ID,
			&e.ArtistID,
			&e.CompanyID,
			&e.Priority,
			&e.Retries,
			&e.Attempts,
			&e.Status,
			&e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning queue entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading claimed batch: %w", err)
	}
	return entries, nil
}

// MarkDone transitions a locked entry to done.
func (r *QueueRepository) MarkDone(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE enrichment_queue
		SET status = 'done', error_message = NULL, error_preview = NULL, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("marking entry done: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkError transitions a locked entry to error, storing the full message
// plus a truncated preview.
func (r *QueueRepository) MarkError(ctx context.Context, id uuid.UUID, message string) error {
	query := `
		UPDATE enrichment_queue
		SET status = 'error', error_message = $2, error_preview = $3, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query, id, message, truncateError(message))
	if err != nil {
		return fmt.Errorf("marking entry error: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Enqueue inserts a pending entry for an artist. A pending or locked entry
// already covering the artist makes this a no-op, so repeated refresh
// requests do not pile up duplicate work.
func (r *QueueRepository) Enqueue(ctx context.Context, companyID, artistID uuid.UUID, priority string) (uuid.UUID, error) {
	if priority == "" {
		priority = "normal"
	}
	query := `
		INSERT INTO enrichment_queue (id, artist_id, company_id, priority, retries, attempts, status, updated_at)
		SELECT $1, $2, $3, $4, 0, 0, 'pending', NOW()
		WHERE NOT EXISTS (
			SELECT 1 FROM enrichment_queue
			WHERE artist_id = $2 AND company_id = $3 AND status IN ('pending', 'locked')
		)
		RETURNING id
	`
	id := uuid.New()
	rows, err := r.pool.Query(ctx, query, id, artistID, companyID, priority)
	if err != nil {
		return uuid.Nil, fmt.Errorf("enqueueing entry: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		// Entry already queued; report nothing inserted.
		return uuid.Nil, rows.Err()
	}
	if err := rows.Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("scanning enqueued id: %w", err)
	}
	return id, rows.Err()
}

// Counts returns per-status entry counts for a company.
func (r *QueueRepository) Counts(ctx context.Context, companyID uuid.UUID) (*StatusCounts, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'locked'),
			COUNT(*) FILTER (WHERE status = 'done'),
			COUNT(*) FILTER (WHERE status = 'error')
		FROM enrichment_queue
		WHERE company_id = $1
	`
	var counts StatusCounts
	err := r.pool.QueryRow(ctx, query, companyID).Scan(
		&counts.Pending,
		&counts.Locked,
		&counts.Done,
		&counts.Error,
	)
	if err != nil {
		return nil, fmt.Errorf("counting queue entries: %w", err)
	}
	return &counts, nil
}

// truncateError shortens a message to the preview column limit.
func truncateError(message string) string {
	if len(message) <= errorPreviewLimit {
		return message
	}
	return message[:errorPreviewLimit]
}
