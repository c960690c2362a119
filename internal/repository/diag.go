package repository

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/apiwatch/apiwatch/internal/diag"
)

// Append inserts a diagnostic event. Implements diag.Sink.
// Events are append-only; there is no update or delete path.
func (r *Repository) Append(ctx context.Context, event *diag.Event) error {
	query := `
		INSERT INTO diagnostic_events (id, step, request, before_state, after_state, response, errors, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		event.ID,
		event.Step,
		event.Request,
		event.Before,
		event.After,
		event.Response,
		pq.Array(event.Errors),
		event.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to append diagnostic event: %w", err)
	}

	return nil
}
