package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/apiwatch/apiwatch/internal/model"
)

// Common errors for alert repository operations.
var (
	// ErrNoRowsUpdated is returned when an ownership-scoped update matched
	// nothing. The single filtered statement cannot tell "wrong id" from
	// "wrong owner", so callers treat both as a generic store failure.
	ErrNoRowsUpdated = errors.New("no matching alert for id and owner")

	// ErrNoFieldsToUpdate is returned for an empty update payload.
	ErrNoFieldsToUpdate = errors.New("no fields to update")

	// ErrUnknownAlertField is returned when the payload names a column
	// outside the mutable allowlist.
	ErrUnknownAlertField = errors.New("unknown alert field")
)

// mutableAlertColumns is the allowlist of columns a PATCH may touch.
var mutableAlertColumns = map[string]bool{
	"status":       true,
	"severity":     true,
	"message":      true,
	"acknowledged": true,
}

const alertColumns = `id, user_id, api_id, status, severity, message, acknowledged, created_at, updated_at`

// UpdateAlert applies a partial update to an alert owned by userID.
// The update filters by both id and user_id in a single statement so
// ownership is enforced atomically with the mutation.
func (r *Repository) UpdateAlert(ctx context.Context, userID, alertID string, fields map[string]any) (*model.Alert, error) {
	if len(fields) == 0 {
		return nil, ErrNoFieldsToUpdate
	}

	// Deterministic column order for stable statements.
	columns := make([]string, 0, len(fields))
	for col := range fields {
		if !mutableAlertColumns[col] {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAlertField, col)
		}
		columns = append(columns, col)
	}
	sort.Strings(columns)

	setClauses := make([]string, 0, len(columns)+1)
	args := make([]any, 0, len(columns)+2)
	for _, col := range columns {
		args = append(args, fields[col])
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	setClauses = append(setClauses, "updated_at = now()")

	args = append(args, alertID)
	idPos := len(args)
	args = append(args, userID)
	ownerPos := len(args)

	query := fmt.Sprintf(`
		UPDATE alerts
		SET %s
		WHERE id = $%d AND user_id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), idPos, ownerPos, alertColumns)

	var alert model.Alert
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&alert.ID,
		&alert.UserID,
		&alert.APIID,
		&alert.Status,
		&alert.Severity,
		&alert.Message,
		&alert.Acknowledged,
		&alert.CreatedAt,
		&alert.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoRowsUpdated
		}
		return nil, fmt.Errorf("failed to update alert: %w", err)
	}

	return &alert, nil
}

// GetAlert retrieves an alert scoped to its owner.
func (r *Repository) GetAlert(ctx context.Context, userID, alertID string) (*model.Alert, error) {
	query := `
		SELECT ` + alertColumns + `
		FROM alerts
		WHERE id = $1 AND user_id = $2
	`

	var alert model.Alert
	err := r.pool.QueryRow(ctx, query, alertID, userID).Scan(
		&alert.ID,
		&alert.UserID,
		&alert.APIID,
		&alert.Status,
		&alert.Severity,
		&alert.Message,
		&alert.Acknowledged,
		&alert.CreatedAt,
		&alert.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoRowsUpdated
		}
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}

	return &alert, nil
}

// ListAlerts returns the caller's alerts, newest first.
func (r *Repository) ListAlerts(ctx context.Context, userID string) ([]*model.Alert, error) {
	query := `
		SELECT ` + alertColumns + `
		FROM alerts
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*model.Alert
	for rows.Next() {
		var alert model.Alert
		if err := rows.Scan(
			&alert.ID,
			&alert.UserID,
			&alert.APIID,
			&alert.Status,
			&alert.Severity,
			&alert.Message,
			&alert.Acknowledged,
			&alert.CreatedAt,
			&alert.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, &alert)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alerts: %w", err)
	}

	return alerts, nil
}
