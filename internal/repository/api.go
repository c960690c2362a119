package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/apiwatch/apiwatch/internal/model"
)

// Common errors for watched API repository operations.
var (
	ErrAPINotFound = errors.New("watched API not found")
	ErrAPIExists   = errors.New("API already registered for this user")
)

const watchedAPIColumns = `id, user_id, name, base_url, check_interval_seconds,
		last_status, last_version, last_checked_at, created_at, updated_at`

// CreateWatchedAPI inserts a new watched API registration.
func (r *Repository) CreateWatchedAPI(ctx context.Context, api *model.WatchedAPI) error {
	query := `
		INSERT INTO watched_apis (id, user_id, name, base_url, check_interval_seconds, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		api.ID,
		api.UserID,
		api.Name,
		api.BaseURL,
		api.CheckInterval,
		api.CreatedAt,
		api.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrAPIExists
		}
		return fmt.Errorf("failed to create watched API: %w", err)
	}

	return nil
}

// ListWatchedAPIs returns the caller's registered APIs, newest first.
func (r *Repository) ListWatchedAPIs(ctx context.Context, userID string) ([]*model.WatchedAPI, error) {
	query := `
		SELECT ` + watchedAPIColumns + `
		FROM watched_apis
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list watched APIs: %w", err)
	}
	defer rows.Close()

	var apis []*model.WatchedAPI
	for rows.Next() {
		var api model.WatchedAPI
		var lastStatus, lastVersion *string
		if err := rows.Scan(
			&api.ID,
			&api.UserID,
			&api.Name,
			&api.BaseURL,
			&api.CheckInterval,
			&lastStatus,
			&lastVersion,
			&api.LastCheckedAt,
			&api.CreatedAt,
			&api.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan watched API: %w", err)
		}
		if lastStatus != nil {
			api.LastStatus = *lastStatus
		}
		if lastVersion != nil {
			api.LastVersion = *lastVersion
		}
		apis = append(apis, &api)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate watched APIs: %w", err)
	}

	return apis, nil
}

// DeleteWatchedAPI removes a registration scoped to its owner.
// The delete filters by both id and user_id in one statement.
func (r *Repository) DeleteWatchedAPI(ctx context.Context, userID, apiID string) error {
	query := `
		DELETE FROM watched_apis
		WHERE id = $1 AND user_id = $2
	`

	tag, err := r.pool.Exec(ctx, query, apiID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete watched API: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrAPINotFound
	}

	return nil
}
