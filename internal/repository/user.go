package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/apiwatch/apiwatch/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
)

const userColumns = `id, email, stripe_customer_id, notification_preferences, created_at, updated_at`

// GetUserByEmail retrieves a user by their email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1
	`

	var user model.User
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.StripeCustomerID,
		&user.Preferences,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

// GetUserByID retrieves a user by their ID.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`

	var user model.User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.StripeCustomerID,
		&user.Preferences,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return &user, nil
}

// UpdateNotificationPreferences replaces the user's notification_preferences
// structure and bumps updated_at. The whole jsonb value is overwritten;
// fields not present in prefs are cleared, not preserved.
func (r *Repository) UpdateNotificationPreferences(ctx context.Context, email string, prefs model.NotificationPreferences) (*model.User, error) {
	query := `
		UPDATE users
		SET notification_preferences = $1, updated_at = now()
		WHERE email = $2
		RETURNING ` + userColumns + `
	`

	var user model.User
	err := r.pool.QueryRow(ctx, query, prefs, email).Scan(
		&user.ID,
		&user.Email,
		&user.StripeCustomerID,
		&user.Preferences,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update notification preferences: %w", err)
	}

	return &user, nil
}
