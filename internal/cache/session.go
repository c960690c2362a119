package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/apiwatch/apiwatch/internal/model"
)

const (
	// sessionPrefix is the Redis key prefix for session records.
	sessionPrefix = "session:"
)

// cachedSession is the session record stored in Redis.
type cachedSession struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// GetSession retrieves a session by token fingerprint.
// Returns nil on a miss; a missing or expired session is not an error.
// Transport errors are returned so callers can log them.
func (c *Cache) GetSession(ctx context.Context, fingerprint string) (*model.Session, error) {
	key := sessionPrefix + fingerprint

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Cache miss is not an error
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	var cached cachedSession
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted session record - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &model.Session{
		UserID:    cached.UserID,
		Email:     cached.Email,
		CreatedAt: cached.CreatedAt,
	}, nil
}

// SetSession stores a session under the token fingerprint with a TTL.
// Called by the sign-in callback after the hosted auth provider verifies
// the user.
func (c *Cache) SetSession(ctx context.Context, fingerprint string, session *model.Session, ttl time.Duration) error {
	key := sessionPrefix + fingerprint

	cached := cachedSession{
		UserID:    session.UserID,
		Email:     session.Email,
		CreatedAt: session.CreatedAt,
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

// DeleteSession removes a session record. Used on sign-out.
func (c *Cache) DeleteSession(ctx context.Context, fingerprint string) error {
	key := sessionPrefix + fingerprint
	return c.client.Del(ctx, key).Err()
}
