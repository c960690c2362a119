// Command bootstrap-session seeds a local user and mints a session for it.
// Sign-in normally goes through the hosted auth provider; this exists so a
// local stack can exercise the authenticated surface without it.
//
// Usage:
//
//	go run ./scripts/bootstrap-session.go \
//	  -database-url postgres://localhost/apiwatch \
//	  -redis-url redis://localhost:6379/0
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/apiwatch/apiwatch/internal/auth"
	"github.com/apiwatch/apiwatch/internal/cache"
	"github.com/apiwatch/apiwatch/internal/model"
	"github.com/apiwatch/apiwatch/internal/repository"
)

type output struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Cookie string `json:"cookie"`
	Token  string `json:"token"`
	TTL    string `json:"ttl"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		redisURL    = flag.String("redis-url", os.Getenv("REDIS_URL"), "Redis connection string")
		email       = flag.String("email", "dev@apiwatch.local", "User email")
		customerID  = flag.String("stripe-customer", "", "Optional billing customer ID to link")
		cookieName  = flag.String("cookie", "apiwatch_session", "Session cookie name")
		ttl         = flag.Duration("ttl", 24*time.Hour, "Session TTL")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if *redisURL == "" {
		fmt.Fprintln(os.Stderr, "REDIS_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to database: %v\n", err)
		os.Exit(1)
	}
	defer repo.Close()

	sessions, err := cache.New(ctx, *redisURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to Redis: %v\n", err)
		os.Exit(1)
	}
	defer sessions.Close()

	userID, err := upsertUser(ctx, repo, *email, *customerID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "upsert user: %v\n", err)
		os.Exit(1)
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate token: %v\n", err)
		os.Exit(1)
	}

	session := &model.Session{
		UserID:    userID,
		Email:     *email,
		CreatedAt: time.Now().UTC(),
	}
	if err := sessions.SetSession(ctx, auth.Fingerprint(token), session, *ttl); err != nil {
		fmt.Fprintf(os.Stderr, "store session: %v\n", err)
		os.Exit(1)
	}

	out := output{
		UserID: userID,
		Email:  *email,
		Cookie: *cookieName,
		Token:  token,
		TTL:    ttl.String(),
	}

	if *format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fmt.Fprintf(os.Stderr, "encode output: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("user_id: %s\n", out.UserID)
	fmt.Printf("email:   %s\n", out.Email)
	fmt.Printf("ttl:     %s\n", out.TTL)
	fmt.Printf("\nCookie: %s=%s\n", out.Cookie, out.Token)
}

// upsertUser creates the user row if missing and returns its ID. An existing
// user keeps its ID and preferences; only the billing link is refreshed when
// one is given.
func upsertUser(ctx context.Context, repo *repository.Repository, email, customerID string) (string, error) {
	existing, err := repo.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return "", err
	}
	if err == nil {
		if customerID != "" {
			if _, err := repo.Pool().Exec(ctx,
				`UPDATE users SET stripe_customer_id = $1, updated_at = now() WHERE id = $2`,
				customerID, existing.ID,
			); err != nil {
				return "", err
			}
		}
		return existing.ID, nil
	}

	id := ulid.Make().String()
	var cus *string
	if customerID != "" {
		cus = &customerID
	}
	if _, err := repo.Pool().Exec(ctx,
		`INSERT INTO users (id, email, stripe_customer_id) VALUES ($1, $2, $3)`,
		id, email, cus,
	); err != nil {
		return "", err
	}

	return id, nil
}
