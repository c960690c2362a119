// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/apiwatch/apiwatch/internal/model"
)

// Service errors.
var (
	ErrInvalidName     = errors.New("invalid API name")
	ErrInvalidBaseURL  = errors.New("invalid base URL")
	ErrInvalidInterval = errors.New("check interval out of range")
)

const (
	maxNameLength    = 100
	maxBaseURLLength = 2048

	// Check interval bounds in seconds.
	minCheckInterval     = 30
	maxCheckInterval     = 86400
	defaultCheckInterval = 300
)

// MonitorStore is the persistence surface the monitor service needs.
type MonitorStore interface {
	CreateWatchedAPI(ctx context.Context, api *model.WatchedAPI) error
	ListWatchedAPIs(ctx context.Context, userID string) ([]*model.WatchedAPI, error)
	DeleteWatchedAPI(ctx context.Context, userID, apiID string) error
}

// MonitorService handles watched API registration logic.
type MonitorService struct {
	store MonitorStore
}

// NewMonitorService creates a new MonitorService.
func NewMonitorService(store MonitorStore) *MonitorService {
	return &MonitorService{store: store}
}

// RegisterInput defines input for registering a watched API.
type RegisterInput struct {
	UserID        string
	Name          string
	BaseURL       string
	CheckInterval int
}

// Register validates and stores a new watched API for the caller.
func (s *MonitorService) Register(ctx context.Context, input RegisterInput) (*model.WatchedAPI, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || len(name) > maxNameLength {
		return nil, ErrInvalidName
	}

	if err := validateBaseURL(input.BaseURL); err != nil {
		return nil, err
	}

	interval := input.CheckInterval
	if interval == 0 {
		interval = defaultCheckInterval
	}
	if interval < minCheckInterval || interval > maxCheckInterval {
		return nil, ErrInvalidInterval
	}

	now := time.Now().UTC()
	api := &model.WatchedAPI{
		ID:            ulid.Make().String(),
		UserID:        input.UserID,
		Name:          name,
		BaseURL:       input.BaseURL,
		CheckInterval: interval,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.CreateWatchedAPI(ctx, api); err != nil {
		return nil, err
	}

	return api, nil
}

// List returns the caller's watched APIs.
func (s *MonitorService) List(ctx context.Context, userID string) ([]*model.WatchedAPI, error) {
	apis, err := s.store.ListWatchedAPIs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list watched APIs: %w", err)
	}
	return apis, nil
}

// Delete removes a watched API scoped to its owner.
func (s *MonitorService) Delete(ctx context.Context, userID, apiID string) error {
	return s.store.DeleteWatchedAPI(ctx, userID, apiID)
}

// validateBaseURL checks the monitored API's base URL.
func validateBaseURL(raw string) error {
	if raw == "" || len(raw) > maxBaseURLLength {
		return ErrInvalidBaseURL
	}

	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return ErrInvalidBaseURL
	}

	return nil
}
