// Package model defines domain entities for the application.
package model

import "time"

// WatchedAPI represents an external API a user registered for monitoring.
// Probing is done by an external checker which writes back last_status,
// last_version and last_checked_at.
type WatchedAPI struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	Name          string     `json:"name"`
	BaseURL       string     `json:"base_url"`
	CheckInterval int        `json:"check_interval_seconds"`
	LastStatus    string     `json:"last_status,omitempty"`
	LastVersion   string     `json:"last_version,omitempty"`
	LastCheckedAt *time.Time `json:"last_checked_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
