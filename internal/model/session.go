// Package model defines domain entities for the application.
package model

import "time"

// Session is the authenticated identity resolved for a request.
// It carries only what handlers need; the full user record lives in the store.
type Session struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
