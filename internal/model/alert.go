// Package model defines domain entities for the application.
package model

import "time"

// AlertStatus represents the lifecycle state of an alert.
type AlertStatus string

const (
	AlertStatusOpen         AlertStatus = "open"
	AlertStatusAcknowledged AlertStatus = "acknowledged"
	AlertStatusResolved     AlertStatus = "resolved"
)

// IsValid checks if the alert status is a known value.
func (s AlertStatus) IsValid() bool {
	return s == AlertStatusOpen || s == AlertStatusAcknowledged || s == AlertStatusResolved
}

// Alert represents a per-user monitoring rule/event tied to a watched API.
// Alerts are created by the external checker; this core only mutates them,
// always scoped to the owning user.
type Alert struct {
	ID           string      `json:"id"`
	UserID       string      `json:"user_id"`
	APIID        string      `json:"api_id"`
	Status       AlertStatus `json:"status"`
	Severity     string      `json:"severity"`
	Message      string      `json:"message"`
	Acknowledged bool        `json:"acknowledged"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}
