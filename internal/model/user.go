// Package model defines domain entities for the application.
package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// NotificationPreferences holds a user's communication channels and the
// alert types they want delivered on them. Stored as a single jsonb value;
// updates replace the whole structure.
type NotificationPreferences struct {
	Channels   []string `json:"channels"`
	AlertTypes []string `json:"alert_types"`
}

// Value implements driver.Valuer for jsonb storage.
func (p NotificationPreferences) Value() (driver.Value, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal notification preferences: %w", err)
	}
	return data, nil
}

// Scan implements sql.Scanner for jsonb retrieval.
func (p *NotificationPreferences) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*p = NotificationPreferences{}
		return nil
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return errors.New("unsupported source type for notification preferences")
	}
}

// User represents an authenticated end user of the dashboard.
// Created at sign-up by the hosted auth provider; this core only mutates it.
type User struct {
	ID               string                  `json:"id"`
	Email            string                  `json:"email"`
	StripeCustomerID *string                 `json:"stripe_customer_id,omitempty"`
	Preferences      NotificationPreferences `json:"notification_preferences"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

// HasBillingCustomer reports whether the user is linked to a record
// at the payment processor.
func (u *User) HasBillingCustomer() bool {
	return u.StripeCustomerID != nil && *u.StripeCustomerID != ""
}
