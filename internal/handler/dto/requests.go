// Package dto defines request/response shapes for the HTTP surface.
package dto

// UpdateNotificationsRequest is the body for PUT /user/notifications.
// The whole preferences structure is replaced with these values; fields
// left out are cleared, not preserved.
type UpdateNotificationsRequest struct {
	Channels   []string `json:"channels"`
	AlertTypes []string `json:"alert_types"`
}

// RegisterAPIRequest is the body for POST /apis.
type RegisterAPIRequest struct {
	Name          string `json:"name"`
	BaseURL       string `json:"base_url"`
	CheckInterval int    `json:"check_interval_seconds"`
}

// PortalResponse is the body for a successful POST /billing/create-portal.
type PortalResponse struct {
	URL string `json:"url"`
}

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
