package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/apiwatch/apiwatch/internal/auth"
	"github.com/apiwatch/apiwatch/internal/diag"
	"github.com/apiwatch/apiwatch/internal/handler/dto"
	"github.com/apiwatch/apiwatch/internal/model"
)

// UserStore is the persistence surface for user mutations and lookups.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateNotificationPreferences(ctx context.Context, email string, prefs model.NotificationPreferences) (*model.User, error)
}

// NotificationHandler handles notification preference updates.
type NotificationHandler struct {
	users  UserStore
	diag   *diag.Logger
	logger *slog.Logger
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(users UserStore, diagLogger *diag.Logger, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		users:  users,
		diag:   diagLogger,
		logger: logger,
	}
}

// Update handles PUT /user/notifications.
// The stored notification_preferences structure is replaced with the
// request body. Replace, not merge: fields the caller omits are cleared.
func (h *NotificationHandler) Update(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if session == nil || session.Email == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Sign-in required")
		return
	}

	var req dto.UpdateNotificationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.diag.Log(diag.NewEvent(diag.StepError).WithRequest(r).WithError(err))
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	prefs := model.NotificationPreferences{
		Channels:   req.Channels,
		AlertTypes: req.AlertTypes,
	}

	user, err := h.users.UpdateNotificationPreferences(r.Context(), session.Email, prefs)
	if err != nil {
		h.logger.Error("notification_update_failed",
			"email", session.Email,
			"error", err,
		)
		h.diag.Log(diag.NewEvent(diag.StepError).WithRequest(r).WithError(err))
		writeInternalError(w)
		return
	}

	h.logger.Info("notification_preferences_updated", "user_id", user.ID)
	h.diag.Log(diag.NewEvent(diag.StepUserUpdate).WithRequest(r).WithAfter(user))

	writeJSON(w, http.StatusOK, user)
}
