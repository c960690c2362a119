package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/apiwatch/apiwatch/internal/auth"
	"github.com/apiwatch/apiwatch/internal/diag"
	"github.com/apiwatch/apiwatch/internal/model"
	"github.com/apiwatch/apiwatch/internal/repository"
)

// AlertStore is the persistence surface for alert mutations.
// Narrow on purpose so tests can substitute an in-memory fake.
type AlertStore interface {
	UpdateAlert(ctx context.Context, userID, alertID string, fields map[string]any) (*model.Alert, error)
	ListAlerts(ctx context.Context, userID string) ([]*model.Alert, error)
}

// AlertHandler handles HTTP requests for alert operations.
type AlertHandler struct {
	store  AlertStore
	diag   *diag.Logger
	logger *slog.Logger
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(store AlertStore, diagLogger *diag.Logger, logger *slog.Logger) *AlertHandler {
	return &AlertHandler{
		store:  store,
		diag:   diagLogger,
		logger: logger,
	}
}

// Update handles PATCH /alerts/{id}.
// The update is scoped to the calling identity in a single statement;
// a request for an alert the caller does not own affects zero rows.
func (h *AlertHandler) Update(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if session == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Sign-in required")
		return
	}

	alertID := chi.URLParam(r, "id")
	if alertID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Alert ID is required")
		return
	}

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		h.diag.Log(diag.NewEvent(diag.StepError).WithRequest(r).WithError(err))
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	alert, err := h.store.UpdateAlert(r.Context(), session.UserID, alertID, fields)
	if err != nil {
		h.handleUpdateError(w, r, alertID, err)
		return
	}

	h.logger.Info("alert_updated",
		"alert_id", alert.ID,
		"user_id", session.UserID,
	)
	h.diag.Log(diag.NewEvent(diag.StepAlertUpdate).WithRequest(r).WithAfter(alert))

	writeJSON(w, http.StatusOK, alert)
}

// List handles GET /alerts.
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if session == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Sign-in required")
		return
	}

	alerts, err := h.store.ListAlerts(r.Context(), session.UserID)
	if err != nil {
		h.logger.Error("alert_list_failed", "error", err)
		h.diag.Log(diag.NewEvent(diag.StepError).WithRequest(r).WithError(err))
		writeInternalError(w)
		return
	}

	if alerts == nil {
		alerts = []*model.Alert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

// handleUpdateError maps store errors to HTTP responses.
// Zero matched rows is indistinguishable from a rejected update, so both
// surface as the generic server error, never a silent success.
func (h *AlertHandler) handleUpdateError(w http.ResponseWriter, r *http.Request, alertID string, err error) {
	h.diag.Log(diag.NewEvent(diag.StepError).WithRequest(r).WithError(err))

	switch {
	case errors.Is(err, repository.ErrNoFieldsToUpdate):
		writeError(w, http.StatusBadRequest, "EMPTY_UPDATE", "No fields to update")
	default:
		h.logger.Error("alert_update_failed",
			"alert_id", alertID,
			"error", err,
		)
		writeInternalError(w)
	}
}
