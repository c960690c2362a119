package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/apiwatch/apiwatch/internal/auth"
	"github.com/apiwatch/apiwatch/internal/diag"
	"github.com/apiwatch/apiwatch/internal/handler/dto"
	"github.com/apiwatch/apiwatch/internal/model"
	"github.com/apiwatch/apiwatch/internal/repository"
	"github.com/apiwatch/apiwatch/internal/service"
)

// APIHandler handles watched API registration endpoints.
type APIHandler struct {
	svc    *service.MonitorService
	diag   *diag.Logger
	logger *slog.Logger
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(svc *service.MonitorService, diagLogger *diag.Logger, logger *slog.Logger) *APIHandler {
	return &APIHandler{
		svc:    svc,
		diag:   diagLogger,
		logger: logger,
	}
}

// Register handles POST /apis.
func (h *APIHandler) Register(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if session == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Sign-in required")
		return
	}

	var req dto.RegisterAPIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.diag.Log(diag.NewEvent(diag.StepError).WithRequest(r).WithError(err))
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	api, err := h.svc.Register(r.Context(), service.RegisterInput{
		UserID:        session.UserID,
		Name:          req.Name,
		BaseURL:       req.BaseURL,
		CheckInterval: req.CheckInterval,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("api_registered",
		"api_id", api.ID,
		"user_id", session.UserID,
	)
	h.diag.Log(diag.NewEvent(diag.StepAPIRegister).WithRequest(r).WithAfter(api))

	writeJSON(w, http.StatusCreated, api)
}

// List handles GET /apis.
func (h *APIHandler) List(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if session == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Sign-in required")
		return
	}

	apis, err := h.svc.List(r.Context(), session.UserID)
	if err != nil {
		h.logger.Error("api_list_failed", "error", err)
		h.diag.Log(diag.NewEvent(diag.StepError).WithRequest(r).WithError(err))
		writeInternalError(w)
		return
	}

	if apis == nil {
		apis = []*model.WatchedAPI{}
	}
	writeJSON(w, http.StatusOK, apis)
}

// Delete handles DELETE /apis/{id}.
func (h *APIHandler) Delete(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if session == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Sign-in required")
		return
	}

	apiID := chi.URLParam(r, "id")
	if apiID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "API ID is required")
		return
	}

	if err := h.svc.Delete(r.Context(), session.UserID, apiID); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("api_unregistered",
		"api_id", apiID,
		"user_id", session.UserID,
	)

	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError maps service errors to HTTP responses.
func (h *APIHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	h.diag.Log(diag.NewEvent(diag.StepError).WithRequest(r).WithError(err))

	switch {
	case errors.Is(err, service.ErrInvalidName):
		writeError(w, http.StatusBadRequest, "INVALID_NAME", "API name is required and must be at most 100 characters")
	case errors.Is(err, service.ErrInvalidBaseURL):
		writeError(w, http.StatusBadRequest, "INVALID_BASE_URL", "Base URL must be a valid http(s) URL")
	case errors.Is(err, service.ErrInvalidInterval):
		writeError(w, http.StatusBadRequest, "INVALID_INTERVAL", "Check interval must be between 30 and 86400 seconds")
	case errors.Is(err, repository.ErrAPIExists):
		writeError(w, http.StatusConflict, "API_EXISTS", "API already registered")
	case errors.Is(err, repository.ErrAPINotFound):
		writeError(w, http.StatusNotFound, "API_NOT_FOUND", "Watched API not found")
	default:
		h.logger.Error("internal_error", "error", err)
		writeInternalError(w)
	}
}
