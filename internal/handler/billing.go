package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/apiwatch/apiwatch/internal/auth"
	"github.com/apiwatch/apiwatch/internal/diag"
	"github.com/apiwatch/apiwatch/internal/handler/dto"
)

// PortalClient requests billing portal sessions from the payment processor.
type PortalClient interface {
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
}

// BillingHandler handles billing portal initiation.
type BillingHandler struct {
	users     UserStore
	portal    PortalClient
	returnURL string
	diag      *diag.Logger
	logger    *slog.Logger
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(users UserStore, portal PortalClient, returnURL string, diagLogger *diag.Logger, logger *slog.Logger) *BillingHandler {
	return &BillingHandler{
		users:     users,
		portal:    portal,
		returnURL: returnURL,
		diag:      diagLogger,
		logger:    logger,
	}
}

// CreatePortal handles POST /billing/create-portal.
// Resolves the caller's linked billing customer and asks the processor
// for a time-boxed portal URL. Processor error detail is logged, never
// returned to the caller.
func (h *BillingHandler) CreatePortal(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if session == nil || session.Email == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Sign-in required")
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), session.Email)
	if err != nil {
		h.logger.Error("billing_user_lookup_failed",
			"email", session.Email,
			"error", err,
		)
		h.diag.Log(diag.NewEvent(diag.StepError).WithRequest(r).WithError(err))
		writeInternalError(w)
		return
	}

	if !user.HasBillingCustomer() {
		writeError(w, http.StatusNotFound, "NO_SUBSCRIPTION", "No subscription found")
		return
	}

	portalURL, err := h.portal.CreatePortalSession(r.Context(), *user.StripeCustomerID, h.returnURL)
	if err != nil {
		h.logger.Error("billing_portal_failed",
			"user_id", user.ID,
			"error", err,
		)
		h.diag.Log(diag.NewEvent(diag.StepError).WithRequest(r).WithError(err))
		writeInternalError(w)
		return
	}

	h.logger.Info("billing_portal_created", "user_id", user.ID)

	writeJSON(w, http.StatusOK, dto.PortalResponse{URL: portalURL})
}
