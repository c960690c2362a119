package handler

import (
	"context"
	"net/http"
	"time"
)

// readyzTimeout bounds the dependency pings for a readiness probe.
const readyzTimeout = 5 * time.Second

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness probes.
// Readiness checks the session store and the database; liveness only
// confirms the process answers.
type HealthHandler struct {
	checks []namedPinger
}

type namedPinger struct {
	name   string
	pinger Pinger
}

// NewHealthHandler creates a HealthHandler over the Postgres repository
// and the Redis session store. Nil dependencies are reported as
// "not configured" rather than failing readiness.
func NewHealthHandler(db, sessions Pinger) *HealthHandler {
	return &HealthHandler{
		checks: []namedPinger{
			{name: "postgres", pinger: db},
			{name: "redis", pinger: sessions},
		},
	}
}

// HealthResponse is the probe response body.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthz handles GET /healthz.
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Readyz handles GET /readyz. Returns 503 when any configured
// dependency fails its ping.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyzTimeout)
	defer cancel()

	checks := make(map[string]string, len(h.checks))
	ready := true

	for _, c := range h.checks {
		if c.pinger == nil {
			checks[c.name] = "not configured"
			continue
		}
		if err := c.pinger.Ping(ctx); err != nil {
			checks[c.name] = "error: " + err.Error()
			ready = false
			continue
		}
		checks[c.name] = "ok"
	}

	status := "ok"
	code := http.StatusOK
	if !ready {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, HealthResponse{Status: status, Checks: checks})
}
