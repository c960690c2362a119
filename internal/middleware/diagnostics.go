package middleware

import (
	"net/http"

	"github.com/apiwatch/apiwatch/internal/diag"
)

// Diagnostics returns a middleware that records one "api_request" event
// on the way in and attaches the response status on the way out. Wrapping
// every handler here guarantees every handled request produces at least
// one diagnostic event, instead of relying on per-handler calls.
func Diagnostics(logger *diag.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Entry event: inbound request snapshot, always logged.
			logger.Log(diag.NewEvent(diag.StepAPIRequest).WithRequest(r))

			wrapped := wrapResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			// Exit event only for failures; success states are recorded
			// by the handlers with their before/after snapshots.
			if wrapped.status >= 400 {
				event := diag.NewEvent(diag.StepError).WithRequest(r)
				event.Errors = append(event.Errors, http.StatusText(wrapped.status))
				event.WithResponse(map[string]int{"status": wrapped.status})
				logger.Log(event)
			}
		})
	}
}
