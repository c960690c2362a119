package middleware

import (
	"log/slog"
	"net/http"

	"github.com/apiwatch/apiwatch/internal/auth"
)

// SessionConfig holds configuration for the session middleware.
type SessionConfig struct {
	Logger   *slog.Logger
	Verifier auth.Verifier
}

// Session returns a middleware that resolves the caller's session and
// injects it into the request context. Anonymous requests get a 401 JSON
// response; the wrapped handler never runs without an identity, so no
// store mutation can happen unauthenticated.
func Session(cfg SessionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// The route guard may have resolved the session already.
			if session := auth.SessionFromContext(r.Context()); session != nil {
				next.ServeHTTP(w, r)
				return
			}

			session, err := cfg.Verifier.Resolve(r)
			if err != nil || session == nil {
				cfg.Logger.Warn("unauthenticated request",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeUnauthorized(w)
				return
			}

			ctx := auth.ContextWithSession(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeUnauthorized writes a 401 response.
// Uses the same message for all auth failures to prevent enumeration.
func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"Sign-in required"}}`))
}
