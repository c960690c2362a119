package middleware

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/apiwatch/apiwatch/internal/auth"
)

// GuardConfig holds configuration for the route guard.
type GuardConfig struct {
	Logger *slog.Logger
	// Verifier resolves the session; the guard only reads, never mutates.
	Verifier auth.Verifier
	// Prefixes are the protected path prefixes (e.g. /dashboard, /billing).
	Prefixes []string
	// SigninPath is where unauthenticated browsers are sent.
	SigninPath string
}

// Guard gates protected path prefixes. Unauthenticated GET/HEAD requests
// are redirected to the sign-in page with the original path in "next";
// other methods fall through so API handlers can answer 401 JSON.
// Evaluated once per request, before any handler logic.
func Guard(cfg GuardConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isProtected(r.URL.Path, cfg.Prefixes) {
				next.ServeHTTP(w, r)
				return
			}

			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			session, err := cfg.Verifier.Resolve(r)
			if err == nil && session != nil {
				// Stash the resolved session so the session middleware
				// does not resolve it a second time.
				ctx := auth.ContextWithSession(r.Context(), session)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			cfg.Logger.Info("route guard redirect",
				slog.String("path", r.URL.Path),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			signin := cfg.SigninPath + "?next=" + url.QueryEscape(r.URL.Path)
			http.Redirect(w, r, signin, http.StatusSeeOther)
		})
	}
}

// isProtected reports whether the path falls under a protected prefix.
// A prefix matches the path itself or any subpath below it.
func isProtected(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}
