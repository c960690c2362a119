package auth

import (
	"log/slog"
	"net/http"

	"github.com/apiwatch/apiwatch/internal/cache"
	"github.com/apiwatch/apiwatch/internal/model"
)

// Verifier resolves an authenticated identity from an inbound request.
// A nil Session with a nil error means the request is anonymous; Resolve
// itself never fails a request.
type Verifier interface {
	Resolve(r *http.Request) (*model.Session, error)
}

// SessionVerifier resolves sessions from the session cookie against the
// Redis session store.
type SessionVerifier struct {
	cache      *cache.Cache
	cookieName string
	logger     *slog.Logger
}

// NewSessionVerifier creates a SessionVerifier.
func NewSessionVerifier(c *cache.Cache, cookieName string, logger *slog.Logger) *SessionVerifier {
	return &SessionVerifier{
		cache:      c,
		cookieName: cookieName,
		logger:     logger.With("component", "auth.verifier"),
	}
}

// Resolve reads the session cookie, validates the token format and looks
// up the session record by token fingerprint. Missing cookie, malformed
// token, unknown or expired session all resolve to anonymous. Store
// errors also resolve to anonymous (fail closed) and are logged.
func (v *SessionVerifier) Resolve(r *http.Request) (*model.Session, error) {
	cookie, err := r.Cookie(v.cookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	if !ValidateTokenFormat(cookie.Value) {
		return nil, nil
	}

	session, err := v.cache.GetSession(r.Context(), Fingerprint(cookie.Value))
	if err != nil {
		v.logger.Warn("session lookup failed",
			"path", r.URL.Path,
			"error", err,
		)
		return nil, nil
	}

	return session, nil
}
