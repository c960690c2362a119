package middleware

import "net/http"

// MaxBodySize limits request body size to n bytes.
// Oversized bodies fail at decode time with a JSON error response from
// the handler rather than an abrupt connection close.
func MaxBodySize(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, n)
			}
			next.ServeHTTP(w, r)
		})
	}
}
