package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/apiwatch/apiwatch/internal/diag"
)

// Recoverer is a middleware that recovers from panics.
// It logs the panic, records an error diagnostic event and returns a
// 500 Internal Server Error. No failure escapes without an HTTP response.
func Recoverer(logger *slog.Logger, diagLogger *diag.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					requestID := GetRequestID(r.Context())

					logger.Error("panic recovered",
						slog.String("request_id", requestID),
						slog.Any("panic", rvr),
						slog.String("stack", string(debug.Stack())),
					)

					if diagLogger != nil {
						event := diag.NewEvent(diag.StepError).WithRequest(r)
						event.Errors = append(event.Errors, "panic: "+panicMessage(rvr))
						diagLogger.Log(event)
					}

					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func panicMessage(rvr any) string {
	if err, ok := rvr.(error); ok {
		return err.Error()
	}
	if s, ok := rvr.(string); ok {
		return s
	}
	return "unknown panic"
}
