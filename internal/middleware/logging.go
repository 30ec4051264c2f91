package middleware

import (
	"net/http"
	"time"

	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/utils"
	"github.com/gorilla/mux"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Logger emits one structured line per request.
func Logger(logger *utils.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			args := []any{
				"request_id", RequestIDFromContext(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", float64(time.Since(start).Microseconds()) / 1000.0,
				"remote_addr", r.RemoteAddr,
			}
			if id, ok := IdentityFromContext(r.Context()); ok {
				args = append(args, "user_id", id.UserID)
			}

			if rec.status >= http.StatusInternalServerError {
				logger.Error("Request completed", args...)
			} else {
				logger.Info("Request completed", args...)
			}
		})
	}
}
