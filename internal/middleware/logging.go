package middleware

import (
	"net/http"
	"time"

	"pet-adoption-economy/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// HTTPObserver recibe una observación por request (métricas).
type HTTPObserver interface {
	ObserveHTTP(method, route string, status int, d time.Duration)
}

// RequestLogger loguea method, path, status, duración y request id.
// obs puede ser nil.
func RequestLogger(log logger.Logger, obs HTTPObserver) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			d := time.Since(start)

			route := r.URL.Path
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}

			fields := map[string]any{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      status,
				"duration_ms": float64(d.Microseconds()) / 1000,
				"request_id":  chimw.GetReqID(r.Context()),
			}
			if c, ok := GetClaims(r.Context()); ok {
				fields["user_id"] = c.UserID
			}

			switch {
			case status >= 500:
				log.Error("http_request", fields)
			case status >= 400:
				log.Warn("http_request", fields)
			default:
				log.Info("http_request", fields)
			}

			if obs != nil {
				obs.ObserveHTTP(r.Method, route, status, d)
			}
		})
	}
}
