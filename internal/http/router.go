package httpserver

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/parishhub/eventcal/internal/config"
	"github.com/parishhub/eventcal/internal/eventstore"
	"github.com/parishhub/eventcal/internal/http/ratelimit"
	"github.com/parishhub/eventcal/internal/metrics"
	"github.com/parishhub/eventcal/internal/store"
	"github.com/parishhub/eventcal/internal/view"
)

// NewRouter wires all HTTP routes.
func NewRouter(cfg *config.Config, stor *store.Store, events *eventstore.Store, presenter *view.Presenter, log *logrus.Entry) http.Handler {
	r := chi.NewRouter()

	// Mutating endpoints: 5 requests per second, burst of 10.
	writeRateLimiter := ratelimit.NewIPRateLimiter(rate.Limit(5), 10, 5*time.Minute, cfg.TrustedProxies)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware())

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := stor.HealthCheck(ctx); err != nil {
			http.Error(w, "unready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if cfg.PrometheusEnabled {
		r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			metrics.Handler().ServeHTTP(w, r)
		})
	}

	h := NewHandler(cfg, stor, events, presenter, log)

	r.Get("/calendar.ics", h.CalendarFeed)

	r.Route("/api", func(r chi.Router) {
		r.Get("/events", h.Events)
		r.Get("/calendar/grid", h.CalendarGrid)
		r.Get("/calendar/months", h.MonthSections)

		r.Group(func(r chi.Router) {
			r.Use(writeRateLimiter.Middleware())
			r.Use(adminAuth(cfg))
			r.Post("/calendar/prev", h.PreviousMonth)
			r.Post("/calendar/next", h.NextMonth)
			r.Post("/refresh", h.Refresh)
			r.Post("/events", h.CreateEvent)
			r.Delete("/events/{id}", h.DeleteEvent)
		})
	})

	return r
}

// adminAuth guards mutating endpoints with HTTP basic auth when credentials
// are configured; otherwise it is a pass-through.
func adminAuth(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !cfg.AdminAuthEnabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok || !secureCompare(user, cfg.AdminUsername) || !secureCompare(pass, cfg.AdminPassword) {
				w.Header().Set("WWW-Authenticate", `Basic realm="eventcal"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func secureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func requestLogger(log *logrus.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"duration":   time.Since(start).String(),
				"request_id": middleware.GetReqID(r.Context()),
			}).Info("request")
		})
	}
}
