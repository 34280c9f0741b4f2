// internal/api/handler/middleware.go
package handler

import (
	"context"
	"net/http"
	"strconv"

	"recharge-core/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type contextKey string

const actorContextKey contextKey = "actor"

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recharge_http_requests_total",
		Help: "Total HTTP requests processed, labeled by status code",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recharge_http_request_duration_seconds",
		Help:    "Latency distribution of HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"method", "route"})
)

// Identity extracts the authenticated caller from the X-Account-ID and
// X-Account-Role headers set by the upstream auth provider. Requests
// without a valid identity are rejected; the identity itself is trusted.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accountID, err := strconv.ParseInt(r.Header.Get("X-Account-ID"), 10, 64)
		role := domain.Role(r.Header.Get("X-Account-Role"))
		if err != nil || accountID <= 0 || role == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error": "missing or invalid identity headers"}`))
			return
		}
		actor := domain.Actor{AccountID: accountID, Role: role}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorContextKey, actor)))
	})
}

// ActorFromContext returns the authenticated actor stored by Identity.
func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey).(domain.Actor)
	return actor, ok
}

// Metrics records a request counter and latency histogram per chi route.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
			route := chi.RouteContext(r.Context()).RoutePattern()
			httpRequestDuration.WithLabelValues(r.Method, route).Observe(v)
			httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Inc()
		}))
		defer timer.ObserveDuration()
		next.ServeHTTP(ww, r)
	})
}
