// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"recharge-core/internal/api/handler"
)

// NewRouter sets up and returns a new HTTP router.
func NewRouter(
	rechargeHandler *handler.RechargeHandler,
	walletHandler *handler.WalletHandler,
	registryHandler *handler.RegistryHandler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(handler.DefaultTimeout))
	r.Use(handler.Metrics)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Prometheus metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// Everything below requires an authenticated caller.
	r.Group(func(r chi.Router) {
		r.Use(handler.Identity)

		r.Route("/recharges", func(r chi.Router) {
			r.Post("/flexy", rechargeHandler.Flexy)
			r.Post("/offer", rechargeHandler.Offer)
		})

		r.Route("/wallets", func(r chi.Router) {
			r.Post("/{accountID}/mutations", walletHandler.ApplyMutation)
			r.Get("/{accountID}", walletHandler.GetWallet)
			r.Get("/{accountID}/entries", walletHandler.GetHistory)
		})

		r.Route("/sims", func(r chi.Router) {
			r.Get("/", registryHandler.ListSIMs)
			r.Post("/", registryHandler.ProvisionSIM)
			r.Put("/{simID}/balance", registryHandler.RefreshSIMBalance)
		})

		r.Route("/offers", func(r chi.Router) {
			r.Get("/", registryHandler.ListOffers)
			r.Post("/", registryHandler.CreateOffer)
		})

		r.Route("/operators/{operator}/template", func(r chi.Router) {
			r.Get("/", registryHandler.GetOperatorTemplate)
			r.Put("/", registryHandler.SetOperatorTemplate)
		})
	})

	return r
}
