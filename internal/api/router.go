/**
 * @description
 * This file sets up the HTTP router using the go-chi/chi router. It defines
 * the API routes, applies middleware for logging, CORS, and authentication,
 * and maps the routes to their corresponding handler functions.
 */
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jleboube/ai-agent-manager/internal/auth"
)

// RouterConfig bundles the handlers and cross-cutting settings for NewRouter.
type RouterConfig struct {
	Auth          *AuthHandler
	AI            *AIHandler
	Subscriptions *SubscriptionHandler
	Users         *UserHandler

	Tokens         *auth.TokenManager
	FrontendURL    string
	MetricsEnabled bool
}

// NewRouter creates the Chi router and registers all routes.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Stripe-Signature"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any major browsers
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/auth", func(r chi.Router) {
		r.Get("/google/url", cfg.Auth.handleGoogleURL)
		r.Get("/google/callback", cfg.Auth.handleGoogleCallback)
		r.Post("/logout", cfg.Auth.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(cfg.Tokens))
			r.Get("/me", cfg.Auth.handleMe)
		})
	})

	r.Route("/ai", func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Tokens))
		r.Post("/generate", cfg.AI.handleGenerate)
		r.Post("/advice", cfg.AI.handleAdvice)
		r.Post("/save-agent", cfg.AI.handleSaveAgent)
		r.Get("/my-agents", cfg.AI.handleMyAgents)
		r.Get("/agent/{id}", cfg.AI.handleGetAgent)
	})

	r.Route("/subscription", func(r chi.Router) {
		// Stripe authenticates with its signature, not a session token.
		r.Post("/webhook", cfg.Subscriptions.handleWebhook)

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(cfg.Tokens))
			r.Post("/create-checkout", cfg.Subscriptions.handleCreateCheckout)
			r.Get("/status", cfg.Subscriptions.handleStatus)
			r.Post("/cancel", cfg.Subscriptions.handleCancel)
			r.Post("/reactivate", cfg.Subscriptions.handleReactivate)
		})
	})

	r.Route("/user", func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Tokens))
		r.Get("/profile", cfg.Users.handleProfile)
		r.Get("/generations", cfg.Users.handleGenerations)
	})

	return r
}
