package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/faycal55/respira/internal/catalog"
	"github.com/faycal55/respira/pkg/health"
	"github.com/faycal55/respira/pkg/middleware"
)

// RouterConfig carries the tunables of NewRouter.
type RouterConfig struct {
	CORS              middleware.CORSConfig
	CatalogMaxAge     time.Duration
	FunctionsRPS      float64
	FunctionsBurst    int
	PprofAllowedCIDRs []string
}

// NewRouter creates a chi router with every API route registered.
func NewRouter(
	svc Services,
	cat *catalog.Catalog,
	tokenValidator middleware.TokenValidator,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Tracing())
	r.Use(middleware.PrometheusMetrics())

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())
	middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)

	authHandler := NewAuthHandler(svc.Auth, logger)
	profileHandler := NewProfileHandler(svc.Profiles, logger)
	conversationHandler := NewConversationHandler(svc.Conversations, logger)
	functionsHandler := NewFunctionsHandler(svc.Functions, logger)
	breathingHandler := NewBreathingHandler(svc.Breathing, logger)
	catalogHandler := NewCatalogHandler(cat, logger)

	limiter := middleware.NewRateLimiter(cfg.FunctionsRPS, cfg.FunctionsBurst)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Auth endpoints (public)
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.NoStore)

			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.RefreshToken)
			r.Post("/forgot-password", authHandler.ForgotPassword)
			r.Post("/reset-password", authHandler.ResetPassword)

			r.With(middleware.Auth(tokenValidator)).Post("/logout", authHandler.Logout)
		})

		// Static content (public, cacheable)
		r.Route("/catalog", func(r chi.Router) {
			r.Use(middleware.CacheControl(cfg.CatalogMaxAge))

			r.Get("/techniques", catalogHandler.Techniques)
			r.Get("/techniques/{id}", catalogHandler.Technique)
			r.Get("/books", catalogHandler.Books)
			r.Get("/books/categories", catalogHandler.BookCategories)
			r.Get("/books/{id}", catalogHandler.Book)
			r.Get("/tracks", catalogHandler.Tracks)
			r.Get("/tracks/categories", catalogHandler.TrackCategories)
			r.Get("/tracks/{id}", catalogHandler.Track)
			r.Get("/plans", catalogHandler.Plans)
			r.Get("/themes", catalogHandler.Themes)
		})

		// The contact form works signed out, still rate limited by IP.
		r.With(OptionalAuth(tokenValidator), limiter.Middleware).
			Post("/functions/contact-support", functionsHandler.ContactSupport)

		// Everything below requires a session.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator))
			r.Use(middleware.NoStore)

			r.Get("/profiles/me", profileHandler.Get)
			r.Put("/profiles/me", profileHandler.Update)

			r.Get("/conversations", conversationHandler.List)
			r.Post("/conversations", conversationHandler.Create)
			r.Get("/conversations/{id}/messages", conversationHandler.Messages)
			r.Post("/conversations/{id}/messages", conversationHandler.AddMessage)

			r.Group(func(r chi.Router) {
				r.Use(limiter.Middleware)

				r.Post("/functions/ai-chat", functionsHandler.Chat)
				r.Post("/functions/tts", functionsHandler.TextToSpeech)
				r.Post("/functions/stt", functionsHandler.SpeechToText)
				r.Post("/functions/check-subscription", functionsHandler.CheckSubscription)
			})

			r.Get("/breathing/sessions", breathingHandler.History)
			r.Post("/breathing/sessions", breathingHandler.Record)
		})
	})

	return r
}
