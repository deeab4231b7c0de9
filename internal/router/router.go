package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-auth-service/internal/config"
	"go-auth-service/internal/handler"
	"go-auth-service/internal/middleware"
)

type Handlers struct {
	Auth  *handler.AuthHandler
	Reset *handler.ResetHandler
	Audit *handler.AuditHandler
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, handlers Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/signup", handlers.Auth.Signup)
			auth.Post("/signin", handlers.Auth.Signin)
			auth.Post("/logout", handlers.Auth.Logout)
			auth.With(authMiddleware.RequireAuth).Get("/profile", handlers.Auth.Profile)
			auth.Post("/forgot-password", handlers.Reset.Request)
			auth.Post("/reset-password/{token}", handlers.Reset.Redeem)
		})

		api.With(authMiddleware.RequireAuth).Get("/audit", handlers.Audit.List)
	})

	return r
}
