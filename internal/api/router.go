package api

import (
	"net/http"
	"time"

	"showcase/internal/api/handler"
	"showcase/internal/api/middleware"
	"showcase/internal/app/service"
	"showcase/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

type Services struct {
	Auth     *service.AuthService
	Creators *service.CreatorService
	Projects *service.ProjectService
	Ratings  *service.RatingService
	Contacts *service.ContactService
	Messages *service.MessageService
}

type Options struct {
	Tokens       *security.TokenService
	CookieSecure bool
	// Limits public POST endpoints per client address. Nil disables limiting.
	PublicLimiter *middleware.RateLimiter
}

func NewRouter(svc Services, opts Options) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger) // Chi's logger
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	adminRes := security.NewResolver(opts.Tokens, security.KindAdmin).
		WithRoles(security.RoleAdmin, security.RoleSuperAdmin)
	creatorRes := security.NewResolver(opts.Tokens, security.KindCreator)

	limited := func(next http.Handler) http.Handler { return next }
	if opts.PublicLimiter != nil {
		limited = opts.PublicLimiter.Handler
	}

	health := func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	}
	r.Get("/health", health)

	authHandler := handler.NewAuthHandler(svc.Auth, opts.Tokens, handler.SessionCookies{Secure: opts.CookieSecure}, adminRes, creatorRes)
	creatorHandler := handler.NewCreatorHandler(svc.Creators)
	projectHandler := handler.NewProjectHandler(svc.Projects)
	ratingHandler := handler.NewRatingHandler(svc.Ratings)
	contactHandler := handler.NewContactHandler(svc.Contacts)
	messageHandler := handler.NewMessageHandler(svc.Messages)

	// API v1 Routes
	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Get("/health", health)

		v1.Route("/auth", func(ar chi.Router) {
			ar.Use(limited)
			authHandler.RegisterRoutes(ar)
		})

		// Public
		v1.Route("/projects", func(pr chi.Router) {
			projectHandler.RegisterRoutes(pr)
			pr.With(limited).Post("/{projectSlug}/messages", messageHandler.Send)
		})
		v1.Route("/creators", creatorHandler.RegisterRoutes)
		v1.Route("/ratings", func(rr chi.Router) {
			rr.Use(limited)
			ratingHandler.RegisterRoutes(rr)
		})
		v1.Route("/contacts", func(cr chi.Router) {
			cr.Use(limited)
			contactHandler.RegisterRoutes(cr)
		})

		// Creator dashboard
		v1.Route("/creator", func(cr chi.Router) {
			cr.Use(middleware.RequirePrincipal(creatorRes))
			cr.Route("/me", creatorHandler.RegisterCreatorRoutes)
			cr.Route("/projects", projectHandler.RegisterCreatorRoutes)
			cr.Route("/messages", messageHandler.RegisterCreatorRoutes)
		})

		// Admin panel
		v1.Route("/admin", func(ar chi.Router) {
			ar.Use(middleware.RequirePrincipal(adminRes))
			authHandler.RegisterAdminRoutes(ar)
			ar.Route("/projects", projectHandler.RegisterAdminRoutes)
			ar.Route("/ratings", ratingHandler.RegisterAdminRoutes)
			ar.Route("/contacts", contactHandler.RegisterAdminRoutes)
			ar.Route("/messages", messageHandler.RegisterAdminRoutes)
		})
	})

	return r
}
