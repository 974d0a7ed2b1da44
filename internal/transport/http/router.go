package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/Recurse-ML/logfire-example/internal/application/auth"
	"github.com/Recurse-ML/logfire-example/internal/application/item"
	"github.com/Recurse-ML/logfire-example/internal/application/user"
	"github.com/Recurse-ML/logfire-example/internal/config"
	"github.com/Recurse-ML/logfire-example/internal/faultpoint"
	"github.com/Recurse-ML/logfire-example/internal/infrastructure/dynamo"
	jwtinfra "github.com/Recurse-ML/logfire-example/internal/infrastructure/jwt"
	"github.com/Recurse-ML/logfire-example/internal/infrastructure/smtp"
	"github.com/Recurse-ML/logfire-example/internal/observe"
	"github.com/Recurse-ML/logfire-example/internal/transport/http/handler"
	appmiddleware "github.com/Recurse-ML/logfire-example/internal/transport/http/middleware"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo       *dynamo.UserRepo
	ItemRepo       *dynamo.ItemRepo
	RecoveryRepo   *dynamo.RecoveryRepo
	LoginEventRepo *dynamo.LoginEventRepo
	Mailer         smtp.Mailer
	JWTProvider    *jwtinfra.Provider
	Reporter       observe.Reporter
	CodeSource     observe.CodeSource
	Faults         *faultpoint.Registry
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	// Outermost recovery: reports panics as alert events. Must stay below
	// RequestID so events carry the request id.
	r.Use(appmiddleware.Observe(deps.Reporter, deps.CodeSource))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo:     deps.UserRepo,
		RecoveryRepo: deps.RecoveryRepo,
		LoginEvents:  deps.LoginEventRepo,
		Mailer:       deps.Mailer,
		JWTProvider:  deps.JWTProvider,
		Faults:       deps.Faults,
		RecoveryTTL:  time.Duration(cfg.RecoveryTokenHours) * time.Hour,
	})
	userSvc := user.NewService(deps.UserRepo)
	itemSvc := item.NewService(deps.ItemRepo)

	healthH := handler.NewHealthHandler()
	faultH := handler.NewFaultHandler()
	loginH := handler.NewLoginHandler(authSvc, userSvc)
	userH := handler.NewUserHandler(userSvc)
	itemH := handler.NewItemHandler(itemSvc)
	pwH := handler.NewPasswordRecoveryHandler(authSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check", healthH.Check)
		r.Get("/test", faultH.Trigger)
		r.Post("/test", faultH.Trigger)
		r.With(sensitiveRL.Limit).Post("/login/access-token", loginH.AccessToken)
		r.With(sensitiveRL.Limit).Post("/users/signup", userH.Signup)
		r.With(sensitiveRL.Limit).Post("/password-recovery/{email}", pwH.Request)
		r.Post("/reset-password", pwH.Reset)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Auth(deps.JWTProvider))

			r.Post("/login/test-token", loginH.TestToken)

			r.Get("/users/me", userH.GetMe)
			r.Patch("/users/me", userH.UpdateMe)
			r.Patch("/users/me/password", userH.UpdateMyPassword)

			r.Get("/items", itemH.List)
			r.Post("/items", itemH.Create)
			r.Get("/items/{id}", itemH.Get)
			r.Put("/items/{id}", itemH.Update)
			r.Delete("/items/{id}", itemH.Delete)

			// Superuser-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireSuperuser)

				r.Get("/login-events/{email}", loginH.History)

				r.Get("/users", userH.List)
				r.Post("/users", userH.Create)
				r.Get("/users/{id}", userH.Get)
				r.Patch("/users/{id}", userH.Update)
				r.Delete("/users/{id}", userH.Delete)
			})
		})
	})

	return r
}
