package router

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"fintrack-service/internal/handler"
	"fintrack-service/pkg/middleware"
)

func SetupRoutes(
	r chi.Router,
	authHandler *handler.AuthHandler,
	trxHandler *handler.TransactionHandler,
	drHandler *handler.DeletionRequestHandler,
	auth *middleware.AuthMiddleware,
	rdb *redis.Client,
) chi.Router {
	// ---- Global Middleware ----
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.RateLimiter(rdb, 100, time.Minute, 10*time.Minute, "global"))

	// ---- Public ----
	r.Post("/auth/register", authHandler.Register)
	r.Post("/auth/login", authHandler.Login)

	// ---- Authenticated (any role) ----
	r.Group(func(pr chi.Router) {
		pr.Use(auth.Middleware)

		pr.Get("/auth/me", authHandler.Me)

		pr.Route("/transactions", func(t chi.Router) {
			t.Post("/", trxHandler.Create)
			t.Get("/", trxHandler.GetAll)
			t.Get("/{id}", trxHandler.GetByID)
		})

		pr.Route("/deletion-requests", func(d chi.Router) {
			d.Use(middleware.RateLimiter(rdb, 30, time.Minute, 5*time.Minute, "deletion_requests"))

			d.Post("/", drHandler.Create)
			d.Get("/", drHandler.GetAll)
			d.Get("/{id}", drHandler.GetByID)
		})
	})

	// ---- Admin only ----
	r.Group(func(ar chi.Router) {
		ar.Use(auth.Require([]string{"admin"}))

		ar.Get("/auth/users", authHandler.GetAllUsers)
		ar.Delete("/auth/users/{id}", authHandler.DeleteUser)
		ar.Put("/auth/users/{id}/role", authHandler.UpdateUserRole)

		ar.Delete("/transactions/{id}", trxHandler.Delete)

		ar.Get("/deletion-requests/pending/count", drHandler.GetPendingCount)
		ar.Post("/deletion-requests/{id}/approve", drHandler.Approve)
		ar.Post("/deletion-requests/{id}/reject", drHandler.Reject)
	})

	return r
}
