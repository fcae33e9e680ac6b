package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/migration-tracker/internal/auth"
	"github.com/frahmantamala/migration-tracker/internal/dynrecord"
	"github.com/frahmantamala/migration-tracker/internal/fielddef"
	"github.com/frahmantamala/migration-tracker/internal/transport/middleware"
	"github.com/frahmantamala/migration-tracker/internal/transport/swagger"
	"github.com/frahmantamala/migration-tracker/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, authHandler *auth.Handler, guard *auth.ModuleGuard, userHandler *user.Handler, fieldHandler *fielddef.Handler, recordHandler *dynrecord.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		// Health check route
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		if authHandler != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", authHandler.Login)
				sr.Post("/refresh", authHandler.RefreshToken)
				sr.Post("/logout", authHandler.Logout)
			})
		}

		if authHandler != nil {
			// Protected routes that require authentication
			r.Group(func(pr chi.Router) {
				pr.Use(authHandler.AuthMiddleware)

				// Current user
				if userHandler != nil {
					pr.Get("/users/me", userHandler.GetCurrentUser)
				}

				// Module schema routes
				if fieldHandler != nil {
					pr.Route("/modules", func(mr chi.Router) {
						mr.Get("/", fieldHandler.ListGroups)
						// ListFields checks the caller's view grant itself
						mr.Get("/{groupID}/fields", fieldHandler.ListFields)

						// Schema administration
						mr.Group(func(ar chi.Router) {
							ar.Use(guard.RequireAdmin())
							ar.Post("/", fieldHandler.CreateGroup)
							ar.Post("/{groupID}/fields", fieldHandler.CreateField)
						})
					})

					pr.Group(func(ar chi.Router) {
						ar.Use(guard.RequireAdmin())
						ar.Patch("/fields/{fieldID}", fieldHandler.UpdateField)
						ar.Delete("/fields/{fieldID}", fieldHandler.DeactivateField)
					})
				}

				// Grant administration
				if userHandler != nil {
					pr.Group(func(ar chi.Router) {
						ar.Use(guard.RequireAdmin())
						ar.Route("/admin/users/{userID}/grants", func(gr chi.Router) {
							gr.Get("/", userHandler.ListGrants)
							gr.Put("/{moduleName}", userHandler.UpsertGrant)
							gr.Delete("/{moduleName}", userHandler.RevokeGrant)
						})
					})
				}

				// Dynamic record routes; the gate service authorizes every
				// operation against the record's module group
				if recordHandler != nil {
					pr.Route("/projects/{projectID}/modules/{groupID}/records", func(rr chi.Router) {
						rr.Post("/", recordHandler.SubmitRecord)
						rr.Get("/", recordHandler.ListRecords)
						rr.Get("/{recordID}", recordHandler.GetRecord)
						rr.Patch("/{recordID}", recordHandler.UpdateRecord)
						rr.Post("/{recordID}/finalize", recordHandler.FinalizeRecord)
						rr.Delete("/{recordID}", recordHandler.DeleteRecord)
					})
				}
			})
		}
	})
}
