package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi"

	"github.com/frahmantamala/insight-pulse/api"
	"github.com/frahmantamala/insight-pulse/internal/auth"
	"github.com/frahmantamala/insight-pulse/internal/department"
	"github.com/frahmantamala/insight-pulse/internal/permission"
	"github.com/frahmantamala/insight-pulse/internal/survey"
	"github.com/frahmantamala/insight-pulse/internal/transport/middleware"
	"github.com/frahmantamala/insight-pulse/internal/transport/swagger"
	"github.com/frahmantamala/insight-pulse/internal/user"
)

type Handlers struct {
	Auth       *auth.Handler
	Department *department.Handler
	Permission *permission.Handler
	Survey     *survey.Handler
	User       *user.Handler
}

type Options struct {
	AllowedOrigins string
	// OpenAPI enables request validation against the document when set.
	OpenAPI *openapi3.T
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, opts Options, logger *slog.Logger) error {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.Actor)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	if opts.OpenAPI != nil {
		validate, err := middleware.RequestValidator(opts.OpenAPI, logger)
		if err != nil {
			return err
		}
		router.Use(validate)
	}

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(api.Spec)
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	if h.Auth != nil {
		router.Post("/login", h.Auth.Login)
	}

	router.Route("/api", func(r chi.Router) {
		if h.Department != nil {
			r.Get("/departments", h.Department.GetDepartments)
			r.Post("/departments", h.Department.CreateDepartment)
		}

		if h.Permission != nil {
			r.Route("/permissions", func(pr chi.Router) {
				pr.Get("/", h.Permission.GetPermissions)
				pr.Post("/save", h.Permission.SavePermissions)
				pr.Post("/mail-alert", h.Permission.MailAlert)
			})
		}

		if h.Survey != nil {
			r.Route("/surveys/{id}", func(sr chi.Router) {
				sr.Get("/", h.Survey.GetSurvey)
				sr.Post("/submit_response", h.Survey.SubmitResponse)
			})
		}

		if h.User != nil {
			r.Get("/users", h.User.GetUsers)
		}

		r.Route("/v1", func(vr chi.Router) {
			vr.Get("/health", healthHandler.healthCheckHandler)
			vr.Get("/ping", healthHandler.pingHandler)
		})
	})

	return nil
}
