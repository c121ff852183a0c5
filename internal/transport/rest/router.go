package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/workforce-attendance/internal/attendance"
	"github.com/frahmantamala/workforce-attendance/internal/auth"
	"github.com/frahmantamala/workforce-attendance/internal/permission"
	"github.com/frahmantamala/workforce-attendance/internal/timesheet"
	"github.com/frahmantamala/workforce-attendance/internal/transport/middleware"
	"github.com/frahmantamala/workforce-attendance/internal/transport/openapi"
	"github.com/frahmantamala/workforce-attendance/internal/transport/swagger"
	"github.com/frahmantamala/workforce-attendance/internal/user"
	"github.com/go-chi/chi"
)

const APIPrefix = "/api/v1"

// Handlers groups the HTTP handlers mounted under the API prefix. A nil
// handler leaves its routes unregistered.
type Handlers struct {
	Auth       *auth.Handler
	User       *user.Handler
	Attendance *attendance.Handler
	Timesheet  *timesheet.Handler
}

type RouterOptions struct {
	AllowedOrigins string
	OpenAPIPath    string
	Validator      *openapi.Validator
	// Tracing wraps the whole router when set.
	Tracing func(http.Handler) http.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, rbac *permission.RBACAuthorization, opts RouterOptions, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	if opts.Tracing != nil {
		router.Use(opts.Tracing)
	}
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))
	if opts.Validator != nil {
		router.Use(opts.Validator.Middleware)
	}

	// Serve OpenAPI spec at root (outside API prefix)
	if opts.OpenAPIPath != "" {
		router.Get(swagger.SpecURL, func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, opts.OpenAPIPath)
		})
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route(APIPrefix, func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.Auth == nil {
			return
		}

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.Post("/logout", h.Auth.Logout)
		})

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			if h.User != nil {
				pr.Get("/users/me", h.User.GetCurrentUser)
				pr.Get("/users/me/permissions", h.User.GetMyPermissions)

				pr.Group(func(dr chi.Router) {
					dr.Use(rbac.Require(user.PermissionDirectory, permission.ActionRead))
					dr.Get("/users", h.User.ListUsers)
					dr.Get("/users/{id}/employment", h.User.GetEmployment)
				})
			}

			if h.Attendance != nil {
				pr.Get("/users/{id}/attendance", h.Attendance.GetReport)
			}

			if h.Timesheet != nil {
				pr.Get("/users/{id}/timesheet-actions", h.Timesheet.GetDayActions)

				pr.Route("/timesheets", func(tr chi.Router) {
					tr.Get("/", h.Timesheet.ListTimesheets)
					tr.Post("/", h.Timesheet.CreateTimesheet)
					tr.Get("/{id}", h.Timesheet.GetTimesheet)
					tr.Put("/{id}", h.Timesheet.UpdateTimesheet)
					tr.Delete("/{id}", h.Timesheet.DeleteTimesheet)
					tr.Get("/{id}/actions", h.Timesheet.GetActions)

					// reviewer rights depend on the timesheet, so the service decides
					tr.Post("/{id}/approve", h.Timesheet.ApproveTimesheet)
					tr.Post("/{id}/request-changes", h.Timesheet.RequestChanges)
					tr.Post("/{id}/reject", h.Timesheet.RejectTimesheet)
					tr.Post("/{id}/resubmit", h.Timesheet.ResubmitTimesheet)
				})
			}
		})
	})
}
