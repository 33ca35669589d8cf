// ============================================================================
// internal/gateway/routes.go
// Chi router, middleware stack, and route definitions
// ============================================================================

package gateway

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"acadsys/internal/auth"
	"acadsys/internal/bulk"
	"acadsys/internal/config"
	"acadsys/internal/gateway/handlers"
	"acadsys/internal/gateway/util"
	"acadsys/internal/grading"
	"acadsys/internal/model"
	"acadsys/internal/schedule"
)

// Services bundles the domain services the gateway fronts
type Services struct {
	Auth       *auth.Service
	Ledger     *grading.Ledger
	Schedule   *schedule.Service
	Reconciler *bulk.Reconciler
}

// SetupRoutes configures the Chi router, middleware, and route handlers.
func SetupRoutes(cfg *config.Config, services *Services) *chi.Mux {
	r := chi.NewRouter()

	// 1. Global Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	// 2. Initialize Handlers
	authHandler := &handlers.AuthHandler{Auth: services.Auth}
	gradeHandler := &handlers.GradeHandler{Ledger: services.Ledger}
	scheduleHandler := &handlers.ScheduleHandler{Schedule: services.Schedule}
	bulkHandler := &handlers.BulkHandler{Reconciler: services.Reconciler}

	// 3. Define Routes (grouped by prefix)
	r.Route("/api", func(r chi.Router) {

		// --- Public Routes ---

		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)

		// --- Protected Routes (Require Valid Token) ---
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(services.Auth))

			// Auth (Authenticated Only)
			r.Get("/auth/validate", authHandler.ValidateToken)
			r.Post("/auth/change-password", authHandler.ChangePassword)

			// Grade summaries (any authenticated role)
			r.Get("/students/{student_id}/summary", gradeHandler.SemesterSummary)

			// Grade Management (Faculty)
			r.Group(func(r chi.Router) {
				r.Use(RequireRole(model.RoleTeacher, model.RoleAdmin))

				r.Route("/grade-items", func(r chi.Router) {
					r.Post("/", gradeHandler.CreateGradeItem)
					r.Put("/{id}/weight", gradeHandler.UpdateGradeItemWeight)
					r.Delete("/{id}", gradeHandler.DeleteGradeItem)
				})

				r.Route("/grades", func(r chi.Router) {
					r.Post("/", gradeHandler.RecordScore)
					r.Post("/publish/{course_id}", gradeHandler.PublishGrades)
					r.Post("/import/{grade_item_id}", bulkHandler.ImportGrades)
					r.Get("/stats/{course_id}", gradeHandler.CourseStats)
				})

				// Timetable
				r.Route("/schedules", func(r chi.Router) {
					r.Post("/", scheduleHandler.CreateSchedule)
					r.Get("/", scheduleHandler.ListRoomDay)
					r.Delete("/{id}", scheduleHandler.DeleteSchedule)
				})
			})

			// Admin Management
			r.Route("/admin", func(r chi.Router) {
				r.Use(RequireRole(model.RoleAdmin))

				r.Post("/import/students", bulkHandler.ImportStudents)
			})
		})
	})

	return r
}

// AuthMiddleware validates the bearer token and injects the caller identity
// into the request context.
func AuthMiddleware(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, err := util.ExtractToken(r)
			if err != nil {
				util.WriteJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization token required")
				return
			}

			identity, err := authService.Validate(tokenStr)
			if err != nil {
				util.WriteJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(handlers.WithIdentity(r.Context(), identity)))
		})
	}
}

// RequireRole restricts a route subtree to callers holding one of the roles.
// It must run after AuthMiddleware.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := handlers.IdentityFromContext(r.Context())
			if !ok {
				util.WriteJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization token required")
				return
			}

			for _, role := range roles {
				if identity.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			util.WriteJSONError(w, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions")
		})
	}
}
