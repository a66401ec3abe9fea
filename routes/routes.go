package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/openlearn/openlearn-backend/app"
	"github.com/openlearn/openlearn-backend/models"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoints
	r.Get("/healthz", deps.HealthHandler.HandleHealth)
	r.Get("/readyz", deps.HealthHandler.HandleReadiness)

	authMW := deps.AuthMiddleware

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", deps.AuthHandler.HandleRegister)
		r.Post("/auth/login", deps.AuthHandler.HandleLogin)
		r.Post("/auth/logout", deps.AuthHandler.HandleLogout)

		r.Route("/courses", func(r chi.Router) {
			r.With(authMW.OptionalAuth).Get("/", deps.CourseHandler.HandleListCourses)
			r.With(authMW.RequireAuth, authMW.RequireRole(models.RoleAuthor)).Post("/", deps.CourseHandler.HandleCreateCourse)

			r.Route("/{slug}", func(r chi.Router) {
				r.With(authMW.OptionalAuth).Get("/", deps.CourseHandler.HandleGetCourse)
				r.With(authMW.RequireAuth).Put("/", deps.CourseHandler.HandleUpdateCourse)
				r.With(authMW.RequireAuth).Delete("/", deps.CourseHandler.HandleDeleteCourse)

				r.With(authMW.RequireAuth).Post("/enroll", deps.EnrollmentHandler.HandleEnroll)
				r.With(authMW.RequireAuth).Delete("/enroll", deps.EnrollmentHandler.HandleUnenroll)

				r.Route("/lessons", func(r chi.Router) {
					r.With(authMW.OptionalAuth).Get("/", deps.LessonHandler.HandleListLessons)
					r.With(authMW.RequireAuth).Post("/", deps.LessonHandler.HandleCreateLesson)
					r.With(authMW.RequireAuth).Get("/{lessonID}", deps.LessonHandler.HandleGetLesson)
					r.With(authMW.RequireAuth).Put("/{lessonID}", deps.LessonHandler.HandleUpdateLesson)
					r.With(authMW.RequireAuth).Delete("/{lessonID}", deps.LessonHandler.HandleDeleteLesson)
				})
			})
		})

		r.With(authMW.RequireAuth).Post("/lessons/{lessonID}/materials", deps.MaterialHandler.HandleUploadMaterial)
		r.Route("/materials/{id}", func(r chi.Router) {
			r.Use(authMW.RequireAuth)
			r.Get("/", deps.MaterialHandler.HandleGetMaterial)
			r.Get("/download", deps.MaterialHandler.HandleDownloadMaterial)
			r.Put("/", deps.MaterialHandler.HandleUpdateMaterial)
			r.Delete("/", deps.MaterialHandler.HandleDeleteMaterial)
		})

		r.Route("/me", func(r chi.Router) {
			r.Use(authMW.RequireAuth)
			r.Get("/", deps.AuthHandler.HandleMe)
			r.Get("/courses", deps.EnrollmentHandler.HandleMyCourses)
			r.With(authMW.RequireRole(models.RoleAuthor)).Get("/teaching", deps.CourseHandler.HandleListTeaching)
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"endpoint not found"}`))
	})

	return r
}
