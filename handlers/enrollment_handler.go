package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/openlearn/openlearn-backend/middleware"
	"github.com/openlearn/openlearn-backend/services/catalog"
	"github.com/openlearn/openlearn-backend/services/enrollment"
	"github.com/openlearn/openlearn-backend/utils"
	"go.uber.org/zap"
)

// EnrollmentHandler handles enrollment-related HTTP requests
type EnrollmentHandler struct {
	catalog     *catalog.Service
	enrollments *enrollment.Service
	logger      *zap.Logger
}

// NewEnrollmentHandler creates a new EnrollmentHandler
func NewEnrollmentHandler(catalog *catalog.Service, enrollments *enrollment.Service, logger *zap.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		catalog:     catalog,
		enrollments: enrollments,
		logger:      logger,
	}
}

// HandleEnroll handles POST /api/v1/courses/{slug}/enroll. Enrolling
// twice returns the same enrollment with a 200 instead of a 201.
func (h *EnrollmentHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	slug := chi.URLParam(r, "slug")

	// Resolving through the catalog keeps the draft-course behavior
	// consistent: a course the caller cannot see reads as not found
	view, err := h.catalog.GetCourse(r.Context(), principal, slug)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	enr, created, err := h.enrollments.Enroll(r.Context(), principal, view.Course.ID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("enrollment recorded",
		zap.String("user_id", principal.ID.String()),
		zap.String("course_id", view.Course.ID.String()))

	// The upsert itself reports creation, so concurrent first
	// enrollments answer one 201 and the rest 200
	if created {
		_ = utils.WriteCreated(w, enr)
		return
	}
	_ = utils.WriteOK(w, enr)
}

// HandleUnenroll handles DELETE /api/v1/courses/{slug}/enroll
func (h *EnrollmentHandler) HandleUnenroll(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	slug := chi.URLParam(r, "slug")

	view, err := h.catalog.GetCourse(r.Context(), principal, slug)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	if err := h.enrollments.Unenroll(r.Context(), principal, view.Course.ID); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	utils.WriteNoContent(w)
}

// HandleMyCourses handles GET /api/v1/me/courses
func (h *EnrollmentHandler) HandleMyCourses(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())

	enrollments, err := h.enrollments.ListForUser(r.Context(), principal)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, enrollments)
}
