package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/openlearn/openlearn-backend/middleware"
	"github.com/openlearn/openlearn-backend/models"
	"github.com/openlearn/openlearn-backend/services/catalog"
	"github.com/openlearn/openlearn-backend/utils"
	"go.uber.org/zap"
)

// CreateCourseRequest represents a request to create a course
type CreateCourseRequest struct {
	Title       string            `json:"title" validate:"required"`
	Slug        string            `json:"slug,omitempty"`
	Description string            `json:"description,omitempty"`
	Difficulty  models.Difficulty `json:"difficulty" validate:"required,oneof=beginner intermediate advanced"`
}

// CourseHandler handles course-related HTTP requests
type CourseHandler struct {
	catalog *catalog.Service
	logger  *zap.Logger
}

// NewCourseHandler creates a new CourseHandler
func NewCourseHandler(catalog *catalog.Service, logger *zap.Logger) *CourseHandler {
	return &CourseHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// HandleListCourses handles GET /api/v1/courses. With ?q= it searches
// published courses, otherwise it lists them newest first.
func (h *CourseHandler) HandleListCourses(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	var (
		courses []*models.Course
		err     error
	)
	if q := r.URL.Query().Get("q"); q != "" {
		courses, err = h.catalog.SearchCourses(r.Context(), q, limit, offset)
	} else {
		courses, err = h.catalog.ListCourses(r.Context(), limit, offset)
	}
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, courses)
}

// HandleGetCourse handles GET /api/v1/courses/{slug}
func (h *CourseHandler) HandleGetCourse(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	slug := chi.URLParam(r, "slug")

	view, err := h.catalog.GetCourse(r.Context(), principal, slug)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, view)
}

// HandleCreateCourse handles POST /api/v1/courses
func (h *CourseHandler) HandleCreateCourse(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())

	var req CreateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	course, err := h.catalog.CreateCourse(r.Context(), principal, catalog.CreateCourseInput{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		Difficulty:  req.Difficulty,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("course created",
		zap.String("course_id", course.ID.String()),
		zap.String("slug", course.Slug))

	_ = utils.WriteCreated(w, course)
}

// HandleUpdateCourse handles PUT /api/v1/courses/{slug}. The body only
// names mutable fields; slug and author cannot appear in it.
func (h *CourseHandler) HandleUpdateCourse(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	slug := chi.URLParam(r, "slug")

	var update models.CourseUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	course, err := h.catalog.UpdateCourse(r.Context(), principal, slug, update)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, course)
}

// HandleDeleteCourse handles DELETE /api/v1/courses/{slug}. Returns 200
// with the delete result rather than 204: when blob cleanup failed the
// result says so via cleanup_pending.
func (h *CourseHandler) HandleDeleteCourse(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	slug := chi.URLParam(r, "slug")

	result, err := h.catalog.DeleteCourse(r.Context(), principal, slug)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	if result.CleanupPending {
		h.logger.Warn("course deleted with blob cleanup pending",
			zap.String("slug", slug),
			zap.Strings("pending_keys", result.PendingKeys))
	}

	_ = utils.WriteOK(w, result)
}

// HandleListTeaching handles GET /api/v1/me/teaching
func (h *CourseHandler) HandleListTeaching(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())

	courses, err := h.catalog.ListTeaching(r.Context(), principal)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, courses)
}

// pagination reads limit and offset query parameters. Out-of-range
// values fall back to the service defaults.
func pagination(r *http.Request) (limit, offset int) {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			offset = n
		}
	}
	return limit, offset
}
