package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/openlearn/openlearn-backend/middleware"
	"github.com/openlearn/openlearn-backend/models"
	"github.com/openlearn/openlearn-backend/services/catalog"
	"github.com/openlearn/openlearn-backend/utils"
	"go.uber.org/zap"
)

// CreateLessonRequest represents a request to add a lesson to a course
type CreateLessonRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content,omitempty"`
	Order   int    `json:"order" validate:"gte=0"`
}

// LessonHandler handles lesson-related HTTP requests
type LessonHandler struct {
	catalog *catalog.Service
	logger  *zap.Logger
}

// NewLessonHandler creates a new LessonHandler
func NewLessonHandler(catalog *catalog.Service, logger *zap.Logger) *LessonHandler {
	return &LessonHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// HandleListLessons handles GET /api/v1/courses/{slug}/lessons. Titles
// are visible to anyone who can see the course; content stays behind
// the enrollment gate.
func (h *LessonHandler) HandleListLessons(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	slug := chi.URLParam(r, "slug")

	lessons, err := h.catalog.ListLessons(r.Context(), principal, slug)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, lessons)
}

// HandleGetLesson handles GET /api/v1/courses/{slug}/lessons/{lessonID}.
// The response carries the lesson content and its materials.
func (h *LessonHandler) HandleGetLesson(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	slug := chi.URLParam(r, "slug")

	lessonID, err := uuid.Parse(chi.URLParam(r, "lessonID"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid lesson ID format", nil)
		return
	}

	view, err := h.catalog.GetLesson(r.Context(), principal, slug, lessonID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, view)
}

// HandleCreateLesson handles POST /api/v1/courses/{slug}/lessons
func (h *LessonHandler) HandleCreateLesson(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	slug := chi.URLParam(r, "slug")

	var req CreateLessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	lesson, err := h.catalog.CreateLesson(r.Context(), principal, slug, catalog.CreateLessonInput{
		Title:   req.Title,
		Content: req.Content,
		Order:   req.Order,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("lesson created",
		zap.String("lesson_id", lesson.ID.String()),
		zap.String("course_slug", slug))

	_ = utils.WriteCreated(w, lesson)
}

// HandleUpdateLesson handles PUT /api/v1/courses/{slug}/lessons/{lessonID}
func (h *LessonHandler) HandleUpdateLesson(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())

	lessonID, err := uuid.Parse(chi.URLParam(r, "lessonID"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid lesson ID format", nil)
		return
	}

	var update models.LessonUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&update); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	lesson, err := h.catalog.UpdateLesson(r.Context(), principal, lessonID, update)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, lesson)
}

// HandleDeleteLesson handles DELETE /api/v1/courses/{slug}/lessons/{lessonID}
func (h *LessonHandler) HandleDeleteLesson(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())

	lessonID, err := uuid.Parse(chi.URLParam(r, "lessonID"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid lesson ID format", nil)
		return
	}

	result, err := h.catalog.DeleteLesson(r.Context(), principal, lessonID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	if result.CleanupPending {
		h.logger.Warn("lesson deleted with blob cleanup pending",
			zap.String("lesson_id", lessonID.String()),
			zap.Strings("pending_keys", result.PendingKeys))
	}

	_ = utils.WriteOK(w, result)
}
