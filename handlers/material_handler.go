package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/openlearn/openlearn-backend/middleware"
	"github.com/openlearn/openlearn-backend/models"
	"github.com/openlearn/openlearn-backend/services/catalog"
	"github.com/openlearn/openlearn-backend/utils"
	"go.uber.org/zap"
)

// maxUploadSize caps multipart uploads at 64 MiB
const maxUploadSize = 64 << 20

// MaterialHandler handles material-related HTTP requests
type MaterialHandler struct {
	catalog *catalog.Service
	logger  *zap.Logger
}

// NewMaterialHandler creates a new MaterialHandler
func NewMaterialHandler(catalog *catalog.Service, logger *zap.Logger) *MaterialHandler {
	return &MaterialHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// HandleUploadMaterial handles POST /api/v1/lessons/{lessonID}/materials.
// Expects a multipart form with a "file" part plus title, material_type
// and optional description fields.
func (h *MaterialHandler) HandleUploadMaterial(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())

	lessonID, err := uuid.Parse(chi.URLParam(r, "lessonID"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid lesson ID format", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid multipart form", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		_ = utils.WriteBadRequest(w, "Missing file part", nil)
		return
	}
	defer file.Close()

	material, err := h.catalog.CreateMaterial(r.Context(), principal, lessonID, catalog.UploadMaterialInput{
		Title:        r.FormValue("title"),
		FileName:     header.Filename,
		MaterialType: models.MaterialType(r.FormValue("material_type")),
		Description:  r.FormValue("description"),
		Content:      file,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("material uploaded",
		zap.String("material_id", material.ID.String()),
		zap.String("lesson_id", lessonID.String()),
		zap.String("file_name", material.FileName))

	_ = utils.WriteCreated(w, material)
}

// HandleGetMaterial handles GET /api/v1/materials/{id}
func (h *MaterialHandler) HandleGetMaterial(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())

	materialID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid material ID format", nil)
		return
	}

	material, err := h.catalog.GetMaterial(r.Context(), principal, materialID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, material)
}

// HandleDownloadMaterial handles GET /api/v1/materials/{id}/download.
// Streams the blob straight to the client; the access check runs
// before the first byte is read.
func (h *MaterialHandler) HandleDownloadMaterial(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())

	materialID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid material ID format", nil)
		return
	}

	material, content, err := h.catalog.DownloadMaterial(r.Context(), principal, materialID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	defer content.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", material.FileName))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, content); err != nil {
		// Headers are already out; all we can do is log
		h.logger.Error("material stream interrupted",
			zap.String("material_id", materialID.String()),
			zap.Error(err))
	}
}

// HandleUpdateMaterial handles PUT /api/v1/materials/{id}
func (h *MaterialHandler) HandleUpdateMaterial(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())

	materialID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid material ID format", nil)
		return
	}

	var update models.MaterialUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	material, err := h.catalog.UpdateMaterial(r.Context(), principal, materialID, update)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, material)
}

// HandleDeleteMaterial handles DELETE /api/v1/materials/{id}
func (h *MaterialHandler) HandleDeleteMaterial(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())

	materialID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid material ID format", nil)
		return
	}

	result, err := h.catalog.DeleteMaterial(r.Context(), principal, materialID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	if result.CleanupPending {
		h.logger.Warn("material deleted with blob cleanup pending",
			zap.String("material_id", materialID.String()),
			zap.Strings("pending_keys", result.PendingKeys))
	}

	_ = utils.WriteOK(w, result)
}
