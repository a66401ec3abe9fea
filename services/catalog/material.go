package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"
	"github.com/openlearn/openlearn-backend/blobstore"
	"github.com/openlearn/openlearn-backend/models"
	"github.com/openlearn/openlearn-backend/repositories"
	"github.com/openlearn/openlearn-backend/services"
	"go.uber.org/zap"
)

// UploadMaterialInput carries a new material's metadata and content
type UploadMaterialInput struct {
	Title        string
	FileName     string
	MaterialType models.MaterialType
	Description  string
	Content      io.Reader
}

// materialKey builds the blob key for a material upload. The UUID
// prefix keeps distinct uploads of the same file name apart.
func materialKey(fileName string) string {
	return fmt.Sprintf("materials/%s-%s", uuid.New().String(), path.Base(fileName))
}

// CreateMaterial uploads a file and records it under the lesson.
// Author only. The blob is written first and removed again if the
// record cannot be stored, so a failed create leaves nothing behind.
func (s *Service) CreateMaterial(ctx context.Context, principal *models.User, lessonID uuid.UUID, input UploadMaterialInput) (*models.Material, error) {
	lesson, err := s.getLessonRecord(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	course, err := s.courseOfLesson(ctx, lesson)
	if err != nil {
		return nil, err
	}

	if d := s.access.CanEditCourse(principal, course); !d.Allowed {
		return nil, d.Err()
	}

	if input.Title == "" {
		return nil, services.ErrInvalidInput.WithDetail("field", "title")
	}
	if input.FileName == "" {
		return nil, services.ErrInvalidInput.WithDetail("field", "file_name")
	}
	if !models.ValidMaterialType(input.MaterialType) {
		return nil, services.ErrInvalidMaterialType
	}
	if input.Content == nil {
		return nil, services.ErrInvalidInput.WithDetail("field", "content")
	}

	key := materialKey(input.FileName)
	if err := s.blobs.Save(ctx, key, input.Content); err != nil {
		return nil, services.NewDomainError(services.ErrorTypeBlobIO, "failed to store file", err)
	}

	material := models.NewMaterial(lesson.ID, input.Title, key, path.Base(input.FileName), input.MaterialType, input.Description)

	if err := s.materials.Create(ctx, material); err != nil {
		// The record is the source of truth; without it the blob is
		// unreachable, so take it back out.
		if delErr := s.blobs.Delete(ctx, key); delErr != nil && !errors.Is(delErr, blobstore.ErrNotFound) {
			s.logger.Warn("failed to remove blob after record failure",
				zap.String("key", key),
				zap.Error(delErr))
		}
		return nil, services.WrapInternal("failed to create material", err)
	}

	s.logger.Info("material created",
		zap.String("id", material.ID.String()),
		zap.String("lesson_id", lesson.ID.String()),
		zap.String("file_key", key))
	return material, nil
}

// GetMaterial loads a material's metadata for the principal, behind
// the download gate
func (s *Service) GetMaterial(ctx context.Context, principal *models.User, materialID uuid.UUID) (*models.Material, error) {
	material, course, err := s.materialWithCourse(ctx, materialID)
	if err != nil {
		return nil, err
	}

	d, err := s.access.CanDownloadMaterial(ctx, principal, course)
	if err != nil {
		return nil, err
	}
	if !d.Allowed {
		return nil, d.Err()
	}

	return material, nil
}

// DownloadMaterial opens the material's content stream for the
// principal. The caller closes the reader. Blob store trouble maps to
// the blob_io taxonomy so the handler can answer 502 rather than 500.
func (s *Service) DownloadMaterial(ctx context.Context, principal *models.User, materialID uuid.UUID) (*models.Material, io.ReadCloser, error) {
	material, err := s.GetMaterial(ctx, principal, materialID)
	if err != nil {
		return nil, nil, err
	}

	r, err := s.blobs.Open(ctx, material.FileKey)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, nil, services.ErrBlobNotFound.WithDetail("key", material.FileKey)
		}
		return nil, nil, services.NewDomainError(services.ErrorTypeBlobIO, "failed to open file", err)
	}

	return material, r, nil
}

// UpdateMaterial applies the update to a material's metadata. Author
// only. The file itself cannot change here; replacing content is
// delete-and-reupload.
func (s *Service) UpdateMaterial(ctx context.Context, principal *models.User, materialID uuid.UUID, update models.MaterialUpdate) (*models.Material, error) {
	material, course, err := s.materialWithCourse(ctx, materialID)
	if err != nil {
		return nil, err
	}

	if d := s.access.CanEditCourse(principal, course); !d.Allowed {
		return nil, d.Err()
	}

	if update.MaterialType != nil && !models.ValidMaterialType(*update.MaterialType) {
		return nil, services.ErrInvalidMaterialType
	}
	if update.Title != nil && *update.Title == "" {
		return nil, services.ErrInvalidInput.WithDetail("field", "title")
	}

	update.Apply(material)

	if err := s.materials.Update(ctx, material); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrMaterialNotFound
		}
		return nil, services.WrapInternal("failed to update material", err)
	}

	s.logger.Info("material updated", zap.String("id", material.ID.String()))
	return material, nil
}

// DeleteMaterial removes a material. The record goes first; only then
// is the blob released. If the blob deletion fails the material is
// still gone and the response carries cleanup_pending, never a hard
// failure.
func (s *Service) DeleteMaterial(ctx context.Context, principal *models.User, materialID uuid.UUID) (*DeleteResult, error) {
	material, course, err := s.materialWithCourse(ctx, materialID)
	if err != nil {
		return nil, err
	}

	if d := s.access.CanEditCourse(principal, course); !d.Allowed {
		return nil, d.Err()
	}

	if err := s.materials.Delete(ctx, material.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrMaterialNotFound
		}
		return nil, services.WrapInternal("failed to delete material", err)
	}

	result := s.releaseBlobs(ctx, []string{material.FileKey})

	s.logger.Info("material deleted",
		zap.String("id", material.ID.String()),
		zap.Bool("cleanup_pending", result.CleanupPending))
	return result, nil
}

// materialWithCourse loads a material together with its owning course
func (s *Service) materialWithCourse(ctx context.Context, materialID uuid.UUID) (*models.Material, *models.Course, error) {
	material, err := s.materials.GetByID(ctx, materialID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, services.ErrMaterialNotFound
		}
		return nil, nil, services.WrapInternal("failed to load material", err)
	}

	lesson, err := s.getLessonRecord(ctx, material.LessonID)
	if err != nil {
		return nil, nil, err
	}

	course, err := s.courseOfLesson(ctx, lesson)
	if err != nil {
		return nil, nil, err
	}

	return material, course, nil
}
