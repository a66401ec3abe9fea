package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/openlearn/openlearn-backend/blobstore"
	"github.com/openlearn/openlearn-backend/models"
	"github.com/openlearn/openlearn-backend/repositories"
	"github.com/openlearn/openlearn-backend/services"
	"github.com/openlearn/openlearn-backend/services/access"
	"go.uber.org/zap"
)

// DefaultPageSize caps course listings when the caller does not ask for
// a specific page size
const DefaultPageSize = 20

// Service handles course, lesson and material management. Every
// content-facing operation consults the access core before touching
// data; mutations with multi-step effects run inside one transaction.
type Service struct {
	courses     repositories.CourseRepository
	lessons     repositories.LessonRepository
	materials   repositories.MaterialRepository
	access      *access.Service
	txMgr       repositories.TransactionManager
	blobs       blobstore.Store
	logger      *zap.Logger
}

// NewService creates a new catalog Service
func NewService(
	courses repositories.CourseRepository,
	lessons repositories.LessonRepository,
	materials repositories.MaterialRepository,
	accessSvc *access.Service,
	txMgr repositories.TransactionManager,
	blobs blobstore.Store,
	logger *zap.Logger,
) *Service {
	return &Service{
		courses:   courses,
		lessons:   lessons,
		materials: materials,
		access:    accessSvc,
		txMgr:     txMgr,
		blobs:     blobs,
		logger:    logger,
	}
}

// DeleteResult reports the outcome of a delete that also releases
// blobs. When the records are gone but one or more blob deletions
// failed, the delete still succeeds and CleanupPending flags the keys
// left behind for a later sweep. Records are the source of truth; an
// orphaned blob is waste, a dangling record is a broken page.
type DeleteResult struct {
	CleanupPending bool     `json:"cleanup_pending"`
	PendingKeys    []string `json:"pending_keys,omitempty"`
}

// releaseBlobs deletes the given blob keys, collecting the ones that
// could not be released. A missing blob counts as released.
func (s *Service) releaseBlobs(ctx context.Context, keys []string) *DeleteResult {
	result := &DeleteResult{}
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.blobs.Delete(ctx, key); err != nil && !errors.Is(err, blobstore.ErrNotFound) {
			s.logger.Warn("blob release failed, leaving for cleanup",
				zap.String("key", key),
				zap.Error(err))
			result.CleanupPending = true
			result.PendingKeys = append(result.PendingKeys, key)
		}
	}
	return result
}

// courseOfLesson loads the course owning a lesson. Repository misses
// come back as taxonomy errors.
func (s *Service) courseOfLesson(ctx context.Context, lesson *models.Lesson) (*models.Course, error) {
	course, err := s.courses.GetByID(ctx, lesson.CourseID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrCourseNotFound
		}
		return nil, services.WrapInternal("failed to load course", err)
	}
	return course, nil
}

// getLessonRecord loads a lesson, mapping a miss to the taxonomy
func (s *Service) getLessonRecord(ctx context.Context, id uuid.UUID) (*models.Lesson, error) {
	lesson, err := s.lessons.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrLessonNotFound
		}
		return nil, services.WrapInternal("failed to load lesson", err)
	}
	return lesson, nil
}
