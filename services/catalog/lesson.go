package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/openlearn/openlearn-backend/models"
	"github.com/openlearn/openlearn-backend/repositories"
	"github.com/openlearn/openlearn-backend/services"
	"go.uber.org/zap"
)

// CreateLessonInput carries the fields for a new lesson
type CreateLessonInput struct {
	Title   string
	Content string
	Order   int
}

// CreateLesson appends a lesson to the course identified by slug.
// Author only.
func (s *Service) CreateLesson(ctx context.Context, principal *models.User, courseSlug string, input CreateLessonInput) (*models.Lesson, error) {
	course, err := s.courses.GetBySlug(ctx, courseSlug)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrCourseNotFound
		}
		return nil, services.WrapInternal("failed to load course", err)
	}

	if d := s.access.CanEditCourse(principal, course); !d.Allowed {
		return nil, d.Err()
	}

	if input.Title == "" {
		return nil, services.ErrInvalidInput.WithDetail("field", "title")
	}
	if input.Order < 0 {
		return nil, services.ErrInvalidInput.WithDetail("field", "order")
	}

	lesson := models.NewLesson(course.ID, input.Title, input.Content, input.Order)

	if err := s.lessons.Create(ctx, lesson); err != nil {
		return nil, services.WrapInternal("failed to create lesson", err)
	}

	s.logger.Info("lesson created",
		zap.String("id", lesson.ID.String()),
		zap.String("course_id", course.ID.String()))
	return lesson, nil
}

// LessonView is a lesson with the materials shown alongside its content
type LessonView struct {
	Lesson    *models.Lesson     `json:"lesson"`
	Materials []*models.Material `json:"materials"`
}

// GetLesson loads a lesson of the course for the principal, with its
// materials. The enrollment gate applies: course viewers who are
// neither author nor enrolled get the must-enroll denial rather than
// the content.
func (s *Service) GetLesson(ctx context.Context, principal *models.User, courseSlug string, lessonID uuid.UUID) (*LessonView, error) {
	course, err := s.courses.GetBySlug(ctx, courseSlug)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrCourseNotFound
		}
		return nil, services.WrapInternal("failed to load course", err)
	}

	d, err := s.access.CanViewLesson(ctx, principal, course)
	if err != nil {
		return nil, err
	}
	if !d.Allowed {
		return nil, d.Err()
	}

	lesson, err := s.getLessonRecord(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if lesson.CourseID != course.ID {
		return nil, services.ErrLessonNotFound
	}

	materials, err := s.materials.ListByLesson(ctx, lesson.ID)
	if err != nil {
		return nil, services.WrapInternal("failed to list materials", err)
	}

	return &LessonView{Lesson: lesson, Materials: materials}, nil
}

// ListLessons returns the course's lessons in their stable reading
// order: sort order ascending, creation time breaking ties. Lesson
// titles are part of the course page, so the course visibility gate is
// enough here; content stays behind GetLesson.
func (s *Service) ListLessons(ctx context.Context, principal *models.User, courseSlug string) ([]*models.Lesson, error) {
	course, err := s.courses.GetBySlug(ctx, courseSlug)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrCourseNotFound
		}
		return nil, services.WrapInternal("failed to load course", err)
	}

	if d := s.access.CanViewCourse(principal, course); !d.Allowed {
		return nil, d.Err()
	}

	lessons, err := s.lessons.ListByCourse(ctx, course.ID)
	if err != nil {
		return nil, services.WrapInternal("failed to list lessons", err)
	}
	return lessons, nil
}

// UpdateLesson applies the update to a lesson. Author only; the owning
// course cannot change.
func (s *Service) UpdateLesson(ctx context.Context, principal *models.User, lessonID uuid.UUID, update models.LessonUpdate) (*models.Lesson, error) {
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

	if update.Order != nil && *update.Order < 0 {
		return nil, services.ErrInvalidInput.WithDetail("field", "order")
	}
	if update.Title != nil && *update.Title == "" {
		return nil, services.ErrInvalidInput.WithDetail("field", "title")
	}

	update.Apply(lesson)

	if err := s.lessons.Update(ctx, lesson); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrLessonNotFound
		}
		return nil, services.WrapInternal("failed to update lesson", err)
	}

	s.logger.Info("lesson updated", zap.String("id", lesson.ID.String()))
	return lesson, nil
}

// DeleteLesson removes a lesson and its materials. Records first in a
// transaction, blobs after; blob failures degrade to cleanup_pending
// instead of failing the delete.
func (s *Service) DeleteLesson(ctx context.Context, principal *models.User, lessonID uuid.UUID) (*DeleteResult, error) {
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

	var keys []string
	err = s.txMgr.InTransaction(ctx, func(txCtx context.Context, _ repositories.Transaction) error {
		var txErr error
		keys, txErr = s.materials.ListFileKeysByLesson(txCtx, lesson.ID)
		if txErr != nil {
			return txErr
		}
		return s.lessons.Delete(txCtx, lesson.ID)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrLessonNotFound
		}
		return nil, services.WrapInternal("failed to delete lesson", err)
	}

	result := s.releaseBlobs(ctx, keys)

	s.logger.Info("lesson deleted",
		zap.String("id", lesson.ID.String()),
		zap.Bool("cleanup_pending", result.CleanupPending))
	return result, nil
}
