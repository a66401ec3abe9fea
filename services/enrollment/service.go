package enrollment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/openlearn/openlearn-backend/models"
	"github.com/openlearn/openlearn-backend/repositories"
	"github.com/openlearn/openlearn-backend/services"
	"go.uber.org/zap"
)

// Service handles joining and leaving courses
type Service struct {
	courses     repositories.CourseRepository
	enrollments repositories.EnrollmentRepository
	logger      *zap.Logger
}

// NewService creates a new enrollment Service
func NewService(courses repositories.CourseRepository, enrollments repositories.EnrollmentRepository, logger *zap.Logger) *Service {
	return &Service{
		courses:     courses,
		enrollments: enrollments,
		logger:      logger,
	}
}

// Enroll joins the principal to the course. Enrolling twice is not an
// error: the unique (user, course) constraint collapses duplicates and
// the caller gets the stored row either way, so concurrent submissions
// of the same pair end with exactly one enrollment. The created flag
// reports whether this call inserted the row; under a duplicate race
// exactly one caller sees it. Unpublished courses reject enrollment
// without creating anything.
func (s *Service) Enroll(ctx context.Context, principal *models.User, courseID uuid.UUID) (*models.Enrollment, bool, error) {
	if principal == nil {
		return nil, false, services.ErrMustLogIn
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, false, services.ErrCourseNotFound
		}
		return nil, false, services.WrapInternal("failed to load course", err)
	}

	if !course.IsPublished {
		return nil, false, services.ErrCourseNotPublished
	}

	enrollment, created, err := s.enrollments.Upsert(ctx, models.NewEnrollment(principal.ID, course.ID))
	if err != nil {
		return nil, false, services.WrapInternal("failed to store enrollment", err)
	}

	s.logger.Info("user enrolled",
		zap.String("user_id", principal.ID.String()),
		zap.String("course_id", course.ID.String()),
		zap.Bool("created", created))
	return enrollment, created, nil
}

// Unenroll removes the principal's enrollment in the course
func (s *Service) Unenroll(ctx context.Context, principal *models.User, courseID uuid.UUID) error {
	if principal == nil {
		return services.ErrMustLogIn
	}

	if err := s.enrollments.Delete(ctx, principal.ID, courseID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return services.ErrEnrollmentNotFound
		}
		return services.WrapInternal("failed to delete enrollment", err)
	}

	s.logger.Info("user unenrolled",
		zap.String("user_id", principal.ID.String()),
		zap.String("course_id", courseID.String()))
	return nil
}

// ListForUser returns the principal's enrollments with courses
// preloaded, newest first
func (s *Service) ListForUser(ctx context.Context, principal *models.User) ([]*models.Enrollment, error) {
	if principal == nil {
		return nil, services.ErrMustLogIn
	}

	enrollments, err := s.enrollments.ListByUser(ctx, principal.ID)
	if err != nil {
		return nil, services.WrapInternal("failed to list enrollments", err)
	}
	return enrollments, nil
}
