package catalog

import (
	"context"
	"errors"

	"github.com/openlearn/openlearn-backend/models"
	"github.com/openlearn/openlearn-backend/repositories"
	"github.com/openlearn/openlearn-backend/services"
	"go.uber.org/zap"
)

// CreateCourseInput carries the fields for a new course. An empty slug
// is derived from the title; either way the slug is fixed for the
// course's lifetime.
type CreateCourseInput struct {
	Title       string
	Slug        string
	Description string
	Difficulty  models.Difficulty
}

// CourseView is a course with the context a detail page needs
type CourseView struct {
	Course   *models.Course   `json:"course"`
	Lessons  []*models.Lesson `json:"lessons"`
	Enrolled bool             `json:"enrolled"`
	Editable bool             `json:"editable"`
}

// CreateCourse creates a new draft course owned by the principal. The
// author role is required; admins administer, they do not teach.
func (s *Service) CreateCourse(ctx context.Context, principal *models.User, input CreateCourseInput) (*models.Course, error) {
	if principal == nil {
		return nil, services.ErrMustLogIn
	}
	if !principal.IsAuthor() {
		return nil, services.ErrForbidden
	}
	if input.Title == "" {
		return nil, services.ErrInvalidInput.WithDetail("field", "title")
	}
	if !models.ValidDifficulty(input.Difficulty) {
		return nil, services.ErrInvalidDifficulty
	}

	course := models.NewCourse(principal.ID, input.Title, input.Slug, input.Description, input.Difficulty)

	if err := s.courses.Create(ctx, course); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, services.ErrDuplicateSlug.WithDetail("slug", course.Slug)
		}
		return nil, services.WrapInternal("failed to create course", err)
	}

	s.logger.Info("course created",
		zap.String("id", course.ID.String()),
		zap.String("slug", course.Slug),
		zap.String("author_id", principal.ID.String()))
	return course, nil
}

// GetCourse loads a course by slug for the principal, with lessons and
// enrollment state. Courses the principal may not see are reported as
// not found, never as forbidden, so drafts do not leak.
func (s *Service) GetCourse(ctx context.Context, principal *models.User, slug string) (*CourseView, error) {
	course, err := s.courses.GetBySlug(ctx, slug)
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

	enrolled, err := s.access.IsEnrolled(ctx, principal, course)
	if err != nil {
		return nil, err
	}

	return &CourseView{
		Course:   course,
		Lessons:  lessons,
		Enrolled: enrolled,
		Editable: s.access.CanEditCourse(principal, course).Allowed,
	}, nil
}

// ListCourses returns published courses, newest first
func (s *Service) ListCourses(ctx context.Context, limit, offset int) ([]*models.Course, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}

	courses, err := s.courses.ListPublished(ctx, limit, offset)
	if err != nil {
		return nil, services.WrapInternal("failed to list courses", err)
	}
	return courses, nil
}

// SearchCourses returns published courses whose title or description
// contains the query, case-insensitively. Each call re-runs the query
// against current state, so callers can restart iteration at any time.
func (s *Service) SearchCourses(ctx context.Context, query string, limit, offset int) ([]*models.Course, error) {
	if query == "" {
		return s.ListCourses(ctx, limit, offset)
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}

	courses, err := s.courses.Search(ctx, query, limit, offset)
	if err != nil {
		return nil, services.WrapInternal("failed to search courses", err)
	}
	return courses, nil
}

// ListTeaching returns all of the principal's own courses, drafts
// included, for the author dashboard
func (s *Service) ListTeaching(ctx context.Context, principal *models.User) ([]*models.Course, error) {
	if principal == nil {
		return nil, services.ErrMustLogIn
	}
	if !principal.IsAuthor() {
		return nil, services.ErrForbidden
	}

	courses, err := s.courses.ListByAuthor(ctx, principal.ID)
	if err != nil {
		return nil, services.WrapInternal("failed to list authored courses", err)
	}
	return courses, nil
}

// UpdateCourse applies the update to the course identified by slug.
// Only fields present in the update change; slug and author cannot
// appear in a CourseUpdate at all.
func (s *Service) UpdateCourse(ctx context.Context, principal *models.User, slug string, update models.CourseUpdate) (*models.Course, error) {
	course, err := s.courses.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrCourseNotFound
		}
		return nil, services.WrapInternal("failed to load course", err)
	}

	if d := s.access.CanEditCourse(principal, course); !d.Allowed {
		return nil, d.Err()
	}

	if update.Difficulty != nil && !models.ValidDifficulty(*update.Difficulty) {
		return nil, services.ErrInvalidDifficulty
	}
	if update.Title != nil && *update.Title == "" {
		return nil, services.ErrInvalidInput.WithDetail("field", "title")
	}

	update.Apply(course)

	if err := s.courses.Update(ctx, course); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrCourseNotFound
		}
		return nil, services.WrapInternal("failed to update course", err)
	}

	s.logger.Info("course updated", zap.String("id", course.ID.String()), zap.String("slug", course.Slug))
	return course, nil
}

// DeleteCourse removes the course and everything under it. Inside one
// transaction it collects every blob key the course tree references
// and deletes the record tree; the store cascades lessons, materials
// and enrollments. Blobs are released only after the records are gone,
// so a blob store outage can never leave half a course behind.
func (s *Service) DeleteCourse(ctx context.Context, principal *models.User, slug string) (*DeleteResult, error) {
	course, err := s.courses.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrCourseNotFound
		}
		return nil, services.WrapInternal("failed to load course", err)
	}

	if d := s.access.CanEditCourse(principal, course); !d.Allowed {
		return nil, d.Err()
	}

	var keys []string
	err = s.txMgr.InTransaction(ctx, func(txCtx context.Context, _ repositories.Transaction) error {
		var txErr error
		keys, txErr = s.materials.ListFileKeysByCourse(txCtx, course.ID)
		if txErr != nil {
			return txErr
		}
		return s.courses.Delete(txCtx, course.ID)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrCourseNotFound
		}
		return nil, services.WrapInternal("failed to delete course", err)
	}

	if course.ThumbnailKey != "" {
		keys = append(keys, course.ThumbnailKey)
	}

	result := s.releaseBlobs(ctx, keys)

	s.logger.Info("course deleted",
		zap.String("id", course.ID.String()),
		zap.String("slug", course.Slug),
		zap.Int("blobs_released", len(keys)-len(result.PendingKeys)),
		zap.Bool("cleanup_pending", result.CleanupPending))
	return result, nil
}
