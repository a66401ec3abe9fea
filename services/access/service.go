package access

import (
	"context"

	"github.com/openlearn/openlearn-backend/models"
	"github.com/openlearn/openlearn-backend/repositories"
	"github.com/openlearn/openlearn-backend/services"
	"go.uber.org/zap"
)

// Decision is the outcome of an access check. When Allowed is false,
// Reason carries the taxonomy error the caller should surface, so a
// frontend can route "log in first" and "enroll first" to different
// screens instead of a generic denial.
type Decision struct {
	Allowed bool
	Reason  *services.DomainError
}

// Allow returns a positive decision
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny returns a negative decision with the given reason
func Deny(reason *services.DomainError) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Err returns the decision's reason as an error, or nil when allowed
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return d.Reason
}

// Service is the access control core. Every content-facing operation
// asks it before touching data. The principal is always an explicit
// argument; nil means anonymous. There is no ambient session state to
// consult.
type Service struct {
	enrollments repositories.EnrollmentRepository
	logger      *zap.Logger
}

// NewService creates a new access Service
func NewService(enrollments repositories.EnrollmentRepository, logger *zap.Logger) *Service {
	return &Service{
		enrollments: enrollments,
		logger:      logger,
	}
}

// CanViewCourse decides whether the principal may see the course at
// all. Published courses are visible to everyone, anonymous included.
// Unpublished courses are visible only to their author and admins;
// everyone else gets not_found rather than forbidden, so drafts do not
// leak their existence. Unpublishing revokes browsing even for
// students already enrolled.
func (s *Service) CanViewCourse(principal *models.User, course *models.Course) Decision {
	if course.IsPublished {
		return Allow()
	}
	if principal.IsAdmin() || course.IsAuthoredBy(principal) {
		return Allow()
	}
	return Deny(services.ErrCourseNotFound)
}

// CanViewLesson decides whether the principal may read lesson content
// of the course. Viewing the course is a precondition. Beyond that the
// gate is enrollment: only the author passes outright, anonymous
// visitors must log in, and logged-in non-enrollees must enroll. The
// two denials are distinct so the caller can route the user to the
// right next step. Admins get no bypass here: they can browse any
// course but read gated content only if enrolled, same as students.
func (s *Service) CanViewLesson(ctx context.Context, principal *models.User, course *models.Course) (Decision, error) {
	if d := s.CanViewCourse(principal, course); !d.Allowed {
		return d, nil
	}

	if principal == nil {
		return Deny(services.ErrMustLogIn), nil
	}
	if course.IsAuthoredBy(principal) {
		return Allow(), nil
	}

	enrolled, err := s.enrollments.Exists(ctx, principal.ID, course.ID)
	if err != nil {
		return Decision{}, services.WrapInternal("failed to check enrollment", err)
	}
	if !enrolled {
		return Deny(services.ErrMustEnroll), nil
	}
	return Allow(), nil
}

// CanEditCourse decides whether the principal may mutate the course or
// its lessons and materials. Only the author may. Admins can see
// everything but edit nothing; moderation tooling is a separate
// concern.
func (s *Service) CanEditCourse(principal *models.User, course *models.Course) Decision {
	if principal == nil {
		return Deny(services.ErrMustLogIn)
	}
	if course.IsAuthoredBy(principal) {
		return Allow()
	}
	return Deny(services.ErrNotAuthor)
}

// CanDownloadMaterial decides whether the principal may stream a
// material of the course. Same gate as lesson content.
func (s *Service) CanDownloadMaterial(ctx context.Context, principal *models.User, course *models.Course) (Decision, error) {
	return s.CanViewLesson(ctx, principal, course)
}

// IsEnrolled reports whether the principal holds an enrollment in the
// course. Anonymous principals are never enrolled.
func (s *Service) IsEnrolled(ctx context.Context, principal *models.User, course *models.Course) (bool, error) {
	if principal == nil {
		return false, nil
	}

	enrolled, err := s.enrollments.Exists(ctx, principal.ID, course.ID)
	if err != nil {
		return false, services.WrapInternal("failed to check enrollment", err)
	}
	return enrolled, nil
}
