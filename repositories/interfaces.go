package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/openlearn/openlearn-backend/models"
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// UserRepository handles user account data operations
type UserRepository interface {
	// Create creates a new user. A duplicate email surfaces as a
	// conflict error.
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// CourseRepository handles course data operations
type CourseRepository interface {
	// Create creates a new course. A duplicate slug surfaces as a
	// conflict error.
	Create(ctx context.Context, course *models.Course) error

	// GetByID retrieves a course by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error)

	// GetBySlug retrieves a course by slug
	GetBySlug(ctx context.Context, slug string) (*models.Course, error)

	// ListPublished retrieves published courses in store listing order
	// (created_at DESC) with pagination
	ListPublished(ctx context.Context, limit, offset int) ([]*models.Course, error)

	// ListByAuthor retrieves all courses owned by an author, drafts included
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*models.Course, error)

	// Search retrieves published courses whose title or description
	// contains the query, case-insensitively
	Search(ctx context.Context, query string, limit, offset int) ([]*models.Course, error)

	// Update persists the mutable course fields
	Update(ctx context.Context, course *models.Course) error

	// Delete deletes a course; lessons, materials and enrollments go
	// with it via foreign keys
	Delete(ctx context.Context, id uuid.UUID) error
}

// LessonRepository handles lesson data operations
type LessonRepository interface {
	// Create creates a new lesson
	Create(ctx context.Context, lesson *models.Lesson) error

	// GetByID retrieves a lesson by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.Lesson, error)

	// ListByCourse retrieves a course's lessons ordered by
	// (sort_order ASC, created_at ASC)
	ListByCourse(ctx context.Context, courseID uuid.UUID) ([]*models.Lesson, error)

	// Update persists the mutable lesson fields
	Update(ctx context.Context, lesson *models.Lesson) error

	// Delete deletes a lesson; its materials go with it via foreign keys
	Delete(ctx context.Context, id uuid.UUID) error
}

// MaterialRepository handles material data operations
type MaterialRepository interface {
	// Create creates a new material record
	Create(ctx context.Context, material *models.Material) error

	// GetByID retrieves a material by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.Material, error)

	// ListByLesson retrieves all materials of a lesson
	ListByLesson(ctx context.Context, lessonID uuid.UUID) ([]*models.Material, error)

	// ListFileKeysByCourse retrieves the blob keys of every material in
	// a course, for cascade blob cleanup
	ListFileKeysByCourse(ctx context.Context, courseID uuid.UUID) ([]string, error)

	// ListFileKeysByLesson retrieves the blob keys of every material in
	// a lesson, for cascade blob cleanup
	ListFileKeysByLesson(ctx context.Context, lessonID uuid.UUID) ([]string, error)

	// Update persists the mutable material fields
	Update(ctx context.Context, material *models.Material) error

	// Delete deletes a material record. The backing blob is released by
	// the caller after the record is gone.
	Delete(ctx context.Context, id uuid.UUID) error
}

// EnrollmentRepository handles enrollment data operations
type EnrollmentRepository interface {
	// Upsert creates the (user, course) enrollment if absent and returns
	// the stored row either way, with created reporting whether this call
	// inserted it. The unique constraint on (user_id, course_id) is the
	// source of truth: under concurrent duplicate submissions exactly one
	// caller observes created and the loser reads the winner's row.
	Upsert(ctx context.Context, enrollment *models.Enrollment) (stored *models.Enrollment, created bool, err error)

	// Get retrieves the enrollment for a (user, course) pair
	Get(ctx context.Context, userID, courseID uuid.UUID) (*models.Enrollment, error)

	// Exists checks whether a (user, course) enrollment exists
	Exists(ctx context.Context, userID, courseID uuid.UUID) (bool, error)

	// ListByUser retrieves a user's enrollments with courses preloaded,
	// newest first
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Enrollment, error)

	// Delete removes the (user, course) enrollment if present
	Delete(ctx context.Context, userID, courseID uuid.UUID) error
}

// Repositories aggregates all repository instances
type Repositories struct {
	Users       UserRepository
	Courses     CourseRepository
	Lessons     LessonRepository
	Materials   MaterialRepository
	Enrollments EnrollmentRepository
}
