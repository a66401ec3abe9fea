package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/openlearn/openlearn-backend/models"
	"github.com/openlearn/openlearn-backend/repositories"
	"go.uber.org/zap"
)

// enrollmentColumns is the canonical select list for enrollment rows
const enrollmentColumns = `id, user_id, course_id, enrolled_at`

// EnrollmentRepository implements the repositories.EnrollmentRepository interface
type EnrollmentRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewEnrollmentRepository creates a new enrollment repository
func NewEnrollmentRepository(db *DB, logger *zap.Logger) repositories.EnrollmentRepository {
	return &EnrollmentRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert creates the (user, course) enrollment if absent and returns the
// stored row either way. ON CONFLICT DO NOTHING leans on the unique
// (user_id, course_id) constraint, so concurrent duplicate submissions
// race at the store and the loser reads back the winner's row. The
// affected-row count tells whether this call did the insert.
func (r *EnrollmentRepository) Upsert(ctx context.Context, enrollment *models.Enrollment) (*models.Enrollment, bool, error) {
	query := `
		INSERT INTO enrollments (id, user_id, course_id, enrolled_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, course_id) DO NOTHING
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		enrollment.ID,
		enrollment.UserID,
		enrollment.CourseID,
		enrollment.EnrolledAt,
	)
	if err != nil {
		return nil, false, translateError(err, "upsert enrollment")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, false, translateError(err, "upsert enrollment")
	}
	created := affected == 1

	stored, err := r.Get(ctx, enrollment.UserID, enrollment.CourseID)
	if err != nil {
		return nil, false, err
	}

	r.logger.Debug("enrollment upserted",
		zap.String("user_id", enrollment.UserID.String()),
		zap.String("course_id", enrollment.CourseID.String()),
		zap.String("id", stored.ID.String()),
		zap.Bool("created", created))
	return stored, created, nil
}

// Get retrieves the enrollment for a (user, course) pair
func (r *EnrollmentRepository) Get(ctx context.Context, userID, courseID uuid.UUID) (*models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE user_id = $1 AND course_id = $2`

	executor := GetExecutor(ctx, r.db)
	enrollment := &models.Enrollment{}

	err := executor.QueryRowContext(ctx, query, userID, courseID).Scan(
		&enrollment.ID,
		&enrollment.UserID,
		&enrollment.CourseID,
		&enrollment.EnrolledAt,
	)

	if err != nil {
		return nil, translateError(err, "get enrollment")
	}

	return enrollment, nil
}

// Exists checks whether a (user, course) enrollment exists
func (r *EnrollmentRepository) Exists(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM enrollments WHERE user_id = $1 AND course_id = $2)`

	executor := GetExecutor(ctx, r.db)
	var exists bool

	if err := executor.QueryRowContext(ctx, query, userID, courseID).Scan(&exists); err != nil {
		return false, translateError(err, "check enrollment")
	}

	return exists, nil
}

// ListByUser retrieves a user's enrollments with courses preloaded,
// newest enrollment first
func (r *EnrollmentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Enrollment, error) {
	query := `
		SELECT e.id, e.user_id, e.course_id, e.enrolled_at,
		       c.id, c.title, c.slug, c.description, c.author_id, c.difficulty, c.thumbnail_key, c.is_published, c.created_at, c.updated_at
		FROM enrollments e
		JOIN courses c ON c.id = e.course_id
		WHERE e.user_id = $1
		ORDER BY e.enrolled_at DESC
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, translateError(err, "list enrollments")
	}
	defer rows.Close()

	enrollments := make([]*models.Enrollment, 0)
	for rows.Next() {
		enrollment := &models.Enrollment{Course: &models.Course{}}
		if err := rows.Scan(
			&enrollment.ID,
			&enrollment.UserID,
			&enrollment.CourseID,
			&enrollment.EnrolledAt,
			&enrollment.Course.ID,
			&enrollment.Course.Title,
			&enrollment.Course.Slug,
			&enrollment.Course.Description,
			&enrollment.Course.AuthorID,
			&enrollment.Course.Difficulty,
			&enrollment.Course.ThumbnailKey,
			&enrollment.Course.IsPublished,
			&enrollment.Course.CreatedAt,
			&enrollment.Course.UpdatedAt,
		); err != nil {
			return nil, translateError(err, "scan enrollment")
		}
		enrollments = append(enrollments, enrollment)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "iterate enrollments")
	}

	return enrollments, nil
}

// Delete removes the (user, course) enrollment if present
func (r *EnrollmentRepository) Delete(ctx context.Context, userID, courseID uuid.UUID) error {
	query := `DELETE FROM enrollments WHERE user_id = $1 AND course_id = $2`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, userID, courseID)
	if err != nil {
		return translateError(err, "delete enrollment")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return translateError(err, "delete enrollment")
	}
	if rows == 0 {
		return translateError(errNoRowsAffected, "delete enrollment")
	}

	r.logger.Debug("enrollment deleted",
		zap.String("user_id", userID.String()),
		zap.String("course_id", courseID.String()))
	return nil
}
