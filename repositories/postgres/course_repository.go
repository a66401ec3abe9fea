package postgres

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/openlearn/openlearn-backend/models"
	"github.com/openlearn/openlearn-backend/repositories"
	"go.uber.org/zap"
)

// courseColumns is the canonical select list for course rows
const courseColumns = `id, title, slug, description, author_id, difficulty, thumbnail_key, is_published, created_at, updated_at`

// CourseRepository implements the repositories.CourseRepository interface
type CourseRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db *DB, logger *zap.Logger) repositories.CourseRepository {
	return &CourseRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new course
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	query := `
		INSERT INTO courses (id, title, slug, description, author_id, difficulty, thumbnail_key, is_published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		course.ID,
		course.Title,
		course.Slug,
		course.Description,
		course.AuthorID,
		course.Difficulty,
		course.ThumbnailKey,
		course.IsPublished,
		course.CreatedAt,
		course.UpdatedAt,
	)

	if err != nil {
		return translateError(err, "create course")
	}

	r.logger.Debug("course created", zap.String("id", course.ID.String()), zap.String("slug", course.Slug))
	return nil
}

// GetByID retrieves a course by ID
func (r *CourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	course := &models.Course{}

	err := executor.QueryRowContext(ctx, query, id).Scan(
		&course.ID,
		&course.Title,
		&course.Slug,
		&course.Description,
		&course.AuthorID,
		&course.Difficulty,
		&course.ThumbnailKey,
		&course.IsPublished,
		&course.CreatedAt,
		&course.UpdatedAt,
	)

	if err != nil {
		return nil, translateError(err, "get course")
	}

	return course, nil
}

// GetBySlug retrieves a course by slug
func (r *CourseRepository) GetBySlug(ctx context.Context, slug string) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE slug = $1`

	executor := GetExecutor(ctx, r.db)
	course := &models.Course{}

	err := executor.QueryRowContext(ctx, query, slug).Scan(
		&course.ID,
		&course.Title,
		&course.Slug,
		&course.Description,
		&course.AuthorID,
		&course.Difficulty,
		&course.ThumbnailKey,
		&course.IsPublished,
		&course.CreatedAt,
		&course.UpdatedAt,
	)

	if err != nil {
		return nil, translateError(err, "get course by slug")
	}

	return course, nil
}

// ListPublished retrieves published courses in store listing order
func (r *CourseRepository) ListPublished(ctx context.Context, limit, offset int) ([]*models.Course, error) {
	query := `
		SELECT ` + courseColumns + `
		FROM courses
		WHERE is_published = true
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, translateError(err, "list published courses")
	}
	defer rows.Close()

	return scanCourses(rows)
}

// ListByAuthor retrieves all courses owned by an author, drafts included
func (r *CourseRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*models.Course, error) {
	query := `
		SELECT ` + courseColumns + `
		FROM courses
		WHERE author_id = $1
		ORDER BY created_at DESC
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, authorID)
	if err != nil {
		return nil, translateError(err, "list author courses")
	}
	defer rows.Close()

	return scanCourses(rows)
}

// likeEscaper neutralizes LIKE metacharacters so the user's query is
// matched literally rather than as a pattern
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search retrieves published courses whose title or description contains
// the query, case-insensitively. Each call re-queries the store, so the
// result always reflects current state rather than a snapshot.
func (r *CourseRepository) Search(ctx context.Context, query string, limit, offset int) ([]*models.Course, error) {
	stmt := `
		SELECT ` + courseColumns + `
		FROM courses
		WHERE is_published = true
		  AND (title ILIKE '%' || $1 || '%' ESCAPE '\' OR description ILIKE '%' || $1 || '%' ESCAPE '\')
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, stmt, likeEscaper.Replace(query), limit, offset)
	if err != nil {
		return nil, translateError(err, "search courses")
	}
	defer rows.Close()

	return scanCourses(rows)
}

// Update persists the mutable course fields. Slug and author are never
// written after creation.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	query := `
		UPDATE courses
		SET title = $2, description = $3, difficulty = $4, thumbnail_key = $5, is_published = $6, updated_at = $7
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		course.ID,
		course.Title,
		course.Description,
		course.Difficulty,
		course.ThumbnailKey,
		course.IsPublished,
		course.UpdatedAt,
	)

	if err != nil {
		return translateError(err, "update course")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return translateError(err, "update course")
	}
	if rows == 0 {
		return translateError(errNoRowsAffected, "update course")
	}

	r.logger.Debug("course updated", zap.String("id", course.ID.String()))
	return nil
}

// Delete deletes a course. Lessons, materials and enrollments are
// removed by the store's cascade rules.
func (r *CourseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM courses WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return translateError(err, "delete course")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return translateError(err, "delete course")
	}
	if rows == 0 {
		return translateError(errNoRowsAffected, "delete course")
	}

	r.logger.Debug("course deleted", zap.String("id", id.String()))
	return nil
}

// scanCourses collects course rows
func scanCourses(rows rowScanner) ([]*models.Course, error) {
	courses := make([]*models.Course, 0)
	for rows.Next() {
		course := &models.Course{}
		if err := rows.Scan(
			&course.ID,
			&course.Title,
			&course.Slug,
			&course.Description,
			&course.AuthorID,
			&course.Difficulty,
			&course.ThumbnailKey,
			&course.IsPublished,
			&course.CreatedAt,
			&course.UpdatedAt,
		); err != nil {
			return nil, translateError(err, "scan course")
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "iterate courses")
	}
	return courses, nil
}
