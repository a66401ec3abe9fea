package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/openlearn/openlearn-backend/models"
	"github.com/openlearn/openlearn-backend/repositories"
	"go.uber.org/zap"
)

// lessonColumns is the canonical select list for lesson rows
const lessonColumns = `id, course_id, title, content, sort_order, created_at, updated_at`

// LessonRepository implements the repositories.LessonRepository interface
type LessonRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewLessonRepository creates a new lesson repository
func NewLessonRepository(db *DB, logger *zap.Logger) repositories.LessonRepository {
	return &LessonRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new lesson
func (r *LessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	query := `
		INSERT INTO lessons (id, course_id, title, content, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		lesson.ID,
		lesson.CourseID,
		lesson.Title,
		lesson.Content,
		lesson.Order,
		lesson.CreatedAt,
		lesson.UpdatedAt,
	)

	if err != nil {
		return translateError(err, "create lesson")
	}

	r.logger.Debug("lesson created", zap.String("id", lesson.ID.String()), zap.String("course_id", lesson.CourseID.String()))
	return nil
}

// GetByID retrieves a lesson by ID
func (r *LessonRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	lesson := &models.Lesson{}

	err := executor.QueryRowContext(ctx, query, id).Scan(
		&lesson.ID,
		&lesson.CourseID,
		&lesson.Title,
		&lesson.Content,
		&lesson.Order,
		&lesson.CreatedAt,
		&lesson.UpdatedAt,
	)

	if err != nil {
		return nil, translateError(err, "get lesson")
	}

	return lesson, nil
}

// ListByCourse retrieves a course's lessons ordered by sort order with
// creation time breaking ties. Two lessons sharing a sort order always
// come back in the same relative order.
func (r *LessonRepository) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]*models.Lesson, error) {
	query := `
		SELECT ` + lessonColumns + `
		FROM lessons
		WHERE course_id = $1
		ORDER BY sort_order ASC, created_at ASC
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, translateError(err, "list lessons")
	}
	defer rows.Close()

	lessons := make([]*models.Lesson, 0)
	for rows.Next() {
		lesson := &models.Lesson{}
		if err := rows.Scan(
			&lesson.ID,
			&lesson.CourseID,
			&lesson.Title,
			&lesson.Content,
			&lesson.Order,
			&lesson.CreatedAt,
			&lesson.UpdatedAt,
		); err != nil {
			return nil, translateError(err, "scan lesson")
		}
		lessons = append(lessons, lesson)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "iterate lessons")
	}

	return lessons, nil
}

// Update persists the mutable lesson fields. The owning course never
// changes after creation.
func (r *LessonRepository) Update(ctx context.Context, lesson *models.Lesson) error {
	query := `
		UPDATE lessons
		SET title = $2, content = $3, sort_order = $4, updated_at = $5
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		lesson.ID,
		lesson.Title,
		lesson.Content,
		lesson.Order,
		lesson.UpdatedAt,
	)

	if err != nil {
		return translateError(err, "update lesson")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return translateError(err, "update lesson")
	}
	if rows == 0 {
		return translateError(errNoRowsAffected, "update lesson")
	}

	r.logger.Debug("lesson updated", zap.String("id", lesson.ID.String()))
	return nil
}

// Delete deletes a lesson. Its materials are removed by the store's
// cascade rules.
func (r *LessonRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM lessons WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return translateError(err, "delete lesson")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return translateError(err, "delete lesson")
	}
	if rows == 0 {
		return translateError(errNoRowsAffected, "delete lesson")
	}

	r.logger.Debug("lesson deleted", zap.String("id", id.String()))
	return nil
}
