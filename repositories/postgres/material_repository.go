package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/openlearn/openlearn-backend/models"
	"github.com/openlearn/openlearn-backend/repositories"
	"go.uber.org/zap"
)

// materialColumns is the canonical select list for material rows
const materialColumns = `id, lesson_id, title, file_key, file_name, material_type, description, uploaded_at`

// MaterialRepository implements the repositories.MaterialRepository interface
type MaterialRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewMaterialRepository creates a new material repository
func NewMaterialRepository(db *DB, logger *zap.Logger) repositories.MaterialRepository {
	return &MaterialRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new material record
func (r *MaterialRepository) Create(ctx context.Context, material *models.Material) error {
	query := `
		INSERT INTO materials (id, lesson_id, title, file_key, file_name, material_type, description, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		material.ID,
		material.LessonID,
		material.Title,
		material.FileKey,
		material.FileName,
		material.MaterialType,
		material.Description,
		material.UploadedAt,
	)

	if err != nil {
		return translateError(err, "create material")
	}

	r.logger.Debug("material created",
		zap.String("id", material.ID.String()),
		zap.String("lesson_id", material.LessonID.String()),
		zap.String("file_key", material.FileKey))
	return nil
}

// GetByID retrieves a material by ID
func (r *MaterialRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Material, error) {
	query := `SELECT ` + materialColumns + ` FROM materials WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	material := &models.Material{}

	err := executor.QueryRowContext(ctx, query, id).Scan(
		&material.ID,
		&material.LessonID,
		&material.Title,
		&material.FileKey,
		&material.FileName,
		&material.MaterialType,
		&material.Description,
		&material.UploadedAt,
	)

	if err != nil {
		return nil, translateError(err, "get material")
	}

	return material, nil
}

// ListByLesson retrieves all materials of a lesson, oldest upload first
func (r *MaterialRepository) ListByLesson(ctx context.Context, lessonID uuid.UUID) ([]*models.Material, error) {
	query := `
		SELECT ` + materialColumns + `
		FROM materials
		WHERE lesson_id = $1
		ORDER BY uploaded_at ASC
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, lessonID)
	if err != nil {
		return nil, translateError(err, "list materials")
	}
	defer rows.Close()

	materials := make([]*models.Material, 0)
	for rows.Next() {
		material := &models.Material{}
		if err := rows.Scan(
			&material.ID,
			&material.LessonID,
			&material.Title,
			&material.FileKey,
			&material.FileName,
			&material.MaterialType,
			&material.Description,
			&material.UploadedAt,
		); err != nil {
			return nil, translateError(err, "scan material")
		}
		materials = append(materials, material)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "iterate materials")
	}

	return materials, nil
}

// ListFileKeysByCourse retrieves the blob keys of every material under a
// course, for blob cleanup after a cascade delete
func (r *MaterialRepository) ListFileKeysByCourse(ctx context.Context, courseID uuid.UUID) ([]string, error) {
	query := `
		SELECT m.file_key
		FROM materials m
		JOIN lessons l ON l.id = m.lesson_id
		WHERE l.course_id = $1
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, translateError(err, "list course file keys")
	}
	defer rows.Close()

	return scanFileKeys(rows)
}

// ListFileKeysByLesson retrieves the blob keys of every material in a
// lesson, for blob cleanup after a cascade delete
func (r *MaterialRepository) ListFileKeysByLesson(ctx context.Context, lessonID uuid.UUID) ([]string, error) {
	query := `SELECT file_key FROM materials WHERE lesson_id = $1`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, lessonID)
	if err != nil {
		return nil, translateError(err, "list lesson file keys")
	}
	defer rows.Close()

	return scanFileKeys(rows)
}

// Update persists the mutable material fields. The blob reference never
// changes; replacing the file is delete-and-reupload.
func (r *MaterialRepository) Update(ctx context.Context, material *models.Material) error {
	query := `
		UPDATE materials
		SET title = $2, material_type = $3, description = $4
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		material.ID,
		material.Title,
		material.MaterialType,
		material.Description,
	)

	if err != nil {
		return translateError(err, "update material")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return translateError(err, "update material")
	}
	if rows == 0 {
		return translateError(errNoRowsAffected, "update material")
	}

	r.logger.Debug("material updated", zap.String("id", material.ID.String()))
	return nil
}

// Delete deletes a material record. The backing blob is released by the
// caller once the record is gone.
func (r *MaterialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM materials WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return translateError(err, "delete material")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return translateError(err, "delete material")
	}
	if rows == 0 {
		return translateError(errNoRowsAffected, "delete material")
	}

	r.logger.Debug("material deleted", zap.String("id", id.String()))
	return nil
}

// scanFileKeys collects single-column file key rows
func scanFileKeys(rows rowScanner) ([]string, error) {
	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, translateError(err, "scan file key")
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "iterate file keys")
	}
	return keys, nil
}
