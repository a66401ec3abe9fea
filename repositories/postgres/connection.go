package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/openlearn/openlearn-backend/config"
	"go.uber.org/zap"
)

// DB wraps the sql.DB connection pool
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// NewDB creates a new database connection pool
func NewDB(cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	dsn := cfg.DSN()

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established",
		zap.String("connection", cfg.LogString()))

	return &DB{
		DB:     db,
		logger: logger,
	}, nil
}

// Close closes the database connection pool
func (db *DB) Close() error {
	db.logger.Info("closing database connection")
	return db.DB.Close()
}

// HealthCheck performs a health check on the database
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	// Check if we can query
	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database query check failed: %w", err)
	}

	return nil
}

// Stats returns database connection pool statistics
func (db *DB) Stats() sql.DBStats {
	return db.DB.Stats()
}

// InitSchema initializes the database schema. Ownership follows the
// catalog model: courses own lessons, lessons own materials, and
// enrollments go away with either side of the (user, course) pair.
func (db *DB) InitSchema(ctx context.Context) error {
	schema := `
		-- Users table
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL,
			role VARCHAR(20) NOT NULL,
			bio TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		-- Courses table
		CREATE TABLE IF NOT EXISTS courses (
			id UUID PRIMARY KEY,
			title VARCHAR(200) NOT NULL,
			slug VARCHAR(100) NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			author_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			difficulty VARCHAR(20) NOT NULL DEFAULT 'beginner',
			thumbnail_key VARCHAR(255) NOT NULL DEFAULT '',
			is_published BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		-- Lessons table
		CREATE TABLE IF NOT EXISTS lessons (
			id UUID PRIMARY KEY,
			course_id UUID NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
			title VARCHAR(200) NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			sort_order INTEGER NOT NULL DEFAULT 0 CHECK (sort_order >= 0),
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		-- Materials table
		CREATE TABLE IF NOT EXISTS materials (
			id UUID PRIMARY KEY,
			lesson_id UUID NOT NULL REFERENCES lessons(id) ON DELETE CASCADE,
			title VARCHAR(200) NOT NULL,
			file_key VARCHAR(255) NOT NULL,
			file_name VARCHAR(255) NOT NULL,
			material_type VARCHAR(20) NOT NULL DEFAULT 'document',
			description TEXT NOT NULL DEFAULT '',
			uploaded_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		-- Enrollments table
		CREATE TABLE IF NOT EXISTS enrollments (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			course_id UUID NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
			enrolled_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(user_id, course_id)
		);

		-- Indexes for performance
		CREATE INDEX IF NOT EXISTS idx_courses_author_id ON courses(author_id);
		CREATE INDEX IF NOT EXISTS idx_courses_is_published ON courses(is_published);
		CREATE INDEX IF NOT EXISTS idx_lessons_course_id ON lessons(course_id);
		CREATE INDEX IF NOT EXISTS idx_lessons_course_order ON lessons(course_id, sort_order, created_at);
		CREATE INDEX IF NOT EXISTS idx_materials_lesson_id ON materials(lesson_id);
		CREATE INDEX IF NOT EXISTS idx_enrollments_user_id ON enrollments(user_id);
		CREATE INDEX IF NOT EXISTS idx_enrollments_course_id ON enrollments(course_id);
	`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	db.logger.Info("database schema initialized successfully")
	return nil
}
