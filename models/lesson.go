package models

import (
	"time"

	"github.com/google/uuid"
)

// Lesson represents a single unit of content within a course. Lessons
// are listed ordered by (order ASC, created_at ASC); that order is a
// contract consumers depend on.
type Lesson struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CourseID  uuid.UUID `json:"course_id" db:"course_id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	Order     int       `json:"order" db:"sort_order"` // non-negative, ties broken by creation time
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Lesson model
func (Lesson) TableName() string {
	return "lessons"
}

// NewLesson creates a new Lesson instance
func NewLesson(courseID uuid.UUID, title, content string, order int) *Lesson {
	now := time.Now()
	return &Lesson{
		ID:        uuid.New(),
		CourseID:  courseID,
		Title:     title,
		Content:   content,
		Order:     order,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// LessonUpdate lists the lesson fields that are mutable after creation.
// The owning course may not change.
type LessonUpdate struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
	Order   *int    `json:"order,omitempty" validate:"omitempty,gte=0"`
}

// Apply copies the set fields onto the lesson and bumps UpdatedAt
func (u LessonUpdate) Apply(l *Lesson) {
	if u.Title != nil {
		l.Title = *u.Title
	}
	if u.Content != nil {
		l.Content = *u.Content
	}
	if u.Order != nil {
		l.Order = *u.Order
	}
	l.UpdatedAt = time.Now()
}
