package models

import (
	"time"

	"github.com/google/uuid"
)

// Enrollment is the relation granting a student access to a course's
// gated content. The (user_id, course_id) pair is unique at the store
// level; that constraint, not the get-or-create check, is what makes
// enrollment idempotent under concurrent submissions.
type Enrollment struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	CourseID   uuid.UUID `json:"course_id" db:"course_id"`
	EnrolledAt time.Time `json:"enrolled_at" db:"enrolled_at"`

	// Course is optionally preloaded for listing endpoints
	Course *Course `json:"course,omitempty" db:"-"`
}

// TableName returns the table name for the Enrollment model
func (Enrollment) TableName() string {
	return "enrollments"
}

// NewEnrollment creates a new Enrollment instance
func NewEnrollment(userID, courseID uuid.UUID) *Enrollment {
	return &Enrollment{
		ID:         uuid.New(),
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: time.Now(),
	}
}
