package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Difficulty represents the difficulty level of a course
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// ValidDifficulty returns true if the given difficulty is a known level
func ValidDifficulty(d Difficulty) bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// Course represents a published or draft course owned by an author.
// The slug is derived from the title at creation time when not supplied
// and is never recomputed afterwards; it is globally unique.
type Course struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Title        string     `json:"title" db:"title"`
	Slug         string     `json:"slug" db:"slug"` // URL-friendly identifier, immutable after creation
	Description  string     `json:"description" db:"description"`
	AuthorID     uuid.UUID  `json:"author_id" db:"author_id"` // owning principal, set once
	Difficulty   Difficulty `json:"difficulty" db:"difficulty"`
	ThumbnailKey string     `json:"thumbnail_key,omitempty" db:"thumbnail_key"` // blob reference, optional
	IsPublished  bool       `json:"is_published" db:"is_published"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Course model
func (Course) TableName() string {
	return "courses"
}

// NewCourse creates a new Course instance. When slug is empty it is
// derived from the title.
func NewCourse(authorID uuid.UUID, title, slug, description string, difficulty Difficulty) *Course {
	if slug == "" {
		slug = Slugify(title)
	}
	now := time.Now()
	return &Course{
		ID:          uuid.New(),
		Title:       title,
		Slug:        slug,
		Description: description,
		AuthorID:    authorID,
		Difficulty:  difficulty,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsAuthoredBy returns true if the course is owned by the given user
func (c *Course) IsAuthoredBy(u *User) bool {
	return u != nil && c.AuthorID == u.ID
}

// CourseUpdate lists the course fields that are legally mutable after
// creation. Slug and author are deliberately absent: neither may change
// once the course exists.
type CourseUpdate struct {
	Title        *string     `json:"title,omitempty"`
	Description  *string     `json:"description,omitempty"`
	Difficulty   *Difficulty `json:"difficulty,omitempty"`
	ThumbnailKey *string     `json:"thumbnail_key,omitempty"`
	IsPublished  *bool       `json:"is_published,omitempty"`
}

// Apply copies the set fields onto the course and bumps UpdatedAt
func (u CourseUpdate) Apply(c *Course) {
	if u.Title != nil {
		c.Title = *u.Title
	}
	if u.Description != nil {
		c.Description = *u.Description
	}
	if u.Difficulty != nil {
		c.Difficulty = *u.Difficulty
	}
	if u.ThumbnailKey != nil {
		c.ThumbnailKey = *u.ThumbnailKey
	}
	if u.IsPublished != nil {
		c.IsPublished = *u.IsPublished
	}
	c.UpdatedAt = time.Now()
}

var (
	slugNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)
	slugHyphens  = regexp.MustCompile(`-+`)
)

// Slugify converts free text into a lowercase [a-z0-9-] slug. The result
// is capped at 100 characters and falls back to "course" for input that
// reduces to nothing.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugNonAlnum.ReplaceAllString(s, "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 100 {
		s = strings.Trim(s[:100], "-")
	}
	if s == "" {
		s = "course"
	}
	return s
}
