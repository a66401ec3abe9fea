package models

import (
	"time"

	"github.com/google/uuid"
)

// MaterialType represents the kind of downloadable material
type MaterialType string

const (
	MaterialTypePDF      MaterialType = "pdf"
	MaterialTypeVideo    MaterialType = "video"
	MaterialTypeDocument MaterialType = "document"
	MaterialTypeOther    MaterialType = "other"
)

// ValidMaterialType returns true if the given type is a known material type
func ValidMaterialType(t MaterialType) bool {
	switch t {
	case MaterialTypePDF, MaterialTypeVideo, MaterialTypeDocument, MaterialTypeOther:
		return true
	}
	return false
}

// Material represents a downloadable file attached to a lesson. The
// FileKey references a blob held in the separate blob store; deleting a
// material also releases the blob.
type Material struct {
	ID           uuid.UUID    `json:"id" db:"id"`
	LessonID     uuid.UUID    `json:"lesson_id" db:"lesson_id"`
	Title        string       `json:"title" db:"title"`
	FileKey      string       `json:"file_key" db:"file_key"` // blob store reference
	FileName     string       `json:"file_name" db:"file_name"`
	MaterialType MaterialType `json:"material_type" db:"material_type"`
	Description  string       `json:"description,omitempty" db:"description"`
	UploadedAt   time.Time    `json:"uploaded_at" db:"uploaded_at"`
}

// TableName returns the table name for the Material model
func (Material) TableName() string {
	return "materials"
}

// NewMaterial creates a new Material instance
func NewMaterial(lessonID uuid.UUID, title, fileKey, fileName string, materialType MaterialType, description string) *Material {
	return &Material{
		ID:           uuid.New(),
		LessonID:     lessonID,
		Title:        title,
		FileKey:      fileKey,
		FileName:     fileName,
		MaterialType: materialType,
		Description:  description,
		UploadedAt:   time.Now(),
	}
}

// MaterialUpdate lists the material fields that are mutable after
// creation. The file itself is replaced by delete-and-reupload, so the
// blob reference is not among them.
type MaterialUpdate struct {
	Title        *string       `json:"title,omitempty"`
	MaterialType *MaterialType `json:"material_type,omitempty"`
	Description  *string       `json:"description,omitempty"`
}

// Apply copies the set fields onto the material
func (u MaterialUpdate) Apply(m *Material) {
	if u.Title != nil {
		m.Title = *u.Title
	}
	if u.MaterialType != nil {
		m.MaterialType = *u.MaterialType
	}
	if u.Description != nil {
		m.Description = *u.Description
	}
}
