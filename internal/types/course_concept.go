package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CourseConcept places a concept into a course's curriculum (many-to-many).
type CourseConcept struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null;index:idx_course_concept,unique,priority:1" json:"course_id"`
	Course    *Course   `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	ConceptID uuid.UUID `gorm:"type:uuid;not null;index:idx_course_concept,unique,priority:2" json:"concept_id"`
	Concept   *Concept  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ConceptID;references:ID" json:"concept,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (CourseConcept) TableName() string { return "course_concept" }
