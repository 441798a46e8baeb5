package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConceptPrerequisite is a directed edge: PrereqID must be mastered before
// ConceptID unlocks. The edge set is kept acyclic by the graph service.
type ConceptPrerequisite struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ConceptID uuid.UUID `gorm:"type:uuid;not null;index:idx_concept_prerequisite,unique,priority:1" json:"concept_id"`
	Concept   *Concept  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ConceptID;references:ID" json:"concept,omitempty"`
	PrereqID  uuid.UUID `gorm:"type:uuid;not null;index:idx_concept_prerequisite,unique,priority:2" json:"prereq_id"`
	Prereq    *Concept  `gorm:"constraint:OnDelete:CASCADE;foreignKey:PrereqID;references:ID" json:"prereq,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ConceptPrerequisite) TableName() string { return "concept_prerequisite" }
