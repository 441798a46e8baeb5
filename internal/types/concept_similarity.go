package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConceptSimilarity is an undirected pairwise score in [0,1], populated by an
// out-of-band batch at course-authoring time. Stored once per pair; readers
// must check both column orders. A missing row means similarity 0.
type ConceptSimilarity struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ConceptAID uuid.UUID `gorm:"type:uuid;not null;index:idx_concept_similarity,unique,priority:1" json:"concept_a_id"`
	ConceptBID uuid.UUID `gorm:"type:uuid;not null;index:idx_concept_similarity,unique,priority:2" json:"concept_b_id"`
	Similarity float64   `gorm:"column:similarity;not null;default:0" json:"similarity"` // 0..1

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ConceptSimilarity) TableName() string { return "concept_similarity" }
