package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Concept struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Domain string    `gorm:"column:domain;not null;index" json:"domain"`
	// Slug is globally unique; collisions are resolved by numeric suffixing
	// (base, base-2, base-3, ...) at creation time.
	Slug        string `gorm:"column:slug;not null;uniqueIndex" json:"slug"`
	Name        string `gorm:"column:name;not null" json:"name"`
	Description string `gorm:"column:description;type:text" json:"description"`
	Difficulty  *int   `gorm:"column:difficulty" json:"difficulty,omitempty"`
	// Embedding is best-effort: null when the embedding collaborator was
	// unavailable at creation time. Stored as a JSON []float32.
	Embedding datatypes.JSON `gorm:"column:embedding;type:jsonb" json:"embedding,omitempty"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Concept) TableName() string { return "concept" }
