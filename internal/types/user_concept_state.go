package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Learner profile baselines. A learner with no state behaves as if they had
// these values.
const (
	DefaultSuccessRate         = 0.5
	DefaultRetentionRate       = 0.5
	DefaultLearningSpeed       = 1.0
	DefaultSemanticSensitivity = 1.0
)

// UserConceptState is the per-(user, concept) mastery row. Created lazily on
// first interaction and never deleted; it is the historical record the
// scheduler reads and writes.
type UserConceptState struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_user_concept_state,unique,priority:1" json:"user_id"`
	ConceptID uuid.UUID `gorm:"type:uuid;not null;index:idx_user_concept_state,unique,priority:2" json:"concept_id"`

	Mastery   float64 `gorm:"column:mastery;not null;default:0" json:"mastery"` // 0..1
	Exposures int     `gorm:"column:exposures;not null;default:0" json:"exposures"`

	LastSeenAt   *time.Time `gorm:"column:last_seen_at;index" json:"last_seen_at,omitempty"`
	NextReviewAt *time.Time `gorm:"column:next_review_at;index" json:"next_review_at,omitempty"`

	// Slowly-adapting learner profile, EMA-updated on every review.
	SuccessRate         float64 `gorm:"column:success_rate;not null;default:0.5" json:"success_rate"`
	RetentionRate       float64 `gorm:"column:retention_rate;not null;default:0.5" json:"retention_rate"`
	LearningSpeed       float64 `gorm:"column:learning_speed;not null;default:1" json:"learning_speed"`
	SemanticSensitivity float64 `gorm:"column:semantic_sensitivity;not null;default:1" json:"semantic_sensitivity"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (UserConceptState) TableName() string { return "user_concept_state" }
