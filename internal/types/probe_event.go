package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ProbeEvent is the append-only audit record of one learner interaction.
// Logging a probe never mutates mastery; that is a separate, explicit call.
type ProbeEvent struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_probe_event_user_ts,priority:1" json:"user_id"`
	ConceptID uuid.UUID `gorm:"type:uuid;not null;index" json:"concept_id"`

	Correct          bool           `gorm:"column:correct;not null" json:"correct"`
	LatencyMS        *int           `gorm:"column:latency_ms" json:"latency_ms,omitempty"`
	Rating           int            `gorm:"column:rating;not null" json:"rating"`
	ReviewDurationMS int            `gorm:"column:review_duration_ms;not null;default:0" json:"review_duration_ms"`
	ContextTag       string         `gorm:"column:context_tag" json:"context_tag,omitempty"`
	Extra            datatypes.JSON `gorm:"column:extra;type:jsonb" json:"extra,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now();index:idx_probe_event_user_ts,priority:2,sort:desc" json:"created_at"`
}

func (ProbeEvent) TableName() string { return "probe_event" }
