package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lectorhq/lector-backend/internal/platform/logger"
	"github.com/lectorhq/lector-backend/internal/types"
)

type ProbeEventRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.ProbeEvent) error
	// RecentDistinctConceptIDs returns up to limit concept ids from the
	// learner's probe log, most-recent-first, deduplicated.
	RecentDistinctConceptIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]uuid.UUID, error)
}

type probeEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProbeEventRepo(db *gorm.DB, baseLog *logger.Logger) ProbeEventRepo {
	return &probeEventRepo{db: db, log: baseLog.With("repo", "ProbeEventRepo")}
}

func (r *probeEventRepo) Create(ctx context.Context, tx *gorm.DB, row *types.ProbeEvent) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if row == nil || row.UserID == uuid.Nil || row.ConceptID == uuid.Nil {
		return nil
	}
	return t.WithContext(ctx).Create(row).Error
}

func (r *probeEventRepo) RecentDistinctConceptIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]uuid.UUID, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []uuid.UUID
	if userID == uuid.Nil || limit <= 0 {
		return out, nil
	}
	// Window over the raw log rather than DISTINCT ON, so the ordering key
	// (latest event per concept) is explicit.
	err := t.WithContext(ctx).Raw(`
		SELECT concept_id FROM (
			SELECT concept_id, MAX(created_at) AS last_ts
			FROM probe_event
			WHERE user_id = ?
			GROUP BY concept_id
		) recent
		ORDER BY recent.last_ts DESC
		LIMIT ?`, userID, limit).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
