package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lectorhq/lector-backend/internal/platform/logger"
	"github.com/lectorhq/lector-backend/internal/types"
)

type ConceptSimilarityRepo interface {
	// Upsert writes one undirected pair score. Callers are expected to pass a
	// canonical (a, b) ordering; the batch precompute does.
	Upsert(ctx context.Context, tx *gorm.DB, conceptAID, conceptBID uuid.UUID, similarity float64) error
	// GetAmong returns every stored similarity row linking conceptID with any
	// concept in otherIDs, regardless of column order.
	GetAmong(ctx context.Context, tx *gorm.DB, conceptID uuid.UUID, otherIDs []uuid.UUID) ([]*types.ConceptSimilarity, error)
}

type conceptSimilarityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConceptSimilarityRepo(db *gorm.DB, baseLog *logger.Logger) ConceptSimilarityRepo {
	return &conceptSimilarityRepo{db: db, log: baseLog.With("repo", "ConceptSimilarityRepo")}
}

func (r *conceptSimilarityRepo) Upsert(ctx context.Context, tx *gorm.DB, conceptAID, conceptBID uuid.UUID, similarity float64) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if conceptAID == uuid.Nil || conceptBID == uuid.Nil || conceptAID == conceptBID {
		return nil
	}
	now := time.Now().UTC()
	row := &types.ConceptSimilarity{
		ID:         uuid.New(),
		ConceptAID: conceptAID,
		ConceptBID: conceptBID,
		Similarity: similarity,
		UpdatedAt:  now,
	}
	return t.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "concept_a_id"}, {Name: "concept_b_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"similarity", "updated_at"}),
		}).
		Create(row).Error
}

func (r *conceptSimilarityRepo) GetAmong(ctx context.Context, tx *gorm.DB, conceptID uuid.UUID, otherIDs []uuid.UUID) ([]*types.ConceptSimilarity, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.ConceptSimilarity
	if conceptID == uuid.Nil || len(otherIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("(concept_a_id = ? AND concept_b_id IN ?) OR (concept_b_id = ? AND concept_a_id IN ?)",
			conceptID, otherIDs, conceptID, otherIDs).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
