package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lectorhq/lector-backend/internal/platform/logger"
	"github.com/lectorhq/lector-backend/internal/types"
)

type ConceptPrerequisiteRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.ConceptPrerequisite) error
	GetPair(ctx context.Context, tx *gorm.DB, conceptID, prereqID uuid.UUID) (*types.ConceptPrerequisite, error)
	// GetByConceptIDs returns every edge whose dependent concept is in ids,
	// i.e. the direct prerequisites of those concepts.
	GetByConceptIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.ConceptPrerequisite, error)
}

type conceptPrerequisiteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConceptPrerequisiteRepo(db *gorm.DB, baseLog *logger.Logger) ConceptPrerequisiteRepo {
	return &conceptPrerequisiteRepo{db: db, log: baseLog.With("repo", "ConceptPrerequisiteRepo")}
}

func (r *conceptPrerequisiteRepo) Create(ctx context.Context, tx *gorm.DB, row *types.ConceptPrerequisite) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if row == nil || row.ConceptID == uuid.Nil || row.PrereqID == uuid.Nil {
		return nil
	}
	return t.WithContext(ctx).Create(row).Error
}

func (r *conceptPrerequisiteRepo) GetPair(ctx context.Context, tx *gorm.DB, conceptID, prereqID uuid.UUID) (*types.ConceptPrerequisite, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if conceptID == uuid.Nil || prereqID == uuid.Nil {
		return nil, nil
	}
	var row types.ConceptPrerequisite
	err := t.WithContext(ctx).
		Where("concept_id = ? AND prereq_id = ?", conceptID, prereqID).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *conceptPrerequisiteRepo) GetByConceptIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.ConceptPrerequisite, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.ConceptPrerequisite
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).Where("concept_id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
