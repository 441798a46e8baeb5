package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lectorhq/lector-backend/internal/platform/logger"
	"github.com/lectorhq/lector-backend/internal/types"
)

type ConceptRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Concept) ([]*types.Concept, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Concept, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Concept, error)
	GetByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Concept, error)
	SlugsWithPrefix(ctx context.Context, tx *gorm.DB, prefix string) ([]string, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
}

type conceptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConceptRepo(db *gorm.DB, baseLog *logger.Logger) ConceptRepo {
	return &conceptRepo{db: db, log: baseLog.With("repo", "ConceptRepo")}
}

func (r *conceptRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Concept) ([]*types.Concept, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Concept{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *conceptRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Concept, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(ctx, tx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *conceptRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Concept, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Concept
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *conceptRepo) GetByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Concept, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Concept
	if courseID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Joins("JOIN course_concept cc ON cc.concept_id = concept.id AND cc.deleted_at IS NULL").
		Where("cc.course_id = ?", courseID).
		Order("concept.slug ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *conceptRepo) SlugsWithPrefix(ctx context.Context, tx *gorm.DB, prefix string) ([]string, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []string
	if prefix == "" {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Model(&types.Concept{}).
		Where("slug = ? OR slug LIKE ?", prefix, prefix+"-%").
		Pluck("slug", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *conceptRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return t.WithContext(ctx).
		Model(&types.Concept{}).
		Where("id = ?", id).
		Updates(updates).Error
}
