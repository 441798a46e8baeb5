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

type CourseConceptRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, courseID, conceptID uuid.UUID) error
	GetByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.CourseConcept, error)
}

type courseConceptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseConceptRepo(db *gorm.DB, baseLog *logger.Logger) CourseConceptRepo {
	return &courseConceptRepo{db: db, log: baseLog.With("repo", "CourseConceptRepo")}
}

func (r *courseConceptRepo) Upsert(ctx context.Context, tx *gorm.DB, courseID, conceptID uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if courseID == uuid.Nil || conceptID == uuid.Nil {
		return nil
	}
	now := time.Now().UTC()
	row := &types.CourseConcept{
		ID:        uuid.New(),
		CourseID:  courseID,
		ConceptID: conceptID,
		UpdatedAt: now,
	}
	return t.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "course_id"}, {Name: "concept_id"}},
			DoNothing: true,
		}).
		Create(row).Error
}

func (r *courseConceptRepo) GetByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.CourseConcept, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.CourseConcept
	if courseID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).Where("course_id = ?", courseID).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
