package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lectorhq/lector-backend/internal/platform/logger"
	"github.com/lectorhq/lector-backend/internal/types"
)

type UserConceptStateRepo interface {
	Get(ctx context.Context, tx *gorm.DB, userID, conceptID uuid.UUID) (*types.UserConceptState, error)
	GetByUserAndConcepts(ctx context.Context, tx *gorm.DB, userID uuid.UUID, conceptIDs []uuid.UUID) ([]*types.UserConceptState, error)
	Create(ctx context.Context, tx *gorm.DB, row *types.UserConceptState) error
	Save(ctx context.Context, tx *gorm.DB, row *types.UserConceptState) error
	// GetDueForCourse returns the learner's states for course concepts whose
	// next_review_at is set and has elapsed.
	GetDueForCourse(ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID, now time.Time) ([]*types.UserConceptState, error)
}

type userConceptStateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserConceptStateRepo(db *gorm.DB, baseLog *logger.Logger) UserConceptStateRepo {
	return &userConceptStateRepo{db: db, log: baseLog.With("repo", "UserConceptStateRepo")}
}

func (r *userConceptStateRepo) Get(ctx context.Context, tx *gorm.DB, userID, conceptID uuid.UUID) (*types.UserConceptState, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if userID == uuid.Nil || conceptID == uuid.Nil {
		return nil, nil
	}
	var row types.UserConceptState
	err := t.WithContext(ctx).
		Where("user_id = ? AND concept_id = ?", userID, conceptID).
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

func (r *userConceptStateRepo) GetByUserAndConcepts(ctx context.Context, tx *gorm.DB, userID uuid.UUID, conceptIDs []uuid.UUID) ([]*types.UserConceptState, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.UserConceptState
	if userID == uuid.Nil || len(conceptIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("user_id = ? AND concept_id IN ?", userID, conceptIDs).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userConceptStateRepo) Create(ctx context.Context, tx *gorm.DB, row *types.UserConceptState) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if row == nil || row.UserID == uuid.Nil || row.ConceptID == uuid.Nil {
		return nil
	}
	return t.WithContext(ctx).Create(row).Error
}

func (r *userConceptStateRepo) Save(ctx context.Context, tx *gorm.DB, row *types.UserConceptState) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if row == nil || row.ID == uuid.Nil {
		return nil
	}
	row.UpdatedAt = time.Now().UTC()
	return t.WithContext(ctx).Save(row).Error
}

func (r *userConceptStateRepo) GetDueForCourse(ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID, now time.Time) ([]*types.UserConceptState, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.UserConceptState
	if userID == uuid.Nil || courseID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Joins("JOIN course_concept cc ON cc.concept_id = user_concept_state.concept_id AND cc.deleted_at IS NULL").
		Where("cc.course_id = ? AND user_concept_state.user_id = ?", courseID, userID).
		Where("user_concept_state.next_review_at IS NOT NULL AND user_concept_state.next_review_at <= ?", now).
		Order("user_concept_state.next_review_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
