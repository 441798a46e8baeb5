package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	pkgerrors "github.com/lectorhq/lector-backend/internal/pkg/errors"
	"github.com/lectorhq/lector-backend/internal/platform/logger"
	"github.com/lectorhq/lector-backend/internal/repos"
	"github.com/lectorhq/lector-backend/internal/types"
)

type LogProbeEventInput struct {
	UserID           uuid.UUID
	ConceptID        uuid.UUID
	Correct          bool
	LatencyMS        *int
	Rating           types.Rating
	ReviewDurationMS int
	ContextTag       string
	Extra            datatypes.JSON
}

type ConceptStateService interface {
	GetOrCreate(ctx context.Context, tx *gorm.DB, userID, conceptID uuid.UUID) (*types.UserConceptState, error)
	UpdateMastery(ctx context.Context, tx *gorm.DB, userID, conceptID uuid.UUID, correct bool, latencyMS *int) (*types.UserConceptState, error)
	LogProbeEvent(ctx context.Context, tx *gorm.DB, in LogProbeEventInput) (*types.ProbeEvent, error)
}

type conceptStateService struct {
	db        *gorm.DB
	log       *logger.Logger
	cfg       SchedulerConfig
	stateRepo repos.UserConceptStateRepo
	probeRepo repos.ProbeEventRepo
}

func NewConceptStateService(
	db *gorm.DB,
	baseLog *logger.Logger,
	cfg SchedulerConfig,
	stateRepo repos.UserConceptStateRepo,
	probeRepo repos.ProbeEventRepo,
) ConceptStateService {
	return &conceptStateService{
		db:        db,
		log:       baseLog.With("service", "ConceptStateService"),
		cfg:       cfg,
		stateRepo: stateRepo,
		probeRepo: probeRepo,
	}
}

func (s *conceptStateService) GetOrCreate(ctx context.Context, tx *gorm.DB, userID, conceptID uuid.UUID) (*types.UserConceptState, error) {
	if userID == uuid.Nil || conceptID == uuid.Nil {
		return nil, fmt.Errorf("%w: user_id and concept_id are required", pkgerrors.ErrInvalidArgument)
	}
	row, err := s.stateRepo.Get(ctx, tx, userID, conceptID)
	if err != nil {
		return nil, fmt.Errorf("load concept state: %w", err)
	}
	if row != nil {
		return row, nil
	}
	row = &types.UserConceptState{
		ID:                  uuid.New(),
		UserID:              userID,
		ConceptID:           conceptID,
		Mastery:             0,
		Exposures:           0,
		SuccessRate:         types.DefaultSuccessRate,
		RetentionRate:       types.DefaultRetentionRate,
		LearningSpeed:       types.DefaultLearningSpeed,
		SemanticSensitivity: types.DefaultSemanticSensitivity,
	}
	if err := s.stateRepo.Create(ctx, tx, row); err != nil {
		return nil, fmt.Errorf("create concept state: %w", err)
	}
	return row, nil
}

// UpdateMastery nudges mastery by the outcome delta minus a capped latency
// penalty (slow answers are penalized even when correct), clamps to [0,1],
// and bumps the exposure counter.
func (s *conceptStateService) UpdateMastery(ctx context.Context, tx *gorm.DB, userID, conceptID uuid.UUID, correct bool, latencyMS *int) (*types.UserConceptState, error) {
	state, err := s.GetOrCreate(ctx, tx, userID, conceptID)
	if err != nil {
		return nil, err
	}

	delta := s.cfg.IncorrectDelta
	if correct {
		delta = s.cfg.CorrectDelta
	}
	if latencyMS != nil && *latencyMS > 0 && s.cfg.LatencyDivisorMS > 0 {
		penalty := float64(*latencyMS) / s.cfg.LatencyDivisorMS
		if penalty > s.cfg.LatencyPenaltyCap {
			penalty = s.cfg.LatencyPenaltyCap
		}
		delta -= penalty
	}

	now := time.Now().UTC()
	state.Mastery = clamp01(state.Mastery + delta)
	state.Exposures++
	state.LastSeenAt = &now

	if err := s.stateRepo.Save(ctx, tx, state); err != nil {
		return nil, fmt.Errorf("save concept state: %w", err)
	}
	return state, nil
}

// LogProbeEvent is a pure append: it never mutates mastery or scheduling.
func (s *conceptStateService) LogProbeEvent(ctx context.Context, tx *gorm.DB, in LogProbeEventInput) (*types.ProbeEvent, error) {
	if in.UserID == uuid.Nil || in.ConceptID == uuid.Nil {
		return nil, fmt.Errorf("%w: user_id and concept_id are required", pkgerrors.ErrInvalidArgument)
	}
	if !in.Rating.IsValid() {
		return nil, fmt.Errorf("%w: %d", pkgerrors.ErrInvalidRating, in.Rating)
	}
	row := &types.ProbeEvent{
		ID:               uuid.New(),
		UserID:           in.UserID,
		ConceptID:        in.ConceptID,
		Correct:          in.Correct,
		LatencyMS:        in.LatencyMS,
		Rating:           int(in.Rating),
		ReviewDurationMS: in.ReviewDurationMS,
		ContextTag:       in.ContextTag,
		Extra:            in.Extra,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.probeRepo.Create(ctx, tx, row); err != nil {
		return nil, fmt.Errorf("append probe event: %w", err)
	}
	return row, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
