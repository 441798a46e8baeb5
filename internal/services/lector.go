package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	pkgerrors "github.com/lectorhq/lector-backend/internal/pkg/errors"
	"github.com/lectorhq/lector-backend/internal/platform/logger"
	"github.com/lectorhq/lector-backend/internal/repos"
	"github.com/lectorhq/lector-backend/internal/types"
)

type SubmitReviewInput struct {
	UserID     uuid.UUID
	CourseID   uuid.UUID
	ConceptID  uuid.UUID
	Rating     types.Rating
	DurationMS *int
	ContextTag string
	Extra      datatypes.JSON
}

type ReviewResult struct {
	State        *types.UserConceptState
	NextReviewAt time.Time
}

// LectorService owns review scheduling: next-review computation with the
// semantic-interference dampener, frontier ranking, and the slowly-adapting
// learner profile.
type LectorService interface {
	CalculateNextReview(ctx context.Context, tx *gorm.DB, userID, courseID, conceptID uuid.UUID, rating types.Rating, durationMS *int) (time.Time, error)
	RankFrontierEntries(ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID, entries []*FrontierEntry) ([]*FrontierEntry, error)
	UpdateLearnerProfile(ctx context.Context, tx *gorm.DB, userID, conceptID uuid.UUID, rating types.Rating, durationMS *int) (*types.UserConceptState, error)
	GetDueConcepts(ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID) ([]*types.UserConceptState, error)
	// SubmitReview runs the whole review flow (mastery, profile, schedule,
	// probe log) in one transaction.
	SubmitReview(ctx context.Context, in SubmitReviewInput) (*ReviewResult, error)
}

type lectorService struct {
	db         *gorm.DB
	log        *logger.Logger
	cfg        SchedulerConfig
	stateSvc   ConceptStateService
	similarity SimilarityService
	stateRepo  repos.UserConceptStateRepo
	probeRepo  repos.ProbeEventRepo
}

func NewLectorService(
	db *gorm.DB,
	baseLog *logger.Logger,
	cfg SchedulerConfig,
	stateSvc ConceptStateService,
	similarity SimilarityService,
	stateRepo repos.UserConceptStateRepo,
	probeRepo repos.ProbeEventRepo,
) LectorService {
	return &lectorService{
		db:         db,
		log:        baseLog.With("service", "LectorService"),
		cfg:        cfg,
		stateSvc:   stateSvc,
		similarity: similarity,
		stateRepo:  stateRepo,
		probeRepo:  probeRepo,
	}
}

// buildReviewContext assembles the learner's interference context: the k most
// recent distinct probe concepts plus everything currently due in the course,
// minus the concept under consideration. Scheduling and ranking both go
// through this one helper so the two signals can never drift apart.
func (s *lectorService) buildReviewContext(ctx context.Context, tx *gorm.DB, userID, courseID, exclude uuid.UUID) ([]uuid.UUID, error) {
	recent, err := s.probeRepo.RecentDistinctConceptIDs(ctx, tx, userID, s.cfg.RecentContext)
	if err != nil {
		return nil, fmt.Errorf("load recent probe concepts: %w", err)
	}
	due, err := s.stateRepo.GetDueForCourse(ctx, tx, userID, courseID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("load due concepts: %w", err)
	}

	seen := make(map[uuid.UUID]bool, len(recent)+len(due))
	out := make([]uuid.UUID, 0, len(recent)+len(due))
	add := func(id uuid.UUID) {
		if id == exclude || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
	}
	for _, id := range recent {
		add(id)
	}
	for _, st := range due {
		add(st.ConceptID)
	}
	return out, nil
}

func (s *lectorService) CalculateNextReview(ctx context.Context, tx *gorm.DB, userID, courseID, conceptID uuid.UUID, rating types.Rating, durationMS *int) (time.Time, error) {
	if !rating.IsValid() {
		return time.Time{}, fmt.Errorf("%w: %d", pkgerrors.ErrInvalidRating, rating)
	}

	state, err := s.stateSvc.GetOrCreate(ctx, tx, userID, conceptID)
	if err != nil {
		return time.Time{}, err
	}

	intervalMin := s.cfg.IntervalsByRating[rating]
	intervalMin *= 1 + float64(state.Exposures)*s.cfg.ExposureMultiplier
	if durationMS != nil && *durationMS > 0 {
		d := float64(*durationMS)
		if d < s.cfg.DurationFloorMS {
			d = s.cfg.DurationFloorMS
		}
		factor := s.cfg.DurationBaseMS / d
		if factor < s.cfg.DurationMin {
			factor = s.cfg.DurationMin
		}
		if factor > s.cfg.DurationMax {
			factor = s.cfg.DurationMax
		}
		intervalMin *= factor
	}

	contextIDs, err := s.buildReviewContext(ctx, tx, userID, courseID, conceptID)
	if err != nil {
		return time.Time{}, err
	}
	sigma, err := s.similarity.MaxSimilarity(ctx, tx, conceptID, contextIDs)
	if err != nil {
		return time.Time{}, err
	}
	// Confusable concepts come back sooner: 1/(1+λσ) shrinks the interval as
	// semantic risk rises, never to zero.
	if sigma > 0 {
		intervalMin /= 1 + s.cfg.Lambda*sigma
	}
	if intervalMin < 1 {
		intervalMin = 1
	}

	now := time.Now().UTC()
	next := now.Add(time.Duration(intervalMin * float64(time.Minute)))
	state.NextReviewAt = &next
	state.LastSeenAt = &now
	if err := s.stateRepo.Save(ctx, tx, state); err != nil {
		return time.Time{}, fmt.Errorf("save review schedule: %w", err)
	}
	return next, nil
}

// RankFrontierEntries orders unlocked entries by priority
// (1 - mastery) - λ·sensitivity·σ descending, ties broken by slug so the
// ordering is stable across requests. Locked entries trail the unlocked block
// untouched; they are not actionable, so their relative order does not matter.
func (s *lectorService) RankFrontierEntries(ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID, entries []*FrontierEntry) ([]*FrontierEntry, error) {
	var unlocked, locked []*FrontierEntry
	for _, e := range entries {
		if e.Unlocked {
			unlocked = append(unlocked, e)
		} else {
			locked = append(locked, e)
		}
	}
	if len(unlocked) == 0 {
		return append(unlocked, locked...), nil
	}

	contextIDs, err := s.buildReviewContext(ctx, tx, userID, courseID, uuid.Nil)
	if err != nil {
		return nil, err
	}

	priority := make(map[uuid.UUID]float64, len(unlocked))
	for _, e := range unlocked {
		ids := contextIDs
		for i, id := range contextIDs {
			if id == e.Concept.ID {
				ids = make([]uuid.UUID, 0, len(contextIDs)-1)
				ids = append(ids, contextIDs[:i]...)
				ids = append(ids, contextIDs[i+1:]...)
				break
			}
		}
		sigma, err := s.similarity.MaxSimilarity(ctx, tx, e.Concept.ID, ids)
		if err != nil {
			return nil, err
		}
		sensitivity := types.DefaultSemanticSensitivity
		if e.State != nil {
			sensitivity = e.State.SemanticSensitivity
		}
		priority[e.Concept.ID] = (1 - e.Mastery()) - s.cfg.Lambda*sensitivity*sigma
	}

	sort.SliceStable(unlocked, func(i, j int) bool {
		pi, pj := priority[unlocked[i].Concept.ID], priority[unlocked[j].Concept.ID]
		if pi != pj {
			return pi > pj
		}
		return unlocked[i].Concept.Slug < unlocked[j].Concept.Slug
	})
	return append(unlocked, locked...), nil
}

func (s *lectorService) UpdateLearnerProfile(ctx context.Context, tx *gorm.DB, userID, conceptID uuid.UUID, rating types.Rating, durationMS *int) (*types.UserConceptState, error) {
	if !rating.IsValid() {
		return nil, fmt.Errorf("%w: %d", pkgerrors.ErrInvalidRating, rating)
	}
	state, err := s.stateSvc.GetOrCreate(ctx, tx, userID, conceptID)
	if err != nil {
		return nil, err
	}

	alpha := s.cfg.ProfileAlpha
	successTarget := 0.0
	if rating.Successful() {
		successTarget = 1.0
	}
	state.SuccessRate += alpha * (successTarget - state.SuccessRate)
	state.RetentionRate += alpha * (state.Mastery - state.RetentionRate)

	if durationMS != nil && *durationMS > 0 {
		d := float64(*durationMS)
		if d < s.cfg.DurationFloorMS {
			d = s.cfg.DurationFloorMS
		}
		speedTarget := clampRange(s.cfg.DurationBaseMS/d, s.cfg.LearningSpeedMin, s.cfg.LearningSpeedMax)
		state.LearningSpeed = clampRange(
			state.LearningSpeed+alpha*(speedTarget-state.LearningSpeed),
			s.cfg.LearningSpeedMin, s.cfg.LearningSpeedMax)
	}

	// Sensitivity is multiplicative, not an EMA: decay on poor ratings,
	// slight boost on good ones, clamped both ways.
	if rating.Successful() {
		state.SemanticSensitivity *= s.cfg.SensitivityBoost
	} else {
		state.SemanticSensitivity *= s.cfg.SensitivityDecay
	}
	state.SemanticSensitivity = clampRange(state.SemanticSensitivity, s.cfg.SensitivityMin, s.cfg.SensitivityMax)

	if err := s.stateRepo.Save(ctx, tx, state); err != nil {
		return nil, fmt.Errorf("save learner profile: %w", err)
	}
	return state, nil
}

func (s *lectorService) GetDueConcepts(ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID) ([]*types.UserConceptState, error) {
	return s.stateRepo.GetDueForCourse(ctx, tx, userID, courseID, time.Now().UTC())
}

func (s *lectorService) SubmitReview(ctx context.Context, in SubmitReviewInput) (*ReviewResult, error) {
	if in.UserID == uuid.Nil || in.CourseID == uuid.Nil || in.ConceptID == uuid.Nil {
		return nil, fmt.Errorf("%w: user_id, course_id and concept_id are required", pkgerrors.ErrInvalidArgument)
	}
	if !in.Rating.IsValid() {
		return nil, fmt.Errorf("%w: %d", pkgerrors.ErrInvalidRating, in.Rating)
	}

	var result ReviewResult
	run := func(tx *gorm.DB) error {
		if _, err := s.stateSvc.UpdateMastery(ctx, tx, in.UserID, in.ConceptID, in.Rating.Successful(), in.DurationMS); err != nil {
			return err
		}
		if _, err := s.UpdateLearnerProfile(ctx, tx, in.UserID, in.ConceptID, in.Rating, in.DurationMS); err != nil {
			return err
		}
		next, err := s.CalculateNextReview(ctx, tx, in.UserID, in.CourseID, in.ConceptID, in.Rating, in.DurationMS)
		if err != nil {
			return err
		}
		if _, err := s.stateSvc.LogProbeEvent(ctx, tx, LogProbeEventInput{
			UserID:           in.UserID,
			ConceptID:        in.ConceptID,
			Correct:          in.Rating.Successful(),
			LatencyMS:        in.DurationMS,
			Rating:           in.Rating,
			ReviewDurationMS: derefInt(in.DurationMS),
			ContextTag:       in.ContextTag,
			Extra:            in.Extra,
		}); err != nil {
			return err
		}
		state, err := s.stateRepo.Get(ctx, tx, in.UserID, in.ConceptID)
		if err != nil {
			return fmt.Errorf("reload concept state: %w", err)
		}
		result = ReviewResult{State: state, NextReviewAt: next}
		return nil
	}

	if s.db == nil {
		if err := run(nil); err != nil {
			return nil, err
		}
		return &result, nil
	}
	if err := s.db.WithContext(ctx).Transaction(run); err != nil {
		return nil, err
	}
	return &result, nil
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
