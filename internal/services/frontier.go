package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/lectorhq/lector-backend/internal/pkg/errors"
	"github.com/lectorhq/lector-backend/internal/platform/logger"
)

// ConceptSummary is the API-facing shape of one course concept for a learner.
type ConceptSummary struct {
	ConceptID    uuid.UUID  `json:"concept_id"`
	Slug         string     `json:"slug"`
	Name         string     `json:"name"`
	Domain       string     `json:"domain"`
	Mastery      float64    `json:"mastery"`
	Exposures    int        `json:"exposures"`
	Unlocked     bool       `json:"unlocked"`
	NextReviewAt *time.Time `json:"next_review_at,omitempty"`
	LastSeenAt   *time.Time `json:"last_seen_at,omitempty"`
}

type FrontierResponse struct {
	Frontier     []ConceptSummary `json:"frontier"`
	DueForReview []ConceptSummary `json:"due_for_review"`
	ComingSoon   []ConceptSummary `json:"coming_soon"`
	DueCount     int              `json:"due_count"`
	AvgMastery   float64          `json:"avg_mastery"`
}

type FrontierService interface {
	BuildCourseFrontier(ctx context.Context, userID, courseID uuid.UUID) (*FrontierResponse, error)
}

type frontierService struct {
	log      *logger.Logger
	graphSvc ConceptGraphService
	lector   LectorService
}

func NewFrontierService(baseLog *logger.Logger, graphSvc ConceptGraphService, lector LectorService) FrontierService {
	return &frontierService{
		log:      baseLog.With("service", "FrontierService"),
		graphSvc: graphSvc,
		lector:   lector,
	}
}

// BuildCourseFrontier assembles the learner's view of a course: ranked
// unlocked concepts, the due-for-review queue, locked coming-soon concepts,
// and an average mastery across every assigned concept. Concepts the learner
// has never touched count as mastery 0 in the average, so the figure tracks
// curriculum coverage rather than attempted items only.
func (s *frontierService) BuildCourseFrontier(ctx context.Context, userID, courseID uuid.UUID) (*FrontierResponse, error) {
	if userID == uuid.Nil || courseID == uuid.Nil {
		return nil, fmt.Errorf("%w: user_id and course_id are required", pkgerrors.ErrInvalidArgument)
	}

	entries, err := s.graphSvc.GetFrontier(ctx, nil, userID, courseID)
	if err != nil {
		return nil, err
	}

	due, err := s.lector.GetDueConcepts(ctx, nil, userID, courseID)
	if err != nil {
		return nil, err
	}

	ranked, err := s.lector.RankFrontierEntries(ctx, nil, userID, courseID, entries)
	if err != nil {
		return nil, err
	}

	entryByConcept := make(map[uuid.UUID]*FrontierEntry, len(entries))
	totalMastery := 0.0
	for _, e := range entries {
		entryByConcept[e.Concept.ID] = e
		totalMastery += e.Mastery()
	}

	resp := &FrontierResponse{
		Frontier:     []ConceptSummary{},
		DueForReview: []ConceptSummary{},
		ComingSoon:   []ConceptSummary{},
		DueCount:     len(due),
	}
	if len(entries) > 0 {
		resp.AvgMastery = totalMastery / float64(len(entries))
	}

	for _, e := range ranked {
		if e.Unlocked {
			resp.Frontier = append(resp.Frontier, summarize(e))
		} else {
			resp.ComingSoon = append(resp.ComingSoon, summarize(e))
		}
	}
	for _, st := range due {
		e := entryByConcept[st.ConceptID]
		if e == nil {
			continue
		}
		resp.DueForReview = append(resp.DueForReview, summarize(e))
	}
	return resp, nil
}

func summarize(e *FrontierEntry) ConceptSummary {
	out := ConceptSummary{
		ConceptID: e.Concept.ID,
		Slug:      e.Concept.Slug,
		Name:      e.Concept.Name,
		Domain:    e.Concept.Domain,
		Mastery:   e.Mastery(),
		Unlocked:  e.Unlocked,
	}
	if e.State != nil {
		out.Exposures = e.State.Exposures
		out.NextReviewAt = e.State.NextReviewAt
		out.LastSeenAt = e.State.LastSeenAt
	}
	return out
}
