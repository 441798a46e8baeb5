package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lectorhq/lector-backend/internal/platform/logger"
	"github.com/lectorhq/lector-backend/internal/repos"
)

// SimilarityService reads the precomputed pairwise concept-similarity index.
// The index is populated out-of-band at course-authoring time; the scheduler
// only ever queries it.
type SimilarityService interface {
	// MaxSimilarity computes σ: the maximum similarity between conceptID and
	// any concept in contextIDs. Missing rows read as 0; an empty context
	// yields 0. Never an error path for sparse data.
	MaxSimilarity(ctx context.Context, tx *gorm.DB, conceptID uuid.UUID, contextIDs []uuid.UUID) (float64, error)
}

type similarityService struct {
	db      *gorm.DB
	log     *logger.Logger
	simRepo repos.ConceptSimilarityRepo
}

func NewSimilarityService(db *gorm.DB, baseLog *logger.Logger, simRepo repos.ConceptSimilarityRepo) SimilarityService {
	return &similarityService{
		db:      db,
		log:     baseLog.With("service", "SimilarityService"),
		simRepo: simRepo,
	}
}

func (s *similarityService) MaxSimilarity(ctx context.Context, tx *gorm.DB, conceptID uuid.UUID, contextIDs []uuid.UUID) (float64, error) {
	if conceptID == uuid.Nil || len(contextIDs) == 0 {
		return 0, nil
	}
	rows, err := s.simRepo.GetAmong(ctx, tx, conceptID, contextIDs)
	if err != nil {
		return 0, fmt.Errorf("load similarity rows: %w", err)
	}
	sigma := 0.0
	for _, row := range rows {
		if row.Similarity > sigma {
			sigma = row.Similarity
		}
	}
	if sigma < 0 {
		sigma = 0
	}
	if sigma > 1 {
		sigma = 1
	}
	return sigma, nil
}
