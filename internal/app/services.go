package app

import (
	"gorm.io/gorm"

	"github.com/lectorhq/lector-backend/internal/platform/logger"
	"github.com/lectorhq/lector-backend/internal/platform/openai"
	"github.com/lectorhq/lector-backend/internal/services"
)

type Services struct {
	ConceptGraph services.ConceptGraphService
	ConceptState services.ConceptStateService
	Similarity   services.SimilarityService
	Lector       services.LectorService
	Frontier     services.FrontierService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos) Services {
	log.Info("Wiring services...")

	// Embeddings are optional: without a key, concepts are created with a
	// null embedding and the similarity index stays empty.
	embedder, err := openai.NewClient(log)
	if err != nil {
		log.Warn("Embeddings client unavailable; concepts will be created without embeddings", "error", err)
		embedder = nil
	}

	graphSvc := services.NewConceptGraphService(db, log, cfg.Scheduler,
		r.Concept, r.Prereq, r.Course, r.CourseConcept, r.UserConceptState, embedder)
	stateSvc := services.NewConceptStateService(db, log, cfg.Scheduler, r.UserConceptState, r.ProbeEvent)
	simSvc := services.NewSimilarityService(db, log, r.ConceptSimilarity)
	lectorSvc := services.NewLectorService(db, log, cfg.Scheduler, stateSvc, simSvc, r.UserConceptState, r.ProbeEvent)
	frontierSvc := services.NewFrontierService(log, graphSvc, lectorSvc)

	return Services{
		ConceptGraph: graphSvc,
		ConceptState: stateSvc,
		Similarity:   simSvc,
		Lector:       lectorSvc,
		Frontier:     frontierSvc,
	}
}
