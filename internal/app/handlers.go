package app

import (
	httpH "github.com/lectorhq/lector-backend/internal/http/handlers"
	"github.com/lectorhq/lector-backend/internal/platform/logger"
)

type Handlers struct {
	Concept  *httpH.ConceptHandler
	Frontier *httpH.FrontierHandler
	Review   *httpH.ReviewHandler
	Health   *httpH.HealthHandler
}

func wireHandlers(log *logger.Logger, s Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Concept:  httpH.NewConceptHandler(log, s.ConceptGraph),
		Frontier: httpH.NewFrontierHandler(log, s.Frontier),
		Review:   httpH.NewReviewHandler(log, s.Lector),
		Health:   httpH.NewHealthHandler(),
	}
}
