package app

import (
	"github.com/gin-gonic/gin"

	internalhttp "github.com/lectorhq/lector-backend/internal/http"
	"github.com/lectorhq/lector-backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, handlers Handlers) *gin.Engine {
	return internalhttp.NewRouter(internalhttp.RouterConfig{
		Log:             log,
		ConceptHandler:  handlers.Concept,
		FrontierHandler: handlers.Frontier,
		ReviewHandler:   handlers.Review,
		HealthHandler:   handlers.Health,
	})
}
