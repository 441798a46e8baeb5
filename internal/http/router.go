package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/lectorhq/lector-backend/internal/http/handlers"
	httpMW "github.com/lectorhq/lector-backend/internal/http/middleware"
	"github.com/lectorhq/lector-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	ConceptHandler  *httpH.ConceptHandler
	FrontierHandler *httpH.FrontierHandler
	ReviewHandler   *httpH.ReviewHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(httpMW.CORS())
	r.Use(httpMW.RequestLogger(cfg.Log))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Concepts and the prerequisite graph
		if cfg.ConceptHandler != nil {
			api.POST("/concepts", cfg.ConceptHandler.CreateConcept)
			api.POST("/concepts/:id/prerequisites", cfg.ConceptHandler.AddPrerequisite)
			api.GET("/concepts/:id/path", cfg.ConceptHandler.GetConceptPath)
			api.POST("/courses/:id/concepts", cfg.ConceptHandler.AssignToCourse)
		}

		// Frontier
		if cfg.FrontierHandler != nil {
			api.GET("/courses/:id/frontier", cfg.FrontierHandler.GetCourseFrontier)
		}

		// Reviews
		if cfg.ReviewHandler != nil {
			api.POST("/courses/:id/reviews", cfg.ReviewHandler.SubmitReview)
		}
	}

	return r
}
