package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lectorhq/lector-backend/internal/http/response"
	"github.com/lectorhq/lector-backend/internal/platform/apierr"
	"github.com/lectorhq/lector-backend/internal/platform/logger"
	"github.com/lectorhq/lector-backend/internal/services"
	"github.com/lectorhq/lector-backend/internal/types"
)

type ReviewHandler struct {
	log    *logger.Logger
	lector services.LectorService
}

func NewReviewHandler(log *logger.Logger, lector services.LectorService) *ReviewHandler {
	return &ReviewHandler{
		log:    log.With("handler", "ReviewHandler"),
		lector: lector,
	}
}

type submitReviewRequest struct {
	UserID     uuid.UUID `json:"user_id" binding:"required"`
	ConceptID  uuid.UUID `json:"concept_id" binding:"required"`
	Rating     int       `json:"rating" binding:"required"`
	DurationMS *int      `json:"duration_ms"`
	ContextTag string    `json:"context_tag"`
}

func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_course_id", err)
		return
	}
	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	result, err := h.lector.SubmitReview(c.Request.Context(), services.SubmitReviewInput{
		UserID:     req.UserID,
		CourseID:   courseID,
		ConceptID:  req.ConceptID,
		Rating:     types.Rating(req.Rating),
		DurationMS: req.DurationMS,
		ContextTag: req.ContextTag,
	})
	if err != nil {
		h.log.Error("SubmitReview failed", "error", err, "course_id", courseID, "user_id", req.UserID)
		ae := apierr.FromError(err)
		response.RespondError(c, ae.Status, ae.Code, err)
		return
	}
	response.RespondOK(c, gin.H{
		"state":          result.State,
		"next_review_at": result.NextReviewAt,
	})
}
