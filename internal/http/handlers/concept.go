package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lectorhq/lector-backend/internal/http/response"
	"github.com/lectorhq/lector-backend/internal/platform/apierr"
	"github.com/lectorhq/lector-backend/internal/platform/logger"
	"github.com/lectorhq/lector-backend/internal/services"
)

type ConceptHandler struct {
	log      *logger.Logger
	graphSvc services.ConceptGraphService
}

func NewConceptHandler(log *logger.Logger, graphSvc services.ConceptGraphService) *ConceptHandler {
	return &ConceptHandler{
		log:      log.With("handler", "ConceptHandler"),
		graphSvc: graphSvc,
	}
}

type createConceptRequest struct {
	Domain      string `json:"domain" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Slug        string `json:"slug"`
	Difficulty  *int   `json:"difficulty"`
}

func (h *ConceptHandler) CreateConcept(c *gin.Context) {
	var req createConceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	concept, err := h.graphSvc.CreateConcept(c.Request.Context(), nil, services.CreateConceptInput{
		Domain:      req.Domain,
		Name:        req.Name,
		Description: req.Description,
		Slug:        req.Slug,
		Difficulty:  req.Difficulty,
	})
	if err != nil {
		h.log.Error("CreateConcept failed", "error", err)
		ae := apierr.FromError(err)
		response.RespondError(c, ae.Status, ae.Code, err)
		return
	}
	response.RespondCreated(c, gin.H{"concept": concept})
}

type addPrerequisiteRequest struct {
	PrereqID uuid.UUID `json:"prereq_id" binding:"required"`
}

func (h *ConceptHandler) AddPrerequisite(c *gin.Context) {
	conceptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_concept_id", err)
		return
	}
	var req addPrerequisiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := h.graphSvc.AddPrerequisite(c.Request.Context(), nil, conceptID, req.PrereqID); err != nil {
		h.log.Warn("AddPrerequisite rejected", "error", err, "concept_id", conceptID)
		ae := apierr.FromError(err)
		response.RespondError(c, ae.Status, ae.Code, err)
		return
	}
	response.RespondOK(c, gin.H{"concept_id": conceptID, "prereq_id": req.PrereqID})
}

func (h *ConceptHandler) GetConceptPath(c *gin.Context) {
	conceptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_concept_id", err)
		return
	}
	path, err := h.graphSvc.GetConceptPath(c.Request.Context(), nil, conceptID)
	if err != nil {
		h.log.Error("GetConceptPath failed", "error", err, "concept_id", conceptID)
		ae := apierr.FromError(err)
		response.RespondError(c, ae.Status, ae.Code, err)
		return
	}
	response.RespondOK(c, gin.H{"path": path})
}

type assignConceptRequest struct {
	ConceptID uuid.UUID `json:"concept_id" binding:"required"`
}

func (h *ConceptHandler) AssignToCourse(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_course_id", err)
		return
	}
	var req assignConceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := h.graphSvc.AssignToCourse(c.Request.Context(), nil, courseID, req.ConceptID); err != nil {
		h.log.Error("AssignToCourse failed", "error", err, "course_id", courseID)
		ae := apierr.FromError(err)
		response.RespondError(c, ae.Status, ae.Code, err)
		return
	}
	response.RespondOK(c, gin.H{"course_id": courseID, "concept_id": req.ConceptID})
}
