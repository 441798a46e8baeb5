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

type FrontierHandler struct {
	log         *logger.Logger
	frontierSvc services.FrontierService
}

func NewFrontierHandler(log *logger.Logger, frontierSvc services.FrontierService) *FrontierHandler {
	return &FrontierHandler{
		log:         log.With("handler", "FrontierHandler"),
		frontierSvc: frontierSvc,
	}
}

func (h *FrontierHandler) GetCourseFrontier(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_course_id", err)
		return
	}
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
		return
	}
	resp, err := h.frontierSvc.BuildCourseFrontier(c.Request.Context(), userID, courseID)
	if err != nil {
		h.log.Error("GetCourseFrontier failed", "error", err, "course_id", courseID, "user_id", userID)
		ae := apierr.FromError(err)
		response.RespondError(c, ae.Status, ae.Code, err)
		return
	}
	response.RespondOK(c, resp)
}
