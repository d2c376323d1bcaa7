package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/piscine-hq/piscine-admin-api/internal/service"
	appErrors "github.com/piscine-hq/piscine-admin-api/pkg/errors"
	"github.com/piscine-hq/piscine-admin-api/pkg/response"
)

// ScoreHandler wires manual grade and rush score endpoints.
type ScoreHandler struct {
	service *service.ScoreService
}

// NewScoreHandler creates a new handler.
func NewScoreHandler(svc *service.ScoreService) *ScoreHandler {
	return &ScoreHandler{service: svc}
}

// UpsertGrade godoc
// @Summary Record an exam grade
// @Description Insert or replace the grade for a (student, exam) pair
// @Tags Scores
// @Accept json
// @Produce json
// @Param payload body service.UpsertGradeRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /grades [put]
func (h *ScoreHandler) UpsertGrade(c *gin.Context) {
	var req service.UpsertGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid grade payload"))
		return
	}

	grade, err := h.service.UpsertGrade(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}

// UpsertRush godoc
// @Summary Record a rush score
// @Description Insert or replace the score for a (student, project) pair
// @Tags Scores
// @Accept json
// @Produce json
// @Param payload body service.UpsertRushRequest true "Rush payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /rushes [put]
func (h *ScoreHandler) UpsertRush(c *gin.Context) {
	var req service.UpsertRushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid rush payload"))
		return
	}

	score, err := h.service.UpsertRush(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, score, nil)
}
