package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/haimtran/sdq-assistant/internal/dto"
	"github.com/haimtran/sdq-assistant/internal/service"
	"github.com/rs/zerolog/log"
)

type TestController struct {
	submissionService service.SubmissionService
	reviewService     service.ReviewService
}

func NewTestController(submissionService service.SubmissionService, reviewService service.ReviewService) *TestController {
	return &TestController{submissionService: submissionService, reviewService: reviewService}
}

// SubmitTest godoc
// @Summary Submit a completed test
// @Description Marks the test submitted (idempotent), snapshots its score, and creates the combined review once all three respondents are in. Scores are not shown here; results become visible only after psychologist review.
// @Tags Tests
// @Accept json
// @Produce json
// @Param submission body dto.SubmitTestRequest true "Test ID"
// @Success 200 {object} dto.SubmitTestResponse
// @Failure 400 {object} dto.ErrorResponse "Unknown test"
// @Router /tests/submit [post]
func (c *TestController) SubmitTest(ctx *gin.Context) {
	var req dto.SubmitTestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	resp, err := c.submissionService.Submit(ctx.Request.Context(), req)
	if err != nil {
		log.Error().Err(err).Str("testID", req.TestID).Msg("SubmitTest: submission failed")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetScore godoc
// @Summary Recompute a test's SDQ score from its answer ledger
// @Tags Tests
// @Produce json
// @Param test_id path string true "Test ID"
// @Success 200 {object} model.ScoreReport
// @Failure 404 {object} dto.ErrorResponse "Test not found or has no responses"
// @Router /tests/{test_id}/score [get]
func (c *TestController) GetScore(ctx *gin.Context) {
	testID := ctx.Param("test_id")
	report, err := c.submissionService.GetScore(ctx.Request.Context(), testID)
	if err != nil {
		log.Warn().Err(err).Str("testID", testID).Msg("GetScore: score calculation failed")
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, report)
}

// GetHistory godoc
// @Summary Recorded answers for one test
// @Description Returns the test's dialogue position, submission state and confirmed answer ledger.
// @Tags Tests
// @Produce json
// @Param test_id path string true "Test ID"
// @Success 200 {object} dto.TestHistoryDTO
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Router /tests/{test_id}/history [get]
func (c *TestController) GetHistory(ctx *gin.Context) {
	testID := ctx.Param("test_id")
	history, err := c.submissionService.History(ctx.Request.Context(), testID)
	if err != nil {
		log.Warn().Err(err).Str("testID", testID).Msg("GetHistory: failed to load history")
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, history)
}

// GetStatus godoc
// @Summary Review status for a child
// @Description Reports waiting (not all respondents submitted), pending (awaiting psychologist), or reviewed.
// @Tags Tests
// @Produce json
// @Param child_id path string true "Child ID"
// @Success 200 {object} dto.ReviewStatusResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /children/{child_id}/status [get]
func (c *TestController) GetStatus(ctx *gin.Context) {
	childID := ctx.Param("child_id")
	status, err := c.reviewService.Status(ctx.Request.Context(), childID)
	if err != nil {
		log.Warn().Err(err).Str("childID", childID).Msg("GetStatus: failed to load status")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, status)
}
