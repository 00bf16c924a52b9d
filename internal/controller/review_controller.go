package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/haimtran/sdq-assistant/internal/dto"
	"github.com/haimtran/sdq-assistant/internal/service"
	"github.com/rs/zerolog/log"
)

type ReviewController struct {
	reviewService service.ReviewService
}

func NewReviewController(reviewService service.ReviewService) *ReviewController {
	return &ReviewController{reviewService: reviewService}
}

// PendingReviews godoc
// @Summary (Reviewer) List reviews awaiting a verdict
// @Tags Reviews
// @Produce json
// @Success 200 {array} dto.ReviewSummaryDTO
// @Failure 500 {object} dto.ErrorResponse
// @Router /reviews/pending [get]
func (c *ReviewController) PendingReviews(ctx *gin.Context) {
	reviews, err := c.reviewService.PendingReviews(ctx.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("PendingReviews: listing failed")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, reviews)
}

// CompletedReviews godoc
// @Summary (Reviewer) List completed reviews
// @Tags Reviews
// @Produce json
// @Success 200 {array} dto.ReviewSummaryDTO
// @Failure 500 {object} dto.ErrorResponse
// @Router /reviews/completed [get]
func (c *ReviewController) CompletedReviews(ctx *gin.Context) {
	reviews, err := c.reviewService.CompletedReviews(ctx.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("CompletedReviews: listing failed")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, reviews)
}

// FullReview godoc
// @Summary (Reviewer) Full review data for one child
// @Description All three respondents' submitted tests, scores and the generated summary.
// @Tags Reviews
// @Produce json
// @Param child_id path string true "Child ID"
// @Success 200 {object} dto.FullReviewDTO
// @Failure 404 {object} dto.ErrorResponse "Review not found"
// @Router /reviews/{child_id} [get]
func (c *ReviewController) FullReview(ctx *gin.Context) {
	childID := ctx.Param("child_id")
	review, err := c.reviewService.FullReview(ctx.Request.Context(), childID)
	if err != nil {
		log.Warn().Err(err).Str("childID", childID).Msg("FullReview: lookup failed")
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, review)
}

// SubmitReview godoc
// @Summary (Reviewer) Submit the psychologist's verdict
// @Description Flips the review pending -> reviewed exactly once. A second verdict for the same child is rejected.
// @Tags Reviews
// @Accept json
// @Produce json
// @Param verdict body dto.SubmitReviewRequest true "Child ID, verdict text and reviewer identity"
// @Success 200 {object} map[string]string
// @Failure 400 {object} dto.ErrorResponse "Review missing or already completed"
// @Router /reviews/submit [post]
func (c *ReviewController) SubmitReview(ctx *gin.Context) {
	var req dto.SubmitReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	if err := c.reviewService.SubmitVerdict(ctx.Request.Context(), req); err != nil {
		log.Warn().Err(err).Str("childID", req.ChildID).Msg("SubmitReview: verdict rejected")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Review submitted successfully"})
}

// FinalReview godoc
// @Summary Respondent-visible final result
// @Description Only reveals the verdict after the psychologist has reviewed; pending aggregates stay invisible to respondents.
// @Tags Reviews
// @Produce json
// @Param child_id path string true "Child ID"
// @Success 200 {object} dto.ReviewStatusResponse
// @Failure 404 {object} dto.ErrorResponse "No review exists for this child"
// @Router /reviews/{child_id}/final [get]
func (c *ReviewController) FinalReview(ctx *gin.Context) {
	childID := ctx.Param("child_id")
	result, err := c.reviewService.FinalForRespondent(ctx.Request.Context(), childID)
	if err != nil {
		log.Warn().Err(err).Str("childID", childID).Msg("FinalReview: lookup failed")
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, result)
}
