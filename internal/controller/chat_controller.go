package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/haimtran/sdq-assistant/internal/dto"
	"github.com/haimtran/sdq-assistant/internal/service"
	"github.com/rs/zerolog/log"
)

type ChatController struct {
	dialogueService service.DialogueService
}

func NewChatController(dialogueService service.DialogueService) *ChatController {
	return &ChatController{dialogueService: dialogueService}
}

// StartChat godoc
// @Summary Start or resume a questionnaire conversation
// @Description Creates a test instance for the respondent, or resumes their unsubmitted one. Requires respondent role and email, plus either child_id (self-report) or child_code (sharing code).
// @Tags Chat
// @Accept json
// @Produce json
// @Param start_data body dto.StartChatRequest true "Respondent identity and child reference"
// @Success 200 {object} dto.StartChatResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid role, unknown child, or missing identity fields"
// @Router /chat/start [post]
func (c *ChatController) StartChat(ctx *gin.Context) {
	var req dto.StartChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	resp, err := c.dialogueService.Start(ctx.Request.Context(), req)
	if err != nil {
		log.Warn().Err(err).Str("role", string(req.RespondentRole)).Msg("StartChat: failed to start test")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Respond godoc
// @Summary Send one respondent turn
// @Description Processes the respondent's latest message against the current question and returns the next assistant message. The chat history travels with the request; dialogue state lives on the test instance.
// @Tags Chat
// @Accept json
// @Produce json
// @Param turn body dto.RespondRequest true "Test ID and recent chat history"
// @Success 200 {object} dto.DialogueTurn
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Router /chat/respond [post]
func (c *ChatController) Respond(ctx *gin.Context) {
	var req dto.RespondRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	turn, err := c.dialogueService.Respond(ctx.Request.Context(), req)
	if err != nil {
		log.Error().Err(err).Str("testID", req.TestID).Msg("Respond: dialogue turn failed")
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, turn)
}

// ConfirmOption godoc
// @Summary Explicitly confirm an option for the current question
// @Description Records the selected option for the question the test is currently on and advances the dialogue.
// @Tags Chat
// @Accept json
// @Produce json
// @Param confirmation body dto.ConfirmOptionRequest true "Test ID, question index and selected option"
// @Success 200 {object} dto.DialogueTurn
// @Failure 400 {object} dto.ErrorResponse "Invalid option or question index mismatch"
// @Router /chat/confirm [post]
func (c *ChatController) ConfirmOption(ctx *gin.Context) {
	var req dto.ConfirmOptionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	turn, err := c.dialogueService.Confirm(ctx.Request.Context(), req)
	if err != nil {
		log.Warn().Err(err).Str("testID", req.TestID).Msg("ConfirmOption: failed to confirm option")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, turn)
}
