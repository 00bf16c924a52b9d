package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/haimtran/sdq-assistant/internal/dto"
	"github.com/haimtran/sdq-assistant/internal/service"
	"github.com/rs/zerolog/log"
)

type ChildController struct {
	childService service.ChildService
}

func NewChildController(childService service.ChildService) *ChildController {
	return &ChildController{childService: childService}
}

// RegisterChild godoc
// @Summary Register a child and issue a sharing code
// @Tags Children
// @Accept json
// @Produce json
// @Param registration body dto.RegisterChildRequest true "Child name, age and gender"
// @Success 200 {object} dto.RegisterChildResponse
// @Failure 400 {object} dto.ErrorResponse "Unsupported age or invalid body"
// @Router /children [post]
func (c *ChildController) RegisterChild(ctx *gin.Context) {
	var req dto.RegisterChildRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	resp, err := c.childService.Register(ctx.Request.Context(), req)
	if err != nil {
		log.Warn().Err(err).Msg("RegisterChild: registration failed")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// UpdateChild godoc
// @Summary Correct a child's name or age
// @Tags Children
// @Accept json
// @Produce json
// @Param child_id path string true "Child ID"
// @Param update body dto.UpdateChildRequest true "Corrected name and age"
// @Success 200 {object} map[string]string
// @Failure 400 {object} dto.ErrorResponse "Unknown child or unsupported age"
// @Router /children/{child_id} [put]
func (c *ChildController) UpdateChild(ctx *gin.Context) {
	var req dto.UpdateChildRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	childID := ctx.Param("child_id")
	if err := c.childService.Update(ctx.Request.Context(), childID, req); err != nil {
		log.Warn().Err(err).Str("childID", childID).Msg("UpdateChild: update failed")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Child updated successfully"})
}

// Login godoc
// @Summary Look up a child by sharing code
// @Tags Children
// @Accept json
// @Produce json
// @Param login body dto.ChildLoginRequest true "Sharing code"
// @Success 200 {object} dto.ChildLoginResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid code"
// @Router /children/login [post]
func (c *ChildController) Login(ctx *gin.Context) {
	var req dto.ChildLoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	resp, err := c.childService.LoginByCode(ctx.Request.Context(), req.Code)
	if err != nil {
		log.Warn().Err(err).Msg("Login: code lookup failed")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
