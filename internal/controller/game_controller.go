package controller

import (
	"strconv"
	"vocaman_backend/internal/service"
	"vocaman_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GameController struct {
	GameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{GameService: gameService}
}

// swagger:model GameLogRequest
type GameLogRequest struct {
	TermID     util.WireID `json:"termId" swaggertype:"string" binding:"required"`
	DatasetID  util.WireID `json:"datasetId" swaggertype:"string" binding:"required"`
	WasCorrect *bool       `json:"wasCorrect" binding:"required"`
	Attempts   int         `json:"attempts" binding:"required,min=1"`
	Source     string      `json:"source" binding:"omitempty,max=20"`
}

// Session godoc
// @Summary Start a game session on a dataset
// @Tags Game
// @Security BearerAuth
// @Produce json
// @Param dataset_id query string true "dataset id"
// @Success 200 {object} util.Response{data=service.GameSession}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/v2/game/session [get]
func (c *GameController) Session(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	datasetID, err := util.ParseID(ctx.Query("dataset_id"))
	if err != nil {
		util.BadRequest(ctx, "dataset_id query parameter is required")
		return
	}

	session, err := c.GameService.Session(ctx.Request.Context(), claims.UserID, datasetID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, session)
}

// DefaultSession godoc
// @Summary Start a game session on the official dataset for a grade
// @Tags Game
// @Security BearerAuth
// @Produce json
// @Param grade query int true "school grade"
// @Success 200 {object} util.Response{data=service.GameSession}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/v2/game/session/default [get]
func (c *GameController) DefaultSession(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	grade, err := strconv.Atoi(ctx.Query("grade"))
	if err != nil || grade < 1 {
		util.BadRequest(ctx, "grade query parameter is required")
		return
	}

	session, err := c.GameService.DefaultSession(ctx.Request.Context(), claims.UserID, grade)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, session)
}

// LogResult godoc
// @Summary Record an answered card and update statistics
// @Tags Game
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body GameLogRequest true "result"
// @Success 201 {object} util.Response{data=object}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/v2/game/logs [post]
func (c *GameController) LogResult(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req GameLogRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	entry, err := c.GameService.LogResult(ctx.Request.Context(), service.GameLogInput{
		UserID:     claims.UserID,
		TermID:     req.TermID.Uint64(),
		DatasetID:  req.DatasetID.Uint64(),
		WasCorrect: *req.WasCorrect,
		Attempts:   req.Attempts,
		Source:     req.Source,
	})
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"logId": util.FormatID(entry.ID)})
}
