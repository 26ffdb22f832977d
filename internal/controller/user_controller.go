package controller

import (
	"vocaman_backend/internal/model"
	"vocaman_backend/internal/service"
	"vocaman_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService     *service.UserService
	RelationService *service.RelationService
}

func NewUserController(userService *service.UserService, relationService *service.RelationService) *UserController {
	return &UserController{
		UserService:     userService,
		RelationService: relationService,
	}
}

type UpdateProfileRequest struct {
	Nickname string `json:"nickname" binding:"required,max=100"`
}

type RelationRequest struct {
	ChildEmail string `json:"childEmail" binding:"required,email"`
}

type HandleRelationRequest struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
}

// GetProfile godoc
// @Summary Current user's profile
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=model.User}
// @Router /api/v2/users/me [get]
func (c *UserController) GetProfile(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	user, err := c.UserService.GetProfile(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// UpdateProfile godoc
// @Summary Change the nickname
// @Tags Users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body UpdateProfileRequest true "profile"
// @Success 200 {object} util.Response{data=object}
// @Failure 400 {object} util.Response
// @Router /api/v2/users/me [put]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	nickname, err := c.UserService.UpdateNickname(ctx.Request.Context(), claims.UserID, req.Nickname)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"nickname": nickname})
}

// GetSettings godoc
// @Summary Current user's settings object
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=object}
// @Router /api/v2/users/me/settings [get]
func (c *UserController) GetSettings(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	settings, err := c.UserService.GetSettings(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, settings)
}

// UpdateSettings godoc
// @Summary Replace the settings object
// @Tags Users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body object true "settings"
// @Success 200 {object} util.Response{data=object}
// @Failure 400 {object} util.Response
// @Router /api/v2/users/me/settings [put]
func (c *UserController) UpdateSettings(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	var settings map[string]interface{}
	if err := ctx.ShouldBindJSON(&settings); err != nil || settings == nil {
		util.BadRequest(ctx, "settings must be a JSON object")
		return
	}

	if err := c.UserService.ReplaceSettings(ctx.Request.Context(), claims.UserID, settings); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, settings)
}

// GetStats godoc
// @Summary Game statistics per language pair
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Param lang_pair query string false "language pair such as ko-en"
// @Success 200 {object} util.Response{data=object}
// @Router /api/v2/users/me/stats [get]
func (c *UserController) GetStats(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	langPair := ctx.Query("lang_pair")
	stats, err := c.UserService.GetStats(ctx.Request.Context(), claims.UserID, langPair)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	if langPair != "" && len(stats) == 1 {
		util.Success(ctx, stats[0])
		return
	}
	util.Success(ctx, stats)
}

// RequestRelation godoc
// @Summary Ask a child account to connect
// @Tags Relations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body RelationRequest true "child email"
// @Success 201 {object} util.Response{data=object}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/v2/users/me/relations/request [post]
func (c *UserController) RequestRelation(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req RelationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	rel, err := c.RelationService.Request(ctx.Request.Context(), claims.UserID, req.ChildEmail)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"relationId": util.FormatID(rel.ID)})
}

// ListRelations godoc
// @Summary Pending and approved relations of the current user
// @Tags Relations
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=service.RelationOverview}
// @Router /api/v2/users/me/relations [get]
func (c *UserController) ListRelations(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	overview, err := c.RelationService.List(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, overview)
}

// HandleRelation godoc
// @Summary Approve or reject a relation request
// @Tags Relations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param relationId path string true "relation id"
// @Param body body HandleRelationRequest true "decision"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/v2/users/me/relations/{relationId} [put]
func (c *UserController) HandleRelation(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	relationID, ok := pathID(ctx, "relationId")
	if !ok {
		return
	}

	var req HandleRelationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	status := model.RelationStatus(req.Status)
	if err := c.RelationService.Handle(ctx.Request.Context(), claims.UserID, relationID, status); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"relationId": util.FormatID(relationID), "status": status})
}
