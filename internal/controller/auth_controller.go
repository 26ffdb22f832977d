package controller

import (
	"vocaman_backend/internal/model"
	"vocaman_backend/internal/service"
	"vocaman_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

// swagger:model RegisterRequest
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Nickname string `json:"nickname" binding:"required,max=100"`
	Role     string `json:"role" binding:"omitempty,oneof=student parent"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Register godoc
// @Summary Register a new account
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "account"
// @Success 201 {object} util.Response{data=object} "created"
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response "email already registered"
// @Router /api/v2/auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.AuthService.Register(ctx.Request.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Nickname: req.Nickname,
		Role:     model.UserRole(req.Role),
	})
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{"userId": util.FormatID(user.ID)})
}

// Login godoc
// @Summary Log in with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "credentials"
// @Success 200 {object} util.Response{data=service.TokenPair}
// @Failure 401 {object} util.Response
// @Router /api/v2/auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	tokens, err := c.AuthService.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, tokens)
}

// GoogleLogin godoc
// @Summary Log in with a Google ID token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body GoogleLoginRequest true "Google ID token"
// @Success 200 {object} util.Response{data=service.TokenPair}
// @Failure 401 {object} util.Response
// @Router /api/v2/auth/google/login [post]
func (c *AuthController) GoogleLogin(ctx *gin.Context) {
	var req GoogleLoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	tokens, err := c.AuthService.GoogleLogin(ctx.Request.Context(), req.IDToken)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, tokens)
}

// Refresh godoc
// @Summary Exchange a refresh token for a new access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RefreshRequest true "refresh token"
// @Success 200 {object} util.Response{data=object}
// @Failure 401 {object} util.Response
// @Router /api/v2/auth/refresh [post]
func (c *AuthController) Refresh(ctx *gin.Context) {
	var req RefreshRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.Unauthorized(ctx)
		return
	}

	access, err := c.AuthService.Refresh(ctx.Request.Context(), req.RefreshToken)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"accessToken": access})
}

// Logout godoc
// @Summary Log out and revoke the refresh token
// @Tags Auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body LogoutRequest false "refresh token to revoke"
// @Success 200 {object} util.Response
// @Router /api/v2/auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req LogoutRequest
	// the body is optional
	_ = ctx.ShouldBindJSON(&req)

	if err := c.AuthService.Logout(ctx.Request.Context(), claims.UserID, req.RefreshToken); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
