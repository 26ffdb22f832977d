package controller

import (
	"vocaman_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// currentUser returns the authenticated caller or answers 401.
func currentUser(ctx *gin.Context) (*util.Claims, bool) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return nil, false
	}
	return claims, true
}

// pathID parses a path parameter as an identifier or answers 400.
func pathID(ctx *gin.Context, name string) (uint64, bool) {
	id, err := util.ParseID(ctx.Param(name))
	if err != nil {
		util.BadRequest(ctx, "invalid "+name)
		return 0, false
	}
	return id, true
}
