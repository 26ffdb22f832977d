package app

import (
	"vocaman_backend/docs"
	"vocaman_backend/internal/config"
	"vocaman_backend/internal/middleware"
	"vocaman_backend/internal/model"
	"vocaman_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	// 1. system
	router.GET("/api/health", c.health.HealthCheck)
	router.GET("/metrics", monitoring.PrometheusHandler())

	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v2 := router.Group("/api/v2")

	// 2. public
	a.registerPublicRoutes(v2, c)

	// 3. bearer token required
	authGroup := v2.Group("")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.POST("/auth/logout", c.auth.Logout)

		a.registerUserRoutes(authGroup, c)
		a.registerDatasetRoutes(authGroup, c)
		a.registerContentRoutes(authGroup, c)
		a.registerGameRoutes(authGroup, c)
		a.registerHomeworkRoutes(authGroup, c)

		authGroup.GET("/notifications", c.notification.List)
		authGroup.POST("/notifications/:notificationId/read", c.notification.MarkRead)
	}
}

func (a *App) registerPublicRoutes(rg *gin.RouterGroup, c *controllers) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", c.auth.Register)
		auth.POST("/login", c.auth.Login)
		auth.POST("/google/login", c.auth.GoogleLogin)
		auth.POST("/refresh", c.auth.Refresh)
	}

	rg.GET("/audio/:audioRef", c.content.GetAudio)
}

func (a *App) registerUserRoutes(rg *gin.RouterGroup, c *controllers) {
	me := rg.Group("/users/me")
	{
		me.GET("", c.user.GetProfile)
		me.PUT("", c.user.UpdateProfile)
		me.GET("/settings", c.user.GetSettings)
		me.PUT("/settings", c.user.UpdateSettings)
		me.GET("/stats", c.user.GetStats)

		me.POST("/relations/request", c.user.RequestRelation)
		me.GET("/relations", c.user.ListRelations)
		me.PUT("/relations/:relationId", c.user.HandleRelation)
	}
}

func (a *App) registerDatasetRoutes(rg *gin.RouterGroup, c *controllers) {
	datasets := rg.Group("/datasets")
	{
		datasets.POST("", c.dataset.Create)
		datasets.GET("", c.dataset.List)
		datasets.GET("/:datasetId", c.dataset.Get)
		datasets.PUT("/:datasetId", c.dataset.Update)
		datasets.DELETE("/:datasetId", c.dataset.Delete)
		datasets.POST("/:datasetId/concepts", c.dataset.AddConcept)
		datasets.DELETE("/:datasetId/concepts/:conceptId", c.dataset.RemoveConcept)
		datasets.POST("/:datasetId/terms", c.dataset.AddCustomWord)
	}
}

func (a *App) registerContentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/concepts/:conceptId", c.content.GetConcept)
	rg.GET("/terms/:termId", c.content.GetTerm)

	curators := rg.Group("/audio")
	curators.Use(middleware.RoleMiddleware(model.Parent))
	{
		curators.POST("", c.content.UploadAudio)
		curators.DELETE("/:audioRef", c.content.DeleteAudio)
	}
}

func (a *App) registerGameRoutes(rg *gin.RouterGroup, c *controllers) {
	game := rg.Group("/game")
	{
		game.GET("/session", c.game.Session)
		game.GET("/session/default", c.game.DefaultSession)
		game.POST("/logs", c.game.LogResult)
	}
}

func (a *App) registerHomeworkRoutes(rg *gin.RouterGroup, c *controllers) {
	homework := rg.Group("/homework")
	{
		homework.POST("/assignments", c.homework.Assign)
		homework.GET("/assignments/assigned_to_me", c.homework.ListAssignedToMe)
		homework.GET("/assignments/created_by_me", c.homework.ListCreatedByMe)
		homework.GET("/assignments/:assignmentId", c.homework.GetDetails)
		homework.PUT("/assignments/:assignmentId", c.homework.Update)
		homework.DELETE("/assignments/:assignmentId", c.homework.Delete)
		homework.GET("/assignments/:assignmentId/progress", c.homework.GetProgress)
		homework.POST("/progress", c.homework.SubmitProgress)
	}
}
