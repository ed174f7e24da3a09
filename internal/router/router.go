package router

import (
	"github.com/architect/internal/db"
	"github.com/architect/internal/handler"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(sessionSecret string) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件
	store := cookie.NewStore([]byte(sessionSecret))
	r.Use(sessions.Sessions("architect_session", store))

	api := handler.NewAPI(db.DB)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// 认证路由
	auth := r.Group("/auth")
	{
		auth.POST("/signup", api.SignUp)
		auth.POST("/login", api.Login)
		auth.POST("/logout", api.Logout)
		auth.GET("/me", api.Me)
	}

	// 需要登录的 API 路由
	authed := r.Group("/api")
	authed.Use(handler.AuthRequired())
	{
		authed.GET("/day", api.GetDay)
		authed.POST("/logs", api.UpsertLog)
		authed.POST("/systems", api.CreateSystem)
		authed.POST("/workout/exercises", api.SubmitWorkoutExercises)
		authed.GET("/reading/streak", api.GetReadingStreak)
		authed.GET("/diet/shuffle", api.ShuffleMeal)

		authed.GET("/vision", api.GetVision)
		authed.PUT("/vision", api.UpsertVision)

		authed.GET("/reviews", api.GetWeeklyReview)
		authed.PUT("/reviews", api.UpsertWeeklyReview)
		authed.GET("/reviews/actions", api.ListActionItems)
		authed.POST("/reviews/actions", api.CreateActionItem)
		authed.PUT("/reviews/actions/:id/status", api.UpdateActionItemStatus)
	}

	return r
}
