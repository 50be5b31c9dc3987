package router

import (
	"net/http"

	"clipstream/internal/api/handler"
	"clipstream/internal/api/middleware"

	"github.com/gin-gonic/gin"
)

// Setup 注册所有业务路由
func Setup(
	r *gin.Engine,
	userHandler *handler.UserHandler,
	videoHandler *handler.VideoHandler,
	commentHandler *handler.CommentHandler,
	searchHandler *handler.SearchHandler,
) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")

	// --- 用户模块 ---
	users := v1.Group("/users")
	{
		users.POST("/register", userHandler.Register)
		users.GET("/:userId", userHandler.GetProfile)
	}

	// --- 视频模块 ---
	videos := v1.Group("/videos")
	{
		// 公开接口（不需要登录）
		videos.GET("", videoHandler.List)
		videos.GET("/:videoId", videoHandler.Get)
		videos.GET("/:videoId/comments", commentHandler.List)

		// 需要登录的接口
		videosAuth := videos.Group("", middleware.AuthRequired())
		{
			videosAuth.POST("", videoHandler.Publish)
			videosAuth.PATCH("/:videoId", videoHandler.Update)
			videosAuth.DELETE("/:videoId", videoHandler.Delete)
			videosAuth.POST("/:videoId/toggle-publish", videoHandler.TogglePublish)
			videosAuth.POST("/:videoId/comments", commentHandler.Add)
		}
	}

	// --- 评论模块 ---
	comments := v1.Group("/comments", middleware.AuthRequired())
	{
		comments.PATCH("/:commentId", commentHandler.Update)
		comments.DELETE("/:commentId", commentHandler.Delete)
	}

	// --- 搜索模块 ---
	search := v1.Group("/search")
	{
		search.GET("/videos", searchHandler.Search)
	}
}
