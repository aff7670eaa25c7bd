package api

import (
	"Inkstone/internal/api/middleware"
	"Inkstone/internal/api/config"
	"Inkstone/internal/pkg/logger"
	"Inkstone/internal/pkg/security"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup, validator *security.TokenValidator, authClient *security.AuthClient, cfg *config.Config) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r, cfg.Logstash)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		postGroup := apiGroup.Group("/v1/posts")
		{
			authOptGroup := postGroup.Group("")
			authOptGroup.Use(middleware.AuthOptionalMiddleware(validator))
			{
				authOptGroup.GET("", group.PostHandler.ListPosts)
				authOptGroup.GET("/popular", group.PostHandler.PopularPosts)
				authOptGroup.GET("/search", group.PostHandler.SearchPosts)
				authOptGroup.GET("/:post_id", group.PostHandler.GetPost)
				authOptGroup.GET("/:post_id/stats", group.PostHandler.GetPostStats)
			}

			authGroup := postGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware(validator, authClient))
			{
				authGroup.POST("", group.PostHandler.CreatePost)
				authGroup.POST("/:post_id/publish", group.PostHandler.PublishPost)
				authGroup.DELETE("/:post_id", group.PostHandler.DeletePost)
			}
		}
	}

	return r
}
