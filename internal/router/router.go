// Package router sets up HTTP routes for the API.
package router

import (
	"net/http"

	_ "phonics-coach/swagger" // Import generated swagger docs

	"phonics-coach/internal/handler"
	"phonics-coach/internal/middleware"
	"phonics-coach/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Config holds all dependencies needed to set up routes.
type Config struct {
	AuthHandler     *handler.AuthHandler
	UserHandler     *handler.UserHandler
	WordHandler     *handler.WordHandler
	PracticeHandler *handler.PracticeHandler
	TokenManager    auth.TokenManager
}

// Setup creates and configures the Gin router.
func Setup(cfg *Config) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())

	// Swagger docs at /docs
	r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.Auth(cfg.TokenManager)

	// API v1
	v1 := r.Group("/api/v1")
	{
		// Auth routes (public)
		authRoutes := v1.Group("/auth")
		{
			authRoutes.POST("/register", cfg.AuthHandler.Register)
			authRoutes.POST("/login", cfg.AuthHandler.Login)
			authRoutes.POST("/refresh", cfg.AuthHandler.Refresh)
		}

		// Auth routes (protected)
		authProtected := v1.Group("/auth")
		authProtected.Use(requireAuth)
		{
			authProtected.POST("/logout", cfg.AuthHandler.Logout)
			authProtected.POST("/logout-all", cfg.AuthHandler.LogoutAll)
		}

		// Current account (protected)
		users := v1.Group("/users")
		users.Use(requireAuth)
		{
			users.GET("/me", cfg.UserHandler.GetMe)
			users.PATCH("/me", cfg.UserHandler.UpdateMe)
			users.DELETE("/me", cfg.UserHandler.DeleteMe)
		}

		// Word bank (public)
		words := v1.Group("/words")
		{
			words.GET("", cfg.WordHandler.ListWords)
			words.GET("/:letter", cfg.WordHandler.GetWord)
			words.GET("/:letter/pronunciation", cfg.WordHandler.GetPronunciation)
		}
		v1.GET("/courses", cfg.WordHandler.ListCourses)

		// Practice routes (protected)
		practice := v1.Group("/practice")
		practice.Use(requireAuth)
		{
			sessions := practice.Group("/sessions")
			{
				sessions.POST("", cfg.PracticeHandler.CreateSession)
				sessions.GET("/:id", cfg.PracticeHandler.GetSession)
				sessions.DELETE("/:id", cfg.PracticeHandler.DeleteSession)
				sessions.PUT("/:id/target", cfg.PracticeHandler.ChangeTarget)
				sessions.POST("/:id/attempts", cfg.PracticeHandler.SubmitAttempt)
				sessions.POST("/:id/transcriptions", cfg.PracticeHandler.SubmitTranscription)
				sessions.DELETE("/:id/recording", cfg.PracticeHandler.CancelRecording)
				sessions.GET("/:id/remedy", cfg.PracticeHandler.GetRemedy)
			}

			practice.GET("/history", cfg.PracticeHandler.ListHistory)
			practice.GET("/stats", cfg.PracticeHandler.GetStats)
		}
	}

	return r
}
