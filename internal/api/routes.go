package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/tiltball/internal/api/handlers"
	"github.com/playmatatu/tiltball/internal/config"
	"github.com/playmatatu/tiltball/internal/game"
	"github.com/playmatatu/tiltball/internal/middleware"
	"github.com/playmatatu/tiltball/internal/store"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, gm *game.SessionManager, scores store.ScoreStore, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] No-cache headers enabled for all routes")
	}

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(gm))

		// Session endpoints
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", handlers.CreateSession(gm, cfg))
			sessions.GET("/:id", handlers.GetSession(gm))
			sessions.DELETE("/:id", handlers.RequireSessionToken(cfg), handlers.EndSession(gm))
			sessions.GET("/:id/scores", handlers.GetSessionScores(scores))
			sessions.GET("/:id/ws", middleware.WebSocketCORSCheck(cfg), handlers.HandleSessionWebSocket(gm, cfg))
		}

		v1.GET("/scores/top", handlers.GetTopScores(scores))

		// Admin endpoints
		adminGroup := v1.Group("/admin")
		adminGroup.Use(handlers.AdminTokenMiddleware(cfg))
		{
			adminGroup.GET("/sessions", handlers.GetAdminSessions(gm))
			adminGroup.DELETE("/scores", handlers.AdminClearScores(scores))
		}
	}
}
