package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/tiltball/internal/admin"
	"github.com/playmatatu/tiltball/internal/config"
	"github.com/playmatatu/tiltball/internal/game"
	"github.com/playmatatu/tiltball/internal/store"
)

const adminTokenHeader = "X-Admin-Token"

// AdminTokenMiddleware checks the X-Admin-Token header against the configured
// bcrypt hash. Admin routes are closed when no hash is configured.
func AdminTokenMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.AdminTokenHash == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access is not configured"})
			c.Abort()
			return
		}

		if !admin.VerifyToken(cfg.AdminTokenHash, c.GetHeader(adminTokenHeader)) {
			log.Printf("[ADMIN] Rejected admin request from %s to %s", c.ClientIP(), c.FullPath())
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetAdminSessions lists the sessions held in memory
func GetAdminSessions(gm *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessions := gm.ActiveSessions()
		c.JSON(http.StatusOK, gin.H{
			"sessions": sessions,
			"total":    len(sessions),
		})
	}
}

// AdminClearScores wipes the score history
func AdminClearScores(scores store.ScoreStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := scores.ClearScores(c.Request.Context())
		if err != nil {
			log.Printf("[ADMIN] Failed to clear scores: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear scores"})
			return
		}

		log.Printf("[ADMIN] Cleared %d scores (ip=%s)", n, c.ClientIP())
		c.JSON(http.StatusOK, gin.H{"deleted": n})
	}
}
