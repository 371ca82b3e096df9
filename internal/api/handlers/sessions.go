package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/tiltball/internal/auth"
	"github.com/playmatatu/tiltball/internal/config"
	"github.com/playmatatu/tiltball/internal/game"
)

// CreateSession starts a simulator session and issues its token
func CreateSession(gm *game.SessionManager, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			PlayerName string `json:"player_name"`
		}
		// An empty body is allowed; the player gets the default name.
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
				return
			}
		}

		name, ok := normalizePlayerName(req.PlayerName)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Player name is too long"})
			return
		}

		sess, err := gm.CreateSession(c.Request.Context(), name)
		if err != nil {
			log.Printf("[API] Failed to create session: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
			return
		}

		ttl := time.Duration(cfg.SessionTokenTTLMinutes) * time.Minute
		if ttl <= 0 {
			ttl = 2 * time.Hour
		}
		token, expiresAt, err := auth.IssueSessionToken(cfg.JWTSecret, sess.ID, ttl)
		if err != nil {
			log.Printf("[API] Failed to issue token for %s: %v", sess.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
			return
		}

		c.Header("X-Session-ID", sess.ID)
		c.JSON(http.StatusCreated, gin.H{
			"session_id": sess.ID,
			"token":      token,
			"expires_at": expiresAt.UTC(),
			"snapshot":   sess.Snapshot(),
		})
	}
}

// GetSession returns a session's summary and current snapshot
func GetSession(gm *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := gm.GetSession(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondSessionError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"session":  sess.Info(),
			"snapshot": sess.Snapshot(),
		})
	}
}

// EndSession ends a session. Requires the session's own token.
func EndSession(gm *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := gm.EndSession(c.Request.Context(), c.Param("id")); err != nil {
			respondSessionError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ended": true})
	}
}

// RequireSessionToken allows the request only with a token issued for :id
func RequireSessionToken(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimed, err := auth.ParseSessionToken(cfg.JWTSecret, sessionToken(c))
		if err != nil || claimed != c.Param("id") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session token"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func respondSessionError(c *gin.Context, err error) {
	if errors.Is(err, game.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	log.Printf("[API] Session lookup failed: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load session"})
}
