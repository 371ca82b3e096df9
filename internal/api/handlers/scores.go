package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/tiltball/internal/store"
)

const maxLeaderboardLimit = 100

// GetSessionScores lists every hole completed by a session
func GetSessionScores(scores store.ScoreStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("id")
		records, err := scores.SessionScores(c.Request.Context(), sessionID)
		if err != nil {
			log.Printf("[API] Failed to load scores for %s: %v", sessionID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load scores"})
			return
		}
		if records == nil {
			records = []store.ScoreRecord{}
		}

		c.JSON(http.StatusOK, gin.H{
			"session_id": sessionID,
			"scores":     records,
		})
	}
}

// GetTopScores returns the leaderboard of best scores per session
func GetTopScores(scores store.ScoreStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := queryInt(c, "limit", 10)
		if limit <= 0 {
			limit = 10
		}
		if limit > maxLeaderboardLimit {
			limit = maxLeaderboardLimit
		}

		top, err := scores.TopScores(c.Request.Context(), limit)
		if err != nil {
			log.Printf("[API] Failed to load leaderboard: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load leaderboard"})
			return
		}
		if top == nil {
			top = []store.LeaderboardEntry{}
		}

		c.JSON(http.StatusOK, gin.H{"scores": top})
	}
}
