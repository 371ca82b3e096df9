package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const maxPlayerNameLength = 32

// sessionToken extracts a session token from the Authorization header or the
// token query parameter.
func sessionToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return c.Query("token")
}

// normalizePlayerName trims the name and falls back to a default.
// It reports false when the name is too long.
func normalizePlayerName(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "player", true
	}
	if len([]rune(name)) > maxPlayerNameLength {
		return "", false
	}
	return name, true
}

// queryInt parses an integer query parameter, returning def when it is
// missing or malformed.
func queryInt(c *gin.Context, key string, def int) int {
	if v := c.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
