package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/tiltball/internal/auth"
	"github.com/playmatatu/tiltball/internal/config"
	"github.com/playmatatu/tiltball/internal/game"
)

// maxSampleGap caps the server-measured dt used when a sample has no dt_ms.
const maxSampleGap = 250 * time.Millisecond

// WSMessage is the envelope for inbound messages
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type viewportData struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type sampleData struct {
	AX   float64  `json:"ax"`
	AY   float64  `json:"ay"`
	DtMs *float64 `json:"dt_ms,omitempty"`
}

// TickMessage is sent after every applied sample
type TickMessage struct {
	Type     string        `json:"type"`
	Snapshot game.Snapshot `json:"snapshot"`
	Events   []game.Event  `json:"events"`
}

// HandleWebSocket upgrades a session's connection. The token query parameter
// must be a session token issued for the :id in the path.
func HandleWebSocket(gm *game.SessionManager, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("id")
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		claimed, err := auth.ParseSessionToken(cfg.JWTSecret, token)
		if err != nil || claimed != sessionID {
			log.Printf("[WS] Rejected token for session %s: %v", sessionID, err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid session token"})
			return
		}

		sess, err := gm.GetSession(c.Request.Context(), sessionID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WS] Upgrade error for session %s: %v", sessionID, err)
			return
		}

		client := &Client{
			conn:      conn,
			sessionID: sessionID,
			send:      make(chan []byte, sendBuffer),
		}
		// Queue the current state so the client can render before its first sample.
		if data, err := json.Marshal(map[string]interface{}{
			"type":     "state",
			"snapshot": sess.Snapshot(),
		}); err == nil {
			client.send <- data
		}

		GameHub.Register(client)

		go client.writePump()
		go client.readPump(gm)
	}
}

// readPump reads messages from the WebSocket connection. Samples are applied
// in arrival order since each session has a single reader.
func (c *Client) readPump(gm *game.SessionManager) {
	defer func() {
		GameHub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] Read error for session %s: %v", c.sessionID, err)
			}
			break
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		if c.replaced.Load() {
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("invalid message")
			continue
		}

		c.handleMessage(context.Background(), gm, msg)
	}
}

func (c *Client) handleMessage(ctx context.Context, gm *game.SessionManager, msg WSMessage) {
	// A replaced connection must not interleave samples with its successor.
	if c.replaced.Load() {
		log.Printf("[WS] Dropping %s from replaced connection for session %s", msg.Type, c.sessionID)
		return
	}

	switch msg.Type {
	case "viewport":
		var data viewportData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid viewport")
			return
		}
		snap, err := gm.SetViewport(ctx, c.sessionID, data.Width, data.Height)
		if err != nil {
			c.sendError(err.Error())
			return
		}
		GameHub.SendToSession(c.sessionID, map[string]interface{}{
			"type":     "state",
			"snapshot": snap,
		})

	case "sample":
		var data sampleData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid sample")
			return
		}
		now := time.Now()
		dt := c.sampleInterval(data, now)
		c.lastSample = now

		res, err := gm.ApplySample(ctx, c.sessionID, dt, data.AX, data.AY)
		if err != nil {
			c.sendError(err.Error())
			return
		}
		events := res.Events
		if events == nil {
			events = []game.Event{}
		}
		GameHub.SendToSession(c.sessionID, TickMessage{
			Type:     "tick",
			Snapshot: res.Snapshot,
			Events:   events,
		})

	case "get_state":
		sess, err := gm.GetSession(ctx, c.sessionID)
		if err != nil {
			c.sendError(err.Error())
			return
		}
		GameHub.SendToSession(c.sessionID, map[string]interface{}{
			"type":     "state",
			"snapshot": sess.Snapshot(),
		})

	default:
		log.Printf("[WS] Unknown message type %q from session %s", msg.Type, c.sessionID)
		c.sendError("unknown message type")
	}
}

// sampleInterval returns the sample's dt, falling back to the time since the
// previous sample on this connection.
func (c *Client) sampleInterval(data sampleData, now time.Time) time.Duration {
	if data.DtMs != nil {
		return time.Duration(*data.DtMs * float64(time.Millisecond))
	}
	if c.lastSample.IsZero() {
		return 0
	}
	gap := now.Sub(c.lastSample)
	if gap > maxSampleGap {
		gap = maxSampleGap
	}
	return gap
}

func (c *Client) sendError(message string) {
	GameHub.SendToSession(c.sessionID, map[string]interface{}{
		"type":    "error",
		"message": message,
	})
}
