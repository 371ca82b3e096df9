package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/playmatatu/tiltball/internal/game"
	"github.com/redis/go-redis/v9"
)

// StartScoreFeedSubscriber subscribes to the score events channel and
// broadcasts every score to all connected clients.
func StartScoreFeedSubscriber(ctx context.Context, rdb *redis.Client) {
	if rdb == nil {
		log.Println("[WS] Redis client not set; score feed subscriber not started")
		return
	}

	pubsub := rdb.Subscribe(ctx, game.EventsChannel)
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Printf("[WS] %s subscriber started", game.EventsChannel)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev game.ScoreEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					log.Printf("[WS] invalid event payload: %v", err)
					continue
				}
				log.Printf("[WS] score event: session=%s score=%d", ev.SessionID, ev.Score)
				GameHub.Broadcast(map[string]interface{}{
					"type":  "score_feed",
					"event": ev,
				})
			}
		}
	}()
}
