package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/playmatatu/tiltball/internal/store"
	"github.com/redis/go-redis/v9"
)

const (
	// IdleSetKey is a sorted set of session IDs scored by last activity (unix seconds).
	IdleSetKey = "session_idle"
	// EventsChannel carries score events to every server instance.
	EventsChannel = "tilt_events"
)

func sessionStateKey(id string) string {
	return "session:" + id + ":state"
}

// persistedSession is the Redis representation of a session.
type persistedSession struct {
	ID           string    `json:"id"`
	PlayerName   string    `json:"player_name"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	State        State     `json:"state"`
}

// ScoreEvent is published on EventsChannel whenever a session scores.
type ScoreEvent struct {
	Type       string    `json:"type"`
	SessionID  string    `json:"session_id"`
	PlayerName string    `json:"player_name"`
	Score      int       `json:"score"`
	HoleRadius float64   `json:"hole_radius"`
	At         time.Time `json:"at"`
}

func (gm *SessionManager) stateTTL() time.Duration {
	if gm.config.SessionStateTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(gm.config.SessionStateTTLMinutes) * time.Minute
}

// saveSession writes the session state to Redis and refreshes its idle score.
func (gm *SessionManager) saveSession(ctx context.Context, sess *Session) error {
	if gm.rdb == nil {
		return nil
	}

	sess.mu.Lock()
	p := persistedSession{
		ID:           sess.ID,
		PlayerName:   sess.PlayerName,
		CreatedAt:    sess.CreatedAt,
		LastActivity: sess.LastActivity,
		State:        sess.sim.State(),
	}
	sess.mu.Unlock()

	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	pipe := gm.rdb.TxPipeline()
	pipe.SetEx(ctx, sessionStateKey(p.ID), data, gm.stateTTL())
	pipe.ZAdd(ctx, IdleSetKey, redis.Z{Score: float64(p.LastActivity.Unix()), Member: p.ID})
	_, err = pipe.Exec(ctx)
	return err
}

// loadSession rebuilds a session from its Redis snapshot.
func (gm *SessionManager) loadSession(ctx context.Context, id string) (*Session, error) {
	if gm.rdb == nil {
		return nil, ErrSessionNotFound
	}

	data, err := gm.rdb.Get(ctx, sessionStateKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}

	var p persistedSession
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("corrupt session %s: %w", id, err)
	}

	sim := NewSimulator(gm.newRand())
	sim.Restore(p.State)
	return &Session{
		ID:           p.ID,
		PlayerName:   p.PlayerName,
		CreatedAt:    p.CreatedAt,
		LastActivity: gm.now(),
		sim:          sim,
	}, nil
}

// deleteSession removes the Redis snapshot and idle entry. It reports
// whether a snapshot existed.
func (gm *SessionManager) deleteSession(ctx context.Context, id string) (bool, error) {
	if gm.rdb == nil {
		return false, nil
	}

	pipe := gm.rdb.TxPipeline()
	del := pipe.Del(ctx, sessionStateKey(id))
	pipe.ZRem(ctx, IdleSetKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	return del.Val() > 0, nil
}

// publishScore fans a score out to every instance's WebSocket clients.
func (gm *SessionManager) publishScore(ctx context.Context, rec *store.ScoreRecord) {
	if gm.rdb == nil {
		return
	}

	payload := ScoreEvent{
		Type:       string(EventHoleScored),
		SessionID:  rec.SessionID,
		PlayerName: rec.PlayerName,
		Score:      rec.Score,
		HoleRadius: rec.HoleRadius,
		At:         rec.CreatedAt,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[REDIS] Failed to marshal score event: %v", err)
		return
	}
	if n, err := gm.rdb.Publish(ctx, EventsChannel, b).Result(); err != nil {
		log.Printf("[REDIS] publish score failed: session=%s err=%v", rec.SessionID, err)
	} else {
		log.Printf("[REDIS] published score: session=%s score=%d subscribers=%d", rec.SessionID, rec.Score, n)
	}
}
