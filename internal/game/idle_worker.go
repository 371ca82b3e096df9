package game

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// StartIdleWorker starts a background worker that evicts idle sessions from
// memory. Evicted sessions are saved first so a reconnect can rehydrate them.
func (gm *SessionManager) StartIdleWorker(ctx context.Context) {
	poll := time.Duration(gm.config.IdleWorkerPollSeconds) * time.Second
	if poll <= 0 || gm.config.SessionIdleSeconds <= 0 {
		log.Println("[IDLE] Idle eviction disabled")
		return
	}

	log.Println("[IDLE] Idle worker started")
	go func() {
		ticker := time.NewTicker(poll)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[IDLE] Idle worker stopping")
				return
			case <-ticker.C:
				if n := gm.EvictIdle(ctx); n > 0 {
					log.Printf("[IDLE] Evicted %d idle sessions", n)
				}
			}
		}
	}()
}

// EvictIdle evicts every session idle for longer than SessionIdleSeconds and
// returns how many were evicted.
func (gm *SessionManager) EvictIdle(ctx context.Context) int {
	cutoff := gm.now().Add(-time.Duration(gm.config.SessionIdleSeconds) * time.Second)

	var candidates []string
	if gm.rdb != nil {
		members, err := gm.rdb.ZRangeByScore(ctx, IdleSetKey, &redis.ZRangeBy{
			Min: "-inf",
			Max: strconv.FormatInt(cutoff.Unix(), 10),
		}).Result()
		if err != nil {
			log.Printf("[IDLE] Failed to fetch idle sessions: %v", err)
		}
		candidates = members
	}
	// Sessions whose last snapshot is older than their activity are not in
	// the set yet, so always scan memory as well.
	gm.mu.RLock()
	for id, s := range gm.sessions {
		s.mu.Lock()
		idle := !s.LastActivity.After(cutoff)
		s.mu.Unlock()
		if idle {
			candidates = append(candidates, id)
		}
	}
	gm.mu.RUnlock()

	evicted := 0
	seen := make(map[string]bool, len(candidates))
	for _, id := range candidates {
		if seen[id] {
			continue
		}
		seen[id] = true

		gm.mu.RLock()
		sess, ok := gm.sessions[id]
		gm.mu.RUnlock()
		if !ok {
			// Snapshot only. It expires on its own TTL and is re-added on its next save.
			if gm.rdb != nil {
				gm.rdb.ZRem(ctx, IdleSetKey, id)
			}
			continue
		}

		// Recheck: the session may have become active since the scan.
		sess.mu.Lock()
		stillIdle := !sess.LastActivity.After(cutoff)
		sess.mu.Unlock()
		if !stillIdle {
			continue
		}

		if err := gm.saveSession(ctx, sess); err != nil {
			log.Printf("[IDLE] Failed to save session %s before eviction: %v", id, err)
			continue
		}

		gm.mu.Lock()
		if gm.sessions[id] == sess {
			delete(gm.sessions, id)
			evicted++
		}
		gm.mu.Unlock()
		log.Printf("[IDLE] Evicted idle session %s", id)
	}
	return evicted
}
