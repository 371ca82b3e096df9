package game

import (
	"context"
	"errors"
	"log"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/playmatatu/tiltball/internal/config"
	"github.com/playmatatu/tiltball/internal/store"
	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found")

// ScoreRecorder is the part of the score store the manager needs.
type ScoreRecorder interface {
	RecordScore(ctx context.Context, rec *store.ScoreRecord) error
}

// Session is one remote player's simulator. The mutex serializes samples so
// the simulator only ever sees one caller at a time.
type Session struct {
	ID           string
	PlayerName   string
	CreatedAt    time.Time
	LastActivity time.Time

	sim *Simulator
	mu  sync.Mutex
}

// SessionInfo is a read-only summary of a session.
type SessionInfo struct {
	ID           string    `json:"id"`
	PlayerName   string    `json:"player_name"`
	Score        int       `json:"score"`
	InHole       bool      `json:"in_hole"`
	Ticks        uint64    `json:"ticks"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}

// Snapshot returns the session's current snapshot.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.Snapshot()
}

// Info returns a summary of the session.
func (s *Session) Info() SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.sim.State()
	return SessionInfo{
		ID:           s.ID,
		PlayerName:   s.PlayerName,
		Score:        st.Score,
		InHole:       st.Session.Active,
		Ticks:        st.Tick,
		CreatedAt:    s.CreatedAt,
		LastActivity: s.LastActivity,
	}
}

// SessionManager manages all live simulator sessions
type SessionManager struct {
	sessions map[string]*Session
	rdb      *redis.Client  // optional: snapshots, idle tracking, score feed
	scores   ScoreRecorder  // optional: score history
	config   *config.Config // Application config
	seq      atomic.Uint64
	now      func() time.Time
	mu       sync.RWMutex
}

var (
	// Global session manager instance
	Manager *SessionManager
)

// InitializeManager initializes the global session manager
func InitializeManager(rdb *redis.Client, scores ScoreRecorder, cfg *config.Config) {
	Manager = NewSessionManager(rdb, scores, cfg)
}

// NewSessionManager creates a new session manager. rdb and scores may be nil.
func NewSessionManager(rdb *redis.Client, scores ScoreRecorder, cfg *config.Config) *SessionManager {
	if cfg == nil {
		cfg = &config.Config{}
	}
	return &SessionManager{
		sessions: make(map[string]*Session),
		rdb:      rdb,
		scores:   scores,
		config:   cfg,
		now:      time.Now,
	}
}

// GetConfig returns the manager's config.
func (gm *SessionManager) GetConfig() *config.Config {
	return gm.config
}

// newRand returns the random source for a new session. A configured seed
// makes every session sequence reproducible.
func (gm *SessionManager) newRand() Rand {
	n := gm.seq.Add(1)
	if gm.config.RNGSeed != 0 {
		return rand.New(rand.NewPCG(uint64(gm.config.RNGSeed), n))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// CreateSession starts a new simulator session for a player
func (gm *SessionManager) CreateSession(ctx context.Context, playerName string) (*Session, error) {
	now := gm.now()
	sess := &Session{
		ID:           uuid.NewString(),
		PlayerName:   playerName,
		CreatedAt:    now,
		LastActivity: now,
		sim:          NewSimulator(gm.newRand()),
	}

	gm.mu.Lock()
	gm.sessions[sess.ID] = sess
	gm.mu.Unlock()

	if err := gm.saveSession(ctx, sess); err != nil {
		log.Printf("[SESSION] Failed to save new session %s: %v", sess.ID, err)
	}
	log.Printf("[SESSION] Created session %s for %q", sess.ID, playerName)
	return sess, nil
}

// GetSession returns a live session, rehydrating it from Redis if it was
// evicted from memory.
func (gm *SessionManager) GetSession(ctx context.Context, id string) (*Session, error) {
	gm.mu.RLock()
	sess, ok := gm.sessions[id]
	gm.mu.RUnlock()
	if ok {
		return sess, nil
	}

	sess, err := gm.loadSession(ctx, id)
	if err != nil {
		return nil, err
	}

	gm.mu.Lock()
	defer gm.mu.Unlock()
	// Another caller may have loaded it meanwhile.
	if existing, ok := gm.sessions[id]; ok {
		return existing, nil
	}
	gm.sessions[id] = sess
	log.Printf("[SESSION] Rehydrated session %s from Redis", id)
	return sess, nil
}

// SetViewport forwards the viewport to the session's simulator.
func (gm *SessionManager) SetViewport(ctx context.Context, id string, width, height float64) (Snapshot, error) {
	sess, err := gm.GetSession(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}

	sess.mu.Lock()
	sess.sim.SetViewport(width, height)
	sess.LastActivity = gm.now()
	snap := sess.sim.Snapshot()
	sess.mu.Unlock()

	if err := gm.saveSession(ctx, sess); err != nil {
		log.Printf("[SESSION] Failed to save session %s: %v", id, err)
	}
	return snap, nil
}

// ApplySample runs one simulator tick. Scores are recorded and published;
// the state is persisted on scores and every SnapshotEveryTicks ticks.
func (gm *SessionManager) ApplySample(ctx context.Context, id string, dt time.Duration, ax, ay float64) (TickResult, error) {
	sess, err := gm.GetSession(ctx, id)
	if err != nil {
		return TickResult{}, err
	}

	sess.mu.Lock()
	res := sess.sim.Update(dt, ax, ay)
	sess.LastActivity = gm.now()
	sess.mu.Unlock()

	scored := false
	for _, ev := range res.Events {
		if ev.Type == EventHoleScored {
			scored = true
			gm.recordScore(ctx, sess, ev)
		}
	}

	every := uint64(gm.config.SnapshotEveryTicks)
	if scored || (every > 0 && res.Snapshot.Tick > 0 && res.Snapshot.Tick%every == 0) {
		if err := gm.saveSession(ctx, sess); err != nil {
			log.Printf("[SESSION] Failed to save session %s: %v", id, err)
		}
	}
	return res, nil
}

func (gm *SessionManager) recordScore(ctx context.Context, sess *Session, ev Event) {
	rec := &store.ScoreRecord{
		SessionID:  sess.ID,
		PlayerName: sess.PlayerName,
		Score:      ev.Score,
		HoleRadius: ev.HoleRadius,
		CreatedAt:  gm.now().UTC(),
	}
	if gm.scores != nil {
		if err := gm.scores.RecordScore(ctx, rec); err != nil {
			log.Printf("[DB] %v", err)
		}
	}
	gm.publishScore(ctx, rec)
	log.Printf("[SESSION] Session %s scored %d (hole radius %.0f)", sess.ID, ev.Score, ev.HoleRadius)
}

// EndSession drops a session from memory and Redis.
func (gm *SessionManager) EndSession(ctx context.Context, id string) error {
	gm.mu.Lock()
	_, inMemory := gm.sessions[id]
	delete(gm.sessions, id)
	gm.mu.Unlock()

	removed, err := gm.deleteSession(ctx, id)
	if err != nil {
		return err
	}
	if !inMemory && !removed {
		return ErrSessionNotFound
	}
	log.Printf("[SESSION] Ended session %s", id)
	return nil
}

// ActiveSessions lists the sessions currently held in memory.
func (gm *SessionManager) ActiveSessions() []SessionInfo {
	gm.mu.RLock()
	sessions := make([]*Session, 0, len(gm.sessions))
	for _, s := range gm.sessions {
		sessions = append(sessions, s)
	}
	gm.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		infos = append(infos, s.Info())
	}
	return infos
}
