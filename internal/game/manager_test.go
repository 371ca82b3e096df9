package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/playmatatu/tiltball/internal/config"
	"github.com/playmatatu/tiltball/internal/store"
)

type recordingStore struct {
	mu      sync.Mutex
	records []store.ScoreRecord
}

func (r *recordingStore) RecordScore(ctx context.Context, rec *store.ScoreRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec.ID = int64(len(r.records) + 1)
	r.records = append(r.records, *rec)
	return nil
}

func newTestManager(scores ScoreRecorder) *SessionManager {
	cfg := &config.Config{
		SessionIdleSeconds: 60,
		SnapshotEveryTicks: 10,
		RNGSeed:            7,
	}
	return NewSessionManager(nil, scores, cfg)
}

func TestCreateAndGetSession(t *testing.T) {
	gm := newTestManager(nil)
	ctx := context.Background()

	sess, err := gm.CreateSession(ctx, "ana")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("session has no ID")
	}

	got, err := gm.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}
	if got != sess {
		t.Error("GetSession returned a different session")
	}

	if _, err := gm.GetSession(ctx, "missing"); err != ErrSessionNotFound {
		t.Errorf("missing session: got %v, want ErrSessionNotFound", err)
	}
}

func TestApplySampleRequiresViewport(t *testing.T) {
	gm := newTestManager(nil)
	ctx := context.Background()
	sess, _ := gm.CreateSession(ctx, "ana")

	res, err := gm.ApplySample(ctx, sess.ID, 16*time.Millisecond, 10, 10)
	if err != nil {
		t.Fatalf("ApplySample failed: %v", err)
	}
	if res.Snapshot.Tick != 0 || len(res.Events) != 0 {
		t.Errorf("sample before viewport should be a no-op, got %+v", res)
	}

	snap, err := gm.SetViewport(ctx, sess.ID, 1080, 1920)
	if err != nil {
		t.Fatalf("SetViewport failed: %v", err)
	}
	if snap.BallPosition != NewVec2(540, 960) {
		t.Errorf("ball not centered: %+v", snap.BallPosition)
	}

	res, err = gm.ApplySample(ctx, sess.ID, 16*time.Millisecond, 10, 10)
	if err != nil {
		t.Fatalf("ApplySample failed: %v", err)
	}
	if res.Snapshot.Tick != 1 {
		t.Errorf("tick = %d, want 1", res.Snapshot.Tick)
	}
}

func TestApplySampleRecordsScores(t *testing.T) {
	rec := &recordingStore{}
	gm := newTestManager(rec)
	ctx := context.Background()
	sess, _ := gm.CreateSession(ctx, "ben")
	gm.SetViewport(ctx, sess.ID, 1000, 2000)

	// Park the ball on the hole so the countdown runs uninterrupted.
	sess.mu.Lock()
	st := sess.sim.State()
	st.Hole.Center = st.Position
	sess.sim.Restore(st)
	sess.mu.Unlock()

	scored := 0
	for i := 0; i < 60; i++ {
		res, err := gm.ApplySample(ctx, sess.ID, 100*time.Millisecond, 0, 0)
		if err != nil {
			t.Fatalf("ApplySample failed: %v", err)
		}
		if res.Has(EventHoleScored) {
			scored++
		}
	}

	if scored != 1 {
		t.Fatalf("expected one score in 6s, got %d", scored)
	}
	if len(rec.records) != 1 {
		t.Fatalf("expected one recorded score, got %d", len(rec.records))
	}
	r := rec.records[0]
	if r.SessionID != sess.ID || r.PlayerName != "ben" || r.Score != 1 || r.HoleRadius != 92 {
		t.Errorf("unexpected record: %+v", r)
	}
}

func TestEndSession(t *testing.T) {
	gm := newTestManager(nil)
	ctx := context.Background()
	sess, _ := gm.CreateSession(ctx, "cat")

	if err := gm.EndSession(ctx, sess.ID); err != nil {
		t.Fatalf("EndSession failed: %v", err)
	}
	if _, err := gm.GetSession(ctx, sess.ID); err != ErrSessionNotFound {
		t.Errorf("ended session still reachable: %v", err)
	}
	if err := gm.EndSession(ctx, sess.ID); err != ErrSessionNotFound {
		t.Errorf("second EndSession: got %v, want ErrSessionNotFound", err)
	}
}

func TestEvictIdle(t *testing.T) {
	gm := newTestManager(nil)
	ctx := context.Background()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	gm.now = func() time.Time { return now }

	stale, _ := gm.CreateSession(ctx, "stale")
	fresh, _ := gm.CreateSession(ctx, "fresh")

	now = now.Add(2 * time.Minute)
	gm.SetViewport(ctx, fresh.ID, 100, 100)

	if n := gm.EvictIdle(ctx); n != 1 {
		t.Fatalf("evicted %d sessions, want 1", n)
	}
	if _, err := gm.GetSession(ctx, stale.ID); err != ErrSessionNotFound {
		t.Errorf("stale session still present: %v", err)
	}
	if _, err := gm.GetSession(ctx, fresh.ID); err != nil {
		t.Errorf("fresh session evicted: %v", err)
	}
	if infos := gm.ActiveSessions(); len(infos) != 1 || infos[0].PlayerName != "fresh" {
		t.Errorf("unexpected active sessions: %+v", infos)
	}
}

func TestSeededSessionsAreReproducible(t *testing.T) {
	holeOf := func() Vec2 {
		gm := newTestManager(nil)
		ctx := context.Background()
		sess, _ := gm.CreateSession(ctx, "x")
		snap, _ := gm.SetViewport(ctx, sess.ID, 800, 600)
		return snap.HoleCenter
	}

	if a, b := holeOf(), holeOf(); a != b {
		t.Errorf("seeded managers placed holes differently: %+v vs %+v", a, b)
	}
}
