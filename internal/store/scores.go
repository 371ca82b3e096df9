package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// ScoreRecord is one completed hole: the session's score right after it.
type ScoreRecord struct {
	ID         int64     `db:"id" json:"id"`
	SessionID  string    `db:"session_id" json:"session_id"`
	PlayerName string    `db:"player_name" json:"player_name"`
	Score      int       `db:"score" json:"score"`
	HoleRadius float64   `db:"hole_radius" json:"hole_radius"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// LeaderboardEntry is the best score reached by a session.
type LeaderboardEntry struct {
	SessionID  string `db:"session_id" json:"session_id"`
	PlayerName string `db:"player_name" json:"player_name"`
	BestScore  int    `db:"best_score" json:"best_score"`
}

// ScoreStore persists scores.
type ScoreStore interface {
	RecordScore(ctx context.Context, rec *ScoreRecord) error
	SessionScores(ctx context.Context, sessionID string) ([]ScoreRecord, error)
	TopScores(ctx context.Context, limit int) ([]LeaderboardEntry, error)
	ClearScores(ctx context.Context) (int64, error)
}

// SQLStore implements ScoreStore over sqlx. Queries are written with '?'
// placeholders and rebound for the connected driver.
type SQLStore struct {
	db *sqlx.DB
}

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

// RecordScore inserts rec and fills in its ID (and CreatedAt if unset).
func (s *SQLStore) RecordScore(ctx context.Context, rec *ScoreRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query := s.db.Rebind(`INSERT INTO scores (session_id, player_name, score, hole_radius, created_at)
		VALUES (?, ?, ?, ?, ?) RETURNING id`)
	err := s.db.QueryRowxContext(ctx, query,
		rec.SessionID, rec.PlayerName, rec.Score, rec.HoleRadius, rec.CreatedAt,
	).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("failed to record score for session %s: %w", rec.SessionID, err)
	}
	return nil
}

// SessionScores returns every score of a session, oldest first.
func (s *SQLStore) SessionScores(ctx context.Context, sessionID string) ([]ScoreRecord, error) {
	records := []ScoreRecord{}
	query := s.db.Rebind(`SELECT id, session_id, player_name, score, hole_radius, created_at
		FROM scores WHERE session_id = ? ORDER BY score ASC, id ASC`)
	if err := s.db.SelectContext(ctx, &records, query, sessionID); err != nil {
		return nil, fmt.Errorf("failed to list scores for session %s: %w", sessionID, err)
	}
	return records, nil
}

// TopScores returns the best score per session, highest first.
func (s *SQLStore) TopScores(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	entries := []LeaderboardEntry{}
	query := s.db.Rebind(`SELECT session_id, player_name, MAX(score) AS best_score
		FROM scores
		GROUP BY session_id, player_name
		ORDER BY best_score DESC, session_id ASC
		LIMIT ?`)
	if err := s.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	return entries, nil
}

// ClearScores deletes every score and returns how many were removed.
func (s *SQLStore) ClearScores(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scores`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear scores: %w", err)
	}
	return res.RowsAffected()
}
