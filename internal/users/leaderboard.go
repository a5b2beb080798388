// internal/users/leaderboard.go
//
// Leaderboard and round history queries.
// Timestamps in rounds are stored in a fixed-width layout so ORDER BY on the
// text column is chronological.

package users

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// LeaderboardEntry is one ranked player.
type LeaderboardEntry struct {
	ID                string  `json:"id"`
	Username          string  `json:"username"`
	TotalScore        int     `json:"total_score"`
	Rank              int     `json:"rank"`
	ProfilePictureURL *string `json:"profile_picture_url"`
}

// DefaultLeaderboardSize is the number of players shown when no limit is given.
const DefaultLeaderboardSize = 10

// Leaderboard returns the top players by total score, highest first; ties go
// to the older account. Rank is 1-based.
func (r *Repo) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, username, total_score, profile_picture_url
        FROM users
        ORDER BY total_score DESC, created_at ASC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LeaderboardEntry, 0, limit)
	for rows.Next() {
		var (
			e   LeaderboardEntry
			pic sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Username, &e.TotalScore, &pic); err != nil {
			return nil, err
		}
		if pic.Valid {
			e.ProfilePictureURL = &pic.String
		}
		e.Rank = len(out) + 1
		out = append(out, e)
	}
	return out, rows.Err()
}

// sortableTime is fixed-width so stored timestamps order lexically.
const sortableTime = "2006-01-02T15:04:05.000000000Z07:00"

// Round is one completed round in a player's history.
type Round struct {
	ID         string    `json:"id"`
	PlayerID   string    `json:"-"`
	Tier       string    `json:"tier"`
	Score      int       `json:"score"`
	FinishedAt time.Time `json:"finished_at"`
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// RecordRound inserts a completed round; replays of the same ID are ignored.
func (r *Repo) RecordRound(ctx context.Context, rd Round) error {
	_, err := insertRound(ctx, r.db, rd)
	return err
}

// CreditRound records rd and, when userID is set, adds its score to that
// account in the same transaction. A replayed round ID changes nothing.
func (r *Repo) CreditRound(ctx context.Context, rd Round, userID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	inserted, err := insertRound(ctx, tx, rd)
	if err != nil {
		return fmt.Errorf("record round: %w", err)
	}
	if inserted && userID != "" {
		if err := bumpScore(ctx, tx, userID, rd.Score); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func insertRound(ctx context.Context, db execer, rd Round) (bool, error) {
	if rd.FinishedAt.IsZero() {
		rd.FinishedAt = time.Now().UTC()
	}
	res, err := db.ExecContext(ctx, `
        INSERT OR IGNORE INTO rounds (id, player_id, tier, score, finished_at)
        VALUES (?, ?, ?, ?, ?)`,
		rd.ID, rd.PlayerID, rd.Tier, rd.Score, rd.FinishedAt.UTC().Format(sortableTime))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// RecentRounds lists a player's latest rounds, newest first.
func (r *Repo) RecentRounds(ctx context.Context, playerID string, limit int) ([]Round, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, player_id, tier, score, finished_at
        FROM rounds
        WHERE player_id=?
        ORDER BY finished_at DESC
        LIMIT ?`, playerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Round
	for rows.Next() {
		var (
			rd       Round
			finished string
		)
		if err := rows.Scan(&rd.ID, &rd.PlayerID, &rd.Tier, &rd.Score, &finished); err != nil {
			return nil, err
		}
		rd.FinishedAt, _ = time.Parse(sortableTime, finished)
		out = append(out, rd)
	}
	return out, rows.Err()
}

// ClaimRounds moves an anonymous player's rounds onto an account.
func (r *Repo) ClaimRounds(ctx context.Context, anonID, userID string) error {
	if anonID == "" || userID == "" {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `UPDATE rounds SET player_id=? WHERE player_id=?`, userID, anonID)
	return err
}
