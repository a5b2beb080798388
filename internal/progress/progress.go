// Package progress records which tiers each player has completed and answers
// the engine's unlock question from those records.
//
// A tier is unlocked when it is the first tier or when the tier before it has
// been completed with a positive score. Players are keyed by an opaque ID:
// an account ID for signed-in users, an anonymous cookie ID for guests.
package progress

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/robalobadob/funquiz/internal/quiz"
)

// Result is one completed tier for one player.
type Result struct {
	PlayerID    string    `json:"-"`
	Tier        quiz.Tier `json:"tier"`
	BestScore   int       `json:"bestScore"`
	CompletedAt time.Time `json:"completedAt"`
}

// Store persists completed tiers.
type Store interface {
	// Completed returns every tier the player has completed.
	Completed(ctx context.Context, playerID string) ([]Result, error)
	// MarkCompleted records a completion, keeping the best score seen.
	MarkCompleted(ctx context.Context, playerID string, tier quiz.Tier, score int) error
	// Claim moves a guest's completions onto an account, keeping the best
	// score where both have one.
	Claim(ctx context.Context, fromID, toID string) error
}

// Unlocked lists the tiers the player may start, in unlock order.
func Unlocked(ctx context.Context, s Store, playerID string) ([]quiz.Tier, error) {
	done, err := completedSet(ctx, s, playerID)
	if err != nil {
		return nil, err
	}
	out := []quiz.Tier{}
	for _, t := range quiz.Tiers {
		if unlocked(t, done) {
			out = append(out, t)
		}
	}
	return out, nil
}

func unlocked(t quiz.Tier, done map[quiz.Tier]bool) bool {
	prev, ok := t.Previous()
	return !ok || done[prev]
}

func completedSet(ctx context.Context, s Store, playerID string) (map[quiz.Tier]bool, error) {
	rs, err := s.Completed(ctx, playerID)
	if err != nil {
		return nil, err
	}
	done := make(map[quiz.Tier]bool, len(rs))
	for _, r := range rs {
		done[r.Tier] = true
	}
	return done, nil
}

// ForPlayer binds a Store to one player, satisfying quiz.ProgressStore.
func ForPlayer(s Store, playerID string) quiz.ProgressStore {
	return player{s: s, id: playerID}
}

type player struct {
	s  Store
	id string
}

func (p player) Unlocked(ctx context.Context, t quiz.Tier) (bool, error) {
	done, err := completedSet(ctx, p.s, p.id)
	if err != nil {
		return false, err
	}
	return unlocked(t, done), nil
}

func (p player) MarkCompleted(ctx context.Context, t quiz.Tier, score int) error {
	return p.s.MarkCompleted(ctx, p.id, t, score)
}

const sortableTime = "2006-01-02T15:04:05.000000000Z07:00"

// SQLStore keeps completions in the progress table.
type SQLStore struct{ db *sql.DB }

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Completed(ctx context.Context, playerID string) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tier, best_score, completed_at FROM progress WHERE player_id=? ORDER BY completed_at ASC`,
		playerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Result
	for rows.Next() {
		var (
			r    = Result{PlayerID: playerID}
			tier string
			at   string
		)
		if err := rows.Scan(&tier, &r.BestScore, &at); err != nil {
			return nil, err
		}
		r.Tier = quiz.Tier(tier)
		r.CompletedAt, _ = time.Parse(sortableTime, at)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) MarkCompleted(ctx context.Context, playerID string, tier quiz.Tier, score int) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO progress (player_id, tier, best_score, completed_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT (player_id, tier) DO UPDATE SET
            best_score = MAX(best_score, excluded.best_score),
            completed_at = excluded.completed_at`,
		playerID, string(tier), score, time.Now().UTC().Format(sortableTime))
	return err
}

func (s *SQLStore) Claim(ctx context.Context, fromID, toID string) error {
	if fromID == "" || toID == "" || fromID == toID {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
        INSERT INTO progress (player_id, tier, best_score, completed_at)
        SELECT ?, tier, best_score, completed_at FROM progress WHERE player_id=?
        ON CONFLICT (player_id, tier) DO UPDATE SET
            best_score = MAX(best_score, excluded.best_score)`,
		toID, fromID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM progress WHERE player_id=?`, fromID); err != nil {
		return err
	}
	return tx.Commit()
}

// Memory is an in-process Store for the terminal client and tests.
type Memory struct {
	mu   sync.RWMutex
	done map[string]map[quiz.Tier]Result
}

func NewMemory() *Memory {
	return &Memory{done: make(map[string]map[quiz.Tier]Result)}
}

func (m *Memory) Completed(ctx context.Context, playerID string) ([]Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Result
	for _, t := range quiz.Tiers {
		if r, ok := m.done[playerID][t]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *Memory) MarkCompleted(ctx context.Context, playerID string, tier quiz.Tier, score int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(playerID, Result{PlayerID: playerID, Tier: tier, BestScore: score, CompletedAt: time.Now().UTC()})
	return nil
}

func (m *Memory) Claim(ctx context.Context, fromID, toID string) error {
	if fromID == "" || toID == "" || fromID == toID {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.done[fromID] {
		r.PlayerID = toID
		m.put(toID, r)
	}
	delete(m.done, fromID)
	return nil
}

// put stores r unless a better score is already held. Callers hold mu.
func (m *Memory) put(playerID string, r Result) {
	byTier, ok := m.done[playerID]
	if !ok {
		byTier = make(map[quiz.Tier]Result)
		m.done[playerID] = byTier
	}
	if old, ok := byTier[r.Tier]; ok && old.BestScore > r.BestScore {
		r.BestScore = old.BestScore
	}
	byTier[r.Tier] = r
}
