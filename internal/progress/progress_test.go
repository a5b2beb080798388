package progress

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/funquiz/internal/database"
	"github.com/robalobadob/funquiz/internal/quiz"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	db, err := database.OpenMemory(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return map[string]Store{
		"sql":    NewSQLStore(db),
		"memory": NewMemory(),
	}
}

func TestUnlockOrder(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			tiers, err := Unlocked(ctx, s, "p1")
			require.NoError(t, err)
			assert.Equal(t, []quiz.Tier{quiz.TierEasy}, tiers)

			ps := ForPlayer(s, "p1")
			ok, err := ps.Unlocked(ctx, quiz.TierMedium)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, ps.MarkCompleted(ctx, quiz.TierEasy, 12))
			ok, err = ps.Unlocked(ctx, quiz.TierMedium)
			require.NoError(t, err)
			assert.True(t, ok)

			tiers, err = Unlocked(ctx, s, "p1")
			require.NoError(t, err)
			assert.Equal(t, []quiz.Tier{quiz.TierEasy, quiz.TierMedium}, tiers)

			other, err := Unlocked(ctx, s, "p2")
			require.NoError(t, err)
			assert.Equal(t, []quiz.Tier{quiz.TierEasy}, other)
		})
	}
}

func TestMarkCompleted_KeepsBestScore(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.MarkCompleted(ctx, "p1", quiz.TierEasy, 20))
			require.NoError(t, s.MarkCompleted(ctx, "p1", quiz.TierEasy, 8))

			rs, err := s.Completed(ctx, "p1")
			require.NoError(t, err)
			require.Len(t, rs, 1)
			assert.Equal(t, 20, rs[0].BestScore)
		})
	}
}

func TestClaim(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.MarkCompleted(ctx, "guest", quiz.TierEasy, 25))
			require.NoError(t, s.MarkCompleted(ctx, "guest", quiz.TierMedium, 9))
			require.NoError(t, s.MarkCompleted(ctx, "user", quiz.TierEasy, 10))

			require.NoError(t, s.Claim(ctx, "guest", "user"))

			rs, err := s.Completed(ctx, "user")
			require.NoError(t, err)
			best := map[quiz.Tier]int{}
			for _, r := range rs {
				best[r.Tier] = r.BestScore
			}
			assert.Equal(t, map[quiz.Tier]int{quiz.TierEasy: 25, quiz.TierMedium: 9}, best)

			left, err := s.Completed(ctx, "guest")
			require.NoError(t, err)
			assert.Empty(t, left)

			require.NoError(t, s.Claim(ctx, "", "user"))
		})
	}
}

func TestSessionRespectsProgress(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	pool := []quiz.Question{{Word: "CAT", Definition: "pet"}}

	s, err := quiz.NewSession(quiz.TierMedium, pool, quiz.WithProgress(ForPlayer(m, "p1")))
	require.NoError(t, err)
	assert.ErrorIs(t, s.Start(ctx), quiz.ErrTierLocked)

	require.NoError(t, m.MarkCompleted(ctx, "p1", quiz.TierEasy, 5))
	assert.NoError(t, s.Start(ctx))
}
