package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/funquiz/internal/quiz"
)

func newSession(t *testing.T, id string) *quiz.Session {
	t.Helper()
	s, err := quiz.NewSession(quiz.TierEasy,
		[]quiz.Question{{Word: "CAT", Definition: "pet"}},
		quiz.WithID(id), quiz.WithRand(quiz.NewSeeded(1)))
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	return s
}

func TestSaveGetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	_, err := m.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	s := newSession(t, "s1")
	require.NoError(t, m.Save(ctx, s))
	got, err := m.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.NoError(t, m.Delete(ctx, "s1"))
	require.NoError(t, m.Delete(ctx, "s1"))
	assert.Equal(t, 0, m.Len())
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	require.NoError(t, m.Save(ctx, newSession(t, "s1")))

	err := m.Update(ctx, "missing", func(*quiz.Session) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)

	boom := errors.New("boom")
	assert.ErrorIs(t, m.Update(ctx, "s1", func(*quiz.Session) error { return boom }), boom)

	require.NoError(t, m.Update(ctx, "s1", func(s *quiz.Session) error {
		assert.True(t, s.SelectLetter('C'))
		return nil
	}))
	got, _ := m.Get(ctx, "s1")
	assert.Equal(t, 1, got.Answer().Filled())
}

func TestUpdate_SerializesConcurrentCallers(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	require.NoError(t, m.Save(ctx, newSession(t, "s1")))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Update(ctx, "s1", func(s *quiz.Session) error {
				s.SelectLetter('A')
				s.Backspace()
				return nil
			})
		}()
	}
	wg.Wait()
	got, _ := m.Get(ctx, "s1")
	assert.Equal(t, 0, got.Answer().Filled())
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Save(ctx, newSession(t, "old")))
	now = now.Add(time.Hour)
	require.NoError(t, m.Save(ctx, newSession(t, "new")))

	assert.Equal(t, 1, m.Sweep(30*time.Minute))
	_, err := m.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Get(ctx, "new")
	assert.NoError(t, err)
}

func TestUpdate_OtherSessionsProceedWhileOneIsBusy(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	require.NoError(t, m.Save(ctx, newSession(t, "slow")))
	require.NoError(t, m.Save(ctx, newSession(t, "fast")))

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- m.Update(ctx, "slow", func(*quiz.Session) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	fast := make(chan error, 1)
	go func() {
		fast <- m.Update(ctx, "fast", func(s *quiz.Session) error {
			s.SelectLetter('C')
			return nil
		})
	}()
	select {
	case err := <-fast:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("update on another session blocked behind a busy one")
	}

	_, err := m.Get(ctx, "slow")
	assert.NoError(t, err, "reads are not blocked either")

	close(release)
	require.NoError(t, <-done)
}
