// internal/store/memory.go
//
// In-memory session store for server-side play.
//
// Characteristics:
//   - Stores *quiz.Session objects keyed by ID in a map.
//   - Update runs the caller's function under that session's own mutex, so
//     requests on one session are serialized while other sessions proceed and
//     the engine itself stays lock-free.
//   - Sessions idle longer than the TTL are dropped by Sweep.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robalobadob/funquiz/internal/quiz"
)

var ErrNotFound = errors.New("session not found")

// Store defines the persistence interface for play sessions.
type Store interface {
	// Save persists or replaces a session.
	Save(ctx context.Context, s *quiz.Session) error

	// Get retrieves a session by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*quiz.Session, error)

	// Update runs fn with exclusive access to the session.
	Update(ctx context.Context, id string, fn func(*quiz.Session) error) error

	// Delete forgets a session. Missing IDs are not an error.
	Delete(ctx context.Context, id string) error
}

type entry struct {
	mu sync.Mutex
	s  *quiz.Session
	// unix nanos of the last Save/Update; read by Sweep without e.mu
	touched atomic.Int64
}

func (m *Memory) newEntry(s *quiz.Session) *entry {
	e := &entry{s: s}
	e.touched.Store(m.now().UnixNano())
	return e
}

// Memory is a map-backed Store. mu guards the map only.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	now      func() time.Time
}

// NewMemoryStore constructs an empty Memory store.
func NewMemoryStore() *Memory {
	return &Memory{sessions: make(map[string]*entry), now: time.Now}
}

func (m *Memory) Save(ctx context.Context, s *quiz.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = m.newEntry(s)
	return nil
}

func (m *Memory) Get(ctx context.Context, id string) (*quiz.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.sessions[id]; ok {
		return e.s, nil
	}
	return nil, ErrNotFound
}

func (m *Memory) Update(ctx context.Context, id string, fn func(*quiz.Session) error) error {
	m.mu.RLock()
	e, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touched.Store(m.now().UnixNano())
	return fn(e.s)
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len is the number of live sessions.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep drops sessions untouched for longer than ttl and returns how many.
func (m *Memory) Sweep(ttl time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.now().Add(-ttl).UnixNano()
	n := 0
	for id, e := range m.sessions {
		if e.touched.Load() < cutoff {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *Memory) RunSweeper(ctx context.Context, interval, ttl time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Sweep(ttl)
		}
	}
}
