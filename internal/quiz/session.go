// internal/quiz/session.go
//
// Session progression for one play-through of a tier.
//
// Phases:
//
//	Loading → AwaitingAnswer → Evaluating → (AwaitingAnswer | Advancing) → (Loading | Complete)
//
// Loading and Evaluating are transient: they are entered and left inside a
// single call. Callers observe AwaitingAnswer, Advancing and Complete.
//
// A Session is not safe for concurrent use. Every operation runs
// synchronously in response to one player action; the HTTP layer serializes
// access through store.Store.Update.

package quiz

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Phase is the session's position in the round state machine.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseAwaitingAnswer
	PhaseEvaluating
	PhaseAdvancing
	PhaseComplete
)

var phaseNames = [...]string{"loading", "awaiting_answer", "evaluating", "advancing", "complete"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Phase) UnmarshalText(b []byte) error {
	for i, n := range phaseNames {
		if n == string(b) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("quiz: unknown phase %q", b)
}

// ScoreRecorder receives the total of every completed round with a positive
// score. Its result never gates progression.
type ScoreRecorder interface {
	RecordCompletedRound(ctx context.Context, tier Tier, total int) error
}

// ProgressStore tracks which tiers a player may start.
type ProgressStore interface {
	Unlocked(ctx context.Context, tier Tier) (bool, error)
	MarkCompleted(ctx context.Context, tier Tier, score int) error
}

// Option configures a Session.
type Option func(*Session)

// WithRand replaces the default crypto/rand source.
func WithRand(r Rand) Option { return func(s *Session) { s.rng = r } }

// WithRecorder sets the collaborator notified on completion.
func WithRecorder(r ScoreRecorder) Option { return func(s *Session) { s.recorder = r } }

// WithProgress sets the store consulted at Start and marked on completion.
func WithProgress(p ProgressStore) Option { return func(s *Session) { s.progress = p } }

// WithProfile overrides the tier's default profile.
func WithProfile(p DifficultyProfile) Option { return func(s *Session) { s.profile = p } }

// WithID sets the session ID instead of a random UUID.
func WithID(id string) Option { return func(s *Session) { s.ID = id } }

// WithOwner tags the session with the player who started it.
func WithOwner(player string) Option { return func(s *Session) { s.Owner = player } }

// Session drives one round for one tier.
type Session struct {
	ID        string
	Owner     string
	StartedAt time.Time

	tier     Tier
	profile  DifficultyProfile
	pool     []Question
	rng      Rand
	recorder ScoreRecorder
	progress ProgressStore

	questions []Question
	index     int
	attempts  int
	answer    *Answer
	keyboard  Keyboard
	score     int
	phase     Phase
	last      *Attempt
	recorded  bool
	recordErr error
}

// NewSession prepares a session for tier over pool. Call Start before use.
func NewSession(tier Tier, pool []Question, opts ...Option) (*Session, error) {
	p, ok := Profiles[tier]
	if !ok {
		return nil, ErrUnknownTier
	}
	s := &Session{
		ID:      uuid.NewString(),
		tier:    tier,
		profile: p,
		pool:    pool,
		rng:     CryptoRand(),
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Start checks that the tier is unlocked and loads the first question.
func (s *Session) Start(ctx context.Context) error {
	if s.progress != nil {
		ok, err := s.progress.Unlocked(ctx, s.tier)
		if err != nil {
			return fmt.Errorf("check %s unlocked: %w", s.tier, err)
		}
		if !ok {
			return ErrTierLocked
		}
	}
	return s.begin()
}

// Restart abandons the current round from any phase and draws a fresh one
// with the score reset.
func (s *Session) Restart(ctx context.Context) error {
	return s.begin()
}

func (s *Session) begin() error {
	qs, err := BuildRound(s.pool, s.profile.QuestionsPerRound, s.rng)
	if err != nil {
		return err
	}
	if len(qs) == 0 {
		return ErrEmptyPool
	}
	s.questions = qs
	s.index = 0
	s.score = 0
	s.last = nil
	s.recorded = false
	s.recordErr = nil
	s.StartedAt = time.Now().UTC()
	s.load()
	return nil
}

func (s *Session) load() {
	s.phase = PhaseLoading
	q := s.questions[s.index]
	s.attempts = 0
	s.answer = NewAnswer(len(q.Word))
	s.keyboard = BuildKeyboard(q.Word, s.profile.KeyboardSize, s.rng)
	s.phase = PhaseAwaitingAnswer
}

// SelectLetter forwards to the answer while awaiting one. Letters whose key
// is missing or already used up are ignored.
func (s *Session) SelectLetter(l Letter) bool {
	if s.phase != PhaseAwaitingAnswer || !s.keyboard.Enabled(l, s.answer) {
		return false
	}
	return s.answer.SelectLetter(l)
}

// Backspace forwards to the answer while awaiting one.
func (s *Session) Backspace() bool {
	if s.phase != PhaseAwaitingAnswer {
		return false
	}
	return s.answer.Backspace()
}

// Submit scores the assembled answer. A wrong answer counts an attempt and
// clears the slots for another try; a right one moves to Advancing.
func (s *Session) Submit(ctx context.Context) (Attempt, error) {
	if s.phase != PhaseAwaitingAnswer {
		return Attempt{}, ErrNotAwaitingAnswer
	}
	if !s.answer.IsComplete() {
		return Attempt{}, ErrAnswerIncomplete
	}

	s.phase = PhaseEvaluating
	q := s.questions[s.index]
	res := ScoreAttempt(q.Word, s.answer.String(), s.attempts, s.profile)
	s.last = &res

	if res.Correct {
		s.score += res.Points
		s.phase = PhaseAdvancing
		return res, nil
	}
	s.attempts++
	s.answer.Reset()
	s.phase = PhaseAwaitingAnswer
	return res, nil
}

// Advance loads the next question, or completes the round after the last.
func (s *Session) Advance(ctx context.Context) error {
	if s.phase != PhaseAdvancing {
		return ErrNotAdvancing
	}
	s.index++
	s.last = nil
	if s.index < len(s.questions) {
		s.load()
		return nil
	}
	s.complete(ctx)
	return nil
}

func (s *Session) complete(ctx context.Context) {
	s.phase = PhaseComplete
	if s.recorded || s.score <= 0 {
		return
	}
	s.recorded = true

	if s.progress != nil {
		if err := s.progress.MarkCompleted(ctx, s.tier, s.score); err != nil {
			log.Warn().Err(err).Str("session", s.ID).Str("tier", string(s.tier)).Msg("mark tier completed")
		}
	}
	if s.recorder != nil {
		if err := s.recorder.RecordCompletedRound(ctx, s.tier, s.score); err != nil {
			s.recordErr = err
			log.Warn().Err(err).Str("session", s.ID).Int("score", s.score).Msg("record completed round")
		}
	}
}

// Tier is the session's tier.
func (s *Session) Tier() Tier { return s.tier }

// Profile is the profile in effect.
func (s *Session) Profile() DifficultyProfile { return s.profile }

// Phase is the current phase.
func (s *Session) Phase() Phase { return s.phase }

// Score is the running total.
func (s *Session) Score() int { return s.score }

// Attempts is the number of wrong submissions for the current question.
func (s *Session) Attempts() int { return s.attempts }

// Index is the position of the current question; len(questions) once complete.
func (s *Session) Index() int { return s.index }

// Answer is the assembler for the current question.
func (s *Session) Answer() *Answer { return s.answer }

// Keyboard is the key set for the current question.
func (s *Session) Keyboard() Keyboard { return s.keyboard }

// Current returns the question being played.
func (s *Session) Current() (Question, bool) {
	if s.index < 0 || s.index >= len(s.questions) {
		return Question{}, false
	}
	return s.questions[s.index], true
}

// Questions returns a copy of the round's questions.
func (s *Session) Questions() []Question {
	return append([]Question(nil), s.questions...)
}

// LastAttempt is the result of the latest submission for this question.
func (s *Session) LastAttempt() (Attempt, bool) {
	if s.last == nil {
		return Attempt{}, false
	}
	return *s.last, true
}

// RecordErr is the recorder's failure, if any, for the completed round.
func (s *Session) RecordErr() error { return s.recordErr }

// IsComplete reports whether the round is over.
func (s *Session) IsComplete() bool { return s.phase == PhaseComplete }
