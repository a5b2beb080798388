// internal/httpserver/routes_game.go
//
// Server-side play under /api/game.
//   - POST /new            → start a session for {tier} (403 while the tier is locked);
//                            {daily: true} uses the shared question order for today
//   - POST /{id}/letter    → place {letter}; unavailable keys are ignored
//   - POST /{id}/backspace → clear the last slot
//   - POST /{id}/submit    → score the answer
//   - POST /{id}/next      → advance after a correct answer
//   - POST /{id}/restart   → fresh round, score reset
//   - GET  /{id}           → current state
//
// Sessions live in store.Store and are only reachable by the player who
// started them (account ID or guest cookie). Every mutation runs inside
// store.Update, so concurrent requests on one session are serialized.
// Completed rounds are written to history and credited to the account in
// one transaction, then pushed to leaderboard subscribers.

package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/robalobadob/funquiz/internal/daily"
	"github.com/robalobadob/funquiz/internal/progress"
	"github.com/robalobadob/funquiz/internal/quiz"
	"github.com/robalobadob/funquiz/internal/store"
	"github.com/robalobadob/funquiz/internal/users"
)

func (s *Server) mountGameRoutes(r chi.Router) {
	r.Route("/game", func(r chi.Router) {
		r.Post("/new", s.handleNewGame)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGameState)
			r.Post("/letter", s.handleLetter)
			r.Post("/backspace", s.handleBackspace)
			r.Post("/submit", s.handleSubmit)
			r.Post("/next", s.handleNext)
			r.Post("/restart", s.handleRestart)
		})
	})
}

type newGameReq struct {
	Tier  string `json:"tier"`
	Daily bool   `json:"daily"`
}

// gameRes wraps a state snapshot with the outcome of the action that produced it.
type gameRes struct {
	State    quiz.RoundState `json:"state"`
	Accepted *bool           `json:"accepted,omitempty"`
	Attempt  *quiz.Attempt   `json:"attempt,omitempty"`
}

// roundRecorder credits a completed round to the player who owns the session.
type roundRecorder struct {
	srv      *Server
	playerID string
	userID   string
}

func (rr roundRecorder) RecordCompletedRound(ctx context.Context, tier quiz.Tier, total int) error {
	rd := users.Round{
		ID:       uuid.NewString(),
		PlayerID: rr.playerID,
		Tier:     string(tier),
		Score:    total,
	}
	if err := rr.srv.users.CreditRound(ctx, rd, rr.userID); err != nil {
		return err
	}
	if rr.userID != "" {
		rr.srv.hub.Refresh(ctx)
	}
	return nil
}

// handleNewGame starts a session for the requested tier.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, r, err)
		return
	}
	tier, err := quiz.ParseTier(req.Tier)
	if err != nil {
		writeErr(w, r, err)
		return
	}

	player := s.playerID(w, r)
	rec := roundRecorder{srv: s, playerID: player}
	if me := currentUser(r); me != nil {
		rec.userID = me.ID
	}

	opts := []quiz.Option{
		quiz.WithOwner(player),
		quiz.WithProgress(progress.ForPlayer(s.progress, player)),
		quiz.WithRecorder(rec),
	}
	if req.Daily {
		opts = append(opts, quiz.WithRand(daily.Rand(time.Now(), s.cfg.DailySalt, tier)))
	}
	sess, err := quiz.NewSession(tier, s.bank[tier], opts...)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if err := sess.Start(r.Context()); err != nil {
		writeErr(w, r, err)
		return
	}
	if err := s.sessions.Save(r.Context(), sess); err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, gameRes{State: sess.State()})
}

// withSession runs fn on the caller's session and replies with the resulting state.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(*quiz.Session, *gameRes) error) {
	var res gameRes
	err := s.sessions.Update(r.Context(), chi.URLParam(r, "id"), func(sess *quiz.Session) error {
		if !s.owns(r, sess) {
			return store.ErrNotFound
		}
		if err := fn(sess, &res); err != nil {
			return err
		}
		res.State = sess.State()
		return nil
	})
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// owns reports whether the requester started sess, either signed in or as a guest.
func (s *Server) owns(r *http.Request, sess *quiz.Session) bool {
	if me := currentUser(r); me != nil && me.ID == sess.Owner {
		return true
	}
	anon := anonID(r)
	return anon != "" && anon == sess.Owner
}

func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(*quiz.Session, *gameRes) error { return nil })
}

type letterReq struct {
	Letter string `json:"letter"`
}

func (s *Server) handleLetter(w http.ResponseWriter, r *http.Request) {
	var req letterReq
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, r, err)
		return
	}
	l, err := quiz.ParseLetter(req.Letter)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	s.withSession(w, r, func(sess *quiz.Session, res *gameRes) error {
		ok := sess.SelectLetter(l)
		res.Accepted = &ok
		return nil
	})
}

func (s *Server) handleBackspace(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *quiz.Session, res *gameRes) error {
		ok := sess.Backspace()
		res.Accepted = &ok
		return nil
	})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *quiz.Session, res *gameRes) error {
		a, err := sess.Submit(r.Context())
		if err != nil {
			return err
		}
		res.Attempt = &a
		return nil
	})
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *quiz.Session, _ *gameRes) error {
		return sess.Advance(r.Context())
	})
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *quiz.Session, _ *gameRes) error {
		return sess.Restart(r.Context())
	})
}
