// internal/httpserver/server.go
//
// HTTP server wiring for the funquiz backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, request logs).
//   - Public endpoints: "/", "/health", "/api/leaderboard", "/api/tiers", "/api/user/{userId}".
//   - Account endpoints: /api/signup, /api/login, /api/logout, /api/me, profile, settings.
//   - Play endpoints (optional auth): /api/game/* backed by the session store.
//   - Live leaderboard over WebSocket (/ws/leaderboard) and a QR share image (/share.png).
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Optional auth decorates requests with user context when a valid token is present;
//     guests are tracked by an anonymous cookie instead.
//   - Long-lived routes (WebSocket, uploads, QR) sit outside the handler timeout.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/funquiz/internal/bank"
	"github.com/robalobadob/funquiz/internal/progress"
	"github.com/robalobadob/funquiz/internal/quiz"
	"github.com/robalobadob/funquiz/internal/store"
	"github.com/robalobadob/funquiz/internal/users"
)

// Config holds the server's tunables. Zero values fall back to development defaults.
type Config struct {
	ClientOrigin   string
	JWTSecret      string
	JWTTTL         time.Duration
	CookieName     string
	Production     bool
	UploadDir      string
	PublicURL      string
	RequestTimeout time.Duration
	SessionTTL     time.Duration
	DailySalt      string
}

const devSecret = "dev_secret_change_me"

func (c Config) withDefaults() Config {
	if c.ClientOrigin == "" {
		c.ClientOrigin = "http://localhost:5173"
	}
	if c.JWTSecret == "" {
		c.JWTSecret = devSecret
	}
	if c.JWTTTL <= 0 {
		c.JWTTTL = 14 * 24 * time.Hour
	}
	if c.CookieName == "" {
		c.CookieName = "funquiz_token"
	}
	if c.UploadDir == "" {
		c.UploadDir = "uploads"
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 10 * time.Second
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = 2 * time.Hour
	}
	if c.DailySalt == "" {
		c.DailySalt = c.JWTSecret
	}
	return c
}

// Server bundles router, repositories, session store and question bank.
type Server struct {
	r        *chi.Mux
	cfg      Config
	users    *users.Repo
	progress progress.Store
	sessions store.Store
	bank     bank.Bank
	hub      *Hub
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg Config, db *sql.DB, sessions store.Store, b bank.Bank) *Server {
	s := &Server{
		r:        chi.NewRouter(),
		cfg:      cfg.withDefaults(),
		users:    users.NewRepo(db),
		progress: progress.NewSQLStore(db),
		sessions: sessions,
		bank:     b,
	}
	s.hub = NewHub(s.leaderboardSnapshot)

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(requestLogger)
	s.r.Use(chimw.Recoverer)
	s.r.Use(s.cors)

	// --- long-lived / non-JSON ---
	s.r.Get("/ws/leaderboard", s.hub.ServeWS)
	s.r.Get("/share.png", s.handleShare)
	s.r.Get("/uploads/{filename}", s.handleUpload)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(s.cfg.RequestTimeout))
		r.Use(jsonContentType)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"service":"funquiz","endpoints":["/health","/api/*","/ws/leaderboard","/share.png"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		})

		r.Route("/api", func(r chi.Router) {
			s.mountUserRoutes(r)
			s.mountGameRoutes(r.With(s.withOptionalAuth()))
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusNotFound, "not found: "+r.URL.Path)
		})
	})

	return s
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// Hub exposes the leaderboard hub.
func (s *Server) Hub() *Hub { return s.hub }

// Start serves HTTP on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	if sw, ok := s.sessions.(interface {
		RunSweeper(ctx context.Context, interval, ttl time.Duration)
	}); ok {
		go sw.RunSweeper(ctx, time.Minute, s.cfg.SessionTTL)
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// ------------------------------ responses ----------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

// writeError sends {"error": msg} with the given status.
func writeError(w http.ResponseWriter, status int, msg string) {
	b, _ := json.Marshal(map[string]string{"error": msg})
	http.Error(w, string(b), status)
}

// writeErr maps domain errors onto HTTP statuses.
func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Str("request_id", chimw.GetReqID(r.Context())).Msg("request failed")
		msg = "internal error"
	}
	writeError(w, status, msg)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, users.ErrInvalid),
		errors.Is(err, quiz.ErrUnknownTier),
		errors.Is(err, quiz.ErrInvalidLetter),
		errors.Is(err, quiz.ErrAnswerIncomplete):
		return http.StatusBadRequest
	case errors.Is(err, users.ErrBadCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, quiz.ErrTierLocked):
		return http.StatusForbidden
	case errors.Is(err, users.ErrNotFound), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, users.ErrTaken),
		errors.Is(err, quiz.ErrNotAwaitingAnswer),
		errors.Is(err, quiz.ErrNotAdvancing):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body", users.ErrInvalid)
	}
	return nil
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
