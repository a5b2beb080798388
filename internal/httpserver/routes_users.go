// internal/httpserver/routes_users.go
//
// Account, leaderboard, profile and settings endpoints under /api.
//   - POST /signup, /login, /logout; GET /me
//   - POST /update-score (JWT user only); GET /leaderboard
//   - GET /user/{userId}; PUT /user/profile/{userId} (self only)
//   - POST /user/profile-picture (multipart, ≤ 5 MiB); GET /uploads/{filename}
//   - GET|PUT /user/settings; GET /progress; GET /rounds; GET /tiers

package httpserver

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/funquiz/internal/progress"
	"github.com/robalobadob/funquiz/internal/quiz"
	"github.com/robalobadob/funquiz/internal/users"
)

const maxPictureBytes = 5 << 20

var pictureExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

func (s *Server) mountUserRoutes(r chi.Router) {
	r.Post("/signup", s.handleSignup)
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)
	r.Get("/leaderboard", s.handleLeaderboard)
	r.Get("/tiers", s.handleTiers)
	r.Get("/user/{userId}", s.handlePublicProfile)
	r.With(s.withOptionalAuth()).Get("/progress", s.handleProgress)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth())
		r.Get("/me", s.handleMe)
		r.Post("/update-score", s.handleUpdateScore)
		r.Put("/user/profile/{userId}", s.handleUpdateProfile)
		r.Post("/user/profile-picture", s.handleProfilePicture)
		r.Get("/user/settings", s.handleGetSettings)
		r.Put("/user/settings", s.handlePutSettings)
		r.Get("/rounds", s.handleRounds)
	})
}

// ------------------------------- AUTH --------------------------------------

type signupReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginReq accepts the login name in either field.
type loginReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authRes struct {
	User  *users.User `json:"user"`
	Token string      `json:"token"`
}

// handleSignup creates a user, signs a JWT, sets the auth cookie and claims guest history.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body signupReq
	if err := decodeJSON(r, &body); err != nil {
		writeErr(w, r, err)
		return
	}
	u, err := s.users.Create(r.Context(), body.Username, body.Email, body.Password)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	tok, ok := s.issueToken(w, r, u)
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, authRes{User: u, Token: tok})
}

// handleLogin authenticates by username or email, sets the cookie and claims guest history.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginReq
	if err := decodeJSON(r, &body); err != nil {
		writeErr(w, r, err)
		return
	}
	login := body.Username
	if strings.TrimSpace(login) == "" {
		login = body.Email
	}
	u, err := s.users.Authenticate(r.Context(), login, body.Password)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	tok, ok := s.issueToken(w, r, u)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, authRes{User: u, Token: tok})
}

func (s *Server) issueToken(w http.ResponseWriter, r *http.Request, u *users.User) (string, bool) {
	tok, exp, err := s.signJWT(u.ID, u.Username)
	if err != nil {
		writeErr(w, r, fmt.Errorf("sign token: %w", err))
		return "", false
	}
	s.setAuthCookie(w, tok, exp)
	s.claimGuest(r.Context(), r, u.ID)
	return tok, true
}

// handleLogout clears the auth cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearAuthCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.FindByID(r.Context(), currentUser(r).ID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// ------------------------------ SCORES -------------------------------------

type updateScoreReq struct {
	ScoreToAdd *int `json:"scoreToAdd"`
}

// handleUpdateScore adds to the caller's total. The user always comes from the token.
func (s *Server) handleUpdateScore(w http.ResponseWriter, r *http.Request) {
	var body updateScoreReq
	if err := decodeJSON(r, &body); err != nil {
		writeErr(w, r, err)
		return
	}
	if body.ScoreToAdd == nil || *body.ScoreToAdd < 0 {
		writeError(w, http.StatusBadRequest, "scoreToAdd must be a non-negative number")
		return
	}
	u, err := s.users.AddScore(r.Context(), currentUser(r).ID, *body.ScoreToAdd)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	s.hub.Refresh(r.Context())
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	lb, err := s.users.Leaderboard(r.Context(), queryInt(r, "limit", users.DefaultLeaderboardSize))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lb)
}

func (s *Server) leaderboardSnapshot(ctx context.Context) (any, error) {
	return s.users.Leaderboard(ctx, users.DefaultLeaderboardSize)
}

// ------------------------------ PROFILE ------------------------------------

// publicProfile is what anyone may see about a user.
type publicProfile struct {
	ID                string    `json:"id"`
	Username          string    `json:"username"`
	CreatedAt         time.Time `json:"created_at"`
	TotalScore        int       `json:"total_score"`
	ProfilePictureURL *string   `json:"profile_picture_url"`
}

func (s *Server) handlePublicProfile(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.FindByID(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, publicProfile{
		ID:                u.ID,
		Username:          u.Username,
		CreatedAt:         u.CreatedAt,
		TotalScore:        u.TotalScore,
		ProfilePictureURL: u.ProfilePictureURL,
	})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r)
	if chi.URLParam(r, "userId") != me.ID {
		writeError(w, http.StatusForbidden, "you can only edit your own profile")
		return
	}
	var body users.ProfileUpdate
	if err := decodeJSON(r, &body); err != nil {
		writeErr(w, r, err)
		return
	}
	u, err := s.users.UpdateProfile(r.Context(), me.ID, body)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// handleProfilePicture stores a multipart "profilePicture" under UploadDir.
func (s *Server) handleProfilePicture(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPictureBytes+1<<20)
	if err := r.ParseMultipartForm(maxPictureBytes); err != nil {
		writeError(w, http.StatusBadRequest, "upload must be multipart and at most 5 MiB")
		return
	}
	f, hdr, err := r.FormFile("profilePicture")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(hdr.Filename))
	if !pictureExts[ext] {
		writeError(w, http.StatusBadRequest, "only jpg, png, gif and webp images are allowed")
		return
	}
	if hdr.Size > maxPictureBytes {
		writeError(w, http.StatusBadRequest, "file exceeds 5 MiB")
		return
	}

	me := currentUser(r)
	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		writeErr(w, r, fmt.Errorf("mkdir uploads: %w", err))
		return
	}
	name := fmt.Sprintf("%s-%d%s", me.ID, time.Now().UnixNano(), ext)
	out, err := os.Create(filepath.Join(s.cfg.UploadDir, name))
	if err != nil {
		writeErr(w, r, fmt.Errorf("create upload: %w", err))
		return
	}
	if _, err := io.Copy(out, f); err != nil {
		_ = out.Close()
		writeErr(w, r, fmt.Errorf("write upload: %w", err))
		return
	}
	if err := out.Close(); err != nil {
		writeErr(w, r, fmt.Errorf("close upload: %w", err))
		return
	}

	u, err := s.users.SetProfilePicture(r.Context(), me.ID, "/uploads/"+name)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// handleUpload serves a stored picture. Names with any path component are rejected.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		writeError(w, http.StatusBadRequest, "invalid file name")
		return
	}
	ext := strings.ToLower(filepath.Ext(name))
	if !pictureExts[ext] {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	path := filepath.Join(s.cfg.UploadDir, name)
	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	w.Header().Set("Content-Type", mime.TypeByExtension(ext))
	w.Header().Set("Cache-Control", "public, max-age=31536000")
	http.ServeFile(w, r, path)
}

// ------------------------------ SETTINGS -----------------------------------

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	st, err := s.users.Settings(r.Context(), currentUser(r).ID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var body users.SettingsUpdate
	if err := decodeJSON(r, &body); err != nil {
		writeErr(w, r, err)
		return
	}
	st, err := s.users.UpdateSettings(r.Context(), currentUser(r).ID, body)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// ------------------------------ PROGRESS -----------------------------------

type progressRes struct {
	Unlocked  []quiz.Tier       `json:"unlocked"`
	Completed []progress.Result `json:"completed"`
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	player := s.playerID(w, r)
	unlocked, err := progress.Unlocked(r.Context(), s.progress, player)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	done, err := s.progress.Completed(r.Context(), player)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if done == nil {
		done = []progress.Result{}
	}
	writeJSON(w, http.StatusOK, progressRes{Unlocked: unlocked, Completed: done})
}

func (s *Server) handleRounds(w http.ResponseWriter, r *http.Request) {
	rounds, err := s.users.RecentRounds(r.Context(), currentUser(r).ID, queryInt(r, "limit", 20))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if rounds == nil {
		rounds = []users.Round{}
	}
	writeJSON(w, http.StatusOK, rounds)
}

type tierInfo struct {
	Tier      quiz.Tier              `json:"tier"`
	Profile   quiz.DifficultyProfile `json:"profile"`
	Questions int                    `json:"questions"`
}

func (s *Server) handleTiers(w http.ResponseWriter, r *http.Request) {
	counts := s.bank.Counts()
	out := make([]tierInfo, 0, len(quiz.Tiers))
	for _, t := range quiz.Tiers {
		out = append(out, tierInfo{Tier: t, Profile: quiz.Profiles[t], Questions: counts[t]})
	}
	writeJSON(w, http.StatusOK, out)
}
