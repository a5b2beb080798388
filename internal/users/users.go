// internal/users/users.go
//
// Account persistence for funquiz.
// Responsibilities:
//   - Signup validation, bcrypt hashing, uniqueness of username and email.
//   - Login by username or email.
//   - Score increments and the top-N leaderboard.
//   - Profile edits (username, email, picture URL) and per-user settings.
//   - History of completed rounds.
//
// All timestamps are stored as RFC3339 UTC strings.

package users

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrTaken          = errors.New("username or email already exists")
	ErrInvalid        = errors.New("invalid input")
	ErrBadCredentials = errors.New("invalid username or password")
)

// User is the public shape of an account; PasswordHash never leaves the server.
type User struct {
	ID                string    `json:"id"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"-"`
	CreatedAt         time.Time `json:"created_at"`
	TotalScore        int       `json:"total_score"`
	ProfilePictureURL *string   `json:"profile_picture_url"`
}

// Repo reads and writes the users table.
type Repo struct{ db *sql.DB }

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db} }

const userColumns = `id, username, email, password_hash, created_at, total_score, profile_picture_url`

// Create validates input, checks uniqueness, hashes the password, and inserts a new user.
func (r *Repo) Create(ctx context.Context, username, email, pw string) (*User, error) {
	username = normalizeUsername(username)
	email = normalizeEmail(email)
	if err := validateSignup(username, email, pw); err != nil {
		return nil, err
	}
	if err := r.ensureAvailable(ctx, "", username, email); err != nil {
		return nil, err
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &User{
		ID:           genID(),
		Username:     username,
		Email:        email,
		PasswordHash: string(h),
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, created_at) VALUES (?,?,?,?,?)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// Authenticate looks a user up by username or email and verifies the password.
func (r *Repo) Authenticate(ctx context.Context, login, pw string) (*User, error) {
	login = strings.TrimSpace(login)
	if login == "" || pw == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrInvalid)
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username=? OR email=? LIMIT 1`, login, login)
	u, err := scanUser(row)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(pw)) != nil {
		return nil, ErrBadCredentials
	}
	return u, nil
}

// FindByID loads a user or returns ErrNotFound.
func (r *Repo) FindByID(ctx context.Context, id string) (*User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id=?`, id)
	return scanUser(row)
}

// AddScore increments a user's total score by delta (delta >= 0).
func (r *Repo) AddScore(ctx context.Context, id string, delta int) (*User, error) {
	if delta < 0 {
		return nil, fmt.Errorf("%w: score must be a non-negative number", ErrInvalid)
	}
	if err := bumpScore(ctx, r.db, id, delta); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func bumpScore(ctx context.Context, db execer, id string, delta int) error {
	res, err := db.ExecContext(ctx, `UPDATE users SET total_score = total_score + ? WHERE id=?`, delta, id)
	if err != nil {
		return fmt.Errorf("add score: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ProfileUpdate carries optional profile edits; nil fields are left alone.
type ProfileUpdate struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
}

// UpdateProfile applies a ProfileUpdate after validating and checking uniqueness.
func (r *Repo) UpdateProfile(ctx context.Context, id string, up ProfileUpdate) (*User, error) {
	u, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	username, email := u.Username, u.Email
	if up.Username != nil {
		username = normalizeUsername(*up.Username)
		if err := validateUsername(username); err != nil {
			return nil, err
		}
	}
	if up.Email != nil {
		email = normalizeEmail(*up.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
	}
	if err := r.ensureAvailable(ctx, id, username, email); err != nil {
		return nil, err
	}
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET username=?, email=? WHERE id=?`, username, email, id); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return r.FindByID(ctx, id)
}

// SetProfilePicture stores the public URL of the user's picture.
func (r *Repo) SetProfilePicture(ctx context.Context, id, url string) (*User, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET profile_picture_url=? WHERE id=?`, url, id)
	if err != nil {
		return nil, fmt.Errorf("set profile picture: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return r.FindByID(ctx, id)
}

// ensureAvailable fails with ErrTaken if another user (not selfID) owns username or email.
func (r *Repo) ensureAvailable(ctx context.Context, selfID, username, email string) error {
	var exists int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM users WHERE (username=? OR email=?) AND id<>? LIMIT 1`,
		username, email, selfID).Scan(&exists)
	switch {
	case err == nil:
		return ErrTaken
	case errors.Is(err, sql.ErrNoRows):
		return nil
	default:
		return fmt.Errorf("check uniqueness: %w", err)
	}
}

// scanUser converts a *sql.Row into a User.
func scanUser(row *sql.Row) (*User, error) {
	var (
		u       User
		created string
		pic     sql.NullString
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &created, &u.TotalScore, &pic)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, created)
	if pic.Valid {
		u.ProfilePictureURL = &pic.String
	}
	return &u, nil
}

func normalizeUsername(u string) string { return strings.TrimSpace(u) }

func normalizeEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

func validateSignup(u, e, p string) error {
	if u == "" || e == "" || p == "" {
		return fmt.Errorf("%w: username, email, and password are required", ErrInvalid)
	}
	if err := validateUsername(u); err != nil {
		return err
	}
	if err := validateEmail(e); err != nil {
		return err
	}
	if len(p) < 8 || len(p) > 100 {
		return fmt.Errorf("%w: password must be 8–100 chars", ErrInvalid)
	}
	return nil
}

func validateUsername(u string) error {
	if len(u) < 3 || len(u) > 24 {
		return fmt.Errorf("%w: username must be 3–24 chars", ErrInvalid)
	}
	for _, r := range u {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return fmt.Errorf("%w: username: letters, numbers, underscore only", ErrInvalid)
		}
	}
	return nil
}

func validateEmail(e string) error {
	addr, err := mail.ParseAddress(e)
	if err != nil || addr.Address != e {
		return fmt.Errorf("%w: email address is not valid", ErrInvalid)
	}
	return nil
}

// genID creates a 22-char URL-safe, crypto-random identifier (no padding).
func genID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
