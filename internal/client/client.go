// Package client talks to a funquiz server on behalf of the terminal game.
// It implements quiz.ScoreRecorder by posting completed rounds to
// /api/update-score with the player's bearer token.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/robalobadob/funquiz/internal/quiz"
	"github.com/robalobadob/funquiz/internal/users"
)

// ErrNotLoggedIn is returned when an authenticated call is made without a token.
var ErrNotLoggedIn = errors.New("client: not logged in")

// APIError is a non-2xx reply from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Client is a small JSON client for the funquiz API.
type Client struct {
	baseURL string
	token   string
	hc      *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.hc = hc } }

// WithToken sets a bearer token obtained elsewhere.
func WithToken(tok string) Option { return func(c *Client) { c.token = tok } }

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// LoggedIn reports whether a token is held.
func (c *Client) LoggedIn() bool { return c.token != "" }

// Login authenticates by username or email and keeps the returned token.
func (c *Client) Login(ctx context.Context, login, password string) (*users.User, error) {
	var res struct {
		User  *users.User `json:"user"`
		Token string      `json:"token"`
	}
	body := map[string]string{"username": login, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/login", body, &res); err != nil {
		return nil, err
	}
	c.token = res.Token
	return res.User, nil
}

// RecordCompletedRound adds total to the signed-in player's score.
func (c *Client) RecordCompletedRound(ctx context.Context, tier quiz.Tier, total int) error {
	if !c.LoggedIn() {
		return ErrNotLoggedIn
	}
	return c.do(ctx, http.MethodPost, "/api/update-score", map[string]int{"scoreToAdd": total}, nil)
}

// Leaderboard fetches the top players.
func (c *Client) Leaderboard(ctx context.Context) ([]users.LeaderboardEntry, error) {
	var out []users.LeaderboardEntry
	if err := c.do(ctx, http.MethodGet, "/api/leaderboard", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var e struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(raw))
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
