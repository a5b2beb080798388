package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/funquiz/internal/quiz"
)

func TestRecordCompletedRound(t *testing.T) {
	var got struct {
		auth  string
		score int
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/login":
			_, _ = w.Write([]byte(`{"user":{"id":"u1","username":"alice"},"token":"tok-123"}`))
		case "/api/update-score":
			got.auth = r.Header.Get("Authorization")
			var body map[string]int
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			got.score = body["scoreToAdd"]
			_, _ = w.Write([]byte(`{"id":"u1","total_score":17}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	ctx := context.Background()
	c := New(ts.URL + "/")
	assert.ErrorIs(t, c.RecordCompletedRound(ctx, quiz.TierEasy, 17), ErrNotLoggedIn)

	u, err := c.Login(ctx, "alice", "longenough")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.True(t, c.LoggedIn())

	require.NoError(t, c.RecordCompletedRound(ctx, quiz.TierEasy, 17))
	assert.Equal(t, "Bearer tok-123", got.auth)
	assert.Equal(t, 17, got.score)
}

func TestAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid username or password"}`, http.StatusUnauthorized)
	}))
	defer ts.Close()

	_, err := New(ts.URL).Login(context.Background(), "alice", "nope")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "invalid username or password", apiErr.Message)
}

func TestLeaderboard(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"u1","username":"alice","total_score":30,"rank":1}]`))
	}))
	defer ts.Close()

	lb, err := New(ts.URL).Leaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, lb, 1)
	assert.Equal(t, 30, lb[0].TotalScore)
}
