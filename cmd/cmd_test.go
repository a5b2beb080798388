package cmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/funquiz/internal/quiz"
)

func validServe() serveConfig {
	return serveConfig{port: 5175, driver: "sqlite3", dsn: "./data/funquiz.db"}
}

func TestServeConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*serveConfig)
		wantErr string
	}{
		{"defaults", func(*serveConfig) {}, ""},
		{"pure driver", func(c *serveConfig) { c.driver = "sqlite" }, ""},
		{"port zero", func(c *serveConfig) { c.port = 0 }, "invalid port"},
		{"port too big", func(c *serveConfig) { c.port = 70000 }, "invalid port"},
		{"unknown driver", func(c *serveConfig) { c.driver = "postgres" }, "db-driver"},
		{"empty dsn", func(c *serveConfig) { c.dsn = "" }, "--db"},
		{"production without secret", func(c *serveConfig) { c.production = true }, "jwt-secret"},
		{"production with dev secret", func(c *serveConfig) {
			c.production = true
			c.jwtSecret = "dev_secret_change_me"
		}, "jwt-secret"},
		{"production with secret", func(c *serveConfig) {
			c.production = true
			c.jwtSecret = "s3cret"
		}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validServe()
			tt.mutate(&c)
			err := c.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestServeConfig_Addr(t *testing.T) {
	c := validServe()
	c.bind = "127.0.0.1"
	assert.Equal(t, "127.0.0.1:5175", c.addr())

	c.bind = "::1"
	assert.Equal(t, "[::1]:5175", c.addr())
}

func TestPlayConfig_Validate(t *testing.T) {
	assert.NoError(t, (&playConfig{tier: "easy"}).validate())
	assert.NoError(t, (&playConfig{tier: "HARD", server: "http://x", user: "a", password: "b"}).validate())
	assert.Error(t, (&playConfig{tier: "legendary"}).validate())
	assert.Error(t, (&playConfig{tier: "easy", user: "a"}).validate())
	assert.Error(t, (&playConfig{tier: "easy", user: "a", password: "b"}).validate())
	assert.NoError(t, (&playConfig{tier: "easy", server: "http://x", token: "t"}).validate())
	assert.Error(t, (&playConfig{tier: "easy", token: "t"}).validate())
	assert.Error(t, (&playConfig{tier: "easy", server: "http://x", token: "t", user: "a", password: "b"}).validate())
}

func TestScoreRecorder(t *testing.T) {
	var auth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()
	ctx := context.Background()

	rec, err := scoreRecorder(ctx, &playConfig{})
	require.NoError(t, err)
	assert.Nil(t, rec, "offline play reports nowhere")

	rec, err = scoreRecorder(ctx, &playConfig{server: ts.URL, token: "tok-9"})
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.NoError(t, rec.RecordCompletedRound(ctx, quiz.TierEasy, 4))
	assert.Equal(t, "Bearer tok-9", auth)
}

func TestBindFlags_EnvFillsUnsetFlags(t *testing.T) {
	t.Setenv("FUNQUIZ_PORT", "9999")
	t.Setenv("FUNQUIZ_DB_DRIVER", "sqlite")
	t.Setenv("FUNQUIZ_BIND", "10.0.0.1")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	port := fs.Int("port", 5175, "")
	driver := fs.String("db-driver", "sqlite3", "")
	bind := fs.String("bind", "0.0.0.0", "")
	require.NoError(t, fs.Parse([]string{"--bind", "127.0.0.1"}))

	bindFlags(newViper(), fs)

	assert.Equal(t, 9999, *port)
	assert.Equal(t, "sqlite", *driver)
	assert.Equal(t, "127.0.0.1", *bind, "explicit flag wins over env")
}

func TestRootCommand(t *testing.T) {
	root := newRootCmd()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["play"])
	assert.Equal(t, releaseVersion, root.Version)
}

func TestSetupLogging(t *testing.T) {
	assert.NoError(t, setupLogging("debug", false))
	assert.NoError(t, setupLogging("WARN", false))
	assert.Error(t, setupLogging("loud", false))
	assert.NoError(t, setupLogging("info", false))
}
