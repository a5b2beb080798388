package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := OpenMemory(ctx)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(ctx, db))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM _migrations`).Scan(&n))
	assert.Equal(t, 2, n)

	for _, table := range []string{"users", "progress", "rounds"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		assert.NoError(t, err, table)
	}

	_, err = db.Exec(`INSERT INTO users (id, username, email, password_hash, created_at) VALUES ('u1','poet','p@x.io','h','2025-01-01T00:00:00Z')`)
	require.NoError(t, err)
	var haptics, sfx, bgm int
	require.NoError(t, db.QueryRow(`SELECT haptics, sound_effects, background_music FROM users WHERE id='u1'`).Scan(&haptics, &sfx, &bgm))
	assert.Equal(t, []int{1, 0, 1}, []int{haptics, sfx, bgm})
}

func TestOpen_FileCreatesParentDir(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "nested", "funquiz.db")

	db, err := Open(DriverPure, dsn)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, Migrate(ctx, db))
	assert.FileExists(t, dsn)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("postgres", ":memory:")
	assert.Error(t, err)
}
