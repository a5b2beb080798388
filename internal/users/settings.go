// internal/users/settings.go
//
// Per-user game settings (haptics, sound effects, background music), stored
// as columns on users.

package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Settings are the client-side feedback toggles. The game engine never reads
// them; UIs do.
type Settings struct {
	Haptics         bool `json:"haptics"`
	SoundEffects    bool `json:"sound_effects"`
	BackgroundMusic bool `json:"background_music"`
}

// DefaultSettings match a freshly created account.
var DefaultSettings = Settings{Haptics: true, SoundEffects: false, BackgroundMusic: true}

// SettingsUpdate carries optional toggles; nil fields are left alone.
type SettingsUpdate struct {
	Haptics         *bool `json:"haptics"`
	SoundEffects    *bool `json:"sound_effects"`
	BackgroundMusic *bool `json:"background_music"`
}

// Settings loads a user's toggles.
func (r *Repo) Settings(ctx context.Context, id string) (Settings, error) {
	var s Settings
	err := r.db.QueryRowContext(ctx,
		`SELECT haptics, sound_effects, background_music FROM users WHERE id=?`, id,
	).Scan(&s.Haptics, &s.SoundEffects, &s.BackgroundMusic)
	if errors.Is(err, sql.ErrNoRows) {
		return Settings{}, ErrNotFound
	}
	return s, err
}

// UpdateSettings applies an update and returns the resulting toggles.
func (r *Repo) UpdateSettings(ctx context.Context, id string, up SettingsUpdate) (Settings, error) {
	s, err := r.Settings(ctx, id)
	if err != nil {
		return Settings{}, err
	}
	if up.Haptics != nil {
		s.Haptics = *up.Haptics
	}
	if up.SoundEffects != nil {
		s.SoundEffects = *up.SoundEffects
	}
	if up.BackgroundMusic != nil {
		s.BackgroundMusic = *up.BackgroundMusic
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE users SET haptics=?, sound_effects=?, background_music=? WHERE id=?`,
		s.Haptics, s.SoundEffects, s.BackgroundMusic, id)
	if err != nil {
		return Settings{}, fmt.Errorf("update settings: %w", err)
	}
	return s, nil
}
