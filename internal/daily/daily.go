// Package daily derives the shared "question of the day" shuffle: every
// player who starts a daily session on the same UTC date gets the same
// question order and keyboards.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"

	"github.com/robalobadob/funquiz/internal/quiz"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed is HMAC(salt, tier|YYYY-MM-DD) folded into a shuffle seed.
func Seed(date time.Time, salt string, tier quiz.Tier) uint64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(string(tier) + "|" + DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes are plenty for a PCG seed
	return binary.BigEndian.Uint64(sum[:8])
}

// Rand returns the deterministic source for tier on date.
func Rand(date time.Time, salt string, tier quiz.Tier) quiz.Rand {
	return quiz.NewSeeded(Seed(date, salt, tier))
}
