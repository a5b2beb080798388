// internal/quiz/round.go
//
// Round building: draws a shuffled subset of a tier's pool for one session.
// The pool itself is never reordered.

package quiz

// BuildRound draws a uniform random permutation of pool and keeps the first
// min(count, len(pool)) questions. pool is not modified.
func BuildRound(pool []Question, count int, rng Rand) ([]Question, error) {
	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}
	out := make([]Question, len(pool))
	copy(out, pool)
	shuffle(rng, out)
	if count < len(out) {
		out = out[:max(count, 0)]
	}
	return out, nil
}
