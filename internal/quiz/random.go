// internal/quiz/random.go
//
// Randomness for the engine.
//   - CryptoRand: default, backed by crypto/rand.
//   - NewSeeded: deterministic PCG for tests, --seed and daily rounds.

package quiz

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand/v2"
)

// Rand is the engine's only source of randomness.
// *math/rand/v2.Rand satisfies it.
type Rand interface {
	// IntN returns a uniform value in [0, n). n > 0.
	IntN(n int) int
}

type cryptoRand struct{}

// CryptoRand draws from crypto/rand. It is the default source.
func CryptoRand() Rand { return cryptoRand{} }

func (cryptoRand) IntN(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("quiz: crypto/rand: " + err.Error())
	}
	return int(v.Int64())
}

// NewSeeded returns a deterministic source, for tests and replays.
func NewSeeded(seed uint64) Rand {
	return mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// shuffle is an in-place Fisher–Yates shuffle driven by rng.
func shuffle[T any](rng Rand, xs []T) {
	for i := len(xs) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		xs[i], xs[j] = xs[j], xs[i]
	}
}
