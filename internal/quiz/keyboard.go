// internal/quiz/keyboard.go
//
// Letter keyboard construction.
//
// A keyboard holds every distinct letter of the target word plus random decoy
// letters until it reaches the tier's size (capped at the 26-letter alphabet),
// presented in shuffled order. Each key also records how many times the word
// needs that letter, so a word like "SPEAKER" keeps its E key enabled until
// both Es are placed.

package quiz

import (
	"errors"
	"sort"
	"strings"
)

const alphabetSize = 26

// ErrInvalidLetter is returned when parsing anything other than a single A–Z letter.
var ErrInvalidLetter = errors.New("quiz: invalid letter")

// Letter is an uppercase A–Z rune. The zero value is an empty slot.
// It marshals to a one-character JSON string ("" when empty).
type Letter rune

// ParseLetter accepts a single letter in either case.
func ParseLetter(s string) (Letter, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 1 || s[0] < 'A' || s[0] > 'Z' {
		return 0, ErrInvalidLetter
	}
	return Letter(s[0]), nil
}

// Valid reports whether l is in A–Z.
func (l Letter) Valid() bool { return l >= 'A' && l <= 'Z' }

func (l Letter) String() string {
	if l == 0 {
		return ""
	}
	return string(rune(l))
}

func (l Letter) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

func (l *Letter) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*l = 0
		return nil
	}
	v, err := ParseLetter(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// Key is one keyboard button.
type Key struct {
	Letter Letter `json:"letter"`
	// Count is how many times the word uses Letter; decoys have Count 1.
	Count int `json:"count"`
}

// Keyboard is the shuffled key set for one question.
type Keyboard []Key

// BuildKeyboard returns the distinct letters of word plus random decoys,
// shuffled. Its size is min(max(targetSize, distinct(word)), 26).
func BuildKeyboard(word string, targetSize int, rng Rand) Keyboard {
	var (
		need    [alphabetSize]int
		present [alphabetSize]bool
		order   []Letter
	)
	for _, r := range strings.ToUpper(word) {
		l := Letter(r)
		if !l.Valid() {
			continue
		}
		i := l - 'A'
		if !present[i] {
			present[i] = true
			order = append(order, l)
		}
		need[i]++
	}

	target := min(max(targetSize, len(order)), alphabetSize)
	for len(order) < target {
		i := rng.IntN(alphabetSize)
		if present[i] {
			continue
		}
		present[i] = true
		order = append(order, Letter('A'+i))
	}

	kb := make(Keyboard, len(order))
	for i, l := range order {
		kb[i] = Key{Letter: l, Count: max(need[l-'A'], 1)}
	}
	shuffle(rng, kb)
	return kb
}

// Key looks up the key for l.
func (kb Keyboard) Key(l Letter) (Key, bool) {
	for _, k := range kb {
		if k.Letter == l {
			return k, true
		}
	}
	return Key{}, false
}

// Contains reports whether l is on the keyboard.
func (kb Keyboard) Contains(l Letter) bool {
	_, ok := kb.Key(l)
	return ok
}

// Enabled reports whether the key for l can still be pressed given what is
// already placed in a.
func (kb Keyboard) Enabled(l Letter, a *Answer) bool {
	k, ok := kb.Key(l)
	if !ok {
		return false
	}
	return a.Placed(l) < k.Count
}

// Sorted returns a copy ordered A–Z.
func (kb Keyboard) Sorted() Keyboard {
	out := append(Keyboard(nil), kb...)
	sort.Slice(out, func(i, j int) bool { return out[i].Letter < out[j].Letter })
	return out
}
