// internal/quiz/answer.go
//
// Answer assembly.
//
// Fixed-length slots filled left to right by SelectLetter and cleared right to
// left by Backspace. Used() and Placed() feed the keyboard's enabled state.

package quiz

import (
	"sort"
	"strings"
)

// Answer assembles the player's letters into fixed-length slots.
// Invalid operations (selecting into a full answer, backspacing an empty one)
// are no-ops, never errors.
type Answer struct {
	slots []Letter
	used  map[Letter]struct{}
}

// NewAnswer returns an empty answer with n slots.
func NewAnswer(n int) *Answer {
	return &Answer{slots: make([]Letter, max(n, 0)), used: make(map[Letter]struct{})}
}

// SelectLetter places l in the first empty slot and marks it used.
// It reports whether anything changed.
func (a *Answer) SelectLetter(l Letter) bool {
	if !l.Valid() {
		return false
	}
	for i, s := range a.slots {
		if s == 0 {
			a.slots[i] = l
			a.used[l] = struct{}{}
			return true
		}
	}
	return false
}

// Backspace clears the rightmost filled slot. The letter stays marked used
// while another slot still holds it.
func (a *Answer) Backspace() bool {
	for i := len(a.slots) - 1; i >= 0; i-- {
		l := a.slots[i]
		if l == 0 {
			continue
		}
		a.slots[i] = 0
		if a.Placed(l) == 0 {
			delete(a.used, l)
		}
		return true
	}
	return false
}

// IsComplete is true when no slot is empty.
func (a *Answer) IsComplete() bool {
	for _, s := range a.slots {
		if s == 0 {
			return false
		}
	}
	return true
}

// String concatenates the slots. Only meaningful once complete.
func (a *Answer) String() string {
	var b strings.Builder
	b.Grow(len(a.slots))
	for _, s := range a.slots {
		if s != 0 {
			b.WriteRune(rune(s))
		}
	}
	return b.String()
}

// Reset clears every slot and the used set.
func (a *Answer) Reset() {
	clear(a.slots)
	clear(a.used)
}

// Len is the number of slots.
func (a *Answer) Len() int { return len(a.slots) }

// Filled counts non-empty slots.
func (a *Answer) Filled() int {
	n := 0
	for _, s := range a.slots {
		if s != 0 {
			n++
		}
	}
	return n
}

// Placed counts slots holding l.
func (a *Answer) Placed(l Letter) int {
	n := 0
	for _, s := range a.slots {
		if s == l {
			n++
		}
	}
	return n
}

// IsUsed reports whether l is marked used.
func (a *Answer) IsUsed(l Letter) bool {
	_, ok := a.used[l]
	return ok
}

// Slots returns a copy of the slots; empty slots are zero.
func (a *Answer) Slots() []Letter {
	return append([]Letter(nil), a.slots...)
}

// Used returns the used letters in A–Z order.
func (a *Answer) Used() []Letter {
	out := make([]Letter, 0, len(a.used))
	for l := range a.used {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
