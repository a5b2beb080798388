package quiz

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func distinctLetters(w string) map[Letter]bool {
	m := map[Letter]bool{}
	for _, r := range w {
		m[Letter(r)] = true
	}
	return m
}

func TestBuildKeyboard_ContainsWordAndHasExpectedSize(t *testing.T) {
	words := []string{"ODE", "RHYME", "SPEAKER", "PERSONIFICATION", "ONOMATOPOEIA", "CONCRETEPOETRY", "ABCDEFGHIJKLMNOPQRSTUVWXYZ"}
	targets := []int{0, 3, 16, 20, 24, 26, 40}

	for seed := uint64(1); seed <= 25; seed++ {
		rng := NewSeeded(seed)
		for _, w := range words {
			need := distinctLetters(w)
			for _, k := range targets {
				kb := BuildKeyboard(w, k, rng)

				want := min(max(k, len(need)), 26)
				require.Len(t, kb, want, "word %s target %d", w, k)

				seen := map[Letter]bool{}
				for _, key := range kb {
					assert.False(t, seen[key.Letter], "duplicate key %s", key.Letter)
					seen[key.Letter] = true
					assert.True(t, key.Letter.Valid())
				}
				for l := range need {
					assert.True(t, seen[l], "word %s target %d missing %s", w, k, l)
				}
			}
		}
	}
}

func TestBuildKeyboard_CountsRepeatedLetters(t *testing.T) {
	kb := BuildKeyboard("SPEAKER", 16, NewSeeded(7))

	e, ok := kb.Key('E')
	require.True(t, ok)
	assert.Equal(t, 2, e.Count)

	s, ok := kb.Key('S')
	require.True(t, ok)
	assert.Equal(t, 1, s.Count)

	for _, k := range kb {
		assert.GreaterOrEqual(t, k.Count, 1)
	}
}

func TestKeyboard_EnabledTracksMultiplicity(t *testing.T) {
	kb := BuildKeyboard("ELEGY", 16, NewSeeded(3))
	a := NewAnswer(5)

	assert.True(t, kb.Enabled('E', a))
	a.SelectLetter('E')
	assert.True(t, kb.Enabled('E', a), "second E still needed")
	a.SelectLetter('L')
	a.SelectLetter('E')
	assert.False(t, kb.Enabled('E', a))
	assert.False(t, kb.Enabled('L', a))

	a.Backspace()
	assert.True(t, kb.Enabled('E', a))
}

func TestKeyboard_RepeatedLetterWordIsCompletable(t *testing.T) {
	word := "ONOMATOPOEIA"
	kb := BuildKeyboard(word, 20, NewSeeded(11))
	a := NewAnswer(len(word))
	for _, r := range word {
		l := Letter(r)
		require.True(t, kb.Enabled(l, a), "key %s disabled too early", l)
		a.SelectLetter(l)
	}
	assert.Equal(t, word, a.String())
}

func TestBuildKeyboard_PureForSameSeed(t *testing.T) {
	a := BuildKeyboard("HAIKU", 24, NewSeeded(42))
	b := BuildKeyboard("HAIKU", 24, NewSeeded(42))
	assert.Equal(t, a, b)
	assert.Equal(t, a.Sorted(), b.Sorted())
}

func TestParseLetter(t *testing.T) {
	l, err := ParseLetter("q")
	require.NoError(t, err)
	assert.Equal(t, Letter('Q'), l)

	for _, bad := range []string{"", "AB", "1", "é", " "} {
		_, err := ParseLetter(bad)
		assert.ErrorIs(t, err, ErrInvalidLetter, "%q", bad)
	}
}

func TestLetter_JSON(t *testing.T) {
	b, err := json.Marshal([]Letter{'A', 0, 'Z'})
	require.NoError(t, err)
	assert.JSONEq(t, `["A","","Z"]`, string(b))

	var got struct {
		Letter Letter `json:"letter"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"letter":"m"}`), &got))
	assert.Equal(t, Letter('M'), got.Letter)
	assert.Error(t, json.Unmarshal([]byte(`{"letter":"mm"}`), &got))
}
