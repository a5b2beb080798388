package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePool() []Question {
	return []Question{
		{Word: "RHYTHM", Definition: "The beat or musical quality of a poem."},
		{Word: "STANZA", Definition: "A group of lines in a poem."},
		{Word: "RHYME", Definition: "Words that sound alike in a poem."},
		{Word: "SIMILE", Definition: `A comparison using "like" or "as".`},
		{Word: "METAPHOR", Definition: `A direct comparison without using "like" or "as".`},
		{Word: "TOPIC", Definition: "The main idea or subject of a poem."},
		{Word: "METER", Definition: "The pattern of beats or stresses in a poem."},
	}
}

func TestBuildRound_EmptyPool(t *testing.T) {
	_, err := BuildRound(nil, 5, NewSeeded(1))
	assert.ErrorIs(t, err, ErrEmptyPool)

	_, err = BuildRound([]Question{}, 5, NewSeeded(1))
	assert.ErrorIs(t, err, ErrEmptyPool)
}

func TestBuildRound_TakesDistinctSubset(t *testing.T) {
	pool := samplePool()
	inPool := map[string]bool{}
	for _, q := range pool {
		inPool[q.Word] = true
	}

	for seed := uint64(1); seed <= 20; seed++ {
		got, err := BuildRound(pool, 5, NewSeeded(seed))
		require.NoError(t, err)
		require.Len(t, got, 5)

		seen := map[string]bool{}
		for _, q := range got {
			assert.True(t, inPool[q.Word])
			assert.False(t, seen[q.Word], "duplicate %s", q.Word)
			seen[q.Word] = true
		}
	}
}

func TestBuildRound_CountLargerThanPool(t *testing.T) {
	pool := samplePool()[:3]
	got, err := BuildRound(pool, 5, NewSeeded(2))
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.ElementsMatch(t, pool, got)
}

func TestBuildRound_DoesNotMutatePool(t *testing.T) {
	pool := samplePool()
	orig := append([]Question(nil), pool...)
	_, err := BuildRound(pool, 3, NewSeeded(9))
	require.NoError(t, err)
	assert.Equal(t, orig, pool)
}

func TestBuildRound_EveryQuestionCanBeDrawnFirst(t *testing.T) {
	pool := samplePool()
	rng := NewSeeded(5)
	first := map[string]bool{}
	for i := 0; i < 500; i++ {
		got, err := BuildRound(pool, 1, rng)
		require.NoError(t, err)
		first[got[0].Word] = true
	}
	assert.Len(t, first, len(pool))
}
