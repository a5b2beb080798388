package bank

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/funquiz/internal/quiz"
)

func TestEmbeddedBank(t *testing.T) {
	b, err := LoadFile("")
	require.NoError(t, err)

	seen := map[string]quiz.Tier{}
	for _, tier := range quiz.Tiers {
		pool := b[tier]
		assert.Len(t, pool, 10, "tier %s", tier)
		for _, q := range pool {
			assert.Regexp(t, `^[A-Z]+$`, q.Word)
			assert.NotEmpty(t, q.Definition)
			if prev, dup := seen[q.Word]; dup {
				t.Errorf("%s appears in %s and %s", q.Word, prev, tier)
			}
			seen[q.Word] = tier
		}
	}
	assert.Equal(t, 10, b.Counts()[quiz.TierExtreme])
}

func TestParse_NormalizesWords(t *testing.T) {
	b, err := Parse([]byte(`
easy:
  - word: end rhyme
    definition: "  Same ending sound.  "
`))
	require.NoError(t, err)
	require.Len(t, b[quiz.TierEasy], 1)
	assert.Equal(t, quiz.Question{Word: "ENDRHYME", Definition: "Same ending sound."}, b[quiz.TierEasy][0])
	assert.Empty(t, b[quiz.TierHard])
}

func TestParse_RejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown tier", "legendary:\n  - word: EPIC\n    definition: x\n"},
		{"missing definition", "easy:\n  - word: EPIC\n"},
		{"digits in word", "easy:\n  - word: EP1C\n    definition: x\n"},
		{"empty definition", "easy:\n  - word: EPIC\n    definition: \"\"\n"},
		{"extra field", "easy:\n  - word: EPIC\n    definition: x\n    hint: y\n"},
		{"not yaml", "easy: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	b, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, 10, b.Counts()[quiz.TierEasy])

	dir := t.TempDir()
	partial := filepath.Join(dir, "partial.yaml")
	require.NoError(t, os.WriteFile(partial, []byte("easy:\n  - word: ode\n    definition: A lyric poem.\n"), 0o644))
	_, err = LoadFile(partial)
	assert.ErrorIs(t, err, quiz.ErrEmptyPool)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
