package tui

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/funquiz/internal/progress"
	"github.com/robalobadob/funquiz/internal/quiz"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

var pools = map[quiz.Tier][]quiz.Question{
	quiz.TierEasy:   {{Word: "CAT", Definition: "A small pet."}},
	quiz.TierMedium: {{Word: "ODE", Definition: "A lyric poem."}},
}

func newModel(t *testing.T) Model {
	t.Helper()
	ctx := context.Background()
	prog := progress.ForPlayer(progress.NewMemory(), "local")
	factory := func(tier quiz.Tier) (*quiz.Session, error) {
		return quiz.NewSession(tier, pools[tier], quiz.WithRand(quiz.NewSeeded(7)), quiz.WithProgress(prog))
	}
	s, err := factory(quiz.TierEasy)
	require.NoError(t, err)
	require.NoError(t, s.Start(ctx))
	return New(ctx, s, factory)
}

func send(m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m, cmd
}

func typeWord(m Model, w string) Model {
	for _, r := range w {
		m, _ = send(m, keyPress(r))
	}
	return m
}

func TestModel_WrongThenRight(t *testing.T) {
	m := newModel(t)

	m = typeWord(m, "tac")
	m, _ = send(m, specialKey(tea.KeyEnter))
	assert.Equal(t, 1, m.Session().Attempts())
	assert.Contains(t, m.flash, "Not quite")

	m = typeWord(m, "ca")
	m, _ = send(m, specialKey(tea.KeyBackspace))
	assert.Equal(t, 1, m.Session().Answer().Filled())
	m = typeWord(m, "at")

	m, cmd := send(m, specialKey(tea.KeyEnter))
	require.NotNil(t, cmd, "a correct answer schedules the advance")
	assert.Equal(t, quiz.PhaseAdvancing, m.Session().Phase())
	assert.Contains(t, m.flash, "+3")

	// A tick from an earlier question is ignored.
	m, _ = send(m, advanceMsg{seq: m.seq - 1})
	assert.Equal(t, quiz.PhaseAdvancing, m.Session().Phase())

	m, _ = send(m, advanceMsg{seq: m.seq})
	assert.True(t, m.Session().IsComplete())
	assert.Equal(t, 3, m.Session().Score())
	assert.Contains(t, m.render(), "Round complete: 3 points")
}

func TestModel_IncompleteSubmitIsRejected(t *testing.T) {
	m := newModel(t)
	m = typeWord(m, "c")
	m, cmd := send(m, specialKey(tea.KeyEnter))
	assert.Nil(t, cmd)
	assert.Equal(t, 0, m.Session().Attempts())
	assert.Contains(t, m.flash, "Fill every slot")
}

func TestModel_NextTierAndReplay(t *testing.T) {
	m := newModel(t)
	m = typeWord(m, "cat")
	m, _ = send(m, specialKey(tea.KeyEnter), specialKey(tea.KeyEnter))
	require.True(t, m.Session().IsComplete())

	m, _ = send(m, keyPress('r'))
	assert.Equal(t, quiz.PhaseAwaitingAnswer, m.Session().Phase())
	assert.Equal(t, 0, m.Session().Score())

	m = typeWord(m, "cat")
	m, _ = send(m, specialKey(tea.KeyEnter), specialKey(tea.KeyEnter))
	m, _ = send(m, keyPress('n'))
	assert.Equal(t, quiz.TierMedium, m.Session().Tier())
	assert.Equal(t, "A lyric poem.", m.Session().State().Definition)
}

func TestModel_QuitKeys(t *testing.T) {
	m := newModel(t)
	_, cmd := send(m, tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_View(t *testing.T) {
	m := newModel(t)
	m = typeWord(m, "c")
	out := m.render()
	assert.Contains(t, out, "EASY")
	assert.Contains(t, out, "A small pet.")
	assert.Contains(t, out, "question 1/1")
	assert.True(t, strings.Contains(out, "C"))
	assert.True(t, m.View().AltScreen)
}
