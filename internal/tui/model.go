// Package tui is the terminal front end: a Bubble Tea model that drives a
// quiz.Session from the keyboard.
//
// Keys: letters fill the next slot, backspace clears one, enter submits.
// After a correct answer the next question loads on its own after
// AdvanceDelay (enter skips the wait). On the summary screen r replays the
// tier, n moves on to the next tier once it is unlocked, q quits.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/robalobadob/funquiz/internal/quiz"
)

// AdvanceDelay is how long a correct answer stays on screen.
const AdvanceDelay = 1500 * time.Millisecond

// Factory builds an unstarted session for a tier.
type Factory func(quiz.Tier) (*quiz.Session, error)

// Model is the Bubble Tea model for one play session.
type Model struct {
	ctx     context.Context
	newSess Factory
	sess    *quiz.Session
	delay   time.Duration

	flash string
	err   error
	// seq identifies the question an advance tick was scheduled for.
	seq int
}

// advanceMsg fires AdvanceDelay after a correct answer.
type advanceMsg struct{ seq int }

// New returns a model playing sess, which must already be started.
func New(ctx context.Context, sess *quiz.Session, newSess Factory) Model {
	return Model{ctx: ctx, sess: sess, newSess: newSess, delay: AdvanceDelay}
}

// WithDelay overrides the auto-advance delay.
func (m Model) WithDelay(d time.Duration) Model {
	m.delay = d
	return m
}

// Session is the session being played.
func (m Model) Session() *quiz.Session { return m.sess }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case advanceMsg:
		if msg.seq == m.seq && m.sess.Phase() == quiz.PhaseAdvancing {
			return m.advance()
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg.String())
	}
	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", "esc":
		return m, tea.Quit
	}
	m.err = nil

	switch m.sess.Phase() {
	case quiz.PhaseAwaitingAnswer:
		switch key {
		case "enter":
			return m.submit()
		case "backspace":
			m.sess.Backspace()
			m.flash = ""
			return m, nil
		}
		if l, err := quiz.ParseLetter(key); err == nil {
			m.sess.SelectLetter(l)
			m.flash = ""
		}
		return m, nil

	case quiz.PhaseAdvancing:
		if key == "enter" || key == "space" || key == " " {
			return m.advance()
		}
		return m, nil

	case quiz.PhaseComplete:
		switch key {
		case "q", "enter":
			return m, tea.Quit
		case "r":
			if err := m.sess.Restart(m.ctx); err != nil {
				m.err = err
			}
			m.flash = ""
			m.seq++
		case "n":
			return m.nextTier()
		}
	}
	return m, nil
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	res, err := m.sess.Submit(m.ctx)
	if errors.Is(err, quiz.ErrAnswerIncomplete) {
		m.flash = badStyle.Render("Fill every slot first")
		return m, nil
	}
	if err != nil {
		m.err = err
		return m, nil
	}
	if !res.Correct {
		m.flash = badStyle.Render("Not quite, try again")
		return m, nil
	}
	m.flash = goodStyle.Render(fmt.Sprintf("Correct! +%d", res.Points))
	seq := m.seq
	return m, tea.Tick(m.delay, func(time.Time) tea.Msg { return advanceMsg{seq: seq} })
}

func (m Model) advance() (tea.Model, tea.Cmd) {
	if err := m.sess.Advance(m.ctx); err != nil {
		m.err = err
		return m, nil
	}
	m.seq++
	m.flash = ""
	return m, nil
}

func (m Model) nextTier() (tea.Model, tea.Cmd) {
	next, ok := m.sess.Tier().Next()
	if !ok || m.newSess == nil {
		return m, nil
	}
	s, err := m.newSess(next)
	if err == nil {
		err = s.Start(m.ctx)
	}
	if errors.Is(err, quiz.ErrTierLocked) {
		m.flash = badStyle.Render(fmt.Sprintf("%s is still locked", next))
		return m, nil
	}
	if err != nil {
		m.err = err
		return m, nil
	}
	m.sess = s
	m.seq++
	m.flash = ""
	return m, nil
}

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	v.SetContent(frameStyle.Render(m.render()))
	return v
}

func (m Model) render() string {
	st := m.sess.State()
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n\n",
		titleStyle.Render("funquiz · "+strings.ToUpper(string(st.Tier))),
		hintStyle.Render(fmt.Sprintf("score %d", st.Score)))

	if st.IsComplete {
		fmt.Fprintf(&b, "%s\n\n", goodStyle.Render(fmt.Sprintf("Round complete: %d points", st.Score)))
		if st.RecordError != "" {
			fmt.Fprintf(&b, "%s\n\n", badStyle.Render("Score not saved: "+st.RecordError))
		}
		if m.flash != "" {
			fmt.Fprintf(&b, "%s\n\n", m.flash)
		}
		if m.err != nil {
			fmt.Fprintf(&b, "%s\n\n", badStyle.Render(m.err.Error()))
		}
		b.WriteString(hintStyle.Render("r replay · n next tier · q quit"))
		return b.String()
	}

	fmt.Fprintf(&b, "%s\n", hintStyle.Render(fmt.Sprintf("question %d/%d · attempts %d",
		st.CurrentIndex+1, st.QuestionCount, st.CurrentAttempts)))
	fmt.Fprintf(&b, "%s\n\n", defStyle.Render(st.Definition))

	slots := make([]string, len(st.AnswerSlots))
	for i, l := range st.AnswerSlots {
		if l == 0 {
			slots[i] = hintStyle.Render("_")
		} else {
			slots[i] = slotStyle.Render(l.String())
		}
	}
	fmt.Fprintf(&b, "%s\n\n", strings.Join(slots, " "))

	keys := make([]string, len(st.Keyboard))
	for i, k := range st.Keyboard {
		style := keyOff
		if k.Enabled {
			style = keyOn
		}
		keys[i] = style.Render(k.Letter.String())
	}
	fmt.Fprintf(&b, "%s\n\n", strings.Join(keys, " "))

	if m.flash != "" {
		fmt.Fprintf(&b, "%s\n", m.flash)
	}
	if m.err != nil {
		fmt.Fprintf(&b, "%s\n", badStyle.Render(m.err.Error()))
	}
	b.WriteString(hintStyle.Render("type letters · backspace · enter submit · esc quit"))
	return b.String()
}

// Run plays sess in the terminal until the player quits.
func Run(ctx context.Context, sess *quiz.Session, newSess Factory) error {
	_, err := tea.NewProgram(New(ctx, sess, newSess)).Run()
	return err
}
