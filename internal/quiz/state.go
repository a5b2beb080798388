// internal/quiz/state.go
//
// RoundState: the JSON snapshot of a session returned by the HTTP API and read
// by the terminal UI.

package quiz

// KeyState is a key plus whether it can still be pressed.
type KeyState struct {
	Key
	Enabled bool `json:"enabled"`
}

// RoundState is a read-only snapshot of a session, safe to hand to clients.
// ActiveQuestions carries the solutions and is never serialized.
type RoundState struct {
	ID              string     `json:"id"`
	Tier            Tier       `json:"tier"`
	Phase           Phase      `json:"phase"`
	ActiveQuestions []Question `json:"-"`
	QuestionCount   int        `json:"questionCount"`
	CurrentIndex    int        `json:"currentIndex"`
	Definition      string     `json:"definition,omitempty"`
	CurrentAttempts int        `json:"currentAttempts"`
	AnswerSlots     []Letter   `json:"answerSlots"`
	UsedLetters     []Letter   `json:"usedLetters"`
	Keyboard        []KeyState `json:"keyboard"`
	Score           int        `json:"score"`
	IsComplete      bool       `json:"isComplete"`
	LastAttempt     *Attempt   `json:"lastAttempt,omitempty"`
	RecordError     string     `json:"recordError,omitempty"`
}

// State snapshots the session.
func (s *Session) State() RoundState {
	st := RoundState{
		ID:              s.ID,
		Tier:            s.tier,
		Phase:           s.phase,
		ActiveQuestions: s.Questions(),
		QuestionCount:   len(s.questions),
		CurrentIndex:    s.index,
		CurrentAttempts: s.attempts,
		AnswerSlots:     []Letter{},
		UsedLetters:     []Letter{},
		Keyboard:        []KeyState{},
		Score:           s.score,
		IsComplete:      s.phase == PhaseComplete,
	}
	if s.last != nil {
		a := *s.last
		st.LastAttempt = &a
	}
	if s.recordErr != nil {
		st.RecordError = s.recordErr.Error()
	}
	q, ok := s.Current()
	if !ok || s.answer == nil {
		return st
	}
	st.Definition = q.Definition
	st.AnswerSlots = s.answer.Slots()
	st.UsedLetters = s.answer.Used()
	for _, k := range s.keyboard {
		st.Keyboard = append(st.Keyboard, KeyState{Key: k, Enabled: s.keyboard.Enabled(k.Letter, s.answer)})
	}
	return st
}
