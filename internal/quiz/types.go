// internal/quiz/types.go
//
// Core type definitions for the word-unscramble engine.
// Defines:
//   - Tier: the four difficulty levels, in unlock order.
//   - Question: one (word, definition) pair from a tier's bank.
//   - DifficultyProfile: the per-tier knobs that parameterize the engine.
//   - Sentinel errors returned by the engine.

package quiz

import (
	"errors"
	"strings"
)

// Tier identifies a difficulty level. Tiers unlock in declaration order.
type Tier string

const (
	TierEasy    Tier = "easy"
	TierMedium  Tier = "medium"
	TierHard    Tier = "hard"
	TierExtreme Tier = "extreme"
)

// Tiers lists every tier in unlock order.
var Tiers = []Tier{TierEasy, TierMedium, TierHard, TierExtreme}

// ParseTier maps a case-insensitive name onto a Tier.
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := Profiles[t]; !ok {
		return "", ErrUnknownTier
	}
	return t, nil
}

// Previous returns the tier that must be completed before t unlocks.
// The first tier reports ok=false.
func (t Tier) Previous() (Tier, bool) {
	for i, x := range Tiers {
		if x == t && i > 0 {
			return Tiers[i-1], true
		}
	}
	return "", false
}

// Next returns the tier unlocked by completing t.
func (t Tier) Next() (Tier, bool) {
	for i, x := range Tiers {
		if x == t && i+1 < len(Tiers) {
			return Tiers[i+1], true
		}
	}
	return "", false
}

// Question is a single unscramble prompt. Word is uppercase A–Z only.
type Question struct {
	Word       string `json:"word" yaml:"word"`
	Definition string `json:"definition" yaml:"definition"`
}

// DifficultyProfile parameterizes one tier.
type DifficultyProfile struct {
	QuestionsPerRound      int `json:"questionsPerRound"`
	KeyboardSize           int `json:"keyboardSize"`
	BasePoints             int `json:"basePoints"`
	PenaltyPerWrongAttempt int `json:"penaltyPerWrongAttempt"`
	MinPointsIfCorrect     int `json:"minPointsIfCorrect"`
}

// Profiles holds the default profile for every tier.
var Profiles = map[Tier]DifficultyProfile{
	TierEasy:    {QuestionsPerRound: 5, KeyboardSize: 16, BasePoints: 5, PenaltyPerWrongAttempt: 2, MinPointsIfCorrect: 1},
	TierMedium:  {QuestionsPerRound: 5, KeyboardSize: 20, BasePoints: 10, PenaltyPerWrongAttempt: 3, MinPointsIfCorrect: 2},
	TierHard:    {QuestionsPerRound: 5, KeyboardSize: 24, BasePoints: 15, PenaltyPerWrongAttempt: 4, MinPointsIfCorrect: 3},
	TierExtreme: {QuestionsPerRound: 5, KeyboardSize: 26, BasePoints: 20, PenaltyPerWrongAttempt: 5, MinPointsIfCorrect: 4},
}

var (
	// ErrEmptyPool means a tier has no questions; it is a configuration error.
	ErrEmptyPool = errors.New("quiz: question pool is empty")
	// ErrUnknownTier is returned for tier names outside Tiers.
	ErrUnknownTier = errors.New("quiz: unknown tier")
	// ErrTierLocked is returned when starting a tier whose predecessor was never completed.
	ErrTierLocked = errors.New("quiz: tier is locked")
	// ErrAnswerIncomplete is returned by Submit while a slot is still empty.
	ErrAnswerIncomplete = errors.New("quiz: answer incomplete")
	// ErrNotAwaitingAnswer is returned by Submit outside the AwaitingAnswer phase.
	ErrNotAwaitingAnswer = errors.New("quiz: not awaiting an answer")
	// ErrNotAdvancing is returned by Advance outside the Advancing phase.
	ErrNotAdvancing = errors.New("quiz: nothing to advance")
)
