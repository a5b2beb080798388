// internal/quiz/scoring.go
//
// Scoring.
//
// Points for a correct answer are BasePoints minus PenaltyPerWrongAttempt for
// every earlier wrong attempt, never below MinPointsIfCorrect.

package quiz

// Attempt is the outcome of scoring one submission.
type Attempt struct {
	Correct bool `json:"correct"`
	Points  int  `json:"pointsEarned"`
}

// ScoreAttempt compares submitted against word (exact, case-sensitive) and
// prices a correct answer as base - attemptsSoFar*penalty, floored at the
// profile minimum. attemptsSoFar counts prior wrong submissions for this
// question. Wrong answers earn nothing.
func ScoreAttempt(word, submitted string, attemptsSoFar int, p DifficultyProfile) Attempt {
	if submitted != word {
		return Attempt{}
	}
	pts := p.BasePoints - max(attemptsSoFar, 0)*p.PenaltyPerWrongAttempt
	return Attempt{Correct: true, Points: max(pts, p.MinPointsIfCorrect)}
}
