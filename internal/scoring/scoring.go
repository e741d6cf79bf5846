package scoring

import (
	"math"

	"studyquiz-service/internal/models"
	"studyquiz-service/internal/session"
)

// Score derives the result of a finished session. A question counts as
// correct iff its stored answer is non-nil and equals the resolved correct
// index; unresolved questions (index NotFound) can never count as correct
// but are tallied separately as a data-quality metric.
func Score(s *session.Session) (models.ScoreResult, error) {
	if s.Status() != session.StatusFinished {
		return models.ScoreResult{}, session.ErrNotFinished
	}
	result := compute(s.Questions(), s.Answers())
	result.ElapsedSeconds = s.ElapsedSeconds()
	result.TimedOut = s.TimedOut()
	return result, nil
}

func compute(questions []models.Question, answers []*int) models.ScoreResult {
	var correct, wrong, unresolved int
	for i, q := range questions {
		if q.Unresolved() {
			unresolved++
		}
		a := answers[i]
		if a == nil {
			continue
		}
		if !q.Unresolved() && *a == q.CorrectChoiceIndex {
			correct++
		} else {
			wrong++
		}
	}

	total := len(questions)
	rate := 0
	if total > 0 {
		rate = int(math.Round(100 * float64(correct) / float64(total)))
	}

	// The domain-standard net formula: a wrong answer erases a quarter of a
	// correct one. Kept fractional, floored at zero.
	net := float64(correct) - float64(wrong)/4
	if net < 0 {
		net = 0
	}
	net = math.Round(net*100) / 100

	return models.ScoreResult{
		TotalQuestions:     total,
		CorrectCount:       correct,
		WrongCount:         wrong,
		UnansweredCount:    total - correct - wrong,
		UnresolvedCount:    unresolved,
		SuccessRatePercent: rate,
		Net:                net,
	}
}
