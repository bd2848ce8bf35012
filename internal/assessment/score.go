package assessment

import (
	"math"

	"quiz-assessment/internal/models"
)

// Outcome is the aggregate result of scoring one attempt.
type Outcome struct {
	Score             int     `json:"score"`
	Percentage        float64 `json:"percentage"`
	Passed            bool    `json:"passed"`
	SelectedAnswerIDs []uint  `json:"selected_answer_ids"`
}

// Score grades a normalized submission against the attempt's questions.
//
// SINGLE_CHOICE awards 1 point iff the one selected answer is correct.
// MULTI_SELECT awards 1 point iff at least one answer is selected and none of
// the selected answers is wrong; a correct-but-incomplete subset still scores.
// Partial credit is never given.
//
// Percentage is raw/total*100 rounded to 2 decimals, half away from zero.
// The pass threshold is inclusive: percentage == passPercentage passes.
// SelectedAnswerIDs lists every selection in question-processing order,
// deduplicated within a question only.
func Score(questions []models.Question, submission Submission, passPercentage uint) (Outcome, error) {
	total := len(questions)
	if total == 0 {
		return Outcome{}, ErrDegenerateAttempt
	}

	score := 0
	selectedIDs := make([]uint, 0, total)

	for _, q := range questions {
		selected := submission[q.ID]
		selectedIDs = append(selectedIDs, selected...)

		switch q.QuestionType {
		case models.MultiSelect:
			if len(selected) > 0 && allCorrect(q, selected) {
				score++
			}
		default: // SINGLE_CHOICE
			if len(selected) == 1 && isCorrect(q, selected[0]) {
				score++
			}
		}
	}

	percentage := math.Round(float64(score)/float64(total)*100*100) / 100
	return Outcome{
		Score:             score,
		Percentage:        percentage,
		Passed:            percentage >= float64(passPercentage),
		SelectedAnswerIDs: selectedIDs,
	}, nil
}

func isCorrect(q models.Question, answerID uint) bool {
	for _, a := range q.Answers {
		if a.ID == answerID {
			return a.IsCorrect
		}
	}
	return false
}

func allCorrect(q models.Question, answerIDs []uint) bool {
	for _, id := range answerIDs {
		if !isCorrect(q, id) {
			return false
		}
	}
	return true
}
