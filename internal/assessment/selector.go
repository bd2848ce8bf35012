package assessment

import (
	"math/rand"

	"quiz-assessment/internal/models"
)

// ShuffleFunc permutes n elements via swap. The default is the process-wide
// rand.Shuffle; tests inject a seeded rand.Rand's Shuffle for determinism.
type ShuffleFunc func(n int, swap func(i, j int))

// SelectQuestions draws the question subset for one attempt: a uniform random
// permutation of the quiz's questions truncated to min(limit, len(questions)).
// The input must already carry answers preloaded; the selector never fetches.
// An empty input yields an empty attempt, which the scorer later refuses.
func SelectQuestions(questions []models.Question, limit int, shuffle ShuffleFunc) []models.Question {
	if shuffle == nil {
		shuffle = rand.Shuffle
	}

	selected := make([]models.Question, len(questions))
	copy(selected, questions)
	shuffle(len(selected), func(i, j int) {
		selected[i], selected[j] = selected[j], selected[i]
	})

	if limit >= 0 && limit < len(selected) {
		selected = selected[:limit]
	}
	return selected
}
