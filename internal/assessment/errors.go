package assessment

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound covers unresolved quiz, question, answer and attempt identifiers.
	ErrNotFound = errors.New("not found")

	// ErrDegenerateAttempt means an attempt carries zero questions and cannot
	// be scored. Callers render an empty state, never a crash.
	ErrDegenerateAttempt = errors.New("attempt has no questions to score")
)

// FieldError names the question whose submitted answer is missing or malformed.
type FieldError struct {
	QuestionID uint
	Message    string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("question %d: %s", e.QuestionID, e.Message)
}

// ValidationErrors collects every field failure of one submission so the caller
// can re-render the form with per-question messages.
type ValidationErrors []*FieldError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return strings.Join(msgs, "; ")
}
