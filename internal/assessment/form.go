package assessment

import "quiz-assessment/internal/models"

type FieldKind string

const (
	FieldSingle FieldKind = "single" // exactly one selection required
	FieldMulti  FieldKind = "multi"  // zero or more selections allowed
)

// Field is the expected input for one question of an attempt: the label shown
// to the user, the candidate choices in catalog order, and the selection rule.
// It is metadata only and carries no correctness information.
type Field struct {
	QuestionID uint               `json:"question_id"`
	Label      string             `json:"label"`
	Kind       FieldKind          `json:"kind"`
	Choices    []models.ChoiceDTO `json:"choices"`
}

// BuildFields maps each selected question to its field spec. Choices keep the
// catalog order; only the question order of the attempt is randomized.
func BuildFields(questions []models.Question) map[uint]Field {
	fields := make(map[uint]Field, len(questions))
	for _, q := range questions {
		fields[q.ID] = Field{
			QuestionID: q.ID,
			Label:      q.Text,
			Kind:       kindFor(q.QuestionType),
			Choices:    q.Choices(),
		}
	}
	return fields
}

func kindFor(t models.QuestionType) FieldKind {
	if t == models.MultiSelect {
		return FieldMulti
	}
	return FieldSingle
}
