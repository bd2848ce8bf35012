package models

type ChoiceDTO struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

// Choices returns the question's answers as (id, text) pairs in catalog order.
// Correctness flags never leave through this path.
func (q Question) Choices() []ChoiceDTO {
	choices := make([]ChoiceDTO, len(q.Answers))
	for i, a := range q.Answers {
		choices[i] = ChoiceDTO{ID: a.ID, Text: a.Text}
	}
	return choices
}

type QuizSummaryDTO struct {
	ID                uint            `json:"id"`
	Name              string          `json:"name"`
	NumberOfQuestions uint            `json:"number_of_questions"`
	DurationInMinutes uint            `json:"duration_in_minutes"`
	PassPercentage    uint            `json:"pass_percentage"`
	Popularity        uint            `json:"popularity"`
	DifficultyLevel   DifficultyLevel `json:"difficulty_level"`
	CategoryID        uint            `json:"category_id"`
	CategoryName      string          `json:"category_name,omitempty"`
}

func (q Quiz) ToSummary() QuizSummaryDTO {
	dto := QuizSummaryDTO{
		ID:                q.ID,
		Name:              q.Name,
		NumberOfQuestions: q.NumberOfQuestions,
		DurationInMinutes: q.DurationInMinutes,
		PassPercentage:    q.PassPercentage,
		Popularity:        q.Popularity,
		DifficultyLevel:   q.DifficultyLevel,
		CategoryID:        q.CategoryID,
	}
	if q.Category != nil {
		dto.CategoryName = q.Category.Name
	}
	return dto
}
