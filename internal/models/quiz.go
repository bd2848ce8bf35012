package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "EASY"
	DifficultyMedium DifficultyLevel = "MEDIUM"
	DifficultyHard   DifficultyLevel = "HARD"
)

type QuestionType string

const (
	SingleChoice QuestionType = "SINGLE_CHOICE" // radio, exactly one answer
	MultiSelect  QuestionType = "MULTI_SELECT"  // checkbox, zero or more answers
)

type Category struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `json:"name" gorm:"not null"`
	Quizzes   []Quiz    `json:"quizzes,omitempty" gorm:"foreignKey:CategoryID"`
}

type Quiz struct {
	ID                uint            `json:"id" gorm:"primaryKey"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	DeletedAt         gorm.DeletedAt  `json:"deleted_at" gorm:"index"`
	Name              string          `json:"name" gorm:"not null"`
	NumberOfQuestions uint            `json:"number_of_questions"`
	DurationInMinutes uint            `json:"duration_in_minutes"`
	PassPercentage    uint            `json:"pass_percentage"`
	Popularity        uint            `json:"popularity" gorm:"not null;default:0;index"`
	DifficultyLevel   DifficultyLevel `json:"difficulty_level" gorm:"size:6"`
	CategoryID        uint            `json:"category_id"`
	Category          *Category       `json:"category,omitempty"`
	Questions         []Question      `json:"questions,omitempty" gorm:"foreignKey:QuizID"`
}

type Question struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"deleted_at" gorm:"index"`
	QuizID       uint           `json:"quiz_id"`
	Text         string         `json:"text" gorm:"not null"`
	QuestionType QuestionType   `json:"question_type" gorm:"size:16;default:SINGLE_CHOICE"`
	Answers      []Answer       `json:"answers,omitempty" gorm:"foreignKey:QuestionID"`
}

type Answer struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"deleted_at" gorm:"index"`
	QuestionID uint           `json:"question_id" gorm:"uniqueIndex:idx_answers_question_text"`
	Text       string         `json:"text" gorm:"not null;uniqueIndex:idx_answers_question_text"`
	IsCorrect  bool           `json:"is_correct" gorm:"not null;default:false"`
}

// Result records one percentage a user achieved on a quiz. The unique index on
// (quiz, user, score) backs the get-or-create: every distinct percentage is kept
// once, and re-submitting the same one never duplicates the row.
type Result struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	QuizID        uint      `json:"quiz_id" gorm:"not null;uniqueIndex:idx_results_quiz_user_score"`
	UserID        uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_results_quiz_user_score"`
	Score         float64   `json:"score" gorm:"not null;uniqueIndex:idx_results_quiz_user_score"`
	SubmittedDate time.Time `json:"submitted_date"`
}

// Attempt is one user's pass through a selected question subset. It is never
// persisted as a table; it lives in the cache for the quiz duration and is
// discarded after scoring.
type Attempt struct {
	ID          string `json:"id"`
	QuizID      uint   `json:"quiz_id"`
	UserID      uint   `json:"user_id"`
	QuestionIDs []uint `json:"question_ids"`
}

// ConfigurationError reports a quiz whose settings violate the difficulty rules.
// It aborts the write that raised it; the value is never silently corrected.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the quiz configuration before it is allowed to reach storage.
// Callers must invoke it on every create and update.
func (q *Quiz) Validate() error {
	if q.NumberOfQuestions < 2 || q.NumberOfQuestions > 60 {
		return &ConfigurationError{Field: "number_of_questions", Message: "must be between 2 and 60"}
	}
	if q.DurationInMinutes < 1 || q.DurationInMinutes > 60 {
		return &ConfigurationError{Field: "duration_in_minutes", Message: "must be between 1 and 60"}
	}
	if q.PassPercentage < 40 || q.PassPercentage > 90 {
		return &ConfigurationError{Field: "pass_percentage", Message: "must be between 40 and 90"}
	}

	switch q.DifficultyLevel {
	case DifficultyHard:
		if q.PassPercentage < 75 {
			return &ConfigurationError{Field: "pass_percentage", Message: "for hard quizzes, the pass percentage cannot be less than 75"}
		}
	case DifficultyMedium:
		if q.PassPercentage < 50 || q.PassPercentage > 70 {
			return &ConfigurationError{Field: "pass_percentage", Message: "for medium quizzes, the pass percentage cannot be less than 50 and greater than 70"}
		}
	case DifficultyEasy:
		if q.PassPercentage > 60 {
			return &ConfigurationError{Field: "pass_percentage", Message: "for easy quizzes, the pass percentage cannot be greater than 60"}
		}
	default:
		return &ConfigurationError{Field: "difficulty_level", Message: "must be one of EASY, MEDIUM, HARD"}
	}

	return nil
}
