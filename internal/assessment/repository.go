package assessment

import (
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"quiz-assessment/internal/models"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListCategories() ([]models.Category, error) {
	var categories []models.Category
	err := r.db.Order("name asc").Find(&categories).Error
	if err != nil {
		log.Printf("Error listing categories: %v", err)
		return nil, err
	}
	return categories, nil
}

func (r *Repository) ListQuizzes(categoryID uint, popular bool) ([]models.Quiz, error) {
	query := r.db.Preload("Category")
	if categoryID != 0 {
		query = query.Where("category_id = ?", categoryID)
	}
	if popular {
		query = query.Order("popularity desc")
	} else {
		query = query.Order("id asc")
	}

	var quizzes []models.Quiz
	err := query.Find(&quizzes).Error
	if err != nil {
		log.Printf("Error listing quizzes: %v", err)
		return nil, err
	}
	return quizzes, nil
}

func (r *Repository) GetQuizzesByIDs(ids []uint) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	err := r.db.Preload("Category").Where("id IN ?", ids).Find(&quizzes).Error
	if err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (r *Repository) GetQuizByID(quizID uint) (*models.Quiz, error) {
	var quiz models.Quiz
	err := r.db.First(&quiz, quizID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		log.Printf("Error getting quiz %d: %v", quizID, err)
		return nil, err
	}
	return &quiz, nil
}

// GetQuizQuestions loads every question of the quiz with its answers attached
// in one batched query. Found-with-zero-questions is a valid, non-error outcome.
func (r *Repository) GetQuizQuestions(quizID uint) ([]models.Question, error) {
	var questions []models.Question
	err := r.db.Where("quiz_id = ?", quizID).
		Order("id asc").
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("answers.id asc")
		}).
		Find(&questions).Error
	if err != nil {
		log.Printf("Error getting questions for quiz %d: %v", quizID, err)
		return nil, err
	}
	return questions, nil
}

func (r *Repository) CreateQuiz(quiz *models.Quiz) error {
	err := r.db.Create(quiz).Error
	if err != nil {
		log.Printf("Error creating quiz: %v", err)
		return err
	}
	return nil
}

func (r *Repository) UpdateQuiz(quiz *models.Quiz) error {
	err := r.db.Save(quiz).Error
	if err != nil {
		log.Printf("Error updating quiz %d: %v", quiz.ID, err)
		return err
	}
	return nil
}

// IncrementPopularity bumps the attempt counter in a single UPDATE so that
// concurrent submissions never lose an increment.
func (r *Repository) IncrementPopularity(quizID uint) error {
	result := r.db.Model(&models.Quiz{}).
		Where("id = ?", quizID).
		UpdateColumn("popularity", gorm.Expr("popularity + 1"))
	if result.Error != nil {
		log.Printf("Error incrementing popularity for quiz %d: %v", quizID, result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetOrCreateResult returns the existing result for the (quiz, user, score)
// triple or inserts a new one. A duplicate-insert race loses to the unique
// index and resolves by fetching the winning row.
func (r *Repository) GetOrCreateResult(quizID, userID uint, score float64) (*models.Result, error) {
	var result models.Result
	err := r.db.Where("quiz_id = ? AND user_id = ? AND score = ?", quizID, userID, score).
		First(&result).Error
	if err == nil {
		return &result, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	result = models.Result{
		QuizID:        quizID,
		UserID:        userID,
		Score:         score,
		SubmittedDate: time.Now(),
	}
	if createErr := r.db.Create(&result).Error; createErr != nil {
		var existing models.Result
		if fetchErr := r.db.Where("quiz_id = ? AND user_id = ? AND score = ?", quizID, userID, score).
			First(&existing).Error; fetchErr == nil {
			return &existing, nil
		}
		log.Printf("Error creating result for quiz %d user %d: %v", quizID, userID, createErr)
		return nil, createErr
	}
	return &result, nil
}

func (r *Repository) GetResults(quizID, userID uint) ([]models.Result, error) {
	var results []models.Result
	err := r.db.Where("quiz_id = ? AND user_id = ?", quizID, userID).
		Order("submitted_date desc").
		Find(&results).Error
	if err != nil {
		log.Printf("Error getting results for quiz %d user %d: %v", quizID, userID, err)
		return nil, err
	}
	return results, nil
}

func (r *Repository) GetBestScore(quizID, userID uint) (float64, error) {
	var best float64
	err := r.db.Raw(`
        SELECT COALESCE(MAX(score), 0)
        FROM results
        WHERE quiz_id = ? AND user_id = ?
    `, quizID, userID).Scan(&best).Error
	if err != nil {
		log.Printf("Error getting best score for quiz %d user %d: %v", quizID, userID, err)
		return 0, err
	}
	return best, nil
}
