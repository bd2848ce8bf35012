package assessment

import (
	"log"
	"time"

	"github.com/google/uuid"

	"quiz-assessment/internal/models"
)

// Store is the persistence capability the service needs. *Repository is the
// production implementation; tests plug in an in-memory fake.
type Store interface {
	ListCategories() ([]models.Category, error)
	ListQuizzes(categoryID uint, popular bool) ([]models.Quiz, error)
	GetQuizzesByIDs(ids []uint) ([]models.Quiz, error)
	GetQuizByID(quizID uint) (*models.Quiz, error)
	GetQuizQuestions(quizID uint) ([]models.Question, error)
	CreateQuiz(quiz *models.Quiz) error
	UpdateQuiz(quiz *models.Quiz) error
	IncrementPopularity(quizID uint) error
	GetOrCreateResult(quizID, userID uint, score float64) (*models.Result, error)
	GetResults(quizID, userID uint) ([]models.Result, error)
	GetBestScore(quizID, userID uint) (float64, error)
}

// AttemptCache holds quiz snapshots, live attempts and the popularity ranking.
// *cache.RedisCache is the production implementation.
type AttemptCache interface {
	SetQuiz(quiz *models.Quiz) error
	GetQuiz(quizID uint) (*models.Quiz, error)
	InvalidateQuiz(quizID uint) error
	SaveAttempt(attempt *models.Attempt, ttl time.Duration) error
	GetAttempt(id string) (*models.Attempt, error)
	DeleteAttempt(id string) error
	BumpPopularity(quizID uint) error
	TopQuizIDs(limit int64) ([]uint, error)
}

// ResultFeed receives every recorded outcome for live subscribers.
type ResultFeed interface {
	Broadcast(msgType string, data interface{})
}

type Service struct {
	store   Store
	cache   AttemptCache
	feed    ResultFeed
	shuffle ShuffleFunc
}

func NewService(store Store, cache AttemptCache, feed ResultFeed) *Service {
	return &Service{
		store: store,
		cache: cache,
		feed:  feed,
	}
}

// AttemptForm is everything a client needs to present one attempt.
type AttemptForm struct {
	AttemptID         string  `json:"attempt_id,omitempty"`
	QuizID            uint    `json:"quiz_id"`
	DurationInMinutes uint    `json:"duration_in_minutes"`
	TotalQuestions    int     `json:"total_questions"`
	Fields            []Field `json:"fields"`
}

// QuizDetail is the quiz page payload: the quiz plus the user's result history
// and best score.
type QuizDetail struct {
	Quiz      models.QuizSummaryDTO `json:"quiz"`
	Results   []models.Result       `json:"results"`
	BestScore float64               `json:"best_score"`
	Passed    bool                  `json:"passed"`
}

// SubmissionResult is the scored outcome returned after a submission.
type SubmissionResult struct {
	Outcome
	TotalQuestions int            `json:"total_questions"`
	Result         *models.Result `json:"result"`
}

func (s *Service) ListCategories() ([]models.Category, error) {
	return s.store.ListCategories()
}

func (s *Service) ListQuizzes(categoryID uint, popular bool) ([]models.Quiz, error) {
	if popular && categoryID == 0 && s.cache != nil {
		if quizzes, err := s.popularFromCache(); err == nil && len(quizzes) > 0 {
			return quizzes, nil
		}
	}
	return s.store.ListQuizzes(categoryID, popular)
}

// popularFromCache resolves the ranking zset into quizzes, keeping zset order.
func (s *Service) popularFromCache() ([]models.Quiz, error) {
	ids, err := s.cache.TopQuizIDs(50)
	if err != nil || len(ids) == 0 {
		return nil, err
	}

	quizzes, err := s.store.GetQuizzesByIDs(ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]models.Quiz, len(quizzes))
	for _, q := range quizzes {
		byID[q.ID] = q
	}
	ordered := make([]models.Quiz, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			ordered = append(ordered, q)
		}
	}
	return ordered, nil
}

// GetQuiz is cache-first; the database is the source of truth on a miss.
func (s *Service) GetQuiz(quizID uint) (*models.Quiz, error) {
	if s.cache != nil {
		if quiz, err := s.cache.GetQuiz(quizID); err == nil {
			return quiz, nil
		}
	}

	quiz, err := s.store.GetQuizByID(quizID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetQuiz(quiz); err != nil {
			log.Printf("Error caching quiz %d: %v", quizID, err)
		}
	}
	return quiz, nil
}

func (s *Service) GetQuizDetail(quizID, userID uint) (*QuizDetail, error) {
	quiz, err := s.GetQuiz(quizID)
	if err != nil {
		return nil, err
	}

	results, err := s.store.GetResults(quizID, userID)
	if err != nil {
		return nil, err
	}
	best, err := s.store.GetBestScore(quizID, userID)
	if err != nil {
		return nil, err
	}

	return &QuizDetail{
		Quiz:      quiz.ToSummary(),
		Results:   results,
		BestScore: best,
		Passed:    best >= float64(quiz.PassPercentage),
	}, nil
}

// CreateQuiz validates the configuration before anything reaches storage.
// A ConfigurationError aborts the write entirely.
func (s *Service) CreateQuiz(quiz *models.Quiz) error {
	if err := quiz.Validate(); err != nil {
		return err
	}
	if err := s.store.CreateQuiz(quiz); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.SetQuiz(quiz); err != nil {
			log.Printf("Error caching quiz %d: %v", quiz.ID, err)
		}
	}
	return nil
}

// UpdateQuiz re-runs the configuration check; an invalid update never reaches
// storage and the stored row keeps its previous values.
func (s *Service) UpdateQuiz(quiz *models.Quiz) error {
	if err := quiz.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateQuiz(quiz); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.InvalidateQuiz(quiz.ID); err != nil {
			log.Printf("Error invalidating cached quiz %d: %v", quiz.ID, err)
		}
	}
	return nil
}

// StartAttempt draws the question subset for one attempt, stashes it in the
// cache for the quiz duration, and returns the form the client must fill in.
// A quiz with zero questions yields a form without an attempt ID.
func (s *Service) StartAttempt(quizID, userID uint) (*AttemptForm, error) {
	quiz, err := s.GetQuiz(quizID)
	if err != nil {
		return nil, err
	}

	questions, err := s.store.GetQuizQuestions(quizID)
	if err != nil {
		return nil, err
	}

	selected := SelectQuestions(questions, int(quiz.NumberOfQuestions), s.shuffle)
	form := &AttemptForm{
		QuizID:            quiz.ID,
		DurationInMinutes: quiz.DurationInMinutes,
		TotalQuestions:    len(selected),
		Fields:            orderedFields(selected),
	}
	if len(selected) == 0 {
		return form, nil
	}

	attempt := &models.Attempt{
		ID:          uuid.NewString(),
		QuizID:      quiz.ID,
		UserID:      userID,
		QuestionIDs: questionIDs(selected),
	}
	ttl := time.Duration(quiz.DurationInMinutes)*time.Minute + time.Minute
	if err := s.cache.SaveAttempt(attempt, ttl); err != nil {
		log.Printf("Error saving attempt %s: %v", attempt.ID, err)
		return nil, err
	}

	form.AttemptID = attempt.ID
	return form, nil
}

// SubmitAttempt validates and scores a submission against the exact question
// subset drawn at attempt start, then records the outcome. The attempt is
// consumed; a second submission for the same attempt ID is a not-found.
func (s *Service) SubmitAttempt(quizID, userID uint, attemptID string, raw RawSubmission) (*SubmissionResult, error) {
	attempt, err := s.cache.GetAttempt(attemptID)
	if err != nil || attempt.QuizID != quizID || attempt.UserID != userID {
		return nil, ErrNotFound
	}

	quiz, err := s.store.GetQuizByID(quizID)
	if err != nil {
		return nil, err
	}

	questions, err := s.store.GetQuizQuestions(quizID)
	if err != nil {
		return nil, err
	}
	selected := attemptQuestions(attempt, questions)

	submission, err := ValidateSubmission(BuildFields(selected), raw)
	if err != nil {
		return nil, err
	}

	outcome, err := Score(selected, submission, quiz.PassPercentage)
	if err != nil {
		return nil, err
	}

	result, err := s.RecordResult(quiz, userID, outcome.Percentage)
	if err != nil {
		return nil, err
	}

	if err := s.cache.DeleteAttempt(attemptID); err != nil {
		log.Printf("Error deleting attempt %s: %v", attemptID, err)
	}

	return &SubmissionResult{
		Outcome:        outcome,
		TotalQuestions: len(selected),
		Result:         result,
	}, nil
}

// RecordResult is the single side-effecting entry point of the engine: it
// increments quiz popularity by exactly one (attempts, not distinct results)
// and then get-or-creates the (quiz, user, score) result row. Callers invoke
// it once per logical submission.
func (s *Service) RecordResult(quiz *models.Quiz, userID uint, percentage float64) (*models.Result, error) {
	if err := s.store.IncrementPopularity(quiz.ID); err != nil {
		return nil, err
	}

	result, err := s.store.GetOrCreateResult(quiz.ID, userID, percentage)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.BumpPopularity(quiz.ID); err != nil {
			log.Printf("Error bumping cached popularity for quiz %d: %v", quiz.ID, err)
		}
		// The cached snapshot now carries a stale counter.
		if err := s.cache.InvalidateQuiz(quiz.ID); err != nil {
			log.Printf("Error invalidating cached quiz %d: %v", quiz.ID, err)
		}
	}
	if s.feed != nil {
		s.feed.Broadcast("result", map[string]interface{}{
			"quiz_id": quiz.ID,
			"user_id": userID,
			"score":   percentage,
		})
	}

	return result, nil
}

func orderedFields(questions []models.Question) []Field {
	fields := BuildFields(questions)
	ordered := make([]Field, 0, len(questions))
	for _, q := range questions {
		ordered = append(ordered, fields[q.ID])
	}
	return ordered
}

func questionIDs(questions []models.Question) []uint {
	ids := make([]uint, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	return ids
}

// attemptQuestions restores the drawn subset in attempt order. Questions
// removed from the catalog since the draw silently drop out.
func attemptQuestions(attempt *models.Attempt, questions []models.Question) []models.Question {
	byID := make(map[uint]models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	selected := make([]models.Question, 0, len(attempt.QuestionIDs))
	for _, id := range attempt.QuestionIDs {
		if q, ok := byID[id]; ok {
			selected = append(selected, q)
		}
	}
	return selected
}
