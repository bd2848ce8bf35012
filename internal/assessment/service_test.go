package assessment

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"quiz-assessment/internal/models"
)

/* ---------------- In-memory fakes satisfying Store, AttemptCache and ResultFeed ---------------- */

type fakeStore struct {
	quizzes    map[uint]*models.Quiz
	questions  map[uint][]models.Question
	results    []models.Result
	popularity map[uint]uint
	nextID     uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		quizzes:    map[uint]*models.Quiz{},
		questions:  map[uint][]models.Question{},
		popularity: map[uint]uint{},
		nextID:     1,
	}
}

func (s *fakeStore) ListCategories() ([]models.Category, error) { return nil, nil }

func (s *fakeStore) ListQuizzes(categoryID uint, popular bool) ([]models.Quiz, error) {
	var out []models.Quiz
	for _, q := range s.quizzes {
		out = append(out, *q)
	}
	return out, nil
}

func (s *fakeStore) GetQuizzesByIDs(ids []uint) ([]models.Quiz, error) {
	var out []models.Quiz
	for _, id := range ids {
		if q, ok := s.quizzes[id]; ok {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (s *fakeStore) GetQuizByID(quizID uint) (*models.Quiz, error) {
	q, ok := s.quizzes[quizID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *q
	return &copied, nil
}

func (s *fakeStore) GetQuizQuestions(quizID uint) ([]models.Question, error) {
	return s.questions[quizID], nil
}

func (s *fakeStore) CreateQuiz(quiz *models.Quiz) error {
	quiz.ID = s.nextID
	s.nextID++
	s.quizzes[quiz.ID] = quiz
	return nil
}

func (s *fakeStore) UpdateQuiz(quiz *models.Quiz) error {
	if _, ok := s.quizzes[quiz.ID]; !ok {
		return ErrNotFound
	}
	s.quizzes[quiz.ID] = quiz
	return nil
}

func (s *fakeStore) IncrementPopularity(quizID uint) error {
	if _, ok := s.quizzes[quizID]; !ok {
		return ErrNotFound
	}
	s.popularity[quizID]++
	return nil
}

func (s *fakeStore) GetOrCreateResult(quizID, userID uint, score float64) (*models.Result, error) {
	for i := range s.results {
		r := s.results[i]
		if r.QuizID == quizID && r.UserID == userID && r.Score == score {
			return &r, nil
		}
	}
	result := models.Result{
		ID:            uint(len(s.results) + 1),
		QuizID:        quizID,
		UserID:        userID,
		Score:         score,
		SubmittedDate: time.Now(),
	}
	s.results = append(s.results, result)
	return &result, nil
}

func (s *fakeStore) GetResults(quizID, userID uint) ([]models.Result, error) {
	var out []models.Result
	for _, r := range s.results {
		if r.QuizID == quizID && r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeStore) GetBestScore(quizID, userID uint) (float64, error) {
	best := 0.0
	for _, r := range s.results {
		if r.QuizID == quizID && r.UserID == userID && r.Score > best {
			best = r.Score
		}
	}
	return best, nil
}

type fakeCache struct {
	quizzes  map[uint]*models.Quiz
	attempts map[string]*models.Attempt
	bumps    map[uint]int
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		quizzes:  map[uint]*models.Quiz{},
		attempts: map[string]*models.Attempt{},
		bumps:    map[uint]int{},
	}
}

func (c *fakeCache) SetQuiz(quiz *models.Quiz) error {
	c.quizzes[quiz.ID] = quiz
	return nil
}

func (c *fakeCache) GetQuiz(quizID uint) (*models.Quiz, error) {
	q, ok := c.quizzes[quizID]
	if !ok {
		return nil, fmt.Errorf("cache miss for quiz %d", quizID)
	}
	return q, nil
}

func (c *fakeCache) InvalidateQuiz(quizID uint) error {
	delete(c.quizzes, quizID)
	return nil
}

func (c *fakeCache) SaveAttempt(attempt *models.Attempt, ttl time.Duration) error {
	c.attempts[attempt.ID] = attempt
	return nil
}

func (c *fakeCache) GetAttempt(id string) (*models.Attempt, error) {
	a, ok := c.attempts[id]
	if !ok {
		return nil, fmt.Errorf("attempt %q not found", id)
	}
	return a, nil
}

func (c *fakeCache) DeleteAttempt(id string) error {
	delete(c.attempts, id)
	return nil
}

func (c *fakeCache) BumpPopularity(quizID uint) error {
	c.bumps[quizID]++
	return nil
}

func (c *fakeCache) TopQuizIDs(limit int64) ([]uint, error) { return nil, nil }

type fakeFeed struct {
	events []string
}

func (f *fakeFeed) Broadcast(msgType string, data interface{}) {
	f.events = append(f.events, msgType)
}

/* ---------------- Fixtures ---------------- */

func seedQuiz(store *fakeStore) *models.Quiz {
	quiz := &models.Quiz{
		Name:              "Capitals",
		NumberOfQuestions: 2,
		DurationInMinutes: 10,
		PassPercentage:    80,
		DifficultyLevel:   models.DifficultyHard,
		CategoryID:        1,
	}
	store.CreateQuiz(quiz)
	store.questions[quiz.ID] = []models.Question{
		{
			ID: 1, QuizID: quiz.ID, Text: "Capital of Canada?", QuestionType: models.SingleChoice,
			Answers: []models.Answer{
				{ID: 101, QuestionID: 1, Text: "Ottawa", IsCorrect: true},
				{ID: 102, QuestionID: 1, Text: "Toronto"},
			},
		},
		{
			ID: 2, QuizID: quiz.ID, Text: "Capitals of Oceania?", QuestionType: models.MultiSelect,
			Answers: []models.Answer{
				{ID: 103, QuestionID: 2, Text: "Canberra", IsCorrect: true},
				{ID: 104, QuestionID: 2, Text: "Wellington", IsCorrect: true},
				{ID: 105, QuestionID: 2, Text: "Sydney"},
			},
		},
	}
	return quiz
}

func newTestService(store *fakeStore, cache *fakeCache, feed ResultFeed) *Service {
	s := NewService(store, cache, feed)
	s.shuffle = rand.New(rand.NewSource(1)).Shuffle
	return s
}

/* ---------------- Tests ---------------- */

func TestRecordResultPopularityAndIdempotentResult(t *testing.T) {
	store := newFakeStore()
	cache := newFakeCache()
	feed := &fakeFeed{}
	quiz := seedQuiz(store)
	service := newTestService(store, cache, feed)

	first, err := service.RecordResult(quiz, 7, 80.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := service.RecordResult(quiz, 7, 80.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Popularity counts attempts; results dedupe by (quiz, user, score).
	if store.popularity[quiz.ID] != 2 {
		t.Errorf("popularity = %d, want 2", store.popularity[quiz.ID])
	}
	if len(store.results) != 1 {
		t.Errorf("result rows = %d, want 1", len(store.results))
	}
	if first.ID != second.ID {
		t.Errorf("second record returned a different result row (%d vs %d)", first.ID, second.ID)
	}
	if len(feed.events) != 2 {
		t.Errorf("feed broadcasts = %d, want 2", len(feed.events))
	}
}

func TestRecordResultKeepsDistinctScores(t *testing.T) {
	store := newFakeStore()
	quiz := seedQuiz(store)
	service := newTestService(store, newFakeCache(), nil)

	service.RecordResult(quiz, 7, 50.0)
	service.RecordResult(quiz, 7, 100.0)

	if len(store.results) != 2 {
		t.Fatalf("result rows = %d, want 2 distinct scores", len(store.results))
	}
	best, _ := store.GetBestScore(quiz.ID, 7)
	if best != 100.0 {
		t.Errorf("best score = %v, want 100", best)
	}
}

func TestStartAttemptSelectsAndStores(t *testing.T) {
	store := newFakeStore()
	cache := newFakeCache()
	quiz := seedQuiz(store)
	service := newTestService(store, cache, nil)

	form, err := service.StartAttempt(quiz.ID, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if form.AttemptID == "" {
		t.Fatal("attempt id missing")
	}
	if form.TotalQuestions != 2 || len(form.Fields) != 2 {
		t.Fatalf("form has %d questions and %d fields, want 2 each", form.TotalQuestions, len(form.Fields))
	}

	attempt, err := cache.GetAttempt(form.AttemptID)
	if err != nil {
		t.Fatalf("attempt not stored: %v", err)
	}
	if attempt.QuizID != quiz.ID || attempt.UserID != 7 {
		t.Errorf("attempt stored with quiz %d user %d", attempt.QuizID, attempt.UserID)
	}
	if len(attempt.QuestionIDs) != len(form.Fields) {
		t.Errorf("attempt has %d question ids, form has %d fields", len(attempt.QuestionIDs), len(form.Fields))
	}
	for i, f := range form.Fields {
		if attempt.QuestionIDs[i] != f.QuestionID {
			t.Errorf("field %d out of attempt order: %d vs %d", i, f.QuestionID, attempt.QuestionIDs[i])
		}
	}
}

func TestStartAttemptZeroQuestions(t *testing.T) {
	store := newFakeStore()
	cache := newFakeCache()
	quiz := seedQuiz(store)
	store.questions[quiz.ID] = nil
	service := newTestService(store, cache, nil)

	form, err := service.StartAttempt(quiz.ID, 7)
	if err != nil {
		t.Fatalf("zero questions must not error at attempt start: %v", err)
	}
	if form.AttemptID != "" || form.TotalQuestions != 0 {
		t.Errorf("degenerate attempt produced %+v", form)
	}
	if len(cache.attempts) != 0 {
		t.Error("degenerate attempt must not be stored")
	}
}

func TestSubmitAttemptFullFlow(t *testing.T) {
	store := newFakeStore()
	cache := newFakeCache()
	quiz := seedQuiz(store)
	service := newTestService(store, cache, nil)

	form, err := service.StartAttempt(quiz.ID, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := service.SubmitAttempt(quiz.ID, 7, form.AttemptID, RawSubmission{
		"1": {"101"},
		"2": {"103", "104"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Score != 2 || result.Percentage != 100.0 || !result.Passed {
		t.Errorf("outcome = %+v", result.Outcome)
	}
	if store.popularity[quiz.ID] != 1 {
		t.Errorf("popularity = %d, want 1", store.popularity[quiz.ID])
	}
	if result.Result == nil || result.Result.Score != 100.0 {
		t.Errorf("recorded result = %+v", result.Result)
	}

	// The attempt is consumed; replaying it must fail.
	if _, err := service.SubmitAttempt(quiz.ID, 7, form.AttemptID, RawSubmission{
		"1": {"101"}, "2": {},
	}); !errors.Is(err, ErrNotFound) {
		t.Errorf("replayed attempt returned %v, want ErrNotFound", err)
	}
}

func TestSubmitAttemptValidationFailureHasNoSideEffects(t *testing.T) {
	store := newFakeStore()
	cache := newFakeCache()
	quiz := seedQuiz(store)
	service := newTestService(store, cache, nil)

	form, _ := service.StartAttempt(quiz.ID, 7)

	_, err := service.SubmitAttempt(quiz.ID, 7, form.AttemptID, RawSubmission{
		"2": {"103"}, // question 1 missing
	})
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("got %v, want ValidationErrors", err)
	}

	if store.popularity[quiz.ID] != 0 || len(store.results) != 0 {
		t.Error("failed validation must not record anything")
	}
	if _, err := cache.GetAttempt(form.AttemptID); err != nil {
		t.Error("failed validation must keep the attempt alive for a retry")
	}
}

func TestSubmitAttemptWrongUserOrQuiz(t *testing.T) {
	store := newFakeStore()
	cache := newFakeCache()
	quiz := seedQuiz(store)
	service := newTestService(store, cache, nil)

	form, _ := service.StartAttempt(quiz.ID, 7)

	if _, err := service.SubmitAttempt(quiz.ID, 8, form.AttemptID, RawSubmission{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign user got %v, want ErrNotFound", err)
	}
	if _, err := service.SubmitAttempt(quiz.ID+1, 7, form.AttemptID, RawSubmission{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign quiz got %v, want ErrNotFound", err)
	}
}

func TestCreateQuizRejectsBadConfiguration(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store, newFakeCache(), nil)

	quiz := &models.Quiz{
		Name:              "Broken",
		NumberOfQuestions: 5,
		DurationInMinutes: 10,
		PassPercentage:    50, // too low for HARD
		DifficultyLevel:   models.DifficultyHard,
	}

	err := service.CreateQuiz(quiz)
	var cerr *models.ConfigurationError
	if !errors.As(err, &cerr) {
		t.Fatalf("got %v, want ConfigurationError", err)
	}
	if len(store.quizzes) != 0 {
		t.Error("invalid configuration must never reach storage")
	}
}

func TestGetQuizDetailBestScore(t *testing.T) {
	store := newFakeStore()
	quiz := seedQuiz(store)
	service := newTestService(store, newFakeCache(), nil)

	service.RecordResult(quiz, 7, 60.0)
	service.RecordResult(quiz, 7, 85.0)

	detail, err := service.GetQuizDetail(quiz.ID, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.BestScore != 85.0 {
		t.Errorf("best score = %v, want 85", detail.BestScore)
	}
	if !detail.Passed {
		t.Error("best score above the pass percentage must report passed")
	}
	if len(detail.Results) != 2 {
		t.Errorf("result history has %d rows, want 2", len(detail.Results))
	}
}
