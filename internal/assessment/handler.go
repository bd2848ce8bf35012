package assessment

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"quiz-assessment/internal/auth"
	"quiz-assessment/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories()
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(categories)
}

func (h *Handler) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	popular := r.URL.Query().Get("popular") != ""
	var categoryID uint
	if raw := r.URL.Query().Get("category"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			http.Error(w, "Invalid category id", http.StatusBadRequest)
			return
		}
		categoryID = uint(id)
	}

	quizzes, err := h.service.ListQuizzes(categoryID, popular)
	if err != nil {
		writeError(w, err)
		return
	}

	summaries := make([]models.QuizSummaryDTO, len(quizzes))
	for i, q := range quizzes {
		summaries[i] = q.ToSummary()
	}
	json.NewEncoder(w).Encode(summaries)
}

func (h *Handler) GetQuizDetail(w http.ResponseWriter, r *http.Request) {
	quizID, ok := pathID(w, r)
	if !ok {
		return
	}
	userID, ok := r.Context().Value(auth.UserIDKey).(uint)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	detail, err := h.service.GetQuizDetail(quizID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(detail)
}

func (h *Handler) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	if _, ok := r.Context().Value(auth.UserIDKey).(uint); !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var quiz models.Quiz
	if err := json.NewDecoder(r.Body).Decode(&quiz); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.CreateQuiz(&quiz); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(quiz)
}

func (h *Handler) UpdateQuiz(w http.ResponseWriter, r *http.Request) {
	quizID, ok := pathID(w, r)
	if !ok {
		return
	}
	if _, ok := r.Context().Value(auth.UserIDKey).(uint); !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var quiz models.Quiz
	if err := json.NewDecoder(r.Body).Decode(&quiz); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	quiz.ID = quizID

	if err := h.service.UpdateQuiz(&quiz); err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(quiz)
}

func (h *Handler) StartAttempt(w http.ResponseWriter, r *http.Request) {
	quizID, ok := pathID(w, r)
	if !ok {
		return
	}
	userID, ok := r.Context().Value(auth.UserIDKey).(uint)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	form, err := h.service.StartAttempt(quizID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(form)
}

type submitRequest struct {
	AttemptID string        `json:"attempt_id"`
	Answers   RawSubmission `json:"answers"`
}

func (h *Handler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	quizID, ok := pathID(w, r)
	if !ok {
		return
	}
	userID, ok := r.Context().Value(auth.UserIDKey).(uint)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.AttemptID == "" {
		http.Error(w, "attempt_id is required", http.StatusBadRequest)
		return
	}

	result, err := h.service.SubmitAttempt(quizID, userID, req.AttemptID, req.Answers)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(result)
}

func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		http.Error(w, "Invalid quiz id", http.StatusBadRequest)
		return 0, false
	}
	return uint(id), true
}

// writeError maps engine errors onto HTTP responses: validation and
// configuration failures re-render as 400 payloads, unresolved identifiers as
// 404, degenerate attempts as 422. Nothing in this path is ever fatal.
func writeError(w http.ResponseWriter, err error) {
	var verrs ValidationErrors
	var ferr *FieldError
	var cerr *models.ConfigurationError

	switch {
	case errors.As(err, &verrs):
		writeFieldErrors(w, verrs)
	case errors.As(err, &ferr):
		writeFieldErrors(w, ValidationErrors{ferr})
	case errors.As(err, &cerr):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error":  "invalid quiz configuration",
			"field":  cerr.Field,
			"detail": cerr.Message,
		})
	case errors.Is(err, ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, ErrDegenerateAttempt):
		http.Error(w, "This quiz has no questions to score", http.StatusUnprocessableEntity)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeFieldErrors(w http.ResponseWriter, errs ValidationErrors) {
	type fieldMessage struct {
		QuestionID uint   `json:"question_id"`
		Message    string `json:"message"`
	}
	messages := make([]fieldMessage, len(errs))
	for i, fe := range errs {
		messages[i] = fieldMessage{QuestionID: fe.QuestionID, Message: fe.Message}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":  "validation failed",
		"fields": messages,
	})
}
