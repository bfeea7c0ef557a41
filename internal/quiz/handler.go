// internal/quiz/handler.go
package quiz

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"quizmaker/internal/auth"
	"quizmaker/internal/models"
	"quizmaker/internal/store"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Mount registers the player routes on api and the admin routes on admin.
// Both routers must already carry the JWT middleware; requireAdmin guards
// quiz creation, which shares its path with the public listing.
func (h *Handler) Mount(api, admin *mux.Router, requireAdmin func(http.Handler) http.Handler) {
	api.HandleFunc("/quizzes", h.ListQuizzes).Methods("GET")
	api.Handle("/quizzes", requireAdmin(http.HandlerFunc(h.CreateQuiz))).Methods("POST")
	api.HandleFunc("/quizzes/{id:[0-9]+}", h.GetQuiz).Methods("GET")
	api.HandleFunc("/quizzes/{id:[0-9]+}/attempts", h.StartAttempt).Methods("POST")
	api.HandleFunc("/quizzes/{id:[0-9]+}/leaderboard", h.Leaderboard).Methods("GET")
	api.HandleFunc("/attempts/{id:[0-9]+}/submit", h.SubmitAnswers).Methods("POST")
	api.HandleFunc("/me/attempts", h.MyAttempts).Methods("GET")

	admin.HandleFunc("/stats", h.Stats).Methods("GET")
	admin.HandleFunc("/reviews", h.PendingReviews).Methods("GET")
	admin.HandleFunc("/answers/{id:[0-9]+}/review", h.ReviewAnswer).Methods("POST")
}

type startAttemptResponse struct {
	Attempt *models.Attempt `json:"attempt"`
	Quiz    models.QuizDTO  `json:"quiz"`
}

type submitRequest struct {
	Answers []models.AnswerInput `json:"answers"`
}

type reviewRequest struct {
	Correct bool `json:"correct"`
}

func (h *Handler) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.service.ListAvailable(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	dtos := make([]models.QuizDTO, len(quizzes))
	for i, q := range quizzes {
		dtos[i] = q.ToDTO(false, false)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	quiz, err := h.service.GetQuiz(r.Context(), pathID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	admin := user.HasRole(models.RoleAdmin)
	if !admin && !(quiz.IsActive && quiz.IsPublic) {
		writeError(w, ErrQuizNotFound)
		return
	}
	writeJSON(w, http.StatusOK, quiz.ToDTO(true, admin))
}

func (h *Handler) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var quiz models.Quiz
	if err := json.NewDecoder(r.Body).Decode(&quiz); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	quiz.CreatorID = user.ID

	if err := h.service.CreateQuiz(r.Context(), &quiz); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz.ToDTO(true, true))
}

func (h *Handler) StartAttempt(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	quiz, err := h.service.GetQuiz(r.Context(), pathID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if !user.HasRole(models.RoleAdmin) && !(quiz.IsActive && quiz.IsPublic) {
		writeError(w, ErrQuizNotFound)
		return
	}

	attempt, err := h.service.StartAttempt(r.Context(), quiz.ID, user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, startAttemptResponse{Attempt: attempt, Quiz: quiz.ToDTO(true, false)})
}

func (h *Handler) SubmitAnswers(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	attempt, err := h.service.GetAttempt(r.Context(), pathID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if attempt.UserID != user.ID {
		writeError(w, ErrForbidden)
		return
	}

	result, err := h.service.SubmitAnswers(r.Context(), attempt.ID, req.Answers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) MyAttempts(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	attempts, err := h.service.ListUserAttempts(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, attempts)
}

func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	quiz, err := h.service.GetQuiz(r.Context(), pathID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if !user.HasRole(models.RoleAdmin) && !(quiz.IsActive && quiz.IsPublic) {
		writeError(w, ErrQuizNotFound)
		return
	}

	entries, err := h.service.Leaderboard(r.Context(), quiz.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) PendingReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.service.PendingReviews(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (h *Handler) ReviewAnswer(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	answer, err := h.service.ReviewAnswer(r.Context(), pathID(r), req.Correct)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

// pathID relies on the route pattern to guarantee digits.
func pathID(r *http.Request) uint {
	id, _ := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	return uint(id)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string][]string{"errors": verr.Problems})
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, ErrAttemptClosed), errors.Is(err, ErrNotPending):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrNoQuestions):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}
