package quiz

import (
	"errors"
	"fmt"
	"strings"

	"quizmaker/internal/store"
)

var (
	ErrQuizNotFound    = fmt.Errorf("quiz %w", store.ErrNotFound)
	ErrAttemptNotFound = fmt.Errorf("attempt %w", store.ErrNotFound)
	ErrAnswerNotFound  = fmt.Errorf("answer %w", store.ErrNotFound)
	ErrNoQuestions     = errors.New("quiz has no questions")
	ErrAttemptClosed   = errors.New("attempt already submitted or expired")
	ErrNotPending      = errors.New("answer is not waiting for review")
	ErrForbidden       = errors.New("forbidden")
	ErrCacheMiss       = errors.New("cache miss")
	ErrInvalidQuiz     = errors.New("invalid quiz")
)

// ValidationError lists every problem found in a quiz definition.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid quiz: " + strings.Join(e.Problems, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidQuiz }
