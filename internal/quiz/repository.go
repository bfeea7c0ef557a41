// internal/quiz/repository.go
package quiz

import (
	"context"

	"quizmaker/internal/models"
	"quizmaker/internal/store"
)

// Repository is the part of the store the quiz service needs.
type Repository interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)

	GetCategory(ctx context.Context, id uint) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)

	CreateQuiz(ctx context.Context, quiz *models.Quiz) error
	GetQuiz(ctx context.Context, id uint) (*models.Quiz, error)
	ListQuizzes(ctx context.Context) ([]models.Quiz, error)

	CreateAttempt(ctx context.Context, attempt *models.Attempt) error
	GetAttempt(ctx context.Context, id uint) (*models.Attempt, error)
	CloseAttempt(ctx context.Context, attempt *models.Attempt) error
	SaveAttempt(ctx context.Context, attempt *models.Attempt) error
	ListAttempts(ctx context.Context, filter store.AttemptFilter) ([]models.Attempt, error)

	GetAnswer(ctx context.Context, id uint) (*models.Answer, error)
	ListPendingAnswers(ctx context.Context) ([]models.Answer, error)
}

// Cache speeds up quiz lookups and leaderboards. Implementations return
// an error wrapping ErrCacheMiss when a key is absent.
type Cache interface {
	GetQuiz(ctx context.Context, id uint) (*models.Quiz, error)
	SetQuiz(ctx context.Context, quiz *models.Quiz) error
	GetLeaderboard(ctx context.Context, quizID uint) ([]models.LeaderboardEntry, error)
	SetLeaderboard(ctx context.Context, quizID uint, entries []models.LeaderboardEntry) error
}

// Notifier is told about every completed attempt.
type Notifier interface {
	AttemptCompleted(event models.AttemptEvent)
}
