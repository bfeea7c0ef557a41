// Package store holds every entity of the quiz platform behind one
// repository interface. Implementations are constructed explicitly by the
// entry point and handed to the services.
package store

import (
	"context"
	"errors"

	"quizmaker/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
	ErrClosed    = errors.New("already closed")
)

// AttemptFilter narrows ListAttempts. Zero values match everything.
type AttemptFilter struct {
	UserID string
	QuizID uint
}

type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// GetUserByEmail matches case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)

	// SaveCategory inserts or replaces the category with the same id.
	SaveCategory(ctx context.Context, category *models.Category) error
	GetCategory(ctx context.Context, id uint) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)

	// CreateQuiz stores the quiz with its questions and options and
	// assigns ids to all of them.
	CreateQuiz(ctx context.Context, quiz *models.Quiz) error
	// GetQuiz returns the quiz with questions and options sorted by order index.
	GetQuiz(ctx context.Context, id uint) (*models.Quiz, error)
	// ListQuizzes returns every quiz with its questions in insertion order.
	ListQuizzes(ctx context.Context) ([]models.Quiz, error)

	CreateAttempt(ctx context.Context, attempt *models.Attempt) error
	// GetAttempt returns the attempt with its answers.
	GetAttempt(ctx context.Context, id uint) (*models.Attempt, error)
	// CloseAttempt completes or expires an open attempt and inserts its
	// answers in one step. It fails with ErrClosed when the attempt was
	// already completed or expired.
	CloseAttempt(ctx context.Context, attempt *models.Attempt) error
	// SaveAttempt updates the attempt and upserts its answers by id; answers
	// without an id are inserted and receive one.
	SaveAttempt(ctx context.Context, attempt *models.Attempt) error
	// ListAttempts returns attempts without their answers.
	ListAttempts(ctx context.Context, filter AttemptFilter) ([]models.Attempt, error)

	GetAnswer(ctx context.Context, id uint) (*models.Answer, error)
	ListPendingAnswers(ctx context.Context) ([]models.Answer, error)

	Close() error
}
