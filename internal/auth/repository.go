// internal/auth/repository.go
package auth

import (
	"context"

	"quizmaker/internal/models"
)

// Repository is the slice of the store the auth service reads and writes.
// store.Memory and store.Gorm both satisfy it.
type Repository interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
}
