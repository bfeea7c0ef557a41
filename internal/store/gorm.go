// internal/store/gorm.go
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"quizmaker/internal/models"
)

// Gorm persists the platform through gorm; it works on sqlite and postgres.
type Gorm struct {
	db  *gorm.DB
	log *slog.Logger
}

func NewGorm(db *gorm.DB, log *slog.Logger) *Gorm {
	return &Gorm{db: db, log: log}
}

// Migrate creates or updates the schema for every entity.
func (r *Gorm) Migrate() error {
	return r.db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Quiz{},
		&models.Question{},
		&models.Option{},
		&models.Attempt{},
		&models.Answer{},
	)
}

func (r *Gorm) CreateUser(ctx context.Context, user *models.User) error {
	var taken int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(user.Email))).
		Count(&taken).Error
	if err != nil {
		return err
	}
	if taken > 0 {
		return fmt.Errorf("user %s: %w", user.Email, ErrDuplicate)
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		r.log.Error("error creating user", "email", user.Email, "err", err)
		return err
	}
	return nil
}

func (r *Gorm) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, notFound(err, "user %s", id)
	}
	return &user, nil
}

func (r *Gorm) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	email = strings.ToLower(strings.TrimSpace(email))
	err := r.db.WithContext(ctx).Where("LOWER(email) = ?", email).First(&user).Error
	if err != nil {
		return nil, notFound(err, "user %s", email)
	}
	return &user, nil
}

func (r *Gorm) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Order("created_at asc").Find(&users).Error
	return users, err
}

func (r *Gorm) SaveCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(category).Error
}

func (r *Gorm) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, notFound(err, "category %d", id)
	}
	return &category, nil
}

func (r *Gorm) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).Order("id asc").Find(&categories).Error
	return categories, err
}

func (r *Gorm) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	err := r.db.WithContext(ctx).Create(quiz).Error
	if err != nil {
		r.log.Error("error creating quiz", "title", quiz.Title, "err", err)
		return err
	}
	r.log.Debug("created quiz", "quiz_id", quiz.ID, "questions", len(quiz.Questions))
	return nil
}

func (r *Gorm) GetQuiz(ctx context.Context, id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	err := r.preloadQuestions(r.db.WithContext(ctx)).First(&quiz, id).Error
	if err != nil {
		return nil, notFound(err, "quiz %d", id)
	}
	quiz.SortQuestions()
	return &quiz, nil
}

func (r *Gorm) ListQuizzes(ctx context.Context) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	err := r.preloadQuestions(r.db.WithContext(ctx)).Order("id asc").Find(&quizzes).Error
	return quizzes, err
}

func (r *Gorm) preloadQuestions(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("order_index asc") }).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB { return db.Order("order_index asc") })
}

func (r *Gorm) CreateAttempt(ctx context.Context, attempt *models.Attempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *Gorm) GetAttempt(ctx context.Context, id uint) (*models.Attempt, error) {
	var attempt models.Attempt
	err := r.db.WithContext(ctx).
		Preload("Answers", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		First(&attempt, id).Error
	if err != nil {
		return nil, notFound(err, "attempt %d", id)
	}
	return &attempt, nil
}

// CloseAttempt only touches rows that are still open, so concurrent
// closers cannot both win.
func (r *Gorm) CloseAttempt(ctx context.Context, attempt *models.Attempt) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{"score": attempt.Score}
		if attempt.CompletedAt != nil {
			updates["completed_at"] = *attempt.CompletedAt
		}
		if attempt.ExpiredAt != nil {
			updates["expired_at"] = *attempt.ExpiredAt
		}
		res := tx.Model(&models.Attempt{}).
			Where("id = ? AND completed_at IS NULL AND expired_at IS NULL", attempt.ID).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var exists int64
			if err := tx.Model(&models.Attempt{}).Where("id = ?", attempt.ID).Count(&exists).Error; err != nil {
				return err
			}
			if exists == 0 {
				return fmt.Errorf("attempt %d: %w", attempt.ID, ErrNotFound)
			}
			return fmt.Errorf("attempt %d: %w", attempt.ID, ErrClosed)
		}

		for i := range attempt.Answers {
			attempt.Answers[i].AttemptID = attempt.ID
		}
		if len(attempt.Answers) > 0 {
			if err := tx.Create(&attempt.Answers).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Gorm) SaveAttempt(ctx context.Context, attempt *models.Attempt) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Attempt{}).Where("id = ?", attempt.ID).
			Select("CompletedAt", "ExpiredAt", "Score", "MaxScore").
			Updates(attempt)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("attempt %d: %w", attempt.ID, ErrNotFound)
		}
		for i := range attempt.Answers {
			attempt.Answers[i].AttemptID = attempt.ID
			if err := tx.Save(&attempt.Answers[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Gorm) ListAttempts(ctx context.Context, filter AttemptFilter) ([]models.Attempt, error) {
	var attempts []models.Attempt
	q := r.db.WithContext(ctx).Order("id asc")
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.QuizID != 0 {
		q = q.Where("quiz_id = ?", filter.QuizID)
	}
	err := q.Find(&attempts).Error
	return attempts, err
}

func (r *Gorm) GetAnswer(ctx context.Context, id uint) (*models.Answer, error) {
	var answer models.Answer
	if err := r.db.WithContext(ctx).First(&answer, id).Error; err != nil {
		return nil, notFound(err, "answer %d", id)
	}
	return &answer, nil
}

func (r *Gorm) ListPendingAnswers(ctx context.Context) ([]models.Answer, error) {
	var answers []models.Answer
	err := r.db.WithContext(ctx).
		Where("review_status = ?", models.ReviewPending).
		Order("id asc").
		Find(&answers).Error
	return answers, err
}

func (r *Gorm) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
	}
	return err
}
