package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"quizmaker/internal/models"
)

// Memory keeps everything in process. Entities are copied on the way in and
// out so callers never share state with the store.
type Memory struct {
	mu sync.RWMutex

	users      []models.User
	categories []models.Category
	quizzes    []models.Quiz
	attempts   []models.Attempt

	nextQuizID     uint
	nextQuestionID uint
	nextOptionID   uint
	nextAttemptID  uint
	nextAnswerID   uint
}

func NewMemory() *Memory {
	return &Memory{
		nextQuizID:     1,
		nextQuestionID: 1,
		nextOptionID:   1,
		nextAttemptID:  1,
		nextAnswerID:   1,
	}
}

func (m *Memory) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.ID == user.ID || strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("user %s: %w", user.Email, ErrDuplicate)
		}
	}
	m.users = append(m.users, *user)
	return nil
}

func (m *Memory) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.ID == id {
			user := u
			return &user, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
}

func (m *Memory) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	email = strings.TrimSpace(email)
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			user := u
			return &user, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
}

func (m *Memory) ListUsers(_ context.Context) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]models.User(nil), m.users...), nil
}

func (m *Memory) SaveCategory(_ context.Context, category *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if category.ID == 0 {
		var maxID uint
		for _, c := range m.categories {
			if c.ID > maxID {
				maxID = c.ID
			}
		}
		category.ID = maxID + 1
	}
	for i, c := range m.categories {
		if c.ID == category.ID {
			m.categories[i] = *category
			return nil
		}
	}
	m.categories = append(m.categories, *category)
	return nil
}

func (m *Memory) GetCategory(_ context.Context, id uint) (*models.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.categories {
		if c.ID == id {
			category := c
			return &category, nil
		}
	}
	return nil, fmt.Errorf("category %d: %w", id, ErrNotFound)
}

func (m *Memory) ListCategories(_ context.Context) ([]models.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]models.Category(nil), m.categories...), nil
}

func (m *Memory) CreateQuiz(_ context.Context, quiz *models.Quiz) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	quiz.ID = m.nextQuizID
	m.nextQuizID++
	for i := range quiz.Questions {
		question := &quiz.Questions[i]
		question.ID = m.nextQuestionID
		m.nextQuestionID++
		question.QuizID = quiz.ID
		for j := range question.Options {
			question.Options[j].ID = m.nextOptionID
			m.nextOptionID++
			question.Options[j].QuestionID = question.ID
		}
	}
	m.quizzes = append(m.quizzes, cloneQuiz(*quiz))
	return nil
}

func (m *Memory) GetQuiz(_ context.Context, id uint) (*models.Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, q := range m.quizzes {
		if q.ID == id {
			quiz := cloneQuiz(q)
			quiz.SortQuestions()
			return &quiz, nil
		}
	}
	return nil, fmt.Errorf("quiz %d: %w", id, ErrNotFound)
}

func (m *Memory) ListQuizzes(_ context.Context) ([]models.Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	quizzes := make([]models.Quiz, len(m.quizzes))
	for i, q := range m.quizzes {
		quizzes[i] = cloneQuiz(q)
	}
	return quizzes, nil
}

func (m *Memory) CreateAttempt(_ context.Context, attempt *models.Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	attempt.ID = m.nextAttemptID
	m.nextAttemptID++
	m.assignAnswerIDs(attempt)
	m.attempts = append(m.attempts, cloneAttempt(*attempt))
	return nil
}

func (m *Memory) GetAttempt(_ context.Context, id uint) (*models.Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, a := range m.attempts {
		if a.ID == id {
			attempt := cloneAttempt(a)
			return &attempt, nil
		}
	}
	return nil, fmt.Errorf("attempt %d: %w", id, ErrNotFound)
}

func (m *Memory) SaveAttempt(_ context.Context, attempt *models.Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, a := range m.attempts {
		if a.ID == attempt.ID {
			m.assignAnswerIDs(attempt)
			m.attempts[i] = cloneAttempt(*attempt)
			return nil
		}
	}
	return fmt.Errorf("attempt %d: %w", attempt.ID, ErrNotFound)
}

func (m *Memory) CloseAttempt(_ context.Context, attempt *models.Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, a := range m.attempts {
		if a.ID != attempt.ID {
			continue
		}
		if !a.IsOpen() {
			return fmt.Errorf("attempt %d: %w", attempt.ID, ErrClosed)
		}
		m.assignAnswerIDs(attempt)
		m.attempts[i] = cloneAttempt(*attempt)
		return nil
	}
	return fmt.Errorf("attempt %d: %w", attempt.ID, ErrNotFound)
}

func (m *Memory) ListAttempts(_ context.Context, filter AttemptFilter) ([]models.Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var attempts []models.Attempt
	for _, a := range m.attempts {
		if filter.UserID != "" && a.UserID != filter.UserID {
			continue
		}
		if filter.QuizID != 0 && a.QuizID != filter.QuizID {
			continue
		}
		attempt := cloneAttempt(a)
		attempt.Answers = nil
		attempts = append(attempts, attempt)
	}
	return attempts, nil
}

func (m *Memory) GetAnswer(_ context.Context, id uint) (*models.Answer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, a := range m.attempts {
		for _, ans := range a.Answers {
			if ans.ID == id {
				answer := cloneAnswer(ans)
				return &answer, nil
			}
		}
	}
	return nil, fmt.Errorf("answer %d: %w", id, ErrNotFound)
}

func (m *Memory) ListPendingAnswers(_ context.Context) ([]models.Answer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var answers []models.Answer
	for _, a := range m.attempts {
		for _, ans := range a.Answers {
			if ans.ReviewStatus == models.ReviewPending {
				answers = append(answers, cloneAnswer(ans))
			}
		}
	}
	return answers, nil
}

func (m *Memory) Close() error { return nil }

// assignAnswerIDs must be called with the write lock held.
func (m *Memory) assignAnswerIDs(attempt *models.Attempt) {
	for i := range attempt.Answers {
		attempt.Answers[i].AttemptID = attempt.ID
		if attempt.Answers[i].ID == 0 {
			attempt.Answers[i].ID = m.nextAnswerID
			m.nextAnswerID++
		}
	}
}

func cloneQuiz(q models.Quiz) models.Quiz {
	if q.Questions == nil {
		return q
	}
	questions := make([]models.Question, len(q.Questions))
	for i, question := range q.Questions {
		question.Options = append([]models.Option(nil), question.Options...)
		questions[i] = question
	}
	q.Questions = questions
	return q
}

func cloneAttempt(a models.Attempt) models.Attempt {
	if a.CompletedAt != nil {
		t := *a.CompletedAt
		a.CompletedAt = &t
	}
	if a.ExpiredAt != nil {
		t := *a.ExpiredAt
		a.ExpiredAt = &t
	}
	if a.Answers != nil {
		answers := make([]models.Answer, len(a.Answers))
		for i, ans := range a.Answers {
			answers[i] = cloneAnswer(ans)
		}
		a.Answers = answers
	}
	return a
}

func cloneAnswer(a models.Answer) models.Answer {
	a.SelectedOptionIDs = append([]uint(nil), a.SelectedOptionIDs...)
	return a
}
