// internal/models/quiz.go
package models

import (
	"sort"
	"strings"
	"time"
)

const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

type QuestionType string

const (
	QuestionSingle      QuestionType = "single"
	QuestionMultiple    QuestionType = "multiple"
	QuestionTrueFalse   QuestionType = "true_false"
	QuestionShortAnswer QuestionType = "short_answer"
)

// ParseQuestionType accepts the stored names plus the 1-4 menu numbers.
func ParseQuestionType(s string) (QuestionType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", string(QuestionSingle):
		return QuestionSingle, true
	case "2", string(QuestionMultiple):
		return QuestionMultiple, true
	case "3", string(QuestionTrueFalse):
		return QuestionTrueFalse, true
	case "4", string(QuestionShortAnswer):
		return QuestionShortAnswer, true
	}
	return "", false
}

func (t QuestionType) String() string {
	switch t {
	case QuestionSingle:
		return "Multiple Choice (Single Answer)"
	case QuestionMultiple:
		return "Multiple Choice (Multiple Answers)"
	case QuestionTrueFalse:
		return "True/False"
	case QuestionShortAnswer:
		return "Short Answer"
	}
	return string(t)
}

type User struct {
	ID           string    `json:"id" gorm:"primaryKey;size:64"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         string    `json:"role" gorm:"not null;default:User"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// HasRole compares roles case-insensitively.
func (u User) HasRole(role string) bool {
	return strings.EqualFold(u.Role, role)
}

type Category struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
}

type Quiz struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description"`
	CategoryID  uint       `json:"category_id"`
	CreatorID   string     `json:"creator_id" gorm:"size:64"`
	IsPublic    bool       `json:"is_public"`
	IsActive    bool       `json:"is_active"`
	TimeLimit   int        `json:"time_limit"` // minutes, 0 means no limit
	CreatedAt   time.Time  `json:"created_at"`
	Questions   []Question `json:"questions,omitempty" gorm:"foreignKey:QuizID"`
}

// MaxScore sums the points of every question.
func (q *Quiz) MaxScore() int {
	total := 0
	for _, question := range q.Questions {
		total += question.Points
	}
	return total
}

// SortQuestions orders questions and their options by order index.
func (q *Quiz) SortQuestions() {
	sort.SliceStable(q.Questions, func(i, j int) bool {
		return q.Questions[i].OrderIndex < q.Questions[j].OrderIndex
	})
	for i := range q.Questions {
		options := q.Questions[i].Options
		sort.SliceStable(options, func(a, b int) bool {
			return options[a].OrderIndex < options[b].OrderIndex
		})
	}
}

func (q *Quiz) Question(id uint) (*Question, bool) {
	for i := range q.Questions {
		if q.Questions[i].ID == id {
			return &q.Questions[i], true
		}
	}
	return nil, false
}

type Question struct {
	ID         uint         `json:"id" gorm:"primaryKey"`
	QuizID     uint         `json:"quiz_id" gorm:"index"`
	Text       string       `json:"text" gorm:"not null"`
	Type       QuestionType `json:"type" gorm:"not null"`
	Points     int          `json:"points" gorm:"not null;default:1"`
	OrderIndex int          `json:"order_index"`
	Options    []Option     `json:"options,omitempty" gorm:"foreignKey:QuestionID"`
}

// CorrectOptionIDs returns the ids of the options flagged correct.
func (q *Question) CorrectOptionIDs() []uint {
	var ids []uint
	for _, opt := range q.Options {
		if opt.IsCorrect {
			ids = append(ids, opt.ID)
		}
	}
	return ids
}

type Option struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"index"`
	Text       string `json:"text" gorm:"not null"`
	IsCorrect  bool   `json:"is_correct"`
	OrderIndex int    `json:"order_index"`
}

type Attempt struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	QuizID      uint       `json:"quiz_id" gorm:"index"`
	UserID      string     `json:"user_id" gorm:"index;size:64"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ExpiredAt   *time.Time `json:"expired_at,omitempty"`
	Score       int        `json:"score"`
	MaxScore    int        `json:"max_score"`
	Answers     []Answer   `json:"answers,omitempty" gorm:"foreignKey:AttemptID"`
}

func (a *Attempt) Percentage() float64 {
	if a.MaxScore <= 0 {
		return 0
	}
	return float64(a.Score) / float64(a.MaxScore) * 100
}

func (a *Attempt) IsCompleted() bool { return a.CompletedAt != nil }

func (a *Attempt) IsExpired() bool { return a.ExpiredAt != nil }

// IsOpen reports whether answers can still be submitted.
func (a *Attempt) IsOpen() bool { return a.CompletedAt == nil && a.ExpiredAt == nil }

type ReviewStatus string

const (
	ReviewGraded  ReviewStatus = "graded"
	ReviewPending ReviewStatus = "pending"
)

type Answer struct {
	ID                uint         `json:"id" gorm:"primaryKey"`
	AttemptID         uint         `json:"attempt_id" gorm:"index"`
	QuestionID        uint         `json:"question_id"`
	SelectedOptionIDs []uint       `json:"selected_option_ids,omitempty" gorm:"serializer:json"`
	TextAnswer        string       `json:"text_answer,omitempty"`
	IsCorrect         bool         `json:"is_correct"`
	PointsAwarded     int          `json:"points_awarded"`
	ReviewStatus      ReviewStatus `json:"review_status" gorm:"default:graded"`
}

// AttemptSummary pairs a finished attempt with its quiz title for listings.
type AttemptSummary struct {
	Attempt   Attempt `json:"attempt"`
	QuizTitle string  `json:"quiz_title"`
}

type LeaderboardEntry struct {
	UserID     string  `json:"user_id"`
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
}
