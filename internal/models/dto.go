// internal/models/dto.go
package models

import "time"

type RegisterRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AnswerInput is one answer as collected from a player.
type AnswerInput struct {
	QuestionID        uint   `json:"question_id"`
	SelectedOptionIDs []uint `json:"selected_option_ids,omitempty"`
	TextAnswer        string `json:"text_answer,omitempty"`
}

type QuizDTO struct {
	ID          uint          `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	CategoryID  uint          `json:"category_id"`
	TimeLimit   int           `json:"time_limit"`
	MaxScore    int           `json:"max_score"`
	Questions   []QuestionDTO `json:"questions,omitempty"`
}

type QuestionDTO struct {
	ID         uint         `json:"id"`
	Text       string       `json:"text"`
	Type       QuestionType `json:"type"`
	Points     int          `json:"points"`
	OrderIndex int          `json:"order_index"`
	Options    []OptionDTO  `json:"options"`
}

type OptionDTO struct {
	ID        uint   `json:"id"`
	Text      string `json:"text"`
	IsCorrect *bool  `json:"is_correct,omitempty"` // admins only
}

func (q Quiz) ToDTO(withQuestions, reveal bool) QuizDTO {
	dto := QuizDTO{
		ID:          q.ID,
		Title:       q.Title,
		Description: q.Description,
		CategoryID:  q.CategoryID,
		TimeLimit:   q.TimeLimit,
		MaxScore:    q.MaxScore(),
	}
	if !withQuestions {
		return dto
	}
	dto.Questions = make([]QuestionDTO, len(q.Questions))
	for i, question := range q.Questions {
		dto.Questions[i] = question.ToDTO(reveal)
	}
	return dto
}

func (q Question) ToDTO(reveal bool) QuestionDTO {
	optionDTOs := make([]OptionDTO, len(q.Options))
	for i, opt := range q.Options {
		optionDTOs[i] = OptionDTO{ID: opt.ID, Text: opt.Text}
		if reveal {
			correct := opt.IsCorrect
			optionDTOs[i].IsCorrect = &correct
		}
	}
	return QuestionDTO{
		ID:         q.ID,
		Text:       q.Text,
		Type:       q.Type,
		Points:     q.Points,
		OrderIndex: q.OrderIndex,
		Options:    optionDTOs,
	}
}

type AttemptResult struct {
	AttemptID   uint      `json:"attempt_id"`
	QuizID      uint      `json:"quiz_id"`
	Score       int       `json:"score"`
	MaxScore    int       `json:"max_score"`
	Percentage  float64   `json:"percentage"`
	Rating      string    `json:"rating"`
	CompletedAt time.Time `json:"completed_at"`
	Answers     []Answer  `json:"answers"`
}

// SystemTotals are the raw entity counts shown on the admin panel.
type SystemTotals struct {
	Users            int `json:"users"`
	Quizzes          int `json:"quizzes"`
	Questions        int `json:"questions"`
	Attempts         int `json:"attempts"`
	ActiveCategories int `json:"active_categories"`
}

type QuizStats struct {
	QuizID         uint            `json:"quiz_id"`
	Title          string          `json:"title"`
	Attempts       int             `json:"attempts"`
	Average        float64         `json:"average"`
	Highest        float64         `json:"highest"`
	Lowest         float64         `json:"lowest"`
	RecentAttempts []AttemptByUser `json:"recent_attempts"`
}

type AttemptByUser struct {
	UserName    string    `json:"user_name"`
	Score       int       `json:"score"`
	MaxScore    int       `json:"max_score"`
	Percentage  float64   `json:"percentage"`
	CompletedAt time.Time `json:"completed_at"`
}

type Stats struct {
	Totals            SystemTotals `json:"totals"`
	CompletedAttempts int          `json:"completed_attempts"`
	ExpiredAttempts   int          `json:"expired_attempts"`
	PerQuiz           []QuizStats  `json:"per_quiz"`
	OverallAverage    float64      `json:"overall_average"`
	TotalPoints       int          `json:"total_points"`
	MostActiveUser    string       `json:"most_active_user"`
	MostPopularQuiz   string       `json:"most_popular_quiz"`
}

// PendingReview is a short answer waiting for an admin decision.
type PendingReview struct {
	Answer       Answer `json:"answer"`
	QuestionText string `json:"question_text"`
	QuizTitle    string `json:"quiz_title"`
	UserName     string `json:"user_name"`
	Points       int    `json:"points"`
}

// AttemptEvent is published when an attempt is submitted.
type AttemptEvent struct {
	AttemptID   uint      `json:"attempt_id"`
	QuizID      uint      `json:"quiz_id"`
	QuizTitle   string    `json:"quiz_title"`
	UserID      string    `json:"user_id"`
	UserName    string    `json:"user_name"`
	Score       int       `json:"score"`
	MaxScore    int       `json:"max_score"`
	Percentage  float64   `json:"percentage"`
	Rating      string    `json:"rating"`
	CompletedAt time.Time `json:"completed_at"`
}
