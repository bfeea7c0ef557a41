package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"quizmaker/internal/models"
	"quizmaker/internal/store"
)

const (
	minChoiceOptions   = 2
	maxMultipleOptions = 6
)

// CreateQuiz validates the quiz, numbers its questions and options in the
// order given and stores it. The caller sets CreatorID and the flags.
func (s *Service) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	if err := s.validateQuiz(ctx, quiz); err != nil {
		return err
	}

	quiz.ID = 0
	quiz.Title = strings.TrimSpace(quiz.Title)
	quiz.Description = strings.TrimSpace(quiz.Description)
	quiz.CreatedAt = s.now()
	for i := range quiz.Questions {
		question := &quiz.Questions[i]
		question.ID = 0
		question.QuizID = 0
		question.Text = strings.TrimSpace(question.Text)
		question.OrderIndex = i + 1
		for j := range question.Options {
			option := &question.Options[j]
			option.ID = 0
			option.QuestionID = 0
			option.Text = strings.TrimSpace(option.Text)
			option.OrderIndex = j + 1
		}
	}

	if err := s.repo.CreateQuiz(ctx, quiz); err != nil {
		return fmt.Errorf("create quiz: %w", err)
	}

	s.log.Info("quiz created",
		"quiz_id", quiz.ID,
		"title", quiz.Title,
		"questions", len(quiz.Questions),
		"creator_id", quiz.CreatorID,
	)
	return nil
}

func (s *Service) validateQuiz(ctx context.Context, quiz *models.Quiz) error {
	var problems []string

	if strings.TrimSpace(quiz.Title) == "" {
		problems = append(problems, "Title is required")
	}

	if quiz.CategoryID == 0 {
		problems = append(problems, "Category is required")
	} else {
		category, err := s.repo.GetCategory(ctx, quiz.CategoryID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			problems = append(problems, fmt.Sprintf("Category %d does not exist", quiz.CategoryID))
		case err != nil:
			return fmt.Errorf("create quiz: %w", err)
		case !category.IsActive:
			problems = append(problems, fmt.Sprintf("Category %q is not active", category.Name))
		}
	}

	if quiz.TimeLimit < 0 {
		problems = append(problems, "Time limit cannot be negative")
	}
	if len(quiz.Questions) == 0 {
		problems = append(problems, "At least one question is required")
	}

	for i := range quiz.Questions {
		problems = append(problems, questionProblems(i+1, &quiz.Questions[i])...)
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func questionProblems(n int, q *models.Question) []string {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf("Question %d: ", n)+fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(q.Text) == "" {
		add("text is required")
	}
	if q.Points < 1 {
		add("points must be at least 1")
	}

	correct := 0
	for j, opt := range q.Options {
		if strings.TrimSpace(opt.Text) == "" {
			add("option %d text is required", j+1)
		}
		if opt.IsCorrect {
			correct++
		}
	}

	switch q.Type {
	case models.QuestionTrueFalse:
		if len(q.Options) != 2 {
			add("true/false needs exactly two options")
		}
		if correct != 1 {
			add("exactly one option must be correct")
		}
	case models.QuestionSingle:
		if len(q.Options) < minChoiceOptions {
			add("needs at least %d options", minChoiceOptions)
		}
		if correct != 1 {
			add("exactly one option must be correct")
		}
	case models.QuestionMultiple:
		if len(q.Options) < minChoiceOptions || len(q.Options) > maxMultipleOptions {
			add("needs between %d and %d options", minChoiceOptions, maxMultipleOptions)
		}
		if correct == 0 {
			add("at least one option must be correct")
		}
	case models.QuestionShortAnswer:
		if len(q.Options) > 0 {
			add("short answer questions take no options")
		}
	default:
		add("unknown type %q", q.Type)
	}
	return problems
}
