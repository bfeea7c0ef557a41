package store

import (
	"context"
	"fmt"
	"time"

	"quizmaker/internal/models"
)

// Demo accounts created by Seed.
const (
	DemoAdminID       = "admin-123"
	DemoAdminEmail    = "admin@quizmaker.com"
	DemoAdminPassword = "admin123"
	DemoUserID        = "user-123"
	DemoUserEmail     = "john@example.com"
	DemoUserPassword  = "user123"
)

// Seed fills an empty store with categories, the demo accounts and the
// sample quizzes. A store that already has users is left untouched.
func Seed(ctx context.Context, st Store, hash func(string) (string, error)) error {
	users, err := st.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("seed: list users: %w", err)
	}
	if len(users) > 0 {
		return nil
	}

	now := time.Now().UTC()
	for _, c := range seedCategories() {
		c.CreatedAt = now
		if err := st.SaveCategory(ctx, &c); err != nil {
			return fmt.Errorf("seed: category %q: %w", c.Name, err)
		}
	}

	accounts := []struct {
		id, email, password, first, last, role string
	}{
		{DemoAdminID, DemoAdminEmail, DemoAdminPassword, "Admin", "User", models.RoleAdmin},
		{DemoUserID, DemoUserEmail, DemoUserPassword, "John", "Doe", models.RoleUser},
	}
	for _, a := range accounts {
		passwordHash, err := hash(a.password)
		if err != nil {
			return fmt.Errorf("seed: hash password: %w", err)
		}
		user := &models.User{
			ID:           a.id,
			Email:        a.email,
			PasswordHash: passwordHash,
			FirstName:    a.first,
			LastName:     a.last,
			Role:         a.role,
			CreatedAt:    now,
		}
		if err := st.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("seed: user %s: %w", a.email, err)
		}
	}

	for _, quiz := range seedQuizzes() {
		quiz.CreatedAt = now
		if err := st.CreateQuiz(ctx, &quiz); err != nil {
			return fmt.Errorf("seed: quiz %q: %w", quiz.Title, err)
		}
	}
	return nil
}

func seedCategories() []models.Category {
	return []models.Category{
		{ID: 1, Name: "Programming", Description: "Programming and computer science", IsActive: true},
		{ID: 2, Name: "General Knowledge", Description: "General knowledge questions", IsActive: true},
		{ID: 3, Name: "Science", Description: "Science and technology questions", IsActive: true},
		{ID: 4, Name: "Mathematics", Description: "Math and calculation questions", IsActive: true},
	}
}

// q builds a question whose options are marked correct by index.
func q(text string, typ models.QuestionType, points int, options []string, correct ...int) models.Question {
	question := models.Question{Text: text, Type: typ, Points: points}
	for i, opt := range options {
		isCorrect := false
		for _, c := range correct {
			if c == i {
				isCorrect = true
			}
		}
		question.Options = append(question.Options, models.Option{Text: opt, IsCorrect: isCorrect, OrderIndex: i})
	}
	return question
}

func tf(text string, answer bool) models.Question {
	if answer {
		return q(text, models.QuestionTrueFalse, 1, []string{"True", "False"}, 0)
	}
	return q(text, models.QuestionTrueFalse, 1, []string{"True", "False"}, 1)
}

func seedQuizzes() []models.Quiz {
	programming := models.Quiz{
		Title:       "Go Programming Fundamentals",
		Description: "Core Go syntax, types and concurrency",
		CategoryID:  1,
		CreatorID:   DemoAdminID,
		IsPublic:    true,
		IsActive:    true,
		TimeLimit:   2,
		Questions: []models.Question{
			q("Which keyword declares and initialises a variable inside a function?", models.QuestionSingle, 2,
				[]string{":=", "let", "declare", "dim"}, 0),
			tf("Go is a case-sensitive language.", true),
			q("Which of these are built-in Go types? (Select all that apply)", models.QuestionMultiple, 3,
				[]string{"int", "string", "boolean", "rune"}, 0, 1, 3),
			q("What starts a new goroutine?", models.QuestionSingle, 2,
				[]string{"go", "async", "spawn", "thread"}, 0),
			tf("Maps are safe for concurrent writes without synchronisation.", false),
			q("Which statements can defer a function call? (Select all that apply)", models.QuestionMultiple, 2,
				[]string{"defer", "go", "return", "goto"}, 0),
			tf("Slices are reference-like views over an underlying array.", true),
			q("How are errors conventionally returned?", models.QuestionSingle, 2,
				[]string{"As the last return value", "By throwing", "Through a global errno", "With panic"}, 0),
		},
	}
	geography := models.Quiz{
		Title:       "World Geography Quiz",
		Description: "Comprehensive test of world geography knowledge",
		CategoryID:  2,
		CreatorID:   DemoAdminID,
		IsPublic:    true,
		IsActive:    true,
		TimeLimit:   2,
		Questions: []models.Question{
			q("What is the capital of France?", models.QuestionSingle, 1,
				[]string{"London", "Berlin", "Paris", "Madrid"}, 2),
			tf("The Great Wall of China was built to protect against invasions.", true),
			q("Which of these are continents? (Select all that apply)", models.QuestionMultiple, 2,
				[]string{"Asia", "Europe", "Greenland", "Antarctica"}, 0, 1, 3),
			tf("The Pacific Ocean is the largest ocean on Earth.", true),
			q("What is the highest mountain in the world?", models.QuestionSingle, 1,
				[]string{"K2", "Mount Everest", "Kilimanjaro", "Denali"}, 1),
			q("Which countries are in South America? (Select all that apply)", models.QuestionMultiple, 2,
				[]string{"Brazil", "Argentina", "Mexico", "Chile"}, 0, 1, 3),
			tf("The Sahara Desert is located in Africa.", true),
			q("What is the largest island in the world?", models.QuestionSingle, 1,
				[]string{"Australia", "Greenland", "Madagascar", "New Guinea"}, 1),
		},
	}
	math := models.Quiz{
		Title:       "Basic Mathematics",
		Description: "Basic mathematical concepts and calculations",
		CategoryID:  4,
		CreatorID:   DemoUserID,
		IsPublic:    true,
		IsActive:    true,
		TimeLimit:   2,
		Questions: []models.Question{
			q("What is 15 + 27?", models.QuestionSingle, 1, []string{"40", "42", "44", "45"}, 1),
			q("What is 8 x 7?", models.QuestionSingle, 1, []string{"54", "56", "58", "64"}, 1),
			tf("A triangle has exactly 3 sides.", true),
			tf("Zero is an even number.", true),
			q("What is 1/2 + 1/4?", models.QuestionSingle, 2, []string{"2/6", "3/4", "2/4", "1/6"}, 1),
			q("Which are prime numbers? (Select all that apply)", models.QuestionMultiple, 3,
				[]string{"7", "9", "11", "15"}, 0, 2),
			tf("25% of 80 equals 20.", true),
			{Text: "Explain in one sentence what a prime number is.", Type: models.QuestionShortAnswer, Points: 2},
		},
	}

	quizzes := []models.Quiz{programming, geography, math}
	for i := range quizzes {
		for j := range quizzes[i].Questions {
			quizzes[i].Questions[j].OrderIndex = j
		}
	}
	return quizzes
}
