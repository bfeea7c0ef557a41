package auth

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"quizmaker/internal/models"
)

var ErrValidation = errors.New("validation error")

// ValidationError carries every problem found in one request.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation error: " + strings.Join(e.Problems, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

const minPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidateRegistration returns nil or a *ValidationError listing every problem.
func ValidateRegistration(req models.RegisterRequest) error {
	var problems []string

	if strings.TrimSpace(req.FirstName) == "" {
		problems = append(problems, "First name is required")
	}
	if strings.TrimSpace(req.LastName) == "" {
		problems = append(problems, "Last name is required")
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		problems = append(problems, "Email is required")
	} else if !IsValidEmail(email) {
		problems = append(problems, "Please enter a valid email address")
	}

	if strings.TrimSpace(req.Password) == "" {
		problems = append(problems, "Password is required")
	} else {
		if len([]rune(req.Password)) < minPasswordLength {
			problems = append(problems, "Password must be at least 6 characters long")
		}
		if !strings.ContainsFunc(req.Password, unicode.IsDigit) {
			problems = append(problems, "Password must contain at least one number")
		}
		if !strings.ContainsFunc(req.Password, unicode.IsLetter) {
			problems = append(problems, "Password must contain at least one letter")
		}
	}

	if req.Password != req.ConfirmPassword {
		problems = append(problems, "Passwords do not match")
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func ValidateLogin(req models.LoginRequest) error {
	var problems []string

	email := strings.TrimSpace(req.Email)
	if email == "" {
		problems = append(problems, "Email is required")
	} else if !IsValidEmail(email) {
		problems = append(problems, "Please enter a valid email address")
	}
	if strings.TrimSpace(req.Password) == "" {
		problems = append(problems, "Password is required")
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
