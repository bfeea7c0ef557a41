// Package session drives the interactive console: login, menus, timed
// quizzes and the admin screens.
package session

import (
	"context"
	"io"
	"log/slog"
	"time"

	"quizmaker/internal/models"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (*models.User, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	IsInRole(user *models.User, role string) bool
}

type QuizService interface {
	ListAvailable(ctx context.Context) ([]models.Quiz, error)
	GetQuiz(ctx context.Context, id uint) (*models.Quiz, error)
	StartAttempt(ctx context.Context, quizID uint, userID string) (*models.Attempt, error)
	SubmitAnswers(ctx context.Context, attemptID uint, answers []models.AnswerInput) (*models.AttemptResult, error)
	ExpireAttempt(ctx context.Context, attemptID uint) error
	ListUserAttempts(ctx context.Context, userID string) ([]models.AttemptSummary, error)

	ActiveCategories(ctx context.Context) ([]models.Category, error)
	CreateQuiz(ctx context.Context, quiz *models.Quiz) error
	PendingReviews(ctx context.Context) ([]models.PendingReview, error)
	ReviewAnswer(ctx context.Context, answerID uint, correct bool) (*models.Answer, error)
	Stats(ctx context.Context) (*models.Stats, error)
}

type State int

const (
	StateAwaitingLogin State = iota
	StateMainMenu
	StateTakingQuiz
	StateShowingResults
	StateTimeExpired
	StateExit
)

func (s State) String() string {
	switch s {
	case StateAwaitingLogin:
		return "awaiting_login"
	case StateMainMenu:
		return "main_menu"
	case StateTakingQuiz:
		return "taking_quiz"
	case StateShowingResults:
		return "showing_results"
	case StateTimeExpired:
		return "time_expired"
	case StateExit:
		return "exit"
	}
	return "unknown"
}

type Config struct {
	In   io.Reader
	Out  io.Writer
	Auth AuthService
	Quiz QuizService
	Log  *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

type App struct {
	auth AuthService
	quiz QuizService
	log  *slog.Logger
	now  func() time.Time
	con  *console

	state State
	user  *models.User

	quizID   uint
	taken    *models.Quiz
	result   *models.AttemptResult
	answered int
}

func New(cfg Config) *App {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &App{
		auth:  cfg.Auth,
		quiz:  cfg.Quiz,
		log:   cfg.Log,
		now:   now,
		con:   newConsole(cfg.In, cfg.Out),
		state: StateAwaitingLogin,
	}
}

func (a *App) State() State { return a.state }

// Run loops until the user exits, input runs out or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.con.header("WELCOME TO QUIZMAKER")

	for a.state != StateExit {
		if err := ctx.Err(); err != nil {
			return err
		}

		prev := a.state
		switch a.state {
		case StateAwaitingLogin:
			a.state = a.loginMenu(ctx)
		case StateMainMenu:
			a.state = a.mainMenu(ctx)
		case StateTakingQuiz:
			a.state = a.takeQuiz(ctx)
		case StateShowingResults:
			a.state = a.showResults()
		case StateTimeExpired:
			a.state = a.showTimeExpired()
		}

		if a.con.eof && a.state != StateShowingResults && a.state != StateTimeExpired {
			a.state = StateExit
		}
		if prev != a.state {
			a.log.Debug("session state changed", "from", prev, "to", a.state)
		}
	}

	a.con.println("Thanks for using QuizMaker!")
	return nil
}

func (a *App) isAdmin() bool {
	return a.auth.IsInRole(a.user, models.RoleAdmin)
}
