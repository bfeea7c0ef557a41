package session

import (
	"context"
	"strconv"
	"strings"

	"quizmaker/internal/auth"
	"quizmaker/internal/models"
	"quizmaker/internal/quiz"
	"quizmaker/internal/store"
)

const historySize = 10

func (a *App) loginMenu(ctx context.Context) State {
	a.con.header("LOGIN")
	a.con.println("1. Login to existing account")
	a.con.println("2. Create new account")
	a.con.println("3. Use demo accounts")
	a.con.println("0. Exit")

	switch strings.TrimSpace(a.con.ask("\nSelect an option: ")) {
	case "1":
		email := a.con.ask("Email: ")
		password := a.con.askPassword("Password: ")
		return a.login(ctx, email, password)
	case "2":
		a.register(ctx)
	case "3":
		return a.demoLogin(ctx)
	case "0":
		return StateExit
	default:
		if !a.con.eof {
			bad.Fprintln(a.con.out, "Invalid option. Please try again.")
		}
	}
	return StateAwaitingLogin
}

func (a *App) login(ctx context.Context, email, password string) State {
	user, err := a.auth.Login(ctx, email, password)
	if err != nil {
		a.printAuthError(err)
		return StateAwaitingLogin
	}

	a.user = user
	good.Fprintln(a.con.out, "\nLogin successful!")
	a.con.printf("Welcome back, %s!\n", user.FirstName)
	a.con.printf("Role: %s\n", user.Role)
	return StateMainMenu
}

func (a *App) register(ctx context.Context) {
	a.con.header("CREATE NEW ACCOUNT")
	req := models.RegisterRequest{
		FirstName:       a.con.ask("First Name: "),
		LastName:        a.con.ask("Last Name: "),
		Email:           a.con.ask("Email: "),
		Password:        a.con.askPassword("Password (min 6 chars, include number and letter): "),
		ConfirmPassword: a.con.askPassword("Confirm Password: "),
	}

	user, err := a.auth.Register(ctx, req)
	if err != nil {
		bad.Fprintln(a.con.out, "\nRegistration failed:")
		a.printAuthError(err)
		return
	}

	good.Fprintln(a.con.out, "\nRegistration successful!")
	a.con.printf("Welcome to QuizMaker, %s!\n", user.FirstName)
	a.con.println("You can now login with your credentials.")
}

func (a *App) demoLogin(ctx context.Context) State {
	a.con.header("DEMO ACCOUNTS")
	a.con.printf("1. %s (Password: %s) - Admin\n", store.DemoAdminEmail, store.DemoAdminPassword)
	a.con.printf("2. %s (Password: %s) - User\n", store.DemoUserEmail, store.DemoUserPassword)
	a.con.println("0. Back")

	switch strings.TrimSpace(a.con.ask("\nSelect demo account: ")) {
	case "1":
		return a.login(ctx, store.DemoAdminEmail, store.DemoAdminPassword)
	case "2":
		return a.login(ctx, store.DemoUserEmail, store.DemoUserPassword)
	case "0":
	default:
		bad.Fprintln(a.con.out, "Invalid option.")
	}
	return StateAwaitingLogin
}

func (a *App) printAuthError(err error) {
	for _, line := range strings.Split(auth.Message(err), "\n") {
		bad.Fprintf(a.con.out, "   * %s\n", line)
	}
}

func (a *App) mainMenu(ctx context.Context) State {
	admin := a.isAdmin()

	a.con.header("MAIN MENU")
	a.con.println("1. View Available Quizzes")
	a.con.println("2. Take a Quiz")
	a.con.println("3. View My Quiz History")
	if admin {
		a.con.println("4. System Statistics (Admin)")
		a.con.println("5. View All Quiz Results (Admin)")
		a.con.println("6. Create New Quiz (Admin)")
		a.con.println("7. Review Short Answers (Admin)")
	}
	a.con.println("8. Logout")
	a.con.println("0. Exit")

	choice := strings.TrimSpace(a.con.ask("\nSelect an option: "))
	switch choice {
	case "1":
		a.listQuizzes(ctx)
	case "2":
		return a.chooseQuiz(ctx)
	case "3":
		a.history(ctx)
	case "4", "5", "6", "7":
		if !admin {
			bad.Fprintln(a.con.out, "Access denied.")
			break
		}
		switch choice {
		case "4":
			a.systemStats(ctx)
		case "5":
			a.allResults(ctx)
		case "6":
			a.createQuiz(ctx)
		case "7":
			a.reviewAnswers(ctx)
		}
	case "8":
		a.con.printf("Goodbye, %s!\n", a.user.FirstName)
		a.user = nil
		return StateAwaitingLogin
	case "0":
		return StateExit
	default:
		if !a.con.eof {
			bad.Fprintln(a.con.out, "Invalid option. Please try again.")
		}
	}
	return StateMainMenu
}

func (a *App) listQuizzes(ctx context.Context) bool {
	a.con.header("AVAILABLE QUIZZES")

	quizzes, err := a.quiz.ListAvailable(ctx)
	if err != nil {
		a.log.Error("list quizzes", "error", err)
		bad.Fprintln(a.con.out, "Could not load quizzes.")
		return false
	}
	if len(quizzes) == 0 {
		notice.Fprintln(a.con.out, "No quizzes available.")
		return false
	}

	for _, q := range quizzes {
		a.con.printf("Quiz ID: %d\n", q.ID)
		a.con.printf("   Title: %s\n", q.Title)
		a.con.printf("   Description: %s\n", q.Description)
		a.con.printf("   Questions: %d\n", len(q.Questions))
		a.con.printf("   Time Limit: %s\n\n", timeLimitText(q.TimeLimit))
	}
	return true
}

func (a *App) chooseQuiz(ctx context.Context) State {
	if !a.listQuizzes(ctx) {
		return StateMainMenu
	}

	id, err := strconv.ParseUint(strings.TrimSpace(a.con.ask("Enter Quiz ID to take: ")), 10, 64)
	if err != nil || id == 0 {
		bad.Fprintln(a.con.out, "Invalid Quiz ID.")
		return StateMainMenu
	}
	a.quizID = uint(id)
	return StateTakingQuiz
}

func (a *App) history(ctx context.Context) {
	a.con.header("YOUR QUIZ HISTORY")

	attempts, err := a.quiz.ListUserAttempts(ctx, a.user.ID)
	if err != nil {
		a.log.Error("list attempts", "user_id", a.user.ID, "error", err)
		bad.Fprintln(a.con.out, "Could not load your history.")
		return
	}
	if len(attempts) == 0 {
		notice.Fprintln(a.con.out, "No quiz history found. Take some quizzes to see your progress!")
		return
	}

	a.con.printf("Total quizzes taken: %d\n\n", len(attempts))
	var sum, best float64
	points := 0
	for i, s := range attempts {
		pct := s.Attempt.Percentage()
		sum += pct
		best = max(best, pct)
		points += s.Attempt.Score
		if i >= historySize {
			continue
		}
		a.con.printf("Quiz: %s\n", s.QuizTitle)
		a.con.printf("Date: %s\n", s.Attempt.CompletedAt.Local().Format("2006-01-02 15:04"))
		a.con.printf("Score: %d/%d (%.1f%%)\n", s.Attempt.Score, s.Attempt.MaxScore, pct)
		a.con.printf("Performance: %s\n\n", quiz.Rating(pct))
	}

	heading.Fprintln(a.con.out, "STATISTICS:")
	a.con.printf("   Average Score: %.1f%%\n", sum/float64(len(attempts)))
	a.con.printf("   Best Score: %.1f%%\n", best)
	a.con.printf("   Total Points Earned: %d\n", points)
}

func timeLimitText(minutes int) string {
	if minutes <= 0 {
		return "No limit"
	}
	return strconv.Itoa(minutes) + " minutes"
}
