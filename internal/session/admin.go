package session

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"quizmaker/internal/models"
	"quizmaker/internal/quiz"
)

const (
	maxQuestionsPerQuiz = 20
	maxOptions          = 6
)

func (a *App) systemStats(ctx context.Context) {
	stats, ok := a.loadStats(ctx)
	if !ok {
		return
	}

	a.con.header("SYSTEM STATISTICS")
	a.con.printf("   Total Users: %d\n", stats.Totals.Users)
	a.con.printf("   Total Quizzes: %d\n", stats.Totals.Quizzes)
	a.con.printf("   Total Questions: %d\n", stats.Totals.Questions)
	a.con.printf("   Total Quiz Attempts: %d\n", stats.Totals.Attempts)
	a.con.printf("   Completed Attempts: %d\n", stats.CompletedAttempts)
	a.con.printf("   Expired Attempts: %d\n", stats.ExpiredAttempts)
	a.con.printf("   Active Categories: %d\n", stats.Totals.ActiveCategories)
}

func (a *App) allResults(ctx context.Context) {
	stats, ok := a.loadStats(ctx)
	if !ok {
		return
	}

	a.con.header("ALL QUIZ RESULTS (ADMIN VIEW)")
	if stats.CompletedAttempts == 0 {
		notice.Fprintln(a.con.out, "No quiz attempts found.")
		return
	}
	a.con.printf("Total completed quiz attempts: %d\n\n", stats.CompletedAttempts)

	for _, qs := range stats.PerQuiz {
		heading.Fprintf(a.con.out, "QUIZ: %s\n", qs.Title)
		a.con.printf("   Total Attempts: %d\n", qs.Attempts)
		a.con.printf("   Average Score: %.1f%%\n", qs.Average)
		a.con.printf("   Highest Score: %.1f%%\n", qs.Highest)
		a.con.printf("   Lowest Score: %.1f%%\n", qs.Lowest)
		a.con.println("   Recent Attempts:")
		for _, r := range qs.RecentAttempts {
			a.con.printf("   - %s: %d/%d (%.1f%%) on %s\n",
				r.UserName, r.Score, r.MaxScore, r.Percentage, r.CompletedAt.Local().Format("01/02 15:04"))
		}
		a.con.println()
	}

	heading.Fprintln(a.con.out, "OVERALL STATISTICS:")
	a.con.printf("   Average Score Across All Quizzes: %.1f%%\n", stats.OverallAverage)
	a.con.printf("   Total Points Awarded: %d\n", stats.TotalPoints)
	a.con.printf("   Most Active User: %s\n", stats.MostActiveUser)
	a.con.printf("   Most Popular Quiz: %s\n", stats.MostPopularQuiz)
}

func (a *App) loadStats(ctx context.Context) (*models.Stats, bool) {
	stats, err := a.quiz.Stats(ctx)
	if err != nil {
		a.log.Error("load stats", "error", err)
		bad.Fprintln(a.con.out, "Could not load statistics.")
		return nil, false
	}
	return stats, true
}

func (a *App) createQuiz(ctx context.Context) {
	a.con.header("CREATE NEW QUIZ (ADMIN ONLY)")

	categories, err := a.quiz.ActiveCategories(ctx)
	if err != nil {
		a.log.Error("list categories", "error", err)
		bad.Fprintln(a.con.out, "Could not load categories.")
		return
	}
	if len(categories) == 0 {
		notice.Fprintln(a.con.out, "No active categories. Cannot create a quiz.")
		return
	}
	a.con.println("Available categories:")
	for _, c := range categories {
		a.con.printf("  %d. %s\n", c.ID, c.Name)
	}

	q := &models.Quiz{
		CreatorID: a.user.ID,
		IsActive:  true,
	}
	q.CategoryID = uint(a.askNumber("Category ID: ", 0))
	q.Title = a.con.ask("Quiz title: ")
	q.Description = a.con.ask("Description: ")
	q.TimeLimit = a.askNumber("Time limit in minutes (0 for none): ", 0)

	count := a.askNumber("Number of questions (1-20): ", 0)
	if count < 1 || count > maxQuestionsPerQuiz {
		bad.Fprintln(a.con.out, "Number of questions must be between 1 and 20.")
		return
	}
	for i := 0; i < count && !a.con.eof; i++ {
		a.con.printf("\nQuestion %d\n", i+1)
		q.Questions = append(q.Questions, a.askQuestion())
	}
	q.IsPublic = !strings.EqualFold(strings.TrimSpace(a.con.ask("Make quiz public? (Y/n): ")), "n")

	if err := a.quiz.CreateQuiz(ctx, q); err != nil {
		var verr *quiz.ValidationError
		if errors.As(err, &verr) {
			bad.Fprintln(a.con.out, "\nQuiz not created:")
			for _, p := range verr.Problems {
				bad.Fprintf(a.con.out, "   * %s\n", p)
			}
			return
		}
		a.log.Error("create quiz", "error", err)
		bad.Fprintln(a.con.out, "Could not create the quiz.")
		return
	}

	good.Fprintf(a.con.out, "\nQuiz %q created with ID %d (%d questions, %d points).\n",
		q.Title, q.ID, len(q.Questions), q.MaxScore())
}

func (a *App) askQuestion() models.Question {
	question := models.Question{Text: a.con.ask("Question text: ")}

	a.con.println("Question type:")
	for i, t := range []models.QuestionType{
		models.QuestionSingle, models.QuestionMultiple, models.QuestionTrueFalse, models.QuestionShortAnswer,
	} {
		a.con.printf("  %d. %s\n", i+1, t)
	}
	typ, ok := models.ParseQuestionType(a.con.ask("Type (1-4): "))
	if !ok {
		typ = models.QuestionSingle
		notice.Fprintln(a.con.out, "Unknown type, using single choice.")
	}
	question.Type = typ
	question.Points = a.askNumber("Points (default 1): ", 1)

	switch typ {
	case models.QuestionTrueFalse:
		isTrue := strings.HasPrefix(strings.ToLower(strings.TrimSpace(a.con.ask("Correct answer (T/F): "))), "t")
		question.Options = []models.Option{
			{Text: "True", IsCorrect: isTrue},
			{Text: "False", IsCorrect: !isTrue},
		}
	case models.QuestionSingle, models.QuestionMultiple:
		n := a.askNumber("Number of options (2-6): ", 0)
		if n > maxOptions {
			n = maxOptions
		}
		for j := 0; j < n; j++ {
			question.Options = append(question.Options, models.Option{
				Text: a.con.ask("  Option " + strconv.Itoa(j+1) + ": "),
			})
		}
		prompt := "Correct option number: "
		if typ == models.QuestionMultiple {
			prompt = "Correct option numbers (comma separated): "
		}
		for _, part := range strings.Split(a.con.ask(prompt), ",") {
			if k, ok := optionNumber(part, len(question.Options)); ok {
				question.Options[k-1].IsCorrect = true
			}
		}
	}
	return question
}

// askNumber returns def for blank input and -1 for anything unparsable.
func (a *App) askNumber(prompt string, def int) int {
	s := strings.TrimSpace(a.con.ask(prompt))
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}

func (a *App) reviewAnswers(ctx context.Context) {
	a.con.header("REVIEW SHORT ANSWERS")

	pending, err := a.quiz.PendingReviews(ctx)
	if err != nil {
		a.log.Error("list pending reviews", "error", err)
		bad.Fprintln(a.con.out, "Could not load pending answers.")
		return
	}
	if len(pending) == 0 {
		notice.Fprintln(a.con.out, "No answers waiting for review.")
		return
	}

	for _, p := range pending {
		a.con.printf("\nQuiz: %s\n", p.QuizTitle)
		a.con.printf("Player: %s\n", p.UserName)
		a.con.printf("Question: %s (%d points)\n", p.QuestionText, p.Points)
		a.con.printf("Answer: %s\n", p.Answer.TextAnswer)

		var correct bool
		switch strings.ToLower(strings.TrimSpace(a.con.ask("Correct? (y/n, s to skip, q to stop): "))) {
		case "y":
			correct = true
		case "n":
		case "q":
			return
		default:
			continue
		}

		if _, err := a.quiz.ReviewAnswer(ctx, p.Answer.ID, correct); err != nil {
			a.log.Error("review answer", "answer_id", p.Answer.ID, "error", err)
			bad.Fprintln(a.con.out, "Could not save the review.")
			continue
		}
		good.Fprintln(a.con.out, "Saved.")
	}
}
