package session

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"quizmaker/internal/models"
	"quizmaker/internal/quiz"
)

func (a *App) takeQuiz(ctx context.Context) State {
	q, err := a.quiz.GetQuiz(ctx, a.quizID)
	if err != nil || !q.IsActive || !q.IsPublic {
		bad.Fprintln(a.con.out, "Quiz not found.")
		return StateMainMenu
	}

	a.con.header("Starting Quiz: " + q.Title)
	a.con.printf("Description: %s\n", q.Description)
	a.con.printf("Time Limit: %s\n", timeLimitText(q.TimeLimit))
	a.con.printf("Total Questions: %d\n", len(q.Questions))
	a.con.printf("Max Score: %d points\n\n", q.MaxScore())
	a.con.ask("Press Enter to start the quiz...")
	if a.con.eof {
		return StateExit
	}

	attempt, err := a.quiz.StartAttempt(ctx, q.ID, a.user.ID)
	if err != nil {
		if errors.Is(err, quiz.ErrNoQuestions) {
			bad.Fprintln(a.con.out, "This quiz has no questions yet.")
		} else {
			a.log.Error("start attempt", "quiz_id", q.ID, "error", err)
			bad.Fprintln(a.con.out, "Could not start the quiz.")
		}
		return StateMainMenu
	}

	limit := time.Duration(q.TimeLimit) * time.Minute
	start := a.now()
	overdue := func() bool {
		return limit > 0 && a.now().Sub(start) >= limit
	}

	answers := make([]models.AnswerInput, 0, len(q.Questions))
	for i := range q.Questions {
		if overdue() {
			return a.expire(ctx, q, attempt, len(answers))
		}

		question := &q.Questions[i]
		a.con.printf("\nQuestion %d of %d (%d points)\n", i+1, len(q.Questions), question.Points)
		a.con.printf("%s\n", question.Text)
		answer := a.readAnswer(question)
		if a.con.drained {
			a.abandon(ctx, attempt)
			return StateExit
		}
		answers = append(answers, answer)

		if overdue() {
			return a.expire(ctx, q, attempt, len(answers))
		}
		if limit > 0 {
			remaining := limit - a.now().Sub(start)
			a.con.printf("Time remaining: %02d:%02d\n", int(remaining.Minutes()), int(remaining.Seconds())%60)
		}
	}

	result, err := a.quiz.SubmitAnswers(ctx, attempt.ID, answers)
	if err != nil {
		a.log.Error("submit answers", "attempt_id", attempt.ID, "error", err)
		bad.Fprintln(a.con.out, "Error submitting quiz.")
		return StateMainMenu
	}

	a.taken = q
	a.result = result
	return StateShowingResults
}

func (a *App) readAnswer(question *models.Question) models.AnswerInput {
	in := models.AnswerInput{QuestionID: question.ID}

	switch question.Type {
	case models.QuestionSingle, models.QuestionTrueFalse:
		a.printOptions(question)
		if n, ok := optionNumber(a.con.ask("Your answer (enter number): "), len(question.Options)); ok {
			in.SelectedOptionIDs = []uint{question.Options[n-1].ID}
		}
	case models.QuestionMultiple:
		a.con.println("Select all correct options (numbers separated by commas):")
		a.printOptions(question)
		for _, part := range strings.Split(a.con.ask("Your answers (e.g., 1,3): "), ",") {
			if n, ok := optionNumber(part, len(question.Options)); ok {
				in.SelectedOptionIDs = append(in.SelectedOptionIDs, question.Options[n-1].ID)
			}
		}
	case models.QuestionShortAnswer:
		in.TextAnswer = a.con.ask("Enter your answer: ")
	}
	return in
}

func (a *App) printOptions(question *models.Question) {
	for i, opt := range question.Options {
		a.con.printf("  %d. %s\n", i+1, opt.Text)
	}
}

func optionNumber(s string, count int) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > count {
		return 0, false
	}
	return n, true
}

func (a *App) expire(ctx context.Context, q *models.Quiz, attempt *models.Attempt, answered int) State {
	if err := a.quiz.ExpireAttempt(ctx, attempt.ID); err != nil {
		a.log.Error("expire attempt", "attempt_id", attempt.ID, "error", err)
	}
	a.taken = q
	a.answered = answered
	return StateTimeExpired
}

// abandon closes an attempt whose input ran out before the last question.
func (a *App) abandon(ctx context.Context, attempt *models.Attempt) {
	if err := a.quiz.ExpireAttempt(ctx, attempt.ID); err != nil {
		a.log.Error("abandon attempt", "attempt_id", attempt.ID, "error", err)
		return
	}
	a.log.Info("attempt abandoned at end of input", "attempt_id", attempt.ID)
}

func (a *App) showTimeExpired() State {
	notice.Fprintln(a.con.out, "\nTIME EXPIRED!")
	a.con.printf("The %s limit for %q ran out.\n", timeLimitText(a.taken.TimeLimit), a.taken.Title)
	a.con.printf("Questions answered: %d out of %d\n", a.answered, len(a.taken.Questions))
	a.con.println("Your answers were not submitted.")

	a.taken, a.answered = nil, 0
	return StateMainMenu
}

func (a *App) showResults() State {
	q, result := a.taken, a.result
	a.taken, a.result = nil, nil

	a.con.header("QUIZ COMPLETED!")
	a.con.printf("Quiz: %s\n", q.Title)
	a.con.printf("Completed: %s\n", result.CompletedAt.Local().Format("2006-01-02 15:04:05"))
	a.con.printf("Your Score: %d / %d points\n", result.Score, result.MaxScore)
	a.con.printf("Percentage: %.1f%%\n", result.Percentage)
	a.con.printf("Rating: %s\n", result.Rating)

	answers := make(map[uint]models.Answer, len(result.Answers))
	for _, ans := range result.Answers {
		answers[ans.QuestionID] = ans
	}

	heading.Fprintln(a.con.out, "\nDETAILED RESULTS:")
	for i, question := range q.Questions {
		ans := answers[question.ID]
		a.con.printf("\nQuestion %d: %s\n", i+1, question.Text)
		a.con.printf("Points: %d/%d\n", ans.PointsAwarded, question.Points)
		switch {
		case ans.ReviewStatus == models.ReviewPending:
			notice.Fprintln(a.con.out, "Result: Pending review")
		case ans.IsCorrect:
			good.Fprintln(a.con.out, "Result: Correct")
		default:
			bad.Fprintln(a.con.out, "Result: Incorrect")
		}

		if question.Type == models.QuestionShortAnswer {
			a.con.printf("Your Answer: %s\n", ans.TextAnswer)
			continue
		}

		selected := make(map[uint]bool, len(ans.SelectedOptionIDs))
		for _, id := range ans.SelectedOptionIDs {
			selected[id] = true
		}
		for _, opt := range question.Options {
			switch {
			case selected[opt.ID] && opt.IsCorrect:
				good.Fprintf(a.con.out, "  [+] %s\n", opt.Text)
			case selected[opt.ID]:
				bad.Fprintf(a.con.out, "  [x] %s\n", opt.Text)
			case opt.IsCorrect:
				notice.Fprintf(a.con.out, "  [*] %s\n", opt.Text)
			default:
				a.con.printf("  [ ] %s\n", opt.Text)
			}
		}
	}
	return StateMainMenu
}
