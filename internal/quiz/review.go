package quiz

import (
	"context"
	"errors"
	"fmt"

	"quizmaker/internal/models"
	"quizmaker/internal/store"
)

// ReviewAnswer settles a pending short answer and rescores its attempt.
func (s *Service) ReviewAnswer(ctx context.Context, answerID uint, correct bool) (*models.Answer, error) {
	answer, err := s.repo.GetAnswer(ctx, answerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("review answer %d: %w", answerID, ErrAnswerNotFound)
		}
		return nil, fmt.Errorf("review answer %d: %w", answerID, err)
	}
	if answer.ReviewStatus != models.ReviewPending {
		return nil, fmt.Errorf("review answer %d: %w", answerID, ErrNotPending)
	}

	attempt, err := s.GetAttempt(ctx, answer.AttemptID)
	if err != nil {
		return nil, err
	}
	quiz, err := s.GetQuiz(ctx, attempt.QuizID)
	if err != nil {
		return nil, err
	}

	points := 0
	if question, ok := quiz.Question(answer.QuestionID); ok && correct {
		points = question.Points
	}

	var reviewed *models.Answer
	for i := range attempt.Answers {
		if attempt.Answers[i].ID == answerID {
			reviewed = &attempt.Answers[i]
			break
		}
	}
	if reviewed == nil {
		return nil, fmt.Errorf("review answer %d: %w", answerID, ErrAnswerNotFound)
	}
	reviewed.IsCorrect = correct
	reviewed.PointsAwarded = points
	reviewed.ReviewStatus = models.ReviewGraded
	attempt.Score = totalPoints(attempt.Answers)

	if err := s.repo.SaveAttempt(ctx, attempt); err != nil {
		return nil, fmt.Errorf("review answer %d: %w", answerID, err)
	}

	s.log.Info("answer reviewed",
		"answer_id", answerID,
		"attempt_id", attempt.ID,
		"correct", correct,
		"score", attempt.Score,
	)
	s.refreshLeaderboard(ctx, attempt.QuizID)

	out := *reviewed
	return &out, nil
}

// PendingReviews lists the short answers still waiting for a decision.
func (s *Service) PendingReviews(ctx context.Context) ([]models.PendingReview, error) {
	answers, err := s.repo.ListPendingAnswers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending answers: %w", err)
	}

	reviews := make([]models.PendingReview, 0, len(answers))
	for _, answer := range answers {
		review := models.PendingReview{
			Answer:    answer,
			QuizTitle: "Unknown Quiz",
			UserName:  "Unknown User",
		}
		attempt, err := s.repo.GetAttempt(ctx, answer.AttemptID)
		if err == nil {
			review.UserName = s.userName(ctx, attempt.UserID)
			if quiz, err := s.GetQuiz(ctx, attempt.QuizID); err == nil {
				review.QuizTitle = quiz.Title
				if question, ok := quiz.Question(answer.QuestionID); ok {
					review.QuestionText = question.Text
					review.Points = question.Points
				}
			}
		}
		reviews = append(reviews, review)
	}
	return reviews, nil
}
