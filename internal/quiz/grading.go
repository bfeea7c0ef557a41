package quiz

import (
	"fmt"
	"strings"

	"quizmaker/internal/models"
)

// ShortAnswerPolicy decides how free-text answers are graded.
type ShortAnswerPolicy string

const (
	// PolicyAccept counts any non-empty text as correct.
	PolicyAccept ShortAnswerPolicy = "accept"
	// PolicyReview parks non-empty text as pending until an admin decides.
	PolicyReview ShortAnswerPolicy = "review"
)

func ParseShortAnswerPolicy(s string) (ShortAnswerPolicy, error) {
	switch p := ShortAnswerPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyAccept, nil
	case PolicyAccept, PolicyReview:
		return p, nil
	}
	return "", fmt.Errorf("unknown short answer policy %q", s)
}

// Grade scores one answer against its question.
func Grade(question *models.Question, in models.AnswerInput, policy ShortAnswerPolicy) models.Answer {
	answer := models.Answer{
		QuestionID:        question.ID,
		SelectedOptionIDs: dedupe(in.SelectedOptionIDs),
		TextAnswer:        strings.TrimSpace(in.TextAnswer),
		ReviewStatus:      models.ReviewGraded,
	}

	switch question.Type {
	case models.QuestionSingle, models.QuestionTrueFalse:
		answer.IsCorrect = len(answer.SelectedOptionIDs) == 1 &&
			sameSet(answer.SelectedOptionIDs, question.CorrectOptionIDs())
	case models.QuestionMultiple:
		answer.IsCorrect = len(answer.SelectedOptionIDs) > 0 &&
			sameSet(answer.SelectedOptionIDs, question.CorrectOptionIDs())
	case models.QuestionShortAnswer:
		answer.SelectedOptionIDs = nil
		if answer.TextAnswer == "" {
			break
		}
		if policy == PolicyReview {
			answer.ReviewStatus = models.ReviewPending
			break
		}
		answer.IsCorrect = true
	}

	if answer.IsCorrect {
		answer.PointsAwarded = question.Points
	}
	return answer
}

// Rating is the qualitative band shown next to a percentage.
func Rating(percentage float64) string {
	switch {
	case percentage >= 90:
		return "Excellent"
	case percentage >= 70:
		return "Good"
	case percentage >= 50:
		return "Fair"
	}
	return "Keep practicing"
}

func dedupe(ids []uint) []uint {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// sameSet expects a to be free of duplicates.
func sameSet(a, b []uint) bool {
	want := make(map[uint]struct{}, len(b))
	for _, id := range b {
		want[id] = struct{}{}
	}
	if len(a) != len(want) {
		return false
	}
	for _, id := range a {
		if _, ok := want[id]; !ok {
			return false
		}
	}
	return true
}
