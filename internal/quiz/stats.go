package quiz

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"quizmaker/internal/models"
	"quizmaker/internal/store"
)

const recentAttemptsPerQuiz = 5

// Stats gathers the admin panel numbers. Per-quiz figures only count
// completed attempts; quizzes are listed by their latest completion.
func (s *Service) Stats(ctx context.Context) (*models.Stats, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	quizzes, err := s.repo.ListQuizzes(ctx)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	attempts, err := s.repo.ListAttempts(ctx, store.AttemptFilter{})
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}

	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.FullName()
	}
	titles := make(map[uint]string, len(quizzes))

	stats := &models.Stats{
		Totals: models.SystemTotals{
			Users:    len(users),
			Quizzes:  len(quizzes),
			Attempts: len(attempts),
		},
		MostActiveUser:  "None",
		MostPopularQuiz: "None",
	}
	for _, q := range quizzes {
		titles[q.ID] = q.Title
		stats.Totals.Questions += len(q.Questions)
	}
	for _, c := range categories {
		if c.IsActive {
			stats.Totals.ActiveCategories++
		}
	}
	for _, a := range attempts {
		if a.IsExpired() {
			stats.ExpiredAttempts++
		}
	}

	completed := completedNewestFirst(attempts)
	stats.CompletedAttempts = len(completed)
	if len(completed) == 0 {
		return stats, nil
	}

	byQuiz := make(map[uint]*models.QuizStats)
	var order []uint
	perUser := make(map[string]int)
	var userOrder []string
	sum := 0.0
	for _, a := range completed {
		pct := a.Percentage()
		sum += pct
		stats.TotalPoints += a.Score

		if _, ok := perUser[a.UserID]; !ok {
			userOrder = append(userOrder, a.UserID)
		}
		perUser[a.UserID]++

		qs, ok := byQuiz[a.QuizID]
		if !ok {
			title, known := titles[a.QuizID]
			if !known {
				title = "Unknown Quiz"
			}
			qs = &models.QuizStats{QuizID: a.QuizID, Title: title, Highest: pct, Lowest: pct}
			byQuiz[a.QuizID] = qs
			order = append(order, a.QuizID)
		}
		qs.Attempts++
		qs.Average += pct
		qs.Highest = max(qs.Highest, pct)
		qs.Lowest = min(qs.Lowest, pct)
		if len(qs.RecentAttempts) < recentAttemptsPerQuiz {
			qs.RecentAttempts = append(qs.RecentAttempts, models.AttemptByUser{
				UserName:    nameOr(names, a.UserID),
				Score:       a.Score,
				MaxScore:    a.MaxScore,
				Percentage:  pct,
				CompletedAt: *a.CompletedAt,
			})
		}
	}

	stats.OverallAverage = sum / float64(len(completed))
	for _, id := range order {
		qs := byQuiz[id]
		qs.Average /= float64(qs.Attempts)
		stats.PerQuiz = append(stats.PerQuiz, *qs)
	}

	busiest := userOrder[0]
	for _, id := range userOrder[1:] {
		if perUser[id] > perUser[busiest] {
			busiest = id
		}
	}
	stats.MostActiveUser = fmt.Sprintf("%s (%d attempts)", nameOr(names, busiest), perUser[busiest])

	popular := stats.PerQuiz[0]
	for _, qs := range stats.PerQuiz[1:] {
		if qs.Attempts > popular.Attempts {
			popular = qs
		}
	}
	stats.MostPopularQuiz = fmt.Sprintf("%s (%d attempts)", popular.Title, popular.Attempts)

	return stats, nil
}

// Leaderboard returns each user's best percentage on the quiz, highest
// first. The cached board is used when present.
func (s *Service) Leaderboard(ctx context.Context, quizID uint) ([]models.LeaderboardEntry, error) {
	if _, err := s.GetQuiz(ctx, quizID); err != nil {
		return nil, err
	}

	if s.cache != nil {
		entries, err := s.cache.GetLeaderboard(ctx, quizID)
		if err == nil {
			return entries, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			s.log.Warn("leaderboard cache read failed", "quiz_id", quizID, "error", err)
		}
	}

	entries, err := s.computeLeaderboard(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil && len(entries) > 0 {
		if err := s.cache.SetLeaderboard(ctx, quizID, entries); err != nil {
			s.log.Warn("leaderboard cache write failed", "quiz_id", quizID, "error", err)
		}
	}
	return entries, nil
}

func (s *Service) computeLeaderboard(ctx context.Context, quizID uint) ([]models.LeaderboardEntry, error) {
	attempts, err := s.repo.ListAttempts(ctx, store.AttemptFilter{QuizID: quizID})
	if err != nil {
		return nil, fmt.Errorf("leaderboard for quiz %d: %w", quizID, err)
	}

	best := make(map[string]float64)
	for _, a := range attempts {
		if !a.IsCompleted() {
			continue
		}
		if pct, seen := best[a.UserID]; !seen || a.Percentage() > pct {
			best[a.UserID] = a.Percentage()
		}
	}

	entries := make([]models.LeaderboardEntry, 0, len(best))
	for userID, pct := range best {
		entries = append(entries, models.LeaderboardEntry{
			UserID:     userID,
			Name:       s.userName(ctx, userID),
			Percentage: pct,
		})
	}
	sortLeaderboard(entries)
	return entries, nil
}

// refreshLeaderboard rebuilds the cached board after a score changed.
func (s *Service) refreshLeaderboard(ctx context.Context, quizID uint) {
	if s.cache == nil {
		return
	}
	entries, err := s.computeLeaderboard(ctx, quizID)
	if err == nil {
		err = s.cache.SetLeaderboard(ctx, quizID, entries)
	}
	if err != nil {
		s.log.Warn("leaderboard refresh failed", "quiz_id", quizID, "error", err)
	}
}

func sortLeaderboard(entries []models.LeaderboardEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Percentage != entries[j].Percentage {
			return entries[i].Percentage > entries[j].Percentage
		}
		return entries[i].UserID < entries[j].UserID
	})
}

func nameOr(names map[string]string, id string) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return "Unknown User"
}
