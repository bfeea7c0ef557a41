// internal/quiz/service.go
package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"quizmaker/internal/models"
	"quizmaker/internal/store"
)

// submitGrace is how late a submission may arrive after the time limit.
const submitGrace = 10 * time.Second

type Service struct {
	repo     Repository
	cache    Cache
	notifier Notifier
	policy   ShortAnswerPolicy
	log      *slog.Logger
	now      func() time.Time
}

// NewService wires the quiz service. cache and notifier may be nil.
func NewService(repo Repository, cache Cache, notifier Notifier, policy ShortAnswerPolicy, log *slog.Logger) *Service {
	if policy == "" {
		policy = PolicyAccept
	}
	return &Service{
		repo:     repo,
		cache:    cache,
		notifier: notifier,
		policy:   policy,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Policy() ShortAnswerPolicy { return s.policy }

// ListAvailable returns the active public quizzes in insertion order.
func (s *Service) ListAvailable(ctx context.Context) ([]models.Quiz, error) {
	quizzes, err := s.repo.ListQuizzes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}

	available := make([]models.Quiz, 0, len(quizzes))
	for _, q := range quizzes {
		if q.IsActive && q.IsPublic {
			available = append(available, q)
		}
	}
	return available, nil
}

// GetQuiz returns the quiz with questions and options in display order.
func (s *Service) GetQuiz(ctx context.Context, id uint) (*models.Quiz, error) {
	if s.cache != nil {
		quiz, err := s.cache.GetQuiz(ctx, id)
		if err == nil {
			quiz.SortQuestions()
			return quiz, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			s.log.Warn("quiz cache read failed", "quiz_id", id, "error", err)
		}
	}

	quiz, err := s.repo.GetQuiz(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("get quiz %d: %w", id, ErrQuizNotFound)
		}
		return nil, fmt.Errorf("get quiz %d: %w", id, err)
	}
	quiz.SortQuestions()

	if s.cache != nil {
		if err := s.cache.SetQuiz(ctx, quiz); err != nil {
			s.log.Warn("quiz cache write failed", "quiz_id", id, "error", err)
		}
	}
	return quiz, nil
}

// ActiveCategories lists the categories a new quiz may be filed under.
func (s *Service) ActiveCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	active := categories[:0]
	for _, c := range categories {
		if c.IsActive {
			active = append(active, c)
		}
	}
	return active, nil
}

func (s *Service) StartAttempt(ctx context.Context, quizID uint, userID string) (*models.Attempt, error) {
	quiz, err := s.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if len(quiz.Questions) == 0 {
		return nil, fmt.Errorf("start attempt on quiz %d: %w", quizID, ErrNoQuestions)
	}

	attempt := &models.Attempt{
		QuizID:    quiz.ID,
		UserID:    userID,
		StartedAt: s.now(),
		MaxScore:  quiz.MaxScore(),
	}
	if err := s.repo.CreateAttempt(ctx, attempt); err != nil {
		return nil, fmt.Errorf("start attempt on quiz %d: %w", quizID, err)
	}

	s.log.Info("attempt started", "attempt_id", attempt.ID, "quiz_id", quizID, "user_id", userID)
	return attempt, nil
}

// GetAttempt returns the attempt with its answers.
func (s *Service) GetAttempt(ctx context.Context, id uint) (*models.Attempt, error) {
	attempt, err := s.repo.GetAttempt(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("get attempt %d: %w", id, ErrAttemptNotFound)
		}
		return nil, fmt.Errorf("get attempt %d: %w", id, err)
	}
	return attempt, nil
}

// SubmitAnswers grades the answers and closes the attempt. An attempt can
// be closed only once.
func (s *Service) SubmitAnswers(ctx context.Context, attemptID uint, inputs []models.AnswerInput) (*models.AttemptResult, error) {
	attempt, err := s.GetAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if !attempt.IsOpen() {
		return nil, fmt.Errorf("submit attempt %d: %w", attemptID, ErrAttemptClosed)
	}

	quiz, err := s.GetQuiz(ctx, attempt.QuizID)
	if err != nil {
		return nil, err
	}
	if s.pastDeadline(quiz, attempt) {
		if err := s.expire(ctx, attempt); err != nil && !errors.Is(err, ErrAttemptClosed) {
			s.log.Error("expire late attempt", "attempt_id", attemptID, "error", err)
		}
		return nil, fmt.Errorf("submit attempt %d: time limit exceeded: %w", attemptID, ErrAttemptClosed)
	}

	answered := make(map[uint]bool, len(inputs))
	answers := make([]models.Answer, 0, len(inputs))
	for _, in := range inputs {
		if answered[in.QuestionID] {
			s.log.Debug("duplicate answer ignored", "attempt_id", attemptID, "question_id", in.QuestionID)
			continue
		}
		answered[in.QuestionID] = true

		question, ok := quiz.Question(in.QuestionID)
		if !ok {
			s.log.Warn("answer for unknown question", "attempt_id", attemptID, "question_id", in.QuestionID)
			answers = append(answers, models.Answer{
				AttemptID:         attemptID,
				QuestionID:        in.QuestionID,
				SelectedOptionIDs: dedupe(in.SelectedOptionIDs),
				TextAnswer:        in.TextAnswer,
				ReviewStatus:      models.ReviewGraded,
			})
			continue
		}

		answer := Grade(question, in, s.policy)
		answer.AttemptID = attemptID
		answers = append(answers, answer)
	}

	completedAt := s.now()
	attempt.Answers = answers
	attempt.Score = totalPoints(answers)
	attempt.CompletedAt = &completedAt
	if err := s.repo.CloseAttempt(ctx, attempt); err != nil {
		return nil, fmt.Errorf("submit attempt %d: %w", attemptID, closeError(err))
	}

	result := &models.AttemptResult{
		AttemptID:   attempt.ID,
		QuizID:      attempt.QuizID,
		Score:       attempt.Score,
		MaxScore:    attempt.MaxScore,
		Percentage:  attempt.Percentage(),
		Rating:      Rating(attempt.Percentage()),
		CompletedAt: completedAt,
		Answers:     attempt.Answers,
	}

	s.log.Info("attempt submitted",
		"attempt_id", attempt.ID,
		"quiz_id", attempt.QuizID,
		"user_id", attempt.UserID,
		"score", attempt.Score,
		"max_score", attempt.MaxScore,
	)

	s.refreshLeaderboard(ctx, attempt.QuizID)
	s.notify(ctx, quiz, attempt, result)
	return result, nil
}

// ExpireAttempt closes an attempt whose time ran out. Nothing collected
// for it is kept.
func (s *Service) ExpireAttempt(ctx context.Context, attemptID uint) error {
	attempt, err := s.GetAttempt(ctx, attemptID)
	if err != nil {
		return err
	}
	return s.expire(ctx, attempt)
}

func (s *Service) expire(ctx context.Context, attempt *models.Attempt) error {
	if !attempt.IsOpen() {
		return fmt.Errorf("expire attempt %d: %w", attempt.ID, ErrAttemptClosed)
	}

	expiredAt := s.now()
	attempt.ExpiredAt = &expiredAt
	attempt.Score = 0
	attempt.Answers = nil
	if err := s.repo.CloseAttempt(ctx, attempt); err != nil {
		return fmt.Errorf("expire attempt %d: %w", attempt.ID, closeError(err))
	}

	s.log.Info("attempt expired", "attempt_id", attempt.ID, "user_id", attempt.UserID)
	return nil
}

// pastDeadline allows submitGrace on top of the time limit for answers
// still in flight when the clock ran out.
func (s *Service) pastDeadline(quiz *models.Quiz, attempt *models.Attempt) bool {
	if quiz.TimeLimit <= 0 {
		return false
	}
	limit := time.Duration(quiz.TimeLimit)*time.Minute + submitGrace
	return s.now().Sub(attempt.StartedAt) > limit
}

// closeError reports a lost race to close an attempt as ErrAttemptClosed.
func closeError(err error) error {
	if errors.Is(err, store.ErrClosed) {
		return ErrAttemptClosed
	}
	return err
}

// ListUserAttempts returns the user's completed attempts, newest first.
func (s *Service) ListUserAttempts(ctx context.Context, userID string) ([]models.AttemptSummary, error) {
	attempts, err := s.repo.ListAttempts(ctx, store.AttemptFilter{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("list attempts for %s: %w", userID, err)
	}

	completed := completedNewestFirst(attempts)
	titles := make(map[uint]string)
	summaries := make([]models.AttemptSummary, 0, len(completed))
	for _, a := range completed {
		title, ok := titles[a.QuizID]
		if !ok {
			title = s.quizTitle(ctx, a.QuizID)
			titles[a.QuizID] = title
		}
		summaries = append(summaries, models.AttemptSummary{Attempt: a, QuizTitle: title})
	}
	return summaries, nil
}

func (s *Service) quizTitle(ctx context.Context, id uint) string {
	quiz, err := s.GetQuiz(ctx, id)
	if err != nil {
		return "Unknown Quiz"
	}
	return quiz.Title
}

func (s *Service) userName(ctx context.Context, id string) string {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return "Unknown User"
	}
	return user.FullName()
}

func (s *Service) notify(ctx context.Context, quiz *models.Quiz, attempt *models.Attempt, result *models.AttemptResult) {
	if s.notifier == nil {
		return
	}
	s.notifier.AttemptCompleted(models.AttemptEvent{
		AttemptID:   attempt.ID,
		QuizID:      quiz.ID,
		QuizTitle:   quiz.Title,
		UserID:      attempt.UserID,
		UserName:    s.userName(ctx, attempt.UserID),
		Score:       result.Score,
		MaxScore:    result.MaxScore,
		Percentage:  result.Percentage,
		Rating:      result.Rating,
		CompletedAt: result.CompletedAt,
	})
}

func totalPoints(answers []models.Answer) int {
	total := 0
	for _, a := range answers {
		total += a.PointsAwarded
	}
	return total
}

func completedNewestFirst(attempts []models.Attempt) []models.Attempt {
	completed := make([]models.Attempt, 0, len(attempts))
	for _, a := range attempts {
		if a.IsCompleted() {
			completed = append(completed, a)
		}
	}
	sort.SliceStable(completed, func(i, j int) bool {
		return completed[i].CompletedAt.After(*completed[j].CompletedAt)
	})
	return completed
}
