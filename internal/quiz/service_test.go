package quiz

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizmaker/internal/models"
	"quizmaker/internal/store"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type recordingNotifier struct {
	mu     sync.Mutex
	events []models.AttemptEvent
}

func (n *recordingNotifier) AttemptCompleted(ev models.AttemptEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

type fixture struct {
	st      *store.Memory
	service *Service
	clock   *fakeClock
	quiz    *models.Quiz
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedUsers(t *testing.T, st *store.Memory) {
	t.Helper()
	ctx := context.Background()
	for _, u := range []models.User{
		{ID: "u-ada", Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace", Role: models.RoleUser},
		{ID: "u-bob", Email: "bob@example.com", FirstName: "Bob", LastName: "Builder", Role: models.RoleUser},
		{ID: "u-admin", Email: "root@example.com", FirstName: "Root", LastName: "Admin", Role: models.RoleAdmin},
	} {
		u := u
		require.NoError(t, st.CreateUser(ctx, &u))
	}
	require.NoError(t, st.SaveCategory(ctx, &models.Category{ID: 1, Name: "General", IsActive: true}))
	require.NoError(t, st.SaveCategory(ctx, &models.Category{ID: 2, Name: "Archive", IsActive: false}))
}

// twoQuestionQuiz: a 1 point single choice with "A" correct and a 1 point
// true/false with "True" correct.
func twoQuestionQuiz() *models.Quiz {
	return &models.Quiz{
		Title:      "Two Questions",
		CategoryID: 1,
		IsPublic:   true,
		IsActive:   true,
		TimeLimit:  2,
		Questions: []models.Question{
			{
				Text: "Pick A", Type: models.QuestionSingle, Points: 1,
				Options: []models.Option{{Text: "A", IsCorrect: true}, {Text: "B"}},
			},
			{
				Text: "Is it true?", Type: models.QuestionTrueFalse, Points: 1,
				Options: []models.Option{{Text: "True", IsCorrect: true}, {Text: "False"}},
			},
		},
	}
}

func newFixture(t *testing.T, cache Cache, notifier Notifier, policy ShortAnswerPolicy) *fixture {
	t.Helper()

	st := store.NewMemory()
	seedUsers(t, st)

	service := NewService(st, cache, notifier, policy, discardLogger())
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	service.now = clock.now

	quiz := twoQuestionQuiz()
	quiz.CreatorID = "u-admin"
	require.NoError(t, service.CreateQuiz(context.Background(), quiz))

	return &fixture{st: st, service: service, clock: clock, quiz: quiz}
}

// optionID finds an option by its text.
func (f *fixture) optionID(t *testing.T, questionIdx int, text string) uint {
	t.Helper()
	for _, opt := range f.quiz.Questions[questionIdx].Options {
		if opt.Text == text {
			return opt.ID
		}
	}
	t.Fatalf("no option %q on question %d", text, questionIdx)
	return 0
}

func (f *fixture) choose(t *testing.T, first, second string) []models.AnswerInput {
	t.Helper()
	return []models.AnswerInput{
		{QuestionID: f.quiz.Questions[0].ID, SelectedOptionIDs: []uint{f.optionID(t, 0, first)}},
		{QuestionID: f.quiz.Questions[1].ID, SelectedOptionIDs: []uint{f.optionID(t, 1, second)}},
	}
}

func TestSubmitAnswers_TwoQuestionScenario(t *testing.T) {
	tests := []struct {
		name          string
		first, second string
		score         int
		percentage    float64
		rating        string
	}{
		{"all correct", "A", "True", 2, 100, "Excellent"},
		{"all wrong", "B", "False", 0, 0, "Keep practicing"},
		{"half", "A", "False", 1, 50, "Fair"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil, nil, PolicyAccept)
			ctx := context.Background()

			attempt, err := f.service.StartAttempt(ctx, f.quiz.ID, "u-ada")
			require.NoError(t, err)
			assert.Equal(t, 2, attempt.MaxScore)

			result, err := f.service.SubmitAnswers(ctx, attempt.ID, f.choose(t, tt.first, tt.second))
			require.NoError(t, err)
			assert.Equal(t, tt.score, result.Score)
			assert.Equal(t, 2, result.MaxScore)
			assert.InDelta(t, tt.percentage, result.Percentage, 0.001)
			assert.Equal(t, tt.rating, result.Rating)

			stored, err := f.st.GetAttempt(ctx, attempt.ID)
			require.NoError(t, err)
			assert.True(t, stored.IsCompleted())
			assert.Len(t, stored.Answers, 2)
			assert.Equal(t, tt.score, totalPoints(stored.Answers))
			for _, a := range stored.Answers {
				assert.NotZero(t, a.ID)
			}
		})
	}
}

func TestStartAttempt_MaxScoreIsSumOfPoints(t *testing.T) {
	st := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, store.Seed(ctx, st, func(p string) (string, error) { return "hash:" + p, nil }))
	service := NewService(st, nil, nil, PolicyAccept, discardLogger())

	quizzes, err := service.ListAvailable(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, quizzes)

	for _, q := range quizzes {
		want := 0
		for _, question := range q.Questions {
			want += question.Points
		}
		attempt, err := service.StartAttempt(ctx, q.ID, store.DemoUserID)
		require.NoError(t, err)
		assert.Equal(t, want, attempt.MaxScore, q.Title)
	}
}

func TestStartAttempt_Errors(t *testing.T) {
	f := newFixture(t, nil, nil, PolicyAccept)
	ctx := context.Background()

	_, err := f.service.StartAttempt(ctx, 999, "u-ada")
	assert.ErrorIs(t, err, ErrQuizNotFound)
	assert.ErrorIs(t, err, store.ErrNotFound)

	empty := &models.Quiz{Title: "Empty", CategoryID: 1, IsActive: true, IsPublic: true}
	require.NoError(t, f.st.CreateQuiz(ctx, empty))
	_, err = f.service.StartAttempt(ctx, empty.ID, "u-ada")
	assert.ErrorIs(t, err, ErrNoQuestions)
}

func TestStartAttempt_AllowsConcurrentAttempts(t *testing.T) {
	f := newFixture(t, nil, nil, PolicyAccept)
	ctx := context.Background()

	first, err := f.service.StartAttempt(ctx, f.quiz.ID, "u-ada")
	require.NoError(t, err)
	second, err := f.service.StartAttempt(ctx, f.quiz.ID, "u-ada")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestSubmitAnswers_ClosedAttempt(t *testing.T) {
	f := newFixture(t, nil, nil, PolicyAccept)
	ctx := context.Background()

	attempt, err := f.service.StartAttempt(ctx, f.quiz.ID, "u-ada")
	require.NoError(t, err)
	_, err = f.service.SubmitAnswers(ctx, attempt.ID, f.choose(t, "A", "True"))
	require.NoError(t, err)

	_, err = f.service.SubmitAnswers(ctx, attempt.ID, f.choose(t, "B", "False"))
	assert.ErrorIs(t, err, ErrAttemptClosed)

	stored, err := f.st.GetAttempt(ctx, attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Score)

	_, err = f.service.SubmitAnswers(ctx, 12345, nil)
	assert.ErrorIs(t, err, ErrAttemptNotFound)
}

func TestSubmitAnswers_ConcurrentSubmitsCloseOnce(t *testing.T) {
	f := newFixture(t, nil, nil, PolicyAccept)
	ctx := context.Background()

	for run := 0; run < 20; run++ {
		attempt, err := f.service.StartAttempt(ctx, f.quiz.ID, "u-ada")
		require.NoError(t, err)

		picks := [][2]string{{"A", "True"}, {"B", "False"}}
		errs := make([]error, len(picks))
		var wg sync.WaitGroup
		for i, pick := range picks {
			wg.Add(1)
			go func(i int, inputs []models.AnswerInput) {
				defer wg.Done()
				_, errs[i] = f.service.SubmitAnswers(ctx, attempt.ID, inputs)
			}(i, f.choose(t, pick[0], pick[1]))
		}
		wg.Wait()

		won := 0
		for _, err := range errs {
			if err == nil {
				won++
				continue
			}
			assert.ErrorIs(t, err, ErrAttemptClosed)
		}
		require.Equal(t, 1, won, "run %d", run)

		stored, err := f.st.GetAttempt(ctx, attempt.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Answers, 2)
		assert.Equal(t, totalPoints(stored.Answers), stored.Score)
	}
}

func TestSubmitAnswers_PastTimeLimit(t *testing.T) {
	f := newFixture(t, nil, nil, PolicyAccept)
	ctx := context.Background()

	late, err := f.service.StartAttempt(ctx, f.quiz.ID, "u-ada")
	require.NoError(t, err)
	f.clock.advance(5 * time.Hour)

	_, err = f.service.SubmitAnswers(ctx, late.ID, f.choose(t, "A", "True"))
	assert.ErrorIs(t, err, ErrAttemptClosed)

	stored, err := f.st.GetAttempt(ctx, late.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsExpired())
	assert.False(t, stored.IsCompleted())
	assert.Empty(t, stored.Answers)
	assert.Zero(t, stored.Score)

	// inside the limit plus grace still counts
	onTime, err := f.service.StartAttempt(ctx, f.quiz.ID, "u-ada")
	require.NoError(t, err)
	f.clock.advance(2*time.Minute + submitGrace)

	result, err := f.service.SubmitAnswers(ctx, onTime.ID, f.choose(t, "A", "True"))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Score)

	untimed := twoQuestionQuiz()
	untimed.Title = "Untimed"
	untimed.TimeLimit = 0
	require.NoError(t, f.service.CreateQuiz(ctx, untimed))
	open, err := f.service.StartAttempt(ctx, untimed.ID, "u-ada")
	require.NoError(t, err)
	f.clock.advance(48 * time.Hour)
	_, err = f.service.SubmitAnswers(ctx, open.ID, []models.AnswerInput{
		{QuestionID: untimed.Questions[0].ID, SelectedOptionIDs: []uint{untimed.Questions[0].Options[0].ID}},
	})
	require.NoError(t, err)
}

func TestSubmitAnswers_UnknownAndDuplicateQuestions(t *testing.T) {
	f := newFixture(t, nil, nil, PolicyAccept)
	ctx := context.Background()

	attempt, err := f.service.StartAttempt(ctx, f.quiz.ID, "u-ada")
	require.NoError(t, err)

	inputs := append(f.choose(t, "A", "True"),
		models.AnswerInput{QuestionID: f.quiz.Questions[0].ID, SelectedOptionIDs: []uint{f.optionID(t, 0, "B")}},
		models.AnswerInput{QuestionID: 4242, SelectedOptionIDs: []uint{1}},
	)
	result, err := f.service.SubmitAnswers(ctx, attempt.ID, inputs)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Score)
	require.Len(t, result.Answers, 3)
	unknown := result.Answers[2]
	assert.Equal(t, uint(4242), unknown.QuestionID)
	assert.False(t, unknown.IsCorrect)
	assert.Zero(t, unknown.PointsAwarded)
}

func TestExpireAttempt(t *testing.T) {
	f := newFixture(t, nil, nil, PolicyAccept)
	ctx := context.Background()

	attempt, err := f.service.StartAttempt(ctx, f.quiz.ID, "u-ada")
	require.NoError(t, err)

	f.clock.advance(3 * time.Minute)
	require.NoError(t, f.service.ExpireAttempt(ctx, attempt.ID))

	stored, err := f.st.GetAttempt(ctx, attempt.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsExpired())
	assert.False(t, stored.IsCompleted())
	assert.Empty(t, stored.Answers)
	assert.Equal(t, f.clock.t, *stored.ExpiredAt)

	_, err = f.service.SubmitAnswers(ctx, attempt.ID, f.choose(t, "A", "True"))
	assert.ErrorIs(t, err, ErrAttemptClosed)
	assert.ErrorIs(t, f.service.ExpireAttempt(ctx, attempt.ID), ErrAttemptClosed)

	history, err := f.service.ListUserAttempts(ctx, "u-ada")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestListUserAttempts_NewestFirst(t *testing.T) {
	f := newFixture(t, nil, nil, PolicyAccept)
	ctx := context.Background()

	var ids []uint
	for _, pick := range [][2]string{{"A", "True"}, {"B", "False"}, {"A", "False"}} {
		attempt, err := f.service.StartAttempt(ctx, f.quiz.ID, "u-ada")
		require.NoError(t, err)
		f.clock.advance(time.Minute)
		_, err = f.service.SubmitAnswers(ctx, attempt.ID, f.choose(t, pick[0], pick[1]))
		require.NoError(t, err)
		ids = append(ids, attempt.ID)
	}
	// open attempt and another user's attempt are not listed
	_, err := f.service.StartAttempt(ctx, f.quiz.ID, "u-ada")
	require.NoError(t, err)
	other, err := f.service.StartAttempt(ctx, f.quiz.ID, "u-bob")
	require.NoError(t, err)
	_, err = f.service.SubmitAnswers(ctx, other.ID, f.choose(t, "A", "True"))
	require.NoError(t, err)

	history, err := f.service.ListUserAttempts(ctx, "u-ada")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, ids[2], history[0].Attempt.ID)
	assert.Equal(t, ids[0], history[2].Attempt.ID)
	assert.Equal(t, "Two Questions", history[0].QuizTitle)
}

func TestListAvailable_FiltersHiddenQuizzes(t *testing.T) {
	f := newFixture(t, nil, nil, PolicyAccept)
	ctx := context.Background()

	private := twoQuestionQuiz()
	private.Title = "Private"
	private.IsPublic = false
	require.NoError(t, f.service.CreateQuiz(ctx, private))

	inactive := twoQuestionQuiz()
	inactive.Title = "Inactive"
	inactive.IsActive = false
	require.NoError(t, f.service.CreateQuiz(ctx, inactive))

	quizzes, err := f.service.ListAvailable(ctx)
	require.NoError(t, err)
	require.Len(t, quizzes, 1)
	assert.Equal(t, "Two Questions", quizzes[0].Title)
}

func TestGetQuiz_SortsByOrderIndex(t *testing.T) {
	st := store.NewMemory()
	ctx := context.Background()
	quiz := &models.Quiz{
		Title: "Shuffled", CategoryID: 1,
		Questions: []models.Question{
			{Text: "second", Type: models.QuestionShortAnswer, Points: 1, OrderIndex: 2},
			{Text: "first", Type: models.QuestionSingle, Points: 1, OrderIndex: 1, Options: []models.Option{
				{Text: "y", OrderIndex: 2}, {Text: "x", OrderIndex: 1, IsCorrect: true},
			}},
		},
	}
	require.NoError(t, st.CreateQuiz(ctx, quiz))

	service := NewService(st, nil, nil, PolicyAccept, discardLogger())
	got, err := service.GetQuiz(ctx, quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Questions[0].Text)
	assert.Equal(t, "x", got.Questions[0].Options[0].Text)
	assert.Equal(t, "second", got.Questions[1].Text)
}

func TestShortAnswerReview(t *testing.T) {
	f := newFixture(t, nil, nil, PolicyReview)
	ctx := context.Background()

	quiz := &models.Quiz{
		Title: "Essay", CategoryID: 1, IsActive: true, IsPublic: true,
		Questions: []models.Question{
			{Text: "Explain goroutines", Type: models.QuestionShortAnswer, Points: 3},
			{Text: "Explain channels", Type: models.QuestionShortAnswer, Points: 2},
		},
	}
	require.NoError(t, f.service.CreateQuiz(ctx, quiz))

	attempt, err := f.service.StartAttempt(ctx, quiz.ID, "u-bob")
	require.NoError(t, err)
	result, err := f.service.SubmitAnswers(ctx, attempt.ID, []models.AnswerInput{
		{QuestionID: quiz.Questions[0].ID, TextAnswer: "cheap threads"},
		{QuestionID: quiz.Questions[1].ID, TextAnswer: "   "},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Score)
	assert.Equal(t, models.ReviewPending, result.Answers[0].ReviewStatus)
	assert.Equal(t, models.ReviewGraded, result.Answers[1].ReviewStatus)

	pending, err := f.service.PendingReviews(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Explain goroutines", pending[0].QuestionText)
	assert.Equal(t, "Essay", pending[0].QuizTitle)
	assert.Equal(t, "Bob Builder", pending[0].UserName)
	assert.Equal(t, 3, pending[0].Points)

	reviewed, err := f.service.ReviewAnswer(ctx, pending[0].Answer.ID, true)
	require.NoError(t, err)
	assert.True(t, reviewed.IsCorrect)
	assert.Equal(t, 3, reviewed.PointsAwarded)

	stored, err := f.st.GetAttempt(ctx, attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Score)
	assert.Equal(t, totalPoints(stored.Answers), stored.Score)

	_, err = f.service.ReviewAnswer(ctx, pending[0].Answer.ID, false)
	assert.ErrorIs(t, err, ErrNotPending)
	_, err = f.service.ReviewAnswer(ctx, 9999, true)
	assert.ErrorIs(t, err, ErrAnswerNotFound)

	pending, err = f.service.PendingReviews(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestCreateQuiz_Validation(t *testing.T) {
	f := newFixture(t, nil, nil, PolicyAccept)
	ctx := context.Background()

	bad := &models.Quiz{
		CategoryID: 2,
		TimeLimit:  -1,
		Questions: []models.Question{
			{Text: "tf", Type: models.QuestionTrueFalse, Points: 1, Options: []models.Option{{Text: "True"}}},
			{Text: "", Type: models.QuestionSingle, Points: 0, Options: []models.Option{{Text: "a", IsCorrect: true}, {Text: "b", IsCorrect: true}}},
			{Text: "multi", Type: models.QuestionMultiple, Points: 1, Options: []models.Option{{Text: "a"}, {Text: "b"}}},
			{Text: "short", Type: models.QuestionShortAnswer, Points: 1, Options: []models.Option{{Text: "a"}}},
			{Text: "odd", Type: "essay", Points: 1},
		},
	}
	err := f.service.CreateQuiz(ctx, bad)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.ErrorIs(t, err, ErrInvalidQuiz)
	assert.Equal(t, []string{
		"Title is required",
		`Category "Archive" is not active`,
		"Time limit cannot be negative",
		"Question 1: true/false needs exactly two options",
		"Question 1: exactly one option must be correct",
		"Question 2: text is required",
		"Question 2: points must be at least 1",
		"Question 2: exactly one option must be correct",
		"Question 3: at least one option must be correct",
		"Question 4: short answer questions take no options",
		`Question 5: unknown type "essay"`,
	}, verr.Problems)

	err = f.service.CreateQuiz(ctx, &models.Quiz{Title: "Nothing", CategoryID: 7})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"Category 7 does not exist", "At least one question is required"}, verr.Problems)
}

func TestCreateQuiz_AssignsOrder(t *testing.T) {
	f := newFixture(t, nil, nil, PolicyAccept)

	assert.NotZero(t, f.quiz.ID)
	for i, q := range f.quiz.Questions {
		assert.Equal(t, i+1, q.OrderIndex)
		assert.NotZero(t, q.ID)
		for j, opt := range q.Options {
			assert.Equal(t, j+1, opt.OrderIndex)
		}
	}
	assert.Equal(t, f.clock.t, f.quiz.CreatedAt)
}

func TestStats(t *testing.T) {
	f := newFixture(t, nil, nil, PolicyAccept)
	ctx := context.Background()

	empty, err := f.service.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "None", empty.MostActiveUser)
	assert.Equal(t, "None", empty.MostPopularQuiz)
	assert.Equal(t, 3, empty.Totals.Users)
	assert.Equal(t, 1, empty.Totals.Quizzes)
	assert.Equal(t, 2, empty.Totals.Questions)
	assert.Equal(t, 1, empty.Totals.ActiveCategories)

	play := func(user, first, second string) {
		attempt, err := f.service.StartAttempt(ctx, f.quiz.ID, user)
		require.NoError(t, err)
		f.clock.advance(time.Minute)
		_, err = f.service.SubmitAnswers(ctx, attempt.ID, f.choose(t, first, second))
		require.NoError(t, err)
	}
	play("u-ada", "A", "True")
	play("u-ada", "B", "True")
	play("u-bob", "B", "False")

	expired, err := f.service.StartAttempt(ctx, f.quiz.ID, "u-bob")
	require.NoError(t, err)
	require.NoError(t, f.service.ExpireAttempt(ctx, expired.ID))

	stats, err := f.service.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Totals.Attempts)
	assert.Equal(t, 3, stats.CompletedAttempts)
	assert.Equal(t, 1, stats.ExpiredAttempts)
	assert.Equal(t, 3, stats.TotalPoints)
	assert.InDelta(t, 50, stats.OverallAverage, 0.001)
	assert.Equal(t, "Ada Lovelace (2 attempts)", stats.MostActiveUser)
	assert.Equal(t, "Two Questions (3 attempts)", stats.MostPopularQuiz)

	require.Len(t, stats.PerQuiz, 1)
	qs := stats.PerQuiz[0]
	assert.Equal(t, 3, qs.Attempts)
	assert.InDelta(t, 100, qs.Highest, 0.001)
	assert.InDelta(t, 0, qs.Lowest, 0.001)
	require.Len(t, qs.RecentAttempts, 3)
	assert.Equal(t, "Bob Builder", qs.RecentAttempts[0].UserName)
}

func TestLeaderboard(t *testing.T) {
	f := newFixture(t, nil, nil, PolicyAccept)
	ctx := context.Background()

	for _, p := range []struct{ user, first, second string }{
		{"u-ada", "B", "False"},
		{"u-bob", "A", "False"},
		{"u-ada", "A", "True"},
	} {
		attempt, err := f.service.StartAttempt(ctx, f.quiz.ID, p.user)
		require.NoError(t, err)
		_, err = f.service.SubmitAnswers(ctx, attempt.ID, f.choose(t, p.first, p.second))
		require.NoError(t, err)
	}

	board, err := f.service.Leaderboard(ctx, f.quiz.ID)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, models.LeaderboardEntry{UserID: "u-ada", Name: "Ada Lovelace", Percentage: 100}, board[0])
	assert.Equal(t, models.LeaderboardEntry{UserID: "u-bob", Name: "Bob Builder", Percentage: 50}, board[1])

	_, err = f.service.Leaderboard(ctx, 404)
	assert.ErrorIs(t, err, ErrQuizNotFound)
}

type mapCache struct {
	quizzes    map[uint]models.Quiz
	boards     map[uint][]models.LeaderboardEntry
	quizHits   int
	boardHits  int
	failWrites bool
}

func newMapCache() *mapCache {
	return &mapCache{quizzes: map[uint]models.Quiz{}, boards: map[uint][]models.LeaderboardEntry{}}
}

func (c *mapCache) GetQuiz(_ context.Context, id uint) (*models.Quiz, error) {
	q, ok := c.quizzes[id]
	if !ok {
		return nil, fmt.Errorf("quiz %d: %w", id, ErrCacheMiss)
	}
	c.quizHits++
	return &q, nil
}

func (c *mapCache) SetQuiz(_ context.Context, quiz *models.Quiz) error {
	if c.failWrites {
		return errors.New("cache down")
	}
	c.quizzes[quiz.ID] = *quiz
	return nil
}

func (c *mapCache) GetLeaderboard(_ context.Context, quizID uint) ([]models.LeaderboardEntry, error) {
	b, ok := c.boards[quizID]
	if !ok {
		return nil, ErrCacheMiss
	}
	c.boardHits++
	return b, nil
}

func (c *mapCache) SetLeaderboard(_ context.Context, quizID uint, entries []models.LeaderboardEntry) error {
	if c.failWrites {
		return errors.New("cache down")
	}
	c.boards[quizID] = entries
	return nil
}

func TestCacheAndNotifier(t *testing.T) {
	cache := newMapCache()
	notifier := &recordingNotifier{}
	f := newFixture(t, cache, notifier, PolicyAccept)
	ctx := context.Background()

	_, err := f.service.GetQuiz(ctx, f.quiz.ID)
	require.NoError(t, err)
	_, err = f.service.GetQuiz(ctx, f.quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.quizHits)

	attempt, err := f.service.StartAttempt(ctx, f.quiz.ID, "u-ada")
	require.NoError(t, err)
	_, err = f.service.SubmitAnswers(ctx, attempt.ID, f.choose(t, "A", "True"))
	require.NoError(t, err)

	require.Len(t, cache.boards[f.quiz.ID], 1)
	board, err := f.service.Leaderboard(ctx, f.quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.boardHits)
	assert.Equal(t, "u-ada", board[0].UserID)

	require.Len(t, notifier.events, 1)
	ev := notifier.events[0]
	assert.Equal(t, attempt.ID, ev.AttemptID)
	assert.Equal(t, "Ada Lovelace", ev.UserName)
	assert.Equal(t, "Two Questions", ev.QuizTitle)
	assert.Equal(t, "Excellent", ev.Rating)
}

func TestCacheFailuresAreNotFatal(t *testing.T) {
	cache := newMapCache()
	cache.failWrites = true
	f := newFixture(t, cache, nil, PolicyAccept)
	ctx := context.Background()

	attempt, err := f.service.StartAttempt(ctx, f.quiz.ID, "u-ada")
	require.NoError(t, err)
	result, err := f.service.SubmitAnswers(ctx, attempt.ID, f.choose(t, "A", "True"))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Score)

	board, err := f.service.Leaderboard(ctx, f.quiz.ID)
	require.NoError(t, err)
	assert.Len(t, board, 1)
}
