// pkg/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"quizmaker/internal/models"
	"quizmaker/internal/quiz"
)

const ttl = 24 * time.Hour

// RedisCache stores quizzes as JSON and leaderboards as sorted sets keyed
// by user id, with a companion hash for display names.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(addr string) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisCache{client: client}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func quizKey(id uint) string { return "quiz:" + strconv.FormatUint(uint64(id), 10) }

func leaderboardKey(quizID uint) string {
	return "leaderboard:" + strconv.FormatUint(uint64(quizID), 10)
}

func namesKey(quizID uint) string { return leaderboardKey(quizID) + ":names" }

func (c *RedisCache) SetQuiz(ctx context.Context, q *models.Quiz) error {
	data, err := json.Marshal(q)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, quizKey(q.ID), data, ttl).Err()
}

func (c *RedisCache) GetQuiz(ctx context.Context, id uint) (*models.Quiz, error) {
	data, err := c.client.Get(ctx, quizKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("quiz %d: %w", id, quiz.ErrCacheMiss)
	}
	if err != nil {
		return nil, err
	}

	var q models.Quiz
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// SetLeaderboard replaces the stored board for the quiz.
func (c *RedisCache) SetLeaderboard(ctx context.Context, quizID uint, entries []models.LeaderboardEntry) error {
	key, names := leaderboardKey(quizID), namesKey(quizID)

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key, names)
		for _, entry := range entries {
			pipe.ZAdd(ctx, key, &redis.Z{
				Score:  entry.Percentage,
				Member: entry.UserID,
			})
			pipe.HSet(ctx, names, entry.UserID, entry.Name)
		}
		pipe.Expire(ctx, key, ttl)
		pipe.Expire(ctx, names, ttl)
		return nil
	})
	return err
}

// GetLeaderboard returns entries by percentage, highest first. Ties are
// ordered by user id.
func (c *RedisCache) GetLeaderboard(ctx context.Context, quizID uint) ([]models.LeaderboardEntry, error) {
	key := leaderboardKey(quizID)

	exists, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, fmt.Errorf("leaderboard %d: %w", quizID, quiz.ErrCacheMiss)
	}

	results, err := c.client.ZRevRangeWithScores(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	names, err := c.client.HGetAll(ctx, namesKey(quizID)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]models.LeaderboardEntry, len(results))
	for i, z := range results {
		userID, _ := z.Member.(string)
		entries[i] = models.LeaderboardEntry{
			UserID:     userID,
			Name:       names[userID],
			Percentage: z.Score,
		}
	}
	sortByScoreThenUser(entries)
	return entries, nil
}

func sortByScoreThenUser(entries []models.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Percentage != entries[j].Percentage {
			return entries[i].Percentage > entries[j].Percentage
		}
		return entries[i].UserID < entries[j].UserID
	})
}
