package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"quiz-assessment/internal/models"
)

const popularityKey = "quizzes:popularity"

type RedisCache struct {
	client *redis.Client
	ctx    context.Context
}

func NewRedisCache(addr string) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisCache{
		client: client,
		ctx:    context.Background(),
	}
}

func (c *RedisCache) SetQuiz(quiz *models.Quiz) error {
	data, err := json.Marshal(quiz)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("quiz:%d", quiz.ID)
	return c.client.Set(c.ctx, key, data, 24*time.Hour).Err()
}

func (c *RedisCache) GetQuiz(id uint) (*models.Quiz, error) {
	key := fmt.Sprintf("quiz:%d", id)
	data, err := c.client.Get(c.ctx, key).Bytes()
	if err != nil {
		return nil, err
	}

	var quiz models.Quiz
	err = json.Unmarshal(data, &quiz)
	return &quiz, err
}

func (c *RedisCache) InvalidateQuiz(id uint) error {
	return c.client.Del(c.ctx, fmt.Sprintf("quiz:%d", id)).Err()
}

// SaveAttempt stores the selected question subset for one attempt. The TTL is
// the quiz duration plus grace; an expired attempt simply vanishes.
func (c *RedisCache) SaveAttempt(attempt *models.Attempt, ttl time.Duration) error {
	data, err := json.Marshal(attempt)
	if err != nil {
		return err
	}
	return c.client.Set(c.ctx, "attempt:"+attempt.ID, data, ttl).Err()
}

func (c *RedisCache) GetAttempt(id string) (*models.Attempt, error) {
	data, err := c.client.Get(c.ctx, "attempt:"+id).Bytes()
	if err != nil {
		return nil, err
	}

	var attempt models.Attempt
	err = json.Unmarshal(data, &attempt)
	return &attempt, err
}

// DeleteAttempt removes a consumed attempt so it cannot be scored twice.
func (c *RedisCache) DeleteAttempt(id string) error {
	return c.client.Del(c.ctx, "attempt:"+id).Err()
}

// BumpPopularity mirrors the postgres popularity counter into a sorted set
// used for the popular-quizzes ranking.
func (c *RedisCache) BumpPopularity(quizID uint) error {
	return c.client.ZIncrBy(c.ctx, popularityKey, 1, fmt.Sprintf("%d", quizID)).Err()
}

// TopQuizIDs returns quiz IDs ordered by popularity, highest first.
func (c *RedisCache) TopQuizIDs(limit int64) ([]uint, error) {
	members, err := c.client.ZRevRange(c.ctx, popularityKey, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}
