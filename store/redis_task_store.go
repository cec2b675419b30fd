package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/smolenkov/unarch-bot/types"
)

// RedisTaskStore keeps the registry of in-flight tasks, one entry per
// user. Entries carry a TTL so a crashed worker cannot wedge a user
// forever.
type RedisTaskStore struct {
	client *RedisClient
	ttl    time.Duration
}

func NewRedisTaskStore(redisClient *RedisClient, ttl time.Duration) *RedisTaskStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &RedisTaskStore{
		client: redisClient,
		ttl:    ttl,
	}
}

func (s *RedisTaskStore) taskKey(userID int64) string {
	return s.client.generateKey("task", fmt.Sprintf("%d", userID))
}

func (s *RedisTaskStore) AddOngoingTask(ctx context.Context, task *types.OngoingTask) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if task.StartedAt.IsZero() {
		task.StartedAt = time.Now().UTC()
	}

	return s.client.Set(ctx, s.taskKey(task.UserID), task, s.ttl)
}

func (s *RedisTaskStore) GetOngoingTask(ctx context.Context, userID int64) (*types.OngoingTask, error) {
	var task types.OngoingTask
	if err := s.client.Get(ctx, s.taskKey(userID), &task); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &task, nil
}

func (s *RedisTaskStore) UpdateOngoingTask(ctx context.Context, task *types.OngoingTask) error {
	return s.client.Set(ctx, s.taskKey(task.UserID), task, s.ttl)
}

func (s *RedisTaskStore) HasOngoingTask(ctx context.Context, userID int64) (bool, error) {
	return s.client.Exists(ctx, s.taskKey(userID))
}

func (s *RedisTaskStore) CountOngoingTasks(ctx context.Context) (int, error) {
	keys, err := s.client.Keys(ctx, s.client.generateKey("task", "*"))
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (s *RedisTaskStore) ListOngoingTasks(ctx context.Context) ([]*types.OngoingTask, error) {
	keys, err := s.client.Keys(ctx, s.client.generateKey("task", "*"))
	if err != nil {
		return nil, err
	}

	tasks := make([]*types.OngoingTask, 0, len(keys))
	for _, key := range keys {
		var task types.OngoingTask
		if err := s.client.Get(ctx, key, &task); err != nil {
			continue
		}
		tasks = append(tasks, &task)
	}

	return tasks, nil
}

func (s *RedisTaskStore) DelOngoingTask(ctx context.Context, userID int64) error {
	return s.client.Del(ctx, s.taskKey(userID))
}

func (s *RedisTaskStore) PurgeOngoingTasks(ctx context.Context) (int, error) {
	keys, err := s.client.Keys(ctx, s.client.generateKey("task", "*"))
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, key := range keys {
		if err := s.client.Del(ctx, key); err != nil {
			continue
		}
		purged++
	}

	return purged, nil
}
