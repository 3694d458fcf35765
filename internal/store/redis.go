package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"medical-intake-assistant/internal/intake"
)

// RedisStore keeps preferences as plain keys without expiry.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func languageKey(deviceID string) string {
	return fmt.Sprintf("device:%s:language", deviceID)
}

func profileKey(deviceID string) string {
	return fmt.Sprintf("device:%s:profile", deviceID)
}

func (s *RedisStore) Language(ctx context.Context, deviceID string) (string, error) {
	defer observe("redis", "language", time.Now())

	lang, err := s.client.Get(ctx, languageKey(deviceID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return lang, err
}

func (s *RedisStore) SetLanguage(ctx context.Context, deviceID, lang string) error {
	defer observe("redis", "set_language", time.Now())
	return s.client.Set(ctx, languageKey(deviceID), lang, 0).Err()
}

func (s *RedisStore) Profile(ctx context.Context, deviceID string) (intake.Profile, error) {
	defer observe("redis", "profile", time.Now())

	data, err := s.client.Get(ctx, profileKey(deviceID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return intake.Profile{}, ErrNotFound
	}
	if err != nil {
		return intake.Profile{}, err
	}

	var p intake.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return intake.Profile{}, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	return p, nil
}

func (s *RedisStore) SaveProfile(ctx context.Context, deviceID string, p intake.Profile) error {
	defer observe("redis", "save_profile", time.Now())

	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, profileKey(deviceID), data, 0).Err()
}

func (s *RedisStore) DeleteProfile(ctx context.Context, deviceID string) error {
	defer observe("redis", "delete_profile", time.Now())
	return s.client.Del(ctx, profileKey(deviceID)).Err()
}
