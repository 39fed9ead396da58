package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type redisSlot struct {
	redisClient *redis.Client
	key         string
}

func NewRedisSlot(redisClient *redis.Client, slot string) SlotRepository {
	return &redisSlot{
		redisClient: redisClient,
		key:         "fipe:slot:" + slot,
	}
}

func (s *redisSlot) Load(ctx context.Context) ([]byte, error) {
	val, err := s.redisClient.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Slot never written
		}
		return nil, fmt.Errorf("failed to get slot %s: %w", s.key, err)
	}
	return val, nil
}

func (s *redisSlot) Save(ctx context.Context, data []byte) error {
	err := s.redisClient.Set(ctx, s.key, data, 0).Err() // No expiration
	if err != nil {
		return fmt.Errorf("failed to set slot %s: %w", s.key, err)
	}
	return nil
}

func (s *redisSlot) Ping(ctx context.Context) error {
	return s.redisClient.Ping(ctx).Err()
}
