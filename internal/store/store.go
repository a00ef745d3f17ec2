package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"yasno-exporter/internal/schedule"
)

const snapshotKey = "yasno:snapshot"

// Store persists the last good Schedule in Redis so a restarted
// exporter serves data before its first upstream fetch completes.
// It holds a single value, not history.
type Store struct {
	client *redis.Client
}

func New(redisURL string) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// Save overwrites the stored snapshot.
func (s *Store) Save(ctx context.Context, sched *schedule.Schedule) error {
	payload, err := encodeSnapshot(sched)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, snapshotKey, payload, 0).Err()
}

// Load returns the stored snapshot, or nil if none exists.
func (s *Store) Load(ctx context.Context) (*schedule.Schedule, error) {
	payload, err := s.client.Get(ctx, snapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return decodeSnapshot(payload)
}

func encodeSnapshot(sched *schedule.Schedule) ([]byte, error) {
	payload, err := json.Marshal(sched)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return payload, nil
}

func decodeSnapshot(payload []byte) (*schedule.Schedule, error) {
	var sched schedule.Schedule
	if err := json.Unmarshal(payload, &sched); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &sched, nil
}
