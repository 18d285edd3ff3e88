package redis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/cascaoconcurseiro/diariofinanceiro/internal/domain"
)

// SnapshotStore implements usecase.SnapshotStore on Redis. Snapshots are
// stored as JSON under one key per period, without TTL; invalidation marks
// them in place, it never deletes.
type SnapshotStore struct {
	client *redis.Client
	prefix string
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(client *redis.Client) *SnapshotStore {
	return &SnapshotStore{
		client: client,
		prefix: "snapshot:",
	}
}

// Get retrieves a snapshot by period key.
func (s *SnapshotStore) Get(ctx context.Context, key domain.PeriodKey) (*domain.PeriodSnapshot, error) {
	data, err := s.client.Get(ctx, s.prefix+string(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, err
	}

	var snap domain.PeriodSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}

	return &snap, nil
}

// Set upserts a snapshot.
func (s *SnapshotStore) Set(ctx context.Context, snapshot *domain.PeriodSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, s.prefix+string(snapshot.PeriodKey), data, 0).Err()
}

// InvalidateFrom scans every stored period and marks the ones whose range
// ends on or after the given date. Returns the number of periods marked.
func (s *SnapshotStore) InvalidateFrom(ctx context.Context, date domain.Date) (int, error) {
	marked := 0

	iter := s.client.Scan(ctx, 0, s.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		redisKey := iter.Val()
		periodKey := domain.PeriodKey(redisKey[len(s.prefix):])

		if !periodKey.EndsOnOrAfter(date) {
			continue
		}

		data, err := s.client.Get(ctx, redisKey).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return marked, err
		}

		var snap domain.PeriodSnapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return marked, err
		}

		if snap.Invalidated {
			continue
		}

		snap.Invalidated = true

		updated, err := json.Marshal(&snap)
		if err != nil {
			return marked, err
		}

		if err := s.client.Set(ctx, redisKey, updated, 0).Err(); err != nil {
			return marked, err
		}

		marked++
	}

	if err := iter.Err(); err != nil {
		return marked, err
	}

	return marked, nil
}
