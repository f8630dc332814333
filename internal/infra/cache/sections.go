package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"academy-api/internal/pkg/errs"
	"academy-api/internal/usecase/queries"
)

const availableSectionsKey = "sections:available"

// SectionCache keeps the available-sections listing in redis. Every
// seat-affecting command invalidates it after commit.
type SectionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSectionCache(client *redis.Client, ttl time.Duration) *SectionCache {
	return &SectionCache{client: client, ttl: ttl}
}

func (c *SectionCache) GetAvailable(ctx context.Context) ([]*queries.SectionView, bool, error) {
	raw, err := c.client.Get(ctx, availableSectionsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, errs.Wrap(err, "failed to read section cache")
	}

	var views []*queries.SectionView
	if err := json.Unmarshal(raw, &views); err != nil {
		// A corrupt entry behaves like a miss; the next Set overwrites it.
		return nil, false, errs.Wrap(err, "failed to decode section cache")
	}
	return views, true, nil
}

func (c *SectionCache) SetAvailable(ctx context.Context, views []*queries.SectionView) error {
	raw, err := json.Marshal(views)
	if err != nil {
		return errs.Wrap(err, "failed to encode section cache")
	}
	if err := c.client.Set(ctx, availableSectionsKey, raw, c.ttl).Err(); err != nil {
		return errs.Wrap(err, "failed to write section cache")
	}
	return nil
}

func (c *SectionCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, availableSectionsKey).Err(); err != nil {
		return errs.Wrap(err, "failed to invalidate section cache")
	}
	return nil
}
