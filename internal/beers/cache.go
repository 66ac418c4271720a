package beers

import (
	"context"
	"time"

	"github.com/angelmondragon/brewhouse-backend/pkg/redis"
)

// Cache is the read-through store in front of FindByID.
type Cache interface {
	Get(ctx context.Context, id int64) (*BeerDTO, bool, error)
	Set(ctx context.Context, beer BeerDTO) error
	Invalidate(ctx context.Context, id int64) error
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache stores beers as JSON under the client's beer key space.
func NewRedisCache(client *redis.Client, ttl time.Duration) Cache {
	return &redisCache{client: client, ttl: ttl}
}

func (c *redisCache) Get(ctx context.Context, id int64) (*BeerDTO, bool, error) {
	var beer BeerDTO
	ok, err := c.client.GetJSON(ctx, c.client.BeerKey(id), &beer)
	if err != nil || !ok {
		return nil, false, err
	}
	return &beer, true, nil
}

func (c *redisCache) Set(ctx context.Context, beer BeerDTO) error {
	return c.client.SetJSON(ctx, c.client.BeerKey(beer.ID), beer, c.ttl)
}

func (c *redisCache) Invalidate(ctx context.Context, id int64) error {
	return c.client.Del(ctx, c.client.BeerKey(id))
}

type noopCache struct{}

// NoopCache is used when redis is not configured.
func NoopCache() Cache { return noopCache{} }

func (noopCache) Get(context.Context, int64) (*BeerDTO, bool, error) { return nil, false, nil }
func (noopCache) Set(context.Context, BeerDTO) error                 { return nil }
func (noopCache) Invalidate(context.Context, int64) error            { return nil }
