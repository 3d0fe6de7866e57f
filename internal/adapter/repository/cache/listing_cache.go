package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/property-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/property/domain"
	"github.com/redis/go-redis/v9"
)

const (
	dialTimeout = 5 * time.Second
	featuredKey = "property:featured"
)

func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	if err := client.Ping(dialCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis (ping failed): %w", err)
	}
	return client, nil
}

// ListingCache implements domain.PropertyCache with JSON values in Redis.
type ListingCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewListingCache(client redis.Cmdable, ttl time.Duration) *ListingCache {
	return &ListingCache{client: client, ttl: ttl}
}

func propertyKey(id string) string {
	return "property:" + id
}

func (c *ListingCache) GetProperty(ctx context.Context, id string) (*domain.Property, error) {
	var p domain.Property
	hit, err := c.get(ctx, propertyKey(id), &p)
	if err != nil || !hit {
		return nil, err
	}
	return &p, nil
}

func (c *ListingCache) SetProperty(ctx context.Context, p *domain.Property) error {
	return c.set(ctx, propertyKey(p.ID), p, c.ttl)
}

func (c *ListingCache) DeleteProperty(ctx context.Context, id string) error {
	return c.client.Del(ctx, propertyKey(id)).Err()
}

func (c *ListingCache) GetFeatured(ctx context.Context) ([]*domain.Property, error) {
	var items []*domain.Property
	hit, err := c.get(ctx, featuredKey, &items)
	if err != nil || !hit {
		return nil, err
	}
	if items == nil {
		items = []*domain.Property{}
	}
	return items, nil
}

func (c *ListingCache) SetFeatured(ctx context.Context, properties []*domain.Property, ttl time.Duration) error {
	return c.set(ctx, featuredKey, properties, ttl)
}

func (c *ListingCache) DeleteFeatured(ctx context.Context) error {
	return c.client.Del(ctx, featuredKey).Err()
}

func (c *ListingCache) get(ctx context.Context, key string, dst interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (c *ListingCache) set(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}
