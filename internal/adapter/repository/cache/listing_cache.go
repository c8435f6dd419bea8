package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rentalhub/rental-service/internal/domain"
)

const listingCacheTTL = 1 * time.Hour

// ListingCache is a read-through Redis cache for single-listing lookups.
type ListingCache struct {
	client *redis.Client
}

func NewListingCache(addr, password string, db int) (*ListingCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, err
	}
	return &ListingCache{client: client}, nil
}

func listingKey(id string) string {
	return "listing:" + id
}

// GetListing returns the cached listing, or (nil, nil) on a cache miss.
func (c *ListingCache) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	data, err := c.client.Get(ctx, listingKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var listing domain.Listing
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

func (c *ListingCache) SetListing(ctx context.Context, listing *domain.Listing) error {
	data, err := json.Marshal(listing)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, listingKey(listing.ID), data, listingCacheTTL).Err()
}

func (c *ListingCache) DeleteListing(ctx context.Context, id string) error {
	return c.client.Del(ctx, listingKey(id)).Err()
}
