package redis

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"passit-client/internal/domain/profile"
	rplatform "passit-client/internal/platform/redis"
)

// ProfileCache provides Redis-based caching for dashboard reads.
type ProfileCache struct {
	client *rplatform.Client
	ttl    time.Duration
}

func NewProfileCache(client *rplatform.Client, ttl time.Duration) *ProfileCache {
	return &ProfileCache{client: client, ttl: ttl}
}

func (c *ProfileCache) keyByAddress(address string) string {
	return "passit:profile:" + strings.ToLower(address)
}

func (c *ProfileCache) keyLeaderboard() string { return "passit:leaderboard" }

// SetProfile stores p under its address.
func (c *ProfileCache) SetProfile(ctx context.Context, p profile.Profile) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.keyByAddress(p.Address), b, c.ttl).Err()
}

// GetProfile returns the cached profile; a miss is reported as (nil, nil).
func (c *ProfileCache) GetProfile(ctx context.Context, address string) (*profile.Profile, error) {
	v, err := c.client.Get(ctx, c.keyByAddress(address)).Bytes()
	if rplatform.IsMiss(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var p profile.Profile
	if err := json.Unmarshal(v, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *ProfileCache) SetLeaderboard(ctx context.Context, entries []profile.Entry) error {
	b, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.keyLeaderboard(), b, c.ttl).Err()
}

// GetLeaderboard returns (nil, false, nil) on a miss.
func (c *ProfileCache) GetLeaderboard(ctx context.Context) ([]profile.Entry, bool, error) {
	v, err := c.client.Get(ctx, c.keyLeaderboard()).Bytes()
	if rplatform.IsMiss(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var entries []profile.Entry
	if err := json.Unmarshal(v, &entries); err != nil {
		return nil, false, err
	}
	return entries, true, nil
}

// Invalidate drops the cached profile of address, e.g. after a claim credited it.
func (c *ProfileCache) Invalidate(ctx context.Context, address string) error {
	return c.client.Del(ctx, c.keyByAddress(address)).Err()
}
