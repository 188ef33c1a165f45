package local

import (
	"context"
	"errors"
	"time"

	"github.com/allegro/bigcache/v3"
)

// ErrNotFound is returned by Get on a miss or an expired entry.
var ErrNotFound = bigcache.ErrEntryNotFound

// ICache is an in-process byte cache with a single expiry for all keys.
type ICache interface {
	Set(key string, entry []byte) error

	Get(key string) ([]byte, error)
}

type BigCache struct {
	Cache *bigcache.BigCache
}

// NewBigCache creates a cache whose entries expire allKeysExpTime after being written.
func NewBigCache(allKeysExpTime time.Duration) (*BigCache, error) {
	cfg := bigcache.DefaultConfig(allKeysExpTime)
	cfg.Verbose = false
	// rendered cards run to tens of kilobytes
	cfg.Shards = 64
	cfg.MaxEntriesInWindow = 4096
	cfg.MaxEntrySize = 64 * 1024
	cfg.HardMaxCacheSize = 256

	cache, err := bigcache.New(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	return &BigCache{Cache: cache}, nil
}

func (s *BigCache) Set(key string, entry []byte) error {
	return s.Cache.Set(key, entry)
}

func (s *BigCache) Get(key string) ([]byte, error) {
	return s.Cache.Get(key)
}

func (s *BigCache) Close() error {
	return s.Cache.Close()
}

// IsMiss reports whether err means the key is absent.
func IsMiss(err error) bool {
	return errors.Is(err, ErrNotFound)
}
