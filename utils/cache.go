package utils

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultCacheTTL = 5 * time.Minute

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

var (
	memoryCache   = map[string]memoryEntry{}
	memoryCacheMu sync.Mutex
)

// CacheGetBytes returns cached bytes for a key from Redis, or from memory when Redis is off.
func CacheGetBytes(key string) ([]byte, bool) {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		b, err := rc.Get(ctx, key).Bytes()
		if err != nil {
			Logger.Debug("cache miss", zap.String("key", key), zap.Error(err))
			return nil, false
		}
		return b, true
	}

	memoryCacheMu.Lock()
	defer memoryCacheMu.Unlock()
	entry, ok := memoryCache[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(memoryCache, key)
		return nil, false
	}
	return entry.value, true
}

// CacheSetBytes stores bytes; a non-positive ttl uses the default.
func CacheSetBytes(key string, b []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rc.Set(ctx, key, b, ttl).Err(); err != nil {
			Logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
		}
		return
	}

	memoryCacheMu.Lock()
	memoryCache[key] = memoryEntry{value: b, expiresAt: time.Now().Add(ttl)}
	memoryCacheMu.Unlock()
}

// CacheSetJSON marshals v and stores JSON bytes.
func CacheSetJSON(key string, v interface{}, ttl time.Duration) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	CacheSetBytes(key, b, ttl)
}

// InvalidateByPrefix deletes keys that match the given prefix.
func InvalidateByPrefix(prefix string) {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		var cursor uint64
		for i := 0; i < 10; i++ { // limit rounds to avoid long loops
			keys, cur, err := rc.Scan(ctx, cursor, prefix+"*", 1000).Result()
			if err != nil {
				break
			}
			cursor = cur
			if len(keys) > 0 {
				pipe := rc.Pipeline()
				for _, k := range keys {
					pipe.Del(ctx, k)
				}
				_, _ = pipe.Exec(ctx)
			}
			if cursor == 0 {
				break
			}
		}
		return
	}

	memoryCacheMu.Lock()
	for k := range memoryCache {
		if strings.HasPrefix(k, prefix) {
			delete(memoryCache, k)
		}
	}
	memoryCacheMu.Unlock()
}
