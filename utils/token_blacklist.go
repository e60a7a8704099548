package utils

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"go.uber.org/zap"
)

const revokedKeyPrefix = "auth:revoked:"

var (
	revoked   = map[string]time.Time{}
	revokedMu sync.Mutex
)

func revokedKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return revokedKeyPrefix + hex.EncodeToString(sum[:])
}

// RevokeToken marks a token unusable until it would have expired anyway.
func RevokeToken(token string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}
	key := revokedKey(token)

	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rc.Set(ctx, key, "1", ttl).Err(); err != nil {
			Logger.Warn("token revocation not stored", zap.Time("expires_at", expiresAt), zap.Error(err))
		}
		return
	}

	revokedMu.Lock()
	defer revokedMu.Unlock()
	now := time.Now()
	for k, exp := range revoked {
		if now.After(exp) {
			delete(revoked, k)
		}
	}
	revoked[key] = expiresAt
}

// IsTokenRevoked reports whether RevokeToken was called for a still-valid token.
func IsTokenRevoked(token string) bool {
	key := revokedKey(token)

	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		n, err := rc.Exists(ctx, key).Result()
		// fail open on Redis errors so an outage does not log every admin out
		return err == nil && n > 0
	}

	revokedMu.Lock()
	defer revokedMu.Unlock()
	exp, ok := revoked[key]
	if !ok {
		return false
	}
	if time.Now().After(exp) {
		delete(revoked, key)
		return false
	}
	return true
}
