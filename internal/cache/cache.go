package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey generates a cache key from a source URL
func CacheKey(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "aidaily:v1:" + hex.EncodeToString(hash[:])
}

// GetJSON decodes a cached JSON value into dst.
// A missing or undecodable entry reports false.
func GetJSON(c Cache, key string, dst any) bool {
	data, ok := c.Get(key)
	if !ok {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

// SetJSON stores value as JSON under key
func SetJSON(c Cache, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}
	return c.Set(key, data, ttl)
}
