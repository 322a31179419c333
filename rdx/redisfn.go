package rdx

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Conn is nil when REDIS_URL is not configured; every helper below then
// degrades to a cache miss / no-op.
var Conn *redis.Client

// Connect dials Redis at url (redis://host:6379/0) and pings it.
func Connect(ctx context.Context, url string) error {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return fmt.Errorf("rdx: invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return fmt.Errorf("rdx: redis ping failed: %w", err)
	}

	Conn = client
	return nil
}

func Enabled() bool {
	return Conn != nil
}

// GetJSON loads a cached value into dst and reports whether it was found.
func GetJSON(ctx context.Context, key string, dst any) bool {
	if Conn == nil {
		return false
	}
	data, err := Conn.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Redis Get error for key %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		log.Printf("Redis value for %s is not valid JSON: %v", key, err)
		return false
	}
	return true
}

// SetJSON stores v under key with the given TTL. Failures are logged only.
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) {
	if Conn == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("Redis marshal error for key %s: %v", key, err)
		return
	}
	if err := Conn.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Printf("Redis Set error for key %s: %v", key, err)
	}
}

// Del drops cache keys.
func Del(ctx context.Context, keys ...string) {
	if Conn == nil || len(keys) == 0 {
		return
	}
	if err := Conn.Del(ctx, keys...).Err(); err != nil {
		log.Printf("Redis Del error for keys %v: %v", keys, err)
	}
}

func Close() error {
	if Conn == nil {
		return nil
	}
	return Conn.Close()
}
