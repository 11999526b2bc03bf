// Package rdx builds the shared Redis client used by the redis document
// store, the event publisher and the duplicate-submission guard.
package rdx

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"tourdesk/config"
)

// Connect dials Redis and pings it. REDIS_URL may be a plain host:port or a
// redis:// URL.
func Connect(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	var opts *redis.Options
	if strings.HasPrefix(cfg.RedisAddr, "redis://") || strings.HasPrefix(cfg.RedisAddr, "rediss://") {
		parsed, err := redis.ParseURL(cfg.RedisAddr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}
	return client, nil
}
