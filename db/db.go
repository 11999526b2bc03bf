// Package db opens the document store named in the configuration.
package db

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"tourdesk/config"
	"tourdesk/docstore"
)

// Open returns the configured driver. The redis driver reuses rc, which
// must be non-nil in that case.
func Open(ctx context.Context, cfg config.Config, rc *redis.Client) (docstore.Store, error) {
	switch cfg.StoreDriver {
	case "mongo", "":
		return docstore.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case "redis":
		if rc == nil {
			return nil, fmt.Errorf("%w: redis driver needs a redis connection", docstore.ErrStoreUnavailable)
		}
		return docstore.NewRedis(rc, "docs"), nil
	case "memory":
		return docstore.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
