// Package bootstrap wires database and Redis connections for commands that
// run outside the HTTP server (seeder, migrator).
package bootstrap

import (
	"fmt"

	"hirelink/internal/cache"
	"hirelink/internal/config"
	"hirelink/internal/database"
	"hirelink/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedTemplates bool
}

// InitRuntime connects to DB and Redis and optionally upserts the built-in
// message templates. The Redis client may be nil when Redis is unreachable;
// callers treat that as realtime-and-cache disabled.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedTemplates {
		if err := seed.SeedTemplates(db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed built-in templates: %w", err)
		}
	}

	return db, r, nil
}
