package kv

import (
	"fmt"
	"log"

	"stockbook/config"
	"stockbook/internal/database"
)

// Open builds the backend named by cfg.Store.Backend.
func Open(cfg config.Config) (KV, error) {
	switch cfg.Store.Backend {
	case "", "file":
		return NewFileKV(cfg.Store.FilePath)
	case "memory":
		return NewMemoryKV(), nil
	case "redis":
		rdb, err := config.NewUniversalClient(cfg.Redis)
		if err != nil {
			return nil, err
		}
		return NewRedisKV(rdb), nil
	case "postgres":
		db, err := database.NewConnection(cfg.DB.ConnString())
		if err != nil {
			return nil, err
		}
		if err := database.MigrateKVDB(db); err != nil {
			return nil, fmt.Errorf("failed to migrate kv table: %w", err)
		}
		log.Println("KV table migrated")
		return NewGormKV(db), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
