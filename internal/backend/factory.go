package backend

import (
	"fmt"

	"fintrack/internal/cache"
	"fintrack/internal/config"
	"fintrack/internal/ledger"
	"fintrack/internal/ledger/memory"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// CleanupFunc releases resources held by a created backend.
type CleanupFunc func() error

// StoreResult carries the store instance and its optional cleanup.
type StoreResult struct {
	Store   ledger.Store
	Cleanup CleanupFunc
}

// Factory builds storage backends from application config.
type Factory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) *Factory {
	return &Factory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateStore builds the ledger store named by cfg.DataBackend.
func (f *Factory) CreateStore(cfg *config.Config) (*StoreResult, error) {
	backendType := DataBackend(cfg.DataBackend)
	if !backendType.IsValid() {
		return nil, fmt.Errorf("invalid data backend: %s", cfg.DataBackend)
	}

	switch backendType {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return &StoreResult{Store: repo, Cleanup: repo.Close}, nil

	case MemoryBackend:
		store := memory.NewStore()
		f.logger.Info("Initialized memory backend")
		return &StoreResult{Store: store, Cleanup: store.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported data backend: %s", backendType)
	}
}

// defaultLRUSize bounds in-process caches; computed views are small.
const defaultLRUSize = 128

// NewCache builds a typed cache on the backend named by cfg.CacheBackend.
// A package function rather than a Factory method because methods cannot
// carry their own type parameters.
func NewCache[T any](cfg *config.Config, prefix string) (cache.Cache[T], CleanupFunc, error) {
	backendType := CacheBackend(cfg.CacheBackend)
	if !backendType.IsValid() {
		return nil, nil, fmt.Errorf("invalid cache backend: %s", cfg.CacheBackend)
	}

	switch backendType {
	case RedisCache:
		c, err := cache.NewRedisCache[T](cfg.RedisURL, prefix, cfg.CacheTTL)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize redis cache: %w", err)
		}
		return c, c.Close, nil

	case MemoryCache:
		return cache.NewLRUCache[T](defaultLRUSize, cfg.CacheTTL), nil, nil

	default:
		return nil, nil, fmt.Errorf("unsupported cache backend: %s", backendType)
	}
}
