package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DataBackend:  "memory",
		CacheBackend: "memory",
		SQLiteDBPath: filepath.Join(t.TempDir(), "ledger.db"),
		CacheTTL:     5 * time.Minute,
	}
}

func TestCreateStoreMemory(t *testing.T) {
	f := NewFactory(log.New(log.DefaultConfig()))

	result, err := f.CreateStore(testConfig(t))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	defer result.Cleanup()

	tx := core.Transaction{
		ID:     "t1",
		Amount: core.Money{Cents: 100}, Type: core.Expense,
		Category: core.CategoryFood, Description: "x",
		Date: core.NewDate(2025, 1, 1),
	}
	if err := result.Store.CreateTransaction(context.Background(), tx); err != nil {
		t.Fatalf("store should be usable: %v", err)
	}
}

func TestCreateStoreSQLite(t *testing.T) {
	f := NewFactory(log.New(log.DefaultConfig()))
	cfg := testConfig(t)
	cfg.DataBackend = "sqlite"

	result, err := f.CreateStore(cfg)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	defer result.Cleanup()

	if _, err := result.Store.ListTransactions(context.Background()); err != nil {
		t.Fatalf("store should be usable: %v", err)
	}
}

func TestCreateStoreRejectsUnknownBackend(t *testing.T) {
	f := NewFactory(log.New(log.DefaultConfig()))
	cfg := testConfig(t)
	cfg.DataBackend = "postgres"

	if _, err := f.CreateStore(cfg); err == nil {
		t.Fatal("unknown backend should be rejected")
	}
}

func TestNewCacheMemory(t *testing.T) {
	c, cleanup, err := NewCache[services.Dashboard](testConfig(t), "dashboard")
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	if cleanup != nil {
		t.Error("memory cache needs no cleanup")
	}

	c.Set("k", services.Dashboard{Month: "2025-01"})
	got, ok := c.Get("k")
	if !ok || got.Month != "2025-01" {
		t.Fatalf("cache round trip: %v %v", got, ok)
	}
}

func TestNewCacheRejectsUnknownBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.CacheBackend = "memcached"

	if _, _, err := NewCache[services.Dashboard](cfg, "dashboard"); err == nil {
		t.Fatal("unknown cache backend should be rejected")
	}
}
