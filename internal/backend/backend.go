package backend

// DataBackend selects where the ledger is persisted.
type DataBackend string

const (
	MemoryBackend DataBackend = "memory"
	SQLiteBackend DataBackend = "sqlite"
)

func (b DataBackend) String() string { return string(b) }

func (b DataBackend) IsValid() bool {
	switch b {
	case MemoryBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}

// CacheBackend selects where computed views are cached.
type CacheBackend string

const (
	MemoryCache CacheBackend = "memory"
	RedisCache  CacheBackend = "redis"
)

func (b CacheBackend) String() string { return string(b) }

func (b CacheBackend) IsValid() bool {
	switch b {
	case MemoryCache, RedisCache:
		return true
	default:
		return false
	}
}
