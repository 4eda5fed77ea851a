package storage

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

var _ CustomerStore = (*MemoryStore)(nil)

type memoryRecord struct {
	mu  sync.Mutex
	rec CustomerRecord
}

// MemoryStore keeps customer records in process memory. Each record has
// its own lock so upserts for different external ids never block each other.
type MemoryStore struct {
	mu              sync.RWMutex
	records         map[int64]*memoryRecord
	nextID          atomic.Int64
	defaultCurrency string
}

func NewMemoryStore(defaultCurrency string) *MemoryStore {
	return &MemoryStore{
		records:         make(map[int64]*memoryRecord),
		defaultCurrency: defaultCurrency,
	}
}

func (m *MemoryStore) Upsert(_ context.Context, update CustomerUpdate) (int64, error) {
	entry := m.entryFor(update.ExternalCustomerID)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := time.Now()
	if entry.rec.ID == 0 {
		rec := newRecord(update, m.defaultCurrency, now)
		rec.ID = m.allocateID()
		entry.rec = rec
		return rec.ID, nil
	}

	applyUpdate(&entry.rec, update, now)
	return entry.rec.ID, nil
}

func (m *MemoryStore) Get(_ context.Context, externalCustomerID int64) (*CustomerRecord, error) {
	m.mu.RLock()
	entry, ok := m.records[externalCustomerID]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.rec.ID == 0 {
		return nil, ErrNotFound
	}

	rec := entry.rec
	return &rec, nil
}

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) Ping(_ context.Context) error { return nil }

func (m *MemoryStore) entryFor(externalCustomerID int64) *memoryRecord {
	m.mu.RLock()
	entry, ok := m.records[externalCustomerID]
	m.mu.RUnlock()

	if ok {
		return entry
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok = m.records[externalCustomerID]
	if ok {
		return entry
	}

	entry = &memoryRecord{}
	m.records[externalCustomerID] = entry
	return entry
}

func (m *MemoryStore) allocateID() int64 {
	return m.nextID.Add(1)
}

var _ Backend = (*MemoryBackend)(nil)

// MemoryBackend provides in-process IP rate limiting for single-node
// deployments and tests.
type MemoryBackend struct {
	limiters  map[string]*rate.Limiter
	limiterMu sync.RWMutex
	rateLimit rate.Limit
	rateBurst int
}

func NewMemoryBackend(ratePerSec float64, burst int) *MemoryBackend {
	return &MemoryBackend{
		limiters:  make(map[string]*rate.Limiter),
		rateLimit: rate.Limit(ratePerSec),
		rateBurst: burst,
	}
}

func (m *MemoryBackend) Allow(_ context.Context, key string) (RateLimitResult, error) {
	m.limiterMu.RLock()
	limiter, exists := m.limiters[key]
	m.limiterMu.RUnlock()

	if !exists {
		m.limiterMu.Lock()
		limiter, exists = m.limiters[key]
		if !exists {
			limiter = rate.NewLimiter(m.rateLimit, m.rateBurst)
			m.limiters[key] = limiter
		}
		m.limiterMu.Unlock()
	}

	return RateLimitResult{
		Allowed:    limiter.Allow(),
		RetryAfter: time.Second,
	}, nil
}

func (m *MemoryBackend) Close() error { return nil }

func (m *MemoryBackend) Ping(_ context.Context) error { return nil }
