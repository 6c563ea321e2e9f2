package cache

import (
	"context"
	"sync"
	"time"

	"github.com/warp/farm-ledger/attendance"
)

// Memory is an in-process Cache.
type Memory struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	gen     int64
	entries map[Key]memoryEntry
}

type memoryEntry struct {
	records   []attendance.Record
	expiresAt time.Time
}

// NewMemory creates a memory cache. ttl <= 0 keeps entries until the next flush.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[Key]memoryEntry),
	}
}

func (m *Memory) Get(_ context.Context, key Key) ([]attendance.Record, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && m.now().After(e.expiresAt) {
		return nil, false, nil
	}
	out := make([]attendance.Record, len(e.records))
	copy(out, e.records)
	return out, true, nil
}

func (m *Memory) Generation(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gen, nil
}

func (m *Memory) Set(_ context.Context, gen int64, key Key, records []attendance.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.gen {
		return nil
	}

	e := memoryEntry{records: append([]attendance.Record{}, records...)}
	if m.ttl > 0 {
		e.expiresAt = m.now().Add(m.ttl)
	}
	m.entries[key] = e
	return nil
}

func (m *Memory) Flush(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.entries = make(map[Key]memoryEntry)
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
