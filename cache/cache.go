/*
Package cache keeps recently read month buckets of attendance.

PURPOSE:
  The calendar and payroll pages read the same (worker, month) buckets over
  and over. A Cache holds those reads; Store wraps an attendance.Store and
  serves month reads from it.

INVALIDATION:
  Every successful mutation (create/update/delete worker, set/clear
  attendance) flushes the whole cache. There is no per-key invalidation.
  Each flush bumps a generation; a read-through fill carries the generation
  seen before the store read and is dropped if a flush happened since.
  Between mutations a cached bucket may be stale with respect to writes made
  by another process.

IMPLEMENTATIONS:
  - Memory: map guarded by a RWMutex, optional TTL
  - Redis:  shared across processes, generation counter for flushes

SEE ALSO:
  - store.go: The caching Store decorator
*/
package cache

import (
	"context"

	"github.com/warp/farm-ledger/attendance"
)

// Key identifies one month bucket of one worker.
type Key struct {
	WorkerID attendance.WorkerID
	Month    attendance.MonthToken
}

func (k Key) String() string {
	return string(k.WorkerID) + ":" + string(k.Month)
}

// Cache stores month buckets.
type Cache interface {
	// Get returns the cached records and whether the key was present.
	Get(ctx context.Context, key Key) ([]attendance.Record, bool, error)

	// Generation returns a token that changes on every Flush.
	Generation(ctx context.Context) (int64, error)

	// Set stores records fetched while gen was current. Writes from an
	// older generation are discarded.
	Set(ctx context.Context, gen int64, key Key, records []attendance.Record) error

	// Flush discards every entry.
	Flush(ctx context.Context) error
}

// Stats receives hit/miss notifications. Optional.
type Stats interface {
	CacheHit()
	CacheMiss()
}
