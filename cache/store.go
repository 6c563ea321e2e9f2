package cache

import (
	"context"
	"log/slog"

	"github.com/warp/farm-ledger/attendance"
)

// Store wraps an attendance.Store and serves month reads from a Cache.
// Worker reads always hit the underlying store.
type Store struct {
	attendance.Store
	cache  Cache
	logger *slog.Logger
	stats  Stats
}

var _ attendance.Store = (*Store)(nil)

// NewStore decorates next with c. stats may be nil.
func NewStore(next attendance.Store, c Cache, logger *slog.Logger, stats Stats) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{Store: next, cache: c, logger: logger, stats: stats}
}

// Unwrap returns the decorated store.
func (s *Store) Unwrap() attendance.Store { return s.Store }

func (s *Store) GetAttendanceForMonth(ctx context.Context, id attendance.WorkerID, month attendance.MonthToken) ([]attendance.Record, error) {
	key := Key{WorkerID: id, Month: month}

	records, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "cache read failed, using store",
			slog.String("key", key.String()), slog.Any("error", err))
	} else if ok {
		if s.stats != nil {
			s.stats.CacheHit()
		}
		return records, nil
	}
	if s.stats != nil {
		s.stats.CacheMiss()
	}

	// Taken before the store read so a flush racing with it voids the fill.
	gen, genErr := s.cache.Generation(ctx)

	records, err = s.Store.GetAttendanceForMonth(ctx, id, month)
	if err != nil {
		return nil, err
	}
	if genErr != nil {
		return records, nil
	}
	if err := s.cache.Set(ctx, gen, key, records); err != nil {
		s.logger.WarnContext(ctx, "cache write failed",
			slog.String("key", key.String()), slog.Any("error", err))
	}
	return records, nil
}

func (s *Store) CreateWorker(ctx context.Context, w attendance.NewWorker) (attendance.Worker, error) {
	created, err := s.Store.CreateWorker(ctx, w)
	if err != nil {
		return attendance.Worker{}, err
	}
	s.invalidate(ctx, "create_worker")
	return created, nil
}

func (s *Store) UpdateWorker(ctx context.Context, id attendance.WorkerID, w attendance.NewWorker) (attendance.Worker, error) {
	updated, err := s.Store.UpdateWorker(ctx, id, w)
	if err != nil {
		return attendance.Worker{}, err
	}
	s.invalidate(ctx, "update_worker")
	return updated, nil
}

func (s *Store) DeleteWorker(ctx context.Context, id attendance.WorkerID) error {
	if err := s.Store.DeleteWorker(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, "delete_worker")
	return nil
}

func (s *Store) SetAttendance(ctx context.Context, id attendance.WorkerID, date string, status attendance.Status) error {
	if err := s.Store.SetAttendance(ctx, id, date, status); err != nil {
		return err
	}
	s.invalidate(ctx, "set_attendance")
	return nil
}

func (s *Store) ClearAttendance(ctx context.Context, id attendance.WorkerID, date string) error {
	if err := s.Store.ClearAttendance(ctx, id, date); err != nil {
		return err
	}
	s.invalidate(ctx, "clear_attendance")
	return nil
}

// Invalidate flushes the cache. Used after writes that bypass the decorator,
// such as a scenario reload.
func (s *Store) Invalidate(ctx context.Context) {
	s.invalidate(ctx, "manual")
}

func (s *Store) invalidate(ctx context.Context, op string) {
	if err := s.cache.Flush(ctx); err != nil {
		s.logger.ErrorContext(ctx, "cache flush failed",
			slog.String("op", op), slog.Any("error", err))
	}
}
