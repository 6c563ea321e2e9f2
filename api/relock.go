/*
relock.go - Automatic app relock scheduler

PURPOSE:
  Locks the app again once it has been left Unlocked for longer than the
  idle timeout, the server-side counterpart of locking on reopen.

DESIGN:
  - Runs a background goroutine with a configurable check interval
  - Remembers when it first saw the lock Unlocked
  - Calls Lock.Relock once IdleTimeout has passed since then
  - Forgets the timestamp whenever the lock is not Unlocked

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 minute)
  - IdleTimeout:   How long Unlocked may last (0 disables the scheduler)

USAGE:
  relocker := NewRelockScheduler(lock, 15*time.Minute, logger)
  relocker.Start()
  // ... later
  relocker.Stop()

SEE ALSO:
  - lock.go: Manual relock endpoint
  - applock/lock.go: State machine
*/
package api

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/warp/farm-ledger/applock"
)

// RelockScheduler relocks an idle unlocked app.
type RelockScheduler struct {
	Lock          *applock.Lock
	CheckInterval time.Duration
	IdleTimeout   time.Duration
	Logger        *slog.Logger

	now           func() time.Time
	unlockedSince time.Time

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewRelockScheduler creates a new scheduler.
func NewRelockScheduler(lock *applock.Lock, idle time.Duration, logger *slog.Logger) *RelockScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RelockScheduler{
		Lock:          lock,
		CheckInterval: time.Minute,
		IdleTimeout:   idle,
		Logger:        logger,
		now:           time.Now,
	}
}

// Start begins the scheduler. It is a no-op when IdleTimeout is zero.
func (rs *RelockScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.IdleTimeout <= 0 {
		rs.Logger.Info("auto relock disabled")
		return
	}
	if rs.ticker != nil {
		return
	}

	rs.ticker = time.NewTicker(rs.CheckInterval)
	rs.stop = make(chan struct{})
	rs.wg.Add(1)
	go rs.run()

	rs.Logger.Info("auto relock started",
		slog.Duration("idle_timeout", rs.IdleTimeout),
		slog.Duration("check_interval", rs.CheckInterval))
}

// Stop stops the scheduler and waits for the loop to exit.
func (rs *RelockScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker == nil {
		return
	}
	rs.ticker.Stop()
	close(rs.stop)
	rs.wg.Wait()
	rs.ticker = nil
	rs.Logger.Info("auto relock stopped")
}

func (rs *RelockScheduler) run() {
	defer rs.wg.Done()

	for {
		select {
		case <-rs.ticker.C:
			rs.Check(context.Background())
		case <-rs.stop:
			return
		}
	}
}

// Check runs one pass and reports whether the app was relocked.
func (rs *RelockScheduler) Check(ctx context.Context) bool {
	st, err := rs.Lock.State(ctx)
	if err != nil {
		rs.Logger.WarnContext(ctx, "auto relock: read state failed", slog.Any("error", err))
		return false
	}

	now := rs.now()
	if st != applock.Unlocked {
		rs.unlockedSince = time.Time{}
		return false
	}
	if rs.unlockedSince.IsZero() {
		rs.unlockedSince = now
		return false
	}
	if now.Sub(rs.unlockedSince) < rs.IdleTimeout {
		return false
	}

	if _, err := rs.Lock.Relock(ctx); err != nil {
		rs.Logger.WarnContext(ctx, "auto relock failed", slog.Any("error", err))
		return false
	}
	rs.unlockedSince = time.Time{}
	rs.Logger.InfoContext(ctx, "app relocked after idle timeout")
	return true
}
