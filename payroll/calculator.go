/*
calculator.go - Date-range payroll orchestration

PURPOSE:
  Computes a worker's payroll for "this month" or an explicit date range on
  top of a store that can only answer per-worker-per-month queries.

FLOW:
  1. Resolve the range to a concrete [start, end] period
  2. Enumerate the month tokens the period touches
  3. Fetch each month's records (concurrently, bounded)
  4. Merge and filter to the exact period
  5. Look up the worker's wage and fold with Compute

FAILURE:
  Any failed month fetch fails the whole calculation. A month is never
  silently skipped. A missing worker is "no result" (nil report, nil
  error), not a failure.

SEE ALSO:
  - totals.go: Compute
  - attendance/time.go: MonthsBetween, Period
*/
package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/farm-ledger/attendance"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrRangeRequired is returned when a custom range is missing a bound.
	ErrRangeRequired = errors.New("from and to dates are required for a custom range")

	// ErrUnknownRange is returned for a range kind other than this_month/custom.
	ErrUnknownRange = errors.New("unknown date range")

	// ErrInvalidAdvance is returned for a negative or non-numeric advance.
	ErrInvalidAdvance = errors.New("advance must be a non-negative number")
)

// RangeKind selects how the payroll period is chosen.
type RangeKind string

const (
	RangeThisMonth RangeKind = "this_month"
	RangeCustom    RangeKind = "custom"
)

// Observer receives one call per finished calculation.
type Observer interface {
	ObserveCalculation(months int, elapsed time.Duration, err error)
}

// Report is the result of one payroll calculation.
type Report struct {
	Worker      attendance.Worker
	Period      attendance.Period
	Months      []attendance.MonthToken
	RecordCount int
	Totals      Totals
}

// Calculator runs date-range payroll over an attendance store.
type Calculator struct {
	store       attendance.Reader
	now         func() time.Time
	concurrency int
	logger      *slog.Logger
	observer    Observer
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithClock overrides time.Now, used for "this month".
func WithClock(now func() time.Time) Option {
	return func(c *Calculator) { c.now = now }
}

// WithConcurrency bounds parallel month fetches. 1 fetches sequentially.
func WithConcurrency(n int) Option {
	return func(c *Calculator) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Calculator) { c.logger = l }
}

func WithObserver(o Observer) Option {
	return func(c *Calculator) { c.observer = o }
}

// NewCalculator creates a calculator reading from store.
func NewCalculator(store attendance.Reader, opts ...Option) *Calculator {
	c := &Calculator{
		store:       store,
		now:         time.Now,
		concurrency: 4,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve turns a range selection into a concrete period.
// An empty kind means this month.
func (c *Calculator) Resolve(kind RangeKind, from, to string) (attendance.Period, error) {
	switch kind {
	case RangeThisMonth, "":
		return attendance.ThisMonth(c.now()), nil

	case RangeCustom:
		if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
			return attendance.Period{}, ErrRangeRequired
		}
		start, err := attendance.ParseDate(from)
		if err != nil {
			return attendance.Period{}, err
		}
		end, err := attendance.ParseDate(to)
		if err != nil {
			return attendance.Period{}, err
		}
		return attendance.NewPeriod(start, end), nil
	}
	return attendance.Period{}, fmt.Errorf("%w: %q", ErrUnknownRange, kind)
}

// Calculate computes payroll for one worker over period.
// Returns nil, nil when the worker doesn't exist.
func (c *Calculator) Calculate(ctx context.Context, workerID attendance.WorkerID, period attendance.Period) (report *Report, err error) {
	started := time.Now()
	months := period.Months()
	defer func() {
		if c.observer != nil {
			c.observer.ObserveCalculation(len(months), time.Since(started), err)
		}
	}()

	records, err := c.FetchRange(ctx, workerID, months)
	if err != nil {
		c.logger.ErrorContext(ctx, "payroll fetch failed",
			slog.String("worker_id", workerID.String()),
			slog.String("period", period.String()),
			slog.Any("error", err))
		return nil, err
	}
	filtered := attendance.FilterRange(records, period)

	worker, err := c.store.GetWorker(ctx, workerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load worker: %w", err)
	}
	if worker == nil {
		c.logger.DebugContext(ctx, "payroll skipped, worker not found",
			slog.String("worker_id", workerID.String()))
		return nil, nil
	}

	return &Report{
		Worker:      *worker,
		Period:      period,
		Months:      months,
		RecordCount: len(filtered),
		Totals:      Compute(filtered, worker.DailyWage),
	}, nil
}

// FetchRange fetches every month bucket for a worker and concatenates them in
// month order. Fails if any single fetch fails.
func (c *Calculator) FetchRange(ctx context.Context, workerID attendance.WorkerID, months []attendance.MonthToken) ([]attendance.Record, error) {
	buckets := make([][]attendance.Record, len(months))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, month := range months {
		g.Go(func() error {
			recs, err := c.store.GetAttendanceForMonth(gctx, workerID, month)
			if err != nil {
				return fmt.Errorf("failed to fetch attendance for %s: %w", month, err)
			}
			buckets[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []attendance.Record
	for _, b := range buckets {
		all = append(all, b...)
	}
	return all, nil
}

// ParseAdvance parses an optional advance amount. Empty means zero.
func ParseAdvance(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAdvance, s)
	}
	return d, nil
}
