/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements attendance.Store and applock.SettingsStore using SQLite. A single
  farm's data easily fits one file.

KEY TABLES:
  workers:    Worker identity, phone and daily wage
  attendance: One status per (worker_id, date), cascades on worker delete
  settings:   Key/value pairs (app lock state and passcode hash)

INDEXES:
  - attendance primary key (worker_id, date): month bucket reads are a
    range scan on this key
  - idx_workers_name: list ordering

LAST WRITER WINS:
  SetAttendance is an upsert. Two writers for the same (worker, date) key
  leave whichever committed last.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In-memory databases are pinned to one
  connection so every query sees the same database.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  store, err := sqlite.New("./data/farm.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - attendance/store.go: Interface definitions
  - attendance/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/warp/farm-ledger/attendance"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ attendance.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS workers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT,
		daily_wage INTEGER NOT NULL CHECK (daily_wage >= 0),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_workers_name
		ON workers(name);

	-- At most one status per worker per day
	CREATE TABLE IF NOT EXISTS attendance (
		worker_id TEXT NOT NULL REFERENCES workers(id) ON DELETE CASCADE,
		date TEXT NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('full', 'half', 'morningEvening', 'absent')),
		updated_at TEXT NOT NULL,
		PRIMARY KEY (worker_id, date)
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// WORKERS
// =============================================================================

// GetAllWorkers returns all workers ordered by name.
func (s *Store) GetAllWorkers(ctx context.Context) ([]attendance.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, phone, daily_wage, created_at, updated_at
		FROM workers
		ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query workers: %w", err)
	}
	defer rows.Close()

	workers := []attendance.Worker{}
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}
	return workers, rows.Err()
}

// GetWorker returns a worker by ID, or nil if it doesn't exist.
func (s *Store) GetWorker(ctx context.Context, id attendance.WorkerID) (*attendance.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getWorker(ctx, id)
}

func (s *Store) getWorker(ctx context.Context, id attendance.WorkerID) (*attendance.Worker, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, phone, daily_wage, created_at, updated_at
		FROM workers
		WHERE id = ?
	`, id)

	w, err := scanWorker(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// CreateWorker inserts a new worker with a generated ID.
func (s *Store) CreateWorker(ctx context.Context, in attendance.NewWorker) (attendance.Worker, error) {
	if err := in.Validate(); err != nil {
		return attendance.Worker{}, err
	}
	in = in.Normalize()

	now := time.Now().UTC()
	w := attendance.Worker{
		ID:        attendance.WorkerID(uuid.NewString()),
		Name:      in.Name,
		Phone:     in.Phone,
		DailyWage: in.DailyWage,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.SaveWorker(ctx, w); err != nil {
		return attendance.Worker{}, err
	}
	return w, nil
}

// SaveWorker inserts or replaces a worker with a caller-chosen ID.
// Used by scenario loaders.
func (s *Store) SaveWorker(ctx context.Context, w attendance.Worker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC()
	}
	if w.UpdatedAt.IsZero() {
		w.UpdatedAt = w.CreatedAt
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO workers (id, name, phone, daily_wage, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			phone = excluded.phone,
			daily_wage = excluded.daily_wage,
			updated_at = excluded.updated_at
	`,
		w.ID,
		w.Name,
		nullString(w.Phone),
		w.DailyWage,
		w.CreatedAt.Format(time.RFC3339),
		w.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save worker: %w", err)
	}
	return nil
}

// UpdateWorker replaces a worker's name, phone and wage.
func (s *Store) UpdateWorker(ctx context.Context, id attendance.WorkerID, in attendance.NewWorker) (attendance.Worker, error) {
	if err := in.Validate(); err != nil {
		return attendance.Worker{}, err
	}
	in = in.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE workers
		SET name = ?, phone = ?, daily_wage = ?, updated_at = ?
		WHERE id = ?
	`, in.Name, nullString(in.Phone), in.DailyWage, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return attendance.Worker{}, fmt.Errorf("failed to update worker: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return attendance.Worker{}, attendance.ErrWorkerNotFound
	}

	w, err := s.getWorker(ctx, id)
	if err != nil {
		return attendance.Worker{}, err
	}
	if w == nil {
		return attendance.Worker{}, attendance.ErrWorkerNotFound
	}
	return *w, nil
}

// DeleteWorker removes a worker. Attendance rows go with it (ON DELETE CASCADE).
func (s *Store) DeleteWorker(ctx context.Context, id attendance.WorkerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM workers WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete worker: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return attendance.ErrWorkerNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorker(row rowScanner) (attendance.Worker, error) {
	var (
		w                    attendance.Worker
		phone                sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(&w.ID, &w.Name, &phone, &w.DailyWage, &createdAt, &updatedAt); err != nil {
		return attendance.Worker{}, err
	}
	if phone.Valid {
		p := phone.String
		w.Phone = &p
	}
	w.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	w.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return w, nil
}

// =============================================================================
// ATTENDANCE
// =============================================================================

// SetAttendance upserts the status for (id, date).
func (s *Store) SetAttendance(ctx context.Context, id attendance.WorkerID, date string, status attendance.Status) error {
	if err := attendance.CheckRecord(date, status); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attendance (worker_id, date, status, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(worker_id, date) DO UPDATE SET
			status = excluded.status,
			updated_at = excluded.updated_at
	`, id, date, string(status), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		if isForeignKeyError(err) {
			return attendance.ErrWorkerNotFound
		}
		return fmt.Errorf("failed to set attendance: %w", err)
	}
	return nil
}

// ClearAttendance deletes the record for (id, date), if any.
func (s *Store) ClearAttendance(ctx context.Context, id attendance.WorkerID, date string) error {
	if _, err := attendance.ParseDate(date); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"DELETE FROM attendance WHERE worker_id = ? AND date = ?", id, date)
	if err != nil {
		return fmt.Errorf("failed to clear attendance: %w", err)
	}
	return nil
}

// GetAttendanceForMonth returns a worker's records within one month, by date.
func (s *Store) GetAttendanceForMonth(ctx context.Context, id attendance.WorkerID, month attendance.MonthToken) ([]attendance.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := month.Period()
	rows, err := s.db.QueryContext(ctx, `
		SELECT worker_id, date, status
		FROM attendance
		WHERE worker_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`, id, attendance.FormatDate(p.Start), attendance.FormatDate(p.End))
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	records := []attendance.Record{}
	for rows.Next() {
		var (
			r      attendance.Record
			status string
		)
		if err := rows.Scan(&r.WorkerID, &r.Date, &status); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		r.Status = attendance.Status(status)
		records = append(records, r)
	}
	return records, rows.Err()
}

// =============================================================================
// SETTINGS
// =============================================================================

// GetSetting returns a setting value and whether it exists.
func (s *Store) GetSetting(ctx context.Context, name string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get setting: %w", err)
	}
	return value, true, nil
}

// PutSetting creates or overwrites a setting.
func (s *Store) PutSetting(ctx context.Context, name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, name, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to put setting: %w", err)
	}
	return nil
}

// =============================================================================
// ADMIN
// =============================================================================

// Reset clears all workers and attendance (for scenario loading).
// Settings are kept so the app lock survives a demo reload.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"attendance", "workers"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func isForeignKeyError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}
