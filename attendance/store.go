/*
store.go - Persistence interface for workers and attendance

PURPOSE:
  Defines the boundary between the domain logic and the data store. The
  payroll calculator only reads; the API layer also writes.

KEY INTERFACES:
  Reader: Worker lookups and per-worker-per-month attendance reads
  Store:  Reader plus worker and attendance mutations

MONTH BUCKETS:
  Attendance is read one (worker, month) bucket at a time. Callers that need
  an arbitrary date range resolve the months with MonthsBetween, fetch each
  bucket, then filter with FilterRange.

LAST WRITER WINS:
  SetAttendance overwrites whatever status the (worker, date) key held.
  There is no conflict detection between concurrent writers.

IMPLEMENTATIONS:
  - attendance/store/memory.go: In-memory for tests/dev
  - store/sqlite/sqlite.go: SQLite
  - cache/store.go: Caching decorator over any Store

SEE ALSO:
  - payroll/calculator.go: Reader consumer
  - api/handlers.go: Store consumer
*/
package attendance

import (
	"context"
	"strings"
)

// Reader is the read side of the store.
type Reader interface {
	// GetAllWorkers returns every worker, ordered by name.
	GetAllWorkers(ctx context.Context) ([]Worker, error)

	// GetWorker returns nil, nil when the worker doesn't exist.
	GetWorker(ctx context.Context, id WorkerID) (*Worker, error)

	// GetAttendanceForMonth returns every record of the worker within the
	// month. No records is an empty slice, never an error.
	GetAttendanceForMonth(ctx context.Context, id WorkerID, month MonthToken) ([]Record, error)
}

// Store adds mutations to Reader.
type Store interface {
	Reader

	CreateWorker(ctx context.Context, w NewWorker) (Worker, error)

	// UpdateWorker replaces name, phone and wage. Returns ErrWorkerNotFound.
	UpdateWorker(ctx context.Context, id WorkerID, w NewWorker) (Worker, error)

	// DeleteWorker removes the worker and all of their attendance.
	DeleteWorker(ctx context.Context, id WorkerID) error

	// SetAttendance creates or overwrites the record for (id, date).
	SetAttendance(ctx context.Context, id WorkerID, date string, status Status) error

	// ClearAttendance removes the record for (id, date). Clearing a date
	// with no record is not an error.
	ClearAttendance(ctx context.Context, id WorkerID, date string) error
}

// =============================================================================
// WORKER INPUT
// =============================================================================

// NewWorker is the input for creating or updating a worker.
type NewWorker struct {
	Name      string
	Phone     *string
	DailyWage int64
}

// Normalize trims the name and turns a blank phone into nil.
func (n NewWorker) Normalize() NewWorker {
	n.Name = strings.TrimSpace(n.Name)
	if n.Phone != nil {
		p := strings.TrimSpace(*n.Phone)
		if p == "" {
			n.Phone = nil
		} else {
			n.Phone = &p
		}
	}
	return n
}

// Validate checks the input before any store call.
func (n NewWorker) Validate() error {
	n = n.Normalize()

	var errs ValidationErrors
	if n.Name == "" {
		errs = append(errs, &ValidationError{Field: "name", Message: "worker name is required"})
	}
	if n.DailyWage <= 0 {
		errs = append(errs, &ValidationError{Field: "daily_wage", Message: "please enter a valid daily wage"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
