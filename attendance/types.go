/*
Package attendance provides the core record-keeping model for farm workers.

PURPOSE:
  Defines workers, the four attendance states a worker can have on a given
  calendar day, and the attendance records that tie the two together. The
  payroll package folds these records into totals; the store packages persist
  them.

KEY CONCEPTS IN THIS FILE (types.go):
  - Status: Closed set of day states (full, half, morningEvening, absent)
  - Record: One status for one worker on one date
  - Worker: Identity, display name, optional phone, daily wage in rupees

UNSET VS ABSENT:
  A missing record and an explicit "absent" record are different things.
  The calendar shows both as an empty cell, but only the explicit record is
  stored. Neither contributes to pay.

SEE ALSO:
  - time.go: Month tokens, periods, date range resolution
  - store.go: Store interfaces
  - payroll/totals.go: Payroll aggregation
*/
package attendance

import (
	"fmt"
	"time"
)

// =============================================================================
// STATUS
// =============================================================================

// Status is the attendance state of a worker on one calendar day.
type Status string

const (
	StatusFull           Status = "full"
	StatusHalf           Status = "half"
	StatusMorningEvening Status = "morningEvening"
	StatusAbsent         Status = "absent"
)

// Statuses returns every status in display order.
func Statuses() []Status {
	return []Status{StatusFull, StatusHalf, StatusMorningEvening, StatusAbsent}
}

// ParseStatus converts a wire value into a Status.
// Anything outside the four known values is rejected.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	switch s {
	case StatusFull, StatusHalf, StatusMorningEvening, StatusAbsent:
		return true
	}
	return false
}

// Label is the human readable name shown in the calendar legend.
func (s Status) Label() string {
	switch s {
	case StatusFull:
		return "Full Day"
	case StatusHalf:
		return "Half Day"
	case StatusMorningEvening:
		return "Morning & Evening"
	case StatusAbsent:
		return "Absent"
	}
	return string(s)
}

// Short is the one or two letter code drawn inside a calendar cell.
func (s Status) Short() string {
	switch s {
	case StatusFull:
		return "F"
	case StatusHalf:
		return "H"
	case StatusMorningEvening:
		return "ME"
	case StatusAbsent:
		return "A"
	}
	return ""
}

// Color is the palette token the UI uses for a cell with this status.
func (s Status) Color() string {
	switch s {
	case StatusFull:
		return "attendance-full"
	case StatusHalf:
		return "attendance-half"
	case StatusMorningEvening:
		return "attendance-morning-evening"
	case StatusAbsent:
		return "attendance-absent"
	}
	return ""
}

func (s Status) String() string { return string(s) }

// =============================================================================
// IDENTIFIERS & RECORDS
// =============================================================================

// WorkerID is an opaque worker identifier.
type WorkerID string

func (id WorkerID) String() string { return string(id) }

// Record is the status of one worker on one date.
// Date is an ISO calendar date (YYYY-MM-DD). A store holds at most one
// record per (WorkerID, Date).
type Record struct {
	WorkerID WorkerID
	Date     string
	Status   Status
}

// =============================================================================
// WORKER
// =============================================================================

// Worker is a person whose attendance is tracked.
type Worker struct {
	ID        WorkerID
	Name      string
	Phone     *string
	DailyWage int64 // whole rupees
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PhoneOrEmpty returns the phone number or "" when none is set.
func (w Worker) PhoneOrEmpty() string {
	if w.Phone == nil {
		return ""
	}
	return *w.Phone
}
