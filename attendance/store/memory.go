// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/warp/farm-ledger/attendance"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu         sync.RWMutex
	workers    map[attendance.WorkerID]attendance.Worker
	attendance map[key]attendance.Status
	settings   map[string]string
}

type key struct {
	WorkerID attendance.WorkerID
	Date     string
}

func NewMemory() *Memory {
	return &Memory{
		workers:    make(map[attendance.WorkerID]attendance.Worker),
		attendance: make(map[key]attendance.Status),
		settings:   make(map[string]string),
	}
}

var _ attendance.Store = (*Memory)(nil)

func (m *Memory) GetAllWorkers(_ context.Context) ([]attendance.Worker, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]attendance.Worker, 0, len(m.workers))
	for _, w := range m.workers {
		result = append(result, w)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name == result[j].Name {
			return result[i].ID < result[j].ID
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (m *Memory) GetWorker(_ context.Context, id attendance.WorkerID) (*attendance.Worker, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	w, ok := m.workers[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (m *Memory) CreateWorker(_ context.Context, in attendance.NewWorker) (attendance.Worker, error) {
	if err := in.Validate(); err != nil {
		return attendance.Worker{}, err
	}
	in = in.Normalize()

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	w := attendance.Worker{
		ID:        attendance.WorkerID(uuid.NewString()),
		Name:      in.Name,
		Phone:     in.Phone,
		DailyWage: in.DailyWage,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.workers[w.ID] = w
	return w, nil
}

// PutWorker inserts a worker with a caller-chosen ID. Used by scenarios and tests.
func (m *Memory) PutWorker(w attendance.Worker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workers[w.ID] = w
}

func (m *Memory) UpdateWorker(_ context.Context, id attendance.WorkerID, in attendance.NewWorker) (attendance.Worker, error) {
	if err := in.Validate(); err != nil {
		return attendance.Worker{}, err
	}
	in = in.Normalize()

	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.workers[id]
	if !ok {
		return attendance.Worker{}, attendance.ErrWorkerNotFound
	}
	w.Name = in.Name
	w.Phone = in.Phone
	w.DailyWage = in.DailyWage
	w.UpdatedAt = time.Now().UTC()
	m.workers[id] = w
	return w, nil
}

func (m *Memory) DeleteWorker(_ context.Context, id attendance.WorkerID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.workers[id]; !ok {
		return attendance.ErrWorkerNotFound
	}
	delete(m.workers, id)
	for k := range m.attendance {
		if k.WorkerID == id {
			delete(m.attendance, k)
		}
	}
	return nil
}

func (m *Memory) SetAttendance(_ context.Context, id attendance.WorkerID, date string, status attendance.Status) error {
	if err := attendance.CheckRecord(date, status); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.workers[id]; !ok {
		return attendance.ErrWorkerNotFound
	}
	m.attendance[key{WorkerID: id, Date: date}] = status
	return nil
}

func (m *Memory) ClearAttendance(_ context.Context, id attendance.WorkerID, date string) error {
	if _, err := attendance.ParseDate(date); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.attendance, key{WorkerID: id, Date: date})
	return nil
}

func (m *Memory) GetAttendanceForMonth(_ context.Context, id attendance.WorkerID, month attendance.MonthToken) ([]attendance.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := []attendance.Record{}
	for k, st := range m.attendance {
		if k.WorkerID == id && month.Contains(k.Date) {
			result = append(result, attendance.Record{WorkerID: id, Date: k.Date, Status: st})
		}
	}
	attendance.SortByDate(result)
	return result, nil
}

// =============================================================================
// SETTINGS - Key/value pairs (app lock state)
// =============================================================================

func (m *Memory) GetSetting(_ context.Context, name string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.settings[name]
	return v, ok, nil
}

func (m *Memory) PutSetting(_ context.Context, name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[name] = value
	return nil
}

// Reset drops all workers and attendance. Settings survive.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workers = make(map[attendance.WorkerID]attendance.Worker)
	m.attendance = make(map[key]attendance.Status)
	return nil
}
