package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/farm-ledger/attendance"
	"github.com/warp/farm-ledger/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func createWorker(t *testing.T, s *sqlite.Store, name string, wage int64) attendance.Worker {
	t.Helper()
	w, err := s.CreateWorker(context.Background(), attendance.NewWorker{Name: name, DailyWage: wage})
	require.NoError(t, err)
	return w
}

// =============================================================================
// WORKERS
// =============================================================================

func TestStore_WorkerRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	phone := " 98450 12345 "

	// GIVEN: a worker with a phone number
	created, err := s.CreateWorker(ctx, attendance.NewWorker{Name: "  Lakshmi ", Phone: &phone, DailyWage: 450})
	require.NoError(t, err)

	// WHEN
	got, err := s.GetWorker(ctx, created.ID)

	// THEN: trimmed values come back
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Lakshmi", got.Name)
	require.NotNil(t, got.Phone)
	assert.Equal(t, "98450 12345", *got.Phone)
	assert.Equal(t, int64(450), got.DailyWage)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestStore_GetWorkerMissing(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetWorker(context.Background(), "ghost")

	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_ListOrderedByName(t *testing.T) {
	s := newTestStore(t)
	createWorker(t, s, "Suresh", 400)
	createWorker(t, s, "Lakshmi", 450)
	createWorker(t, s, "Manjula", 425)

	all, err := s.GetAllWorkers(context.Background())

	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Lakshmi", "Manjula", "Suresh"},
		[]string{all[0].Name, all[1].Name, all[2].Name})
}

func TestStore_UpdateWorker(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	w := createWorker(t, s, "Ramesh", 500)

	updated, err := s.UpdateWorker(ctx, w.ID, attendance.NewWorker{Name: "Ramesh Kumar", DailyWage: 550})

	require.NoError(t, err)
	assert.Equal(t, "Ramesh Kumar", updated.Name)
	assert.Equal(t, int64(550), updated.DailyWage)
	assert.Nil(t, updated.Phone)

	_, err = s.UpdateWorker(ctx, "ghost", attendance.NewWorker{Name: "X", DailyWage: 1})
	assert.ErrorIs(t, err, attendance.ErrWorkerNotFound)
}

func TestStore_CreateRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.CreateWorker(ctx, attendance.NewWorker{Name: "Ramesh", DailyWage: 0})
	assert.ErrorIs(t, err, attendance.ErrValidation)

	all, err := s.GetAllWorkers(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStore_SaveWorkerUpserts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.SaveWorker(ctx, attendance.Worker{ID: "w-1", Name: "Ramesh", DailyWage: 500}))
	require.NoError(t, s.SaveWorker(ctx, attendance.Worker{ID: "w-1", Name: "Ramesh K", DailyWage: 520}))

	got, err := s.GetWorker(ctx, "w-1")
	require.NoError(t, err)
	assert.Equal(t, "Ramesh K", got.Name)
	assert.Equal(t, int64(520), got.DailyWage)
}

// =============================================================================
// ATTENDANCE
// =============================================================================

func TestStore_AttendanceForMonth(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	w := createWorker(t, s, "Ramesh", 500)
	other := createWorker(t, s, "Suresh", 400)

	// GIVEN: records at both month edges, and another worker's record
	require.NoError(t, s.SetAttendance(ctx, w.ID, "2024-01-31", attendance.StatusFull))
	require.NoError(t, s.SetAttendance(ctx, w.ID, "2024-02-29", attendance.StatusHalf))
	require.NoError(t, s.SetAttendance(ctx, w.ID, "2024-02-01", attendance.StatusMorningEvening))
	require.NoError(t, s.SetAttendance(ctx, w.ID, "2024-03-01", attendance.StatusFull))
	require.NoError(t, s.SetAttendance(ctx, other.ID, "2024-02-10", attendance.StatusFull))

	// WHEN
	feb, err := s.GetAttendanceForMonth(ctx, w.ID, "2024-02")

	// THEN: only February for this worker, ordered by date
	require.NoError(t, err)
	require.Len(t, feb, 2)
	assert.Equal(t, "2024-02-01", feb[0].Date)
	assert.Equal(t, attendance.StatusMorningEvening, feb[0].Status)
	assert.Equal(t, "2024-02-29", feb[1].Date)
	assert.Equal(t, w.ID, feb[1].WorkerID)
}

func TestStore_SetAttendanceUpserts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	w := createWorker(t, s, "Ramesh", 500)

	require.NoError(t, s.SetAttendance(ctx, w.ID, "2024-02-01", attendance.StatusFull))
	require.NoError(t, s.SetAttendance(ctx, w.ID, "2024-02-01", attendance.StatusAbsent))

	recs, err := s.GetAttendanceForMonth(ctx, w.ID, "2024-02")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, attendance.StatusAbsent, recs[0].Status)
}

func TestStore_SetAttendanceUnknownWorker(t *testing.T) {
	s := newTestStore(t)

	err := s.SetAttendance(context.Background(), "ghost", "2024-02-01", attendance.StatusFull)

	assert.ErrorIs(t, err, attendance.ErrWorkerNotFound)
}

func TestStore_SetAttendanceValidates(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	w := createWorker(t, s, "Ramesh", 500)

	assert.ErrorIs(t, s.SetAttendance(ctx, w.ID, "2024-02-30", attendance.StatusFull), attendance.ErrInvalidDate)
	assert.ErrorIs(t, s.SetAttendance(ctx, w.ID, "2024-02-01", "overtime"), attendance.ErrInvalidStatus)
}

func TestStore_ClearAttendance(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	w := createWorker(t, s, "Ramesh", 500)
	require.NoError(t, s.SetAttendance(ctx, w.ID, "2024-02-01", attendance.StatusFull))

	require.NoError(t, s.ClearAttendance(ctx, w.ID, "2024-02-01"))
	require.NoError(t, s.ClearAttendance(ctx, w.ID, "2024-02-01"))

	recs, err := s.GetAttendanceForMonth(ctx, w.ID, "2024-02")
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestStore_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	w := createWorker(t, s, "Ramesh", 500)
	require.NoError(t, s.SetAttendance(ctx, w.ID, "2024-02-01", attendance.StatusFull))

	require.NoError(t, s.DeleteWorker(ctx, w.ID))
	assert.ErrorIs(t, s.DeleteWorker(ctx, w.ID), attendance.ErrWorkerNotFound)

	// Recreate under the same ID: old attendance is gone
	require.NoError(t, s.SaveWorker(ctx, attendance.Worker{ID: w.ID, Name: "Ramesh", DailyWage: 500}))
	recs, err := s.GetAttendanceForMonth(ctx, w.ID, "2024-02")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

// =============================================================================
// SETTINGS & ADMIN
// =============================================================================

func TestStore_Settings(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, ok, err := s.GetSetting(ctx, "applock.state")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.PutSetting(ctx, "applock.state", "locked"))
	require.NoError(t, s.PutSetting(ctx, "applock.state", "unlocked"))

	v, ok, err := s.GetSetting(ctx, "applock.state")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "unlocked", v)
}

func TestStore_ResetKeepsSettings(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	w := createWorker(t, s, "Ramesh", 500)
	require.NoError(t, s.SetAttendance(ctx, w.ID, "2024-02-01", attendance.StatusFull))
	require.NoError(t, s.PutSetting(ctx, "applock.state", "locked"))

	require.NoError(t, s.Reset(ctx))

	all, err := s.GetAllWorkers(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	_, ok, err := s.GetSetting(ctx, "applock.state")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_Ping(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}
