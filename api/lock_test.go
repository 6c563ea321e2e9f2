package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/farm-ledger/applock"
)

// =============================================================================
// LOCK ENDPOINTS
// =============================================================================

func TestLock_StateStartsDisabled(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/lock", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, LockStateDTO{State: "disabled"}, decode[LockStateDTO](t, rec))
}

func TestLock_Flow(t *testing.T) {
	s := newTestServer(t)
	s.createWorker(t, "Ramesh", 500)

	// GIVEN: a passcode is set, which enables the lock without locking the owner out
	rec := s.do(t, http.MethodPut, "/api/lock/passcode", SetPasscodeRequest{Passcode: "1234", Confirm: "1234"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, LockStateDTO{State: "unlocked", Enabled: true, HasPasscode: true}, decode[LockStateDTO](t, rec))
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/workers", nil).Code)

	// WHEN: the app is relocked
	rec = s.do(t, http.MethodPost, "/api/lock/relock", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, LockStateDTO{State: "locked", Enabled: true, Locked: true, HasPasscode: true}, decode[LockStateDTO](t, rec))

	// THEN: data routes are refused
	rec = s.do(t, http.MethodGet, "/api/workers", nil)
	assert.Equal(t, http.StatusLocked, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/summary", nil)
	assert.Equal(t, http.StatusLocked, rec.Code)

	// WHEN: wrong passcode
	rec = s.do(t, http.MethodPost, "/api/lock/unlock", UnlockRequest{Passcode: "0000"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Incorrect passcode", decode[ErrorResponse](t, rec).Error)

	// WHEN: empty passcode
	rec = s.do(t, http.MethodPost, "/api/lock/unlock", UnlockRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please enter passcode", decode[ErrorResponse](t, rec).Error)

	// WHEN: right passcode
	rec = s.do(t, http.MethodPost, "/api/lock/unlock", UnlockRequest{Passcode: "1234"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "unlocked", decode[LockStateDTO](t, rec).State)

	rec = s.do(t, http.MethodGet, "/api/workers", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// WHEN: relock
	rec = s.do(t, http.MethodPost, "/api/lock/relock", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "locked", decode[LockStateDTO](t, rec).State)

	// WHEN: disable
	rec = s.do(t, http.MethodPost, "/api/lock/disable", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, LockStateDTO{State: "disabled", HasPasscode: true}, decode[LockStateDTO](t, rec))
	rec = s.do(t, http.MethodGet, "/api/workers", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// WHEN: enable again
	rec = s.do(t, http.MethodPost, "/api/lock/enable", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "locked", decode[LockStateDTO](t, rec).State)
}

func TestLock_EnableWithoutPasscode(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/lock/enable", nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLock_PasscodeValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		req  SetPasscodeRequest
		want string
	}{
		{"too short", SetPasscodeRequest{Passcode: "123", Confirm: "123"}, "Passcode must be at least 4 characters"},
		{"mismatch", SetPasscodeRequest{Passcode: "1234", Confirm: "4321"}, "Passcodes do not match"},
		{"empty", SetPasscodeRequest{}, "Please enter passcode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPut, "/api/lock/passcode", tt.req)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.want, decode[ErrorResponse](t, rec).Error)
		})
	}

	st := decode[LockStateDTO](t, s.do(t, http.MethodGet, "/api/lock", nil))
	assert.Equal(t, "disabled", st.State, "failed attempts change nothing")
	assert.False(t, st.HasPasscode)
}

func TestLock_StatusesAndScenariosStayOpen(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPut, "/api/lock/passcode", SetPasscodeRequest{Passcode: "1234", Confirm: "1234"})
	s.do(t, http.MethodPost, "/api/lock/relock", nil)
	require.Equal(t, http.StatusLocked, s.do(t, http.MethodGet, "/api/workers", nil).Code)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/statuses", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/lock", nil).Code)
}

func TestLock_ScenarioWritesRefusedWhileLocked(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)
	s.createWorker(t, "Ramesh", 500)

	// GIVEN: the app is locked
	rec := s.do(t, http.MethodPut, "/api/lock/passcode", SetPasscodeRequest{Passcode: "1234", Confirm: "1234"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	_, err := s.handler.Lock.Relock(ctx)
	require.NoError(t, err)

	// WHEN/THEN: reset and load are refused
	assert.Equal(t, http.StatusLocked, s.do(t, http.MethodPost, "/api/scenarios/reset", nil).Code)
	assert.Equal(t, http.StatusLocked,
		s.do(t, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "empty"}).Code)

	// THEN: nothing was wiped
	workers, err := s.mem.GetAllWorkers(ctx)
	require.NoError(t, err)
	assert.Len(t, workers, 1)

	// Listing stays open
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/scenarios", nil).Code)
}

// =============================================================================
// AUTO RELOCK
// =============================================================================

func TestRelockScheduler_Check(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)
	lock := s.handler.Lock
	_, err := lock.SetPasscode(ctx, "1234", "1234")
	require.NoError(t, err)
	_, err = lock.Unlock(ctx, "1234")
	require.NoError(t, err)

	now := time.Date(2024, time.February, 14, 10, 0, 0, 0, time.UTC)
	rs := NewRelockScheduler(lock, 10*time.Minute, nil)
	rs.now = func() time.Time { return now }

	// First sighting starts the clock
	assert.False(t, rs.Check(ctx))

	now = now.Add(9 * time.Minute)
	assert.False(t, rs.Check(ctx), "not idle long enough")

	now = now.Add(time.Minute)
	assert.True(t, rs.Check(ctx))

	st, err := lock.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, applock.Locked, st)
}

func TestRelockScheduler_ResetsWhenNotUnlocked(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)
	lock := s.handler.Lock
	_, err := lock.SetPasscode(ctx, "1234", "1234")
	require.NoError(t, err)
	_, err = lock.Unlock(ctx, "1234")
	require.NoError(t, err)

	now := time.Date(2024, time.February, 14, 10, 0, 0, 0, time.UTC)
	rs := NewRelockScheduler(lock, 10*time.Minute, nil)
	rs.now = func() time.Time { return now }
	rs.Check(ctx)

	// User relocks and unlocks again in between
	_, err = lock.Relock(ctx)
	require.NoError(t, err)
	now = now.Add(5 * time.Minute)
	rs.Check(ctx)
	_, err = lock.Unlock(ctx, "1234")
	require.NoError(t, err)

	now = now.Add(6 * time.Minute)
	assert.False(t, rs.Check(ctx), "clock restarted at the new unlock")
}

func TestRelockScheduler_DisabledDoesNotStart(t *testing.T) {
	s := newTestServer(t)
	rs := NewRelockScheduler(s.handler.Lock, 0, nil)

	rs.Start()
	rs.Stop()

	assert.Nil(t, rs.ticker)
}

func TestRelockScheduler_StartStop(t *testing.T) {
	s := newTestServer(t)
	rs := NewRelockScheduler(s.handler.Lock, time.Minute, nil)
	rs.CheckInterval = time.Millisecond

	rs.Start()
	time.Sleep(5 * time.Millisecond)
	rs.Stop()
	rs.Stop()

	assert.Nil(t, rs.ticker)
}
