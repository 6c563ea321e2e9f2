/*
lock.go - App lock endpoints and middleware

ENDPOINTS:
  GET  /api/lock              Current state
  POST /api/lock/enable       Enable (passcode must already be set)
  POST /api/lock/disable      Disable from any state
  POST /api/lock/unlock       {passcode}
  POST /api/lock/relock       Unlocked -> Locked
  PUT  /api/lock/passcode     {passcode, confirm}

MIDDLEWARE:
  RequireUnlocked answers 423 Locked for data routes while the lock is
  Locked. Lock routes themselves are never gated.

SEE ALSO:
  - applock/lock.go: State machine
*/
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/warp/farm-ledger/applock"
)

// GetLockState returns the lock state.
func (h *Handler) GetLockState(w http.ResponseWriter, r *http.Request) {
	h.respondLockState(w, r, "")
}

// EnableLock turns the lock on.
func (h *Handler) EnableLock(w http.ResponseWriter, r *http.Request) {
	st, err := h.Lock.Enable(r.Context())
	if err != nil {
		h.writeLockError(w, r, err)
		return
	}
	h.respondLockState(w, r, st)
}

// DisableLock turns the lock off.
func (h *Handler) DisableLock(w http.ResponseWriter, r *http.Request) {
	st, err := h.Lock.Disable(r.Context())
	if err != nil {
		h.writeLockError(w, r, err)
		return
	}
	h.respondLockState(w, r, st)
}

// RelockApp locks an unlocked app.
func (h *Handler) RelockApp(w http.ResponseWriter, r *http.Request) {
	st, err := h.Lock.Relock(r.Context())
	if err != nil {
		h.writeLockError(w, r, err)
		return
	}
	h.respondLockState(w, r, st)
}

// UnlockApp checks the passcode.
func (h *Handler) UnlockApp(w http.ResponseWriter, r *http.Request) {
	var req UnlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	st, err := h.Lock.Unlock(r.Context(), req.Passcode)
	if err != nil {
		h.writeLockError(w, r, err)
		return
	}
	h.respondLockState(w, r, st)
}

// SetPasscode stores a new passcode.
func (h *Handler) SetPasscode(w http.ResponseWriter, r *http.Request) {
	var req SetPasscodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	st, err := h.Lock.SetPasscode(r.Context(), req.Passcode, req.Confirm)
	if err != nil {
		h.writeLockError(w, r, err)
		return
	}
	h.Logger.InfoContext(r.Context(), "passcode updated", slog.String("state", string(st)))
	h.respondLockState(w, r, st)
}

// RequireUnlocked rejects requests with 423 while the app is Locked.
func (h *Handler) RequireUnlocked(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st, err := h.Lock.State(r.Context())
		if err != nil {
			h.writeLockError(w, r, err)
			return
		}
		if st == applock.Locked {
			writeError(w, http.StatusLocked, "App is locked", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// respondLockState writes st, or the stored state when st is empty.
func (h *Handler) respondLockState(w http.ResponseWriter, r *http.Request, st applock.State) {
	ctx := r.Context()
	if st == "" {
		var err error
		if st, err = h.Lock.State(ctx); err != nil {
			h.writeLockError(w, r, err)
			return
		}
	}
	has, err := h.Lock.HasPasscode(ctx)
	if err != nil {
		h.writeLockError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLockStateDTO(st, has))
}

func (h *Handler) writeLockError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case applock.IsValidationError(err):
		writeError(w, http.StatusBadRequest, capitalize(err.Error()), nil)
	case errors.Is(err, applock.ErrPasscodeNotSet):
		writeError(w, http.StatusConflict, capitalize(err.Error()), nil)
	case errors.Is(err, applock.ErrIncorrectPasscode):
		writeError(w, http.StatusUnauthorized, "Incorrect passcode", nil)
	default:
		h.Logger.ErrorContext(r.Context(), "app lock failed", slog.Any("error", err))
		if h.Metrics != nil {
			h.Metrics.StoreError("applock")
		}
		writeError(w, http.StatusInternalServerError, "Failed to update app lock", nil)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
