/*
Package applock implements the optional passcode gate in front of the app.

PURPOSE:
  Lets the farm owner require a passcode before the attendance data is shown.
  This is a convenience gate for a shared phone, not a security boundary.

STATE MACHINE:
                        Enable
    Disabled ─────────────────────────▶ Locked
        ▲  │                            │   ▲
        │  │ SetPasscode         Unlock │   │ Relock
        │  │                  (correct) ▼   │
        │  └──────────────────────────▶ Unlocked
        └──────────────────────────────────┘
                     Disable

  - Enable requires a passcode to already be set.
  - SetPasscode on a Disabled lock enables it without locking the session.
  - Unlock with a wrong passcode leaves the lock Locked.
  - Disable works from any state.

PERSISTENCE:
  State and the bcrypt passcode hash live in a SettingsStore, so the lock
  survives restarts. Nothing is kept in package globals.

SEE ALSO:
  - api/lock.go: HTTP endpoints and the RequireUnlocked middleware
*/
package applock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// MinPasscodeLength is the shortest passcode SetPasscode accepts.
const MinPasscodeLength = 4

const (
	stateKey = "applock.state"
	hashKey  = "applock.passcode_hash"
)

var (
	ErrPasscodeTooShort  = fmt.Errorf("passcode must be at least %d characters", MinPasscodeLength)
	ErrPasscodeMismatch  = errors.New("passcodes do not match")
	ErrPasscodeRequired  = errors.New("please enter passcode")
	ErrPasscodeNotSet    = errors.New("set a passcode before enabling the lock")
	ErrIncorrectPasscode = errors.New("incorrect passcode")
)

// IsValidationError reports whether err was caused by bad passcode input.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrPasscodeTooShort) ||
		errors.Is(err, ErrPasscodeMismatch) ||
		errors.Is(err, ErrPasscodeRequired)
}

// State is the current lock state.
type State string

const (
	Disabled State = "disabled"
	Locked   State = "locked"
	Unlocked State = "unlocked"
)

func (s State) valid() bool {
	return s == Disabled || s == Locked || s == Unlocked
}

// SettingsStore persists small key/value settings.
type SettingsStore interface {
	GetSetting(ctx context.Context, key string) (string, bool, error)
	PutSetting(ctx context.Context, key, value string) error
}

// Lock is the app lock. Safe for concurrent use.
type Lock struct {
	mu       sync.Mutex
	settings SettingsStore
	cost     int
}

// New creates a lock backed by settings. cost <= 0 uses bcrypt.DefaultCost.
func New(settings SettingsStore, cost int) *Lock {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &Lock{settings: settings, cost: cost}
}

// State returns the persisted state. A fresh install is Disabled.
func (l *Lock) State(ctx context.Context) (State, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state(ctx)
}

// HasPasscode reports whether a passcode has been set.
func (l *Lock) HasPasscode(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok, err := l.settings.GetSetting(ctx, hashKey)
	return ok, err
}

// Enable turns the lock on and locks immediately.
func (l *Lock) Enable(ctx context.Context) (State, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok, err := l.settings.GetSetting(ctx, hashKey); err != nil {
		return "", err
	} else if !ok {
		return "", ErrPasscodeNotSet
	}
	return l.transition(ctx, Locked)
}

// Disable turns the lock off from any state.
func (l *Lock) Disable(ctx context.Context) (State, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.transition(ctx, Disabled)
}

// Relock locks an unlocked app again, e.g. when it is reopened.
// Other states are returned unchanged.
func (l *Lock) Relock(ctx context.Context) (State, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cur, err := l.state(ctx)
	if err != nil {
		return "", err
	}
	if cur != Unlocked {
		return cur, nil
	}
	return l.transition(ctx, Locked)
}

// Unlock checks passcode and moves Locked to Unlocked. Called on a lock
// that isn't Locked it returns the current state without checking.
func (l *Lock) Unlock(ctx context.Context, passcode string) (State, error) {
	if passcode == "" {
		return "", ErrPasscodeRequired
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	cur, err := l.state(ctx)
	if err != nil {
		return "", err
	}
	if cur != Locked {
		return cur, nil
	}

	hash, ok, err := l.settings.GetSetting(ctx, hashKey)
	if err != nil {
		return "", err
	}
	if !ok {
		return cur, ErrPasscodeNotSet
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(passcode)); err != nil {
		return cur, ErrIncorrectPasscode
	}
	return l.transition(ctx, Unlocked)
}

// SetPasscode validates and stores a new passcode. If the lock was Disabled
// it becomes enabled but stays open (Unlocked) for the owner who just set it;
// otherwise the state is kept.
func (l *Lock) SetPasscode(ctx context.Context, passcode, confirm string) (State, error) {
	if err := ValidatePasscode(passcode, confirm); err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(passcode), l.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash passcode: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.settings.PutSetting(ctx, hashKey, string(hash)); err != nil {
		return "", err
	}

	cur, err := l.state(ctx)
	if err != nil {
		return "", err
	}
	if cur == Disabled {
		return l.transition(ctx, Unlocked)
	}
	return cur, nil
}

// ValidatePasscode applies the passcode rules without touching storage.
func ValidatePasscode(passcode, confirm string) error {
	if strings.TrimSpace(passcode) == "" {
		return ErrPasscodeRequired
	}
	if len([]rune(passcode)) < MinPasscodeLength {
		return ErrPasscodeTooShort
	}
	if passcode != confirm {
		return ErrPasscodeMismatch
	}
	return nil
}

func (l *Lock) state(ctx context.Context) (State, error) {
	v, ok, err := l.settings.GetSetting(ctx, stateKey)
	if err != nil {
		return "", fmt.Errorf("failed to read lock state: %w", err)
	}
	st := State(v)
	if !ok || !st.valid() {
		return Disabled, nil
	}
	return st, nil
}

func (l *Lock) transition(ctx context.Context, to State) (State, error) {
	if err := l.settings.PutSetting(ctx, stateKey, string(to)); err != nil {
		return "", fmt.Errorf("failed to save lock state: %w", err)
	}
	return to, nil
}
